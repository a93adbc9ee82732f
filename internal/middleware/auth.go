package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PartnerContext holds the authenticated caller's identity and entitlements
// for the lifetime of one request.
type PartnerContext struct {
	PartnerID   string
	APIKeyID    string
	Tier        string
	Scopes      []string
	Email       string
	CompanyName string
}

// AuthMiddleware validates the API key on the Authorization header and loads
// the partner it belongs to.
func AuthMiddleware(db *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{
				"error":   "missing_api_key",
				"message": "API key is required. Use Authorization: Bearer YOUR_API_KEY",
			})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{
				"error":   "invalid_auth_format",
				"message": "Authorization header must be in format: Bearer YOUR_API_KEY",
			})
		}

		apiKey := strings.TrimSpace(parts[1])
		if !strings.HasPrefix(apiKey, "pg_") {
			return c.Status(401).JSON(fiber.Map{
				"error":   "invalid_api_key_format",
				"message": "API key must start with pg_",
			})
		}

		hash := sha256.Sum256([]byte(apiKey))
		keyHash := hex.EncodeToString(hash[:])

		ctx := context.Background()
		query := `
			SELECT
				ak.id,
				ak.partner_id,
				ak.scopes,
				p.tier,
				p.status,
				p.email,
				p.company_name,
				p.rate_limit_per_second,
				p.rate_limit_per_day,
				p.rate_limit_per_month
			FROM api_key ak
			JOIN partner p ON p.id = ak.partner_id
			WHERE ak.key_hash = $1
				AND ak.is_active = true
				AND p.status = 'active'
				AND (ak.expires_at IS NULL OR ak.expires_at > NOW())
		`

		var (
			apiKeyID   string
			partnerID  string
			scopes     []string
			tier       string
			status     string
			email      string
			company    string
			perSecond  int64
			perDay     int64
			perMonth   int64
		)

		err := db.QueryRow(ctx, query, keyHash).Scan(
			&apiKeyID, &partnerID, &scopes, &tier, &status, &email, &company,
			&perSecond, &perDay, &perMonth,
		)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{
				"error":   "invalid_api_key",
				"message": "API key not found, revoked, or partner inactive",
			})
		}

		c.Locals("partner", &PartnerContext{
			PartnerID:   partnerID,
			APIKeyID:    apiKeyID,
			Tier:        tier,
			Scopes:      scopes,
			Email:       email,
			CompanyName: company,
		})
		c.Locals("rate_limits", map[string]int{
			"per_second": int(perSecond),
			"per_day":    int(perDay),
			"per_month":  int(perMonth),
		})

		go updateLastUsed(db, apiKeyID)

		return c.Next()
	}
}

func updateLastUsed(db *pgxpool.Pool, apiKeyID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _ = db.Exec(ctx, `UPDATE api_key SET last_used_at = NOW() WHERE id = $1`, apiKeyID)
}

// RequireScope rejects the request unless the authenticated partner's API
// key carries scope.
func RequireScope(scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		partner, ok := c.Locals("partner").(*PartnerContext)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "unauthenticated"})
		}
		for _, s := range partner.Scopes {
			if s == scope || s == "*" {
				return c.Next()
			}
		}
		return c.Status(403).JSON(fiber.Map{
			"error":   "insufficient_scope",
			"message": "API key lacks required scope: " + scope,
		})
	}
}

// OptionalAuth lets requests without an Authorization header through
// unauthenticated. A request that does carry the header is validated exactly
// as by AuthMiddleware, and is rejected with 401 if the key is invalid.
func OptionalAuth(db *pgxpool.Pool) fiber.Handler {
	auth := AuthMiddleware(db)
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") == "" {
			return c.Next()
		}
		return auth(c)
	}
}
