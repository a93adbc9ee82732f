package middleware

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AnalyticsMiddleware logs every authenticated request's route, status,
// and duration for usage analytics and quota accounting.
func AnalyticsMiddleware(db *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		partner, ok := c.Locals("partner").(*PartnerContext)
		if !ok {
			return err
		}

		go logRequest(db, partner, c.Path(), c.Response().StatusCode(), elapsed)

		c.Set("X-Response-Time", elapsed.String())
		return err
	}
}

func logRequest(db *pgxpool.Pool, partner *PartnerContext, route string, status int, elapsed time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.Exec(ctx, `
		INSERT INTO usage_log (partner_id, api_key_id, route, status_code, duration_ms, requested_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, partner.PartnerID, partner.APIKeyID, route, status, elapsed.Milliseconds())
	if err != nil {
		log.Println("middleware: failed to log request:", err)
	}

	updateQuotaUsage(db, partner.PartnerID, status >= 200 && status < 300)
}

func updateQuotaUsage(db *pgxpool.Pool, partnerID string, success bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	successCount, failCount := 0, 0
	if success {
		successCount = 1
	} else {
		failCount = 1
	}

	periodStart := time.Now().Format("2006-01-02")
	_, err := db.Exec(ctx, `
		INSERT INTO quota_usage (partner_id, period_type, period_start, requests_count, successful_requests, failed_requests)
		VALUES ($1, 'daily', $2, 1, $3, $4)
		ON CONFLICT (partner_id, period_type, period_start)
		DO UPDATE SET
			requests_count = quota_usage.requests_count + 1,
			successful_requests = quota_usage.successful_requests + $3,
			failed_requests = quota_usage.failed_requests + $4
	`, partnerID, periodStart, successCount, failCount)
	if err != nil {
		log.Println("middleware: failed to update quota usage:", err)
	}
}
