// Package models holds the ambient Postgres-backed records: partner/API-key
// auth state, request usage analytics, and ingest/build logs. The routing
// domain's own types (nodes, ways, stops, walk steps) live in their own
// packages and are never persisted here.
package models

import "time"

// Partner is a registered API consumer.
type Partner struct {
	ID                 string
	Email              string
	CompanyName        string
	Tier               string
	Status             string
	RateLimitPerSecond int64
	RateLimitPerDay    int64
	RateLimitPerMonth  int64
}

// APIKey is one issued credential for a Partner.
type APIKey struct {
	ID         string
	PartnerID  string
	KeyHash    string
	Scopes     []string
	AllowedIPs []string
	IsActive   bool
	ExpiresAt  *time.Time
	LastUsedAt *time.Time
}

// UsageRecord is one logged request against the HTTP API, for analytics and
// rate-limit auditing.
type UsageRecord struct {
	ID         int64
	PartnerID  string
	APIKeyID   string
	Route      string
	StatusCode int
	DurationMS int64
	RequestedAt time.Time
}

// ImportLog records one GTFS feed ingest operation.
type ImportLog struct {
	ID          int64
	Source      string
	StartedAt   time.Time
	CompletedAt *time.Time
	Status      string
	StopsCount  int
	TripsCount  int
	ErrorMsg    string
}

// BuildLog records one OSM+GTFS graph/score build operation.
type BuildLog struct {
	ID            int64
	StartedAt     time.Time
	CompletedAt   *time.Time
	Status        string
	NodesCount    int
	WaysCount     int
	SquaresCount  int
	ErrorMsg      string
}
