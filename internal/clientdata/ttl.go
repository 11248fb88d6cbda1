package clientdata

import "time"

// TTL constants for different data types.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// Daily close series only gain a point per trading day
	TTLPriceHistory = 12 * time.Hour

	// Fundamentals move with quarterly filings; a week is plenty
	TTLFundamentals = 7 * 24 * time.Hour

	// Provider preference has no natural expiry; keep it for a year
	TTLPreference = 365 * 24 * time.Hour
)
