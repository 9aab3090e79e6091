package domain

import "context"

// Well-known credential keys.
const (
	CredStravaRefreshToken = "strava_refresh_token"
)

// CredentialStore is the port for rotating secrets. Get returns "" for an
// absent key. Set overwrites; callers rely on it being idempotent because
// upstreams sometimes hand back the same refresh token they were given.
type CredentialStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
