package domain

import "fmt"

// AuthError means a credential was missing or rejected by the upstream.
// Not retryable within the same sync cycle.
type AuthError struct {
	Source string
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: auth: %s", e.Source, e.Reason)
}

// FetchError is an upstream HTTP failure. Body is truncated to a few
// hundred bytes so it is safe to log. Pages fetched before the failure
// are still returned alongside it.
type FetchError struct {
	Source string
	Status int
	Body   string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: fetch failed with status %d: %s", e.Source, e.Status, e.Body)
}

// TruncateBody shortens an upstream response body for inclusion in a
// FetchError.
func TruncateBody(b []byte) string {
	const max = 300
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
