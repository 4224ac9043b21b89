package model

import "time"

// Identity is the verified caller extracted from a bearer token.
// This is injected into the request context by auth middleware.
type Identity struct {
	ID        string
	Email     string
	ExpiresAt time.Time
}
