package session

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Session binds an opaque bearer token to an authenticated user and the
// cabinet (tenant) the user belongs to.
type Session struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	CabinetID uuid.UUID `json:"cabinet_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired reports whether the session has passed its expiry at the given
// instant.
func (s *Session) IsExpired(now time.Time) bool {
	return s == nil || !s.ExpiresAt.After(now)
}

// newToken returns a 256-bit random token in hex.
func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
