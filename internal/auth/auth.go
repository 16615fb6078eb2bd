package auth

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidToken is the single failure surfaced for any verification
// problem: bad signature, wrong audience, malformed or expired token.
// Callers must not branch on the underlying cause.
var ErrInvalidToken = errors.New("invalid credential token")

// Claims holds the identity extracted from a verified token.
type Claims struct {
	Subject   string
	Email     string
	Name      string
	Picture   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}
