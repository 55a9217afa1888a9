package auth

import (
	"context"
	"time"
)

// TokenBlacklist revokes tokens before they expire. Single tokens are revoked
// by JTI on logout; all sessions of a profile are revoked by timestamp after a
// password change or reset.
type TokenBlacklist interface {
	// Revoke blacklists a JTI for ttl, normally the token's remaining lifetime
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether the JTI is blacklisted
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeSessions rejects every token of the profile issued up to now
	RevokeSessions(ctx context.Context, userID string, ttl time.Duration) error

	// SessionRevoked reports whether a token issued at issuedAt predates a RevokeSessions call
	SessionRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

// CheckRevoked returns ErrTokenBlacklisted when the claims were revoked
func CheckRevoked(ctx context.Context, blacklist TokenBlacklist, claims *Claims) error {
	if blacklist == nil {
		return nil
	}
	revoked, err := blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if revoked {
		return ErrTokenBlacklisted
	}
	revoked, err = blacklist.SessionRevoked(ctx, claims.UserID, claims.GetIssuedAtTime())
	if err != nil {
		return err
	}
	if revoked {
		return ErrTokenBlacklisted
	}
	return nil
}
