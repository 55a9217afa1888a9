package middleware

import (
	"context"

	"github.com/cultivo/backend/internal/domain/identity"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/cultivo/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProfileKey is the gin context key holding the caller's *identity.Profile
const ProfileKey = "profile"

// ProfileFinder loads profiles through the privileged handle
type ProfileFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identity.Profile, error)
}

// ActiveProfile loads the caller's profile and rejects anything not active.
// Must run after JWTAuth. The stored role, not the token's, is authoritative.
func ActiveProfile(profiles ProfileFinder, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithError(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		id, err := claims.GetUserUUID()
		if err != nil {
			abortWithError(c, dto.ErrCodeTokenInvalid, "Invalid token")
			return
		}

		profile, err := profiles.FindByID(c.Request.Context(), id)
		if err != nil {
			if shared.IsNotFound(err) {
				abortWithError(c, dto.ErrCodeUnauthorized, "Profile not found")
				return
			}
			log.Error("Failed to load profile", zap.String("user_id", id.String()), zap.Error(err))
			abortWithError(c, dto.ErrCodeInternal, "Internal server error")
			return
		}
		if !profile.IsActive() {
			abortWithError(c, dto.ErrCodeAccountInactive, "Account is not active")
			return
		}

		c.Set(ProfileKey, profile)
		c.Next()
	}
}

// RequireRoles allows the request only when the caller's role is listed
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	allowed := make(map[identity.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		profile := GetProfile(c)
		if profile == nil {
			abortWithError(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if _, ok := allowed[profile.Role]; !ok {
			abortWithError(c, dto.ErrCodeForbidden, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

// GetProfile returns the profile loaded by ActiveProfile
func GetProfile(c *gin.Context) *identity.Profile {
	if v, ok := c.Get(ProfileKey); ok {
		if p, ok := v.(*identity.Profile); ok {
			return p
		}
	}
	return nil
}

// GetActorID returns the caller's profile id, or uuid.Nil when unauthenticated
func GetActorID(c *gin.Context) uuid.UUID {
	if p := GetProfile(c); p != nil {
		return p.ID
	}
	if claims := GetJWTClaims(c); claims != nil {
		if id, err := claims.GetUserUUID(); err == nil {
			return id
		}
	}
	return uuid.Nil
}
