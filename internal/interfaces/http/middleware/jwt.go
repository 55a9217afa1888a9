package middleware

import (
	"errors"
	"strings"

	"github.com/cultivo/backend/internal/infrastructure/auth"
	"github.com/cultivo/backend/internal/infrastructure/logger"
	"github.com/cultivo/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	UserIDKey     = "user_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// Blacklist is optional; without it logout cannot revoke tokens early
	Blacklist auth.TokenBlacklist
	Logger    *zap.Logger
}

// JWTAuth validates the bearer access token, rejects revoked tokens, and
// stores the claims. The user id also goes into the request context, where
// the restricted database handle reads the caller identity.
func JWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			authFailed(c, log, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			authFailed(c, log, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
		if token == "" {
			authFailed(c, log, auth.ErrInvalidToken, "Missing token")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(token)
		if err != nil {
			authFailed(c, log, err, "Token validation failed")
			return
		}

		ctx := c.Request.Context()
		if err := auth.CheckRevoked(ctx, cfg.Blacklist, claims); err != nil {
			if !errors.Is(err, auth.ErrTokenBlacklisted) {
				// Fail closed: a token we cannot check is not accepted.
				log.Error("Failed to check token revocation", zap.String("user_id", claims.UserID), zap.Error(err))
				abortWithError(c, dto.ErrCodeInternal, "Internal server error")
				return
			}
			authFailed(c, log, err, "Token revoked")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(UserIDKey, claims.UserID)

		ctx, reqLogger := logger.WithUserID(ctx, logger.FromContextOr(ctx, log), claims.UserID)
		c.Set(logger.GinContextKey, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func authFailed(c *gin.Context, log *zap.Logger, err error, reason string) {
	log.Debug("JWT authentication failed",
		zap.Error(err),
		zap.String("reason", reason),
		zap.String("path", c.Request.URL.Path),
	)

	code := dto.ErrCodeUnauthorized
	message := "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		code, message = dto.ErrCodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidTokenType),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrMissingUserID):
		code, message = dto.ErrCodeTokenInvalid, "Invalid token"
	case errors.Is(err, auth.ErrInvalidToken) && reason == "Token validation failed":
		code, message = dto.ErrCodeTokenInvalid, "Invalid token"
	}

	abortWithError(c, code, message)
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
