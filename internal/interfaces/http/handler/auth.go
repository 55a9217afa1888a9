package handler

import (
	"time"

	identityapp "github.com/cultivo/backend/internal/application/identity"
	"github.com/cultivo/backend/internal/interfaces/http/dto"
	"github.com/cultivo/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignupRequest registers an account
type SignupRequest struct {
	Email           string `json:"email" binding:"required,email,max=200"`
	Password        string `json:"password" binding:"required,min=8,max=128"`
	FullName        string `json:"full_name" binding:"required,max=200"`
	InvitationToken string `json:"invitation_token" binding:"omitempty,max=200"`
}

// SignupResponse is returned by signup
type SignupResponse struct {
	User                 identityapp.UserInfo `json:"user"`
	RequiresVerification bool                 `json:"requires_verification"`
}

// LoginRequest holds login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries a token pair
type TokenResponse struct {
	AccessToken           string                `json:"access_token"`
	RefreshToken          string                `json:"refresh_token"`
	AccessTokenExpiresAt  string                `json:"access_token_expires_at"`
	RefreshTokenExpiresAt string                `json:"refresh_token_expires_at"`
	TokenType             string                `json:"token_type"`
	User                  *identityapp.UserInfo `json:"user,omitempty"`
}

// RefreshRequest holds a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenRequest holds a one-time email token
type TokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// ForgotPasswordRequest starts a password reset
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes a password reset
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// ChangePasswordRequest changes the caller's password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// Signup POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), identityapp.SignupInput{
		Email:           req.Email,
		Password:        req.Password,
		FullName:        req.FullName,
		InvitationToken: req.InvitationToken,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, SignupResponse{User: result.User, RequiresVerification: result.RequiresVerification})
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identityapp.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	user := result.User
	h.Success(c, TokenResponse{
		AccessToken:           result.AccessToken,
		RefreshToken:          result.RefreshToken,
		AccessTokenExpiresAt:  result.AccessTokenExpiresAt.Format(time.RFC3339),
		RefreshTokenExpiresAt: result.RefreshTokenExpiresAt.Format(time.RFC3339),
		TokenType:             result.TokenType,
		User:                  &user,
	})
}

// Refresh POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, TokenResponse{
		AccessToken:           result.AccessToken,
		RefreshToken:          result.RefreshToken,
		AccessTokenExpiresAt:  result.AccessTokenExpiresAt.Format(time.RFC3339),
		RefreshTokenExpiresAt: result.RefreshTokenExpiresAt.Format(time.RFC3339),
		TokenType:             result.TokenType,
	})
}

// VerifyEmail POST /auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req TokenRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.authService.VerifyEmail(c.Request.Context(), req.Token)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessMessage(c, user, "Email verified")
}

// ForgotPassword always answers 200 so callers cannot probe for accounts.
// POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessMessage(c, nil, "If the account exists, a reset link has been sent")
}

// ResetPassword POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessMessage(c, nil, "Password has been reset")
}

// Me GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), actorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, user)
}

// Logout POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Error(c, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessMessage(c, nil, "Logged out")
}

// ChangePassword POST /auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), identityapp.ChangePasswordInput{
		UserID:      actorID(c),
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessMessage(c, nil, "Password changed")
}
