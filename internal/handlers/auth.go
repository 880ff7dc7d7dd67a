package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"messenger-service/internal/apperr"
	"messenger-service/internal/cache"
	"messenger-service/internal/email"
	"messenger-service/internal/middleware"
	"messenger-service/internal/models"
	"messenger-service/internal/observability"
	"messenger-service/internal/repositories"
	"messenger-service/internal/telemetry"
)

const (
	passwordResetTTL = 15 * time.Minute
	emailVerifyTTL   = 24 * time.Hour
)

// AuthHandler manages registration, login and credential recovery.
type AuthHandler struct {
	userRepo repositories.UserRepository
	tokens   *middleware.Tokens
	cache    cache.Cache
	mail     email.Sender
	audit    *telemetry.AuditEmitter
}

func NewAuthHandler(userRepo repositories.UserRepository, tokens *middleware.Tokens, c cache.Cache, mail email.Sender, audit *telemetry.AuditEmitter) *AuthHandler {
	return &AuthHandler{
		userRepo: userRepo,
		tokens:   tokens,
		cache:    c,
		mail:     mail,
		audit:    audit,
	}
}

func resetKey(token string) string {
	return fmt.Sprintf("password-reset:%s", token)
}

func verifyKey(token string) string {
	return fmt.Sprintf("email-verify:%s", token)
}

// Register creates an account and sends the verification mail.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, err)
		return
	}

	user := models.User{
		UserID:       uuid.NewString(),
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := h.userRepo.CreateUser(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	token := uuid.NewString()
	if err := h.cache.Set(c.Request.Context(), verifyKey(token), user.UserID, emailVerifyTTL); err == nil {
		_ = h.mail.Send(user.Email, "Verify your email",
			fmt.Sprintf("Hi %s, confirm your address with token %s", user.Username, token))
	}

	h.audit.Emit(c.Request.Context(), "info", "user registered",
		observability.RequestIDFromRequest(c.Request), &user.UserID)

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Login verifies credentials and returns an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	user, err := h.userRepo.GetUserByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		respondError(c, apperr.Unauthorized("invalid credentials"))
		return
	}
	if !user.IsActive {
		respondError(c, apperr.Unauthorized("account disabled"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respondError(c, apperr.Unauthorized("invalid credentials"))
		return
	}

	token, err := h.tokens.Issue(user.UserID, user.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	h.audit.Emit(c.Request.Context(), "info", "user logged in from "+observability.IPFromRequest(c.Request),
		observability.RequestIDFromRequest(c.Request), &user.UserID)

	c.JSON(http.StatusOK, gin.H{"accessToken": token, "user": user})
}

// RequestPasswordReset mails a one-time reset token. The response is the same
// whether or not the address exists.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	user, err := h.userRepo.GetUserByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err == nil {
		token := uuid.NewString()
		if err := h.cache.Set(c.Request.Context(), resetKey(token), user.UserID, passwordResetTTL); err == nil {
			_ = h.mail.Send(user.Email, "Password reset",
				fmt.Sprintf("Use token %s to reset your password. It expires in %d minutes.",
					token, int(passwordResetTTL.Minutes())))
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "if the address exists, a reset mail was sent"})
}

// ResetPassword consumes a reset token and stores the new password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	var userID string
	found, err := h.cache.Get(c.Request.Context(), resetKey(req.Token), &userID)
	if err != nil || !found {
		respondError(c, apperr.Unauthorized("invalid or expired reset token"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.userRepo.UpdatePassword(c.Request.Context(), userID, string(hash)); err != nil {
		respondError(c, err)
		return
	}
	_ = h.cache.Del(c.Request.Context(), resetKey(req.Token))

	h.audit.Emit(c.Request.Context(), "warn", "password reset",
		observability.RequestIDFromRequest(c.Request), &userID)

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// VerifyEmail consumes a verification token.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		respondError(c, apperr.Validation("token is required"))
		return
	}

	var userID string
	found, err := h.cache.Get(c.Request.Context(), verifyKey(token), &userID)
	if err != nil || !found {
		respondError(c, apperr.Unauthorized("invalid or expired verification token"))
		return
	}

	if err := h.userRepo.MarkEmailVerified(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	_ = h.cache.Del(c.Request.Context(), verifyKey(token))

	c.JSON(http.StatusOK, gin.H{"message": "email verified"})
}
