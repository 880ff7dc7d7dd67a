package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/apperr"
	"messenger-service/internal/middleware"
	"messenger-service/internal/realtime"
	"messenger-service/internal/repositories"
)

// UserHandler exposes profile and presence lookups.
type UserHandler struct {
	userRepo repositories.UserRepository
	presence *realtime.Presence
}

func NewUserHandler(userRepo repositories.UserRepository, presence *realtime.Presence) *UserHandler {
	return &UserHandler{userRepo: userRepo, presence: presence}
}

// Me returns the authenticated user's profile.
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userRepo.GetUser(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userRepo.GetUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) SearchUsers(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondError(c, apperr.Validation("q is required"))
		return
	}
	limit, _ := pagination(c)

	users, err := h.userRepo.SearchUsers(c.Request.Context(), query, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Avatar   string `json:"avatar"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}
	if req.Username == "" && req.Avatar == "" {
		respondError(c, apperr.Validation("nothing to update"))
		return
	}

	userID := middleware.UserIDFromContext(c)
	if err := h.userRepo.UpdateUser(c.Request.Context(), userID, req.Username, req.Avatar); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.userRepo.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetUserStatus reads the presence record for a user. A missing record means
// the user is offline.
func (h *UserHandler) GetUserStatus(c *gin.Context) {
	status := h.presence.Status(c.Request.Context(), c.Param("userId"))
	c.JSON(http.StatusOK, gin.H{"userId": c.Param("userId"), "status": status})
}
