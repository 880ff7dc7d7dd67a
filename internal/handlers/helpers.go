package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/apperr"
	"messenger-service/internal/repositories"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

// respondError translates an error into the JSON error body shared by all
// REST endpoints.
func respondError(c *gin.Context, err error) {
	err = classify(err)
	status := apperr.HTTPStatus(err)
	c.AbortWithStatusJSON(status, gin.H{
		"status":    status,
		"message":   apperr.MessageOf(err),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"path":      c.Request.URL.Path,
		"method":    c.Request.Method,
	})
}

// classify maps repository sentinel errors onto error kinds so handlers can
// pass storage errors through without wrapping each one.
func classify(err error) error {
	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		return apperr.NotFound("user not found")
	case errors.Is(err, repositories.ErrConversationNotFound):
		return apperr.NotFound("conversation not found")
	case errors.Is(err, repositories.ErrParticipantNotFound):
		return apperr.NotFound("participant not found")
	case errors.Is(err, repositories.ErrMessageNotFound):
		return apperr.NotFound("message not found")
	case errors.Is(err, repositories.ErrContactNotFound):
		return apperr.NotFound("contact not found")
	case errors.Is(err, repositories.ErrRequestNotFound):
		return apperr.NotFound("request not found")
	case errors.Is(err, repositories.ErrNotificationNotFound):
		return apperr.NotFound("notification not found")
	case errors.Is(err, repositories.ErrAlreadyParticipant):
		return apperr.Conflict("user is already a participant")
	case errors.Is(err, repositories.ErrContactExists):
		return apperr.Conflict("contact already exists")
	case errors.Is(err, repositories.ErrRequestPending):
		return apperr.Conflict("a pending request already exists")
	default:
		return err
	}
}

// pagination reads limit and offset query parameters with sane bounds.
func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid " + name)
	}
	return id, nil
}
