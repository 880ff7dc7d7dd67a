package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/apperr"
	"messenger-service/internal/middleware"
	"messenger-service/internal/models"
	"messenger-service/internal/realtime"
	"messenger-service/internal/repositories"
)

// ParticipantHandler manages conversation membership.
type ParticipantHandler struct {
	participantRepo repositories.ParticipantRepository
	notifier        *realtime.Notifier
}

func NewParticipantHandler(participantRepo repositories.ParticipantRepository, notifier *realtime.Notifier) *ParticipantHandler {
	return &ParticipantHandler{participantRepo: participantRepo, notifier: notifier}
}

func (h *ParticipantHandler) List(c *gin.Context) {
	conversationID := c.Param("conversationId")
	if err := requireParticipant(c.Request.Context(), h.participantRepo, conversationID, middleware.UserIDFromContext(c)); err != nil {
		respondError(c, err)
		return
	}

	participants, err := h.participantRepo.ListParticipants(c.Request.Context(), conversationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": participants})
}

// Add invites a user into the conversation. Admins and moderators only. A
// user who previously left is revived instead of duplicated.
func (h *ParticipantHandler) Add(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
		Role   string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}
	if req.Role == "" {
		req.Role = models.RoleMember
	}
	if req.Role != models.RoleMember && req.Role != models.RoleModerator && req.Role != models.RoleAdmin {
		respondError(c, apperr.Validation("invalid role"))
		return
	}

	conversationID := c.Param("conversationId")
	callerID := middleware.UserIDFromContext(c)
	if err := requireRole(c.Request.Context(), h.participantRepo, conversationID, callerID, models.RoleAdmin, models.RoleModerator); err != nil {
		respondError(c, err)
		return
	}

	participant, err := h.participantRepo.AddParticipant(c.Request.Context(), conversationID, req.UserID, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifier.ParticipantAdded(conversationID, participant)

	c.JSON(http.StatusCreated, gin.H{"participant": participant})
}

// UpdateRole changes a participant's role. Admin only.
func (h *ParticipantHandler) UpdateRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}
	if req.Role != models.RoleMember && req.Role != models.RoleModerator && req.Role != models.RoleAdmin {
		respondError(c, apperr.Validation("invalid role"))
		return
	}

	conversationID := c.Param("conversationId")
	callerID := middleware.UserIDFromContext(c)
	if err := requireRole(c.Request.Context(), h.participantRepo, conversationID, callerID, models.RoleAdmin); err != nil {
		respondError(c, err)
		return
	}

	participant, err := h.participantRepo.UpdateRole(c.Request.Context(), conversationID, c.Param("userId"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifier.ParticipantUpdated(conversationID, participant)

	c.JSON(http.StatusOK, gin.H{"participant": participant})
}

// Remove takes a participant out of the conversation. A caller removing
// themselves leaves; removing someone else requires admin or moderator. The
// removed user receives a personalized copy of the event explaining which of
// the two happened.
func (h *ParticipantHandler) Remove(c *gin.Context) {
	conversationID := c.Param("conversationId")
	targetID := c.Param("userId")
	callerID := middleware.UserIDFromContext(c)

	reason := realtime.RemovalReasonLeft
	if targetID != callerID {
		if err := requireRole(c.Request.Context(), h.participantRepo, conversationID, callerID, models.RoleAdmin, models.RoleModerator); err != nil {
			respondError(c, err)
			return
		}
		reason = realtime.RemovalReasonRemoved
	} else if err := requireParticipant(c.Request.Context(), h.participantRepo, conversationID, callerID); err != nil {
		respondError(c, err)
		return
	}

	if err := h.participantRepo.MarkLeft(c.Request.Context(), conversationID, targetID); err != nil {
		respondError(c, err)
		return
	}

	h.notifier.ParticipantRemoved(conversationID, targetID, callerID, reason)

	c.JSON(http.StatusOK, gin.H{"message": "participant removed"})
}
