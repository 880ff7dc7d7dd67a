package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/apperr"
	"messenger-service/internal/middleware"
	"messenger-service/internal/models"
	"messenger-service/internal/realtime"
	"messenger-service/internal/repositories"
)

// JoinRequestHandler manages admission into group conversations.
type JoinRequestHandler struct {
	requestRepo      repositories.JoinRequestRepository
	participantRepo  repositories.ParticipantRepository
	convRepo         repositories.ConversationRepository
	notificationRepo repositories.NotificationRepository
	notifier         *realtime.Notifier
}

func NewJoinRequestHandler(
	requestRepo repositories.JoinRequestRepository,
	participantRepo repositories.ParticipantRepository,
	convRepo repositories.ConversationRepository,
	notificationRepo repositories.NotificationRepository,
	notifier *realtime.Notifier,
) *JoinRequestHandler {
	return &JoinRequestHandler{
		requestRepo:      requestRepo,
		participantRepo:  participantRepo,
		convRepo:         convRepo,
		notificationRepo: notificationRepo,
		notifier:         notifier,
	}
}

// Create asks to join a group conversation. Admins and moderators of the
// conversation are notified; the room at large is not.
func (h *JoinRequestHandler) Create(c *gin.Context) {
	conversationID := c.Param("conversationId")
	userID := middleware.UserIDFromContext(c)

	conversation, err := h.convRepo.GetConversation(c.Request.Context(), conversationID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !conversation.IsGroup {
		respondError(c, apperr.Validation("join requests only apply to group conversations"))
		return
	}

	already, err := h.participantRepo.IsParticipant(c.Request.Context(), conversationID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if already {
		respondError(c, apperr.Conflict("already a participant"))
		return
	}

	request, err := h.requestRepo.CreateJoinRequest(c.Request.Context(), conversationID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	moderatorIDs, err := h.participantRepo.ListModeratorIDs(c.Request.Context(), conversationID)
	if err == nil && len(moderatorIDs) > 0 {
		h.notifier.JoinRequestCreated(request, moderatorIDs)
		if payload, err := json.Marshal(request); err == nil {
			for _, moderatorID := range moderatorIDs {
				_, _ = h.notificationRepo.CreateNotification(c.Request.Context(), moderatorID, "join_request", string(payload))
			}
		}
	}

	c.JSON(http.StatusCreated, gin.H{"request": request})
}

// List returns the conversation's join requests. Admins and moderators only.
func (h *JoinRequestHandler) List(c *gin.Context) {
	conversationID := c.Param("conversationId")
	if err := requireRole(c.Request.Context(), h.participantRepo, conversationID, middleware.UserIDFromContext(c), models.RoleAdmin, models.RoleModerator); err != nil {
		respondError(c, err)
		return
	}

	requests, err := h.requestRepo.ListJoinRequests(c.Request.Context(), conversationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// Respond accepts or rejects a pending join request. Acceptance adds the
// requester as a member and the room learns of the decision.
func (h *JoinRequestHandler) Respond(c *gin.Context) {
	requestID, err := pathID(c, "requestId")
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		Accept bool `json:"accept"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	request, err := h.requestRepo.GetJoinRequest(c.Request.Context(), requestID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := requireRole(c.Request.Context(), h.participantRepo, request.ConversationID, middleware.UserIDFromContext(c), models.RoleAdmin, models.RoleModerator); err != nil {
		respondError(c, err)
		return
	}

	status := models.RequestStatusRejected
	if req.Accept {
		status = models.RequestStatusAccepted
	}

	updated, err := h.requestRepo.RespondJoinRequest(c.Request.Context(), requestID, status)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Accept {
		participant, err := h.participantRepo.AddParticipant(c.Request.Context(), updated.ConversationID, updated.UserID, models.RoleMember)
		if err != nil {
			respondError(c, err)
			return
		}
		h.notifier.ParticipantAdded(updated.ConversationID, participant)
	}

	h.notifier.JoinRequestUpdated(updated)
	if payload, err := json.Marshal(updated); err == nil {
		_, _ = h.notificationRepo.CreateNotification(c.Request.Context(), updated.UserID, "join_request_response", string(payload))
	}

	c.JSON(http.StatusOK, gin.H{"request": updated})
}
