package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"messenger-service/internal/apperr"
	"messenger-service/internal/cache"
	"messenger-service/internal/middleware"
	"messenger-service/internal/models"
	"messenger-service/internal/realtime"
	"messenger-service/internal/repositories"
)

// ConversationHandler manages conversation lifecycle endpoints.
type ConversationHandler struct {
	convRepo        repositories.ConversationRepository
	participantRepo repositories.ParticipantRepository
	convCache       *cache.Conversations
	notifier        *realtime.Notifier
}

func NewConversationHandler(convRepo repositories.ConversationRepository, participantRepo repositories.ParticipantRepository, convCache *cache.Conversations, notifier *realtime.Notifier) *ConversationHandler {
	return &ConversationHandler{
		convRepo:        convRepo,
		participantRepo: participantRepo,
		convCache:       convCache,
		notifier:        notifier,
	}
}

// requireParticipant checks conversation membership for the caller.
func requireParticipant(ctx context.Context, repo repositories.ParticipantRepository, conversationID, userID string) error {
	ok, err := repo.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden("not a participant of this conversation")
	}
	return nil
}

// requireRole checks that the caller holds one of the given roles.
func requireRole(ctx context.Context, repo repositories.ParticipantRepository, conversationID, userID string, roles ...string) error {
	participant, err := repo.GetParticipant(ctx, conversationID, userID)
	if err != nil {
		return apperr.Forbidden("not a participant of this conversation")
	}
	for _, role := range roles {
		if participant.Role == role {
			return nil
		}
	}
	return apperr.Forbidden("insufficient role")
}

// Create starts a conversation with the caller as admin.
func (h *ConversationHandler) Create(c *gin.Context) {
	var req struct {
		Title          string   `json:"title"`
		Avatar         string   `json:"avatar"`
		IsGroup        bool     `json:"isGroup"`
		ParticipantIDs []string `json:"participantIds" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	userID := middleware.UserIDFromContext(c)
	if !req.IsGroup && len(req.ParticipantIDs) != 1 {
		respondError(c, apperr.Validation("a direct conversation needs exactly one other participant"))
		return
	}

	conversation := models.Conversation{
		ConversationID: uuid.NewString(),
		Title:          req.Title,
		Avatar:         req.Avatar,
		IsGroup:        req.IsGroup,
		CreatorID:      userID,
		IsActive:       true,
	}

	participantIDs := append([]string{userID}, req.ParticipantIDs...)
	if err := h.convRepo.CreateConversation(c.Request.Context(), conversation, participantIDs); err != nil {
		respondError(c, err)
		return
	}

	created, err := h.convRepo.GetConversation(c.Request.Context(), conversation.ConversationID)
	if err != nil {
		respondError(c, err)
		return
	}

	_ = h.convCache.Cache(c.Request.Context(), created)
	h.notifier.ConversationCreated(created.ConversationID, participantIDs)

	c.JSON(http.StatusCreated, gin.H{"conversation": created})
}

// List returns the caller's active conversations.
func (h *ConversationHandler) List(c *gin.Context) {
	conversations, err := h.convRepo.ListConversationsForUser(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

func (h *ConversationHandler) Get(c *gin.Context) {
	conversationID := c.Param("conversationId")
	if err := requireParticipant(c.Request.Context(), h.participantRepo, conversationID, middleware.UserIDFromContext(c)); err != nil {
		respondError(c, err)
		return
	}

	if cached, ok := h.convCache.Get(c.Request.Context(), conversationID); ok {
		c.JSON(http.StatusOK, gin.H{"conversation": cached})
		return
	}

	conversation, err := h.convRepo.GetConversation(c.Request.Context(), conversationID)
	if err != nil {
		respondError(c, err)
		return
	}
	_ = h.convCache.Cache(c.Request.Context(), conversation)
	c.JSON(http.StatusOK, gin.H{"conversation": conversation})
}

// Update changes title or avatar. Admins and moderators only.
func (h *ConversationHandler) Update(c *gin.Context) {
	var req struct {
		Title  string `json:"title"`
		Avatar string `json:"avatar"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	conversationID := c.Param("conversationId")
	userID := middleware.UserIDFromContext(c)
	if err := requireRole(c.Request.Context(), h.participantRepo, conversationID, userID, models.RoleAdmin, models.RoleModerator); err != nil {
		respondError(c, err)
		return
	}

	if err := h.convRepo.UpdateConversation(c.Request.Context(), conversationID, req.Title, req.Avatar); err != nil {
		respondError(c, err)
		return
	}

	conversation, err := h.convRepo.GetConversation(c.Request.Context(), conversationID)
	if err != nil {
		respondError(c, err)
		return
	}
	_ = h.convCache.Cache(c.Request.Context(), conversation)

	participantIDs, err := h.participantRepo.ListParticipantIDs(c.Request.Context(), conversationID)
	if err == nil {
		h.notifier.ConversationUpdated(conversationID, participantIDs)
	}

	c.JSON(http.StatusOK, gin.H{"conversation": conversation})
}

// Deactivate soft-deletes a conversation. Admin only.
func (h *ConversationHandler) Deactivate(c *gin.Context) {
	conversationID := c.Param("conversationId")
	userID := middleware.UserIDFromContext(c)
	if err := requireRole(c.Request.Context(), h.participantRepo, conversationID, userID, models.RoleAdmin); err != nil {
		respondError(c, err)
		return
	}

	if err := h.convRepo.DeactivateConversation(c.Request.Context(), conversationID); err != nil {
		respondError(c, err)
		return
	}
	_ = h.convCache.Invalidate(c.Request.Context(), conversationID)

	participantIDs, err := h.participantRepo.ListParticipantIDs(c.Request.Context(), conversationID)
	if err == nil {
		h.notifier.ConversationUpdated(conversationID, participantIDs)
	}

	c.JSON(http.StatusOK, gin.H{"message": "conversation deactivated"})
}
