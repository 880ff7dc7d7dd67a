package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/apperr"
	"messenger-service/internal/middleware"
	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

// FriendRequestHandler manages friendship requests between users.
type FriendRequestHandler struct {
	requestRepo      repositories.FriendRequestRepository
	contactRepo      repositories.ContactRepository
	notificationRepo repositories.NotificationRepository
}

func NewFriendRequestHandler(requestRepo repositories.FriendRequestRepository, contactRepo repositories.ContactRepository, notificationRepo repositories.NotificationRepository) *FriendRequestHandler {
	return &FriendRequestHandler{
		requestRepo:      requestRepo,
		contactRepo:      contactRepo,
		notificationRepo: notificationRepo,
	}
}

func (h *FriendRequestHandler) Create(c *gin.Context) {
	var req struct {
		ReceiverID string `json:"receiverId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	senderID := middleware.UserIDFromContext(c)
	if req.ReceiverID == senderID {
		respondError(c, apperr.Validation("cannot send a friend request to yourself"))
		return
	}

	request, err := h.requestRepo.CreateFriendRequest(c.Request.Context(), senderID, req.ReceiverID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notify(c, req.ReceiverID, "friend_request", request)

	c.JSON(http.StatusCreated, gin.H{"request": request})
}

func (h *FriendRequestHandler) List(c *gin.Context) {
	requests, err := h.requestRepo.ListFriendRequestsForUser(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// Respond accepts or rejects a pending request. Acceptance adds both users to
// each other's contacts.
func (h *FriendRequestHandler) Respond(c *gin.Context) {
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

	request, err := h.requestRepo.GetFriendRequest(c.Request.Context(), requestID)
	if err != nil {
		respondError(c, err)
		return
	}
	if request.ReceiverID != middleware.UserIDFromContext(c) {
		respondError(c, apperr.Forbidden("only the receiver can respond"))
		return
	}

	status := models.RequestStatusRejected
	if req.Accept {
		status = models.RequestStatusAccepted
	}

	updated, err := h.requestRepo.RespondFriendRequest(c.Request.Context(), requestID, status)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Accept {
		_, _ = h.contactRepo.CreateContact(c.Request.Context(), updated.SenderID, updated.ReceiverID, "")
		_, _ = h.contactRepo.CreateContact(c.Request.Context(), updated.ReceiverID, updated.SenderID, "")
	}

	h.notify(c, updated.SenderID, "friend_request_response", updated)

	c.JSON(http.StatusOK, gin.H{"request": updated})
}

func (h *FriendRequestHandler) notify(c *gin.Context, userID, kind string, request models.FriendRequest) {
	payload, err := json.Marshal(request)
	if err != nil {
		return
	}
	_, _ = h.notificationRepo.CreateNotification(c.Request.Context(), userID, kind, string(payload))
}
