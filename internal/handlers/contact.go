package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/apperr"
	"messenger-service/internal/middleware"
	"messenger-service/internal/repositories"
)

// ContactHandler manages the caller's address book.
type ContactHandler struct {
	contactRepo repositories.ContactRepository
	userRepo    repositories.UserRepository
}

func NewContactHandler(contactRepo repositories.ContactRepository, userRepo repositories.UserRepository) *ContactHandler {
	return &ContactHandler{contactRepo: contactRepo, userRepo: userRepo}
}

func (h *ContactHandler) Create(c *gin.Context) {
	var req struct {
		ContactUserID string `json:"contactUserId" binding:"required"`
		Alias         string `json:"alias"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	userID := middleware.UserIDFromContext(c)
	if req.ContactUserID == userID {
		respondError(c, apperr.Validation("cannot add yourself as a contact"))
		return
	}
	if _, err := h.userRepo.GetUser(c.Request.Context(), req.ContactUserID); err != nil {
		respondError(c, err)
		return
	}

	contact, err := h.contactRepo.CreateContact(c.Request.Context(), userID, req.ContactUserID, req.Alias)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"contact": contact})
}

func (h *ContactHandler) List(c *gin.Context) {
	contacts, err := h.contactRepo.ListContacts(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}

func (h *ContactHandler) UpdateAlias(c *gin.Context) {
	contactID, err := pathID(c, "contactId")
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		Alias string `json:"alias" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	if err := h.contactRepo.UpdateAlias(c.Request.Context(), middleware.UserIDFromContext(c), contactID, req.Alias); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "alias updated"})
}

func (h *ContactHandler) Delete(c *gin.Context) {
	contactID, err := pathID(c, "contactId")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.contactRepo.DeleteContact(c.Request.Context(), middleware.UserIDFromContext(c), contactID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "contact removed"})
}
