package handlers

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/apperr"
	"messenger-service/internal/cache"
	"messenger-service/internal/middleware"
	"messenger-service/internal/models"
	"messenger-service/internal/observability"
	"messenger-service/internal/realtime"
	"messenger-service/internal/repositories"
	"messenger-service/internal/storage"
	"messenger-service/internal/telemetry"
)

// MessageHandler manages message reads and writes, including the
// recent-message cache and file attachments.
type MessageHandler struct {
	messageRepo     repositories.MessageRepository
	participantRepo repositories.ParticipantRepository
	recent          *cache.RecentMessages
	store           storage.ObjectStorage
	notifier        *realtime.Notifier
	audit           *telemetry.AuditEmitter
}

func NewMessageHandler(
	messageRepo repositories.MessageRepository,
	participantRepo repositories.ParticipantRepository,
	recent *cache.RecentMessages,
	store storage.ObjectStorage,
	notifier *realtime.Notifier,
	audit *telemetry.AuditEmitter,
) *MessageHandler {
	return &MessageHandler{
		messageRepo:     messageRepo,
		participantRepo: participantRepo,
		recent:          recent,
		store:           store,
		notifier:        notifier,
		audit:           audit,
	}
}

// List returns messages newest first. A first-page request is answered from
// the cache when the cached window is large enough and every entry is
// complete; everything else reads the durable store.
func (h *MessageHandler) List(c *gin.Context) {
	conversationID := c.Param("conversationId")
	if err := requireParticipant(c.Request.Context(), h.participantRepo, conversationID, middleware.UserIDFromContext(c)); err != nil {
		respondError(c, err)
		return
	}

	limit, offset := pagination(c)

	if offset == 0 {
		cached, _ := h.recent.GetRecent(c.Request.Context(), conversationID)
		if cache.ServeFirstPage(cached, offset, limit) {
			c.JSON(http.StatusOK, gin.H{"messages": cached[:limit]})
			return
		}
	}

	messages, err := h.messageRepo.ListMessageSummaries(c.Request.Context(), conversationID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	// Refresh the window from the authoritative read so the next first-page
	// request hits. Entries are pushed oldest first to keep newest at the head.
	if offset == 0 && len(messages) > 0 {
		reversed := make([]models.MessageSummary, len(messages))
		for i, msg := range messages {
			reversed[len(messages)-1-i] = msg
		}
		if err := h.recent.Invalidate(c.Request.Context(), conversationID); err == nil {
			_ = h.recent.CacheRecent(c.Request.Context(), conversationID, reversed)
		}
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type createMessageRequest struct {
	Content          string `json:"content"`
	MessageType      string `json:"messageType"`
	ReplyToMessageID string `json:"replyToMessageId"`
}

func (req *createMessageRequest) replyID() (*int64, error) {
	if req.ReplyToMessageID == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(req.ReplyToMessageID, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperr.Validation("invalid replyToMessageId")
	}
	return &id, nil
}

// Create stores a text message and fans it out.
func (h *MessageHandler) Create(c *gin.Context) {
	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}
	if req.Content == "" {
		respondError(c, apperr.Validation("content is required"))
		return
	}
	if req.MessageType == "" {
		req.MessageType = models.MessageTypeText
	}

	conversationID := c.Param("conversationId")
	senderID := middleware.UserIDFromContext(c)
	if err := requireParticipant(c.Request.Context(), h.participantRepo, conversationID, senderID); err != nil {
		respondError(c, err)
		return
	}

	replyID, err := req.replyID()
	if err != nil {
		respondError(c, err)
		return
	}

	message, err := h.messageRepo.CreateMessage(c.Request.Context(), models.Message{
		ConversationID:   conversationID,
		SenderID:         senderID,
		Content:          req.Content,
		MessageType:      req.MessageType,
		ReplyToMessageID: replyID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.finishCreate(c, message)
}

// CreateWithFiles stores a file message from a multipart request. Uploaded
// objects and the message row are rolled back together when any upload fails.
func (h *MessageHandler) CreateWithFiles(c *gin.Context) {
	conversationID := c.Param("conversationId")
	senderID := middleware.UserIDFromContext(c)
	if err := requireParticipant(c.Request.Context(), h.participantRepo, conversationID, senderID); err != nil {
		respondError(c, err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, apperr.Validation("invalid multipart form"))
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		respondError(c, apperr.Validation("at least one file is required"))
		return
	}

	var total int64
	for _, file := range files {
		if file.Size > storage.MaxFileSize {
			respondError(c, apperr.Validation("file "+file.Filename+" exceeds the per-file size limit"))
			return
		}
		total += file.Size
	}
	if total > storage.MaxBatchSize {
		respondError(c, apperr.Validation("combined upload size exceeds the batch limit"))
		return
	}

	req := createMessageRequest{
		Content:          c.PostForm("content"),
		ReplyToMessageID: c.PostForm("replyToMessageId"),
	}
	replyID, err := req.replyID()
	if err != nil {
		respondError(c, err)
		return
	}

	message, err := h.messageRepo.CreateMessage(c.Request.Context(), models.Message{
		ConversationID:   conversationID,
		SenderID:         senderID,
		Content:          req.Content,
		MessageType:      models.MessageTypeFile,
		ReplyToMessageID: replyID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	uploaded := make([]*storage.UploadResult, 0, len(files))
	rollback := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, result := range uploaded {
			_ = h.store.Delete(ctx, result.PublicID)
		}
		_ = h.messageRepo.DeleteMessage(ctx, message.MessageID)
	}

	for _, file := range files {
		data, err := readMultipartFile(file)
		if err != nil {
			rollback()
			respondError(c, apperr.Validation("could not read file "+file.Filename))
			return
		}

		contentType := file.Header.Get("Content-Type")
		result, err := h.store.Upload(c.Request.Context(), file.Filename, contentType, data)
		if err != nil {
			rollback()
			respondError(c, apperr.Upstream("file upload failed", err))
			return
		}
		uploaded = append(uploaded, result)

		_, err = h.messageRepo.CreateAttachment(c.Request.Context(), models.Attachment{
			MessageID: message.MessageID,
			FileName:  file.Filename,
			FileURL:   result.URL,
			Size:      file.Size,
			FileType:  storage.FileKind(contentType),
			PublicID:  result.PublicID,
		})
		if err != nil {
			rollback()
			respondError(c, err)
			return
		}
	}

	h.finishCreate(c, message)
}

func readMultipartFile(file *multipart.FileHeader) ([]byte, error) {
	reader, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(io.LimitReader(reader, storage.MaxFileSize+1))
}

// finishCreate loads the denormalized summary, caches it and fans it out.
// Cache failures never fail the request; the durable write already happened.
func (h *MessageHandler) finishCreate(c *gin.Context, message models.Message) {
	summary, err := h.messageRepo.GetMessageSummary(c.Request.Context(), message.MessageID)
	if err != nil {
		respondError(c, err)
		return
	}

	_ = h.recent.CacheRecent(c.Request.Context(), summary.ConversationID, []models.MessageSummary{summary})
	h.notifier.NewMessage(summary.ConversationID, summary)
	h.audit.Emit(c.Request.Context(), "info", "message created",
		observability.RequestIDFromRequest(c.Request), &summary.SenderID)

	c.JSON(http.StatusCreated, gin.H{"message": summary})
}

// Update edits or soft-deletes a message. Only the sender may change it.
func (h *MessageHandler) Update(c *gin.Context) {
	messageID, err := pathID(c, "messageId")
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		Content   string `json:"content"`
		IsDeleted *bool  `json:"isDeleted"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}
	if req.Content == "" && req.IsDeleted == nil {
		respondError(c, apperr.Validation("nothing to update"))
		return
	}

	existing, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		respondError(c, err)
		return
	}
	if existing.SenderID != middleware.UserIDFromContext(c) {
		respondError(c, apperr.Forbidden("only the sender can modify a message"))
		return
	}

	if _, err := h.messageRepo.UpdateMessage(c.Request.Context(), messageID, req.Content, req.IsDeleted); err != nil {
		respondError(c, err)
		return
	}

	summary, err := h.messageRepo.GetMessageSummary(c.Request.Context(), messageID)
	if err != nil {
		respondError(c, err)
		return
	}

	// The cached window may hold the stale version; drop it rather than
	// patching in place.
	_ = h.recent.Invalidate(c.Request.Context(), summary.ConversationID)
	h.notifier.MessageUpdated(summary.ConversationID, summary)

	c.JSON(http.StatusOK, gin.H{"message": summary})
}
