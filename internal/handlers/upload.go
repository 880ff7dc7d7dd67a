package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/apperr"
	"messenger-service/internal/storage"
)

// UploadHandler exposes object storage directly, for clients that upload
// media ahead of sending the message that references it.
type UploadHandler struct {
	store storage.ObjectStorage
}

func NewUploadHandler(store storage.ObjectStorage) *UploadHandler {
	return &UploadHandler{store: store}
}

type uploadedFile struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Size     int64  `json:"size"`
}

// Upload stores the files of a multipart request. The batch is all or
// nothing; a mid-batch failure deletes the objects already stored.
func (h *UploadHandler) Upload(c *gin.Context) {
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

	uploaded := make([]uploadedFile, 0, len(files))
	rollback := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, result := range uploaded {
			_ = h.store.Delete(ctx, result.PublicID)
		}
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
		uploaded = append(uploaded, uploadedFile{
			FileName: file.Filename,
			FileType: storage.FileKind(contentType),
			URL:      result.URL,
			PublicID: result.PublicID,
			Size:     file.Size,
		})
	}

	c.JSON(http.StatusCreated, gin.H{"files": uploaded})
}

// Delete removes a stored object by its public id, passed as a query
// parameter because public ids contain slashes.
func (h *UploadHandler) Delete(c *gin.Context) {
	publicID := c.Query("publicId")
	if publicID == "" {
		respondError(c, apperr.Validation("publicId is required"))
		return
	}
	if err := h.store.Delete(c.Request.Context(), publicID); err != nil {
		respondError(c, apperr.Upstream("file deletion failed", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
