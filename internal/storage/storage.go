package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"messenger-service/internal/models"
)

const (
	// MaxFileSize caps a single uploaded file.
	MaxFileSize = 10 << 20
	// MaxBatchSize caps the combined size of one upload request.
	MaxBatchSize = 25 << 20
)

var ErrUploadFailed = errors.New("upload failed")

// UploadResult identifies a stored object.
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// ObjectStorage stores and removes message attachments.
type ObjectStorage interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (*UploadResult, error)
	Delete(ctx context.Context, publicID string) error
}

// FileKind maps a MIME type to the attachment file type recorded with the message.
func FileKind(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return models.FileTypeImage
	case strings.HasPrefix(contentType, "video/"):
		return models.FileTypeVideo
	case strings.HasPrefix(contentType, "audio/"):
		return models.FileTypeAudio
	case contentType == "application/pdf":
		return models.FileTypePDF
	case strings.Contains(contentType, "word") || strings.Contains(contentType, "document") ||
		contentType == "text/plain":
		return models.FileTypeDocument
	default:
		return models.FileTypeOther
	}
}

// Folder picks the remote folder for a MIME type.
func Folder(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "messenger/images"
	case strings.HasPrefix(contentType, "video/"), strings.HasPrefix(contentType, "audio/"):
		return "messenger/media"
	default:
		return "messenger/documents"
	}
}

// HTTPStorage uploads objects to a media server over HTTP.
type HTTPStorage struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPStorage(baseURL, apiKey string) *HTTPStorage {
	return &HTTPStorage{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPStorage) Upload(ctx context.Context, filename, contentType string, data []byte) (*UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("folder", Folder(contentType)); err != nil {
		return nil, err
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUploadFailed, resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUploadFailed, err)
	}
	if result.URL == "" || result.PublicID == "" {
		return nil, fmt.Errorf("%w: incomplete response", ErrUploadFailed)
	}
	return &result, nil
}

func (s *HTTPStorage) Delete(ctx context.Context, publicID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.baseURL+"/files/"+publicID, nil)
	if err != nil {
		return err
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("delete %s: status %d", publicID, resp.StatusCode)
	}
	return nil
}

var _ ObjectStorage = (*HTTPStorage)(nil)

// NoopStorage is used when no media server is configured. Uploads fail loudly
// so file messages are rejected instead of silently losing attachments.
type NoopStorage struct{}

func (NoopStorage) Upload(ctx context.Context, filename, contentType string, data []byte) (*UploadResult, error) {
	return nil, fmt.Errorf("%w: object storage not configured", ErrUploadFailed)
}

func (NoopStorage) Delete(ctx context.Context, publicID string) error {
	log.Printf("storage noop delete public_id=%s", publicID)
	return nil
}

var _ ObjectStorage = (*NoopStorage)(nil)
