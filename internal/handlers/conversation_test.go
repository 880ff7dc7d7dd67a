package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/cache"
	"messenger-service/internal/middleware"
	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
	"messenger-service/internal/realtime"
)

// kvCache is an in-memory key-value store, enough to exercise the
// conversation read-through cache without Redis.
type kvCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

var _ cache.Cache = (*kvCache)(nil)

func newKVCache() *kvCache {
	return &kvCache{entries: make(map[string][]byte)}
}

func (k *kvCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.entries[key] = data
	return nil
}

func (k *kvCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	k.mu.Lock()
	data, ok := k.entries[key]
	k.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (k *kvCache) Del(ctx context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.entries, key)
	return nil
}

func (k *kvCache) Exists(ctx context.Context, key string) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.entries[key]
	return ok, nil
}

func (k *kvCache) Expire(ctx context.Context, key string, ttl time.Duration) error { return nil }

func (k *kvCache) PushList(ctx context.Context, key string, value any) error { return nil }

func (k *kvCache) RangeList(ctx context.Context, key string, start, end int64) ([]string, error) {
	return nil, nil
}

func (k *kvCache) TrimList(ctx context.Context, key string, start, end int64) error { return nil }

func setupConversationRouter(handler *ConversationHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "alice")
		c.Next()
	})
	r.POST("/conversations", handler.Create)
	r.GET("/conversations", handler.List)
	r.GET("/conversations/:conversationId", handler.Get)
	r.PATCH("/conversations/:conversationId", handler.Update)
	r.DELETE("/conversations/:conversationId", handler.Deactivate)
	return r
}

func newConversationHandler(convRepo *mocks.ConversationRepositoryMock, participantRepo *mocks.ParticipantRepositoryMock) *ConversationHandler {
	return NewConversationHandler(convRepo, participantRepo, cache.NewConversations(newKVCache()), realtime.NewNotifier(realtime.NewHub()))
}

func TestCreateConversationAddsCreator(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	handler := newConversationHandler(convRepo, new(mocks.ParticipantRepositoryMock))
	router := setupConversationRouter(handler)

	convRepo.On("CreateConversation", mock.Anything, mock.MatchedBy(func(conv models.Conversation) bool {
		return conv.CreatorID == "alice" && conv.IsGroup && conv.IsActive
	}), []string{"alice", "bob", "carol"}).Return(nil).Once()
	convRepo.On("GetConversation", mock.Anything, mock.Anything).
		Return(models.Conversation{Title: "team", IsGroup: true}, nil).Once()

	body := bytes.NewBufferString(`{"title":"team","isGroup":true,"participantIds":["bob","carol"]}`)
	req := httptest.NewRequest(http.MethodPost, "/conversations", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	convRepo.AssertExpectations(t)
}

func TestCreateDirectConversationNeedsExactlyOnePeer(t *testing.T) {
	handler := newConversationHandler(new(mocks.ConversationRepositoryMock), new(mocks.ParticipantRepositoryMock))
	router := setupConversationRouter(handler)

	body := bytes.NewBufferString(`{"isGroup":false,"participantIds":["bob","carol"]}`)
	req := httptest.NewRequest(http.MethodPost, "/conversations", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetConversationForbiddenForOutsiders(t *testing.T) {
	participantRepo := new(mocks.ParticipantRepositoryMock)
	handler := newConversationHandler(new(mocks.ConversationRepositoryMock), participantRepo)
	router := setupConversationRouter(handler)

	participantRepo.On("IsParticipant", mock.Anything, "conv-1", "alice").Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations/conv-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	participantRepo.AssertExpectations(t)
}

func TestGetConversationSecondReadServedFromCache(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	participantRepo := new(mocks.ParticipantRepositoryMock)
	handler := newConversationHandler(convRepo, participantRepo)
	router := setupConversationRouter(handler)

	participantRepo.On("IsParticipant", mock.Anything, "conv-1", "alice").Return(true, nil).Twice()
	convRepo.On("GetConversation", mock.Anything, "conv-1").
		Return(models.Conversation{ConversationID: "conv-1", Title: "team", IsActive: true}, nil).Once()

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/conversations/conv-1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "team")
	}

	convRepo.AssertExpectations(t)
	participantRepo.AssertExpectations(t)
}

func TestDeactivateDropsCachedConversation(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	participantRepo := new(mocks.ParticipantRepositoryMock)
	handler := newConversationHandler(convRepo, participantRepo)
	router := setupConversationRouter(handler)

	participantRepo.On("IsParticipant", mock.Anything, "conv-1", "alice").Return(true, nil).Twice()
	participantRepo.On("GetParticipant", mock.Anything, "conv-1", "alice").
		Return(models.Participant{UserID: "alice", Role: models.RoleAdmin}, nil).Once()
	participantRepo.On("ListParticipantIDs", mock.Anything, "conv-1").
		Return([]string{"alice"}, nil).Once()
	convRepo.On("GetConversation", mock.Anything, "conv-1").
		Return(models.Conversation{ConversationID: "conv-1", Title: "team", IsActive: true}, nil).Twice()
	convRepo.On("DeactivateConversation", mock.Anything, "conv-1").Return(nil).Once()

	get := func() {
		req := httptest.NewRequest(http.MethodGet, "/conversations/conv-1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	get()

	req := httptest.NewRequest(http.MethodDelete, "/conversations/conv-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	get()

	convRepo.AssertExpectations(t)
	participantRepo.AssertExpectations(t)
}

func TestUpdateConversationRequiresModeratorRole(t *testing.T) {
	participantRepo := new(mocks.ParticipantRepositoryMock)
	handler := newConversationHandler(new(mocks.ConversationRepositoryMock), participantRepo)
	router := setupConversationRouter(handler)

	participantRepo.On("GetParticipant", mock.Anything, "conv-1", "alice").
		Return(models.Participant{UserID: "alice", Role: models.RoleMember}, nil).Once()

	body := bytes.NewBufferString(`{"title":"renamed"}`)
	req := httptest.NewRequest(http.MethodPatch, "/conversations/conv-1", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	participantRepo.AssertExpectations(t)
}

func TestUpdateConversationAsModerator(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	participantRepo := new(mocks.ParticipantRepositoryMock)
	handler := newConversationHandler(convRepo, participantRepo)
	router := setupConversationRouter(handler)

	participantRepo.On("GetParticipant", mock.Anything, "conv-1", "alice").
		Return(models.Participant{UserID: "alice", Role: models.RoleModerator}, nil).Once()
	convRepo.On("UpdateConversation", mock.Anything, "conv-1", "renamed", "").Return(nil).Once()
	convRepo.On("GetConversation", mock.Anything, "conv-1").
		Return(models.Conversation{ConversationID: "conv-1", Title: "renamed"}, nil).Once()
	participantRepo.On("ListParticipantIDs", mock.Anything, "conv-1").
		Return([]string{"alice", "bob"}, nil).Once()

	body := bytes.NewBufferString(`{"title":"renamed"}`)
	req := httptest.NewRequest(http.MethodPatch, "/conversations/conv-1", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Conversation models.Conversation `json:"conversation"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "renamed", resp.Conversation.Title)
	convRepo.AssertExpectations(t)
	participantRepo.AssertExpectations(t)
}

func TestDeactivateConversationAdminOnly(t *testing.T) {
	participantRepo := new(mocks.ParticipantRepositoryMock)
	handler := newConversationHandler(new(mocks.ConversationRepositoryMock), participantRepo)
	router := setupConversationRouter(handler)

	participantRepo.On("GetParticipant", mock.Anything, "conv-1", "alice").
		Return(models.Participant{UserID: "alice", Role: models.RoleModerator}, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/conversations/conv-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	participantRepo.AssertExpectations(t)
}
