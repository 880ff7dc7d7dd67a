package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"messenger-service/internal/cache"
	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
	"messenger-service/internal/storage"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID string) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUsers(ctx context.Context, userIDs []string) ([]models.User, error) {
	args := m.Called(ctx, userIDs)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error) {
	args := m.Called(ctx, query, limit)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) UpdateUser(ctx context.Context, userID string, username, avatar string) error {
	args := m.Called(ctx, userID, username, avatar)
	return args.Error(0)
}

func (m *UserRepositoryMock) UpdatePassword(ctx context.Context, userID string, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

func (m *UserRepositoryMock) MarkEmailVerified(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) CreateConversation(ctx context.Context, conversation models.Conversation, participantIDs []string) error {
	args := m.Called(ctx, conversation, participantIDs)
	return args.Error(0)
}

func (m *ConversationRepositoryMock) GetConversation(ctx context.Context, conversationID string) (models.Conversation, error) {
	args := m.Called(ctx, conversationID)
	var conversation models.Conversation
	if val := args.Get(0); val != nil {
		conversation = val.(models.Conversation)
	}
	return conversation, args.Error(1)
}

func (m *ConversationRepositoryMock) ListConversationsForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	args := m.Called(ctx, userID)
	var conversations []models.Conversation
	if val := args.Get(0); val != nil {
		conversations = val.([]models.Conversation)
	}
	return conversations, args.Error(1)
}

func (m *ConversationRepositoryMock) UpdateConversation(ctx context.Context, conversationID string, title, avatar string) error {
	args := m.Called(ctx, conversationID, title, avatar)
	return args.Error(0)
}

func (m *ConversationRepositoryMock) DeactivateConversation(ctx context.Context, conversationID string) error {
	args := m.Called(ctx, conversationID)
	return args.Error(0)
}

type ParticipantRepositoryMock struct {
	mock.Mock
}

func (m *ParticipantRepositoryMock) AddParticipant(ctx context.Context, conversationID, userID, role string) (models.Participant, error) {
	args := m.Called(ctx, conversationID, userID, role)
	var participant models.Participant
	if val := args.Get(0); val != nil {
		participant = val.(models.Participant)
	}
	return participant, args.Error(1)
}

func (m *ParticipantRepositoryMock) GetParticipant(ctx context.Context, conversationID, userID string) (models.Participant, error) {
	args := m.Called(ctx, conversationID, userID)
	var participant models.Participant
	if val := args.Get(0); val != nil {
		participant = val.(models.Participant)
	}
	return participant, args.Error(1)
}

func (m *ParticipantRepositoryMock) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ParticipantRepositoryMock) ListParticipants(ctx context.Context, conversationID string) ([]models.Participant, error) {
	args := m.Called(ctx, conversationID)
	var participants []models.Participant
	if val := args.Get(0); val != nil {
		participants = val.([]models.Participant)
	}
	return participants, args.Error(1)
}

func (m *ParticipantRepositoryMock) ListModeratorIDs(ctx context.Context, conversationID string) ([]string, error) {
	args := m.Called(ctx, conversationID)
	var ids []string
	if val := args.Get(0); val != nil {
		ids = val.([]string)
	}
	return ids, args.Error(1)
}

func (m *ParticipantRepositoryMock) ListParticipantIDs(ctx context.Context, conversationID string) ([]string, error) {
	args := m.Called(ctx, conversationID)
	var ids []string
	if val := args.Get(0); val != nil {
		ids = val.([]string)
	}
	return ids, args.Error(1)
}

func (m *ParticipantRepositoryMock) UpdateRole(ctx context.Context, conversationID, userID, role string) (models.Participant, error) {
	args := m.Called(ctx, conversationID, userID, role)
	var participant models.Participant
	if val := args.Get(0); val != nil {
		participant = val.(models.Participant)
	}
	return participant, args.Error(1)
}

func (m *ParticipantRepositoryMock) MarkLeft(ctx context.Context, conversationID, userID string) error {
	args := m.Called(ctx, conversationID, userID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, message models.Message) (models.Message, error) {
	args := m.Called(ctx, message)
	var created models.Message
	if val := args.Get(0); val != nil {
		created = val.(models.Message)
	}
	return created, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID int64) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var message models.Message
	if val := args.Get(0); val != nil {
		message = val.(models.Message)
	}
	return message, args.Error(1)
}

func (m *MessageRepositoryMock) DeleteMessage(ctx context.Context, messageID int64) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) UpdateMessage(ctx context.Context, messageID int64, content string, isDeleted *bool) (models.Message, error) {
	args := m.Called(ctx, messageID, content, isDeleted)
	var message models.Message
	if val := args.Get(0); val != nil {
		message = val.(models.Message)
	}
	return message, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessageSummaries(ctx context.Context, conversationID string, limit, offset int) ([]models.MessageSummary, error) {
	args := m.Called(ctx, conversationID, limit, offset)
	var summaries []models.MessageSummary
	if val := args.Get(0); val != nil {
		summaries = val.([]models.MessageSummary)
	}
	return summaries, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessageSummary(ctx context.Context, messageID int64) (models.MessageSummary, error) {
	args := m.Called(ctx, messageID)
	var summary models.MessageSummary
	if val := args.Get(0); val != nil {
		summary = val.(models.MessageSummary)
	}
	return summary, args.Error(1)
}

func (m *MessageRepositoryMock) CreateAttachment(ctx context.Context, attachment models.Attachment) (models.Attachment, error) {
	args := m.Called(ctx, attachment)
	var created models.Attachment
	if val := args.Get(0); val != nil {
		created = val.(models.Attachment)
	}
	return created, args.Error(1)
}

func (m *MessageRepositoryMock) ListAttachments(ctx context.Context, messageID int64) ([]models.Attachment, error) {
	args := m.Called(ctx, messageID)
	var attachments []models.Attachment
	if val := args.Get(0); val != nil {
		attachments = val.([]models.Attachment)
	}
	return attachments, args.Error(1)
}

type ContactRepositoryMock struct {
	mock.Mock
}

func (m *ContactRepositoryMock) CreateContact(ctx context.Context, userID, contactUserID, alias string) (models.Contact, error) {
	args := m.Called(ctx, userID, contactUserID, alias)
	var contact models.Contact
	if val := args.Get(0); val != nil {
		contact = val.(models.Contact)
	}
	return contact, args.Error(1)
}

func (m *ContactRepositoryMock) ListContacts(ctx context.Context, userID string) ([]models.Contact, error) {
	args := m.Called(ctx, userID)
	var contacts []models.Contact
	if val := args.Get(0); val != nil {
		contacts = val.([]models.Contact)
	}
	return contacts, args.Error(1)
}

func (m *ContactRepositoryMock) UpdateAlias(ctx context.Context, userID string, contactID int64, alias string) error {
	args := m.Called(ctx, userID, contactID, alias)
	return args.Error(0)
}

func (m *ContactRepositoryMock) DeleteContact(ctx context.Context, userID string, contactID int64) error {
	args := m.Called(ctx, userID, contactID)
	return args.Error(0)
}

type FriendRequestRepositoryMock struct {
	mock.Mock
}

func (m *FriendRequestRepositoryMock) CreateFriendRequest(ctx context.Context, senderID, receiverID string) (models.FriendRequest, error) {
	args := m.Called(ctx, senderID, receiverID)
	var request models.FriendRequest
	if val := args.Get(0); val != nil {
		request = val.(models.FriendRequest)
	}
	return request, args.Error(1)
}

func (m *FriendRequestRepositoryMock) GetFriendRequest(ctx context.Context, requestID int64) (models.FriendRequest, error) {
	args := m.Called(ctx, requestID)
	var request models.FriendRequest
	if val := args.Get(0); val != nil {
		request = val.(models.FriendRequest)
	}
	return request, args.Error(1)
}

func (m *FriendRequestRepositoryMock) ListFriendRequestsForUser(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	args := m.Called(ctx, userID)
	var requests []models.FriendRequest
	if val := args.Get(0); val != nil {
		requests = val.([]models.FriendRequest)
	}
	return requests, args.Error(1)
}

func (m *FriendRequestRepositoryMock) RespondFriendRequest(ctx context.Context, requestID int64, status string) (models.FriendRequest, error) {
	args := m.Called(ctx, requestID, status)
	var request models.FriendRequest
	if val := args.Get(0); val != nil {
		request = val.(models.FriendRequest)
	}
	return request, args.Error(1)
}

type JoinRequestRepositoryMock struct {
	mock.Mock
}

func (m *JoinRequestRepositoryMock) CreateJoinRequest(ctx context.Context, conversationID, userID string) (models.JoinRequest, error) {
	args := m.Called(ctx, conversationID, userID)
	var request models.JoinRequest
	if val := args.Get(0); val != nil {
		request = val.(models.JoinRequest)
	}
	return request, args.Error(1)
}

func (m *JoinRequestRepositoryMock) GetJoinRequest(ctx context.Context, requestID int64) (models.JoinRequest, error) {
	args := m.Called(ctx, requestID)
	var request models.JoinRequest
	if val := args.Get(0); val != nil {
		request = val.(models.JoinRequest)
	}
	return request, args.Error(1)
}

func (m *JoinRequestRepositoryMock) ListJoinRequests(ctx context.Context, conversationID string) ([]models.JoinRequest, error) {
	args := m.Called(ctx, conversationID)
	var requests []models.JoinRequest
	if val := args.Get(0); val != nil {
		requests = val.([]models.JoinRequest)
	}
	return requests, args.Error(1)
}

func (m *JoinRequestRepositoryMock) RespondJoinRequest(ctx context.Context, requestID int64, status string) (models.JoinRequest, error) {
	args := m.Called(ctx, requestID, status)
	var request models.JoinRequest
	if val := args.Get(0); val != nil {
		request = val.(models.JoinRequest)
	}
	return request, args.Error(1)
}

type NotificationRepositoryMock struct {
	mock.Mock
}

func (m *NotificationRepositoryMock) CreateNotification(ctx context.Context, userID, kind, payload string) (models.Notification, error) {
	args := m.Called(ctx, userID, kind, payload)
	var notification models.Notification
	if val := args.Get(0); val != nil {
		notification = val.(models.Notification)
	}
	return notification, args.Error(1)
}

func (m *NotificationRepositoryMock) ListNotifications(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	args := m.Called(ctx, userID, limit, offset)
	var notifications []models.Notification
	if val := args.Get(0); val != nil {
		notifications = val.([]models.Notification)
	}
	return notifications, args.Error(1)
}

func (m *NotificationRepositoryMock) MarkRead(ctx context.Context, userID string, notificationID int64) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

func (m *NotificationRepositoryMock) MarkAllRead(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type ObjectStorageMock struct {
	mock.Mock
}

func (m *ObjectStorageMock) Upload(ctx context.Context, filename, contentType string, data []byte) (*storage.UploadResult, error) {
	args := m.Called(ctx, filename, contentType, data)
	var result *storage.UploadResult
	if val := args.Get(0); val != nil {
		result = val.(*storage.UploadResult)
	}
	return result, args.Error(1)
}

func (m *ObjectStorageMock) Delete(ctx context.Context, publicID string) error {
	args := m.Called(ctx, publicID)
	return args.Error(0)
}

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *CacheMock) Get(ctx context.Context, key string, dest any) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Del(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *CacheMock) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Expire(ctx context.Context, key string, ttl time.Duration) error {
	args := m.Called(ctx, key, ttl)
	return args.Error(0)
}

func (m *CacheMock) PushList(ctx context.Context, key string, value any) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *CacheMock) RangeList(ctx context.Context, key string, start, stop int64) ([]string, error) {
	args := m.Called(ctx, key, start, stop)
	var entries []string
	if val := args.Get(0); val != nil {
		entries = val.([]string)
	}
	return entries, args.Error(1)
}

func (m *CacheMock) TrimList(ctx context.Context, key string, start, stop int64) error {
	args := m.Called(ctx, key, start, stop)
	return args.Error(0)
}

var (
	_ repositories.UserRepository          = (*UserRepositoryMock)(nil)
	_ repositories.ConversationRepository  = (*ConversationRepositoryMock)(nil)
	_ repositories.ParticipantRepository   = (*ParticipantRepositoryMock)(nil)
	_ repositories.MessageRepository       = (*MessageRepositoryMock)(nil)
	_ repositories.ContactRepository       = (*ContactRepositoryMock)(nil)
	_ repositories.FriendRequestRepository = (*FriendRequestRepositoryMock)(nil)
	_ repositories.JoinRequestRepository   = (*JoinRequestRepositoryMock)(nil)
	_ repositories.NotificationRepository  = (*NotificationRepositoryMock)(nil)
	_ storage.ObjectStorage                = (*ObjectStorageMock)(nil)
	_ cache.Cache                          = (*CacheMock)(nil)
)
