package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

var (
	ErrRequestNotFound = errors.New("request not found")
	ErrRequestPending  = errors.New("a pending request already exists")
)

// FriendRequestRepository defines interactions with friend requests.
type FriendRequestRepository interface {
	CreateFriendRequest(ctx context.Context, senderID, receiverID string) (models.FriendRequest, error)
	GetFriendRequest(ctx context.Context, requestID int64) (models.FriendRequest, error)
	ListFriendRequestsForUser(ctx context.Context, userID string) ([]models.FriendRequest, error)
	RespondFriendRequest(ctx context.Context, requestID int64, status string) (models.FriendRequest, error)
}

// JoinRequestRepository defines interactions with conversation join requests.
type JoinRequestRepository interface {
	CreateJoinRequest(ctx context.Context, conversationID, userID string) (models.JoinRequest, error)
	GetJoinRequest(ctx context.Context, requestID int64) (models.JoinRequest, error)
	ListJoinRequests(ctx context.Context, conversationID string) ([]models.JoinRequest, error)
	RespondJoinRequest(ctx context.Context, requestID int64, status string) (models.JoinRequest, error)
}

// RequestRepo backs both request kinds with sqlx.
type RequestRepo struct {
	db *sqlx.DB
}

func NewRequestRepo(db *sqlx.DB) *RequestRepo {
	return &RequestRepo{db: db}
}

func (r *RequestRepo) CreateFriendRequest(ctx context.Context, senderID, receiverID string) (models.FriendRequest, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM friend_requests
         WHERE status=$3 AND ((sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1))`,
		senderID, receiverID, models.RequestStatusPending)
	if err != nil {
		return models.FriendRequest{}, err
	}
	if count > 0 {
		return models.FriendRequest{}, ErrRequestPending
	}

	var request models.FriendRequest
	err = r.db.GetContext(ctx, &request,
		`INSERT INTO friend_requests (sender_id, receiver_id) VALUES ($1, $2)
         RETURNING request_id, sender_id, receiver_id, status, created_at, responded_at`,
		senderID, receiverID)
	return request, err
}

func (r *RequestRepo) GetFriendRequest(ctx context.Context, requestID int64) (models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.db.GetContext(ctx, &request,
		`SELECT request_id, sender_id, receiver_id, status, created_at, responded_at
         FROM friend_requests WHERE request_id=$1`, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FriendRequest{}, ErrRequestNotFound
	}
	return request, err
}

func (r *RequestRepo) ListFriendRequestsForUser(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.SelectContext(ctx, &requests,
		`SELECT request_id, sender_id, receiver_id, status, created_at, responded_at
         FROM friend_requests
         WHERE sender_id=$1 OR receiver_id=$1
         ORDER BY created_at DESC`, userID)
	return requests, err
}

func (r *RequestRepo) RespondFriendRequest(ctx context.Context, requestID int64, status string) (models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.db.GetContext(ctx, &request,
		`UPDATE friend_requests SET status=$2, responded_at=NOW()
         WHERE request_id=$1 AND status=$3
         RETURNING request_id, sender_id, receiver_id, status, created_at, responded_at`,
		requestID, status, models.RequestStatusPending)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FriendRequest{}, ErrRequestNotFound
	}
	return request, err
}

const joinRequestSelect = `
    SELECT j.request_id, j.conversation_id, j.user_id, j.status, j.created_at, j.responded_at, u.username
    FROM join_requests j
    JOIN users u ON u.user_id = j.user_id`

func (r *RequestRepo) CreateJoinRequest(ctx context.Context, conversationID, userID string) (models.JoinRequest, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM join_requests WHERE conversation_id=$1 AND user_id=$2 AND status=$3`,
		conversationID, userID, models.RequestStatusPending)
	if err != nil {
		return models.JoinRequest{}, err
	}
	if count > 0 {
		return models.JoinRequest{}, ErrRequestPending
	}

	var requestID int64
	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO join_requests (conversation_id, user_id) VALUES ($1, $2) RETURNING request_id`,
		conversationID, userID).Scan(&requestID)
	if err != nil {
		return models.JoinRequest{}, err
	}
	return r.GetJoinRequest(ctx, requestID)
}

func (r *RequestRepo) GetJoinRequest(ctx context.Context, requestID int64) (models.JoinRequest, error) {
	var request models.JoinRequest
	err := r.db.GetContext(ctx, &request, joinRequestSelect+` WHERE j.request_id=$1`, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.JoinRequest{}, ErrRequestNotFound
	}
	return request, err
}

func (r *RequestRepo) ListJoinRequests(ctx context.Context, conversationID string) ([]models.JoinRequest, error) {
	var requests []models.JoinRequest
	err := r.db.SelectContext(ctx, &requests,
		joinRequestSelect+` WHERE j.conversation_id=$1 ORDER BY j.created_at DESC`, conversationID)
	return requests, err
}

func (r *RequestRepo) RespondJoinRequest(ctx context.Context, requestID int64, status string) (models.JoinRequest, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE join_requests SET status=$2, responded_at=NOW() WHERE request_id=$1 AND status=$3`,
		requestID, status, models.RequestStatusPending)
	if err != nil {
		return models.JoinRequest{}, err
	}
	if err := requireRow(res, ErrRequestNotFound); err != nil {
		return models.JoinRequest{}, err
	}
	return r.GetJoinRequest(ctx, requestID)
}

var (
	_ FriendRequestRepository = (*RequestRepo)(nil)
	_ JoinRequestRepository   = (*RequestRepo)(nil)
)
