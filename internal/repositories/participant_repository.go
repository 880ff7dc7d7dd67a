package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

var (
	ErrParticipantNotFound = errors.New("participant not found")
	ErrAlreadyParticipant  = errors.New("user is already a participant")
)

// ParticipantRepository defines interactions with conversation membership.
type ParticipantRepository interface {
	AddParticipant(ctx context.Context, conversationID, userID, role string) (models.Participant, error)
	GetParticipant(ctx context.Context, conversationID, userID string) (models.Participant, error)
	IsParticipant(ctx context.Context, conversationID, userID string) (bool, error)
	ListParticipants(ctx context.Context, conversationID string) ([]models.Participant, error)
	ListModeratorIDs(ctx context.Context, conversationID string) ([]string, error)
	ListParticipantIDs(ctx context.Context, conversationID string) ([]string, error)
	UpdateRole(ctx context.Context, conversationID, userID, role string) (models.Participant, error)
	MarkLeft(ctx context.Context, conversationID, userID string) error
}

// ParticipantRepo is a sqlx-backed repository.
type ParticipantRepo struct {
	db *sqlx.DB
}

func NewParticipantRepo(db *sqlx.DB) *ParticipantRepo {
	return &ParticipantRepo{db: db}
}

const participantSelect = `
    SELECT p.id, p.conversation_id, p.user_id, p.role, p.joined_at, p.left_at, u.username, u.avatar
    FROM participants p
    JOIN users u ON u.user_id = p.user_id`

// AddParticipant inserts a membership row, or revives an existing row whose
// user previously left (left_at reset). A live duplicate is a conflict.
func (r *ParticipantRepo) AddParticipant(ctx context.Context, conversationID, userID, role string) (models.Participant, error) {
	existing, err := r.GetParticipant(ctx, conversationID, userID)
	switch {
	case err == nil && existing.LeftAt == nil:
		return models.Participant{}, ErrAlreadyParticipant
	case err == nil:
		_, err = r.db.ExecContext(ctx,
			`UPDATE participants SET left_at=NULL, role=$3, joined_at=NOW() WHERE conversation_id=$1 AND user_id=$2`,
			conversationID, userID, role)
	case errors.Is(err, ErrParticipantNotFound):
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO participants (conversation_id, user_id, role) VALUES ($1, $2, $3)`,
			conversationID, userID, role)
	}
	if err != nil {
		return models.Participant{}, err
	}
	return r.GetParticipant(ctx, conversationID, userID)
}

func (r *ParticipantRepo) GetParticipant(ctx context.Context, conversationID, userID string) (models.Participant, error) {
	var participant models.Participant
	err := r.db.GetContext(ctx, &participant,
		participantSelect+` WHERE p.conversation_id=$1 AND p.user_id=$2`, conversationID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Participant{}, ErrParticipantNotFound
	}
	return participant, err
}

// IsParticipant reports live membership: users who left do not count.
func (r *ParticipantRepo) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM participants WHERE conversation_id=$1 AND user_id=$2 AND left_at IS NULL`,
		conversationID, userID)
	return count > 0, err
}

func (r *ParticipantRepo) ListParticipants(ctx context.Context, conversationID string) ([]models.Participant, error) {
	var participants []models.Participant
	err := r.db.SelectContext(ctx, &participants,
		participantSelect+` WHERE p.conversation_id=$1 AND p.left_at IS NULL ORDER BY p.joined_at`, conversationID)
	return participants, err
}

// ListModeratorIDs returns the ids of admins and moderators, the audience
// for join-request notifications.
func (r *ParticipantRepo) ListModeratorIDs(ctx context.Context, conversationID string) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids,
		`SELECT user_id FROM participants
         WHERE conversation_id=$1 AND left_at IS NULL AND role IN ($2, $3)`,
		conversationID, models.RoleAdmin, models.RoleModerator)
	return ids, err
}

func (r *ParticipantRepo) ListParticipantIDs(ctx context.Context, conversationID string) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids,
		`SELECT user_id FROM participants WHERE conversation_id=$1 AND left_at IS NULL`, conversationID)
	return ids, err
}

func (r *ParticipantRepo) UpdateRole(ctx context.Context, conversationID, userID, role string) (models.Participant, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE participants SET role=$3 WHERE conversation_id=$1 AND user_id=$2 AND left_at IS NULL`,
		conversationID, userID, role)
	if err != nil {
		return models.Participant{}, err
	}
	if err := requireRow(res, ErrParticipantNotFound); err != nil {
		return models.Participant{}, err
	}
	return r.GetParticipant(ctx, conversationID, userID)
}

// MarkLeft soft-removes the participant; the row stays for history.
func (r *ParticipantRepo) MarkLeft(ctx context.Context, conversationID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE participants SET left_at=NOW() WHERE conversation_id=$1 AND user_id=$2 AND left_at IS NULL`,
		conversationID, userID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrParticipantNotFound)
}
