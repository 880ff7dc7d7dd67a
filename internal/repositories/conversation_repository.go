package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository defines interactions with conversations.
type ConversationRepository interface {
	CreateConversation(ctx context.Context, conversation models.Conversation, participantIDs []string) error
	GetConversation(ctx context.Context, conversationID string) (models.Conversation, error)
	ListConversationsForUser(ctx context.Context, userID string) ([]models.Conversation, error)
	UpdateConversation(ctx context.Context, conversationID string, title, avatar string) error
	DeactivateConversation(ctx context.Context, conversationID string) error
}

// ConversationRepo is a sqlx-backed repository.
type ConversationRepo struct {
	db *sqlx.DB
}

func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

const conversationColumns = `conversation_id, title, avatar, is_group, creator_id, is_active, created_at, updated_at`

// CreateConversation inserts the conversation and its initial participants
// in one transaction. The creator is always an admin.
func (r *ConversationRepo) CreateConversation(ctx context.Context, conversation models.Conversation, participantIDs []string) error {
	return RunInTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO conversations (conversation_id, title, avatar, is_group, creator_id) VALUES ($1, $2, $3, $4, $5)`,
			conversation.ConversationID, conversation.Title, conversation.Avatar, conversation.IsGroup, conversation.CreatorID)
		if err != nil {
			return err
		}
		for _, userID := range participantIDs {
			role := models.RoleMember
			if userID == conversation.CreatorID {
				role = models.RoleAdmin
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO participants (conversation_id, user_id, role) VALUES ($1, $2, $3)`,
				conversation.ConversationID, userID, role); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ConversationRepo) GetConversation(ctx context.Context, conversationID string) (models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.GetContext(ctx, &conversation,
		`SELECT `+conversationColumns+` FROM conversations WHERE conversation_id=$1`, conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conversation, err
}

func (r *ConversationRepo) ListConversationsForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.SelectContext(ctx, &conversations,
		`SELECT c.`+"conversation_id"+`, c.title, c.avatar, c.is_group, c.creator_id, c.is_active, c.created_at, c.updated_at
         FROM conversations c
         JOIN participants p ON p.conversation_id = c.conversation_id
         WHERE p.user_id = $1 AND p.left_at IS NULL AND c.is_active = TRUE
         ORDER BY c.updated_at DESC`, userID)
	return conversations, err
}

func (r *ConversationRepo) UpdateConversation(ctx context.Context, conversationID string, title, avatar string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE conversations SET
            title = COALESCE(NULLIF($2, ''), title),
            avatar = COALESCE(NULLIF($3, ''), avatar),
            updated_at = NOW()
         WHERE conversation_id=$1`, conversationID, title, avatar)
	if err != nil {
		return err
	}
	return requireRow(res, ErrConversationNotFound)
}

func (r *ConversationRepo) DeactivateConversation(ctx context.Context, conversationID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE conversations SET is_active=FALSE, updated_at=NOW() WHERE conversation_id=$1`, conversationID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrConversationNotFound)
}
