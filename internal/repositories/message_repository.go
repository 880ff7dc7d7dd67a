package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions with messages and attachments.
type MessageRepository interface {
	CreateMessage(ctx context.Context, message models.Message) (models.Message, error)
	GetMessage(ctx context.Context, messageID int64) (models.Message, error)
	DeleteMessage(ctx context.Context, messageID int64) error
	UpdateMessage(ctx context.Context, messageID int64, content string, isDeleted *bool) (models.Message, error)
	ListMessageSummaries(ctx context.Context, conversationID string, limit, offset int) ([]models.MessageSummary, error)
	GetMessageSummary(ctx context.Context, messageID int64) (models.MessageSummary, error)
	CreateAttachment(ctx context.Context, attachment models.Attachment) (models.Attachment, error)
	ListAttachments(ctx context.Context, messageID int64) ([]models.Attachment, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

func (r *MessageRepo) CreateMessage(ctx context.Context, message models.Message) (models.Message, error) {
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (conversation_id, sender_id, content, message_type, reply_to_message_id)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING message_id, created_at`,
		message.ConversationID, message.SenderID, message.Content, message.MessageType, message.ReplyToMessageID).
		Scan(&message.MessageID, &message.CreatedAt)
	if err != nil {
		return models.Message{}, err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE conversations SET updated_at=NOW() WHERE conversation_id=$1`, message.ConversationID)
	return message, err
}

func (r *MessageRepo) GetMessage(ctx context.Context, messageID int64) (models.Message, error) {
	var message models.Message
	err := r.db.GetContext(ctx, &message,
		`SELECT message_id, conversation_id, sender_id, content, message_type, reply_to_message_id, is_deleted, created_at, updated_at
         FROM messages WHERE message_id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return message, err
}

// DeleteMessage removes the row outright. Used only as the compensating
// action when attachment upload fails after the row was created.
func (r *MessageRepo) DeleteMessage(ctx context.Context, messageID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE message_id=$1`, messageID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrMessageNotFound)
}

func (r *MessageRepo) UpdateMessage(ctx context.Context, messageID int64, content string, isDeleted *bool) (models.Message, error) {
	var message models.Message
	err := r.db.QueryRowxContext(ctx,
		`UPDATE messages SET
            content = COALESCE(NULLIF($2, ''), content),
            is_deleted = COALESCE($3, is_deleted),
            updated_at = NOW()
         WHERE message_id=$1
         RETURNING message_id, conversation_id, sender_id, content, message_type, reply_to_message_id, is_deleted, created_at, updated_at`,
		messageID, content, isDeleted).
		StructScan(&message)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return message, err
}

type messageSummaryRow struct {
	MessageID        int64      `db:"message_id"`
	ConversationID   string     `db:"conversation_id"`
	SenderID         string     `db:"sender_id"`
	SenderUsername   string     `db:"sender_username"`
	SenderAvatar     string     `db:"sender_avatar"`
	Content          string     `db:"content"`
	MessageType      string     `db:"message_type"`
	ReplyToMessageID *int64     `db:"reply_to_message_id"`
	ReplyToContent   *string    `db:"reply_to_content"`
	ReplyToUsername  *string    `db:"reply_to_username"`
	IsDeleted        bool       `db:"is_deleted"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        *time.Time `db:"updated_at"`
}

const summarySelect = `
    SELECT m.message_id, m.conversation_id, m.sender_id,
           u.username AS sender_username, u.avatar AS sender_avatar,
           m.content, m.message_type, m.reply_to_message_id,
           rm.content AS reply_to_content, ru.username AS reply_to_username,
           m.is_deleted, m.created_at, m.updated_at
    FROM messages m
    JOIN users u ON u.user_id = m.sender_id
    LEFT JOIN messages rm ON rm.message_id = m.reply_to_message_id
    LEFT JOIN users ru ON ru.user_id = rm.sender_id`

// ListMessageSummaries returns denormalized message pages newest-first,
// attachments included. This is the fallback behind the recent-message
// cache and the only source for non-first pages.
func (r *MessageRepo) ListMessageSummaries(ctx context.Context, conversationID string, limit, offset int) ([]models.MessageSummary, error) {
	var rows []messageSummaryRow
	err := r.db.SelectContext(ctx, &rows,
		summarySelect+`
         WHERE m.conversation_id=$1 AND m.is_deleted=FALSE
         ORDER BY m.created_at DESC
         LIMIT $2 OFFSET $3`, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.MessageSummary, 0, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, row.toSummary())
		ids = append(ids, row.MessageID)
	}

	attachmentsByMessage, err := r.attachmentsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		if atts, ok := attachmentsByMessage[ids[i]]; ok {
			summaries[i].Attachments = atts
		}
	}
	return summaries, nil
}

func (r *MessageRepo) GetMessageSummary(ctx context.Context, messageID int64) (models.MessageSummary, error) {
	var row messageSummaryRow
	err := r.db.GetContext(ctx, &row, summarySelect+` WHERE m.message_id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MessageSummary{}, ErrMessageNotFound
	}
	if err != nil {
		return models.MessageSummary{}, err
	}
	summary := row.toSummary()
	summary.Attachments, err = r.ListAttachments(ctx, messageID)
	return summary, err
}

func (row messageSummaryRow) toSummary() models.MessageSummary {
	summary := models.MessageSummary{
		MessageID:      models.FormatID(row.MessageID),
		ConversationID: row.ConversationID,
		SenderID:       row.SenderID,
		SenderUsername: row.SenderUsername,
		SenderAvatar:   row.SenderAvatar,
		Content:        row.Content,
		MessageType:    row.MessageType,
		IsDeleted:      row.IsDeleted,
		Attachments:    []models.Attachment{},
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if row.ReplyToMessageID != nil {
		summary.ReplyToMessageID = models.FormatID(*row.ReplyToMessageID)
		if row.ReplyToContent != nil {
			summary.ReplyToContent = *row.ReplyToContent
		}
		if row.ReplyToUsername != nil {
			summary.ReplyToUsername = *row.ReplyToUsername
		}
	}
	return summary
}

func (r *MessageRepo) CreateAttachment(ctx context.Context, attachment models.Attachment) (models.Attachment, error) {
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO attachments (message_id, file_name, file_url, size, file_type, thumbnail_url, public_id)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         RETURNING attachment_id, created_at`,
		attachment.MessageID, attachment.FileName, attachment.FileURL, attachment.Size,
		attachment.FileType, attachment.ThumbnailURL, attachment.PublicID).
		Scan(&attachment.AttachmentID, &attachment.CreatedAt)
	return attachment, err
}

func (r *MessageRepo) ListAttachments(ctx context.Context, messageID int64) ([]models.Attachment, error) {
	byMessage, err := r.attachmentsFor(ctx, []int64{messageID})
	if err != nil {
		return nil, err
	}
	atts := byMessage[messageID]
	if atts == nil {
		atts = []models.Attachment{}
	}
	return atts, nil
}

func (r *MessageRepo) attachmentsFor(ctx context.Context, messageIDs []int64) (map[int64][]models.Attachment, error) {
	if len(messageIDs) == 0 {
		return map[int64][]models.Attachment{}, nil
	}
	query, args, err := sqlx.In(
		`SELECT attachment_id, message_id, file_name, file_url, size, file_type, thumbnail_url, public_id, created_at
         FROM attachments WHERE message_id IN (?) ORDER BY attachment_id`, messageIDs)
	if err != nil {
		return nil, err
	}
	var attachments []models.Attachment
	if err := r.db.SelectContext(ctx, &attachments, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	byMessage := make(map[int64][]models.Attachment, len(messageIDs))
	for _, att := range attachments {
		byMessage[att.MessageID] = append(byMessage[att.MessageID], att)
	}
	return byMessage, nil
}
