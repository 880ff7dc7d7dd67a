package models

import (
	"strconv"
	"time"
)

// Message types.
const (
	MessageTypeText   = "TEXT"
	MessageTypeFile   = "FILE"
	MessageTypeSystem = "SYSTEM"
)

// Attachment file types.
const (
	FileTypeImage    = "IMAGE"
	FileTypeVideo    = "VIDEO"
	FileTypeAudio    = "AUDIO"
	FileTypePDF      = "PDF"
	FileTypeDocument = "DOCUMENT"
	FileTypeOther    = "OTHER"
)

// Message is the stored message row. MessageID is the internal big-integer
// identifier; it is stringified at the API boundary (see MessageSummary).
type Message struct {
	MessageID        int64      `db:"message_id"`
	ConversationID   string     `db:"conversation_id"`
	SenderID         string     `db:"sender_id"`
	Content          string     `db:"content"`
	MessageType      string     `db:"message_type"`
	ReplyToMessageID *int64     `db:"reply_to_message_id"`
	IsDeleted        bool       `db:"is_deleted"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        *time.Time `db:"updated_at"`
}

// Attachment is a stored file reference belonging to a message.
type Attachment struct {
	AttachmentID int64     `db:"attachment_id" json:"attachmentId,string"`
	MessageID    int64     `db:"message_id" json:"-"`
	FileName     string    `db:"file_name" json:"fileName"`
	FileURL      string    `db:"file_url" json:"fileUrl"`
	Size         int64     `db:"size" json:"size"`
	FileType     string    `db:"file_type" json:"fileType"`
	ThumbnailURL string    `db:"thumbnail_url" json:"thumbnailUrl,omitempty"`
	PublicID     string    `db:"public_id" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// MessageSummary is the denormalized message shape sent to clients and
// stored in the recent-message cache. SenderUsername (and the reply fields
// when the message is a reply) must be populated for a cached entry to be
// considered complete.
type MessageSummary struct {
	MessageID        string       `json:"messageId"`
	ConversationID   string       `json:"conversationId"`
	SenderID         string       `json:"senderId"`
	SenderUsername   string       `json:"senderUsername"`
	SenderAvatar     string       `json:"senderAvatar,omitempty"`
	Content          string       `json:"content"`
	MessageType      string       `json:"messageType"`
	ReplyToMessageID string       `json:"replyToMessageId,omitempty"`
	ReplyToContent   string       `json:"replyToContent,omitempty"`
	ReplyToUsername  string       `json:"replyToUsername,omitempty"`
	IsDeleted        bool         `json:"isDeleted"`
	Attachments      []Attachment `json:"attachments"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        *time.Time   `json:"updatedAt,omitempty"`
}

// Complete reports whether the summary carries every denormalized field the
// read path requires. Entries cached before denormalization was introduced
// fail this check and force a store read.
func (m MessageSummary) Complete() bool {
	if m.SenderUsername == "" {
		return false
	}
	if m.ReplyToMessageID != "" && (m.ReplyToContent == "" || m.ReplyToUsername == "") {
		return false
	}
	return true
}

// FormatID renders an internal big-integer identifier for the API boundary.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
