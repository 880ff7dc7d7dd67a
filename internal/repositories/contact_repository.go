package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"messenger-service/internal/models"
)

var (
	ErrContactNotFound = errors.New("contact not found")
	ErrContactExists   = errors.New("contact already exists")
)

// ContactRepository defines interactions with a user's address book.
type ContactRepository interface {
	CreateContact(ctx context.Context, userID, contactUserID, alias string) (models.Contact, error)
	ListContacts(ctx context.Context, userID string) ([]models.Contact, error)
	UpdateAlias(ctx context.Context, userID string, contactID int64, alias string) error
	DeleteContact(ctx context.Context, userID string, contactID int64) error
}

// ContactRepo is a sqlx-backed repository.
type ContactRepo struct {
	db *sqlx.DB
}

func NewContactRepo(db *sqlx.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

func (r *ContactRepo) CreateContact(ctx context.Context, userID, contactUserID, alias string) (models.Contact, error) {
	var contact models.Contact
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO contacts (user_id, contact_user_id, alias) VALUES ($1, $2, $3)
         RETURNING contact_id, user_id, contact_user_id, alias, created_at`,
		userID, contactUserID, alias).
		Scan(&contact.ContactID, &contact.UserID, &contact.ContactUserID, &contact.Alias, &contact.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.Contact{}, ErrContactExists
		}
		return models.Contact{}, err
	}
	return contact, nil
}

func (r *ContactRepo) ListContacts(ctx context.Context, userID string) ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.db.SelectContext(ctx, &contacts,
		`SELECT c.contact_id, c.user_id, c.contact_user_id, c.alias, c.created_at, u.username, u.avatar
         FROM contacts c
         JOIN users u ON u.user_id = c.contact_user_id
         WHERE c.user_id=$1
         ORDER BY u.username`, userID)
	return contacts, err
}

func (r *ContactRepo) UpdateAlias(ctx context.Context, userID string, contactID int64, alias string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contacts SET alias=$3 WHERE user_id=$1 AND contact_id=$2`, userID, contactID, alias)
	if err != nil {
		return err
	}
	return requireRow(res, ErrContactNotFound)
}

func (r *ContactRepo) DeleteContact(ctx context.Context, userID string, contactID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM contacts WHERE user_id=$1 AND contact_id=$2`, userID, contactID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrContactNotFound)
}
