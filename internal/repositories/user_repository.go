package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository defines interactions with user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) error
	GetUser(ctx context.Context, userID string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUsers(ctx context.Context, userIDs []string) ([]models.User, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error)
	UpdateUser(ctx context.Context, userID string, username, avatar string) error
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
	MarkEmailVerified(ctx context.Context, userID string) error
}

// UserRepo is a sqlx-backed repository.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `user_id, username, email, password_hash, avatar, is_active, email_verified, created_at`

func (r *UserRepo) CreateUser(ctx context.Context, user models.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (user_id, username, email, password_hash, avatar) VALUES ($1, $2, $3, $4, $5)`,
		user.UserID, user.Username, user.Email, user.PasswordHash, user.Avatar)
	return err
}

func (r *UserRepo) GetUser(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

func (r *UserRepo) GetUsers(ctx context.Context, userIDs []string) ([]models.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+userColumns+` FROM users WHERE user_id IN (?)`, userIDs)
	if err != nil {
		return nil, err
	}
	var users []models.User
	err = r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...)
	return users, err
}

func (r *UserRepo) SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM users
         WHERE is_active = TRUE AND (username ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')
         ORDER BY username LIMIT $2`, query, limit)
	return users, err
}

func (r *UserRepo) UpdateUser(ctx context.Context, userID string, username, avatar string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET username = COALESCE(NULLIF($2, ''), username), avatar = COALESCE(NULLIF($3, ''), avatar) WHERE user_id=$1`,
		userID, username, avatar)
	if err != nil {
		return err
	}
	return requireRow(res, ErrUserNotFound)
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID string, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash=$2 WHERE user_id=$1`, userID, passwordHash)
	if err != nil {
		return err
	}
	return requireRow(res, ErrUserNotFound)
}

func (r *UserRepo) MarkEmailVerified(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET email_verified=TRUE WHERE user_id=$1`, userID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrUserNotFound)
}

func requireRow(res sql.Result, notFound error) error {
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return notFound
	}
	return nil
}
