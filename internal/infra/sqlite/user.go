package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/aliskhannn/times-table-bot/internal/domain/entities"
)

type UserRepository struct {
	db sqlx.ExtContext
}

// NewUserRepository works over *sqlx.DB and *sqlx.Tx alike.
func NewUserRepository(db sqlx.ExtContext) *UserRepository {
	return &UserRepository{db: db}
}

// Save inserts a new user or refreshes the chat of an existing one.
// It reports whether the row was created.
func (r *UserRepository) Save(ctx context.Context, user *entities.User) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, chat_id, is_active, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		user.ID, user.ChatID, user.IsActive, user.CreatedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("save user: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("save user: %w", err)
	}
	if n == 1 {
		return true, nil
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE users SET chat_id = ?, is_active = ? WHERE id = ?`,
		user.ChatID, user.IsActive, user.ID,
	)
	if err != nil {
		return false, fmt.Errorf("update user: %w", err)
	}

	return false, nil
}

func (r *UserRepository) Exists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.db, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`, userID)
	if err != nil {
		return false, fmt.Errorf("check user existence: %w", err)
	}

	return exists, nil
}
