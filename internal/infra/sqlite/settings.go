package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aliskhannn/times-table-bot/internal/domain/entities"
	"github.com/aliskhannn/times-table-bot/internal/repository"
)

type settingsRow struct {
	UserID    int64     `db:"user_id"`
	QuizMode  string    `db:"quiz_mode"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type SettingsRepository struct {
	db sqlx.ExtContext
}

func NewSettingsRepository(db sqlx.ExtContext) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Create creates default settings for a user.
func (r *SettingsRepository) Create(ctx context.Context, userID int64) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, quiz_mode, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING`,
		userID, string(entities.ModeMultiplication), now, now,
	)
	if err != nil {
		return fmt.Errorf("create settings: %w", err)
	}

	return nil
}

func (r *SettingsRepository) GetByUserID(ctx context.Context, userID int64) (*entities.UserSettings, error) {
	var row settingsRow
	err := sqlx.GetContext(ctx, r.db, &row, `
		SELECT user_id, quiz_mode, created_at, updated_at
		FROM user_settings
		WHERE user_id = ?`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}

	return &entities.UserSettings{
		UserID:    row.UserID,
		QuizMode:  entities.Mode(row.QuizMode),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (r *SettingsRepository) UpdateQuizMode(ctx context.Context, userID int64, mode entities.Mode) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE user_settings SET quiz_mode = ?, updated_at = ? WHERE user_id = ?`,
		string(mode), time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("update quiz mode: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update quiz mode: %w", err)
	}
	if n == 0 {
		return repository.ErrSettingsNotFound
	}

	return nil
}
