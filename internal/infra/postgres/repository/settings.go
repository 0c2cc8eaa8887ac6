package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/times-table-bot/internal/domain/entities"
	"github.com/aliskhannn/times-table-bot/internal/infra/postgres"
	"github.com/aliskhannn/times-table-bot/internal/repository"
)

// SettingsRepository stores the quiz preferences of users.
type SettingsRepository struct {
	db postgres.DBTX
}

func NewSettingsRepository(db postgres.DBTX) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Create creates default settings for a user.
func (r *SettingsRepository) Create(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO user_settings (user_id, quiz_mode, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (user_id) DO NOTHING
	`

	_, err := r.db.Exec(ctx, query, userID, string(entities.ModeMultiplication))
	if err != nil {
		return fmt.Errorf("create settings: %w", err)
	}

	return nil
}

// GetByUserID retrieves settings for a user.
func (r *SettingsRepository) GetByUserID(ctx context.Context, userID int64) (*entities.UserSettings, error) {
	query := `
		SELECT user_id, quiz_mode, created_at, updated_at
		FROM user_settings
		WHERE user_id = $1
	`

	var (
		settings entities.UserSettings
		mode     string
	)
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&settings.UserID,
		&mode,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	settings.QuizMode = entities.Mode(mode)

	return &settings, nil
}

// UpdateQuizMode updates the preferred quiz mode.
func (r *SettingsRepository) UpdateQuizMode(ctx context.Context, userID int64, mode entities.Mode) error {
	query := `
		UPDATE user_settings
		SET quiz_mode = $1, updated_at = $2
		WHERE user_id = $3
	`

	result, err := r.db.Exec(ctx, query, string(mode), time.Now(), userID)
	if err != nil {
		return fmt.Errorf("update quiz mode: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrSettingsNotFound
	}

	return nil
}
