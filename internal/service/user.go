package service

import (
	"context"
	"fmt"

	"github.com/aliskhannn/times-table-bot/internal/domain/entities"
)

type UserService struct {
	tr Transactor
}

func NewUserService(tr Transactor) *UserService {
	return &UserService{tr: tr}
}

// EnsureUser registers a user together with default settings.
// It is a no-op for known users.
func (s *UserService) EnsureUser(ctx context.Context, userID, chatID int64) error {
	return s.tr.WithinTx(ctx, func(ctx context.Context, users UserRepository, settings SettingsRepository) error {
		exists, err := users.Exists(ctx, userID)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		if _, err := users.Save(ctx, entities.NewUser(userID, chatID)); err != nil {
			return err
		}

		if err := settings.Create(ctx, userID); err != nil {
			return fmt.Errorf("create default settings: %w", err)
		}

		return nil
	})
}
