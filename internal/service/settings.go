package service

import (
	"context"
	"errors"

	"github.com/aliskhannn/times-table-bot/internal/domain/entities"
	"github.com/aliskhannn/times-table-bot/internal/repository"
)

type SettingsService struct {
	repository SettingsRepository
}

func NewSettingsService(repository SettingsRepository) *SettingsService {
	return &SettingsService{repository: repository}
}

func (s *SettingsService) GetOrCreate(ctx context.Context, userID int64) (*entities.UserSettings, error) {
	settings, err := s.repository.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSettingsNotFound) {
			// Create default settings.
			if err := s.repository.Create(ctx, userID); err != nil {
				return nil, err
			}
			// Retrieve newly created settings.
			return s.repository.GetByUserID(ctx, userID)
		}
		return nil, err
	}

	return settings, nil
}

// UpdateQuizMode remembers the mode a user last switched to.
func (s *SettingsService) UpdateQuizMode(ctx context.Context, userID int64, mode entities.Mode) error {
	if !mode.Valid() {
		return entities.ErrUnknownMode
	}

	err := s.repository.UpdateQuizMode(ctx, userID, mode)
	if errors.Is(err, repository.ErrSettingsNotFound) {
		if err := s.repository.Create(ctx, userID); err != nil {
			return err
		}
		return s.repository.UpdateQuizMode(ctx, userID, mode)
	}

	return err
}
