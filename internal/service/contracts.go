package service

import (
	"context"
	"time"

	"github.com/aliskhannn/times-table-bot/internal/domain/entities"
)

// Timer is a pending deferred call.
type Timer interface {
	// Stop cancels the call if it has not run yet.
	Stop()
}

// Deferrer runs a function once after a delay.
type Deferrer interface {
	Defer(delay time.Duration, fn func()) (Timer, error)
}

type UserRepository interface {
	Save(ctx context.Context, user *entities.User) (bool, error)
	Exists(ctx context.Context, userID int64) (bool, error)
}

type SettingsRepository interface {
	Create(ctx context.Context, userID int64) error
	GetByUserID(ctx context.Context, userID int64) (*entities.UserSettings, error)
	UpdateQuizMode(ctx context.Context, userID int64, mode entities.Mode) error
}

// Transactor runs fn with repositories bound to a single transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, users UserRepository, settings SettingsRepository) error) error
}

// SessionStore keeps the live quiz engine of every chat.
type SessionStore interface {
	Get(chatID int64) (*QuizEngine, bool)
	Put(chatID int64, engine *QuizEngine)
	Delete(chatID int64) (*QuizEngine, bool)
	EvictIdle(now time.Time, ttl time.Duration) []*QuizEngine
	Len() int
}
