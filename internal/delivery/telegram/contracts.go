package telegram

import (
	"context"

	"github.com/aliskhannn/times-table-bot/internal/domain/entities"
	"github.com/aliskhannn/times-table-bot/internal/service"
)

type UserService interface {
	EnsureUser(ctx context.Context, userID, chatID int64) error
}

// QuizSessions manages the quiz engine of every chat.
type QuizSessions interface {
	Get(chatID int64) (*service.QuizEngine, error)
	GetOrStart(ctx context.Context, userID, chatID int64, onAdvance service.AdvanceListener) (*service.QuizEngine, bool)
	Start(ctx context.Context, userID, chatID int64, onAdvance service.AdvanceListener) *service.QuizEngine
	ToggleMode(ctx context.Context, userID, chatID int64) (entities.QuizState, error)
	End(chatID int64) (entities.QuizState, error)
}
