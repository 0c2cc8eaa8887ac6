package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/times-table-bot/internal/domain/entities"
)

var ErrSessionNotFound = errors.New("quiz session not found")

// PreferenceService remembers the quiz mode of a user between sessions.
type PreferenceService interface {
	GetOrCreate(ctx context.Context, userID int64) (*entities.UserSettings, error)
	UpdateQuizMode(ctx context.Context, userID int64, mode entities.Mode) error
}

// SessionService owns the quiz engine of every chat.
type SessionService struct {
	store    SessionStore
	prefs    PreferenceService
	deferrer Deferrer
	cfg      QuizConfig
	logger   *zap.Logger

	engineOpts []EngineOption
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	store SessionStore,
	prefs PreferenceService,
	deferrer Deferrer,
	cfg QuizConfig,
	logger *zap.Logger,
	engineOpts ...EngineOption,
) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		store:      store,
		prefs:      prefs,
		deferrer:   deferrer,
		cfg:        cfg,
		logger:     logger,
		engineOpts: engineOpts,
	}
}

// Get returns the live engine of a chat.
func (s *SessionService) Get(chatID int64) (*QuizEngine, error) {
	engine, ok := s.store.Get(chatID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return engine, nil
}

// GetOrStart returns the live engine of a chat or starts a new session in the
// user's preferred mode. created reports whether a session was started.
func (s *SessionService) GetOrStart(
	ctx context.Context, userID, chatID int64, onAdvance AdvanceListener,
) (engine *QuizEngine, created bool) {
	if engine, ok := s.store.Get(chatID); ok {
		return engine, false
	}

	return s.Start(ctx, userID, chatID, onAdvance), true
}

// Start discards any live session of the chat and starts a fresh one.
func (s *SessionService) Start(ctx context.Context, userID, chatID int64, onAdvance AdvanceListener) *QuizEngine {
	if old, ok := s.store.Delete(chatID); ok {
		old.Close()
	}

	mode := entities.ModeMultiplication
	settings, err := s.prefs.GetOrCreate(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load preferred mode, using default",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	} else {
		mode = settings.PreferredMode()
	}

	opts := make([]EngineOption, 0, len(s.engineOpts)+1)
	opts = append(opts, s.engineOpts...)
	if onAdvance != nil {
		opts = append(opts, WithAdvanceListener(onAdvance))
	}

	engine := NewQuizEngine(s.cfg, s.deferrer, s.logger.With(zap.Int64("chat_id", chatID)), opts...)
	engine.Start(mode)
	s.store.Put(chatID, engine)

	s.logger.Info("quiz session started",
		zap.Int64("chat_id", chatID),
		zap.String("session_id", engine.ID()),
		zap.String("mode", string(mode)),
	)

	return engine
}

// ToggleMode flips the mode of a live session and remembers it as the user's
// preferred mode. A failure to persist the preference does not undo the switch.
func (s *SessionService) ToggleMode(ctx context.Context, userID, chatID int64) (entities.QuizState, error) {
	engine, ok := s.store.Get(chatID)
	if !ok {
		return entities.QuizState{}, ErrSessionNotFound
	}

	state := engine.ToggleMode()
	s.rememberMode(ctx, userID, state.Mode)

	return state, nil
}

// SetMode switches a live session to mode and remembers it.
func (s *SessionService) SetMode(ctx context.Context, userID, chatID int64, mode entities.Mode) (entities.QuizState, error) {
	engine, ok := s.store.Get(chatID)
	if !ok {
		return entities.QuizState{}, ErrSessionNotFound
	}

	state, err := engine.SetMode(mode)
	if err != nil {
		return state, err
	}
	s.rememberMode(ctx, userID, state.Mode)

	return state, nil
}

// End tears down the session of a chat and returns its final state.
func (s *SessionService) End(chatID int64) (entities.QuizState, error) {
	engine, ok := s.store.Delete(chatID)
	if !ok {
		return entities.QuizState{}, ErrSessionNotFound
	}

	state := engine.State()
	engine.Close()

	s.logger.Info("quiz session ended",
		zap.Int64("chat_id", chatID),
		zap.String("session_id", engine.ID()),
		zap.Int("correct_count", state.CorrectCount),
		zap.Int("wrong_count", state.WrongCount),
	)

	return state, nil
}

// EvictIdle closes every session untouched for longer than ttl.
func (s *SessionService) EvictIdle(now time.Time, ttl time.Duration) int {
	evicted := s.store.EvictIdle(now, ttl)
	for _, engine := range evicted {
		engine.Close()
	}
	return len(evicted)
}

// Active returns the number of live sessions.
func (s *SessionService) Active() int {
	return s.store.Len()
}

func (s *SessionService) rememberMode(ctx context.Context, userID int64, mode entities.Mode) {
	if err := s.prefs.UpdateQuizMode(ctx, userID, mode); err != nil {
		s.logger.Warn("failed to remember quiz mode",
			zap.Int64("user_id", userID),
			zap.String("mode", string(mode)),
			zap.Error(err),
		)
	}
}
