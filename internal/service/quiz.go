package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/times-table-bot/internal/domain/entities"
)

const (
	defaultAdvanceDelay         = time.Second
	defaultCelebrationThreshold = 10
	defaultMinOperand           = 2
	defaultMaxOperand           = 12
)

// QuizConfig holds the fixed parameters of a quiz engine.
type QuizConfig struct {
	AdvanceDelay         time.Duration // pause between a correct answer and the next question
	CelebrationThreshold int           // correct tally that triggers the celebration
	MinOperand           int
	MaxOperand           int
}

// DefaultQuizConfig returns the classic 2..12 times table setup.
func DefaultQuizConfig() QuizConfig {
	return QuizConfig{
		AdvanceDelay:         defaultAdvanceDelay,
		CelebrationThreshold: defaultCelebrationThreshold,
		MinOperand:           defaultMinOperand,
		MaxOperand:           defaultMaxOperand,
	}
}

// AdvanceListener is notified after the engine moved to a new question on its own,
// i.e. when the auto-advance timer fired.
type AdvanceListener func(state entities.QuizState)

// SubmitResult describes what a submission did.
type SubmitResult struct {
	Accepted  bool              // false when the submission was ignored
	Feedback  entities.Feedback // outcome of an accepted submission
	Expected  int               // correct answer for the graded question
	Celebrate bool              // the correct tally just reached the celebration threshold
	State     entities.QuizState
}

// QuizEngine runs the quiz state machine of one session.
//
// All operations are serialised. The only asynchronous transition is the
// auto-advance after a correct answer; every other new question cancels it.
type QuizEngine struct {
	mu sync.Mutex

	id        string
	cfg       QuizConfig
	generator *QuestionGenerator
	validator *AnswerValidator
	deferrer  Deferrer
	logger    *zap.Logger
	onAdvance AdvanceListener

	state      *entities.QuizState
	pending    Timer
	generation uint64
	closed     bool
}

// EngineOption customises a QuizEngine.
type EngineOption func(e *QuizEngine)

// WithAdvanceListener registers a listener for timer driven question changes.
func WithAdvanceListener(fn AdvanceListener) EngineOption {
	return func(e *QuizEngine) {
		e.onAdvance = fn
	}
}

// WithRandomSource replaces the operand random source.
func WithRandomSource(rng RandomSource) EngineOption {
	return func(e *QuizEngine) {
		e.generator = NewQuestionGenerator(e.cfg.MinOperand, e.cfg.MaxOperand, rng)
	}
}

// NewQuizEngine creates an engine in multiplication mode with zeroed tallies.
// Call Start to draw the first question.
func NewQuizEngine(cfg QuizConfig, deferrer Deferrer, logger *zap.Logger, opts ...EngineOption) *QuizEngine {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &QuizEngine{
		id:        uuid.NewString(),
		cfg:       cfg,
		generator: NewQuestionGenerator(cfg.MinOperand, cfg.MaxOperand, nil),
		validator: NewAnswerValidator(),
		deferrer:  deferrer,
		state:     entities.NewQuizState(),
	}
	e.logger = logger.With(zap.String("session_id", e.id))

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// ID returns the unique engine identifier.
func (e *QuizEngine) ID() string {
	return e.id
}

// Start initialises the session in the given mode and draws the first question.
func (e *QuizEngine) Start(mode entities.Mode) entities.QuizState {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !mode.Valid() {
		mode = entities.ModeMultiplication
	}
	e.state.Mode = mode
	e.newQuestionLocked()

	e.logger.Debug("quiz session started", zap.String("mode", string(mode)))

	return *e.state
}

// NewQuestion draws a new question for the current mode.
func (e *QuizEngine) NewQuestion() entities.QuizState {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.newQuestionLocked()
	return *e.state
}

// SubmitAnswer grades raw against the current question.
//
// The submission is ignored when raw is empty, the answer has been revealed,
// a correct answer is waiting for the next question or the engine is closed.
func (e *QuizEngine) SubmitAnswer(raw string) SubmitResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || raw == "" || !e.state.CanSubmit() {
		e.logger.Debug("submission ignored",
			zap.String("feedback", string(e.state.Feedback)),
			zap.Bool("answer_revealed", e.state.AnswerRevealed),
		)
		return SubmitResult{State: *e.state}
	}

	expected := e.state.ExpectedAnswer()
	answer, ok := e.validator.Parse(raw)
	feedback := e.state.Grade(raw, answer, ok)

	res := SubmitResult{
		Accepted: true,
		Feedback: feedback,
		Expected: expected,
	}

	e.logger.Debug("answer graded",
		zap.String("feedback", string(feedback)),
		zap.Int("correct_count", e.state.CorrectCount),
		zap.Int("wrong_count", e.state.WrongCount),
		zap.Int("current_streak", e.state.CurrentStreak),
	)

	if feedback == entities.FeedbackCorrect {
		// The tally grows by one per correct answer, so it lands on the
		// threshold exactly once per session.
		res.Celebrate = e.state.ShouldCelebrate(e.cfg.CelebrationThreshold)
		e.scheduleAdvanceLocked()
	}

	res.State = *e.state
	return res
}

// AdvanceAfterReveal moves on once the answer has been revealed.
// It reports false and changes nothing when no answer is revealed.
func (e *QuizEngine) AdvanceAfterReveal() (entities.QuizState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || !e.state.AnswerRevealed {
		return *e.state, false
	}

	e.newQuestionLocked()
	return *e.state, true
}

// SetMode switches the mode and draws a question for it.
// Tallies and streaks are kept.
func (e *QuizEngine) SetMode(mode entities.Mode) (entities.QuizState, error) {
	if !mode.Valid() {
		return e.State(), entities.ErrUnknownMode
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.setModeLocked(mode)
	return *e.state, nil
}

// ToggleMode flips between multiplication and division.
func (e *QuizEngine) ToggleMode() entities.QuizState {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.setModeLocked(e.state.Mode.Toggle())
	return *e.state
}

// State returns a snapshot of the current state.
func (e *QuizEngine) State() entities.QuizState {
	e.mu.Lock()
	defer e.mu.Unlock()

	return *e.state
}

// ShouldCelebrate reports whether the correct tally sits on the celebration threshold.
func (e *QuizEngine) ShouldCelebrate() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state.ShouldCelebrate(e.cfg.CelebrationThreshold)
}

// Close tears the session down and cancels a pending auto-advance.
func (e *QuizEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true
	e.cancelPendingLocked()
	e.generation++

	e.logger.Debug("quiz session closed",
		zap.Int("correct_count", e.state.CorrectCount),
		zap.Int("highest_streak", e.state.HighestStreak),
	)
}

func (e *QuizEngine) setModeLocked(mode entities.Mode) {
	prev := e.state.Mode
	e.state.Mode = mode
	e.newQuestionLocked()

	e.logger.Info("quiz mode switched",
		zap.String("from", string(prev)),
		zap.String("to", string(mode)),
	)
}

func (e *QuizEngine) newQuestionLocked() {
	e.cancelPendingLocked()
	e.generation++
	e.state.Reset(e.generator.Generate(e.state.Mode))
}

func (e *QuizEngine) cancelPendingLocked() {
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
}

func (e *QuizEngine) scheduleAdvanceLocked() {
	e.cancelPendingLocked()

	if e.deferrer == nil {
		e.newQuestionLocked()
		return
	}

	gen := e.generation
	timer, err := e.deferrer.Defer(e.cfg.AdvanceDelay, func() {
		e.advanceFromTimer(gen)
	})
	if err != nil {
		e.logger.Error("failed to schedule next question, advancing now", zap.Error(err))
		e.newQuestionLocked()
		return
	}

	e.pending = timer
}

// advanceFromTimer runs on the timer goroutine. Callbacks armed for an older
// question are dropped.
func (e *QuizEngine) advanceFromTimer(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.generation {
		e.mu.Unlock()
		return
	}

	e.pending = nil
	e.newQuestionLocked()
	snapshot := *e.state
	listener := e.onAdvance
	e.mu.Unlock()

	if listener != nil {
		listener(snapshot)
	}
}
