package service

import (
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/aliskhannn/times-table-bot/internal/domain/entities"
)

// manualDeferrer records deferred calls and runs them on demand.
type manualDeferrer struct {
	mu     sync.Mutex
	timers []*manualTimer
	err    error
}

type manualTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() { t.stopped = true }

func (d *manualDeferrer) Defer(delay time.Duration, fn func()) (Timer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.err != nil {
		return nil, d.err
	}
	t := &manualTimer{delay: delay, fn: fn}
	d.timers = append(d.timers, t)
	return t, nil
}

// fireAll runs every timer that was not stopped.
func (d *manualDeferrer) fireAll() {
	d.mu.Lock()
	timers := append([]*manualTimer(nil), d.timers...)
	d.mu.Unlock()

	for _, t := range timers {
		if t.stopped || t.fired {
			continue
		}
		t.fired = true
		t.fn()
	}
}

// fireStale runs every timer, ignoring Stop, the way a timer that already
// fired but lost the race for the engine lock would.
func (d *manualDeferrer) fireStale() {
	d.mu.Lock()
	timers := append([]*manualTimer(nil), d.timers...)
	d.mu.Unlock()

	for _, t := range timers {
		t.fn()
	}
}

func (d *manualDeferrer) last() *manualTimer {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.timers) == 0 {
		return nil
	}
	return d.timers[len(d.timers)-1]
}

func newTestEngine(d Deferrer, src RandomSource, opts ...EngineOption) *QuizEngine {
	opts = append([]EngineOption{WithRandomSource(src)}, opts...)
	return NewQuizEngine(DefaultQuizConfig(), d, nil, opts...)
}

func TestQuizEngine_StartsInMultiplicationWithZeroTallies(t *testing.T) {
	e := newTestEngine(&manualDeferrer{}, rand.New(rand.NewSource(1)))
	st := e.Start(entities.ModeMultiplication)

	if st.Mode != entities.ModeMultiplication {
		t.Fatalf("expected multiplication, got %q", st.Mode)
	}
	if st.Feedback != entities.FeedbackNoAttempt || st.Attempts != 0 || st.AnswerRevealed {
		t.Fatalf("unexpected per-question state: %+v", st)
	}
	if st.CorrectCount != 0 || st.WrongCount != 0 || st.CurrentStreak != 0 || st.HighestStreak != 0 {
		t.Fatalf("tallies must start at zero: %+v", st)
	}
	if st.Operands.A < 2 || st.Operands.A > 12 || st.Operands.B < 2 || st.Operands.B > 12 {
		t.Fatalf("operands out of range: %+v", st.Operands)
	}
}

func TestQuizEngine_CorrectAnswerAdvancesAfterDelay(t *testing.T) {
	d := &manualDeferrer{}
	var advanced []entities.QuizState
	e := newTestEngine(d, operandsSource([2]int{4, 7}, [2]int{3, 5}),
		WithAdvanceListener(func(st entities.QuizState) { advanced = append(advanced, st) }),
	)
	e.Start(entities.ModeMultiplication)

	res := e.SubmitAnswer("28")
	if !res.Accepted || res.Feedback != entities.FeedbackCorrect {
		t.Fatalf("expected accepted correct answer, got %+v", res)
	}
	if res.State.CorrectCount != 1 || res.State.CurrentStreak != 1 || res.State.HighestStreak != 1 {
		t.Fatalf("unexpected tallies: %+v", res.State)
	}
	if res.State.AnswerRevealed {
		t.Fatalf("answer must not be revealed")
	}

	timer := d.last()
	if timer == nil {
		t.Fatalf("expected the auto-advance to be scheduled")
	}
	if timer.delay != time.Second {
		t.Fatalf("expected a 1s delay, got %s", timer.delay)
	}

	// Nothing changes until the timer fires.
	if st := e.State(); st.Operands != (entities.Operands{A: 4, B: 7}) || st.Feedback != entities.FeedbackCorrect {
		t.Fatalf("question changed before the delay: %+v", st)
	}

	d.fireAll()

	st := e.State()
	if st.Operands != (entities.Operands{A: 3, B: 5}) {
		t.Fatalf("expected the next question, got %+v", st.Operands)
	}
	if st.Attempts != 0 || st.Feedback != entities.FeedbackNoAttempt || st.UserAnswer != "" {
		t.Fatalf("per-question fields not reset: %+v", st)
	}
	if st.CorrectCount != 1 {
		t.Fatalf("tally lost on advance: %+v", st)
	}
	if len(advanced) != 1 || advanced[0].Operands != st.Operands {
		t.Fatalf("listener should see the new question once, got %+v", advanced)
	}
}

func TestQuizEngine_TwoWrongAttemptsRevealAnswer(t *testing.T) {
	d := &manualDeferrer{}
	e := newTestEngine(d, operandsSource([2]int{9, 6}, [2]int{2, 2}))
	e.Start(entities.ModeMultiplication)

	res := e.SubmitAnswer("10")
	if res.Feedback != entities.FeedbackTryAgain {
		t.Fatalf("expected try_again, got %q", res.Feedback)
	}
	if res.State.Attempts != 1 || res.State.AnswerRevealed || res.State.CurrentStreak != 0 {
		t.Fatalf("unexpected state after first attempt: %+v", res.State)
	}

	res = e.SubmitAnswer("10")
	if res.Feedback != entities.FeedbackIncorrect {
		t.Fatalf("expected incorrect, got %q", res.Feedback)
	}
	if res.State.WrongCount != 1 || !res.State.AnswerRevealed || res.State.Attempts != 2 {
		t.Fatalf("unexpected state after second attempt: %+v", res.State)
	}
	if res.Expected != 54 {
		t.Fatalf("revealed answer should be 54, got %d", res.Expected)
	}
	if d.last() != nil {
		t.Fatalf("wrong answers must not schedule an advance")
	}

	// Input is closed while the answer is shown.
	if res := e.SubmitAnswer("54"); res.Accepted {
		t.Fatalf("submission after reveal must be ignored")
	}
	if st := e.State(); st.CorrectCount != 0 || st.WrongCount != 1 {
		t.Fatalf("ignored submission changed tallies: %+v", st)
	}

	st, ok := e.AdvanceAfterReveal()
	if !ok {
		t.Fatalf("advance after reveal should succeed")
	}
	if st.Operands != (entities.Operands{A: 2, B: 2}) || st.AnswerRevealed || st.Attempts != 0 {
		t.Fatalf("unexpected state after advance: %+v", st)
	}
}

func TestQuizEngine_DivisionReveal(t *testing.T) {
	e := newTestEngine(&manualDeferrer{}, operandsSource([2]int{8, 7}))
	st := e.Start(entities.ModeDivision)
	if st.Operands != (entities.Operands{A: 56, B: 7}) {
		t.Fatalf("unexpected division operands %+v", st.Operands)
	}

	e.SubmitAnswer("7")
	res := e.SubmitAnswer("nope")
	if res.Feedback != entities.FeedbackIncorrect || res.Expected != 8 {
		t.Fatalf("expected revealed quotient 8, got %+v", res)
	}
}

func TestQuizEngine_AdvanceWithoutRevealIsNoop(t *testing.T) {
	e := newTestEngine(&manualDeferrer{}, operandsSource([2]int{4, 4}))
	before := e.Start(entities.ModeMultiplication)

	after, ok := e.AdvanceAfterReveal()
	if ok {
		t.Fatalf("advance must be refused while nothing is revealed")
	}
	if after != before {
		t.Fatalf("state changed: %+v -> %+v", before, after)
	}
}

func TestQuizEngine_EmptyAndDuplicateSubmissionsIgnored(t *testing.T) {
	d := &manualDeferrer{}
	e := newTestEngine(d, operandsSource([2]int{4, 7}))
	e.Start(entities.ModeMultiplication)

	if res := e.SubmitAnswer(""); res.Accepted {
		t.Fatalf("empty submission must be ignored")
	}

	e.SubmitAnswer("28")
	if res := e.SubmitAnswer("28"); res.Accepted {
		t.Fatalf("resubmitting while the next question is pending must be ignored")
	}
	if st := e.State(); st.CorrectCount != 1 {
		t.Fatalf("expected a single correct answer, got %d", st.CorrectCount)
	}
}

func TestQuizEngine_ModeSwitchCancelsPendingAdvance(t *testing.T) {
	d := &manualDeferrer{}
	var advanced int
	e := newTestEngine(d, operandsSource([2]int{4, 7}, [2]int{6, 3}, [2]int{12, 12}),
		WithAdvanceListener(func(entities.QuizState) { advanced++ }),
	)
	e.Start(entities.ModeMultiplication)

	e.SubmitAnswer("28")
	pending := d.last()

	st, err := e.SetMode(entities.ModeDivision)
	if err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if !pending.stopped {
		t.Fatalf("mode switch must cancel the pending advance")
	}
	if st.Mode != entities.ModeDivision || st.Operands != (entities.Operands{A: 18, B: 3}) {
		t.Fatalf("unexpected state after switch: %+v", st)
	}
	if st.CorrectCount != 1 || st.CurrentStreak != 1 {
		t.Fatalf("mode switch must keep tallies: %+v", st)
	}

	// A callback that slipped past Stop must not replace the newer question.
	d.fireStale()
	if got := e.State(); got.Operands != st.Operands {
		t.Fatalf("stale advance overwrote the question: %+v", got.Operands)
	}
	if advanced != 0 {
		t.Fatalf("stale advance notified the listener")
	}
}

func TestQuizEngine_ToggleModeKeepsTallies(t *testing.T) {
	e := newTestEngine(&manualDeferrer{}, rand.New(rand.NewSource(5)))
	e.Start(entities.ModeMultiplication)

	e.SubmitAnswer("-1")
	e.SubmitAnswer("-1")

	st := e.ToggleMode()
	if st.Mode != entities.ModeDivision {
		t.Fatalf("expected division, got %q", st.Mode)
	}
	if st.WrongCount != 1 {
		t.Fatalf("toggle must keep tallies: %+v", st)
	}
	if st.Operands.A%st.Operands.B != 0 {
		t.Fatalf("division question not exact: %+v", st.Operands)
	}
	if st.AnswerRevealed || st.Attempts != 0 {
		t.Fatalf("toggle must reset the question: %+v", st)
	}

	if st := e.ToggleMode(); st.Mode != entities.ModeMultiplication {
		t.Fatalf("expected multiplication, got %q", st.Mode)
	}
}

func TestQuizEngine_SetModeRejectsUnknown(t *testing.T) {
	e := newTestEngine(&manualDeferrer{}, rand.New(rand.NewSource(6)))
	before := e.Start(entities.ModeMultiplication)

	st, err := e.SetMode(entities.Mode("addition"))
	if !errors.Is(err, entities.ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
	if st != before {
		t.Fatalf("state changed on rejected mode")
	}
}

func TestQuizEngine_CelebratesOnceAtTen(t *testing.T) {
	d := &manualDeferrer{}
	e := newTestEngine(d, rand.New(rand.NewSource(7)))
	e.Start(entities.ModeMultiplication)

	celebrations := 0
	for i := 1; i <= 12; i++ {
		st := e.State()
		res := e.SubmitAnswer(strconv.Itoa(st.ExpectedAnswer()))
		if !res.Accepted || res.Feedback != entities.FeedbackCorrect {
			t.Fatalf("answer %d not accepted as correct: %+v", i, res)
		}
		if res.Celebrate {
			celebrations++
			if res.State.CorrectCount != 10 {
				t.Fatalf("celebrated at %d", res.State.CorrectCount)
			}
			if !e.ShouldCelebrate() {
				t.Fatalf("gate should be open at 10")
			}
		}
		d.fireAll()
	}

	if celebrations != 1 {
		t.Fatalf("expected exactly one celebration, got %d", celebrations)
	}
	if e.ShouldCelebrate() {
		t.Fatalf("gate should be closed past 10")
	}
	if st := e.State(); st.CurrentStreak != 12 || st.HighestStreak != 12 {
		t.Fatalf("unexpected streaks: %+v", st)
	}
}

func TestQuizEngine_HighestStreakNeverDecreases(t *testing.T) {
	d := &manualDeferrer{}
	e := newTestEngine(d, rand.New(rand.NewSource(8)))
	e.Start(entities.ModeMultiplication)

	r := rand.New(rand.NewSource(9))
	prevHighest := 0
	for i := 0; i < 500; i++ {
		st := e.State()
		switch r.Intn(4) {
		case 0:
			e.SubmitAnswer(strconv.Itoa(st.ExpectedAnswer()))
			d.fireAll()
		case 1:
			e.SubmitAnswer("0")
		case 2:
			e.AdvanceAfterReveal()
		default:
			e.ToggleMode()
		}

		st = e.State()
		if st.HighestStreak < prevHighest {
			t.Fatalf("highest streak decreased: %d -> %d", prevHighest, st.HighestStreak)
		}
		if st.HighestStreak < st.CurrentStreak {
			t.Fatalf("highest %d below current %d", st.HighestStreak, st.CurrentStreak)
		}
		if st.AnswerRevealed != (st.Attempts == 2) || st.AnswerRevealed != (st.Feedback == entities.FeedbackIncorrect) {
			t.Fatalf("reveal invariant broken: %+v", st)
		}
		if st.Mode == entities.ModeDivision && st.Operands.A%st.Operands.B != 0 {
			t.Fatalf("division invariant broken: %+v", st.Operands)
		}
		prevHighest = st.HighestStreak
	}
}

func TestQuizEngine_NewQuestionKeepsTalliesAndCancelsAdvance(t *testing.T) {
	d := &manualDeferrer{}
	e := newTestEngine(d, operandsSource([2]int{4, 7}, [2]int{6, 6}, [2]int{9, 3}, [2]int{2, 2}))
	e.Start(entities.ModeMultiplication)

	e.SubmitAnswer("28")
	pending := d.last()

	st := e.NewQuestion()
	if !pending.stopped {
		t.Fatalf("a new question must cancel the pending advance")
	}
	if st.Operands != (entities.Operands{A: 6, B: 6}) {
		t.Fatalf("expected a fresh question, got %+v", st.Operands)
	}
	if st.Feedback != entities.FeedbackNoAttempt || st.Attempts != 0 || st.UserAnswer != "" || st.AnswerRevealed {
		t.Fatalf("per-question fields not reset: %+v", st)
	}
	if st.CorrectCount != 1 || st.CurrentStreak != 1 || st.HighestStreak != 1 {
		t.Fatalf("tallies must survive a new question: %+v", st)
	}

	d.fireStale()
	if got := e.State(); got.Operands != st.Operands {
		t.Fatalf("stale advance replaced the question: %+v", got.Operands)
	}

	e.SubmitAnswer("0")
	e.SubmitAnswer("0")
	if st = e.NewQuestion(); st.AnswerRevealed || st.WrongCount != 1 || st.Operands != (entities.Operands{A: 9, B: 3}) {
		t.Fatalf("unexpected state after a new question on a revealed answer: %+v", st)
	}
}

func TestQuizEngine_CloseCancelsPendingAdvance(t *testing.T) {
	d := &manualDeferrer{}
	e := newTestEngine(d, operandsSource([2]int{4, 7}, [2]int{5, 5}))
	e.Start(entities.ModeMultiplication)

	e.SubmitAnswer("28")
	pending := d.last()
	e.Close()

	if !pending.stopped {
		t.Fatalf("close must cancel the pending advance")
	}
	d.fireStale()
	if st := e.State(); st.Operands != (entities.Operands{A: 4, B: 7}) {
		t.Fatalf("closed engine advanced: %+v", st.Operands)
	}
	if res := e.SubmitAnswer("1"); res.Accepted {
		t.Fatalf("closed engine accepted a submission")
	}
}

func TestQuizEngine_DeferFailureAdvancesImmediately(t *testing.T) {
	d := &manualDeferrer{err: errors.New("scheduler down")}
	e := newTestEngine(d, operandsSource([2]int{4, 7}, [2]int{5, 5}))
	e.Start(entities.ModeMultiplication)

	res := e.SubmitAnswer("28")
	if !res.Accepted || res.Feedback != entities.FeedbackCorrect {
		t.Fatalf("expected a graded correct answer, got %+v", res)
	}
	if st := e.State(); st.Operands != (entities.Operands{A: 5, B: 5}) || st.CorrectCount != 1 {
		t.Fatalf("expected an immediate advance, got %+v", st)
	}
}
