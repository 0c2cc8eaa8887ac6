package entities

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownMode = errors.New("unknown quiz mode")

// Mode selects the question semantics of a quiz session.
type Mode string

const (
	ModeMultiplication Mode = "multiplication" // "What is a x b?"
	ModeDivision       Mode = "division"       // "What is a / b?", always an exact quotient
)

// ParseMode converts user or storage input into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeMultiplication:
		return ModeMultiplication, nil
	case ModeDivision:
		return ModeDivision, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Valid reports whether m is one of the supported modes.
func (m Mode) Valid() bool {
	return m == ModeMultiplication || m == ModeDivision
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeDivision {
		return ModeMultiplication
	}
	return ModeDivision
}

// Symbol returns the operator shown in the question text.
func (m Mode) Symbol() string {
	if m == ModeDivision {
		return "/"
	}
	return "x"
}

// Title returns a human readable mode name.
func (m Mode) Title() string {
	if m == ModeDivision {
		return "Division"
	}
	return "Multiplication"
}

// Feedback is the last evaluation outcome shown to the user.
type Feedback string

const (
	FeedbackNoAttempt Feedback = "no_attempt" // nothing submitted for the current question
	FeedbackCorrect   Feedback = "correct"    // answered correctly, waiting for the next question
	FeedbackTryAgain  Feedback = "try_again"  // first wrong attempt
	FeedbackIncorrect Feedback = "incorrect"  // second wrong attempt, the answer is revealed
)

// Operands holds the two numbers of the current question.
// In division mode A is the dividend and B the divisor.
type Operands struct {
	A int `json:"a"`
	B int `json:"b"`
}

// maxAttempts is the number of wrong submissions after which the answer is revealed.
const maxAttempts = 2

// QuizState is the full state of one quiz session.
//
// Tallies and streaks live for the whole session; the remaining fields
// describe the current question and are reset by Reset.
type QuizState struct {
	Mode           Mode     `json:"mode"`
	Operands       Operands `json:"operands"`
	UserAnswer     string   `json:"user_answer"`
	Attempts       int      `json:"attempts"` // wrong submissions for the current question (0-2)
	Feedback       Feedback `json:"feedback"`
	AnswerRevealed bool     `json:"answer_revealed"`

	CorrectCount  int `json:"correct_count"`
	WrongCount    int `json:"wrong_count"`
	CurrentStreak int `json:"current_streak"`
	HighestStreak int `json:"highest_streak"`
}

// NewQuizState creates an empty session state in multiplication mode.
func NewQuizState() *QuizState {
	return &QuizState{
		Mode:     ModeMultiplication,
		Feedback: FeedbackNoAttempt,
	}
}

// Reset installs a new question and clears the per-question fields.
// Tallies and streaks are kept.
func (s *QuizState) Reset(op Operands) {
	s.Operands = op
	s.UserAnswer = ""
	s.Attempts = 0
	s.Feedback = FeedbackNoAttempt
	s.AnswerRevealed = false
}

// ExpectedAnswer returns the correct answer for the current question.
func (s QuizState) ExpectedAnswer() int {
	if s.Mode == ModeDivision {
		if s.Operands.B == 0 {
			return 0
		}
		return s.Operands.A / s.Operands.B
	}
	return s.Operands.A * s.Operands.B
}

// CanSubmit reports whether an answer may be submitted for the current question.
// Submissions are closed once the answer is revealed and while a correct answer
// waits for the next question.
func (s QuizState) CanSubmit() bool {
	return !s.AnswerRevealed && s.Feedback != FeedbackCorrect
}

// Grade applies one submission to the state.
//
// raw is the text the user typed; answer and ok come from parsing it. A failed
// parse never matches the expected value. The caller must check CanSubmit first.
func (s *QuizState) Grade(raw string, answer int, ok bool) Feedback {
	s.UserAnswer = raw

	if ok && answer == s.ExpectedAnswer() {
		s.Feedback = FeedbackCorrect
		s.CorrectCount++
		s.CurrentStreak++
		s.HighestStreak = max(s.HighestStreak, s.CurrentStreak)
		return s.Feedback
	}

	s.CurrentStreak = 0
	s.UserAnswer = ""
	s.Attempts++

	if s.Attempts >= maxAttempts {
		s.Attempts = maxAttempts
		s.Feedback = FeedbackIncorrect
		s.WrongCount++
		s.AnswerRevealed = true
		return s.Feedback
	}

	s.Feedback = FeedbackTryAgain
	return s.Feedback
}

// ShouldCelebrate reports whether the correct tally sits exactly on threshold.
func (s QuizState) ShouldCelebrate(threshold int) bool {
	return threshold > 0 && s.CorrectCount == threshold
}

// QuestionText renders the question the way the quiz asks it.
func (s QuizState) QuestionText() string {
	return fmt.Sprintf("What is %d %s %d?", s.Operands.A, s.Mode.Symbol(), s.Operands.B)
}
