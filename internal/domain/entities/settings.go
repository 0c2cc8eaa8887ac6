package entities

import (
	"time"
)

// UserSettings stores user preferences that outlive a quiz session.
// Scores live only as long as the session.
type UserSettings struct {
	UserID    int64
	QuizMode  Mode // mode a new session starts in
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUserSettings creates a new UserSettings instance with default values.
func NewUserSettings(userID int64) *UserSettings {
	now := time.Now()
	return &UserSettings{
		UserID:    userID,
		QuizMode:  ModeMultiplication,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// PreferredMode returns the stored mode, falling back to multiplication
// when the stored value is unknown.
func (us *UserSettings) PreferredMode() Mode {
	if us == nil || !us.QuizMode.Valid() {
		return ModeMultiplication
	}
	return us.QuizMode
}
