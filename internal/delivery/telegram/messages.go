// messages.go contains message templates and formatting helpers for Telegram.

package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	msgWelcome = "Welcome to the Times Table Quiz! 🧮\n\n" +
		"I will ask you multiplication or division questions. " +
		"Type your answer as a number, you get two tries per question.\n\n" +
		"Use /mode to switch between multiplication and division."
	msgHelp = "Commands:\n\n" +
		"/quiz - show the current question\n" +
		"/mode - switch between multiplication and division\n" +
		"/stats - show your score\n" +
		"/stop - finish the quiz\n" +
		"/help - show this message\n\n" +
		"Any other message is taken as your answer."
	msgUnknownCommand  = "Unknown command. Send /help to see what I can do."
	msgInternalError   = "Something went wrong. Please try again later."
	msgNoActiveQuiz    = "There is no quiz running. Send /quiz to start one."
	msgQuizStarted     = "Let's go! Here is your first question."
	msgQuizStopped     = "Quiz finished. Here is how you did:"
	msgModeSwitched    = "Switched to %s Mode."
	msgAnswerRevealed  = "The answer is already shown. Tap “Next question” to continue."
	msgNothingToSkip   = "Answer the current question first."
	msgCorrect         = "Correct! 🎉"
	msgTryAgain        = "Try Again!"
	msgWrong           = "Wrong! The correct answer is %d."
	msgCelebration     = "🎊🎊🎊 Amazing! %d correct answers! Keep going! 🎊🎊🎊"
	msgAnswerPrompt    = "Your answer"
	msgStatsHeader     = "📊 Score"
	msgStatsCorrect    = "✅ Correct: %d"
	msgStatsWrong      = "❌ Wrong: %d"
	msgStatsStreak     = "🔥 Current Streak: %d"
	msgStatsBestStreak = "🏆 Highest Streak: %d"
)

// Button labels.
const (
	btnNextQuestion = "Next question ▶️"
	btnSwitchMode   = "Switch to %s Mode"
	btnNewQuiz      = "🔄 New quiz"
)

// md escapes plain text for MarkdownV2.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + md(s) + "*"
}

// newMessage creates a message with MarkdownV2 parse mode.
func newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return msg
}
