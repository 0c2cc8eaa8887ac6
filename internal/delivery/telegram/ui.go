package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/times-table-bot/internal/domain/entities"
)

func switchModeButton(current entities.Mode) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(
		fmt.Sprintf(btnSwitchMode, current.Toggle().Title()),
		buildQuizModeCallback(),
	)
}

// buildQuestionKeyboard builds keyboard shown under a question.
func buildQuestionKeyboard(mode entities.Mode) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(switchModeButton(mode)),
	)
}

// buildRevealedKeyboard builds keyboard shown once the answer is revealed.
func buildRevealedKeyboard(mode entities.Mode) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnNextQuestion, buildQuizNextCallback()),
		),
		tgbotapi.NewInlineKeyboardRow(switchModeButton(mode)),
	)
}

// buildQuizResultKeyboard builds keyboard for the final score screen.
func buildQuizResultKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnNewQuiz, buildQuizStartCallback()),
		),
	)
}

// answerPrompt keeps the input focused on the question after a wrong try.
func answerPrompt() tgbotapi.ForceReply {
	return tgbotapi.ForceReply{
		ForceReply:            true,
		InputFieldPlaceholder: msgAnswerPrompt,
	}
}

// emptyKeyboard removes the inline keyboard of an answered message.
func emptyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	}
}
