package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/times-table-bot/internal/service"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil {
		h.answerCallback(cb.ID, "")
		return
	}

	chatID := cb.Message.Chat.ID
	data := decodeCallback(cb.Data)

	switch data.Action {
	case actionQuiz:
		_ = h.withErrorHandling(h.quizCallbackHandler(cb, data))(ctx, chatID)
	default:
		h.logger.Debug("unknown callback action", zap.String("data", cb.Data))
		h.answerCallback(cb.ID, "")
	}
}

func (h *Handler) quizCallbackHandler(cb *tgbotapi.CallbackQuery, data callbackData) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		userID := cb.From.ID
		messageID := cb.Message.MessageID

		switch data.sub() {
		case quizStart:
			h.answerCallback(cb.ID, "")
			h.clearKeyboard(chatID, messageID)
			engine := h.sessions.Start(ctx, userID, chatID, h.advanceListener(chatID))
			h.sendQuestion(chatID, engine.State())

		case quizNext:
			engine, err := h.sessions.Get(chatID)
			if errors.Is(err, service.ErrSessionNotFound) {
				h.answerCallback(cb.ID, msgNoActiveQuiz)
				return nil
			}
			if err != nil {
				h.answerCallback(cb.ID, "")
				return err
			}

			st, ok := engine.AdvanceAfterReveal()
			if !ok {
				h.answerCallback(cb.ID, msgNothingToSkip)
				return nil
			}
			h.answerCallback(cb.ID, "")
			h.clearKeyboard(chatID, messageID)
			h.sendQuestion(chatID, st)

		case quizMode:
			st, err := h.toggleMode(ctx, userID, chatID)
			if err != nil {
				h.answerCallback(cb.ID, "")
				return err
			}
			h.answerCallback(cb.ID, "")
			h.clearKeyboard(chatID, messageID)
			h.sendQuestion(chatID, st)

		default:
			h.logger.Debug("unknown quiz callback", zap.String("data", data.Raw))
			h.answerCallback(cb.ID, "")
		}

		return nil
	}
}

// clearKeyboard removes the buttons of a message that has been acted on.
func (h *Handler) clearKeyboard(chatID int64, messageID int) {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, emptyKeyboard())
	if _, err := h.bot.Request(edit); err != nil {
		h.logger.Debug("failed to clear keyboard", zap.Error(err))
	}
}
