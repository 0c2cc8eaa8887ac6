package telegram

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aliskhannn/times-table-bot/internal/domain/entities"
	"github.com/aliskhannn/times-table-bot/internal/service"
)

func (h *Handler) startHandler(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		h.send(newMessage(chatID, md(msgWelcome)))

		engine := h.sessions.Start(ctx, userID, chatID, h.advanceListener(chatID))
		h.sendQuestion(chatID, engine.State())

		return nil
	}
}

// quizHandler shows the current question, starting a session if the chat has none.
func (h *Handler) quizHandler(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		engine, _ := h.sessions.GetOrStart(ctx, userID, chatID, h.advanceListener(chatID))
		h.sendQuestion(chatID, engine.State())

		return nil
	}
}

func (h *Handler) modeHandler(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		st, err := h.toggleMode(ctx, userID, chatID)
		if err != nil {
			return err
		}

		h.send(newMessage(chatID, md(fmt.Sprintf(msgModeSwitched, st.Mode.Title()))))
		h.sendQuestion(chatID, st)

		return nil
	}
}

// toggleMode switches the mode of the chat's session, starting one if needed.
func (h *Handler) toggleMode(ctx context.Context, userID, chatID int64) (entities.QuizState, error) {
	st, err := h.sessions.ToggleMode(ctx, userID, chatID)
	if errors.Is(err, service.ErrSessionNotFound) {
		h.sessions.GetOrStart(ctx, userID, chatID, h.advanceListener(chatID))
		st, err = h.sessions.ToggleMode(ctx, userID, chatID)
	}
	if err != nil {
		return entities.QuizState{}, fmt.Errorf("toggle mode: %w", err)
	}

	return st, nil
}

func (h *Handler) statsHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		engine, err := h.sessions.Get(chatID)
		if errors.Is(err, service.ErrSessionNotFound) {
			h.send(newMessage(chatID, md(msgNoActiveQuiz)))
			return nil
		}
		if err != nil {
			return err
		}

		h.send(newMessage(chatID, renderStats(engine.State())))
		return nil
	}
}

func (h *Handler) stopHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		st, err := h.sessions.End(chatID)
		if errors.Is(err, service.ErrSessionNotFound) {
			h.send(newMessage(chatID, md(msgNoActiveQuiz)))
			return nil
		}
		if err != nil {
			return err
		}

		msg := newMessage(chatID, md(msgQuizStopped)+"\n\n"+renderStats(st))
		msg.ReplyMarkup = buildQuizResultKeyboard()
		h.send(msg)

		return nil
	}
}

// answerHandler grades a plain text message against the current question.
// A chat without a session gets one and the text is not graded.
func (h *Handler) answerHandler(userID int64, text string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		engine, created := h.sessions.GetOrStart(ctx, userID, chatID, h.advanceListener(chatID))
		if created {
			h.send(newMessage(chatID, md(msgQuizStarted)))
			h.sendQuestion(chatID, engine.State())
			return nil
		}

		res := engine.SubmitAnswer(text)
		if !res.Accepted {
			if res.State.AnswerRevealed {
				msg := newMessage(chatID, md(msgAnswerRevealed))
				msg.ReplyMarkup = buildRevealedKeyboard(res.State.Mode)
				h.send(msg)
			}
			return nil
		}

		h.logger.Debug("answer graded",
			zap.Int64("chat_id", chatID),
			zap.String("feedback", string(res.Feedback)),
		)

		msg := newMessage(chatID, renderFeedback(res))
		switch res.Feedback {
		case entities.FeedbackTryAgain:
			msg.ReplyMarkup = answerPrompt()
		case entities.FeedbackIncorrect:
			msg.ReplyMarkup = buildRevealedKeyboard(res.State.Mode)
		}
		h.send(msg)

		if res.Celebrate {
			h.send(newMessage(chatID, renderCelebration(res.State)))
		}

		return nil
	}
}
