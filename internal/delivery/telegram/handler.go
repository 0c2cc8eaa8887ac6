package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/times-table-bot/internal/domain/entities"
)

type Handler struct {
	bot         Bot
	logger      *zap.Logger
	userService UserService
	sessions    QuizSessions
}

func NewHandler(
	bot Bot,
	logger *zap.Logger,
	userService UserService,
	sessions QuizSessions,
) *Handler {
	return &Handler{
		bot:         bot,
		logger:      logger,
		userService: userService,
		sessions:    sessions,
	}
}

// Run long-polls Telegram until ctx is done.
func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)
	defer h.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	chatID := update.Message.Chat.ID
	from := update.Message.From

	h.logger.Debug("update received",
		zap.Int64("chat_id", chatID),
		zap.String("text", update.Message.Text),
	)

	if err := h.userService.EnsureUser(ctx, from.ID, chatID); err != nil {
		h.logger.Error("failed to ensure user",
			zap.Int64("user_id", from.ID),
			zap.Error(err),
		)
	}

	if update.Message.IsCommand() {
		switch update.Message.Command() {
		case "start":
			_ = h.withErrorHandling(h.startHandler(from.ID))(ctx, chatID)

		case "quiz":
			_ = h.withErrorHandling(h.quizHandler(from.ID))(ctx, chatID)

		case "mode":
			_ = h.withErrorHandling(h.modeHandler(from.ID))(ctx, chatID)

		case "stats":
			_ = h.withErrorHandling(h.statsHandler())(ctx, chatID)

		case "stop":
			_ = h.withErrorHandling(h.stopHandler())(ctx, chatID)

		case "help":
			h.send(newMessage(chatID, md(msgHelp)))

		default:
			h.send(newMessage(chatID, md(msgUnknownCommand)))
		}

		return
	}

	_ = h.withErrorHandling(h.answerHandler(from.ID, update.Message.Text))(ctx, chatID)
}

// advanceListener sends the next question when a session moves on by itself.
func (h *Handler) advanceListener(chatID int64) func(entities.QuizState) {
	return func(st entities.QuizState) {
		h.sendQuestion(chatID, st)
	}
}

func (h *Handler) sendQuestion(chatID int64, st entities.QuizState) {
	if st.AnswerRevealed {
		msg := newMessage(chatID, renderQuestion(st)+"\n\n"+bold(fmt.Sprintf(msgWrong, st.ExpectedAnswer())))
		msg.ReplyMarkup = buildRevealedKeyboard(st.Mode)
		h.send(msg)
		return
	}

	msg := newMessage(chatID, renderQuestion(st))
	msg.ReplyMarkup = buildQuestionKeyboard(st.Mode)
	h.send(msg)
}

func (h *Handler) sendError(chatID int64, err string) {
	h.send(newMessage(chatID, md(err)))
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
	}
}

func (h *Handler) answerCallback(callbackID, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		h.logger.Warn("failed to answer callback", zap.Error(err))
	}
}
