package http

import (
	"errors"
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/times-table-bot/internal/domain/entities"
	"github.com/aliskhannn/times-table-bot/internal/service"
	"github.com/aliskhannn/times-table-bot/internal/storage"
)

var (
	errInvalidSessionID = errors.New("session id must be a UUID")
	errNothingRevealed  = errors.New("the answer has not been revealed yet")
)

type sessionResponse struct {
	ID              string             `json:"id"`
	Question        string             `json:"question"`
	State           entities.QuizState `json:"state"`
	ShouldCelebrate bool               `json:"should_celebrate"`
	RevealedAnswer  *int               `json:"revealed_answer,omitempty"`
}

type answerResponse struct {
	Accepted  bool              `json:"accepted"`
	Feedback  entities.Feedback `json:"feedback,omitempty"`
	Celebrate bool              `json:"celebrate"`
	Session   sessionResponse   `json:"session"`
}

type createSessionRequest struct {
	Mode string `json:"mode"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// SessionHandler exposes anonymous quiz sessions over JSON.
// Sessions are keyed by the engine UUID.
type SessionHandler struct {
	store    *storage.SessionStore[string, *service.QuizEngine]
	deferrer service.Deferrer
	cfg      service.QuizConfig
	logger   *zap.Logger
}

func NewSessionHandler(deferrer service.Deferrer, cfg service.QuizConfig, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		store:    storage.NewSessionStore[string, *service.QuizEngine](),
		deferrer: deferrer,
		cfg:      cfg,
		logger:   logger.With(zap.String("handler", "SessionHandler")),
	}
}

// POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, stdhttp.StatusBadRequest, "invalid_body", err)
			return
		}
	}

	mode := entities.ModeMultiplication
	if req.Mode != "" {
		m, err := entities.ParseMode(req.Mode)
		if err != nil {
			RespondError(c, stdhttp.StatusBadRequest, "unknown_mode", err)
			return
		}
		mode = m
	}

	engine := service.NewQuizEngine(h.cfg, h.deferrer, h.logger)
	engine.Start(mode)
	h.store.Put(engine.ID(), engine)

	h.logger.Info("http quiz session started",
		zap.String("session_id", engine.ID()),
		zap.String("mode", string(mode)),
	)

	c.JSON(stdhttp.StatusCreated, h.render(engine))
}

// GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	engine, ok := h.lookup(c)
	if !ok {
		return
	}
	RespondOK(c, h.render(engine))
}

// POST /api/v1/sessions/:id/answers
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	engine, ok := h.lookup(c)
	if !ok {
		return
	}

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, stdhttp.StatusBadRequest, "invalid_body", err)
		return
	}

	res := engine.SubmitAnswer(req.Answer)
	RespondOK(c, answerResponse{
		Accepted:  res.Accepted,
		Feedback:  res.Feedback,
		Celebrate: res.Celebrate,
		Session:   h.renderState(engine.ID(), res.State),
	})
}

// POST /api/v1/sessions/:id/next
func (h *SessionHandler) Next(c *gin.Context) {
	engine, ok := h.lookup(c)
	if !ok {
		return
	}

	if _, advanced := engine.AdvanceAfterReveal(); !advanced {
		RespondError(c, stdhttp.StatusConflict, "not_revealed", errNothingRevealed)
		return
	}
	RespondOK(c, h.render(engine))
}

// POST /api/v1/sessions/:id/question
// Skips to a fresh question in the current mode. Tallies are kept.
func (h *SessionHandler) NewQuestion(c *gin.Context) {
	engine, ok := h.lookup(c)
	if !ok {
		return
	}

	engine.NewQuestion()
	RespondOK(c, h.render(engine))
}

// PUT /api/v1/sessions/:id/mode
func (h *SessionHandler) SetMode(c *gin.Context) {
	engine, ok := h.lookup(c)
	if !ok {
		return
	}

	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, stdhttp.StatusBadRequest, "invalid_body", err)
		return
	}

	mode, err := entities.ParseMode(req.Mode)
	if err != nil {
		RespondError(c, stdhttp.StatusBadRequest, "unknown_mode", err)
		return
	}

	st, err := engine.SetMode(mode)
	if err != nil {
		RespondError(c, stdhttp.StatusBadRequest, "unknown_mode", err)
		return
	}
	RespondOK(c, h.renderState(engine.ID(), st))
}

// DELETE /api/v1/sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	engine, found := h.store.Delete(id)
	if !found {
		RespondError(c, stdhttp.StatusNotFound, "session_not_found", service.ErrSessionNotFound)
		return
	}

	st := engine.State()
	engine.Close()
	RespondOK(c, h.renderState(id, st))
}

// EvictIdle closes HTTP sessions untouched for longer than ttl.
func (h *SessionHandler) EvictIdle(now time.Time, ttl time.Duration) int {
	evicted := h.store.EvictIdle(now, ttl)
	for _, engine := range evicted {
		engine.Close()
	}
	return len(evicted)
}

// Active returns the number of live HTTP sessions.
func (h *SessionHandler) Active() int {
	return h.store.Len()
}

func (h *SessionHandler) sessionID(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, stdhttp.StatusBadRequest, "invalid_session_id", errInvalidSessionID)
		return "", false
	}
	return id.String(), true
}

func (h *SessionHandler) lookup(c *gin.Context) (*service.QuizEngine, bool) {
	id, ok := h.sessionID(c)
	if !ok {
		return nil, false
	}

	engine, found := h.store.Get(id)
	if !found {
		RespondError(c, stdhttp.StatusNotFound, "session_not_found", service.ErrSessionNotFound)
		return nil, false
	}
	return engine, true
}

func (h *SessionHandler) render(engine *service.QuizEngine) sessionResponse {
	return h.renderState(engine.ID(), engine.State())
}

func (h *SessionHandler) renderState(id string, st entities.QuizState) sessionResponse {
	resp := sessionResponse{
		ID:              id,
		Question:        st.QuestionText(),
		State:           st,
		ShouldCelebrate: st.ShouldCelebrate(h.cfg.CelebrationThreshold),
	}
	if st.AnswerRevealed {
		answer := st.ExpectedAnswer()
		resp.RevealedAnswer = &answer
	}
	return resp
}
