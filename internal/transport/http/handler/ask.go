package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"holistica/internal/app"
	"holistica/internal/cache"
	"holistica/internal/model"
	"holistica/internal/platform/rabbitmq"
	"holistica/internal/transport/http/response"
)

type AskHandler struct {
	answers   *app.AnswerService
	history   *cache.SearchHistory
	publisher *rabbitmq.HistoryPublisher
	logger    *zap.Logger
}

type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

func NewAskHandler(answers *app.AnswerService, history *cache.SearchHistory, publisher *rabbitmq.HistoryPublisher, logger *zap.Logger) *AskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AskHandler{
		answers:   answers,
		history:   history,
		publisher: publisher,
		logger:    logger,
	}
}

// Ask answers a question from the library. A refusal is a normal 200
// response with refused=true; only embedding, index, and synthesis failures
// surface as errors.
func (h *AskHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.answers.Ask(c.Request.Context(), req.Question)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrSynthesisFailed):
			response.Error(c, http.StatusBadGateway, response.CodeSynthesisFailed, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ask failed: "+err.Error())
		}
		return
	}

	h.recordHistory(req.Question, result)
	response.OK(c, result)
}

// recordHistory publishes the record for the history worker. Best effort:
// history loss never fails the answer.
func (h *AskHandler) recordHistory(question string, result *app.AskResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	record := model.SearchRecord{
		Question: question,
		Answer:   result.Answer,
		Source:   result.Source,
		AskedAt:  time.Now(),
	}
	if err := h.publisher.Publish(ctx, record); err != nil {
		h.logger.Warn("publish search record failed", zap.Error(err))
	}
}

// History returns the most recent search records, newest first.
func (h *AskHandler) History(c *gin.Context) {
	records, err := h.history.Recent(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "read history failed")
		return
	}
	response.OK(c, records)
}
