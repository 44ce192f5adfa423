// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/flowboard/internal/app"
	boardengine "github.com/okian/flowboard/internal/domain/board"
	"github.com/okian/flowboard/internal/domain/flow"
	"github.com/okian/flowboard/internal/domain/model"
	"github.com/okian/flowboard/internal/domain/priority"
	"github.com/okian/flowboard/internal/domain/tags"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	CreateBoard(ctx context.Context, id, boardType, name, description string) (string, error)
	Boards(ctx context.Context) []string
	GetBoard(ctx context.Context, boardID string) (*model.Board, error)
	GetBoardMetrics(ctx context.Context, boardID string) (app.BoardMetrics, error)
	SetColumnWIPLimit(ctx context.Context, boardID, column string, limit int) error
	AddSwimlane(ctx context.Context, boardID string, lane model.Swimlane) error

	AddCard(ctx context.Context, boardID string, req app.AddCardRequest) (string, error)
	SearchCards(ctx context.Context, boardID, query, itemType, assignee string) ([]*model.Card, error)
	MoveCard(ctx context.Context, boardID, cardID, newColumn, movedBy, reason string) (app.MoveResult, error)
	BulkMove(ctx context.Context, boardID string, cardIDs []string, newColumn, movedBy, reason string) (boardengine.BulkResult, error)
	ValidateMove(ctx context.Context, boardID, cardID, newColumn string) (boardengine.Validation, error)
	AddComment(ctx context.Context, boardID, cardID, content, author string) error
	ProcessCardTags(ctx context.Context, boardID, cardID string) (tags.Result, error)

	GetLeanFlowMetrics(ctx context.Context, boardID string, days int) (flow.Report, error)
	GetWipStatus(ctx context.Context, boardID string) (app.WipStatus, error)
	PrioritizeBacklog(ctx context.Context, boardID string, pctx priority.Context) ([]priority.Result, error)
	EvaluatePriority(ctx context.Context, item priority.Item, pctx priority.Context) (priority.Result, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	boardsHandler   *BoardsHandler
	priorityHandler *PriorityHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		boardsHandler:   NewBoardsHandler(deps),
		priorityHandler: NewPriorityHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/prioritize", MetricsMiddleware(s.priorityHandler.HandleEvaluate, "prioritize"))
	mux.HandleFunc("/boards", MetricsMiddleware(s.boardsHandler.HandleBoards, "boards"))
	mux.HandleFunc("/boards/", MetricsMiddleware(s.boardsHandler.HandleBoard, "boards"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates domain sentinels into HTTP statuses:
// not-found conditions map to 404, validation to 400, rule conflicts
// to 409, anything else to 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrBoardNotFound),
		errors.Is(err, model.ErrCardNotFound),
		errors.Is(err, model.ErrColumnNotFound),
		errors.Is(err, model.ErrSwimlaneNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, model.ErrValidation):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, model.ErrDuplicateBoard),
		errors.Is(err, model.ErrWipLimitExceeded),
		errors.Is(err, model.ErrIllegalTransition):
		writeError(w, http.StatusConflict, "conflict", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
