package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/flowboard/internal/app"
	"github.com/okian/flowboard/internal/domain/model"
)

// defaultFlowWindowDays bounds the flow report window when the caller does
// not ask for one.
const defaultFlowWindowDays = 30

// BoardsHandler handles all board-scoped requests.
type BoardsHandler struct {
	deps Dependencies
}

// NewBoardsHandler creates a new boards handler.
func NewBoardsHandler(deps Dependencies) *BoardsHandler {
	return &BoardsHandler{deps: deps}
}

// createBoardRequest mirrors the POST /boards body.
type createBoardRequest struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (r createBoardRequest) validate() error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return errors.New("missing id")
	case strings.TrimSpace(r.Type) == "":
		return errors.New("missing type")
	case strings.TrimSpace(r.Name) == "":
		return errors.New("missing name")
	}
	return nil
}

// HandleBoards handles the /boards collection: GET lists board ids,
// POST creates a board.
func (h *BoardsHandler) HandleBoards(w http.ResponseWriter, r *http.Request) {
	const op = "api.boards"
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"boards": h.deps.Boards(r.Context())})
	case http.MethodPost:
		var req createBoardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
			return
		}
		id, err := h.deps.CreateBoard(r.Context(), req.ID, req.Type, req.Name, req.Description)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"board_id": id})
	default:
		http.NotFound(w, r)
	}
}

// HandleBoard routes /boards/{id} and its sub-resources.
func (h *BoardsHandler) HandleBoard(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/boards/"), "/")
	if parts[0] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	boardID := parts[0]

	switch {
	case len(parts) == 1:
		h.handleGetBoard(w, r, boardID)
	case len(parts) == 2 && parts[1] == "metrics":
		h.handleMetrics(w, r, boardID)
	case len(parts) == 2 && parts[1] == "flow":
		h.handleFlow(w, r, boardID)
	case len(parts) == 2 && parts[1] == "wip":
		h.handleWip(w, r, boardID)
	case len(parts) == 2 && parts[1] == "wip-limit":
		h.handleWipLimit(w, r, boardID)
	case len(parts) == 2 && parts[1] == "swimlanes":
		h.handleSwimlanes(w, r, boardID)
	case len(parts) == 2 && parts[1] == "cards":
		h.handleCards(w, r, boardID)
	case len(parts) == 2 && parts[1] == "bulk-move":
		h.handleBulkMove(w, r, boardID)
	case len(parts) == 2 && parts[1] == "prioritize":
		h.handlePrioritize(w, r, boardID)
	case len(parts) == 4 && parts[1] == "cards":
		h.handleCardAction(w, r, boardID, parts[2], parts[3])
	default:
		http.NotFound(w, r)
	}
}

func (h *BoardsHandler) handleGetBoard(w http.ResponseWriter, r *http.Request, boardID string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	b, err := h.deps.GetBoard(r.Context(), boardID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BoardsHandler) handleMetrics(w http.ResponseWriter, r *http.Request, boardID string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	m, err := h.deps.GetBoardMetrics(r.Context(), boardID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *BoardsHandler) handleFlow(w http.ResponseWriter, r *http.Request, boardID string) {
	const op = "api.flow"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	days := defaultFlowWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request",
				wrapKind(op, ErrBadRequest, errors.New("days must be a positive integer")))
			return
		}
		days = parsed
	}
	report, err := h.deps.GetLeanFlowMetrics(r.Context(), boardID, days)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *BoardsHandler) handleWip(w http.ResponseWriter, r *http.Request, boardID string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	status, err := h.deps.GetWipStatus(r.Context(), boardID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

type wipLimitRequest struct {
	Column string `json:"column"`
	Limit  int    `json:"limit"`
}

func (h *BoardsHandler) handleWipLimit(w http.ResponseWriter, r *http.Request, boardID string) {
	const op = "api.wip_limit"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req wipLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.SetColumnWIPLimit(r.Context(), boardID, req.Column, req.Limit); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type swimlaneRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	WIPLimit int    `json:"wip_limit,omitempty"`
	Color    string `json:"color,omitempty"`
}

func (h *BoardsHandler) handleSwimlanes(w http.ResponseWriter, r *http.Request, boardID string) {
	const op = "api.swimlanes"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req swimlaneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.ID) == "" || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			wrapKind(op, ErrBadRequest, errors.New("missing swimlane id or name")))
		return
	}
	lane := model.Swimlane{ID: req.ID, Name: req.Name, WIPLimit: req.WIPLimit, Color: req.Color}
	if err := h.deps.AddSwimlane(r.Context(), boardID, lane); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"swimlane_id": req.ID})
}

// handleCards handles the card collection: POST adds, GET searches.
func (h *BoardsHandler) handleCards(w http.ResponseWriter, r *http.Request, boardID string) {
	const op = "api.cards"
	switch r.Method {
	case http.MethodPost:
		var req app.AddCardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
			return
		}
		cardID, err := h.deps.AddCard(r.Context(), boardID, req)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"card_id": cardID})
	case http.MethodGet:
		q := r.URL.Query()
		cards, err := h.deps.SearchCards(r.Context(), boardID, q.Get("q"), q.Get("item_type"), q.Get("assignee"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"cards": cards, "count": len(cards)})
	default:
		http.NotFound(w, r)
	}
}
