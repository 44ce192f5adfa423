package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// moveRequest mirrors the POST move body.
type moveRequest struct {
	NewColumn string `json:"new_column"`
	MovedBy   string `json:"moved_by,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func (m moveRequest) validate() error {
	if strings.TrimSpace(m.NewColumn) == "" {
		return errors.New("missing new_column")
	}
	return nil
}

type commentRequest struct {
	Content string `json:"content"`
	Author  string `json:"author,omitempty"`
}

// bulkMoveRequest mirrors the POST /boards/{id}/bulk-move body.
type bulkMoveRequest struct {
	CardIDs   []string `json:"card_ids"`
	NewColumn string   `json:"new_column"`
	MovedBy   string   `json:"moved_by,omitempty"`
	Reason    string   `json:"reason,omitempty"`
}

func (m bulkMoveRequest) validate() error {
	switch {
	case len(m.CardIDs) == 0:
		return errors.New("missing card_ids")
	case strings.TrimSpace(m.NewColumn) == "":
		return errors.New("missing new_column")
	}
	return nil
}

// handleCardAction routes /boards/{id}/cards/{card_id}/{action}.
func (h *BoardsHandler) handleCardAction(w http.ResponseWriter, r *http.Request, boardID, cardID, action string) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	switch action {
	case "move":
		h.handleMove(w, r, boardID, cardID)
	case "validate-move":
		h.handleValidateMove(w, r, boardID, cardID)
	case "comments":
		h.handleComment(w, r, boardID, cardID)
	case "tags":
		h.handleTags(w, r, boardID, cardID)
	default:
		http.NotFound(w, r)
	}
}

func (h *BoardsHandler) handleMove(w http.ResponseWriter, r *http.Request, boardID, cardID string) {
	const op = "api.move_card"
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	result, err := h.deps.MoveCard(r.Context(), boardID, cardID, req.NewColumn, req.MovedBy, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	// Rule refusals carry success=false inside a 200 so callers can present
	// them without exception handling.
	writeJSON(w, http.StatusOK, result)
}

func (h *BoardsHandler) handleValidateMove(w http.ResponseWriter, r *http.Request, boardID, cardID string) {
	const op = "api.validate_move"
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	v, err := h.deps.ValidateMove(r.Context(), boardID, cardID, req.NewColumn)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *BoardsHandler) handleComment(w http.ResponseWriter, r *http.Request, boardID, cardID string) {
	const op = "api.add_comment"
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.AddComment(r.Context(), boardID, cardID, req.Content, req.Author); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

func (h *BoardsHandler) handleTags(w http.ResponseWriter, r *http.Request, boardID, cardID string) {
	res, err := h.deps.ProcessCardTags(r.Context(), boardID, cardID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *BoardsHandler) handleBulkMove(w http.ResponseWriter, r *http.Request, boardID string) {
	const op = "api.bulk_move"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req bulkMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	result, err := h.deps.BulkMove(r.Context(), boardID, req.CardIDs, req.NewColumn, req.MovedBy, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
