package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/flowboard/internal/domain/priority"
)

// workerPayload mirrors one worker in a prioritization request.
type workerPayload struct {
	ID                string   `json:"id"`
	Skills            []string `json:"skills,omitempty"`
	RemainingCapacity float64  `json:"remaining_capacity"`
}

// hypothesisPayload mirrors one hypothesis in a prioritization request.
type hypothesisPayload struct {
	RelatedTo  string  `json:"related_to"`
	Confidence float64 `json:"confidence"`
}

// contextPayload is the shared evaluation context for scoring requests.
type contextPayload struct {
	Workers    []workerPayload     `json:"workers,omitempty"`
	Hypotheses []hypothesisPayload `json:"hypotheses,omitempty"`
}

func (c contextPayload) toDomain() priority.Context {
	pctx := priority.Context{}
	for _, w := range c.Workers {
		pctx.Workers = append(pctx.Workers, priority.Worker{
			ID:                w.ID,
			Skills:            w.Skills,
			RemainingCapacity: w.RemainingCapacity,
		})
	}
	for _, h := range c.Hypotheses {
		pctx.Hypotheses = append(pctx.Hypotheses, priority.Hypothesis{
			RelatedTo:  h.RelatedTo,
			Confidence: h.Confidence,
		})
	}
	return pctx
}

// itemPayload mirrors a standalone item to score.
type itemPayload struct {
	ID             string   `json:"id"`
	Type           string   `json:"type,omitempty"`
	Title          string   `json:"title,omitempty"`
	Description    string   `json:"description,omitempty"`
	Blocks         []string `json:"blocks,omitempty"`
	BlockedBy      []string `json:"blocked_by,omitempty"`
	RequiredSkills []string `json:"required_skills,omitempty"`

	CustomerValueHint *float64 `json:"customer_value_hint,omitempty"`
	LearningValueHint *float64 `json:"learning_value_hint,omitempty"`
	ROIPercentage     *float64 `json:"roi_percentage,omitempty"`
}

func (i itemPayload) toDomain() priority.Item {
	return priority.Item{
		ID:                i.ID,
		Type:              i.Type,
		Title:             i.Title,
		Description:       i.Description,
		Blocks:            i.Blocks,
		BlockedBy:         i.BlockedBy,
		RequiredSkills:    i.RequiredSkills,
		CustomerValueHint: i.CustomerValueHint,
		LearningValueHint: i.LearningValueHint,
		ROIPercentage:     i.ROIPercentage,
	}
}

// PriorityHandler handles standalone scoring requests.
type PriorityHandler struct {
	deps Dependencies
}

// NewPriorityHandler creates a new priority handler.
func NewPriorityHandler(deps Dependencies) *PriorityHandler {
	return &PriorityHandler{deps: deps}
}

type evaluateRequest struct {
	Item    itemPayload    `json:"item"`
	Context contextPayload `json:"context"`
}

// HandleEvaluate handles POST /prioritize requests for a single item.
func (h *PriorityHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "api.evaluate_priority"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Item.ID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			wrapKind(op, ErrBadRequest, errors.New("missing item id")))
		return
	}
	result, err := h.deps.EvaluatePriority(r.Context(), req.Item.toDomain(), req.Context.toDomain())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handlePrioritize handles POST /boards/{id}/prioritize: score and rank
// the board's backlog.
func (h *BoardsHandler) handlePrioritize(w http.ResponseWriter, r *http.Request, boardID string) {
	const op = "api.prioritize_backlog"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req contextPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	results, err := h.deps.PrioritizeBacklog(r.Context(), boardID, req.toDomain())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results, "count": len(results)})
}
