package board

import (
	"github.com/okian/flowboard/internal/domain/model"
)

// MoveOutcome is the per-card result inside a bulk move.
type MoveOutcome struct {
	CardID    string           `json:"card_id"`
	Success   bool             `json:"success"`
	NewColumn model.ColumnType `json:"new_column,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// BulkResult aggregates the outcomes of a bulk move.
type BulkResult struct {
	Total      int           `json:"total"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Details    []MoveOutcome `json:"details"`
}

// BulkMove applies MoveCard to each card id independently. One card's
// failure does not abort or roll back the others; the aggregate reports
// per-card outcomes. Moved cards land at the end of the target column.
func (e *Engine) BulkMove(b *model.Board, cardIDs []string, newColumn model.ColumnType, movedBy, reason string) BulkResult {
	res := BulkResult{
		Total:   len(cardIDs),
		Details: make([]MoveOutcome, 0, len(cardIDs)),
	}
	for _, id := range cardIDs {
		position := 0
		if target := b.Column(newColumn); target != nil {
			position = len(target.Cards)
		}
		_, err := e.MoveCard(b, id, newColumn, position, reason, movedBy)
		if err != nil {
			res.Failed++
			res.Details = append(res.Details, MoveOutcome{CardID: id, Success: false, Error: err.Error()})
			continue
		}
		res.Successful++
		res.Details = append(res.Details, MoveOutcome{CardID: id, Success: true, NewColumn: newColumn})
	}
	return res
}
