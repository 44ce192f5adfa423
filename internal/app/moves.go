package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/okian/flowboard/internal/adapters/notify"
	boardengine "github.com/okian/flowboard/internal/domain/board"
	"github.com/okian/flowboard/internal/domain/model"
	"github.com/okian/flowboard/internal/domain/tags"
	"github.com/okian/flowboard/pkg/metrics"
)

// AddCardRequest carries the card creation parameters.
type AddCardRequest struct {
	ItemID         string   `json:"item_id"`
	ItemType       string   `json:"item_type"`
	Title          string   `json:"title"`
	RepositoryPath string   `json:"repository_path,omitempty"`
	Description    string   `json:"description,omitempty"`
	Priority       string   `json:"priority,omitempty"`
	Assignee       string   `json:"assignee,omitempty"`
	Labels         []string `json:"labels,omitempty"`
	Column         string   `json:"column,omitempty"`
	SwimlaneID     string   `json:"swimlane_id,omitempty"`
}

// AddCard places a new card on a board. The column defaults to backlog,
// the priority to medium.
func (s *Service) AddCard(ctx context.Context, boardID string, req AddCardRequest) (string, error) {
	itemType, err := model.ParseItemType(req.ItemType)
	if err != nil {
		return "", fmt.Errorf("%s: %w", err, model.ErrValidation)
	}
	prio := model.PriorityMedium
	if req.Priority != "" {
		if prio, err = model.ParsePriority(req.Priority); err != nil {
			return "", fmt.Errorf("%s: %w", err, model.ErrValidation)
		}
	}
	column := model.ColumnBacklog
	if req.Column != "" {
		if column, err = model.ParseColumnType(req.Column); err != nil {
			return "", fmt.Errorf("%s: %w", err, model.ErrValidation)
		}
	}
	if req.Title == "" {
		return "", fmt.Errorf("card title is required: %w", model.ErrValidation)
	}

	item := model.ItemReference{
		ItemID:         req.ItemID,
		Type:           itemType,
		RepositoryPath: req.RepositoryPath,
		Title:          req.Title,
		Description:    req.Description,
		Priority:       prio,
		Assignee:       req.Assignee,
		Labels:         req.Labels,
	}

	var cardID string
	err = s.store.WithBoard(ctx, boardID, func(b *model.Board) error {
		card, err := s.engine.AddCard(b, item, column, req.SwimlaneID)
		if err != nil {
			return err
		}
		cardID = card.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	metrics.RecordCardAdded()
	s.persist(ctx)
	return cardID, nil
}

// MoveResult is the structured outcome of a single move. Expected rule
// violations land here as Success=false, not as an error return.
type MoveResult struct {
	Success   bool   `json:"success"`
	CardID    string `json:"card_id"`
	NewColumn string `json:"new_column,omitempty"`
	Error     string `json:"error,omitempty"`
}

// MoveCard moves a card to the end of a column. Expected rule violations
// surface from the state machine as sentinel errors and come back to the
// caller as a structured refusal rather than an exception. After the move
// commits, the board is persisted and the item-state collaborator is
// notified best-effort.
func (s *Service) MoveCard(ctx context.Context, boardID, cardID, newColumn, movedBy, reason string) (MoveResult, error) {
	t, err := model.ParseColumnType(newColumn)
	if err != nil {
		return MoveResult{}, fmt.Errorf("%s: %w", err, model.ErrValidation)
	}

	var itemID string
	err = s.store.WithBoard(ctx, boardID, func(b *model.Board) error {
		position := 0
		if col := b.Column(t); col != nil {
			position = len(col.Cards)
		}
		card, err := s.engine.MoveCard(b, cardID, t, position, reason, movedBy)
		if err != nil {
			return err
		}
		itemID = card.Item.ItemID
		if reason != "" {
			metrics.RecordCommentAdded()
		}
		return nil
	})
	if err != nil {
		if refused, result := asMoveRefusal(cardID, err); refused {
			return result, nil
		}
		return MoveResult{}, err
	}

	metrics.RecordCardMoved()
	s.persist(ctx)
	s.notifyTransition(ctx, itemID, t)
	return MoveResult{Success: true, CardID: cardID, NewColumn: string(t)}, nil
}

// BulkMove applies MoveCard semantics to each card independently under a
// single board lock. One failure does not abort the batch.
func (s *Service) BulkMove(ctx context.Context, boardID string, cardIDs []string, newColumn, movedBy, reason string) (boardengine.BulkResult, error) {
	t, err := model.ParseColumnType(newColumn)
	if err != nil {
		return boardengine.BulkResult{}, fmt.Errorf("%s: %w", err, model.ErrValidation)
	}

	var (
		result  boardengine.BulkResult
		itemIDs []string
	)
	err = s.store.WithBoard(ctx, boardID, func(b *model.Board) error {
		result = s.engine.BulkMove(b, cardIDs, t, movedBy, reason)
		for _, d := range result.Details {
			if !d.Success {
				continue
			}
			if card, _ := b.FindCard(d.CardID); card != nil {
				itemIDs = append(itemIDs, card.Item.ItemID)
			}
		}
		return nil
	})
	if err != nil {
		return boardengine.BulkResult{}, err
	}

	metrics.RecordBulkMove()
	for _, d := range result.Details {
		if d.Success {
			metrics.RecordCardMoved()
		} else {
			metrics.RecordMoveRejected("bulk")
		}
	}
	s.persist(ctx)
	for _, itemID := range itemIDs {
		s.notifyTransition(ctx, itemID, t)
	}
	return result, nil
}

// ValidateMove exposes the structured transition pre-check.
func (s *Service) ValidateMove(ctx context.Context, boardID, cardID, newColumn string) (boardengine.Validation, error) {
	t, err := model.ParseColumnType(newColumn)
	if err != nil {
		return boardengine.Validation{}, fmt.Errorf("%s: %w", err, model.ErrValidation)
	}
	var v boardengine.Validation
	err = s.store.WithBoard(ctx, boardID, func(b *model.Board) error {
		v = s.engine.ValidateTransition(b, cardID, t)
		return nil
	})
	return v, err
}

// AddComment appends a comment to a card, extracting its tags.
func (s *Service) AddComment(ctx context.Context, boardID, cardID, content, author string) error {
	if content == "" {
		return fmt.Errorf("comment content is required: %w", model.ErrValidation)
	}
	err := s.store.WithBoard(ctx, boardID, func(b *model.Board) error {
		_, err := s.engine.AddComment(b, cardID, content, author)
		return err
	})
	if err != nil {
		return err
	}
	metrics.RecordCommentAdded()
	s.persist(ctx)
	return nil
}

// ProcessCardTags applies a card's accumulated tags, triggering the
// blocked/assignee/priority side effects.
func (s *Service) ProcessCardTags(ctx context.Context, boardID, cardID string) (tags.Result, error) {
	var res tags.Result
	err := s.store.WithBoard(ctx, boardID, func(b *model.Board) error {
		var err error
		res, err = s.engine.ProcessTags(b, cardID)
		return err
	})
	if err != nil {
		return tags.Result{}, err
	}
	for _, a := range res.Actions {
		metrics.RecordTagAction(string(a.Type))
	}
	s.persist(ctx)
	return res, nil
}

// notifyTransition emits a best-effort transition event after a committed
// move. Delivery failure or drop never affects the move.
func (s *Service) notifyTransition(ctx context.Context, itemID string, column model.ColumnType) {
	if itemID == "" {
		return
	}
	s.dispatcher.Enqueue(ctx, notify.Event{
		EventID: uuid.NewString(),
		ItemID:  itemID,
		State:   string(column),
		At:      s.clock(),
	})
}

// asMoveRefusal translates expected rule violations into a structured
// MoveResult. Unexpected errors pass through unchanged.
func asMoveRefusal(cardID string, err error) (bool, MoveResult) {
	switch {
	case errors.Is(err, model.ErrWipLimitExceeded),
		errors.Is(err, model.ErrIllegalTransition),
		errors.Is(err, model.ErrCardNotFound),
		errors.Is(err, model.ErrColumnNotFound):
		metrics.RecordMoveRejected(rejectionReason(err))
		return true, MoveResult{Success: false, CardID: cardID, Error: err.Error()}
	}
	return false, MoveResult{}
}

// rejectionReason labels a move failure for metrics.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, model.ErrWipLimitExceeded):
		return "wip_limit"
	case errors.Is(err, model.ErrIllegalTransition):
		return "illegal_transition"
	case errors.Is(err, model.ErrCardNotFound):
		return "card_not_found"
	case errors.Is(err, model.ErrColumnNotFound):
		return "column_not_found"
	default:
		return "other"
	}
}
