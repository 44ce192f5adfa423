// Package board implements the workflow state machine: card placement,
// movement, WIP enforcement and transition validation.
//
// The engine mutates a single board in place and never persists or
// notifies; callers hold the board's lock and handle durability. Expected
// rule violations come back as sentinel errors from the model package so
// the service layer can turn them into structured results.
package board

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/flowboard/internal/domain/model"
	"github.com/okian/flowboard/internal/domain/tags"
)

// Engine applies state-machine operations to boards.
type Engine struct {
	clock func() time.Time
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithClock sets the time source, used by tests for determinism.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// New constructs an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{clock: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddCard creates a card carrying item and appends it to the target column.
// An empty column defaults to backlog. The swimlane id, when given, must
// resolve to an existing swimlane.
func (e *Engine) AddCard(b *model.Board, item model.ItemReference, column model.ColumnType, swimlaneID string) (*model.Card, error) {
	if column == "" {
		column = model.ColumnBacklog
	}
	col := b.Column(column)
	if col == nil {
		return nil, fmt.Errorf("board %s has no column %s: %w", b.ID, column, model.ErrColumnNotFound)
	}
	if swimlaneID != "" && b.Swimlane(swimlaneID) == nil {
		return nil, fmt.Errorf("board %s has no swimlane %s: %w", b.ID, swimlaneID, model.ErrSwimlaneNotFound)
	}
	if col.WIPLimit > 0 && len(col.Cards) >= col.WIPLimit {
		return nil, fmt.Errorf("column %s is at its limit of %d: %w", column, col.WIPLimit, model.ErrWipLimitExceeded)
	}

	now := e.clock()
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = now
	}
	card := &model.Card{
		ID:         uuid.NewString(),
		Item:       item,
		Column:     column,
		SwimlaneID: swimlaneID,
		CreatedAt:  now,
		MovedAt:    now,
	}
	col.Insert(card, len(col.Cards))
	b.UpdatedAt = now
	return card, nil
}

// MoveCard moves a card to a new column and position.
//
// Rules applied, in order: the card must exist; the target column must
// exist; the target WIP limit must not already be reached (column changes
// only, since reordering within a column does not change the count); a card in
// done never leaves done; in_progress is entered only from ready or from
// in_progress itself. Positions are clamped and reindexed dense after the
// insert. Notes, when given, are parsed for tags and appended as a comment.
func (e *Engine) MoveCard(b *model.Board, cardID string, newColumn model.ColumnType, newPosition int, notes, movedBy string) (*model.Card, error) {
	card, oldCol := b.FindCard(cardID)
	if card == nil {
		return nil, fmt.Errorf("card %s on board %s: %w", cardID, b.ID, model.ErrCardNotFound)
	}
	target := b.Column(newColumn)
	if target == nil {
		return nil, fmt.Errorf("board %s has no column %s: %w", b.ID, newColumn, model.ErrColumnNotFound)
	}

	if target != oldCol && target.WIPLimit > 0 && len(target.Cards) >= target.WIPLimit {
		return nil, fmt.Errorf("column %s is at its limit of %d: %w", newColumn, target.WIPLimit, model.ErrWipLimitExceeded)
	}

	if card.Column == model.ColumnDone && newColumn != model.ColumnDone {
		return nil, fmt.Errorf("card %s is done and cannot move to %s: %w", cardID, newColumn, model.ErrIllegalTransition)
	}
	if newColumn == model.ColumnInProgress &&
		card.Column != model.ColumnReady && card.Column != model.ColumnInProgress {
		return nil, fmt.Errorf("card %s must be ready before in_progress, not %s: %w", cardID, card.Column, model.ErrIllegalTransition)
	}

	now := e.clock()
	oldCol.Remove(card.ID)
	card.Column = newColumn
	card.MovedAt = now

	if notes != "" {
		e.appendComment(card, notes, movedBy, now)
	}

	// started_at and completed_at are write-once.
	if newColumn == model.ColumnInProgress && card.StartedAt == nil {
		t := now
		card.StartedAt = &t
	}
	if newColumn == model.ColumnDone && card.CompletedAt == nil {
		t := now
		card.CompletedAt = &t
	}

	target.Insert(card, newPosition)
	b.UpdatedAt = now
	return card, nil
}

// Validation is the structured result of a transition pre-check. Callers
// branch on it as normal control flow; nothing is thrown.
type Validation struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// ValidateTransition re-checks the business rules for moving a card without
// performing the move.
func (e *Engine) ValidateTransition(b *model.Board, cardID string, newColumn model.ColumnType) Validation {
	card, oldCol := b.FindCard(cardID)
	if card == nil {
		return Validation{Valid: false, Reason: fmt.Sprintf("card %s not found", cardID)}
	}
	target := b.Column(newColumn)
	if target == nil {
		return Validation{Valid: false, Reason: fmt.Sprintf("column %s not found", newColumn)}
	}
	if card.Column == model.ColumnDone && newColumn != model.ColumnDone {
		return Validation{Valid: false, Reason: "completed cards cannot be reopened"}
	}
	if newColumn == model.ColumnInProgress &&
		card.Column != model.ColumnReady && card.Column != model.ColumnInProgress {
		return Validation{Valid: false, Reason: "card must be ready before work starts"}
	}
	if target != oldCol && target.WIPLimit > 0 && len(target.Cards) >= target.WIPLimit {
		return Validation{Valid: false, Reason: fmt.Sprintf("column %s is at its WIP limit of %d", newColumn, target.WIPLimit)}
	}
	return Validation{Valid: true}
}

// AddComment appends a comment to a card, parsing its content for tags.
func (e *Engine) AddComment(b *model.Board, cardID, content, author string) (model.Comment, error) {
	card, _ := b.FindCard(cardID)
	if card == nil {
		return model.Comment{}, fmt.Errorf("card %s on board %s: %w", cardID, b.ID, model.ErrCardNotFound)
	}
	now := e.clock()
	comment := e.appendComment(card, content, author, now)
	b.UpdatedAt = now
	return comment, nil
}

// appendComment parses content for tags, records the comment on the card
// and merges the extracted tags into the card's tag list.
func (e *Engine) appendComment(card *model.Card, content, author string, now time.Time) model.Comment {
	extracted := tags.Extract(content)
	comment := model.Comment{
		Content:   content,
		Author:    author,
		CreatedAt: now,
		Tags:      extracted,
	}
	card.Comments = append(card.Comments, comment)
	for _, t := range extracted {
		if !contains(card.Tags, t) {
			card.Tags = append(card.Tags, t)
		}
	}
	return comment
}

// ProcessTags applies the card's accumulated tags, triggering side effects.
// The comments the tags came from travel along as source text so cues like
// "blocked on #infra" keep their meaning.
func (e *Engine) ProcessTags(b *model.Board, cardID string) (tags.Result, error) {
	card, _ := b.FindCard(cardID)
	if card == nil {
		return tags.Result{}, fmt.Errorf("card %s on board %s: %w", cardID, b.ID, model.ErrCardNotFound)
	}
	now := e.clock()
	sources := make([]string, 0, len(card.Comments))
	for _, c := range card.Comments {
		sources = append(sources, c.Content)
	}
	res := tags.Apply(card, card.Tags, strings.Join(sources, "\n"), now)
	b.UpdatedAt = now
	return res, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
