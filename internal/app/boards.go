package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/flowboard/internal/domain/model"
	"github.com/okian/flowboard/pkg/logger"
	"github.com/okian/flowboard/pkg/metrics"
)

// CreateBoard creates a board with the five standard columns, applying any
// configured default WIP limits. Returns the board id.
func (s *Service) CreateBoard(ctx context.Context, id, boardType, name, description string) (string, error) {
	bt, err := model.ParseBoardType(boardType)
	if err != nil {
		return "", fmt.Errorf("%s: %w", err, model.ErrValidation)
	}
	b := model.NewBoard(id, bt, name, description, s.clock())
	for colType, limit := range s.defaultWIPLimits {
		t, err := model.ParseColumnType(colType)
		if err != nil || limit <= 0 {
			continue
		}
		if col := b.Column(t); col != nil {
			col.WIPLimit = limit
		}
	}
	if err := s.store.Create(ctx, b); err != nil {
		return "", err
	}
	s.persist(ctx)
	s.logger.Info(ctx, "board created",
		logger.String("board_id", id),
		logger.String("board_type", boardType),
	)
	return id, nil
}

// SetColumnWIPLimit sets or clears (limit 0) a column's WIP limit.
func (s *Service) SetColumnWIPLimit(ctx context.Context, boardID, column string, limit int) error {
	t, err := model.ParseColumnType(column)
	if err != nil {
		return fmt.Errorf("%s: %w", err, model.ErrValidation)
	}
	if limit < 0 {
		return fmt.Errorf("wip limit %d must not be negative: %w", limit, model.ErrValidation)
	}
	err = s.store.WithBoard(ctx, boardID, func(b *model.Board) error {
		col := b.Column(t)
		if col == nil {
			return fmt.Errorf("board %s has no column %s: %w", boardID, column, model.ErrColumnNotFound)
		}
		col.WIPLimit = limit
		b.UpdatedAt = s.clock()
		return nil
	})
	if err != nil {
		return err
	}
	s.persist(ctx)
	return nil
}

// AddSwimlane adds a swimlane to a board.
func (s *Service) AddSwimlane(ctx context.Context, boardID string, lane model.Swimlane) error {
	if lane.ID == "" || lane.Name == "" {
		return fmt.Errorf("swimlane id and name are required: %w", model.ErrValidation)
	}
	err := s.store.WithBoard(ctx, boardID, func(b *model.Board) error {
		if b.Swimlane(lane.ID) != nil {
			return fmt.Errorf("swimlane %s already exists on board %s: %w", lane.ID, boardID, model.ErrValidation)
		}
		b.Swimlanes = append(b.Swimlanes, &lane)
		b.UpdatedAt = s.clock()
		return nil
	})
	if err != nil {
		return err
	}
	s.persist(ctx)
	return nil
}

// GetBoard returns a deep snapshot of a board.
func (s *Service) GetBoard(ctx context.Context, boardID string) (*model.Board, error) {
	return s.store.Snapshot(ctx, boardID)
}

// Boards returns all board ids, sorted.
func (s *Service) Boards(ctx context.Context) []string {
	return s.store.IDs(ctx)
}

// BoardMetrics are the aggregate counts for one board.
type BoardMetrics struct {
	TotalCards int            `json:"total_cards"`
	ByColumn   map[string]int `json:"by_column"`
	ByPriority map[string]int `json:"by_priority"`
	ByType     map[string]int `json:"by_type"`
	Blocked    int            `json:"blocked"`
}

// GetBoardMetrics computes card counts by column, priority and item type
// plus the blocked count, from a consistent snapshot.
func (s *Service) GetBoardMetrics(ctx context.Context, boardID string) (BoardMetrics, error) {
	b, err := s.store.Snapshot(ctx, boardID)
	if err != nil {
		return BoardMetrics{}, err
	}
	m := BoardMetrics{
		ByColumn:   make(map[string]int),
		ByPriority: make(map[string]int),
		ByType:     make(map[string]int),
	}
	blocked := 0
	wip := 0
	for _, col := range b.Columns {
		m.ByColumn[string(col.Type)] = len(col.Cards)
		for _, card := range col.Cards {
			m.TotalCards++
			m.ByPriority[string(card.Item.Priority)]++
			m.ByType[string(card.Item.Type)]++
			if card.Blocked {
				blocked++
			}
			if card.InProgress() {
				wip++
			}
		}
	}
	m.Blocked = blocked
	metrics.UpdateCardsTotal(m.TotalCards)
	metrics.UpdateBlockedCards(blocked)
	metrics.UpdateWipCards(wip)
	return m, nil
}

// SearchCards filters a board's cards by a case-insensitive substring
// query over title and description, and optional item type and assignee.
func (s *Service) SearchCards(ctx context.Context, boardID, query, itemType, assignee string) ([]*model.Card, error) {
	b, err := s.store.Snapshot(ctx, boardID)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(query)
	var out []*model.Card
	for _, col := range b.Columns {
		for _, card := range col.Cards {
			if query != "" &&
				!strings.Contains(strings.ToLower(card.Item.Title), query) &&
				!strings.Contains(strings.ToLower(card.Item.Description), query) {
				continue
			}
			if itemType != "" && string(card.Item.Type) != itemType {
				continue
			}
			if assignee != "" && card.Item.Assignee != assignee {
				continue
			}
			out = append(out, card)
			if len(out) >= s.maxSearchResults {
				return out, nil
			}
		}
	}
	return out, nil
}
