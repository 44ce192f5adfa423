package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okian/flowboard/internal/domain/flow"
	"github.com/okian/flowboard/internal/domain/model"
	"github.com/okian/flowboard/internal/domain/priority"
	"github.com/okian/flowboard/pkg/metrics"
)

// GetLeanFlowMetrics computes the flow report for one board over a trailing
// window of whole days.
func (s *Service) GetLeanFlowMetrics(ctx context.Context, boardID string, days int) (flow.Report, error) {
	if days <= 0 {
		return flow.Report{}, fmt.Errorf("days must be positive: %w", model.ErrValidation)
	}
	b, err := s.store.Snapshot(ctx, boardID)
	if err != nil {
		return flow.Report{}, err
	}
	report := s.analyzer.Analyze(b, days)
	metrics.RecordFlowReport()
	for _, bn := range report.Bottlenecks {
		metrics.RecordBottleneck(bn.Severity)
	}
	return report, nil
}

// ColumnWipStatus reports one column's load against its limit.
type ColumnWipStatus struct {
	Column    string `json:"column"`
	CardCount int    `json:"card_count"`
	WIPLimit  int    `json:"wip_limit"`
	Exceeded  bool   `json:"exceeded"`
}

// SwimlaneWipStatus reports one swimlane's load against its limit.
type SwimlaneWipStatus struct {
	SwimlaneID string `json:"swimlane_id"`
	Name       string `json:"name"`
	CardCount  int    `json:"card_count"`
	WIPLimit   int    `json:"wip_limit"`
	Exceeded   bool   `json:"exceeded"`
}

// WipStatus is the board-wide WIP picture with any limit violations and
// suggested remediations.
type WipStatus struct {
	BoardID         string              `json:"board_id"`
	Columns         []ColumnWipStatus   `json:"columns"`
	Swimlanes       []SwimlaneWipStatus `json:"swimlanes,omitempty"`
	Violations      []string            `json:"violations,omitempty"`
	Recommendations []string            `json:"recommendations,omitempty"`
}

// GetWipStatus reports current WIP against configured limits. A limit of
// zero means unlimited and can never be exceeded.
func (s *Service) GetWipStatus(ctx context.Context, boardID string) (WipStatus, error) {
	b, err := s.store.Snapshot(ctx, boardID)
	if err != nil {
		return WipStatus{}, err
	}

	status := WipStatus{BoardID: boardID}
	for _, col := range b.Columns {
		cs := ColumnWipStatus{
			Column:    string(col.Type),
			CardCount: len(col.Cards),
			WIPLimit:  col.WIPLimit,
			Exceeded:  col.WIPLimit > 0 && len(col.Cards) > col.WIPLimit,
		}
		status.Columns = append(status.Columns, cs)
		if cs.Exceeded {
			status.Violations = append(status.Violations,
				fmt.Sprintf("column %q holds %d cards, limit %d", cs.Column, cs.CardCount, cs.WIPLimit))
			status.Recommendations = append(status.Recommendations,
				fmt.Sprintf("finish or move %d card(s) out of %q before pulling new work", cs.CardCount-cs.WIPLimit, cs.Column))
		}
	}

	laneCounts := make(map[string]int)
	for _, col := range b.Columns {
		for _, card := range col.Cards {
			if card.SwimlaneID != "" {
				laneCounts[card.SwimlaneID]++
			}
		}
	}
	laneIDs := make([]string, 0, len(b.Swimlanes))
	for _, lane := range b.Swimlanes {
		laneIDs = append(laneIDs, lane.ID)
	}
	sort.Strings(laneIDs)
	for _, id := range laneIDs {
		lane := b.Swimlane(id)
		ls := SwimlaneWipStatus{
			SwimlaneID: lane.ID,
			Name:       lane.Name,
			CardCount:  laneCounts[lane.ID],
			WIPLimit:   lane.WIPLimit,
			Exceeded:   lane.WIPLimit > 0 && laneCounts[lane.ID] > lane.WIPLimit,
		}
		status.Swimlanes = append(status.Swimlanes, ls)
		if ls.Exceeded {
			status.Violations = append(status.Violations,
				fmt.Sprintf("swimlane %q holds %d cards, limit %d", ls.Name, ls.CardCount, ls.WIPLimit))
			status.Recommendations = append(status.Recommendations,
				fmt.Sprintf("rebalance swimlane %q: %d card(s) over its limit", ls.Name, ls.CardCount-ls.WIPLimit))
		}
	}
	return status, nil
}

// PrioritizeBacklog scores the board's backlog cards and returns them in
// descending score order. Ties keep their backlog position.
func (s *Service) PrioritizeBacklog(ctx context.Context, boardID string, pctx priority.Context) ([]priority.Result, error) {
	b, err := s.store.Snapshot(ctx, boardID)
	if err != nil {
		return nil, err
	}
	col := b.Column(model.ColumnBacklog)
	if col == nil {
		return nil, model.ErrColumnNotFound
	}

	items := make([]priority.Item, 0, len(col.Cards))
	for _, card := range col.Cards {
		item := priority.Item{
			ID:          card.Item.ItemID,
			Type:        string(card.Item.Type),
			Title:       card.Item.Title,
			Description: card.Item.Description,
		}
		if item.ID == "" {
			item.ID = card.ID
		}
		if card.Blocked {
			item.BlockedBy = []string{card.BlockedReason}
		}
		items = append(items, item)
	}

	start := s.clock()
	results := s.scorer.RankBacklog(items, pctx)
	metrics.RecordPriorityLatency(float64(s.clock().Sub(start)) / float64(time.Millisecond))
	for range results {
		metrics.RecordPriorityEvaluation()
	}
	return results, nil
}

// EvaluatePriority scores a single item outside any board context.
func (s *Service) EvaluatePriority(ctx context.Context, item priority.Item, pctx priority.Context) (priority.Result, error) {
	if item.ID == "" {
		return priority.Result{}, fmt.Errorf("item id is required: %w", model.ErrValidation)
	}
	start := s.clock()
	result := s.scorer.Evaluate(item, pctx)
	metrics.RecordPriorityLatency(float64(s.clock().Sub(start)) / float64(time.Millisecond))
	metrics.RecordPriorityEvaluation()
	return result, nil
}
