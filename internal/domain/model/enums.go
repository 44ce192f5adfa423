// Package model contains the board domain types passed between layers.
package model

import "fmt"

// BoardType distinguishes the top-level master board from agent boards.
type BoardType string

// Board types.
const (
	BoardTypeMaster BoardType = "master"
	BoardTypeAgent  BoardType = "agent"
)

// ParseBoardType parses a lowercase board type string.
func ParseBoardType(s string) (BoardType, error) {
	switch BoardType(s) {
	case BoardTypeMaster, BoardTypeAgent:
		return BoardType(s), nil
	}
	return "", fmt.Errorf("unknown board type: %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t BoardType) MarshalText() ([]byte, error) {
	return []byte(t), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *BoardType) UnmarshalText(b []byte) error {
	v, err := ParseBoardType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ColumnType identifies one of the workflow columns.
type ColumnType string

// The five standard workflow columns, in workflow order.
const (
	ColumnBacklog    ColumnType = "backlog"
	ColumnReady      ColumnType = "ready"
	ColumnInProgress ColumnType = "in_progress"
	ColumnReview     ColumnType = "review"
	ColumnDone       ColumnType = "done"
)

// StandardColumns returns the five standard column types in workflow order.
func StandardColumns() []ColumnType {
	return []ColumnType{ColumnBacklog, ColumnReady, ColumnInProgress, ColumnReview, ColumnDone}
}

// ParseColumnType parses a lowercase column type string.
func ParseColumnType(s string) (ColumnType, error) {
	switch ColumnType(s) {
	case ColumnBacklog, ColumnReady, ColumnInProgress, ColumnReview, ColumnDone:
		return ColumnType(s), nil
	}
	return "", fmt.Errorf("unknown column type: %q", s)
}

// Order returns the workflow position of the column, or -1 for unknown types.
func (c ColumnType) Order() int {
	for i, t := range StandardColumns() {
		if c == t {
			return i
		}
	}
	return -1
}

// Title returns the human-readable display title for the column.
func (c ColumnType) Title() string {
	switch c {
	case ColumnBacklog:
		return "Backlog"
	case ColumnReady:
		return "Ready"
	case ColumnInProgress:
		return "In Progress"
	case ColumnReview:
		return "Review"
	case ColumnDone:
		return "Done"
	}
	return string(c)
}

// MarshalText implements encoding.TextMarshaler.
func (c ColumnType) MarshalText() ([]byte, error) {
	return []byte(c), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ColumnType) UnmarshalText(b []byte) error {
	v, err := ParseColumnType(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ItemType classifies the work item a card carries.
type ItemType string

// Item types.
const (
	ItemTypeExpedition  ItemType = "expedition"
	ItemTypeFeature     ItemType = "feature"
	ItemTypeTask        ItemType = "task"
	ItemTypeResearchLog ItemType = "research_log"
	ItemTypeBug         ItemType = "bug"
)

// ParseItemType parses a lowercase item type string.
func ParseItemType(s string) (ItemType, error) {
	switch ItemType(s) {
	case ItemTypeExpedition, ItemTypeFeature, ItemTypeTask, ItemTypeResearchLog, ItemTypeBug:
		return ItemType(s), nil
	}
	return "", fmt.Errorf("unknown item type: %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t ItemType) MarshalText() ([]byte, error) {
	return []byte(t), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ItemType) UnmarshalText(b []byte) error {
	v, err := ParseItemType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Priority is the coarse item priority carried on an ItemReference.
type Priority string

// Item priorities.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority parses a lowercase priority string.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return Priority(s), nil
	}
	return "", fmt.Errorf("unknown priority: %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(b []byte) error {
	v, err := ParsePriority(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
