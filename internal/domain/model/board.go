package model

import "time"

// Board is a named collection of columns, swimlanes and cards representing
// one workflow. Columns are ordered; the order defines the workflow.
type Board struct {
	ID            string      `json:"board_id"`
	Type          BoardType   `json:"board_type"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Columns       []*Column   `json:"-"`
	Swimlanes     []*Swimlane `json:"-"`
	ParentBoardID string      `json:"parent_board_id,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// NewBoard creates a board with the five standard columns and no swimlanes.
func NewBoard(id string, boardType BoardType, name, description string, now time.Time) *Board {
	cols := make([]*Column, 0, len(StandardColumns()))
	for _, t := range StandardColumns() {
		cols = append(cols, &Column{Type: t, Title: t.Title()})
	}
	return &Board{
		ID:          id,
		Type:        boardType,
		Name:        name,
		Description: description,
		Columns:     cols,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Column returns the board's column of the given type, or nil.
func (b *Board) Column(t ColumnType) *Column {
	for _, c := range b.Columns {
		if c.Type == t {
			return c
		}
	}
	return nil
}

// Swimlane returns the board's swimlane with the given id, or nil.
func (b *Board) Swimlane(id string) *Swimlane {
	for _, s := range b.Swimlanes {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// FindCard locates a card and the column holding it. Both are nil when the
// card id is unknown on this board.
func (b *Board) FindCard(cardID string) (*Card, *Column) {
	for _, col := range b.Columns {
		for _, c := range col.Cards {
			if c.ID == cardID {
				return c, col
			}
		}
	}
	return nil, nil
}

// CardCount returns the number of cards across all columns.
func (b *Board) CardCount() int {
	n := 0
	for _, col := range b.Columns {
		n += len(col.Cards)
	}
	return n
}

// SwimlaneCount returns the number of cards assigned to the given swimlane
// across all columns.
func (b *Board) SwimlaneCount(swimlaneID string) int {
	n := 0
	for _, col := range b.Columns {
		for _, c := range col.Cards {
			if c.SwimlaneID == swimlaneID {
				n++
			}
		}
	}
	return n
}

// Clone returns a deep copy of the board. Snapshots handed to readers must
// not share card or comment slices with the live board.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	cp := *b
	cp.Columns = make([]*Column, len(b.Columns))
	for i, col := range b.Columns {
		cp.Columns[i] = col.Clone()
	}
	cp.Swimlanes = make([]*Swimlane, len(b.Swimlanes))
	for i, s := range b.Swimlanes {
		sc := *s
		cp.Swimlanes[i] = &sc
	}
	return &cp
}

// Column holds an ordered list of cards. Card order is significant: it
// defines within-column priority, and positions are kept dense 0..n-1.
type Column struct {
	Type     ColumnType `json:"column_type"`
	Title    string     `json:"title"`
	Cards    []*Card    `json:"cards"`
	WIPLimit int        `json:"wip_limit,omitempty"` // 0 means no explicit limit
	Closed   bool       `json:"is_closed,omitempty"`
	Archived bool       `json:"is_archived,omitempty"`
}

// Reindex reassigns dense, contiguous positions 0..n-1 to the column's cards.
func (c *Column) Reindex() {
	for i, card := range c.Cards {
		card.Position = i
	}
}

// Remove deletes the card with the given id from the column and reindexes.
// Returns false if the card was not present.
func (c *Column) Remove(cardID string) bool {
	for i, card := range c.Cards {
		if card.ID == cardID {
			c.Cards = append(c.Cards[:i], c.Cards[i+1:]...)
			c.Reindex()
			return true
		}
	}
	return false
}

// Insert places the card at the given position, clamped to the current
// length, and reindexes.
func (c *Column) Insert(card *Card, position int) {
	if position < 0 {
		position = 0
	}
	if position > len(c.Cards) {
		position = len(c.Cards)
	}
	c.Cards = append(c.Cards, nil)
	copy(c.Cards[position+1:], c.Cards[position:])
	c.Cards[position] = card
	c.Reindex()
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	cp := *c
	cp.Cards = make([]*Card, len(c.Cards))
	for i, card := range c.Cards {
		cp.Cards[i] = card.Clone()
	}
	return &cp
}

// Swimlane is a cross-cutting categorization of cards independent of column.
// Its WIP limit, when set, applies across all columns.
type Swimlane struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	WIPLimit int    `json:"wip_limit,omitempty"` // 0 means no explicit limit
	Color    string `json:"color,omitempty"`
}
