package model

import "time"

// ItemReference is the work-item payload a card carries. It is owned
// exclusively by its card and mutated in place by tag side effects.
type ItemReference struct {
	ItemID         string    `json:"item_id"`
	Type           ItemType  `json:"item_type"`
	RepositoryPath string    `json:"repository_path,omitempty"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Priority       Priority  `json:"priority"`
	Assignee       string    `json:"assignee,omitempty"`
	Labels         []string  `json:"labels,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Card is a placement of a work item on a board. Column must always equal
// the column type under whose list the card physically resides.
type Card struct {
	ID            string        `json:"card_id"`
	Item          ItemReference `json:"item"`
	Column        ColumnType    `json:"column"`
	Position      int           `json:"position"`
	SwimlaneID    string        `json:"swimlane_id,omitempty"`
	Comments      []Comment     `json:"comments,omitempty"`
	Tags          []string      `json:"tags,omitempty"`
	Blocked       bool          `json:"blocked,omitempty"`
	BlockedReason string        `json:"blocked_reason,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	MovedAt       time.Time     `json:"moved_at"`
	StartedAt     *time.Time    `json:"started_at,omitempty"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
}

// InProgress reports whether work has started on the card and not completed.
func (c *Card) InProgress() bool {
	return c.StartedAt != nil && c.CompletedAt == nil
}

// Clone returns a deep copy of the card.
func (c *Card) Clone() *Card {
	cp := *c
	if c.StartedAt != nil {
		t := *c.StartedAt
		cp.StartedAt = &t
	}
	if c.CompletedAt != nil {
		t := *c.CompletedAt
		cp.CompletedAt = &t
	}
	cp.Comments = make([]Comment, len(c.Comments))
	for i, cm := range c.Comments {
		cp.Comments[i] = cm.Clone()
	}
	cp.Tags = append([]string(nil), c.Tags...)
	cp.Item.Labels = append([]string(nil), c.Item.Labels...)
	return &cp
}

// Comment is a free-text note on a card. The tags parsed from its content at
// creation time travel with it; a comment is immutable once created.
type Comment struct {
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	Tags      []string  `json:"tags,omitempty"`
}

// Clone returns a copy of the comment with its own tag slice.
func (c Comment) Clone() Comment {
	cp := c
	cp.Tags = append([]string(nil), c.Tags...)
	return cp
}
