package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Document is the persisted board collection: a single JSON document keyed
// by board id. Enum fields serialize as lowercase strings and timestamps as
// RFC3339, so the document round-trips losslessly.
type Document struct {
	Boards map[string]*Board `json:"boards"`
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{Boards: make(map[string]*Board)}
}

// boardDoc is the wire shape of a board: columns keyed by column-type
// string, swimlanes keyed by id.
type boardDoc struct {
	ID            string               `json:"board_id"`
	Type          BoardType            `json:"board_type"`
	Name          string               `json:"name"`
	Description   string               `json:"description,omitempty"`
	ParentBoardID string               `json:"parent_board_id,omitempty"`
	Columns       map[string]*Column   `json:"columns"`
	Swimlanes     map[string]*Swimlane `json:"swimlanes,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// MarshalJSON implements json.Marshaler.
func (b *Board) MarshalJSON() ([]byte, error) {
	doc := boardDoc{
		ID:            b.ID,
		Type:          b.Type,
		Name:          b.Name,
		Description:   b.Description,
		ParentBoardID: b.ParentBoardID,
		Columns:       make(map[string]*Column, len(b.Columns)),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	for _, col := range b.Columns {
		doc.Columns[string(col.Type)] = col
	}
	if len(b.Swimlanes) > 0 {
		doc.Swimlanes = make(map[string]*Swimlane, len(b.Swimlanes))
		for _, s := range b.Swimlanes {
			doc.Swimlanes[s.ID] = s
		}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal board %s: %w", b.ID, err)
	}
	return data, nil
}

// UnmarshalJSON implements json.Unmarshaler. Columns are restored in
// workflow order; swimlanes in id order for determinism.
func (b *Board) UnmarshalJSON(data []byte) error {
	var doc boardDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal board: %w", err)
	}
	b.ID = doc.ID
	b.Type = doc.Type
	b.Name = doc.Name
	b.Description = doc.Description
	b.ParentBoardID = doc.ParentBoardID
	b.CreatedAt = doc.CreatedAt
	b.UpdatedAt = doc.UpdatedAt

	b.Columns = make([]*Column, 0, len(doc.Columns))
	for key, col := range doc.Columns {
		t, err := ParseColumnType(key)
		if err != nil {
			return err
		}
		col.Type = t
		b.Columns = append(b.Columns, col)
	}
	sort.Slice(b.Columns, func(i, j int) bool {
		return b.Columns[i].Type.Order() < b.Columns[j].Type.Order()
	})

	b.Swimlanes = make([]*Swimlane, 0, len(doc.Swimlanes))
	for id, s := range doc.Swimlanes {
		s.ID = id
		b.Swimlanes = append(b.Swimlanes, s)
	}
	sort.Slice(b.Swimlanes, func(i, j int) bool {
		return b.Swimlanes[i].ID < b.Swimlanes[j].ID
	})
	return nil
}
