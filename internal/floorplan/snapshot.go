package floorplan

import (
	"maps"
	"slices"

	"github.com/vbonduro/floorplan/internal/domain"
)

// Snapshot is a point-in-time copy of a plan, safe to read without locking.
type Snapshot struct {
	AreaID      int64                        `json:"areaId"`
	Loaded      bool                         `json:"loaded"`
	Tables      []domain.Table               `json:"tables"`
	Assignments map[string]domain.Assignment `json:"assignments"`
	Selected    map[string]bool              `json:"selected"`
	Highlighted map[string]bool              `json:"highlighted"`
	Dirty       bool                         `json:"dirty"`
	Mode        Mode                         `json:"mode"`
	DraggingID  string                       `json:"draggingId,omitempty"`
}

func (p *FloorPlan) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Snapshot{
		AreaID:      p.areaID,
		Loaded:      p.loaded,
		Tables:      slices.Clone(p.tables),
		Assignments: maps.Clone(p.assignments),
		Selected:    toBoolSet(p.selection),
		Highlighted: toBoolSet(p.highlight),
		Dirty:       p.dirty,
		Mode:        p.modeLocked(),
	}
	if p.drag != nil {
		s.DraggingID = p.drag.tableID
	}
	return s
}

// Assignment returns the party seated at table id, if any.
func (s Snapshot) Assignment(id string) *domain.Assignment {
	a, ok := s.Assignments[id]
	if !ok {
		return nil
	}
	return &a
}

// layoutLocked builds the persisted form of the plan. Assignments are ordered
// by table paint order so identical plans produce identical layouts. A table
// being dragged is written at its drag origin; the live position is only
// persisted once the drag is committed.
func (p *FloorPlan) layoutLocked() *domain.Layout {
	layout := &domain.Layout{
		Tables:      slices.Clone(p.tables),
		Assignments: make([]domain.Assignment, 0, len(p.assignments)),
	}
	if p.drag != nil {
		if i := p.indexLocked(p.drag.tableID); i >= 0 {
			layout.Tables[i].Position = p.drag.origin
		}
	}
	for _, t := range p.tables {
		if a, ok := p.assignments[t.ID]; ok {
			layout.Assignments = append(layout.Assignments, a)
		}
	}
	return layout
}

func toBoolSet(set map[string]struct{}) map[string]bool {
	out := make(map[string]bool, len(set))
	for id := range set {
		out[id] = true
	}
	return out
}
