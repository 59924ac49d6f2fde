package floorplan

import (
	"fmt"

	"github.com/vbonduro/floorplan/internal/canvas"
	"github.com/vbonduro/floorplan/internal/domain"
)

// PointerEvent is a pointer position in rendered coordinates together with the
// scale the client was drawing at.
type PointerEvent struct {
	Pos      domain.Point `json:"pos"`
	Scale    float64      `json:"scale"`
	Modifier bool         `json:"modifier"`
}

type dragState struct {
	tableID string
	offset  domain.Point
	origin  domain.Point
}

func (p *FloorPlan) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.modeLocked()
}

func (p *FloorPlan) modeLocked() Mode {
	if p.drag != nil {
		return ModeDragging
	}
	return ModeIdle
}

// PointerDown handles a press on the canvas. Pressing a table selects it and
// starts dragging it; pressing empty canvas clears the selection. It returns
// the id of the table that was hit, or "" for empty canvas.
func (p *FloorPlan) PointerDown(ev PointerEvent) (string, error) {
	var hit string
	err := p.apply(func() (Change, error) {
		if !p.loaded {
			return Change{}, ErrNotLoaded
		}
		pt, err := logicalPointer(ev)
		if err != nil {
			return Change{}, err
		}
		if p.drag != nil {
			return Change{}, fmt.Errorf("%w: %q", ErrDragInProgress, p.drag.tableID)
		}
		i := p.hitTestLocked(pt)
		if i < 0 {
			clear(p.selection)
			return Change{Kind: ChangeSelection}, nil
		}
		hit = p.tables[i].ID
		p.selectLocked(hit, ev.Modifier)
		if _, selected := p.selection[hit]; !selected {
			// modifier-click removed the table from the selection
			return Change{Kind: ChangeSelection, TableID: hit}, nil
		}
		p.beginDragLocked(i, pt)
		return Change{Kind: ChangeDrag, TableID: hit}, nil
	})
	return hit, err
}

// BeginDrag starts dragging table id from the given pointer position without
// touching the selection.
func (p *FloorPlan) BeginDrag(id string, ev PointerEvent) error {
	return p.apply(func() (Change, error) {
		i, err := p.lookupLocked(id)
		if err != nil {
			return Change{}, err
		}
		pt, err := logicalPointer(ev)
		if err != nil {
			return Change{}, err
		}
		if p.drag != nil {
			return Change{}, fmt.Errorf("%w: %q", ErrDragInProgress, p.drag.tableID)
		}
		p.beginDragLocked(i, pt)
		return Change{Kind: ChangeDrag, TableID: id}, nil
	})
}

// PointerMove moves the dragged table so it keeps its offset from the pointer.
// The move is live but not committed: the dirty flag is left alone.
func (p *FloorPlan) PointerMove(ev PointerEvent) error {
	return p.apply(func() (Change, error) {
		id, err := p.dragToLocked(ev)
		return Change{Kind: ChangeDrag, TableID: id}, err
	})
}

// PointerUp moves the dragged table to the final pointer position and commits it.
func (p *FloorPlan) PointerUp(ev PointerEvent) error {
	return p.apply(func() (Change, error) {
		id, err := p.dragToLocked(ev)
		if err != nil {
			return Change{}, err
		}
		return p.commitDragLocked(id)
	})
}

// EndDrag commits the dragged table at its current position.
func (p *FloorPlan) EndDrag() error {
	return p.apply(func() (Change, error) {
		if p.drag == nil {
			return Change{}, ErrNotDragging
		}
		return p.commitDragLocked(p.drag.tableID)
	})
}

// CancelDrag puts the dragged table back where the drag started.
func (p *FloorPlan) CancelDrag() error {
	return p.apply(func() (Change, error) {
		if p.drag == nil {
			return Change{}, ErrNotDragging
		}
		d := p.drag
		p.drag = nil
		if i := p.indexLocked(d.tableID); i >= 0 {
			p.tables[i].Position = d.origin
		}
		return Change{Kind: ChangeDrag, TableID: d.tableID}, nil
	})
}

func (p *FloorPlan) beginDragLocked(i int, pt domain.Point) {
	t := p.tables[i]
	p.drag = &dragState{
		tableID: t.ID,
		offset:  pt.Sub(t.Position),
		origin:  t.Position,
	}
}

func (p *FloorPlan) dragToLocked(ev PointerEvent) (string, error) {
	if p.drag == nil {
		return "", ErrNotDragging
	}
	pt, err := logicalPointer(ev)
	if err != nil {
		return "", err
	}
	i := p.indexLocked(p.drag.tableID)
	if i < 0 {
		p.drag = nil
		return "", ErrNotDragging
	}
	pos := pt.Sub(p.drag.offset)
	if p.placement.ClampToCanvas {
		pos = p.model.Clamp(pos, p.tables[i].Width, p.tables[i].Height)
	}
	p.tables[i].Position = pos
	return p.drag.tableID, nil
}

func (p *FloorPlan) commitDragLocked(id string) (Change, error) {
	d := p.drag
	p.drag = nil
	i := p.indexLocked(id)
	if i < 0 {
		return Change{}, unknownTable(id)
	}
	if p.placement.RejectOverlap && p.overlapsLocked(p.tables[i]) {
		p.tables[i].Position = d.origin
		return Change{}, fmt.Errorf("%w: table %q dropped onto another table", ErrPlacementRejected, id)
	}
	if p.tables[i].Position != d.origin {
		p.markDirtyLocked()
	}
	return Change{Kind: ChangeTableMoved, TableID: id}, nil
}

// hitTestLocked returns the index of the topmost table under pt, or -1.
func (p *FloorPlan) hitTestLocked(pt domain.Point) int {
	for i := len(p.tables) - 1; i >= 0; i-- {
		if p.tables[i].Contains(pt) {
			return i
		}
	}
	return -1
}

func logicalPointer(ev PointerEvent) (domain.Point, error) {
	if err := canvas.ValidateScale(ev.Scale); err != nil {
		return domain.Point{}, fmt.Errorf("%w: %w", ErrInvalidReference, err)
	}
	return canvas.PointToLogical(ev.Scale, ev.Pos), nil
}
