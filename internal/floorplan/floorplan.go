// Package floorplan holds the editable state of one area's floor plan: its
// tables, seated parties, selection and the drag interaction. A FloorPlan is
// the only writer of that state; renderers work from Snapshot copies.
package floorplan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/vbonduro/floorplan/internal/canvas"
	"github.com/vbonduro/floorplan/internal/domain"
)

// Gateway loads and saves an area's layout.
type Gateway interface {
	LoadArea(ctx context.Context, areaID int64) (*domain.Layout, error)
	SaveArea(ctx context.Context, areaID int64, layout *domain.Layout) error
}

// Mode is the interaction state of a plan.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDragging
)

func (m Mode) String() string {
	if m == ModeDragging {
		return "dragging"
	}
	return "idle"
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*m = ModeIdle
	case "dragging":
		*m = ModeDragging
	default:
		return fmt.Errorf("unknown mode %q", b)
	}
	return nil
}

// ChangeKind names what a Change reports.
type ChangeKind string

const (
	ChangeLoaded       ChangeKind = "loaded"
	ChangeTableAdded   ChangeKind = "table_added"
	ChangeTableMoved   ChangeKind = "table_moved"
	ChangeTableResized ChangeKind = "table_resized"
	ChangeTableRemoved ChangeKind = "table_removed"
	ChangeStatus       ChangeKind = "status"
	ChangeAssignment   ChangeKind = "assignment"
	ChangeSelection    ChangeKind = "selection"
	ChangeHighlight    ChangeKind = "highlight"
	ChangeDrag         ChangeKind = "drag"
	ChangeSaved        ChangeKind = "saved"
	ChangeSaveFailed   ChangeKind = "save_failed"
)

// Change is delivered to subscribers after every successful mutation and after
// each save attempt. Dirty is the flag's value once the change was applied.
type Change struct {
	Kind    ChangeKind
	TableID string
	Dirty   bool
}

// Placement is the optional layout policy applied to moves and resizes.
// The zero value enforces nothing.
type Placement struct {
	ClampToCanvas bool
	RejectOverlap bool
}

// Option configures a FloorPlan at construction.
type Option func(*FloorPlan)

// WithLogger replaces slog.Default as the plan's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *FloorPlan) { p.logger = logger }
}

// WithPlacement sets the policy checked by MoveTable and ResizeTable.
func WithPlacement(pl Placement) Option {
	return func(p *FloorPlan) { p.placement = pl }
}

// WithIDGenerator overrides the uuid generator used for new table ids.
func WithIDGenerator(gen func() string) Option {
	return func(p *FloorPlan) { p.newID = gen }
}

// FloorPlan is the editable layout of one area. All methods are safe for
// concurrent use; the gateway is never called with the plan locked.
type FloorPlan struct {
	areaID    int64
	model     canvas.Model
	gateway   Gateway
	placement Placement
	logger    *slog.Logger
	newID     func() string

	mu          sync.Mutex
	loaded      bool
	loading     bool
	tables      []domain.Table
	assignments map[string]domain.Assignment
	selection   map[string]struct{}
	highlight   map[string]struct{}
	dirty       bool
	revision    uint64
	drag        *dragState

	inFlight *saveCycle
	pending  *saveCycle

	listeners    map[int]func(Change)
	nextListener int
}

// New returns an empty plan for areaID. It must be loaded before it can be edited.
func New(areaID int64, model canvas.Model, gateway Gateway, opts ...Option) *FloorPlan {
	p := &FloorPlan{
		areaID:      areaID,
		model:       model,
		gateway:     gateway,
		logger:      slog.Default(),
		newID:       uuid.NewString,
		assignments: make(map[string]domain.Assignment),
		selection:   make(map[string]struct{}),
		highlight:   make(map[string]struct{}),
		listeners:   make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *FloorPlan) AreaID() int64 { return p.areaID }

func (p *FloorPlan) Model() canvas.Model { return p.model }

// Load hydrates the plan from the gateway. It succeeds at most once per plan;
// after a failure the existing state is untouched and Load may be retried.
func (p *FloorPlan) Load(ctx context.Context) error {
	p.mu.Lock()
	switch {
	case p.loaded:
		p.mu.Unlock()
		return ErrAlreadyLoaded
	case p.loading:
		p.mu.Unlock()
		return ErrLoadInProgress
	}
	p.loading = true
	p.mu.Unlock()

	layout, err := p.gateway.LoadArea(ctx, p.areaID)
	var (
		tables      []domain.Table
		assignments map[string]domain.Assignment
	)
	if err == nil {
		tables, assignments, err = p.validateLayout(layout)
	}

	return p.apply(func() (Change, error) {
		p.loading = false
		if err != nil {
			p.logger.Error("floor plan load failed", "area_id", p.areaID, "error", err)
			return Change{}, fmt.Errorf("%w: %w", ErrLoad, err)
		}
		p.tables = tables
		p.assignments = assignments
		clear(p.selection)
		clear(p.highlight)
		p.drag = nil
		p.dirty = false
		p.loaded = true
		p.logger.Info("floor plan loaded", "area_id", p.areaID, "tables", len(tables), "assignments", len(assignments))
		return Change{Kind: ChangeLoaded}, nil
	})
}

func (p *FloorPlan) validateLayout(layout *domain.Layout) ([]domain.Table, map[string]domain.Assignment, error) {
	if layout == nil {
		layout = &domain.Layout{}
	}
	tables := make([]domain.Table, 0, len(layout.Tables))
	byID := make(map[string]domain.Table, len(layout.Tables))
	for _, t := range layout.Tables {
		if _, dup := byID[t.ID]; dup {
			return nil, nil, fmt.Errorf("duplicate table id %q", t.ID)
		}
		if !validDimension(t.Width) || !validDimension(t.Height) {
			return nil, nil, fmt.Errorf("table %q has invalid dimensions %vx%v", t.ID, t.Width, t.Height)
		}
		byID[t.ID] = t
		tables = append(tables, t)
	}

	assignments := make(map[string]domain.Assignment, len(layout.Assignments))
	for _, a := range layout.Assignments {
		t, ok := byID[a.TableID]
		if !ok || t.Status != domain.StatusOccupied || a.PartySize <= 0 {
			p.logger.Warn("dropping stale assignment", "area_id", p.areaID, "table_id", a.TableID, "party_size", a.PartySize)
			continue
		}
		assignments[a.TableID] = a
	}
	return tables, assignments, nil
}

// Loaded reports whether Load has succeeded.
func (p *FloorPlan) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// Dirty reports whether the plan has edits that have not been saved.
func (p *FloorPlan) Dirty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dirty
}

// AddTable places a new available table of the given shape and returns its id.
func (p *FloorPlan) AddTable(shape domain.Shape, pos domain.Point) (string, error) {
	var id string
	err := p.apply(func() (Change, error) {
		if !p.loaded {
			return Change{}, ErrNotLoaded
		}
		size := defaultSize(shape)
		if p.placement.ClampToCanvas {
			pos = p.model.Clamp(pos, size.X, size.Y)
		}
		id = p.newID()
		p.tables = append(p.tables, domain.Table{
			ID:       id,
			Shape:    shape,
			Number:   p.nextNumberLocked(),
			Position: pos,
			Width:    size.X,
			Height:   size.Y,
			Status:   domain.StatusAvailable,
		})
		p.markDirtyLocked()
		return Change{Kind: ChangeTableAdded, TableID: id}, nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// MoveTable sets the table's position. A drag of that table ends where it is.
func (p *FloorPlan) MoveTable(id string, pos domain.Point) error {
	return p.apply(func() (Change, error) {
		i, err := p.lookupLocked(id)
		if err != nil {
			return Change{}, err
		}
		candidate := p.tables[i]
		candidate.Position = pos
		if candidate, err = p.placeLocked(candidate); err != nil {
			return Change{}, err
		}
		p.tables[i] = candidate
		p.endDragOnLocked(id)
		p.markDirtyLocked()
		return Change{Kind: ChangeTableMoved, TableID: id}, nil
	})
}

// ResizeTable sets the table's width and height.
func (p *FloorPlan) ResizeTable(id string, width, height float64) error {
	return p.apply(func() (Change, error) {
		i, err := p.lookupLocked(id)
		if err != nil {
			return Change{}, err
		}
		if !validDimension(width) || !validDimension(height) {
			return Change{}, fmt.Errorf("%w: got %vx%v for table %q", ErrInvalidDimensions, width, height, id)
		}
		candidate := p.tables[i]
		candidate.Width, candidate.Height = width, height
		if candidate, err = p.placeLocked(candidate); err != nil {
			return Change{}, err
		}
		p.tables[i] = candidate
		p.endDragOnLocked(id)
		p.markDirtyLocked()
		return Change{Kind: ChangeTableResized, TableID: id}, nil
	})
}

func (p *FloorPlan) SetStatus(id string, status domain.Status) error {
	return p.apply(func() (Change, error) {
		i, err := p.lookupLocked(id)
		if err != nil {
			return Change{}, err
		}
		from := p.tables[i].Status
		if !CanTransition(from, status) {
			return Change{}, fmt.Errorf("%w: %s -> %s", ErrIllegalStatus, from, status)
		}
		if from == domain.StatusOccupied {
			delete(p.assignments, id)
		}
		p.tables[i].Status = status
		p.markDirtyLocked()
		return Change{Kind: ChangeStatus, TableID: id}, nil
	})
}

// Assign seats a party at an available or reserved table, which becomes occupied.
func (p *FloorPlan) Assign(id string, partySize int, guestRef string) error {
	return p.apply(func() (Change, error) {
		i, err := p.lookupLocked(id)
		if err != nil {
			return Change{}, err
		}
		if partySize <= 0 {
			return Change{}, fmt.Errorf("%w: got %d", ErrInvalidPartySize, partySize)
		}
		switch st := p.tables[i].Status; {
		case st == domain.StatusOccupied:
			return Change{}, fmt.Errorf("%w: %q", ErrAlreadyAssigned, id)
		case !canAssign(st):
			return Change{}, fmt.Errorf("%w: cannot seat a party at a %s table", ErrIllegalStatus, st)
		}
		p.assignments[id] = domain.Assignment{TableID: id, PartySize: partySize, GuestRef: guestRef}
		p.tables[i].Status = domain.StatusOccupied
		p.markDirtyLocked()
		return Change{Kind: ChangeAssignment, TableID: id}, nil
	})
}

func (p *FloorPlan) Unassign(id string) error {
	return p.apply(func() (Change, error) {
		i, err := p.lookupLocked(id)
		if err != nil {
			return Change{}, err
		}
		if p.tables[i].Status != domain.StatusOccupied {
			return Change{}, fmt.Errorf("%w: %q is %s", ErrNotOccupied, id, p.tables[i].Status)
		}
		delete(p.assignments, id)
		p.tables[i].Status = domain.StatusAvailable
		p.markDirtyLocked()
		return Change{Kind: ChangeAssignment, TableID: id}, nil
	})
}

// SelectTable replaces the selection with id, or toggles id when multi is set.
func (p *FloorPlan) SelectTable(id string, multi bool) error {
	return p.apply(func() (Change, error) {
		if _, err := p.lookupLocked(id); err != nil {
			return Change{}, err
		}
		p.selectLocked(id, multi)
		return Change{Kind: ChangeSelection, TableID: id}, nil
	})
}

func (p *FloorPlan) ClearSelection() {
	_ = p.apply(func() (Change, error) {
		clear(p.selection)
		return Change{Kind: ChangeSelection}, nil
	})
}

// SetHighlight replaces the highlight set. Ids that are not on the plan are ignored.
func (p *FloorPlan) SetHighlight(ids []string) {
	_ = p.apply(func() (Change, error) {
		clear(p.highlight)
		for _, id := range ids {
			if p.indexLocked(id) >= 0 {
				p.highlight[id] = struct{}{}
			}
		}
		return Change{Kind: ChangeHighlight}, nil
	})
}

// RemoveTable deletes the table together with every reference to it.
func (p *FloorPlan) RemoveTable(id string) error {
	return p.apply(func() (Change, error) {
		i, err := p.lookupLocked(id)
		if err != nil {
			return Change{}, err
		}
		p.tables = slices.Delete(p.tables, i, i+1)
		delete(p.assignments, id)
		delete(p.selection, id)
		delete(p.highlight, id)
		if p.drag != nil && p.drag.tableID == id {
			p.drag = nil
		}
		p.markDirtyLocked()
		return Change{Kind: ChangeTableRemoved, TableID: id}, nil
	})
}

// Table returns a copy of the table with the given id.
func (p *FloorPlan) Table(id string) (domain.Table, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.indexLocked(id)
	if i < 0 {
		return domain.Table{}, false
	}
	return p.tables[i], true
}

// Selection returns the selected ids in paint order.
func (p *FloorPlan) Selection() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var ids []string
	for _, t := range p.tables {
		if _, ok := p.selection[t.ID]; ok {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// Subscribe registers fn for change notifications. fn runs on the goroutine
// that made the change, after the plan has been unlocked.
func (p *FloorPlan) Subscribe(fn func(Change)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := p.nextListener
	p.nextListener++
	p.listeners[key] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, key)
	}
}

// apply runs fn under the plan lock and notifies subscribers once the lock is
// released. Nothing is published when fn fails.
func (p *FloorPlan) apply(fn func() (Change, error)) error {
	p.mu.Lock()
	ch, err := fn()
	ch.Dirty = p.dirty
	fns := p.listenersLocked()
	p.mu.Unlock()

	if err != nil {
		if errors.Is(err, ErrInvalidReference) {
			p.logger.Warn("floor plan mutation rejected", "area_id", p.areaID, "error", err)
		}
		return err
	}
	notify(fns, ch)
	return nil
}

func (p *FloorPlan) listenersLocked() []func(Change) {
	if len(p.listeners) == 0 {
		return nil
	}
	fns := make([]func(Change), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	return fns
}

func notify(fns []func(Change), ch Change) {
	for _, fn := range fns {
		fn(ch)
	}
}

func (p *FloorPlan) markDirtyLocked() {
	p.dirty = true
	p.revision++
}

func (p *FloorPlan) indexLocked(id string) int {
	return slices.IndexFunc(p.tables, func(t domain.Table) bool { return t.ID == id })
}

func (p *FloorPlan) lookupLocked(id string) (int, error) {
	if !p.loaded {
		return -1, ErrNotLoaded
	}
	i := p.indexLocked(id)
	if i < 0 {
		return -1, unknownTable(id)
	}
	return i, nil
}

func (p *FloorPlan) selectLocked(id string, multi bool) {
	if !multi {
		clear(p.selection)
		p.selection[id] = struct{}{}
		return
	}
	if _, ok := p.selection[id]; ok {
		delete(p.selection, id)
	} else {
		p.selection[id] = struct{}{}
	}
}

// endDragOnLocked ends a drag of table id without restoring its origin. An
// explicit move or resize wins over the gesture that was in progress.
func (p *FloorPlan) endDragOnLocked(id string) {
	if p.drag != nil && p.drag.tableID == id {
		p.drag = nil
	}
}

// placeLocked applies the placement policy to a candidate table state.
func (p *FloorPlan) placeLocked(t domain.Table) (domain.Table, error) {
	if p.placement.ClampToCanvas {
		t.Position = p.model.Clamp(t.Position, t.Width, t.Height)
	}
	if p.placement.RejectOverlap && p.overlapsLocked(t) {
		return t, fmt.Errorf("%w: table %q would overlap another table", ErrPlacementRejected, t.ID)
	}
	return t, nil
}

func (p *FloorPlan) overlapsLocked(t domain.Table) bool {
	for _, o := range p.tables {
		if o.ID != t.ID && t.Overlaps(o) {
			return true
		}
	}
	return false
}

func (p *FloorPlan) nextNumberLocked() string {
	highest := 0
	for _, t := range p.tables {
		if n, err := strconv.Atoi(t.Number); err == nil && n > highest {
			highest = n
		}
	}
	return strconv.Itoa(highest + 1)
}

func validDimension(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

var defaultSizes = map[domain.Shape]domain.Point{
	domain.ShapeRound:     {X: 80, Y: 80},
	domain.ShapeSquare:    {X: 80, Y: 80},
	domain.ShapeRectangle: {X: 120, Y: 80},
	domain.ShapeOval:      {X: 120, Y: 80},
	domain.ShapeBooth:     {X: 120, Y: 60},
}

func defaultSize(s domain.Shape) domain.Point {
	if size, ok := defaultSizes[s]; ok {
		return size
	}
	return domain.Point{X: 80, Y: 80}
}
