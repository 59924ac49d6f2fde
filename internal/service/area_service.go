package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/vbonduro/floorplan/internal/canvas"
	"github.com/vbonduro/floorplan/internal/domain"
	"github.com/vbonduro/floorplan/internal/floorplan"
	"github.com/vbonduro/floorplan/internal/render"
)

var (
	ErrInvalidName    = errors.New("area name is required")
	ErrUnsavedChanges = errors.New("floor plan has unsaved changes")
)

// areaRepository is the subset of store.AreaStore that AreaService requires.
type areaRepository interface {
	Create(ctx context.Context, name string, canvasWidth, canvasHeight float64) (*domain.Area, error)
	GetByID(ctx context.Context, id int64) (*domain.Area, error)
	List(ctx context.Context) ([]*domain.Area, error)
	Delete(ctx context.Context, id int64) error
}

// layoutRemover is implemented by gateways that keep layouts outside the area
// table and so need an explicit delete.
type layoutRemover interface {
	Delete(ctx context.Context, areaID int64) error
}

// Options carries the defaults applied to every plan the service opens.
type Options struct {
	Palette       render.Palette
	Placement     floorplan.Placement
	DefaultCanvas canvas.Model
}

// AreaService owns the areas and keeps one live FloorPlan per opened area.
type AreaService struct {
	areaStore areaRepository
	gateway   floorplan.Gateway
	opts      Options
	logger    *slog.Logger

	mu    sync.Mutex
	plans map[int64]*floorplan.FloorPlan
}

func NewAreaService(areaStore areaRepository, gateway floorplan.Gateway, opts Options, logger *slog.Logger) *AreaService {
	if opts.DefaultCanvas.Width <= 0 || opts.DefaultCanvas.Height <= 0 {
		opts.DefaultCanvas = canvas.NewModel(domain.DefaultCanvasWidth, domain.DefaultCanvasHeight)
	}
	if opts.Palette.Statuses == nil {
		opts.Palette = render.DefaultPalette()
	}
	return &AreaService{
		areaStore: areaStore,
		gateway:   gateway,
		opts:      opts,
		logger:    logger,
		plans:     make(map[int64]*floorplan.FloorPlan),
	}
}

// CreateArea stores a new area. Non-positive canvas dimensions take the
// configured defaults.
func (s *AreaService) CreateArea(ctx context.Context, name string, canvasWidth, canvasHeight float64) (*domain.Area, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if canvasWidth <= 0 || canvasHeight <= 0 {
		canvasWidth, canvasHeight = s.opts.DefaultCanvas.Width, s.opts.DefaultCanvas.Height
	}
	area, err := s.areaStore.Create(ctx, name, canvasWidth, canvasHeight)
	if err != nil {
		return nil, err
	}
	s.logger.Info("area created", "area_id", area.ID, "name", area.Name)
	return area, nil
}

func (s *AreaService) ListAreas(ctx context.Context) ([]*domain.Area, error) {
	return s.areaStore.List(ctx)
}

func (s *AreaService) GetArea(ctx context.Context, areaID int64) (*domain.Area, error) {
	area, err := s.areaStore.GetByID(ctx, areaID)
	if err != nil {
		return nil, fmt.Errorf("failed to get area: %w", err)
	}
	if area == nil {
		return nil, fmt.Errorf("%w: %d", domain.ErrAreaNotFound, areaID)
	}
	return area, nil
}

// DeleteArea removes the area, its layout and any open plan. Unsaved edits
// are discarded.
func (s *AreaService) DeleteArea(ctx context.Context, areaID int64) error {
	if err := s.areaStore.Delete(ctx, areaID); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.plans, areaID)
	s.mu.Unlock()

	if r, ok := s.gateway.(layoutRemover); ok {
		if err := r.Delete(ctx, areaID); err != nil {
			s.logger.Error("failed to delete layout", "area_id", areaID, "error", err)
		}
	}
	s.logger.Info("area deleted", "area_id", areaID)
	return nil
}

// Plan returns the live plan for an area, opening and loading it on first use.
// A plan whose load failed stays registered and is loaded again on the next call.
func (s *AreaService) Plan(ctx context.Context, areaID int64) (*floorplan.FloorPlan, error) {
	s.mu.Lock()
	plan, ok := s.plans[areaID]
	s.mu.Unlock()

	if !ok {
		area, err := s.GetArea(ctx, areaID)
		if err != nil {
			return nil, err
		}
		plan = s.newPlan(area)

		s.mu.Lock()
		if existing, ok := s.plans[areaID]; ok {
			plan = existing
		} else {
			s.plans[areaID] = plan
		}
		s.mu.Unlock()
	}

	if plan.Loaded() {
		return plan, nil
	}
	if err := plan.Load(ctx); err != nil && !errors.Is(err, floorplan.ErrAlreadyLoaded) {
		return nil, err
	}
	return plan, nil
}

func (s *AreaService) newPlan(area *domain.Area) *floorplan.FloorPlan {
	plan := floorplan.New(area.ID, canvas.ForArea(area), s.gateway,
		floorplan.WithLogger(s.logger),
		floorplan.WithPlacement(s.opts.Placement),
	)
	plan.Subscribe(func(ch floorplan.Change) {
		s.logger.Debug("floor plan changed", "area_id", area.ID, "kind", ch.Kind, "table_id", ch.TableID, "dirty", ch.Dirty)
	})
	return plan
}

// ClosePlan forgets an open plan. A dirty plan is kept and ErrUnsavedChanges
// returned unless discard is set.
func (s *AreaService) ClosePlan(areaID int64, discard bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, ok := s.plans[areaID]
	if !ok {
		return nil
	}
	if plan.Dirty() && !discard {
		return ErrUnsavedChanges
	}
	delete(s.plans, areaID)
	return nil
}

// OpenPlans lists the area ids that currently have a live plan.
func (s *AreaService) OpenPlans() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.plans))
	for id := range s.plans {
		ids = append(ids, id)
	}
	return ids
}

func (s *AreaService) Scene(ctx context.Context, areaID int64, scale float64) (render.Scene, error) {
	plan, err := s.Plan(ctx, areaID)
	if err != nil {
		return render.Scene{}, err
	}
	return render.BuildScene(plan.Snapshot(), plan.Model(), scale, s.opts.Palette)
}

func (s *AreaService) Save(ctx context.Context, areaID int64) error {
	plan, err := s.Plan(ctx, areaID)
	if err != nil {
		return err
	}
	return plan.Save(ctx)
}

// SaveAll saves every dirty plan and returns the errors joined.
func (s *AreaService) SaveAll(ctx context.Context) error {
	s.mu.Lock()
	plans := make([]*floorplan.FloorPlan, 0, len(s.plans))
	for _, p := range s.plans {
		plans = append(plans, p)
	}
	s.mu.Unlock()

	var errs []error
	for _, p := range plans {
		if !p.Loaded() || !p.Dirty() {
			continue
		}
		if err := p.Save(ctx); err != nil {
			errs = append(errs, fmt.Errorf("area %d: %w", p.AreaID(), err))
		}
	}
	return errors.Join(errs...)
}
