// Package canvas maps between the logical floor-plan coordinate space, which is
// what gets persisted, and the scaled space a client actually draws in.
package canvas

import (
	"errors"
	"fmt"
	"math"

	"github.com/vbonduro/floorplan/internal/domain"
)

const (
	BaseGridSpacing = 20.0
	MinGridSpacing  = 8.0
)

var ErrInvalidScale = errors.New("scale must be positive and finite")

// Model is a reference canvas of fixed logical size.
type Model struct {
	Width  float64
	Height float64
}

func NewModel(width, height float64) Model {
	return Model{Width: width, Height: height}
}

// ForArea returns the model for an area, falling back to the default canvas
// size for areas stored without one.
func ForArea(a *domain.Area) Model {
	if a == nil || a.CanvasWidth <= 0 || a.CanvasHeight <= 0 {
		return NewModel(domain.DefaultCanvasWidth, domain.DefaultCanvasHeight)
	}
	return NewModel(a.CanvasWidth, a.CanvasHeight)
}

func ValidateScale(scale float64) error {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidScale, scale)
	}
	return nil
}

// Size returns the rendered canvas size at scale.
func (m Model) Size(scale float64) (float64, float64) {
	return m.Width * scale, m.Height * scale
}

func ToRendered(scale, v float64) float64 { return v * scale }

func ToLogical(scale, v float64) float64 { return v / scale }

func PointToRendered(scale float64, p domain.Point) domain.Point {
	return domain.Point{X: ToRendered(scale, p.X), Y: ToRendered(scale, p.Y)}
}

// PointToLogical inverts a pointer position reported in rendered coordinates.
func PointToLogical(scale float64, p domain.Point) domain.Point {
	return domain.Point{X: ToLogical(scale, p.X), Y: ToLogical(scale, p.Y)}
}

// GridSpacing keeps background grid lines from collapsing into noise when the
// canvas is scaled down.
func GridSpacing(scale float64) float64 {
	return math.Max(MinGridSpacing, BaseGridSpacing*scale)
}

// Clamp moves a w×h box at p so that it lies inside the reference canvas.
// Boxes larger than the canvas are pinned to the origin.
func (m Model) Clamp(p domain.Point, w, h float64) domain.Point {
	return domain.Point{
		X: clamp(p.X, 0, math.Max(0, m.Width-w)),
		Y: clamp(p.Y, 0, math.Max(0, m.Height-h)),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
