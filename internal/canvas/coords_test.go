package canvas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vbonduro/floorplan/internal/domain"
)

func TestRoundTrip(t *testing.T) {
	scales := []float64{0.001, 0.25, 0.5, 1, 1.5, 3, 7.25, 1e6}
	values := []float64{-1234.5, -1, 0, 0.1, 10, 333.333, 800, 1e9}

	for _, s := range scales {
		for _, x := range values {
			got := ToLogical(s, ToRendered(s, x))
			assert.InDelta(t, x, got, 1e-9*math.Max(1, math.Abs(x)), "scale=%v x=%v", s, x)
		}
	}
}

func TestPointToRendered(t *testing.T) {
	p := PointToRendered(1.5, domain.Point{X: 10, Y: 10})
	assert.Equal(t, domain.Point{X: 15, Y: 15}, p)

	back := PointToLogical(1.5, p)
	assert.InDelta(t, 10, back.X, 1e-12)
	assert.InDelta(t, 10, back.Y, 1e-12)
}

func TestModelSize(t *testing.T) {
	m := NewModel(800, 494)
	w, h := m.Size(0.5)
	assert.Equal(t, 400.0, w)
	assert.Equal(t, 247.0, h)
}

func TestGridSpacing(t *testing.T) {
	assert.Equal(t, 20.0, GridSpacing(1))
	assert.Equal(t, 40.0, GridSpacing(2))
	assert.Equal(t, MinGridSpacing, GridSpacing(0.1))
}

func TestValidateScale(t *testing.T) {
	assert.NoError(t, ValidateScale(1))
	assert.NoError(t, ValidateScale(0.01))

	for _, s := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.ErrorIs(t, ValidateScale(s), ErrInvalidScale, "scale=%v", s)
	}
}

func TestForAreaDefaults(t *testing.T) {
	assert.Equal(t, NewModel(800, 494), ForArea(nil))
	assert.Equal(t, NewModel(800, 494), ForArea(&domain.Area{}))
	assert.Equal(t, NewModel(1024, 768), ForArea(&domain.Area{CanvasWidth: 1024, CanvasHeight: 768}))
}

func TestClamp(t *testing.T) {
	m := NewModel(800, 494)
	assert.Equal(t, domain.Point{X: 0, Y: 0}, m.Clamp(domain.Point{X: -20, Y: -5}, 80, 80))
	assert.Equal(t, domain.Point{X: 720, Y: 414}, m.Clamp(domain.Point{X: 790, Y: 450}, 80, 80))
	assert.Equal(t, domain.Point{X: 100, Y: 100}, m.Clamp(domain.Point{X: 100, Y: 100}, 80, 80))
}
