package render

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/floorplan/internal/canvas"
	"github.com/vbonduro/floorplan/internal/domain"
	"github.com/vbonduro/floorplan/internal/floorplan"
)

type staticGateway struct{ layout *domain.Layout }

func (g staticGateway) LoadArea(context.Context, int64) (*domain.Layout, error) {
	return g.layout, nil
}

func (g staticGateway) SaveArea(context.Context, int64, *domain.Layout) error { return nil }

func TestTableRendersShapeAndStatus(t *testing.T) {
	pal := DefaultPalette()
	d := Table(TableInput{
		Shape: domain.ShapeRectangle, Status: domain.StatusOccupied, Number: "12",
		Width: 120, Height: 80, Scale: 0.5,
	}, pal)

	assert.Equal(t, OutlineRect, d.Outline.Kind)
	assert.Equal(t, 60.0, d.Outline.Width)
	assert.Equal(t, 40.0, d.Outline.Height)
	assert.Equal(t, pal.Statuses[domain.StatusOccupied].Fill, d.Fill)
	assert.Equal(t, "Occupied", d.StatusLabel)
	assert.Equal(t, "12", d.Label.Value)
	assert.Equal(t, 30.0, d.Label.X)
	assert.Equal(t, 20.0, d.Label.Y)
	assert.Nil(t, d.Selection)
	assert.False(t, d.Placeholder)
}

func TestTableRoundUsesSmallerSide(t *testing.T) {
	d := Table(TableInput{Shape: domain.ShapeRound, Width: 100, Height: 60, Scale: 1}, DefaultPalette())

	assert.Equal(t, OutlineCircle, d.Outline.Kind)
	assert.Equal(t, 60.0, d.Outline.Width)
	assert.Equal(t, 20.0, d.Outline.X)
	assert.Equal(t, 0.0, d.Outline.Y)
}

func TestTableUnknownShapeFallsBackToCircle(t *testing.T) {
	for _, shape := range []domain.Shape{domain.ShapeUnknown, domain.Shape(42)} {
		d := Table(TableInput{Shape: shape, Width: 80, Height: 80, Scale: 1}, DefaultPalette())
		assert.Equal(t, OutlineCircle, d.Outline.Kind)
		assert.True(t, d.Placeholder)
	}
}

func TestTableSelectionRing(t *testing.T) {
	pal := DefaultPalette()
	d := Table(TableInput{Shape: domain.ShapeSquare, Width: 80, Height: 80, Scale: 2, Selected: true}, pal)

	require.NotNil(t, d.Selection)
	assert.Equal(t, pal.Selection, d.Selection.Stroke)
	assert.Equal(t, -8.0, d.Selection.Outline.X)
	assert.Equal(t, 176.0, d.Selection.Outline.Width)
	assert.Equal(t, 16.0, d.Selection.Outline.CornerRadius)
}

func TestTableIsDeterministic(t *testing.T) {
	in := TableInput{Shape: domain.ShapeBooth, Status: domain.StatusReserved, Number: "7", Width: 120, Height: 60, Scale: 1.25, Selected: true}
	first := Table(in, DefaultPalette())
	for range 5 {
		assert.Equal(t, first, Table(in, DefaultPalette()))
	}
}

func TestBadge(t *testing.T) {
	pal := DefaultPalette()
	assert.Nil(t, Badge(nil, 80, 1, pal))

	b := Badge(&domain.Assignment{TableID: "T2", PartySize: 4}, 80, 1.5, pal)
	require.NotNil(t, b)
	assert.Equal(t, "4", b.Text)
	assert.Equal(t, 114.0, b.CX)
	assert.Equal(t, 6.0, b.CY)
	assert.Equal(t, 18.0, b.Radius)
}

func TestBuildSceneScenarioA(t *testing.T) {
	layout := &domain.Layout{
		Tables: []domain.Table{
			{ID: "T1", Shape: domain.ShapeSquare, Number: "1", Position: domain.Point{X: 10, Y: 10}, Width: 80, Height: 80, Status: domain.StatusAvailable},
			{ID: "T2", Shape: domain.ShapeRectangle, Number: "2", Position: domain.Point{X: 200, Y: 50}, Width: 80, Height: 120, Status: domain.StatusOccupied},
		},
		Assignments: []domain.Assignment{{TableID: "T2", PartySize: 4}},
	}
	model := canvas.NewModel(800, 494)
	p := floorplan.New(1, model, staticGateway{layout: layout})
	require.NoError(t, p.Load(context.Background()))
	require.NoError(t, p.SelectTable("T1", false))
	p.SetHighlight([]string{"T2"})

	scene, err := BuildScene(p.Snapshot(), model, 1.5, DefaultPalette())
	require.NoError(t, err)

	assert.Equal(t, 1200.0, scene.Width)
	assert.Equal(t, 741.0, scene.Height)
	assert.Equal(t, 30.0, scene.GridSpacing)
	require.Len(t, scene.Items, 2)

	t1, t2 := scene.Items[0], scene.Items[1]
	assert.Equal(t, 15.0, t1.X)
	assert.Equal(t, 15.0, t1.Y)
	assert.Nil(t, t1.Badge)
	assert.True(t, t1.Selected)
	assert.NotNil(t, t1.Visual.Selection)

	assert.Equal(t, 300.0, t2.X)
	assert.Equal(t, 75.0, t2.Y)
	require.NotNil(t, t2.Badge)
	assert.Equal(t, "4", t2.Badge.Text)
	assert.True(t, t2.Highlighted)
	assert.Nil(t, t1.Visual.Highlight)
	require.NotNil(t, t2.Visual.Highlight)
	assert.Equal(t, DefaultPalette().Highlight, t2.Visual.Highlight.Stroke)
	assert.Equal(t, -12.0, t2.Visual.Highlight.Outline.X, "ring inflated by 8 logical units at scale 1.5")
}

func TestHighlightUsesPaletteOverride(t *testing.T) {
	pal, err := LoadPalette(strings.NewReader("highlight: \"#00BCD4\"\n"))
	require.NoError(t, err)

	d := Table(TableInput{Shape: domain.ShapeSquare, Width: 80, Height: 80, Scale: 1, Highlighted: true}, pal)
	require.NotNil(t, d.Highlight)
	assert.Equal(t, "#00BCD4", d.Highlight.Stroke)
	assert.Equal(t, 96.0, d.Highlight.Outline.Width)
	assert.Nil(t, d.Selection)
}

func TestBuildSceneRejectsBadScale(t *testing.T) {
	_, err := BuildScene(floorplan.Snapshot{}, canvas.NewModel(800, 494), 0, DefaultPalette())
	assert.ErrorIs(t, err, canvas.ErrInvalidScale)
}

func TestLoadPaletteOverrides(t *testing.T) {
	src := `
statuses:
  occupied:
    fill: "#000000"
  blocked:
    label: Out of service
selection: "#00FF00"
badge:
  text: "#111111"
`
	pal, err := LoadPalette(strings.NewReader(src))
	require.NoError(t, err)

	def := DefaultPalette()
	assert.Equal(t, "#000000", pal.Style(domain.StatusOccupied).Fill)
	assert.Equal(t, def.Statuses[domain.StatusOccupied].Stroke, pal.Style(domain.StatusOccupied).Stroke)
	assert.Equal(t, "Out of service", pal.Style(domain.StatusBlocked).Label)
	assert.Equal(t, "#00FF00", pal.Selection)
	assert.Equal(t, "#111111", pal.BadgeText)
	assert.Equal(t, def.BadgeFill, pal.BadgeFill)
}

func TestLoadPaletteRejectsUnknownStatus(t *testing.T) {
	_, err := LoadPalette(strings.NewReader("statuses:\n  dirty:\n    fill: red\n"))
	assert.Error(t, err)
}
