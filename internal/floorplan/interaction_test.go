package floorplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/floorplan/internal/domain"
)

func pointer(x, y, scale float64) PointerEvent {
	return PointerEvent{Pos: domain.Point{X: x, Y: y}, Scale: scale}
}

func TestDragKeepsPointerOffset(t *testing.T) {
	p, _ := newLoadedPlan(t)

	// grab T1 20 logical units inside its origin at scale 2
	hit, err := p.PointerDown(pointer(60, 60, 2))
	require.NoError(t, err)
	assert.Equal(t, "T1", hit)
	assert.Equal(t, ModeDragging, p.Mode())

	tbl, _ := p.Table("T1")
	assert.Equal(t, domain.Point{X: 10, Y: 10}, tbl.Position, "no snap on pointer down")

	require.NoError(t, p.PointerMove(pointer(160, 100, 2)))
	tbl, _ = p.Table("T1")
	assert.Equal(t, domain.Point{X: 60, Y: 30}, tbl.Position, "live update on move")
	assert.False(t, p.Dirty(), "moves are not committed until release")

	require.NoError(t, p.PointerUp(pointer(260, 200, 2)))
	tbl, _ = p.Table("T1")
	assert.Equal(t, domain.Point{X: 110, Y: 80}, tbl.Position)
	assert.Equal(t, ModeIdle, p.Mode())
	assert.True(t, p.Dirty())
}

func TestDragCancelRestoresPosition(t *testing.T) {
	p, _ := newLoadedPlan(t)

	require.NoError(t, p.BeginDrag("T1", pointer(10, 10, 1)))
	require.NoError(t, p.PointerMove(pointer(300, 300, 1)))
	tbl, _ := p.Table("T1")
	assert.Equal(t, domain.Point{X: 300, Y: 300}, tbl.Position)

	require.NoError(t, p.CancelDrag())
	tbl, _ = p.Table("T1")
	assert.Equal(t, domain.Point{X: 10, Y: 10}, tbl.Position)
	assert.False(t, p.Dirty())
	assert.Equal(t, ModeIdle, p.Mode())
}

func TestCancelDragKeepsExistingDirtyFlag(t *testing.T) {
	p, _ := newLoadedPlan(t)
	require.NoError(t, p.ResizeTable("T3", 90, 90))

	require.NoError(t, p.BeginDrag("T1", pointer(10, 10, 1)))
	require.NoError(t, p.CancelDrag())
	assert.True(t, p.Dirty())
}

func TestOnlyOneDragAtATime(t *testing.T) {
	p, _ := newLoadedPlan(t)

	require.NoError(t, p.BeginDrag("T1", pointer(20, 20, 1)))
	assert.ErrorIs(t, p.BeginDrag("T2", pointer(210, 60, 1)), ErrDragInProgress)

	_, err := p.PointerDown(pointer(210, 60, 1))
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, p.EndDrag())
	require.NoError(t, p.BeginDrag("T2", pointer(210, 60, 1)))
}

func TestDragWithoutActiveDrag(t *testing.T) {
	p, _ := newLoadedPlan(t)

	assert.ErrorIs(t, p.PointerMove(pointer(1, 1, 1)), ErrNotDragging)
	assert.ErrorIs(t, p.PointerUp(pointer(1, 1, 1)), ErrNotDragging)
	assert.ErrorIs(t, p.CancelDrag(), ErrNotDragging)
	assert.ErrorIs(t, p.EndDrag(), ErrNotDragging)
}

func TestClickWithoutMovingIsNotAnEdit(t *testing.T) {
	p, _ := newLoadedPlan(t)

	_, err := p.PointerDown(pointer(30, 30, 1))
	require.NoError(t, err)
	require.NoError(t, p.PointerUp(pointer(30, 30, 1)))
	assert.False(t, p.Dirty())
	assert.Equal(t, []string{"T1"}, p.Selection())
}

func TestPointerSelection(t *testing.T) {
	p, _ := newLoadedPlan(t)

	_, err := p.PointerDown(pointer(30, 30, 1))
	require.NoError(t, err)
	require.NoError(t, p.EndDrag())

	ev := pointer(240, 100, 1)
	ev.Modifier = true
	_, err = p.PointerDown(ev)
	require.NoError(t, err)
	require.NoError(t, p.EndDrag())
	assert.ElementsMatch(t, []string{"T1", "T2"}, p.Selection())

	// modifier-click on a selected table toggles it off and starts no drag
	_, err = p.PointerDown(ev)
	require.NoError(t, err)
	assert.Equal(t, ModeIdle, p.Mode())
	assert.Equal(t, []string{"T1"}, p.Selection())

	hit, err := p.PointerDown(pointer(700, 450, 1))
	require.NoError(t, err)
	assert.Empty(t, hit)
	assert.Empty(t, p.Selection())
	assert.Equal(t, ModeIdle, p.Mode())
}

func TestPointerHitsTopmostTable(t *testing.T) {
	p, _ := newLoadedPlan(t)
	require.NoError(t, p.MoveTable("T3", domain.Point{X: 20, Y: 20}))

	hit, err := p.PointerDown(pointer(50, 50, 1))
	require.NoError(t, err)
	assert.Equal(t, "T3", hit)
}

func TestPointerRejectsInvalidScale(t *testing.T) {
	p, _ := newLoadedPlan(t)

	_, err := p.PointerDown(pointer(30, 30, 0))
	assert.ErrorIs(t, err, ErrInvalidReference)
	assert.Equal(t, ModeIdle, p.Mode())
}

func TestDropOntoAnotherTableRollsBack(t *testing.T) {
	p, _ := newLoadedPlan(t, WithPlacement(Placement{RejectOverlap: true}))

	require.NoError(t, p.BeginDrag("T1", pointer(10, 10, 1)))
	require.NoError(t, p.PointerMove(pointer(210, 60, 1)), "overlap is allowed mid-drag")

	err := p.PointerUp(pointer(210, 60, 1))
	assert.ErrorIs(t, err, ErrPlacementRejected)
	tbl, _ := p.Table("T1")
	assert.Equal(t, domain.Point{X: 10, Y: 10}, tbl.Position)
	assert.Equal(t, ModeIdle, p.Mode())
	assert.False(t, p.Dirty())
}

func TestExplicitMoveDuringDragWins(t *testing.T) {
	p, _ := newLoadedPlan(t)

	require.NoError(t, p.BeginDrag("T1", pointer(10, 10, 1)))
	require.NoError(t, p.MoveTable("T1", domain.Point{X: 500, Y: 200}))
	assert.Equal(t, ModeIdle, p.Mode())

	assert.ErrorIs(t, p.CancelDrag(), ErrNotDragging)
	tbl, _ := p.Table("T1")
	assert.Equal(t, domain.Point{X: 500, Y: 200}, tbl.Position)
	assert.True(t, p.Dirty())
}

func TestExplicitResizeDuringDragWins(t *testing.T) {
	p, _ := newLoadedPlan(t)

	require.NoError(t, p.BeginDrag("T1", pointer(10, 10, 1)))
	require.NoError(t, p.PointerMove(pointer(60, 60, 1)))
	require.NoError(t, p.ResizeTable("T1", 100, 40))

	assert.ErrorIs(t, p.CancelDrag(), ErrNotDragging)
	tbl, _ := p.Table("T1")
	assert.Equal(t, domain.Point{X: 60, Y: 60}, tbl.Position)
	assert.Equal(t, 100.0, tbl.Width)
	assert.True(t, p.Dirty())
}

func TestMovingAnotherTableKeepsDrag(t *testing.T) {
	p, _ := newLoadedPlan(t)

	require.NoError(t, p.BeginDrag("T1", pointer(10, 10, 1)))
	require.NoError(t, p.MoveTable("T3", domain.Point{X: 600, Y: 300}))
	assert.Equal(t, ModeDragging, p.Mode())

	require.NoError(t, p.CancelDrag())
	tbl, _ := p.Table("T1")
	assert.Equal(t, domain.Point{X: 10, Y: 10}, tbl.Position)
}
