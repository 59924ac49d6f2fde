package floorplan

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/floorplan/internal/canvas"
	"github.com/vbonduro/floorplan/internal/domain"
)

func TestSaveClearsDirty(t *testing.T) {
	p, gw := newLoadedPlan(t)
	require.NoError(t, p.MoveTable("T1", domain.Point{X: 40, Y: 40}))

	require.NoError(t, p.Save(context.Background()))
	assert.False(t, p.Dirty())
	require.Equal(t, 1, gw.saveCount())

	saved := gw.lastSave()
	assert.Len(t, saved.Tables, 3)
	assert.Equal(t, domain.Point{X: 40, Y: 40}, saved.Tables[0].Position)
	assert.Equal(t, []domain.Assignment{{TableID: "T2", PartySize: 4}}, saved.Assignments)
}

func TestSavePersistsLogicalUnits(t *testing.T) {
	p, gw := newLoadedPlan(t)

	// drag at scale 2: pointer moves 100 rendered px = 50 logical units
	require.NoError(t, p.BeginDrag("T1", pointer(20, 20, 2)))
	require.NoError(t, p.PointerUp(pointer(120, 20, 2)))
	require.NoError(t, p.Save(context.Background()))

	saved := gw.lastSave().Tables[0]
	assert.Equal(t, domain.Point{X: 60, Y: 10}, saved.Position)
	assert.Equal(t, 80.0, saved.Width)
}

func TestSaveFailureStaysDirty(t *testing.T) {
	p, gw := newLoadedPlan(t)
	gw.saveErr = errors.New("connection reset")
	require.NoError(t, p.MoveTable("T1", domain.Point{X: 40, Y: 40}))

	var changes []Change
	p.Subscribe(func(c Change) { changes = append(changes, c) })

	err := p.Save(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSave)

	var saveErr *SaveError
	require.ErrorAs(t, err, &saveErr)
	assert.True(t, saveErr.Retryable())
	assert.True(t, p.Dirty())
	assert.Equal(t, 1, gw.saveCount(), "no automatic retry")
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeSaveFailed, changes[0].Kind)

	// editing continues while persistence is down
	require.NoError(t, p.MoveTable("T1", domain.Point{X: 41, Y: 41}))

	gw.saveErr = nil
	require.NoError(t, p.Save(context.Background()))
	assert.False(t, p.Dirty())
}

func TestSaveCoalescesPendingRequests(t *testing.T) {
	var logs bytes.Buffer
	p, gw := newLoadedPlan(t, WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))))
	gw.block = true
	ctx := context.Background()

	errs := make(chan error, 3)
	go func() { errs <- p.Save(ctx) }()
	<-gw.started

	go func() { errs <- p.Save(ctx) }()
	go func() { errs <- p.Save(ctx) }()
	require.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.pending != nil && p.pending.waiters == 2
	}, time.Second, time.Millisecond)

	require.NoError(t, p.MoveTable("T1", domain.Point{X: 99, Y: 99}))

	gw.release <- struct{}{}
	<-gw.started
	assert.True(t, p.Dirty(), "edit made during the first write is still unsaved")
	gw.release <- struct{}{}

	for range 3 {
		require.NoError(t, <-errs)
	}
	assert.Equal(t, 2, gw.saveCount())
	assert.Equal(t, domain.Point{X: 99, Y: 99}, gw.lastSave().Tables[0].Position)
	assert.False(t, p.Dirty())
	assert.Contains(t, logs.String(), `"requests":1`)
	assert.Contains(t, logs.String(), `"requests":2`, "the follow-up write answers both queued calls")
}

func TestSaveDuringDragWritesDragOrigin(t *testing.T) {
	p, gw := newLoadedPlan(t)

	require.NoError(t, p.BeginDrag("T1", pointer(10, 10, 1)))
	require.NoError(t, p.PointerMove(pointer(300, 300, 1)))
	require.NoError(t, p.Save(context.Background()))

	assert.Equal(t, domain.Point{X: 10, Y: 10}, gw.lastSave().Tables[0].Position, "uncommitted drag position is not persisted")
	tbl, _ := p.Table("T1")
	assert.Equal(t, domain.Point{X: 300, Y: 300}, tbl.Position, "live position is kept in memory")
	assert.Equal(t, ModeDragging, p.Mode())

	require.NoError(t, p.CancelDrag())
	tbl, _ = p.Table("T1")
	assert.Equal(t, gw.lastSave().Tables[0].Position, tbl.Position)
	assert.False(t, p.Dirty())
}

func TestSaveDuringDragThenCommitStaysDirty(t *testing.T) {
	p, gw := newLoadedPlan(t)

	require.NoError(t, p.BeginDrag("T1", pointer(10, 10, 1)))
	require.NoError(t, p.PointerMove(pointer(300, 300, 1)))
	require.NoError(t, p.Save(context.Background()))
	require.NoError(t, p.EndDrag())

	assert.True(t, p.Dirty(), "the committed drop differs from what was saved")
	require.NoError(t, p.Save(context.Background()))
	assert.Equal(t, domain.Point{X: 300, Y: 300}, gw.lastSave().Tables[0].Position)
	assert.False(t, p.Dirty())
}

func TestSaveFailureFailsPendingWaiters(t *testing.T) {
	p, gw := newLoadedPlan(t)
	gw.block = true
	gw.saveErr = errors.New("disk full")
	ctx := context.Background()

	errs := make(chan error, 2)
	go func() { errs <- p.Save(ctx) }()
	<-gw.started
	go func() { errs <- p.Save(ctx) }()
	require.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.pending != nil
	}, time.Second, time.Millisecond)

	gw.release <- struct{}{}
	for range 2 {
		assert.ErrorIs(t, <-errs, ErrSave)
	}
	assert.Equal(t, 1, gw.saveCount())
}

func TestSaveCallerCancellationDoesNotAbortWrite(t *testing.T) {
	p, gw := newLoadedPlan(t)
	gw.block = true
	require.NoError(t, p.MoveTable("T1", domain.Point{X: 5, Y: 5}))

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() { errs <- p.Save(ctx) }()
	<-gw.started
	cancel()
	assert.ErrorIs(t, <-errs, context.Canceled)

	gw.release <- struct{}{}
	require.Eventually(t, func() bool { return !p.Dirty() }, time.Second, time.Millisecond)
	assert.Equal(t, 1, gw.saveCount())
}

func TestSaveEmptyPlan(t *testing.T) {
	gw := newMemGateway(nil)
	p := New(7, canvas.NewModel(800, 494), gw)
	require.NoError(t, p.Load(context.Background()))

	require.NoError(t, p.Save(context.Background()))
	assert.Empty(t, gw.lastSave().Tables)
}
