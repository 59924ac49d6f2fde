package floorplan

import "context"

// saveCycle is one gateway write and everyone waiting on it. waiters counts
// the Save calls the write answers and is reported when it completes.
type saveCycle struct {
	done    chan struct{}
	err     error
	waiters int
}

func newSaveCycle() *saveCycle {
	return &saveCycle{done: make(chan struct{})}
}

// Save persists every table in logical units. At most one write is in flight;
// requests arriving meanwhile share a single follow-up write that captures the
// latest state. Cancelling ctx stops the caller waiting but never aborts a
// write that has been issued.
func (p *FloorPlan) Save(ctx context.Context) error {
	p.mu.Lock()
	if !p.loaded {
		p.mu.Unlock()
		return ErrNotLoaded
	}
	var c *saveCycle
	switch {
	case p.inFlight == nil:
		c = newSaveCycle()
		p.inFlight = c
		go p.runSaves(context.WithoutCancel(ctx), c)
	case p.pending == nil:
		c = newSaveCycle()
		p.pending = c
	default:
		c = p.pending
	}
	c.waiters++
	p.mu.Unlock()

	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *FloorPlan) runSaves(ctx context.Context, c *saveCycle) {
	for c != nil {
		p.mu.Lock()
		layout := p.layoutLocked()
		rev := p.revision
		p.mu.Unlock()

		err := p.gateway.SaveArea(ctx, p.areaID, layout)

		p.mu.Lock()
		ch := Change{Kind: ChangeSaved}
		if err != nil {
			c.err = &SaveError{Err: err}
			ch.Kind = ChangeSaveFailed
		} else if p.revision == rev {
			p.dirty = false
		}
		next := p.pending
		p.pending = nil
		if err != nil && next != nil {
			// no follow-up after a failure; retrying is up to the user
			next.err = c.err
			close(next.done)
			next = nil
		}
		p.inFlight = next
		ch.Dirty = p.dirty
		requests := c.waiters
		fns := p.listenersLocked()
		p.mu.Unlock()

		if err != nil {
			p.logger.Error("floor plan save failed", "area_id", p.areaID, "tables", len(layout.Tables), "requests", requests, "error", err)
		} else {
			p.logger.Info("floor plan saved", "area_id", p.areaID, "tables", len(layout.Tables), "requests", requests, "dirty", ch.Dirty)
		}
		notify(fns, ch)
		close(c.done)
		c = next
	}
}
