package web

import (
	"fmt"
	"net/http"

	"github.com/vbonduro/floorplan/internal/floorplan"
)

type selectRequest struct {
	TableID string `json:"tableId"`
	Multi   bool   `json:"multi"`
}

type selectionResponse struct {
	Selected []string `json:"selected"`
}

// handleSelect selects a table, or clears the selection when tableId is empty.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.openPlan(w, r)
	if !ok {
		return
	}
	var req selectRequest
	if err := decodeBody(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.TableID == "" {
		plan.ClearSelection()
	} else if err := plan.SelectTable(req.TableID, req.Multi); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, selectionResponse{Selected: nonNil(plan.Selection())})
}

type highlightRequest struct {
	TableIDs []string `json:"tableIds"`
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.openPlan(w, r)
	if !ok {
		return
	}
	var req highlightRequest
	if err := decodeBody(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	plan.SetHighlight(req.TableIDs)
	w.WriteHeader(http.StatusNoContent)
}

type pointerResponse struct {
	Hit        string   `json:"hit,omitempty"`
	Mode       string   `json:"mode"`
	Dirty      bool     `json:"dirty"`
	Selected   []string `json:"selected"`
	DraggingID string   `json:"draggingId,omitempty"`
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.openPlan(w, r)
	if !ok {
		return
	}

	action := r.PathValue("action")
	var ev floorplan.PointerEvent
	if action != "cancel" {
		if err := decodeBody(r, w, &ev); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	var (
		hit string
		err error
	)
	switch action {
	case "down":
		hit, err = plan.PointerDown(ev)
	case "move":
		err = plan.PointerMove(ev)
	case "up":
		err = plan.PointerUp(ev)
	case "cancel":
		err = plan.CancelDrag()
	default:
		err = badRequest(fmt.Sprintf("unknown pointer action %q", action))
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	snap := plan.Snapshot()
	s.writeJSON(w, http.StatusOK, pointerResponse{
		Hit:        hit,
		Mode:       snap.Mode.String(),
		Dirty:      snap.Dirty,
		Selected:   nonNil(plan.Selection()),
		DraggingID: snap.DraggingID,
	})
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
