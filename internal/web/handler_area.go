package web

import (
	"net/http"
	"strings"

	"github.com/vbonduro/floorplan/internal/domain"
	"github.com/vbonduro/floorplan/internal/floorplan"
)

const maxAreaNameLen = 200

type areaResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	CanvasWidth  float64 `json:"canvasWidth"`
	CanvasHeight float64 `json:"canvasHeight"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

func toAreaResponse(a *domain.Area) areaResponse {
	return areaResponse{
		ID:           a.ID,
		Name:         a.Name,
		CanvasWidth:  a.CanvasWidth,
		CanvasHeight: a.CanvasHeight,
		CreatedAt:    a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:    a.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func (s *Server) handleListAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := s.service.ListAreas(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]areaResponse, 0, len(areas))
	for _, a := range areas {
		out = append(out, toAreaResponse(a))
	}
	s.writeJSON(w, http.StatusOK, out)
}

type createAreaRequest struct {
	Name         string  `json:"name"`
	CanvasWidth  float64 `json:"canvasWidth"`
	CanvasHeight float64 `json:"canvasHeight"`
}

func (s *Server) handleCreateArea(w http.ResponseWriter, r *http.Request) {
	var req createAreaRequest
	if err := decodeBody(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(strings.TrimSpace(req.Name)) > maxAreaNameLen {
		s.writeError(w, r, badRequest("area name too long"))
		return
	}

	area, err := s.service.CreateArea(r.Context(), req.Name, req.CanvasWidth, req.CanvasHeight)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toAreaResponse(area))
}

func (s *Server) handleGetArea(w http.ResponseWriter, r *http.Request) {
	areaID, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	area, err := s.service.GetArea(r.Context(), areaID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toAreaResponse(area))
}

func (s *Server) handleDeleteArea(w http.ResponseWriter, r *http.Request) {
	areaID, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.service.DeleteArea(r.Context(), areaID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// openPlan resolves {id} to a loaded plan, writing the error response itself
// when that fails.
func (s *Server) openPlan(w http.ResponseWriter, r *http.Request) (*floorplan.FloorPlan, bool) {
	areaID, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	plan, err := s.service.Plan(r.Context(), areaID)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return plan, true
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.openPlan(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, plan.Snapshot())
}

func (s *Server) handleClosePlan(w http.ResponseWriter, r *http.Request) {
	areaID, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	discard := r.URL.Query().Get("discard") == "true"
	if err := s.service.ClosePlan(areaID, discard); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	areaID, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	scale, err := parseScale(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	scene, err := s.service.Scene(r.Context(), areaID, scale)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeNegotiated(w, r, scene)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	areaID, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.service.Save(r.Context(), areaID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"saved": true})
}

func (s *Server) handleDirty(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.openPlan(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"dirty": plan.Dirty()})
}
