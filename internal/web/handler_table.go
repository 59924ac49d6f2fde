package web

import (
	"net/http"

	"github.com/vbonduro/floorplan/internal/domain"
)

type addTableRequest struct {
	Shape    domain.Shape `json:"shape"`
	Position domain.Point `json:"position"`
}

func (s *Server) handleAddTable(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.openPlan(w, r)
	if !ok {
		return
	}
	var req addTableRequest
	if err := decodeBody(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := plan.AddTable(req.Shape, req.Position)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	table, _ := plan.Table(id)
	s.writeJSON(w, http.StatusCreated, table)
}

func (s *Server) handleRemoveTable(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.openPlan(w, r)
	if !ok {
		return
	}
	if err := plan.RemoveTable(r.PathValue("tid")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMoveTable(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.openPlan(w, r)
	if !ok {
		return
	}
	var pos domain.Point
	if err := decodeBody(r, w, &pos); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.respondTable(w, r, r.PathValue("tid"), func(id string) error {
		return plan.MoveTable(id, pos)
	}, plan.Table)
}

type resizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s *Server) handleResizeTable(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.openPlan(w, r)
	if !ok {
		return
	}
	var req resizeRequest
	if err := decodeBody(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.respondTable(w, r, r.PathValue("tid"), func(id string) error {
		return plan.ResizeTable(id, req.Width, req.Height)
	}, plan.Table)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.openPlan(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := decodeBody(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		s.writeError(w, r, badRequest(err.Error()))
		return
	}

	s.respondTable(w, r, r.PathValue("tid"), func(id string) error {
		return plan.SetStatus(id, status)
	}, plan.Table)
}

type assignRequest struct {
	PartySize int    `json:"partySize"`
	GuestRef  string `json:"guestRef"`
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.openPlan(w, r)
	if !ok {
		return
	}
	var req assignRequest
	if err := decodeBody(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.respondTable(w, r, r.PathValue("tid"), func(id string) error {
		return plan.Assign(id, req.PartySize, req.GuestRef)
	}, plan.Table)
}

func (s *Server) handleUnassign(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.openPlan(w, r)
	if !ok {
		return
	}
	s.respondTable(w, r, r.PathValue("tid"), plan.Unassign, plan.Table)
}

// respondTable applies op to table id and answers with the table's new state.
func (s *Server) respondTable(w http.ResponseWriter, r *http.Request, id string, op func(string) error, get func(string) (domain.Table, bool)) {
	if err := op(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	table, _ := get(id)
	s.writeJSON(w, http.StatusOK, table)
}
