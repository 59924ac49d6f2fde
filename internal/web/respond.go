package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	maxBodyBytes    = 1 << 20
	contentMsgpack  = "application/msgpack"
	contentXMsgpack = "application/x-msgpack"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeNegotiated writes v as msgpack when the client asks for it and as JSON
// otherwise.
func (s *Server) writeNegotiated(w http.ResponseWriter, r *http.Request, v any) {
	if !wantsMsgpack(r) {
		s.writeJSON(w, http.StatusOK, v)
		return
	}
	data, err := msgpack.Marshal(v)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("failed to encode msgpack: %w", err))
		return
	}
	w.Header().Set("Content-Type", contentMsgpack)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

func wantsMsgpack(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, contentMsgpack) || strings.Contains(accept, contentXMsgpack)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := classify(err)
	if apiErr.Status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "code", apiErr.Code, "error", err)
	}
	s.writeJSON(w, apiErr.Status, apiErr)
}

func decodeBody(r *http.Request, w http.ResponseWriter, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

// parseID extracts the {id} path variable and returns it as int64.
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, badRequest("invalid area id")
	}
	return id, nil
}

// parseScale reads the scale query parameter, defaulting to 1.
func parseScale(r *http.Request) (float64, error) {
	raw := r.URL.Query().Get("scale")
	if raw == "" {
		return 1, nil
	}
	scale, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, badRequest("invalid scale")
	}
	return scale, nil
}
