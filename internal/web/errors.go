package web

import (
	"errors"
	"net/http"

	"github.com/vbonduro/floorplan/internal/canvas"
	"github.com/vbonduro/floorplan/internal/domain"
	"github.com/vbonduro/floorplan/internal/floorplan"
	"github.com/vbonduro/floorplan/internal/service"
)

// apiError is the JSON body of every error response.
type apiError struct {
	Status    int    `json:"-"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

func badRequest(message string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: "BAD_REQUEST", Message: message}
}

// classify maps an error onto a response. The most specific sentinel wins, so
// the order of the cases matters.
func classify(err error) *apiError {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var saveErr *floorplan.SaveError
	switch {
	case errors.Is(err, domain.ErrAreaNotFound):
		return &apiError{Status: http.StatusNotFound, Code: "AREA_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, floorplan.ErrUnknownTable):
		return &apiError{Status: http.StatusNotFound, Code: "TABLE_NOT_FOUND", Message: err.Error()}
	case errors.As(err, &saveErr):
		return &apiError{Status: http.StatusServiceUnavailable, Code: "SAVE_FAILED", Message: err.Error(), Retryable: saveErr.Retryable()}
	case errors.Is(err, domain.ErrStoreUnavailable):
		return &apiError{Status: http.StatusServiceUnavailable, Code: "STORE_UNAVAILABLE", Message: err.Error(), Retryable: true}
	case errors.Is(err, domain.ErrCorruptLayout):
		return &apiError{Status: http.StatusInternalServerError, Code: "CORRUPT_LAYOUT", Message: err.Error()}
	case errors.Is(err, floorplan.ErrInvalidReference),
		errors.Is(err, canvas.ErrInvalidScale),
		errors.Is(err, service.ErrInvalidName):
		return &apiError{Status: http.StatusBadRequest, Code: "INVALID_REFERENCE", Message: err.Error()}
	case errors.Is(err, floorplan.ErrInvalidTransition):
		return &apiError{Status: http.StatusConflict, Code: "INVALID_TRANSITION", Message: err.Error()}
	case errors.Is(err, service.ErrUnsavedChanges):
		return &apiError{Status: http.StatusConflict, Code: "UNSAVED_CHANGES", Message: err.Error()}
	case errors.Is(err, floorplan.ErrLoad):
		return &apiError{Status: http.StatusConflict, Code: "NOT_LOADED", Message: err.Error()}
	default:
		return &apiError{Status: http.StatusInternalServerError, Code: "INTERNAL", Message: "internal error"}
	}
}

func (e *apiError) Error() string { return e.Code + ": " + e.Message }
