package statusapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"lwos/pkg/scheduler"
	"lwos/pkg/softtimer"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Status    string    `json:"status"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func requestID() string {
	return "req_" + uuid.New().String()[:8]
}

func respondOK(w http.ResponseWriter, r *http.Request, data any) {
	respondJSON(w, r, http.StatusOK, data, nil)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	respondJSON(w, r, status, nil, &APIError{Code: code, Message: msg})
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any, apiErr *APIError) {
	resp := Response{
		Status:    "ok",
		RequestID: RequestIDFromContext(r.Context()),
		Timestamp: time.Now().UTC(),
		Data:      data,
		Error:     apiErr,
	}
	if apiErr != nil {
		resp.Status = "error"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// respondKernelError maps scheduler and timer errors to HTTP statuses.
func respondKernelError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, scheduler.ErrInvalidParameter), errors.Is(err, softtimer.ErrInvalidParameter):
		status, code = http.StatusBadRequest, "invalid_parameter"
	case errors.Is(err, scheduler.ErrNoSuchTaskID):
		status, code = http.StatusNotFound, "no_such_task"
	case errors.Is(err, softtimer.ErrNoSuchTimer):
		status, code = http.StatusNotFound, "no_such_timer"
	case errors.Is(err, scheduler.ErrLimitExceeded), errors.Is(err, softtimer.ErrLimitExceeded):
		status, code = http.StatusConflict, "limit_exceeded"
	case errors.Is(err, softtimer.ErrNotRegistered):
		status, code = http.StatusConflict, "not_registered"
	}
	respondError(w, r, status, code, err.Error())
}
