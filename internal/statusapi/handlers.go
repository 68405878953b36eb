package statusapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lwos/pkg/softtimer"
	"lwos/pkg/task"
)

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	s := h.k.Stats()
	respondOK(w, r, map[string]any{
		"status": "ok",
		"run_id": s.RunID,
		"ticks":  s.Ticks,
		"cycles": s.Cycles,
	})
}

func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, h.k.Stats())
}

// pathID parses the {id} URL parameter as a slot index.
func pathID(r *http.Request) (uint, bool) {
	n, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 0)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}

func badID(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusBadRequest, "invalid_parameter", "id must be a non-negative integer")
}

func (h *handlers) listTasks(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, h.k.Tasks())
}

func (h *handlers) getTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badID(w, r)
		return
	}
	v, err := h.k.Task(task.TaskID(id))
	if err != nil {
		respondKernelError(w, r, err)
		return
	}
	respondOK(w, r, v)
}

// taskAction wraps a state change; the reply is the task after the change,
// or just the id for a removal.
func (h *handlers) taskAction(op func(task.TaskID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, ok := pathID(r)
		if !ok {
			badID(w, r)
			return
		}
		id := task.TaskID(n)
		if err := op(id); err != nil {
			respondKernelError(w, r, err)
			return
		}
		if v, err := h.k.Task(id); err == nil {
			respondOK(w, r, v)
			return
		}
		respondOK(w, r, map[string]any{"id": id, "removed": true})
	}
}

func (h *handlers) listTimers(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, h.k.Timers())
}

func (h *handlers) getTimer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badID(w, r)
		return
	}
	v, err := h.k.Timer(softtimer.Handle(id))
	if err != nil {
		respondKernelError(w, r, err)
		return
	}
	respondOK(w, r, v)
}

type startRequest struct {
	Threshold   *uint64 `json:"threshold"`
	AutoRestart bool    `json:"auto_restart"`
}

func (h *handlers) startTimer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badID(w, r)
		return
	}
	var req startRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, r, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if req.Threshold == nil {
		respondError(w, r, http.StatusBadRequest, "invalid_body", "threshold is required")
		return
	}
	hd := softtimer.Handle(id)
	if err := h.k.StartTimer(hd, *req.Threshold, req.AutoRestart); err != nil {
		respondKernelError(w, r, err)
		return
	}
	h.replyTimer(w, r, hd)
}

func (h *handlers) timerAction(op func(softtimer.Handle) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			badID(w, r)
			return
		}
		hd := softtimer.Handle(id)
		if err := op(hd); err != nil {
			respondKernelError(w, r, err)
			return
		}
		h.replyTimer(w, r, hd)
	}
}

func (h *handlers) replyTimer(w http.ResponseWriter, r *http.Request, hd softtimer.Handle) {
	v, err := h.k.Timer(hd)
	if err != nil {
		respondKernelError(w, r, err)
		return
	}
	respondOK(w, r, v)
}

// signal reads the signal state, which consumes an auto-restart expiry.
func (h *handlers) signal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badID(w, r)
		return
	}
	st, err := h.k.Signal(softtimer.Handle(id))
	if err != nil {
		respondKernelError(w, r, err)
		return
	}
	respondOK(w, r, map[string]any{"handle": id, "signal": st})
}

// liveReport builds a snapshot now without persisting it.
func (h *handlers) liveReport(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, h.k.Report())
}

// lastReport serves the newest stored report, which may be from a previous run.
func (h *handlers) lastReport(w http.ResponseWriter, r *http.Request) {
	rep, ok, err := h.k.LastReport(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "storage", err.Error())
		return
	}
	if !ok {
		respondError(w, r, http.StatusNotFound, "no_report", "no report stored")
		return
	}
	respondOK(w, r, rep)
}
