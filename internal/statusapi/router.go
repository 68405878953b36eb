// Package statusapi exposes a running host over HTTP.
//
// All replies use the Response envelope. Kernel errors map to statuses:
// invalid parameters are 400, unknown tasks/timers 404, and capacity or
// registration conflicts 409.
package statusapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"lwos/internal/host"
	"lwos/internal/storage"
	"lwos/pkg/logx"
	"lwos/pkg/softtimer"
	"lwos/pkg/task"
)

// Kernel is the part of *host.Host the API drives.
type Kernel interface {
	Stats() host.Stats

	Tasks() []host.TaskView
	Task(id task.TaskID) (host.TaskView, error)
	SuspendTask(id task.TaskID) error
	ResumeTask(id task.TaskID) error
	WaitTask(id task.TaskID) error
	RemoveTask(id task.TaskID) error

	Timers() []host.TimerView
	Timer(h softtimer.Handle) (host.TimerView, error)
	StartTimer(h softtimer.Handle, threshold uint64, autoRestart bool) error
	RestartTimer(h softtimer.Handle) error
	StopTimer(h softtimer.Handle) error
	DisableTimer(h softtimer.Handle) error
	Signal(h softtimer.Handle) (softtimer.SignalState, error)

	Report() storage.Report
	LastReport(ctx context.Context) (storage.Report, bool, error)
}

var _ Kernel = (*host.Host)(nil)

type handlers struct {
	k Kernel
}

// NewRouter builds the API handler. /healthz is never behind the token.
func NewRouter(k Kernel, cfg Config, log logx.Logger) http.Handler {
	if log.IsZero() {
		log = logx.Nop()
	}
	h := &handlers{k: k}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))

	r.Get("/healthz", h.health)

	r.Group(func(r chi.Router) {
		r.Use(bearerAuth(cfg.Token))

		if cfg.Pprof {
			r.Mount("/debug", middleware.Profiler())
		}

		r.Route("/v1", func(r chi.Router) {
			r.Get("/stats", h.stats)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", h.listTasks)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.getTask)
					r.Delete("/", h.taskAction(k.RemoveTask))
					r.Post("/suspend", h.taskAction(k.SuspendTask))
					r.Post("/resume", h.taskAction(k.ResumeTask))
					r.Post("/wait", h.taskAction(k.WaitTask))
				})
			})

			r.Route("/timers", func(r chi.Router) {
				r.Get("/", h.listTimers)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.getTimer)
					r.Post("/start", h.startTimer)
					r.Post("/restart", h.timerAction(k.RestartTimer))
					r.Post("/stop", h.timerAction(k.StopTimer))
					r.Post("/disable", h.timerAction(k.DisableTimer))
				})
			})

			r.Get("/signals/{id}", h.signal)

			r.Get("/report", h.liveReport)
			r.Get("/reports/last", h.lastReport)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, "not_found", "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" not allowed")
	})
	return r
}
