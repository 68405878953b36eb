package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"lwos/internal/config"
	"lwos/internal/eventbus"
	"lwos/internal/runtime/supervisor"
	"lwos/internal/storage"
	"lwos/pkg/logx"
	"lwos/pkg/softtimer"
	"lwos/pkg/task"
)

type Host struct {
	log      logx.Logger
	bus      eventbus.Bus
	store    storage.Store
	notifier Notifier

	runID   string
	started time.Time

	// mu guards the scheduler, task bookkeeping and rules.
	mu sync.Mutex
	kn *kernel
	// prevSignaled tracks one-shot timers already reported as signaled.
	prevSignaled map[softtimer.Handle]bool

	kcfg       atomic.Pointer[config.Kernel]
	limiter    *rate.Limiter
	cycleReset chan time.Duration

	ticks      atomic.Uint64
	cycles     atomic.Uint64
	lastPinged atomic.Uint64

	cronMu     sync.Mutex
	cron       *cron.Cron
	reportSpec string
	reportID   cron.EntryID

	sup *supervisor.Supervisor
}

type Option func(*Host)

func WithLogger(log logx.Logger) Option { return func(h *Host) { h.log = log } }

func WithBus(bus eventbus.Bus) Option { return func(h *Host) { h.bus = bus } }

// WithStore enables report and event persistence. A nil store disables it.
func WithStore(st storage.Store) Option { return func(h *Host) { h.store = st } }

// WithNotifier replaces the systemd notifier (tests use a recorder).
func WithNotifier(n Notifier) Option { return func(h *Host) { h.notifier = n } }

// New builds the kernel described by cfg. Nothing runs until Start.
func New(cfg *config.Config, opts ...Option) (*Host, error) {
	if cfg == nil {
		return nil, errors.New("host: nil config")
	}
	k, err := config.ResolveKernel(cfg.Kernel)
	if err != nil {
		return nil, err
	}

	h := &Host{
		runID:        uuid.NewString(),
		prevSignaled: map[softtimer.Handle]bool{},
		cycleReset:   make(chan time.Duration, 1),
		notifier:     nopNotifier{},
	}
	for _, o := range opts {
		o(h)
	}
	if h.log.IsZero() {
		h.log = logx.Nop()
	}
	if h.bus == nil {
		h.bus = eventbus.New()
	}
	h.log = h.log.With(logx.String("comp", "host"), logx.String("run_id", h.runID))

	kn, err := buildKernel(cfg, k, h.log)
	if err != nil {
		return nil, err
	}
	h.kn = kn
	h.kcfg.Store(&k)
	h.limiter = rate.NewLimiter(rate.Every(k.TickInterval), k.TickBurst)

	h.cron = cron.New(cron.WithParser(config.ReportParser))
	if err := h.setReportSchedule(cfg.ReportSchedule()); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Host) Bus() eventbus.Bus { return h.bus }

// Start launches the loops. It returns once they are running.
func (h *Host) Start(ctx context.Context) error {
	if h.sup != nil {
		return errors.New("host: already started")
	}
	h.logPreviousReport(ctx)
	h.started = time.Now()
	h.sup = supervisor.New(ctx, supervisor.WithLogger(h.log), supervisor.WithCancelOnError(true))

	h.sup.Go("kernel.tick", h.tickLoop)
	h.sup.Go("kernel.cycle", h.cycleLoop)
	if h.store != nil {
		events, unsub := h.bus.Subscribe(256)
		h.sup.Go("storage.events", func(ctx context.Context) error {
			defer unsub()
			return h.eventSink(ctx, events)
		})
	}
	if wd, ok := h.notifier.Watchdog(); ok {
		h.sup.Go("systemd.watchdog", func(ctx context.Context) error {
			return h.watchdogLoop(ctx, wd/2)
		})
	}
	h.cron.Start()

	k := h.kcfg.Load()
	h.log.Info("host started",
		logx.Int("task_capacity", k.TaskCapacity),
		logx.Int("timer_capacity", k.TimerCapacity),
		logx.Duration("tick_interval", k.TickInterval),
		logx.Duration("cycle_interval", k.CycleInterval),
	)
	if _, err := h.notifier.Notify(notifyReady); err != nil {
		h.log.Warn("systemd notify failed", logx.Err(err))
	}
	return nil
}

// Done is closed when the host stops, either through Stop or a loop failure.
func (h *Host) Done() <-chan struct{} {
	if h.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return h.sup.Context().Done()
}

// Err returns the first loop failure, if any.
func (h *Host) Err() error {
	if h.sup == nil {
		return nil
	}
	return h.sup.Err()
}

// Stop halts the loops and writes a final report. The store is left open.
func (h *Host) Stop(ctx context.Context) error {
	if h.sup == nil {
		return nil
	}
	if _, err := h.notifier.Notify(notifyStopping); err != nil {
		h.log.Warn("systemd notify failed", logx.Err(err))
	}
	select {
	case <-h.cron.Stop().Done():
	case <-ctx.Done():
	}
	err := h.sup.Stop(ctx)
	h.report()
	h.log.Info("host stopped",
		logx.Uint64("ticks", h.ticks.Load()),
		logx.Uint64("cycles", h.cycles.Load()),
	)
	return err
}

func (h *Host) publish(typ string, data any) {
	h.bus.Publish(eventbus.Event{Type: typ, Data: data})
}

func (h *Host) taskName(id task.TaskID) string {
	if m := h.kn.tasks[id]; m != nil {
		return m.name
	}
	return fmt.Sprintf("#%d", id)
}
