package host

import (
	"context"
	"encoding/json"
	"time"

	"lwos/internal/eventbus"
	"lwos/internal/storage"
	"lwos/pkg/logx"
)

// tickLoop advances every timer once per limiter permit. After a stall the
// limiter hands out up to tick_burst permits at once so timers catch up.
func (h *Host) tickLoop(ctx context.Context) error {
	for {
		if err := h.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		h.kn.timers.Update()
		h.ticks.Add(1)
	}
}

func (h *Host) cycleLoop(ctx context.Context) error {
	t := time.NewTicker(h.kcfg.Load().CycleInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case d := <-h.cycleReset:
			t.Reset(d)
		case <-t.C:
			h.Cycle()
		}
	}
}

// Cycle runs one scheduler cycle and then applies signal rules.
func (h *Host) Cycle() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.kn.sched.Process()
	h.cycles.Add(1)
	h.evaluateRulesLocked()
}

// Tick advances every timer by one tick outside the paced loop.
func (h *Host) Tick() {
	h.kn.timers.Update()
	h.ticks.Add(1)
}

func (h *Host) eventSink(ctx context.Context, events <-chan eventbus.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			rec := storage.EventRecord{At: e.Time, Type: e.Type}
			if e.Data != nil {
				b, err := json.Marshal(e.Data)
				if err != nil {
					h.log.Debug("event not serializable", logx.String("type", e.Type), logx.Err(err))
					continue
				}
				rec.Data = b
			}
			wctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err := h.store.AppendEvent(wctx, rec)
			cancel()
			if err != nil && ctx.Err() == nil {
				h.log.Warn("event append failed", logx.String("type", e.Type), logx.Err(err))
			}
		}
	}
}

// watchdogLoop pings systemd only while the cycle counter moves, so a
// wedged task body eventually gets the unit restarted.
func (h *Host) watchdogLoop(ctx context.Context, every time.Duration) error {
	if every <= 0 {
		return nil
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			c := h.cycles.Load()
			if c == h.lastPinged.Load() {
				h.log.Warn("no cycle progress; skipping watchdog ping", logx.Uint64("cycles", c))
				continue
			}
			h.lastPinged.Store(c)
			if _, err := h.notifier.Notify(notifyWatchdog); err != nil {
				h.log.Warn("systemd watchdog ping failed", logx.Err(err))
			}
		}
	}
}
