package host

import (
	"strings"

	"golang.org/x/time/rate"

	"lwos/internal/config"
	"lwos/internal/eventbus"
	"lwos/pkg/logx"
)

// Apply hot-reloads what can change without rebuilding the kernel: tick and
// cycle pacing, rules and the report schedule. Capacity and the declared
// task/timer sets need a restart; old is used to detect that.
func (h *Host) Apply(old, cfg *config.Config) error {
	k, err := config.ResolveKernel(cfg.Kernel)
	if err != nil {
		return err
	}
	if err := h.setReportSchedule(cfg.ReportSchedule()); err != nil {
		return err
	}

	prev := h.kcfg.Load()
	if k.TickInterval != prev.TickInterval {
		h.limiter.SetLimit(rate.Every(k.TickInterval))
	}
	if k.TickBurst != prev.TickBurst {
		h.limiter.SetBurst(k.TickBurst)
	}
	if k.CycleInterval != prev.CycleInterval {
		// keep only the newest interval
		select {
		case <-h.cycleReset:
		default:
		}
		h.cycleReset <- k.CycleInterval
	}
	// capacities stay as built
	k.TaskCapacity, k.TimerCapacity = prev.TaskCapacity, prev.TimerCapacity
	h.kcfg.Store(&k)

	rules := compileRules(cfg.Rules)
	h.mu.Lock()
	kept := rules[:0]
	for _, r := range rules {
		if _, ok := h.kn.timerIDs[r.timer]; !ok {
			h.log.Warn("rule skipped: timer not in running kernel", logx.String("timer", r.timer))
			continue
		}
		kept = append(kept, r)
	}
	h.kn.rules = kept
	h.mu.Unlock()

	if config.NeedsRebuild(old, cfg) {
		h.log.Warn("restart required to apply kernel, tasks or timers changes")
	}
	changed, _ := config.SummarizeConfigChange(old, cfg)
	h.publish(eventbus.ConfigApplied, map[string]string{"changed": strings.Join(changed, ",")})
	return nil
}
