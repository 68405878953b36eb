package host

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"lwos/internal/config"
	"lwos/internal/eventbus"
	"lwos/internal/storage"
	"lwos/pkg/logx"
)

// setReportSchedule (re)registers the report job. An unchanged spec is a no-op.
func (h *Host) setReportSchedule(spec string) error {
	h.cronMu.Lock()
	defer h.cronMu.Unlock()
	if spec == h.reportSpec && h.reportID != 0 {
		return nil
	}
	sched, err := config.ReportParser.Parse(spec)
	if err != nil {
		return fmt.Errorf("report.schedule: %w", err)
	}
	if h.reportID != 0 {
		h.cron.Remove(h.reportID)
	}
	h.reportID = h.cron.Schedule(sched, cron.FuncJob(h.report))
	h.reportSpec = spec
	return nil
}

// Report builds a snapshot of the running kernel.
func (h *Host) Report() storage.Report {
	r := storage.Report{
		ID:     uuid.NewString(),
		At:     time.Now(),
		Ticks:  h.ticks.Load(),
		Cycles: h.cycles.Load(),
	}
	if !h.started.IsZero() {
		r.Uptime = time.Since(h.started).Round(time.Millisecond)
	}
	for _, t := range h.Tasks() {
		r.Tasks = append(r.Tasks, storage.TaskEntry{
			ID:    uint(t.ID),
			Name:  t.Name,
			State: t.State.String(),
			Runs:  t.Runs,
		})
	}
	for _, t := range h.Timers() {
		r.Timers = append(r.Timers, storage.TimerEntry{
			Handle:      uint(t.Handle),
			Name:        t.Name,
			State:       t.State.String(),
			Counter:     t.Counter,
			Threshold:   t.Threshold,
			AutoRestart: t.AutoRestart,
		})
	}
	return r
}

// LastReport returns the newest persisted report, which after a restart is
// the previous run's final one. ok is false when storage is disabled or empty.
func (h *Host) LastReport(ctx context.Context) (r storage.Report, ok bool, err error) {
	if h.store == nil {
		return storage.Report{}, false, nil
	}
	return h.store.LastReport(ctx)
}

// logPreviousReport logs where the last run left off.
func (h *Host) logPreviousReport(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	r, ok, err := h.LastReport(ctx)
	switch {
	case err != nil:
		h.log.Warn("previous report unreadable", logx.Err(err))
	case ok:
		h.log.Info("previous report",
			logx.String("report_id", r.ID),
			logx.String("written", humanize.Time(r.At)),
			logx.String("ticks", humanize.Comma(int64(r.Ticks))),
			logx.String("cycles", humanize.Comma(int64(r.Cycles))),
			logx.Duration("uptime", r.Uptime),
		)
	}
}

// report is the cron job: log a summary and persist the snapshot.
func (h *Host) report() {
	r := h.Report()
	h.log.Info("kernel report",
		logx.String("report_id", r.ID),
		logx.String("ticks", humanize.Comma(int64(r.Ticks))),
		logx.String("cycles", humanize.Comma(int64(r.Cycles))),
		logx.Int("tasks", len(r.Tasks)),
		logx.Int("timers", len(r.Timers)),
		logx.String("started", humanize.Time(h.started)),
	)
	if h.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.store.AppendReport(ctx, r); err != nil {
		h.log.Warn("report append failed", logx.String("report_id", r.ID), logx.Err(err))
		return
	}
	h.publish(eventbus.ReportWritten, map[string]string{"report_id": r.ID})
}
