package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"lwos/internal/config"
	"lwos/internal/eventbus"
	"lwos/internal/host"
	"lwos/internal/runtime/supervisor"
	"lwos/internal/statusapi"
	"lwos/internal/storage"
	"lwos/pkg/logx"
)

const shutdownTimeout = 10 * time.Second

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the daemon until SIGINT/SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return run(ctx, flagConfig, cmd.ErrOrStderr())
		},
	}
	addConfigFlag(cmd)
	return cmd
}

func run(ctx context.Context, cfgPath string, stderr io.Writer) error {
	// console only until logging config is known
	bootLog := logx.NewConsole(stderr, flagLogLevel).With(logx.String("comp", "boot"))
	bootLog.Info("loading config", logx.String("path", cfgPath))

	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		bootLog.Error("config rejected", logx.String("path", cfgPath), logx.Err(err))
		return fmt.Errorf("load config: %w", err)
	}

	logs, log := logx.NewService(mapLoggingConfig(cfg.Logging))
	defer logs.Close()
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	var store storage.Store
	if sc, enabled, err := mapStorageConfig(cfg); err != nil {
		return err
	} else if enabled {
		if store, err = storage.Open(sc, log); err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer store.Close()
		log.Info("storage enabled", logx.String("driver", sc.Driver), logx.String("path", sc.Path))
	}

	opts := []host.Option{
		host.WithLogger(log),
		host.WithBus(eventbus.New()),
		host.WithStore(store),
	}
	if cfg.Systemd.Notify {
		opts = append(opts, host.WithNotifier(host.SystemdNotifier{}))
	}
	h, err := host.New(cfg, opts...)
	if err != nil {
		return err
	}
	if err := h.Start(ctx); err != nil {
		return err
	}

	status := statusapi.New(mapStatusConfig(cfg), h, log)
	if err := status.Start(ctx); err != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = h.Stop(stopCtx)
		return fmt.Errorf("status api: %w", err)
	}

	// config watch and reload run beside the host
	sup := supervisor.New(ctx, supervisor.WithLogger(log))
	sup.GoRestart("config.watch", cfgm.Watch, 500*time.Millisecond, 10*time.Second)
	sub := cfgm.Subscribe(4)
	sup.Go("config.reload", func(ctx context.Context) error {
		defer cfgm.Unsubscribe(sub)
		last := cfg
		for {
			select {
			case <-ctx.Done():
				return nil
			case next, ok := <-sub:
				if !ok {
					return nil
				}
				reload(ctx, log, logs, h, status, last, next)
				last = next
			}
		}
	})

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case <-h.Done():
		log.Error("host stopped unexpectedly", logx.Err(h.Err()))
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = sup.Stop(stopCtx)
	if err := status.Stop(stopCtx); err != nil {
		log.Warn("status api stop failed", logx.Err(err))
	}
	if err := h.Stop(stopCtx); err != nil {
		return err
	}
	return h.Err()
}

func reload(ctx context.Context, log logx.Logger, logs *logx.Service, h *host.Host, status *statusapi.Service, old, next *config.Config) {
	sections, fields := config.SummarizeConfigChange(old, next)
	if len(sections) == 0 {
		log.Debug("config reload received, but no effective changes detected")
		return
	}
	log.Info("config reloaded", append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, fields...)...)

	logs.Apply(mapLoggingConfig(next.Logging))
	if err := h.Apply(old, next); err != nil {
		log.Warn("host reload failed", logx.Err(err))
	}
	if err := status.Reconfigure(ctx, mapStatusConfig(next)); err != nil {
		log.Warn("status api reload failed", logx.Err(err))
	}
}
