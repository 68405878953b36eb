package cli

import (
	"strings"

	"lwos/internal/config"
	"lwos/internal/statusapi"
	"lwos/internal/storage"
	"lwos/pkg/logx"
)

func mapLoggingConfig(c config.LoggingConfig) logx.Config {
	level := c.Level
	if strings.TrimSpace(flagLogLevel) != "" {
		level = flagLogLevel
	}
	return logx.Config{
		Level:   level,
		Console: c.Console,
		Format:  c.Format,
		File:    logx.FileConfig{Enabled: c.File.Enabled, Path: c.File.Path},
	}
}

// mapStorageConfig reports enabled=false when the section is absent or the
// driver is "none".
func mapStorageConfig(cfg *config.Config) (storage.Config, bool, error) {
	sc := cfg.Storage
	if sc == nil {
		return storage.Config{}, false, nil
	}
	driver := strings.ToLower(strings.TrimSpace(sc.Driver))
	if driver == "" || driver == "none" {
		return storage.Config{}, false, nil
	}
	busy, err := config.ParseDurationField("storage.busy_timeout", sc.BusyTimeout)
	if err != nil {
		return storage.Config{}, false, err
	}
	return storage.Config{
		Driver:      driver,
		Path:        sc.Path,
		BusyTimeout: busy,
		MaxEvents:   sc.MaxEvents,
	}, true, nil
}

func mapStatusConfig(cfg *config.Config) statusapi.Config {
	return statusapi.Config{
		Enabled:       cfg.Status.Enabled,
		Addr:          cfg.StatusAddr(),
		Token:         cfg.Status.Token,
		AllowInsecure: cfg.Status.AllowInsecure,
		Pprof:         cfg.Status.Pprof,
	}
}
