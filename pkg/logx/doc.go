// Package logx configures lwos's structured logging.
//
// The host runtime uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - Level and sinks swappable at runtime (config hot reload)
//
// The kernel packages (pkg/task, pkg/scheduler, pkg/softtimer) never log.
package logx
