package logx

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Field adds one key to an event. Later fields with the same key win.
type Field func(e *zerolog.Event)

func String(k, v string) Field { return func(e *zerolog.Event) { e.Str(k, v) } }

func Int(k string, v int) Field { return func(e *zerolog.Event) { e.Int(k, v) } }

func Uint64(k string, v uint64) Field { return func(e *zerolog.Event) { e.Uint64(k, v) } }

func Bool(k string, v bool) Field { return func(e *zerolog.Event) { e.Bool(k, v) } }

func Duration(k string, v time.Duration) Field { return func(e *zerolog.Event) { e.Dur(k, v) } }

func Any(k string, v any) Field { return func(e *zerolog.Event) { e.Interface(k, v) } }

// Err is a no-op for a nil error.
func Err(err error) Field {
	if err == nil {
		return nil
	}
	return func(e *zerolog.Event) { e.Err(err) }
}

// Stack attaches a goroutine dump, e.g. from runtime/debug.Stack.
func Stack(dump string) Field {
	if strings.TrimSpace(dump) == "" {
		return nil
	}
	return func(e *zerolog.Event) { e.Str("stack", dump) }
}
