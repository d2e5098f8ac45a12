package observability

import (
	"log/slog"

	"trashbin/core/events"
	"trashbin/core/types"
)

// LogEmitter writes every engine event as a structured log line. It is the
// terminal emitter in the daemon's chain.
type LogEmitter struct {
	logger *slog.Logger
}

// NewLogEmitter wraps the given logger; nil falls back to the default logger.
func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEmitter{logger: logger}
}

// Emit implements events.Emitter.
func (l *LogEmitter) Emit(evt events.Event) {
	if l == nil || l.logger == nil || evt == nil {
		return
	}
	args := []any{slog.String("event", evt.EventType())}
	if provider, ok := evt.(interface{ Event() *types.Event }); ok {
		if payload := provider.Event(); payload != nil {
			for key, value := range payload.Attributes {
				args = append(args, slog.String(key, value))
			}
		}
	}
	l.logger.Info("engine event", args...)
}
