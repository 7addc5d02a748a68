package failsafe

import (
	"context"
	"log/slog"
)

// Transition names a checkpoint lifecycle step.
type Transition string

const (
	TransitionConstructed Transition = "constructed"
	TransitionRestored    Transition = "restored"
	TransitionLoadFailed  Transition = "load_failed"
	TransitionSaved       Transition = "saved"
	TransitionSaveFailed  Transition = "save_failed"
	TransitionRemoved     Transition = "removed"
	TransitionRetired     Transition = "retired"
)

// LifecycleEvent describes one checkpoint transition for logging.
type LifecycleEvent struct {
	Type       string
	ID         int
	Path       string
	Transition Transition
	Err        error
}

// LifecycleLogger records lifecycle events.
type LifecycleLogger interface {
	LogLifecycle(LifecycleEvent)
}

// LifecycleLoggerFunc adapts a function to LifecycleLogger.
type LifecycleLoggerFunc func(LifecycleEvent)

// LogLifecycle implements LifecycleLogger.
func (f LifecycleLoggerFunc) LogLifecycle(event LifecycleEvent) {
	if f != nil {
		f(event)
	}
}

type noopLifecycleLogger struct{}

func (noopLifecycleLogger) LogLifecycle(LifecycleEvent) {}

type slogLifecycleLogger struct {
	logger *slog.Logger
}

// NewSlogLogger logs lifecycle events through logger. Failures log at error
// level, everything else at info.
func NewSlogLogger(logger *slog.Logger) LifecycleLogger {
	if logger == nil {
		return noopLifecycleLogger{}
	}
	return slogLifecycleLogger{logger: logger}
}

func (l slogLifecycleLogger) LogLifecycle(event LifecycleEvent) {
	level := slog.LevelInfo
	attrs := []slog.Attr{
		slog.String("type", event.Type),
		slog.Int("id", event.ID),
		slog.String("path", event.Path),
	}
	if event.Err != nil {
		level = slog.LevelError
		attrs = append(attrs, slog.Any("error", event.Err))
	}
	l.logger.LogAttrs(context.Background(), level, "checkpoint "+string(event.Transition), attrs...)
}
