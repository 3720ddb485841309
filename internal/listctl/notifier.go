package listctl

import (
	"context"
	"log/slog"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a transient, dismissible message for the operator.
type Notice struct {
	Level    Level
	Resource string
	Message  string
	Err      error
}

type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

type NotifierFunc func(ctx context.Context, n Notice)

func (f NotifierFunc) Notify(ctx context.Context, n Notice) { f(ctx, n) }

// LogNotifier writes notices to a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, notice Notice) {
	attrs := []any{"resource", notice.Resource, "level", string(notice.Level)}
	if notice.Err != nil {
		attrs = append(attrs, "error", notice.Err)
		n.logger.WarnContext(ctx, notice.Message, attrs...)
		return
	}
	n.logger.InfoContext(ctx, notice.Message, attrs...)
}
