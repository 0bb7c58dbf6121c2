package notify

import (
	"context"
	"github.com/nikolayk812/spicecart/internal/port"
	"github.com/nikolayk812/spicecart/pkg/logger"
	"sync"
)

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, note port.Notification) {
	if n == nil || n.log == nil {
		return
	}
	ctx = n.log.WithFields(ctx, map[string]any{
		"severity":    string(note.Severity),
		"description": note.Description,
	})
	switch note.Severity {
	case port.SeverityWarning:
		n.log.Warn(ctx, note.Message, nil)
	case port.SeverityError:
		n.log.Error(ctx, note.Message, nil)
	default:
		n.log.Info(ctx, note.Message)
	}
}

// Func adapts a plain function to port.Notifier.
type Func func(ctx context.Context, n port.Notification)

func (f Func) Notify(ctx context.Context, n port.Notification) {
	f(ctx, n)
}

type multi []port.Notifier

// Multi fans a notification out to every non-nil notifier in order.
func Multi(notifiers ...port.Notifier) port.Notifier {
	out := make(multi, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (m multi) Notify(ctx context.Context, n port.Notification) {
	for _, notifier := range m {
		notifier.Notify(ctx, n)
	}
}

// Recorder keeps notifications in memory until drained.
type Recorder struct {
	mu    sync.Mutex
	notes []port.Notification
}

func (r *Recorder) Notify(_ context.Context, n port.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

// Drain returns everything recorded so far and resets the recorder.
func (r *Recorder) Drain() []port.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notes
	r.notes = nil
	return out
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}
