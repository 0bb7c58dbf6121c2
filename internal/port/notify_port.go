package port

import "context"

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Notification struct {
	Message     string
	Severity    Severity
	Description string
}

// Notifier delivers user-facing feedback. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}
