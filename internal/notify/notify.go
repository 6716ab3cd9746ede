// Package notify defines the account-notification seam.
//
// The real email sender is an external collaborator: the core only needs a
// place to announce "account created" and "account deleted". Injecting this
// interface keeps the user service testable and keeps SMTP credentials out
// of the core entirely. The default implementation just logs.
package notify

import "log/slog"

// Notifier receives account lifecycle announcements.
//
// Implementations must not block the request for long and must not cause the
// calling operation to fail — a lost welcome email is a shrug, a failed
// registration because the mail server is down is a bug.
type Notifier interface {
	AccountCreated(email, name string)
	AccountDeleted(email, name string)
}

// LogNotifier writes notifications to the structured log. It is the default
// wiring; a real mailer can replace it without touching the service layer.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) AccountCreated(email, name string) {
	n.logger.Info("welcome notification",
		slog.String("email", email),
		slog.String("name", name),
	)
}

func (n *LogNotifier) AccountDeleted(email, name string) {
	n.logger.Info("goodbye notification",
		slog.String("email", email),
		slog.String("name", name),
	)
}
