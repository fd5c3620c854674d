package logging

import "log/slog"

// Shared attribute constructors so field names stay consistent across
// services and can be queried uniformly downstream.

// EventID identifies a bus event (idempotency key).
func EventID(id string) slog.Attr {
	return slog.String("event_id", id)
}

// TransactionID identifies the business transaction an event belongs to.
func TransactionID(id string) slog.Attr {
	return slog.String("transaction_id", id)
}

// UserID identifies the account a transaction was made by.
func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

// AlertID identifies a persisted fraud alert.
func AlertID(id string) slog.Attr {
	return slog.String("alert_id", id)
}

// Subject identifies the bus subject a message arrived on or goes to.
func Subject(subject string) slog.Attr {
	return slog.String("subject", subject)
}

// Channel identifies a notification channel by name.
func Channel(name string) slog.Attr {
	return slog.String("channel", name)
}

// Err wraps an error value under the conventional "error" key.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}
