// Package notify carries out-of-band messages to a user, such as the
// failure of a write that was already acknowledged optimistically.
package notify

import (
	"context"
	"time"

	"github.com/budgetbolt/backend/internal/logger"
	"github.com/google/uuid"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice is one message for a user.
type Notice struct {
	ID    string    `json:"id"`
	Level Level     `json:"level"`
	Title string    `json:"title"`
	Body  string    `json:"body"`
	At    time.Time `json:"at"`
}

// NewNotice stamps a notice with an id and the current time.
func NewNotice(level Level, title, body string) Notice {
	return Notice{
		ID:    uuid.NewString(),
		Level: level,
		Title: title,
		Body:  body,
		At:    time.Now().UTC(),
	}
}

// Notifier delivers notices. Implementations must not block the caller on
// slow transports for long and never return errors: delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, uid string, n Notice)
}

// Fanout delivers to every notifier in order.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, uid string, n Notice) {
	for _, nt := range f {
		if nt != nil {
			nt.Notify(ctx, uid, n)
		}
	}
}

// LogNotifier records notices in the application log.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, uid string, n Notice) {
	ev := logger.Log.Info()
	if n.Level == LevelError {
		ev = logger.Log.Warn()
	}
	ev.Str("component", "notify").
		Str("user", logger.HashUserID(uid)).
		Str("title", n.Title).
		Msg(n.Body)
}
