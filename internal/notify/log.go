package notify

import (
	"context"

	"go.uber.org/zap"
)

// Log writes notifications to the service log, so transitions are recorded
// even without a webhook configured.
type Log struct {
	Logger *zap.Logger
}

func (l Log) Send(_ context.Context, title, text string) error {
	l.Logger.Warn("notification", zap.String("title", title), zap.String("text", text))
	return nil
}
