package notify

import (
	"context"

	"github.com/prajeshElEvEn/microauth/internal/logging"
)

// LogSender writes reset tokens to the log instead of mailing them.
// Meant for local development only.
type LogSender struct {
	log logging.Logger
}

func NewLogSender(log logging.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) SendReset(ctx context.Context, email, token string) error {
	s.log.Info(ctx, "password reset token", "email", email, "token", token)
	return nil
}
