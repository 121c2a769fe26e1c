// Package notify delivers password reset tokens to users.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/prajeshElEvEn/microauth/internal/common"
	"github.com/prajeshElEvEn/microauth/internal/logging"
)

// ResetSubject is the subject line of reset emails.
const ResetSubject = "Password Reset Request"

// Sender makes one delivery attempt of a reset token. Failures wrap
// common.ErrorDelivery.
type Sender interface {
	SendReset(ctx context.Context, email, token string) error
}

// Settings selects and configures a Sender.
type Settings struct {
	Service        string // smtp, sendgrid, log, or a well-known SMTP provider name
	Host           string
	Port           int
	Secure         bool
	FromAddress    string
	FromName       string
	Username       string
	Password       string
	SendGridAPIKey string
	Timeout        time.Duration
}

// New builds the Sender named by s.Service. Unknown names are treated as
// SMTP providers.
func New(s Settings, log logging.Logger) (Sender, error) {
	switch strings.ToLower(s.Service) {
	case "log":
		return NewLogSender(log), nil
	case "sendgrid":
		if s.SendGridAPIKey == "" {
			return nil, fmt.Errorf("%w: sendgrid api key is not set", common.ErrorConfiguration)
		}
		return NewSendGridSender(s.SendGridAPIKey, s.FromAddress, s.FromName, s.Timeout), nil
	default:
		return NewSMTPSender(s)
	}
}

// ResetHTML renders the reset email body.
func ResetHTML(token string) string {
	return "<p>Hey there,</p><p>You requested to change your password.</p><p>Token: " +
		html.EscapeString(token) +
		" </p><p>Use this token to reset your password.</p>"
}

func deliveryError(provider string, err error) error {
	return fmt.Errorf("%w: %s: %v", common.ErrorDelivery, provider, err)
}
