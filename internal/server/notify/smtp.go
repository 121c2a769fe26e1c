package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/prajeshElEvEn/microauth/internal/common"
	"github.com/wneessen/go-mail"
)

type smtpPreset struct {
	host   string
	port   int
	secure bool
}

// Provider names accepted in place of an explicit host.
var wellKnownSMTP = map[string]smtpPreset{
	"gmail":   {host: "smtp.gmail.com", port: 465, secure: true},
	"outlook": {host: "smtp-mail.outlook.com", port: 587},
	"hotmail": {host: "smtp-mail.outlook.com", port: 587},
	"yahoo":   {host: "smtp.mail.yahoo.com", port: 465, secure: true},
	"zoho":    {host: "smtp.zoho.com", port: 465, secure: true},
}

// SMTPSender sends reset emails over SMTP.
type SMTPSender struct {
	settings Settings
	send     func(ctx context.Context, client *mail.Client, msg *mail.Msg) error
}

// NewSMTPSender resolves well-known provider names and validates the address.
func NewSMTPSender(s Settings) (*SMTPSender, error) {
	if preset, ok := wellKnownSMTP[strings.ToLower(s.Service)]; ok {
		s.Host, s.Port, s.Secure = preset.host, preset.port, preset.secure
	}
	if s.Host == "" {
		return nil, fmt.Errorf("%w: email host is not set", common.ErrorConfiguration)
	}
	if s.FromAddress == "" {
		s.FromAddress = s.Username
	}

	return &SMTPSender{
		settings: s,
		send: func(ctx context.Context, client *mail.Client, msg *mail.Msg) error {
			return client.DialAndSendWithContext(ctx, msg)
		},
	}, nil
}

func (s *SMTPSender) message(email, token string) (*mail.Msg, error) {
	msg := mail.NewMsg()

	var err error
	if s.settings.FromName != "" {
		err = msg.FromFormat(s.settings.FromName, s.settings.FromAddress)
	} else {
		err = msg.From(s.settings.FromAddress)
	}
	if err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(email); err != nil {
		return nil, fmt.Errorf("recipient address: %w", err)
	}
	msg.Subject(ResetSubject)
	msg.SetBodyString(mail.TypeTextHTML, ResetHTML(token))

	return msg, nil
}

func (s *SMTPSender) client() (*mail.Client, error) {
	opts := []mail.Option{mail.WithPort(s.settings.Port)}
	if s.settings.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.settings.Timeout))
	}
	if s.settings.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if s.settings.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.settings.Username),
			mail.WithPassword(s.settings.Password),
		)
	}
	return mail.NewClient(s.settings.Host, opts...)
}

// SendReset makes one delivery attempt.
func (s *SMTPSender) SendReset(ctx context.Context, email, token string) error {
	msg, err := s.message(email, token)
	if err != nil {
		return deliveryError("smtp", err)
	}

	client, err := s.client()
	if err != nil {
		return deliveryError("smtp", err)
	}

	if err := s.send(ctx, client, msg); err != nil {
		return deliveryError("smtp", err)
	}
	return nil
}
