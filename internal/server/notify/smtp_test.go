package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/prajeshElEvEn/microauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func TestSMTPSender_SendsOneMessage(t *testing.T) {
	s, err := NewSMTPSender(Settings{
		Service:     "smtp",
		Host:        "mail.example.com",
		Port:        587,
		FromAddress: "no-reply@example.com",
		FromName:    "Microauth",
		Username:    "no-reply@example.com",
		Password:    "pw",
	})
	require.NoError(t, err)

	var sent []*mail.Msg
	s.send = func(ctx context.Context, client *mail.Client, msg *mail.Msg) error {
		sent = append(sent, msg)
		return nil
	}

	require.NoError(t, s.SendReset(context.Background(), "ada@example.com", "abc123"))
	require.Len(t, sent, 1)

	rcpts, err := sent[0].GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"ada@example.com"}, rcpts)
	assert.Equal(t, []string{ResetSubject}, sent[0].GetGenHeader(mail.HeaderSubject))

	from, err := sent[0].GetSender(false)
	require.NoError(t, err)
	assert.Equal(t, "no-reply@example.com", from)
}

func TestSMTPSender_FailureIsDeliveryError(t *testing.T) {
	s, err := NewSMTPSender(Settings{Host: "mail.example.com", Port: 25, FromAddress: "a@example.com"})
	require.NoError(t, err)

	s.send = func(ctx context.Context, client *mail.Client, msg *mail.Msg) error {
		return errors.New("connection refused")
	}

	err = s.SendReset(context.Background(), "ada@example.com", "abc123")
	require.ErrorIs(t, err, common.ErrorDelivery)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSMTPSender_BadRecipient(t *testing.T) {
	s, err := NewSMTPSender(Settings{Host: "mail.example.com", Port: 25, FromAddress: "a@example.com"})
	require.NoError(t, err)

	called := false
	s.send = func(ctx context.Context, client *mail.Client, msg *mail.Msg) error {
		called = true
		return nil
	}

	err = s.SendReset(context.Background(), "not an address", "abc123")
	require.ErrorIs(t, err, common.ErrorDelivery)
	assert.False(t, called)
}

func TestNewSMTPSender_WellKnownService(t *testing.T) {
	s, err := NewSMTPSender(Settings{Service: "Gmail", Host: "localhost", Port: 587, Username: "me@gmail.com"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.gmail.com", s.settings.Host)
	assert.Equal(t, 465, s.settings.Port)
	assert.True(t, s.settings.Secure)
	assert.Equal(t, "me@gmail.com", s.settings.FromAddress, "falls back to the auth user")
}

func TestNewSMTPSender_NoHost(t *testing.T) {
	_, err := NewSMTPSender(Settings{Service: "smtp"})
	require.ErrorIs(t, err, common.ErrorConfiguration)
}
