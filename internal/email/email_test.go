package email_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/ErlanBelekov/superlists/internal/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	reversePath string
	recipients  []string
	msg         []byte
	err         error
}

func (f *fakeTransport) Send(reversePath string, recipients []string, msg []byte) error {
	f.reversePath = reversePath
	f.recipients = recipients
	f.msg = msg
	return f.err
}

func TestSMTPSender_BuildsMIMEMessage(t *testing.T) {
	transport := &fakeTransport{}
	s, err := email.NewSMTPSender(transport, "Superlists <noreply@superlists.test>")
	require.NoError(t, err)

	err = s.Send(context.Background(), email.Message{
		To:      "edith@example.com",
		Subject: "Your login link for Superlists",
		Text:    "Use this link to log in",
		HTML:    "<p>Use this link to log in</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "noreply@superlists.test", transport.reversePath)
	assert.Equal(t, []string{"edith@example.com"}, transport.recipients)
	assert.Contains(t, string(transport.msg), "Subject: Your login link for Superlists")
	assert.Contains(t, string(transport.msg), "multipart/alternative")
}

func TestSMTPSender_TransportError(t *testing.T) {
	transportErr := errors.New("relay refused")
	s, err := email.NewSMTPSender(&fakeTransport{err: transportErr}, "noreply@superlists.test")
	require.NoError(t, err)

	err = s.Send(context.Background(), email.Message{To: "edith@example.com", Subject: "s", Text: "t"})
	assert.ErrorIs(t, err, transportErr)
}

func TestSMTPSender_InvalidFrom(t *testing.T) {
	_, err := email.NewSMTPSender(&fakeTransport{}, "not an address")
	assert.Error(t, err)
}

func TestLogSender_LogsInsteadOfSending(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	s, err := email.NewSender(email.Config{Provider: email.ProviderLog}, logger)
	require.NoError(t, err)

	require.NoError(t, s.Send(context.Background(), email.Message{To: "edith@example.com", Subject: "hi", Text: "body"}))
	assert.Contains(t, buf.String(), "edith@example.com")
}

func TestNewSender_UnknownProvider(t *testing.T) {
	_, err := email.NewSender(email.Config{Provider: "pigeon"}, slog.Default())
	assert.Error(t, err)
}

func TestNewSender_SMTPWithAuthNeedsHostPort(t *testing.T) {
	_, err := email.NewSender(email.Config{
		Provider:     email.ProviderSMTP,
		From:         "noreply@superlists.test",
		SMTPAddr:     "no-port",
		SMTPUsername: "user",
	}, slog.Default())
	assert.Error(t, err)
}
