package notifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/ginjaninja78/invoice-report-automation/internal/config"
	apperrors "github.com/ginjaninja78/invoice-report-automation/internal/errors"
	"github.com/ginjaninja78/invoice-report-automation/internal/logger"
)

type fakeSender struct {
	sent []*mail.Msg
	err  error
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, messages...)
	return nil
}

func emailConfig() config.EmailConfig {
	return config.EmailConfig{
		Enabled:   true,
		Server:    "smtp.example.com",
		Port:      587,
		Username:  "reports@example.com",
		Password:  "secret",
		Recipient: "finance@example.com",
	}
}

func writeReport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("xlsx bytes"), 0o644))
	return path
}

func TestSend_WithAttachment(t *testing.T) {
	fake := &fakeSender{}
	n := New(emailConfig(), WithSender(fake))

	res, err := n.Send(context.Background(), writeReport(t))
	require.NoError(t, err)

	assert.True(t, res.Attached)
	assert.Equal(t, "finance@example.com", res.Recipient)
	assert.Equal(t, config.DefaultSubject, res.Subject)

	require.Len(t, fake.sent, 1)
	msg := fake.sent[0]
	assert.Equal(t, []string{"<reports@example.com>"}, msg.GetFromString())
	assert.Equal(t, []string{config.DefaultSubject}, msg.GetGenHeader(mail.HeaderSubject))

	attachments := msg.GetAttachments()
	require.Len(t, attachments, 1)
	assert.Equal(t, "report.xlsx", attachments[0].Name)
}

func TestSend_MissingReportSendsWithoutAttachment(t *testing.T) {
	var logs bytes.Buffer
	log, err := logger.New(logger.Options{Output: &logs})
	require.NoError(t, err)

	fake := &fakeSender{}
	n := New(emailConfig(), WithSender(fake), WithLogger(log))

	res, err := n.Send(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"))
	require.NoError(t, err)

	assert.False(t, res.Attached)
	require.Len(t, fake.sent, 1)
	assert.Empty(t, fake.sent[0].GetAttachments())
	assert.Contains(t, logs.String(), "sending without attachment")
}

func TestSend_FromOverridesUsername(t *testing.T) {
	cfg := emailConfig()
	cfg.From = "noreply@example.com"
	cfg.Subject = "Weekly invoices"

	fake := &fakeSender{}
	res, err := New(cfg, WithSender(fake)).Send(context.Background(), writeReport(t))
	require.NoError(t, err)

	assert.Equal(t, "Weekly invoices", res.Subject)
	assert.Equal(t, []string{"<noreply@example.com>"}, fake.sent[0].GetFromString())
}

func TestSend_InvalidRecipient(t *testing.T) {
	cfg := emailConfig()
	cfg.Recipient = "not an address"

	fake := &fakeSender{}
	_, err := New(cfg, WithSender(fake)).Send(context.Background(), writeReport(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConfig)
	assert.Empty(t, fake.sent)
}

func TestSend_ErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "bad credentials",
			err:  fmt.Errorf("dial failed: %w", fmt.Errorf("SMTP AUTH failed: %w", &textproto.Error{Code: 535, Msg: "5.7.8 auth failed"})),
			want: apperrors.ErrAuth,
		},
		{
			name: "auth required",
			err:  &textproto.Error{Code: 530, Msg: "5.7.0 authentication required"},
			want: apperrors.ErrAuth,
		},
		{
			name: "plain not offered",
			err:  fmt.Errorf("dial failed: %w", mail.ErrPlainAuthNotSupported),
			want: apperrors.ErrAuth,
		},
		{
			name: "mailbox unavailable",
			err:  &textproto.Error{Code: 550, Msg: "5.1.1 no such user"},
			want: apperrors.ErrTransport,
		},
		{
			name: "connection refused",
			err:  errors.New("dial tcp 127.0.0.1:587: connect: connection refused"),
			want: apperrors.ErrTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(emailConfig(), WithSender(&fakeSender{err: tt.err}))
			_, err := n.Send(context.Background(), writeReport(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestNew_AppliesDefaults(t *testing.T) {
	n := New(config.EmailConfig{Server: "smtp.example.com"})
	assert.Equal(t, config.DefaultSMTPPort, n.cfg.Port)
	assert.Equal(t, config.DefaultEmailTimeout, n.cfg.Timeout)
	assert.Equal(t, config.DefaultBody, n.cfg.Body)
}
