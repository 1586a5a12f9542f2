// =============================================================================
// Invoice Report Automation - Email Notifier
// =============================================================================
//
// This module emails the report workbook to the configured recipient.
//
// TRANSPORT:
//   - STARTTLS is mandatory. A server that does not offer it is an error.
//   - PLAIN authentication with the configured username and password.
//   - The whole SMTP session is bounded by EmailConfig.Timeout and by the
//     context passed to Send.
//
// MISSING ATTACHMENT:
//   If the report file does not exist the message is still sent, without an
//   attachment. A warning is logged and Result.Attached is false.
//
// ERRORS:
//   | Condition                                  | Kind          |
//   |--------------------------------------------|---------------|
//   | invalid From/To address, bad settings      | KindConfig    |
//   | SMTP reply 530, 534 or 535; no PLAIN auth  | KindAuth      |
//   | anything else (dial, TLS, send, close)     | KindTransport |
//
// =============================================================================

package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/textproto"
	"os"

	"github.com/wneessen/go-mail"

	"github.com/ginjaninja78/invoice-report-automation/internal/config"
	apperrors "github.com/ginjaninja78/invoice-report-automation/internal/errors"
	"github.com/ginjaninja78/invoice-report-automation/internal/logger"
)

const opNotify = "notify"

// SMTP reply codes that mean the credentials were rejected.
var authReplyCodes = map[int]bool{
	530: true, // authentication required
	534: true, // authentication mechanism too weak
	535: true, // authentication credentials invalid
}

// Sender delivers messages. *mail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Result describes a delivered notification.
type Result struct {
	Recipient string
	Subject   string

	// Attached is false when the report file was missing and the message
	// went out without it.
	Attached bool
}

// Notifier sends the report email.
type Notifier struct {
	cfg    config.EmailConfig
	sender Sender
	log    *logger.Logger
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithSender replaces the SMTP client. Used by tests.
func WithSender(s Sender) Option {
	return func(n *Notifier) { n.sender = s }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logger.Logger) Option {
	return func(n *Notifier) { n.log = l }
}

// New returns a notifier for cfg. The SMTP client is created on first use.
func New(cfg config.EmailConfig, opts ...Option) *Notifier {
	if cfg.Subject == "" {
		cfg.Subject = config.DefaultSubject
	}
	if cfg.Body == "" {
		cfg.Body = config.DefaultBody
	}
	if cfg.Port == 0 {
		cfg.Port = config.DefaultSMTPPort
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = config.DefaultEmailTimeout
	}

	n := &Notifier{cfg: cfg, log: logger.Nop()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// =============================================================================
// SEND
// =============================================================================

// Send emails the report at reportPath.
//
// PARAMETERS:
//   - ctx: Cancels the SMTP session.
//   - reportPath: The workbook to attach. May be missing.
//
// RETURNS:
//   - What was sent.
//   - A KindConfig, KindAuth or KindTransport error. Nothing was delivered
//     when the error is non-nil.
func (n *Notifier) Send(ctx context.Context, reportPath string) (Result, error) {
	msg, attached, err := n.BuildMessage(reportPath)
	if err != nil {
		return Result{}, err
	}

	sender, err := n.client()
	if err != nil {
		return Result{}, err
	}

	n.log.Debug("sending report email",
		"server", n.cfg.Server, "port", n.cfg.Port, "recipient", n.cfg.Recipient, "attached", attached)

	if err := sender.DialAndSendWithContext(ctx, msg); err != nil {
		return Result{}, classify(err)
	}

	n.log.Info("report email sent", "recipient", n.cfg.Recipient, "attached", attached)
	return Result{Recipient: n.cfg.Recipient, Subject: n.cfg.Subject, Attached: attached}, nil
}

// BuildMessage assembles the email. The bool reports whether the report
// was attached.
func (n *Notifier) BuildMessage(reportPath string) (*mail.Msg, bool, error) {
	msg := mail.NewMsg()
	if err := msg.From(n.cfg.SenderAddress()); err != nil {
		return nil, false, apperrors.New(apperrors.KindConfig, opNotify,
			fmt.Errorf("invalid sender address: %w", err))
	}
	if err := msg.To(n.cfg.Recipient); err != nil {
		return nil, false, apperrors.New(apperrors.KindConfig, opNotify,
			fmt.Errorf("invalid recipient address: %w", err))
	}
	msg.Subject(n.cfg.Subject)
	msg.SetBodyString(mail.TypeTextPlain, n.cfg.Body)

	attached := false
	if info, err := os.Stat(reportPath); err == nil && !info.IsDir() {
		msg.AttachFile(reportPath)
		attached = len(msg.GetAttachments()) > 0
	}
	if !attached {
		n.log.Warn("report file not found, sending without attachment", "path", reportPath)
	}

	return msg, attached, nil
}

// client builds the SMTP client from the configuration.
func (n *Notifier) client() (Sender, error) {
	if n.sender != nil {
		return n.sender, nil
	}

	c, err := mail.NewClient(n.cfg.Server,
		mail.WithPort(n.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.Username),
		mail.WithPassword(n.cfg.Password),
		mail.WithTimeout(n.cfg.Timeout),
	)
	if err != nil {
		return nil, apperrors.New(apperrors.KindConfig, opNotify,
			fmt.Errorf("failed to create SMTP client: %w", err))
	}
	n.sender = c
	return c, nil
}

// classify maps an SMTP failure to an error kind.
func classify(err error) error {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) && authReplyCodes[tpErr.Code] {
		return apperrors.New(apperrors.KindAuth, opNotify, err)
	}
	if errors.Is(err, mail.ErrPlainAuthNotSupported) {
		return apperrors.New(apperrors.KindAuth, opNotify, err)
	}
	return apperrors.New(apperrors.KindTransport, opNotify, err)
}
