package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/avdeev2017/gw-auth-service/internal/logger"
)

// defaultSendTimeout bounds a whole SMTP session when the caller's
// context carries no deadline of its own.
const defaultSendTimeout = 10 * time.Second

// Mailer sends account emails over SMTP. Links embedded in the messages
// point at the frontend, which forwards the token back to this service.
type Mailer struct {
	host        string
	port        int
	username    string
	password    string
	from        string
	frontendURL string
	timeout     time.Duration
}

// Opt configures a Mailer instance.
type Opt func(*Mailer)

// WithSMTP sets the SMTP endpoint and credentials. An empty username
// disables authentication (local relay).
func WithSMTP(host string, port int, username, password string) Opt {
	return func(m *Mailer) {
		m.host = host
		m.port = port
		m.username = username
		m.password = password
	}
}

// WithFrom sets the sender address.
func WithFrom(from string) Opt {
	return func(m *Mailer) {
		m.from = from
	}
}

// WithFrontendURL sets the base URL used to build verification and
// reset links.
func WithFrontendURL(url string) Opt {
	return func(m *Mailer) {
		m.frontendURL = strings.TrimRight(url, "/")
	}
}

// WithSendTimeout overrides the per-send deadline applied when the
// caller's context has none.
func WithSendTimeout(d time.Duration) Opt {
	return func(m *Mailer) {
		m.timeout = d
	}
}

// New creates a new Mailer instance.
func New(opts ...Opt) *Mailer {
	m := &Mailer{
		host:        "localhost",
		port:        25,
		frontendURL: "http://localhost:3000",
		timeout:     defaultSendTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SendVerificationEmail sends the email-confirmation link for the given
// verification token.
func (m *Mailer) SendVerificationEmail(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", m.frontendURL, token)
	body := fmt.Sprintf(
		`<p>Please confirm your email by clicking on the following link:</p><a href="%s">Verify Email</a>`,
		link,
	)
	return m.send(ctx, to, "Please confirm your email account", body)
}

// SendPasswordResetEmail sends the password-reset link for the given
// reset token. The link expires one hour after issuance.
func (m *Mailer) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/password-reset-form?token=%s", m.frontendURL, token)
	body := fmt.Sprintf(
		`<p>You requested a password reset. Click the link below to reset your password. This link will expire in 1 hour.</p><a href="%s">Reset Password</a>`,
		link,
	)
	return m.send(ctx, to, "Reset Your Password", body)
}

func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	msg := buildMessage(m.from, to, subject, htmlBody)

	// HTTP request contexts usually carry no deadline, so cap the whole
	// session: a dead SMTP host must not pin the request on the OS TCP
	// timeout.
	deadline := time.Now().Add(m.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		logger.Log.Errorw("failed to dial smtp server", "addr", addr, "err", err)
		return err
	}

	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return err
	}

	if err := m.submit(conn, to, msg); err != nil {
		logger.Log.Errorw("failed to send email", "to", to, "subject", subject, "err", err)
		return err
	}

	logger.Log.Infow("email sent", "to", to, "subject", subject)
	return nil
}

// submit drives one SMTP session over an already-dialed connection. The
// connection's deadline bounds every command in the exchange.
func (m *Mailer) submit(conn net.Conn, to string, msg []byte) error {
	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return err
		}
	}

	if m.username != "" {
		if err := c.Auth(smtp.PlainAuth("", m.username, m.password, m.host)); err != nil {
			return err
		}
	}

	if err := c.Mail(m.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return c.Quit()
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")
	return []byte(b.String())
}
