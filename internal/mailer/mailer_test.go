package mailer

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("noreply@example.com", "alice@example.com", "Hello", "<p>Hi</p>"))

	assert.Contains(t, msg, "From: noreply@example.com\r\n")
	assert.Contains(t, msg, "To: alice@example.com\r\n")
	assert.Contains(t, msg, "Subject: Hello\r\n")
	assert.Contains(t, msg, "Content-Type: text/html")
	assert.True(t, strings.HasSuffix(msg, "<p>Hi</p>\r\n"))
}

func TestNew_Defaults(t *testing.T) {
	m := New()

	assert.Equal(t, "localhost", m.host)
	assert.Equal(t, 25, m.port)
	assert.Equal(t, "http://localhost:3000", m.frontendURL)
	assert.Equal(t, defaultSendTimeout, m.timeout)
}

func TestWithFrontendURL_TrimsTrailingSlash(t *testing.T) {
	m := New(WithFrontendURL("https://app.example.com/"))
	assert.Equal(t, "https://app.example.com", m.frontendURL)
}

func TestSend_ContextCancelled(t *testing.T) {
	// Point at a port nobody listens on; the deadline must win over
	// the connect attempt.
	m := New(WithSMTP("203.0.113.1", 2525, "", ""))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := m.SendVerificationEmail(ctx, "alice@example.com", "tok")
	assert.Error(t, err)
}

func TestSend_NoContextDeadlineStillBounded(t *testing.T) {
	// A server that accepts the connection and never sends a greeting.
	// Without a context deadline the send must still fail within the
	// configured timeout instead of hanging on the OS TCP timeout.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NoError(t, err)
	defer ln.Close()

	stop := make(chan struct{})
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		<-stop
		conn.Close()
	}()
	defer close(stop)

	port := ln.Addr().(*net.TCPAddr).Port
	m := New(
		WithSMTP("127.0.0.1", port, "", ""),
		WithSendTimeout(100*time.Millisecond),
	)

	start := time.Now()
	err = m.SendVerificationEmail(context.Background(), "alice@example.com", "tok")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
