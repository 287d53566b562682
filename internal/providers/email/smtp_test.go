package email

import (
	"context"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"strings"
	"testing"

	authdomain "github.com/smallbiznis/birracraft/internal/auth/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	addr string
	from string
	to   []string
	msg  []byte
}

func newCapturingProvider(cfg Config) (*SMTPProvider, *captured) {
	c := &captured{}
	p := NewSMTP(cfg)
	p.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		c.addr, c.from, c.to, c.msg = addr, from, to, msg
		return nil
	}
	return p, c
}

func TestSendWithAttachment(t *testing.T) {
	p, c := newCapturingProvider(Config{Host: "smtp.local", Port: 2525, From: "reports@birracraft.local"})

	pdf := []byte("%PDF-1.3 fake report body")
	err := p.SendTemplate(context.Background(), []string{"ana@example.com"}, TemplateSalesReport, map[string]any{
		"username":  "ana",
		"date_from": "2024-01-01",
		"orders":    3,
	}, Attachment{Filename: "sales-report.pdf", ContentType: "application/pdf", Data: pdf})
	require.NoError(t, err)

	assert.Equal(t, "smtp.local:2525", c.addr)
	assert.Equal(t, "reports@birracraft.local", c.from)
	assert.Equal(t, []string{"ana@example.com"}, c.to)

	parsed, err := mail.ReadMessage(strings.NewReader(string(c.msg)))
	require.NoError(t, err)

	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Your Birracraft sales report", subject)

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	reader := multipart.NewReader(parsed.Body, params["boundary"])

	htmlPart, err := reader.NextPart()
	require.NoError(t, err)
	html, err := io.ReadAll(htmlPart)
	require.NoError(t, err)
	assert.Contains(t, string(html), "orders since 2024-01-01")

	attPart, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "sales-report.pdf", attPart.FileName())
	encoded, err := io.ReadAll(attPart)
	require.NoError(t, err)
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, pdf, decoded)
}

func TestSendRequiresRecipients(t *testing.T) {
	p, _ := newCapturingProvider(Config{Host: "smtp.local", Port: 25})
	err := p.Send(context.Background(), Message{Subject: "x"})
	assert.ErrorIs(t, err, ErrNoRecipients)
}

func TestAccountNotifierUsesLink(t *testing.T) {
	p, c := newCapturingProvider(Config{Host: "smtp.local", Port: 25, From: "no-reply@birracraft.local"})
	notifier := NewAccountNotifier(p)

	err := notifier.SendPasswordReset(context.Background(), authdomain.UserResponse{
		Username: "ana",
		Email:    "ana@example.com",
	}, "http://localhost:8080/api/user/reset_password/abc/tok")
	require.NoError(t, err)

	assert.Equal(t, []string{"ana@example.com"}, c.to)
	assert.Contains(t, string(c.msg), "http://localhost:8080/api/user/reset_password/abc/tok")
}
