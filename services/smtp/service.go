package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"

	"github.com/opentracing/opentracing-go"

	"github.com/bjorkit/backupwatch/config"
	"github.com/bjorkit/backupwatch/internal/tracing"
)

// Client submits plain-text mail over an authenticated STARTTLS session.
type Client struct {
	cfg *config.SMTPConfig
}

func NewClient(cfg *config.SMTPConfig) *Client {
	return &Client{cfg: cfg}
}

// Send composes and submits a plain-text message to the recipients.
func (s *Client) Send(ctx context.Context, subject, body string, recipients []string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "smtp.Client.Send")
	defer span.Finish()
	tracing.TagComponentService(span)
	span.SetTag("recipients.total", len(recipients))

	buffer := &bytes.Buffer{}
	fmt.Fprintf(buffer, "From: %s\r\n", s.cfg.Username)
	fmt.Fprintf(buffer, "Subject: %s\r\n", subject)
	fmt.Fprintf(buffer, "Content-Type: text/plain; charset=UTF-8\r\n")
	fmt.Fprintf(buffer, "\r\n")
	buffer.WriteString(body)

	err := s.sendWithSTARTTLS(ctx, s.cfg.Username, recipients, buffer)
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}

func (s *Client) sendWithSTARTTLS(ctx context.Context, from string, recipients []string, buffer *bytes.Buffer) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "smtp.Client.sendWithSTARTTLS")
	defer span.Finish()
	span.LogKV("smtp_server", s.cfg.Host)
	span.LogKV("smtp_port", s.cfg.Port)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	// Connect to the server without TLS first
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{
		ServerName: s.cfg.Host,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	// Authenticate after TLS is established
	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err = client.Mail(from); err != nil {
		return fmt.Errorf("SMTP MAIL command failed: %w", err)
	}

	for _, recipient := range recipients {
		if err = client.Rcpt(recipient); err != nil {
			return fmt.Errorf("SMTP RCPT command failed for %s: %w", recipient, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA command failed: %w", err)
	}
	if _, err = writer.Write(buffer.Bytes()); err != nil {
		return fmt.Errorf("failed to write message body: %w", err)
	}
	if err = writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize message: %w", err)
	}

	return client.Quit()
}
