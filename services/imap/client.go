package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-imap/client"
	"github.com/opentracing/opentracing-go"

	"github.com/bjorkit/backupwatch/config"
	"github.com/bjorkit/backupwatch/internal/tracing"
)

const (
	capabilityMove    = "MOVE"
	capabilityUIDPlus = "UIDPLUS"
)

// connectMailbox establishes an authenticated session to the report
// mailbox and records the advertised MOVE/UIDPLUS capabilities.
func (s *MailboxService) connectMailbox(ctx context.Context, cfg *config.MailboxConfig) (*client.Client, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailboxService.connectMailbox")
	defer span.Finish()
	tracing.TagComponentService(span)
	span.SetTag("server", cfg.Host)
	span.SetTag("port", cfg.Port)
	span.SetTag("tls", cfg.TLS)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	var c *client.Client
	var err error

	if cfg.TLS {
		tlsConfig := &tls.Config{
			ServerName: cfg.Host,
		}
		c, err = client.DialWithDialerTLS(dialer, serverAddr, tlsConfig)
	} else {
		c, err = client.DialWithDialer(dialer, serverAddr)
	}
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, fmt.Errorf("failed to connect to %s: %w", serverAddr, err)
	}

	caps, err := c.Capability()
	if err != nil {
		c.Logout()
		tracing.TraceErr(span, err)
		return nil, fmt.Errorf("failed to get capabilities: %w", err)
	}

	s.supportsMove = caps[capabilityMove]
	s.supportsUIDPlus = caps[capabilityUIDPlus]
	s.log.Debugf("server capabilities: MOVE=%v UIDPLUS=%v", s.supportsMove, s.supportsUIDPlus)
	span.SetTag("capability.move", s.supportsMove)
	span.SetTag("capability.uidplus", s.supportsUIDPlus)

	c.Timeout = 30 * time.Second

	err = c.Login(cfg.Username, cfg.Password)
	if err != nil {
		c.Logout()
		tracing.TraceErr(span, err)
		return nil, fmt.Errorf("failed to login as %s: %w", cfg.Username, err)
	}

	// Reset client timeout to default
	c.Timeout = 0

	s.log.Infof("connected to %s as %s", serverAddr, cfg.Username)
	return c, nil
}
