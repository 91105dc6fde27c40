package status

import (
	"context"
	"fmt"
	"strings"

	"github.com/opentracing/opentracing-go"

	"github.com/bjorkit/backupwatch/config"
	"github.com/bjorkit/backupwatch/interfaces"
	"github.com/bjorkit/backupwatch/internal/logger"
	"github.com/bjorkit/backupwatch/internal/models"
	"github.com/bjorkit/backupwatch/internal/tracing"
	"github.com/bjorkit/backupwatch/services/smtp"
)

// MailNotifier alerts the configured recipients about failed backups by
// plain-text mail, with a pointer to the status dashboard.
type MailNotifier struct {
	cfg          *config.NotifierConfig
	dashboardURL string
	smtp         *smtp.Client
	log          logger.Logger
}

func NewMailNotifier(cfg *config.NotifierConfig, dashboardURL string, smtpClient *smtp.Client, log logger.Logger) interfaces.FailureNotifier {
	return &MailNotifier{
		cfg:          cfg,
		dashboardURL: dashboardURL,
		smtp:         smtpClient,
		log:          log,
	}
}

func (n *MailNotifier) NotifyFailures(ctx context.Context, failures []models.Key) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailNotifier.NotifyFailures")
	defer span.Finish()
	tracing.TagComponentService(span)
	span.SetTag("failures.total", len(failures))

	if len(failures) == 0 {
		return nil
	}
	if len(n.cfg.Recipients) == 0 {
		n.log.Warnf("%d failed backups but no notification recipients configured", len(failures))
		return nil
	}

	n.log.Infof("placing ticket on %d failed backups", len(failures))

	err := n.smtp.Send(ctx, n.cfg.Subject, FormatFailureReport(failures, n.dashboardURL), n.cfg.Recipients)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	n.log.Info("ticket placed")
	return nil
}

// FormatFailureReport renders the alert body, one line per failing key.
func FormatFailureReport(failures []models.Key, dashboardURL string) string {
	lines := make([]string, 0, len(failures))
	for _, f := range failures {
		lines = append(lines, fmt.Sprintf("%s: %s, %s (job %s)", f.Service, f.Client, f.System, f.Job))
	}
	return "Failed backups:\n\n" + strings.Join(lines, "\n") +
		fmt.Sprintf("\n\nMore info here: %s\n", dashboardURL)
}
