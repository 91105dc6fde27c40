package services

import (
	"github.com/bjorkit/backupwatch/config"
	"github.com/bjorkit/backupwatch/interfaces"
	"github.com/bjorkit/backupwatch/internal/logger"
	"github.com/bjorkit/backupwatch/internal/repository"
	"github.com/bjorkit/backupwatch/services/imap"
	"github.com/bjorkit/backupwatch/services/pipeline"
	"github.com/bjorkit/backupwatch/services/report"
	"github.com/bjorkit/backupwatch/services/smtp"
	"github.com/bjorkit/backupwatch/services/status"
)

type Services struct {
	MailboxTransport interfaces.MailboxTransport
	SMTPClient       *smtp.Client
	Notifier         interfaces.FailureNotifier
	Registry         *report.Registry
	Aggregator       *status.Aggregator
	Pipeline         *pipeline.Pipeline
}

func InitServices(cfg *config.Config, log logger.Logger, repos *repository.Repositories) *Services {
	transport := imap.NewMailboxService(cfg.MailboxConfig, log)
	smtpClient := smtp.NewClient(cfg.SMTPConfig)
	notifier := status.NewMailNotifier(cfg.NotifierConfig, cfg.AppConfig.DashboardURL, smtpClient, log)
	registry := report.NewRegistry(cfg.ReportConfig)
	aggregator := status.NewAggregator(repos.ObservationRepository)

	return &Services{
		MailboxTransport: transport,
		SMTPClient:       smtpClient,
		Notifier:         notifier,
		Registry:         registry,
		Aggregator:       aggregator,
		Pipeline: pipeline.NewPipeline(
			transport,
			repos.ObservationRepository,
			registry,
			aggregator,
			notifier,
			log,
			cfg.AppConfig.FailureWindowDays,
		),
	}
}
