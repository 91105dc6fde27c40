package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/bjorkit/backupwatch/internal/logger"
	"github.com/bjorkit/backupwatch/internal/tracing"
)

type Config struct {
	AppConfig      *AppConfig
	Logger         *logger.Config
	Tracing        *tracing.JaegerConfig
	MailboxConfig  *MailboxConfig
	SMTPConfig     *SMTPConfig
	NotifierConfig *NotifierConfig
	StoreConfig    *StoreConfig
	ReportConfig   *ReportConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:      &AppConfig{},
		Logger:         &logger.Config{},
		Tracing:        &tracing.JaegerConfig{},
		MailboxConfig:  &MailboxConfig{},
		SMTPConfig:     &SMTPConfig{},
		NotifierConfig: &NotifierConfig{},
		StoreConfig:    &StoreConfig{},
		ReportConfig:   &ReportConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		return nil, err
	}

	return config, nil
}
