package config

type AppConfig struct {
	APIPort           string `env:"PORT" envDefault:"5009"`
	DashboardURL      string `env:"DASHBOARD_URL" envDefault:"http://localhost:5009/status"`
	DefaultDaysBack   int    `env:"STATUS_DEFAULT_DAYS_BACK" envDefault:"40"`
	FailureWindowDays int    `env:"FAILURE_WINDOW_DAYS" envDefault:"3"`
}

type MailboxConfig struct {
	Host            string `env:"IMAP_HOST,required"`
	Port            int    `env:"IMAP_PORT" envDefault:"993"`
	Username        string `env:"IMAP_USERNAME,required"`
	Password        string `env:"IMAP_PASSWORD,required"`
	TLS             bool   `env:"IMAP_TLS" envDefault:"true"`
	SourceFolder    string `env:"IMAP_SOURCE_FOLDER" envDefault:"INBOX"`
	ProcessedFolder string `env:"IMAP_PROCESSED_FOLDER" envDefault:"/Processed"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
}

type NotifierConfig struct {
	Recipients []string `env:"NOTIFIER_RECIPIENTS" envSeparator:","`
	Subject    string   `env:"NOTIFIER_SUBJECT" envDefault:"Backup failure"`
}

type StoreConfig struct {
	Path string `env:"STORE_PATH" envDefault:"backup-log.db"`
	// ConflictPolicy is applied on re-ingested observations: "replace"
	// overwrites the stored percent, "ignore" keeps the first row.
	ConflictPolicy string `env:"STORE_CONFLICT_POLICY" envDefault:"replace"`
	LogLevel       string `env:"STORE_LOG_LEVEL" envDefault:"WARN"`
}

type ReportConfig struct {
	// CompanyName is the operator's own name as it appears as the third
	// subject segment of vendor reports.
	CompanyName string `env:"REPORT_COMPANY_NAME" envDefault:"Björk IT"`
	// CompanyVariants are the spellings that identify the operator inside
	// a client or job segment, used to detect swapped subject fields.
	CompanyVariants []string `env:"REPORT_COMPANY_VARIANTS" envSeparator:"," envDefault:"Bjork,Björk"`
	// AhsayMarkerMode selects the success marker rule for Ahsay summaries:
	// "text" looks for a SUCCESS token, "color" for the success border color.
	AhsayMarkerMode string `env:"REPORT_AHSAY_MARKER_MODE" envDefault:"text"`
}
