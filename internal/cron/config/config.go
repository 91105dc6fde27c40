package cron_config

type Config struct {
	// Poll cycle, daily at 11:00
	CronSchedulePollCycle string `env:"CRON_SCHEDULE_POLL_CYCLE" envDefault:"0 0 11 * * *"`
	// Heartbeat check, hourly
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 0 * * * *"`
}
