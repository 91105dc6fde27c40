package models

import (
	"time"
)

// Observation is one normalized fact extracted from a vendor backup
// report: at Timestamp, Service reported Percent completion for Job on
// System belonging to Client. Rows are append-only; the composite unique
// index makes re-ingestion of the same report a no-op (or an overwrite,
// depending on the configured conflict policy).
type Observation struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	Timestamp time.Time `gorm:"column:timestamp;uniqueIndex:idx_jobs;not null" json:"timestamp"`
	Service   string    `gorm:"column:service;type:varchar(20);uniqueIndex:idx_jobs;not null" json:"service"`
	Client    string    `gorm:"column:client;type:varchar(40);uniqueIndex:idx_jobs;not null" json:"client"`
	System    string    `gorm:"column:system;type:varchar(40);uniqueIndex:idx_jobs;not null" json:"system"`
	Job       string    `gorm:"column:job;type:varchar(20);uniqueIndex:idx_jobs;not null" json:"job"`
	Percent   int       `gorm:"column:perc;not null" json:"percent"`
}

func (Observation) TableName() string {
	return "backup_log"
}

// OK reports whether the observation counts as a successful run.
func (o *Observation) OK() bool {
	return o.Percent == 100
}

// Key identifies the entity an observation belongs to, without its time.
type Key struct {
	Service string `json:"service"`
	Client  string `json:"client"`
	System  string `json:"system"`
	Job     string `json:"job"`
}

func (o *Observation) Key() Key {
	return Key{Service: o.Service, Client: o.Client, System: o.System, Job: o.Job}
}
