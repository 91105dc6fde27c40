package status

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/bjorkit/backupwatch/interfaces"
	"github.com/bjorkit/backupwatch/internal/models"
	"github.com/bjorkit/backupwatch/internal/tracing"
)

// DayCell is one day's outcome for one backup job. When a day saw several
// readings, the cell reflects the last one only.
type DayCell struct {
	Date    time.Time `json:"date"`
	Percent int       `json:"percent"`
	OK      bool      `json:"ok"`
}

// EntryStatus is the day-by-day series for one (client, system, job) key.
type EntryStatus struct {
	Client string    `json:"client"`
	System string    `json:"system"`
	Job    string    `json:"job"`
	Days   []DayCell `json:"days"`
}

// ServiceStatus groups the series of one backup service.
type ServiceStatus struct {
	Service string        `json:"service"`
	Entries []EntryStatus `json:"entries"`
}

// Aggregator projects the stored observation history into per-service
// status grids. It holds no state between calls.
type Aggregator struct {
	repo interfaces.ObservationRepository
}

func NewAggregator(repo interfaces.ObservationRepository) *Aggregator {
	return &Aggregator{repo: repo}
}

// Aggregate builds the status grid from all observations at or after
// since. Services and entries appear in first-observation order.
func (a *Aggregator) Aggregate(ctx context.Context, since time.Time) ([]ServiceStatus, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Aggregator.Aggregate")
	defer span.Finish()
	tracing.TagComponentService(span)

	observations, err := a.repo.ListSince(ctx, since)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return project(observations), nil
}

// AggregateAll builds the status grid from the full history.
func (a *Aggregator) AggregateAll(ctx context.Context) ([]ServiceStatus, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Aggregator.AggregateAll")
	defer span.Finish()
	tracing.TagComponentService(span)

	observations, err := a.repo.ListAll(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return project(observations), nil
}

// DetectFailures returns the keys whose most recent observation within
// the given day window was not a success. Keys silent across the whole
// window are excluded.
func (a *Aggregator) DetectFailures(ctx context.Context, windowDays int) ([]models.Key, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Aggregator.DetectFailures")
	defer span.Finish()
	tracing.TagComponentService(span)
	span.SetTag("window.days", windowDays)

	since := dayOf(time.Now().UTC()).AddDate(0, 0, -windowDays)
	observations, err := a.repo.ListSince(ctx, since)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	// Observations arrive timestamp-ascending, so the running value per
	// key ends up being the most recent one.
	var order []models.Key
	latest := make(map[models.Key]models.Observation)
	for _, o := range observations {
		key := o.Key()
		if _, seen := latest[key]; !seen {
			order = append(order, key)
		}
		latest[key] = o
	}

	var failures []models.Key
	for _, key := range order {
		if o := latest[key]; !o.OK() {
			failures = append(failures, key)
		}
	}
	return failures, nil
}

// project pivots a timestamp-ordered observation list into the status
// grid. Built fresh on every call; nothing is cached across calls.
func project(observations []models.Observation) []ServiceStatus {
	type position struct {
		service int
		entry   int
	}

	var services []ServiceStatus
	serviceIndex := make(map[string]int)
	entryIndex := make(map[models.Key]position)

	for _, o := range observations {
		si, ok := serviceIndex[o.Service]
		if !ok {
			si = len(services)
			serviceIndex[o.Service] = si
			services = append(services, ServiceStatus{Service: o.Service})
		}

		key := o.Key()
		pos, ok := entryIndex[key]
		if !ok {
			pos = position{service: si, entry: len(services[si].Entries)}
			entryIndex[key] = pos
			services[si].Entries = append(services[si].Entries, EntryStatus{
				Client: o.Client,
				System: o.System,
				Job:    o.Job,
			})
		}
		entry := &services[pos.service].Entries[pos.entry]

		cell := DayCell{Date: dayOf(o.Timestamp), Percent: o.Percent, OK: o.OK()}
		if n := len(entry.Days); n > 0 && entry.Days[n-1].Date.Equal(cell.Date) {
			// later reading on the same day wins
			entry.Days[n-1] = cell
		} else {
			entry.Days = append(entry.Days, cell)
		}
	}

	return services
}

func dayOf(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}
