package repository

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bjorkit/backupwatch/interfaces"
	"github.com/bjorkit/backupwatch/internal/models"
	"github.com/bjorkit/backupwatch/internal/tracing"
)

// Conflict policies for re-ingested observations.
const (
	ConflictPolicyIgnore  = "ignore"
	ConflictPolicyReplace = "replace"
)

type observationRepository struct {
	db             *gorm.DB
	conflictPolicy string
}

func NewObservationRepository(db *gorm.DB, conflictPolicy string) interfaces.ObservationRepository {
	if conflictPolicy != ConflictPolicyIgnore {
		conflictPolicy = ConflictPolicyReplace
	}
	return &observationRepository{
		db:             db,
		conflictPolicy: conflictPolicy,
	}
}

func (r *observationRepository) conflictClause() clause.OnConflict {
	conflictColumns := []clause.Column{
		{Name: "timestamp"},
		{Name: "service"},
		{Name: "client"},
		{Name: "system"},
		{Name: "job"},
	}
	if r.conflictPolicy == ConflictPolicyIgnore {
		return clause.OnConflict{Columns: conflictColumns, DoNothing: true}
	}
	return clause.OnConflict{
		Columns:   conflictColumns,
		DoUpdates: clause.AssignmentColumns([]string{"perc"}),
	}
}

func (r *observationRepository) InsertBatch(ctx context.Context, observations []*models.Observation) (int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "observationRepository.InsertBatch")
	defer span.Finish()
	tracing.TagComponentRepository(span)
	span.SetTag("batch.size", len(observations))

	if len(observations) == 0 {
		return 0, nil
	}

	for _, o := range observations {
		o.Timestamp = o.Timestamp.UTC().Truncate(time.Second)
	}

	var inserted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(r.conflictClause()).Create(&observations)
		if result.Error != nil {
			return result.Error
		}
		inserted = result.RowsAffected
		return nil
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, err
	}

	span.SetTag("batch.inserted", inserted)
	return inserted, nil
}

func (r *observationRepository) ListSince(ctx context.Context, since time.Time) ([]models.Observation, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "observationRepository.ListSince")
	defer span.Finish()
	tracing.TagComponentRepository(span)

	var observations []models.Observation
	err := r.db.WithContext(ctx).
		Where("timestamp >= ?", since.UTC()).
		Order("timestamp asc").
		Find(&observations).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return observations, nil
}

func (r *observationRepository) ListAll(ctx context.Context) ([]models.Observation, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "observationRepository.ListAll")
	defer span.Finish()
	tracing.TagComponentRepository(span)

	var observations []models.Observation
	err := r.db.WithContext(ctx).
		Order("timestamp asc").
		Find(&observations).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return observations, nil
}

func (r *observationRepository) Count(ctx context.Context) (int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "observationRepository.Count")
	defer span.Finish()
	tracing.TagComponentRepository(span)

	var count int64
	err := r.db.WithContext(ctx).Model(&models.Observation{}).Count(&count).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, err
	}
	return count, nil
}
