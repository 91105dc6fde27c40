package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bjorkit/backupwatch/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, MigrateDB(db))
	return db
}

func observation(ts time.Time, client, system, job string, percent int) *models.Observation {
	return &models.Observation{
		Timestamp: ts,
		Service:   "Ahsay",
		Client:    client,
		System:    system,
		Job:       job,
		Percent:   percent,
	}
}

func TestInsertBatch_IdempotentReingestion(t *testing.T) {
	db := openTestDB(t)
	repo := NewObservationRepository(db, ConflictPolicyReplace)
	ctx := context.Background()
	ts := time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC)

	batch := []*models.Observation{
		observation(ts, "Acme", "MAILSRV", "Nightly", 100),
		observation(ts, "Acme", "FILESRV", "Nightly", 0),
	}
	_, err := repo.InsertBatch(ctx, batch)
	require.NoError(t, err)

	countAfterFirst, err := repo.Count(ctx)
	require.NoError(t, err)

	// Same message processed twice must not create duplicate rows.
	rerun := []*models.Observation{
		observation(ts, "Acme", "MAILSRV", "Nightly", 100),
		observation(ts, "Acme", "FILESRV", "Nightly", 0),
	}
	_, err = repo.InsertBatch(ctx, rerun)
	require.NoError(t, err)

	countAfterSecond, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, countAfterFirst, countAfterSecond)
	assert.Equal(t, int64(2), countAfterSecond)
}

func TestInsertBatch_ReplacePolicyOverwritesPercent(t *testing.T) {
	db := openTestDB(t)
	repo := NewObservationRepository(db, ConflictPolicyReplace)
	ctx := context.Background()
	ts := time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC)

	_, err := repo.InsertBatch(ctx, []*models.Observation{observation(ts, "Acme", "MAILSRV", "Nightly", 0)})
	require.NoError(t, err)
	_, err = repo.InsertBatch(ctx, []*models.Observation{observation(ts, "Acme", "MAILSRV", "Nightly", 100)})
	require.NoError(t, err)

	rows, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 100, rows[0].Percent)
}

func TestInsertBatch_IgnorePolicyKeepsFirstRow(t *testing.T) {
	db := openTestDB(t)
	repo := NewObservationRepository(db, ConflictPolicyIgnore)
	ctx := context.Background()
	ts := time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC)

	_, err := repo.InsertBatch(ctx, []*models.Observation{observation(ts, "Acme", "MAILSRV", "Nightly", 0)})
	require.NoError(t, err)
	_, err = repo.InsertBatch(ctx, []*models.Observation{observation(ts, "Acme", "MAILSRV", "Nightly", 100)})
	require.NoError(t, err)

	rows, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].Percent)
}

func TestInsertBatch_PartialConflictStillCommitsNewRows(t *testing.T) {
	db := openTestDB(t)
	repo := NewObservationRepository(db, ConflictPolicyIgnore)
	ctx := context.Background()
	ts := time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC)

	_, err := repo.InsertBatch(ctx, []*models.Observation{observation(ts, "Acme", "MAILSRV", "Nightly", 100)})
	require.NoError(t, err)

	// One conflicting row, one new row: the new row must land.
	_, err = repo.InsertBatch(ctx, []*models.Observation{
		observation(ts, "Acme", "MAILSRV", "Nightly", 100),
		observation(ts, "Acme", "NEWSRV", "Nightly", 0),
	})
	require.NoError(t, err)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestInsertBatch_NormalizesTimestampsToUTCSeconds(t *testing.T) {
	db := openTestDB(t)
	repo := NewObservationRepository(db, ConflictPolicyReplace)
	ctx := context.Background()

	stockholm := time.FixedZone("CET", 3600)
	ts := time.Date(2023, 1, 2, 10, 4, 5, 123456789, stockholm)

	_, err := repo.InsertBatch(ctx, []*models.Observation{observation(ts, "Acme", "MAILSRV", "Nightly", 100)})
	require.NoError(t, err)

	rows, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, time.Date(2023, 1, 2, 9, 4, 5, 0, time.UTC), rows[0].Timestamp.UTC())
}

func TestListSince_FiltersAndOrders(t *testing.T) {
	db := openTestDB(t)
	repo := NewObservationRepository(db, ConflictPolicyReplace)
	ctx := context.Background()

	old := time.Date(2022, 12, 1, 9, 0, 0, 0, time.UTC)
	recent := time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC)
	later := time.Date(2023, 1, 3, 9, 0, 0, 0, time.UTC)

	_, err := repo.InsertBatch(ctx, []*models.Observation{
		observation(later, "Acme", "A", "J", 100),
		observation(old, "Acme", "B", "J", 100),
		observation(recent, "Acme", "C", "J", 100),
	})
	require.NoError(t, err)

	rows, err := repo.ListSince(ctx, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "C", rows[0].System)
	assert.Equal(t, "A", rows[1].System)
}

func TestInsertBatch_EmptyBatch(t *testing.T) {
	db := openTestDB(t)
	repo := NewObservationRepository(db, ConflictPolicyReplace)

	inserted, err := repo.InsertBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Zero(t, inserted)
}
