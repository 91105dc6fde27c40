package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjorkit/backupwatch/internal/models"
	"github.com/bjorkit/backupwatch/services/status"
)

type stubRepository struct {
	observations []models.Observation
	lastSince    time.Time
}

func (s *stubRepository) InsertBatch(_ context.Context, observations []*models.Observation) (int64, error) {
	return int64(len(observations)), nil
}

func (s *stubRepository) ListSince(_ context.Context, since time.Time) ([]models.Observation, error) {
	s.lastSince = since
	return s.observations, nil
}

func (s *stubRepository) ListAll(_ context.Context) ([]models.Observation, error) {
	return s.observations, nil
}

func (s *stubRepository) Count(_ context.Context) (int64, error) {
	return int64(len(s.observations)), nil
}

func statusRouter(repo *stubRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	aggregator := status.NewAggregator(repo)
	r.GET("/status", Status(aggregator, 40))
	r.GET("/status/latest", LatestStatus(aggregator))
	return r
}

func TestStatus_DefaultWindow(t *testing.T) {
	repo := &stubRepository{observations: []models.Observation{{
		Timestamp: time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC),
		Service:   "Ahsay",
		Client:    "Acme",
		System:    "MAILSRV",
		Job:       "Nightly",
		Percent:   100,
	}}}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)

	statusRouter(repo).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Days     int                    `json:"days"`
		Services []status.ServiceStatus `json:"services"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 40, body.Days)
	require.Len(t, body.Services, 1)
	assert.Equal(t, "Ahsay", body.Services[0].Service)

	expectedSince := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -40)
	assert.True(t, repo.lastSince.Equal(expectedSince))
}

func TestStatus_CustomWindow(t *testing.T) {
	repo := &stubRepository{}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/status?days=7", nil)

	statusRouter(repo).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	expectedSince := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -7)
	assert.True(t, repo.lastSince.Equal(expectedSince))
}

func TestStatus_RejectsBadWindow(t *testing.T) {
	for _, days := range []string{"0", "-5", "soon"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/status?days="+days, nil)

		statusRouter(&stubRepository{}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "days=%s", days)
	}
}

func TestLatestStatus_FullHistory(t *testing.T) {
	repo := &stubRepository{observations: []models.Observation{{
		Timestamp: time.Date(2020, 6, 1, 9, 0, 0, 0, time.UTC),
		Service:   "CrashPlan PRO",
		Client:    "Acme",
		System:    "WS01",
		Job:       "Continuous",
		Percent:   100,
	}}}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/status/latest", nil)

	statusRouter(repo).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Services []status.ServiceStatus `json:"services"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Services, 1)
	assert.Equal(t, "CrashPlan PRO", body.Services[0].Service)
}
