package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bjorkit/backupwatch/internal/tracing"
	"github.com/bjorkit/backupwatch/services/status"
)

// Status returns the per-service status grid for the last N days
// (?days=N, positive). Each request recomputes the grid from the store;
// handlers hold no state between requests.
func Status(aggregator *status.Aggregator, defaultDaysBack int) gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := tracing.StartHttpServerTracerSpan(c, "GET /status")
		defer span.Finish()
		tracing.TagComponentRest(span)

		days := defaultDaysBack
		if raw := c.Query("days"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "days must be an integer"})
				return
			}
			days = parsed
		}
		if days <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be positive"})
			return
		}

		since := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -days)
		data, err := aggregator.Aggregate(ctx, since)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate status"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"days": days, "services": data})
	}
}

// LatestStatus returns the status grid over the full observation history.
func LatestStatus(aggregator *status.Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := tracing.StartHttpServerTracerSpan(c, "GET /status/latest")
		defer span.Finish()
		tracing.TagComponentRest(span)

		data, err := aggregator.AggregateAll(ctx)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate status"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"services": data})
	}
}
