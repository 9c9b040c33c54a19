package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cashier/models"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// ReportCache is a best-effort redis cache for dashboard aggregates.
// Every failure path falls through to a direct query; a nil cache or nil
// client disables caching entirely.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache creates a report cache backed by the given redis client
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

func reportCacheKey(now time.Time) string {
	// One key per day so the today-window aggregates never leak across days
	return fmt.Sprintf("cashier:dashboard:%s", now.Format("2006-01-02"))
}

// Get returns a cached report for the given day, if present
func (c *ReportCache) Get(ctx context.Context, now time.Time) (*models.DashboardReport, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, reportCacheKey(now)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.WithError(err).Debug("Report cache read failed")
		return nil, false
	}

	var report models.DashboardReport
	if err := json.Unmarshal(raw, &report); err != nil {
		log.WithError(err).Debug("Report cache payload corrupt, ignoring")
		return nil, false
	}
	return &report, true
}

// Set stores a report for the given day
func (c *ReportCache) Set(ctx context.Context, now time.Time, report *models.DashboardReport) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(report)
	if err != nil {
		log.WithError(err).Debug("Report cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, reportCacheKey(now), raw, c.ttl).Err(); err != nil {
		log.WithError(err).Debug("Report cache write failed")
	}
}
