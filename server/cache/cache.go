// Package cache stores computed risk assessments. The scorer has no
// wall-clock dependence, so an assessment keyed by the full scenario can be
// replayed for any later request that repeats it.
package cache

import (
	"context"
	"crypto/md5"
	"fmt"
	"time"

	"github.com/san-kum/roadrisk/server/models"
)

var ErrCacheMiss = fmt.Errorf("cache miss")

type Cache interface {
	Set(ctx context.Context, key string, assessment *models.RiskAssessment) error

	Get(ctx context.Context, key string) (*models.RiskAssessment, error)

	Delete(ctx context.Context, key string) error

	GetStats(ctx context.Context) (*CacheStats, error)

	Close() error
}

type CacheStats struct {
	Connected bool   `json:"connected"`
	Info      string `json:"info"`
}

// AssessmentKey hashes a full scenario into a cache key. Every condition
// field participates: two scenarios that differ anywhere may score
// differently even though they share a jitter seed.
func AssessmentKey(location string, c models.Conditions) string {
	h := md5.New()
	fmt.Fprintf(h, "%s|%+v", location, c)
	return fmt.Sprintf("%x", h.Sum(nil))
}

type cacheItem struct {
	assessment  *models.RiskAssessment
	expiresAt   time.Time
	lastUsed    time.Time
	accessCount int64
}
