package cache

import (
	"context"
	"testing"
	"time"

	"github.com/san-kum/roadrisk/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func zapNop() *zap.Logger {
	return zap.NewNop()
}

func sampleAssessment() *models.RiskAssessment {
	return &models.RiskAssessment{
		Location:  "Mumbai, Maharashtra",
		RiskScore: 42.5,
		Severity:  models.SeverityMedium,
	}
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache(10, time.Minute, zapNop())
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "key", sampleAssessment()))

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, 42.5, got.RiskScore)
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache(10, time.Minute, zapNop())
	defer c.Close()

	_, err := c.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(10, -time.Second, zapNop())
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "key", sampleAssessment()))

	_, err := c.Get(ctx, "key")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheEviction(t *testing.T) {
	c := NewMemoryCache(2, time.Minute, zapNop())
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "a", sampleAssessment()))
	require.NoError(t, c.Set(ctx, "b", sampleAssessment()))
	require.NoError(t, c.Set(ctx, "c", sampleAssessment()))

	stats, err := c.GetStats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.Connected)
}

func TestAssessmentKeyCoversAllFields(t *testing.T) {
	base := models.Conditions{Weather: "Clear", TimeOfDay: "Morning", RoadType: "Highway"}

	same := AssessmentKey("Mumbai", base)
	assert.Equal(t, same, AssessmentKey("Mumbai", base))

	// A change outside the jitter seed scope must still change the key:
	// the score depends on every field.
	changed := base
	changed.Alcohol = "yes"
	assert.NotEqual(t, same, AssessmentKey("Mumbai", changed))

	assert.NotEqual(t, same, AssessmentKey("Delhi", base))
}
