package processor

import (
	"testing"
	"time"

	"github.com/san-kum/roadrisk/server/cache"
	"github.com/san-kum/roadrisk/server/conditions"
	"github.com/san-kum/roadrisk/server/geo"
	"github.com/san-kum/roadrisk/server/models"
	"github.com/san-kum/roadrisk/server/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProcessor(t *testing.T) *AssessmentProcessor {
	t.Helper()

	logger := zap.NewNop()
	c := cache.NewMemoryCache(100, time.Minute, logger)
	t.Cleanup(func() { c.Close() })

	p := NewAssessmentProcessor(
		risk.NewScorer(logger),
		geo.NewCityResolver(),
		conditions.NewDefaulter(),
		c,
		logger,
	)
	t.Cleanup(func() { p.Shutdown() })

	return p
}

func testConditions() models.Conditions {
	return models.Conditions{
		VehicleType: "Car", DriverAge: 30, Experience: 5,
		LicenseValid: "yes", Seatbelt: "yes",
		Weather: "Clear", RoadSurface: "Dry", Visibility: "high",
		LightCondition: "Daylight", RoadType: "City_Road",
		RoadDesign: "Straight", TrafficVolume: "Medium",
		SpeedLimit: 60, CurrentSpeed: 55,
		TimeOfDay: "Afternoon", AreaType: "Urban",
		Overtaking: "no", Alcohol: "no", PhoneUsage: "no",
	}
}

func TestAssessCachesResult(t *testing.T) {
	p := newTestProcessor(t)

	first, err := p.Assess("Mumbai, Maharashtra", testConditions())
	require.NoError(t, err)

	cached, err := p.Assess("Mumbai, Maharashtra", testConditions())
	require.NoError(t, err)

	assert.Equal(t, first, cached)
	assert.GreaterOrEqual(t, p.GetStats().CacheHits, int64(1))
}

func TestAssessInvalidConditionSurfaces(t *testing.T) {
	p := newTestProcessor(t)

	c := testConditions()
	c.RoadSurface = "Oily"

	_, err := p.Assess("Mumbai, Maharashtra", c)
	assert.ErrorIs(t, err, risk.ErrInvalidCondition)
}

func TestAssessCoordinates(t *testing.T) {
	p := newTestProcessor(t)

	a, err := p.AssessCoordinates(19.0760, 72.8777)
	require.NoError(t, err)

	assert.Equal(t, "Mumbai, Maharashtra", a.Location)
	assert.GreaterOrEqual(t, a.RiskScore, 5.0)
	assert.LessOrEqual(t, a.RiskScore, 95.0)
}

func TestAssessBatch(t *testing.T) {
	p := newTestProcessor(t)

	locations := []models.BatchLocation{
		{Lat: 19.0760, Lon: 72.8777},
		{Lat: 28.7041, Lon: 77.1025},
		{Lat: 12.9716, Lon: 77.5946},
	}

	result, err := p.AssessBatch(locations)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Count)
	assert.NotEmpty(t, result.BatchID)
	require.Len(t, result.Assessments, 3)

	// Results keep input order.
	assert.Equal(t, "Mumbai, Maharashtra", result.Assessments[0].Location)
	assert.Equal(t, "New Delhi", result.Assessments[1].Location)
	assert.Equal(t, "Bangalore, Karnataka", result.Assessments[2].Location)
}

func TestQueueRejectsWhenShutDown(t *testing.T) {
	q := NewAssessmentQueue(1, 1, func(item *QueueItem) {
		item.ResultChan <- &AssessmentResult{}
	})
	require.NoError(t, q.Shutdown(time.Second))

	ok := q.Enqueue(&QueueItem{ResultChan: make(chan *AssessmentResult, 1)})
	assert.False(t, ok)
}
