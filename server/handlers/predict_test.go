package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/san-kum/roadrisk/server/cache"
	"github.com/san-kum/roadrisk/server/conditions"
	"github.com/san-kum/roadrisk/server/geo"
	"github.com/san-kum/roadrisk/server/models"
	"github.com/san-kum/roadrisk/server/processor"
	"github.com/san-kum/roadrisk/server/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool                 `json:"success"`
	Data    json.RawMessage      `json:"data"`
	Error   *models.APIError     `json:"error"`
	Meta    *models.ResponseMeta `json:"meta"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	scorer := risk.NewScorer(logger)
	resolver := geo.NewCityResolver()
	defaulter := conditions.NewDefaulter()
	memCache := cache.NewMemoryCache(100, time.Minute, logger)
	proc := processor.NewAssessmentProcessor(scorer, resolver, defaulter, memCache, logger)
	t.Cleanup(func() {
		_ = proc.Shutdown()
		_ = memCache.Close()
	})

	h := NewPredictHandler(proc, resolver, defaulter, logger)

	router := gin.New()
	api := router.Group("/api/v1")
	api.POST("/predict", h.Predict)
	api.POST("/predict/coordinates", h.PredictCoordinates)
	api.POST("/predict/batch", h.PredictBatch)
	api.POST("/location", h.Location)
	api.GET("/weather", h.Weather)
	api.GET("/risk-factors", h.RiskFactors)
	api.GET("/model-info", h.ModelInfo)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestPredictReturnsAssessment(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodPost, "/api/v1/predict", gin.H{
		"location": "Mumbai, Maharashtra",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)
	require.NotNil(t, env.Meta)
	assert.NotEmpty(t, env.Meta.RequestID)
	assert.Equal(t, "1.0.0", env.Meta.Version)

	var assessment models.RiskAssessment
	require.NoError(t, json.Unmarshal(env.Data, &assessment))
	assert.Equal(t, "Mumbai, Maharashtra", assessment.Location)
	assert.Greater(t, assessment.RiskScore, 0.0)
	assert.LessOrEqual(t, assessment.RiskScore, 95.0)
	assert.Contains(t, []models.Severity{models.SeverityLow, models.SeverityMedium, models.SeverityHigh}, assessment.Severity)
	sum := assessment.Probabilities.Low + assessment.Probabilities.Medium + assessment.Probabilities.High
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.NotEmpty(t, assessment.Color)
}

func TestPredictRepeatsIdenticalScenario(t *testing.T) {
	router := newTestRouter(t)
	body := gin.H{
		"location":     "Pune, Maharashtra",
		"weather":      "Rainy",
		"road_surface": "Wet",
		"time_of_day":  "Night",
	}

	rec1, env1 := doJSON(t, router, http.MethodPost, "/api/v1/predict", body)
	rec2, env2 := doJSON(t, router, http.MethodPost, "/api/v1/predict", body)

	require.Equal(t, http.StatusOK, rec1.Code)
	require.Equal(t, http.StatusOK, rec2.Code)

	var first, second models.RiskAssessment
	require.NoError(t, json.Unmarshal(env1.Data, &first))
	require.NoError(t, json.Unmarshal(env2.Data, &second))
	assert.Equal(t, first.RiskScore, second.RiskScore)
	assert.Equal(t, first.Severity, second.Severity)
	assert.Equal(t, first.Confidence, second.Confidence)
}

func TestPredictMissingLocation(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodPost, "/api/v1/predict", gin.H{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
}

func TestPredictRejectsUnknownSurface(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodPost, "/api/v1/predict", gin.H{
		"location":     "Mumbai, Maharashtra",
		"road_surface": "Oily",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_CONDITION", env.Error.Code)
	assert.Contains(t, env.Error.Message, "road_surface")
}

func TestPredictCoordinates(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodPost, "/api/v1/predict/coordinates", gin.H{
		"lat": 19.0760,
		"lon": 72.8777,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	var assessment models.RiskAssessment
	require.NoError(t, json.Unmarshal(env.Data, &assessment))
	assert.Equal(t, "Mumbai, Maharashtra", assessment.Location)
}

func TestPredictCoordinatesRejectsNullIsland(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodPost, "/api/v1/predict/coordinates", gin.H{
		"lat": 0.0,
		"lon": 0.0,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
}

func TestPredictBatch(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodPost, "/api/v1/predict/batch", gin.H{
		"locations": []gin.H{
			{"lat": 19.0760, "lon": 72.8777},
			{"lat": 12.9716, "lon": 77.5946},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	var result models.BatchResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.NotEmpty(t, result.BatchID)
	assert.Equal(t, 2, result.Count)
	require.Len(t, result.Assessments, 2)
	assert.Equal(t, "Mumbai, Maharashtra", result.Assessments[0].Location)
	assert.Equal(t, "Bangalore, Karnataka", result.Assessments[1].Location)
}

func TestPredictBatchEmpty(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodPost, "/api/v1/predict/batch", gin.H{
		"locations": []gin.H{},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
}

func TestLocationWithGPS(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodPost, "/api/v1/location", gin.H{
		"lat": 28.7041,
		"lon": 77.1025,
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resolved models.ResolvedLocation
	require.NoError(t, json.Unmarshal(env.Data, &resolved))
	assert.Equal(t, "New Delhi", resolved.Location)
	assert.Equal(t, "GPS", resolved.Method)
	assert.Equal(t, models.AreaUrban, resolved.AreaType)
}

func TestLocationLoopbackDefaults(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/location", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "127.0.0.1:54321"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var resolved models.ResolvedLocation
	require.NoError(t, json.Unmarshal(env.Data, &resolved))
	assert.Equal(t, "Mumbai, Maharashtra", resolved.Location)
	assert.Equal(t, "Default", resolved.Method)
}

func TestWeatherSnapshot(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodGet, "/api/v1/weather?location=Mumbai", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	var snapshot models.WeatherSnapshot
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.NotEmpty(t, snapshot.Weather)
	assert.NotEmpty(t, snapshot.RoadSurface)
	assert.Greater(t, snapshot.Temperature, 0)
	assert.False(t, snapshot.LastUpdated.IsZero())
}

func TestRiskFactorsCatalog(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodGet, "/api/v1/risk-factors", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	var catalog map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &catalog))
	assert.Contains(t, catalog, "vehicle_types")
	assert.Contains(t, catalog, "weather_conditions")
	assert.Contains(t, catalog, "risk_categories")
}

func TestModelInfo(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodGet, "/api/v1/model-info", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	var info map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, "Deterministic weighted-sum heuristic", info["model_type"])
	assert.Equal(t, true, info["deterministic"])
}
