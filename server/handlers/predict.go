package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/san-kum/roadrisk/server/conditions"
	"github.com/san-kum/roadrisk/server/geo"
	"github.com/san-kum/roadrisk/server/models"
	"github.com/san-kum/roadrisk/server/processor"
	"github.com/san-kum/roadrisk/server/risk"
	"go.uber.org/zap"
)

const apiVersion = "1.0.0"

type PredictHandler struct {
	processor *processor.AssessmentProcessor
	resolver  geo.Resolver
	defaulter *conditions.Defaulter
	logger    *zap.Logger
	stats     *SystemStats
}

type SystemStats struct {
	TotalRequests  int64     `json:"total_requests"`
	ProcessedOK    int64     `json:"processed_ok"`
	ProcessedError int64     `json:"processed_error"`
	AvgProcessTime float64   `json:"avg_process_time_ms"`
	LastUpdated    time.Time `json:"last_updated"`
}

// PredictRequest carries a scenario. Pointer fields distinguish an omitted
// value from a deliberate zero; omitted fields fall back to the documented
// defaults.
type PredictRequest struct {
	Location        string  `json:"location" binding:"required"`
	VehicleType     *string `json:"vehicle_type"`
	DriverAge       *int    `json:"driver_age"`
	Experience      *int    `json:"experience"`
	LicenseValid    *string `json:"license_valid"`
	Seatbelt        *string `json:"seatbelt"`
	Weather         *string `json:"weather"`
	RoadSurface     *string `json:"road_surface"`
	Visibility      *string `json:"visibility"`
	LightCondition  *string `json:"light_condition"`
	RoadType        *string `json:"road_type"`
	RoadDesign      *string `json:"road_design"`
	TrafficVolume   *string `json:"traffic_volume"`
	SpeedLimit      *int    `json:"speed_limit"`
	CurrentSpeed    *int    `json:"current_speed"`
	TimeOfDay       *string `json:"time_of_day"`
	IsWeekend       *bool   `json:"is_weekend"`
	AreaType        *string `json:"area_type"`
	Overtaking      *string `json:"overtaking"`
	Alcohol         *string `json:"alcohol"`
	PhoneUsage      *string `json:"phone_usage"`
	AccidentHistory *int    `json:"accident_history"`
}

type CoordinateRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type BatchRequest struct {
	Locations []models.BatchLocation `json:"locations" binding:"required"`
}

type LocationRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

func NewPredictHandler(p *processor.AssessmentProcessor, resolver geo.Resolver, defaulter *conditions.Defaulter, logger *zap.Logger) *PredictHandler {
	return &PredictHandler{
		processor: p,
		resolver:  resolver,
		defaulter: defaulter,
		logger:    logger,
		stats: &SystemStats{
			LastUpdated: time.Now(),
		},
	}
}

// Predict handles comprehensive scenario scoring.
func (h *PredictHandler) Predict(c *gin.Context) {
	startTime := time.Now()
	h.stats.TotalRequests++

	var request PredictRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.Error("invalid request format", zap.Error(err))
		h.respondError(c, http.StatusBadRequest, "INVALID_INPUT", "Invalid request format")
		return
	}

	conditions := request.Conditions()

	assessment, err := h.processor.Assess(request.Location, conditions)
	if err != nil {
		if errors.Is(err, risk.ErrInvalidCondition) {
			h.logger.Warn("condition out of domain", zap.Error(err), zap.String("location", request.Location))
			h.respondError(c, http.StatusBadRequest, "INVALID_CONDITION", err.Error())
			return
		}
		h.logger.Error("assessment failed",
			zap.Error(err),
			zap.String("client_ip", c.ClientIP()))
		h.respondError(c, http.StatusInternalServerError, "ASSESSMENT_FAILED", "Risk assessment failed")
		return
	}

	h.updateProcessingStats(time.Since(startTime))
	h.stats.ProcessedOK++

	h.respond(c, http.StatusOK, assessment, startTime)
}

// PredictCoordinates handles legacy lat/lon prediction: the location is
// resolved to the nearest city and conditions default from the clock.
func (h *PredictHandler) PredictCoordinates(c *gin.Context) {
	startTime := time.Now()
	h.stats.TotalRequests++

	var request CoordinateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.respondError(c, http.StatusBadRequest, "INVALID_INPUT", "Invalid request format")
		return
	}

	if request.Lat == 0 && request.Lon == 0 {
		h.respondError(c, http.StatusBadRequest, "INVALID_INPUT", "Invalid coordinates")
		return
	}

	assessment, err := h.processor.AssessCoordinates(request.Lat, request.Lon)
	if err != nil {
		h.logger.Error("coordinate assessment failed", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "ASSESSMENT_FAILED", "Coordinate prediction failed")
		return
	}

	h.updateProcessingStats(time.Since(startTime))
	h.stats.ProcessedOK++

	h.respond(c, http.StatusOK, assessment, startTime)
}

// PredictBatch scores multiple coordinate pairs through the worker pool.
func (h *PredictHandler) PredictBatch(c *gin.Context) {
	startTime := time.Now()
	h.stats.TotalRequests++

	var request BatchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.respondError(c, http.StatusBadRequest, "INVALID_INPUT", "No locations provided")
		return
	}

	if len(request.Locations) == 0 {
		h.respondError(c, http.StatusBadRequest, "INVALID_INPUT", "No locations provided")
		return
	}

	h.logger.Info("batch assessment started", zap.Int("locations", len(request.Locations)))

	result, err := h.processor.AssessBatch(request.Locations)
	if err != nil {
		h.logger.Error("batch assessment failed", zap.Error(err))
		h.respondError(c, http.StatusServiceUnavailable, "BATCH_FAILED", "Batch prediction unavailable")
		return
	}

	h.updateProcessingStats(time.Since(startTime))
	h.stats.ProcessedOK++

	h.respond(c, http.StatusOK, result, startTime)
}

// Location resolves the caller's position: explicit GPS coordinates win,
// loopback addresses get the default metro, anything else is simulated from
// an IP hash so repeat calls stay consistent.
func (h *PredictHandler) Location(c *gin.Context) {
	startTime := time.Now()

	var request LocationRequest
	_ = c.ShouldBindJSON(&request)

	if request.Lat != nil && request.Lon != nil {
		lat, lon := *request.Lat, *request.Lon
		resolved := models.ResolvedLocation{
			Location:    h.resolver.Locate(lat, lon),
			Coordinates: models.Coordinates{Lat: lat, Lon: lon},
			AreaType:    h.resolver.AreaType(lat, lon),
			Method:      "GPS",
			Accuracy:    "High",
		}
		h.respond(c, http.StatusOK, resolved, startTime)
		return
	}

	clientIP := c.ClientIP()
	if clientIP == "" || clientIP == "127.0.0.1" || clientIP == "::1" {
		h.respond(c, http.StatusOK, models.ResolvedLocation{
			Location:    "Mumbai, Maharashtra",
			Coordinates: models.Coordinates{Lat: 19.0760, Lon: 72.8777},
			AreaType:    models.AreaUrban,
			Method:      "Default",
			Accuracy:    "Medium",
		}, startTime)
		return
	}

	h.respond(c, http.StatusOK, h.resolver.LocationForIP(clientIP), startTime)
}

// Weather returns the simulated seasonal snapshot for a location.
func (h *PredictHandler) Weather(c *gin.Context) {
	startTime := time.Now()
	location := c.DefaultQuery("location", "Mumbai")

	snapshot := h.defaulter.Weather(location)

	h.logger.Debug("weather snapshot",
		zap.String("location", location),
		zap.String("weather", snapshot.Weather))

	h.respond(c, http.StatusOK, snapshot, startTime)
}

// RiskFactors returns the enumerated condition domains for clients.
func (h *PredictHandler) RiskFactors(c *gin.Context) {
	h.respond(c, http.StatusOK, gin.H{
		"vehicle_types":      []string{"Car", "Bike", "Truck", "Bus", "Auto-rickshaw", "Bicycle"},
		"weather_conditions": []string{"Clear", "Rainy", "Foggy", "Snowy", "Stormy", "Hazy"},
		"road_surfaces":      []string{"Dry", "Wet", "Icy", "Muddy"},
		"visibility_levels":  []string{"high", "medium", "low"},
		"light_conditions":   []string{"Daylight", "Night_with_lights", "Night_without_lights"},
		"road_types":         []string{"Highway", "City_Road", "Rural_Road"},
		"road_designs":       []string{"Straight", "Curved", "Junction", "Roundabout"},
		"traffic_volumes":    []string{"Low", "Medium", "High"},
		"time_periods":       []string{"Morning", "Afternoon", "Evening", "Night"},
		"area_types":         []string{"Urban", "Suburban", "Rural"},
		"risk_categories": gin.H{
			"low":    gin.H{"range": "0-30%", "color": "#28a745", "description": "Minimal risk conditions"},
			"medium": gin.H{"range": "31-60%", "color": "#ffc107", "description": "Moderate risk - exercise caution"},
			"high":   gin.H{"range": "61-100%", "color": "#dc3545", "description": "High risk - extra precaution required"},
		},
	}, time.Now())
}

// ModelInfo describes the scoring engine. The scorer is a weighted-sum
// heuristic and is reported as such.
func (h *PredictHandler) ModelInfo(c *gin.Context) {
	h.respond(c, http.StatusOK, gin.H{
		"model_type":    "Deterministic weighted-sum heuristic",
		"is_ensemble":   false,
		"n_classes":     3,
		"version":       apiVersion,
		"feature_count": 21,
		"deterministic": true,
		"seed_scope":    []string{"location", "weather", "time_of_day", "road_type"},
		"classes":       []string{"Low", "Medium", "High"},
	}, time.Now())
}

func (h *PredictHandler) GetStats(c *gin.Context) {
	h.stats.LastUpdated = time.Now()

	var successRate float64
	if h.stats.TotalRequests > 0 {
		successRate = float64(h.stats.ProcessedOK) / float64(h.stats.TotalRequests) * 100
	}

	processorStats := h.processor.GetStats()

	c.JSON(http.StatusOK, gin.H{
		"system":    h.stats,
		"processor": processorStats,
		"metrics": gin.H{
			"success_rate":   successRate,
			"uptime_seconds": time.Since(processorStats.StartTime).Seconds(),
		},
	})
}

// Conditions materializes the request into a full condition set, filling
// documented defaults for every omitted field.
func (r *PredictRequest) Conditions() models.Conditions {
	return models.Conditions{
		VehicleType:     stringOr(r.VehicleType, "Car"),
		DriverAge:       intOr(r.DriverAge, 30),
		Experience:      intOr(r.Experience, 5),
		LicenseValid:    stringOr(r.LicenseValid, "yes"),
		Seatbelt:        stringOr(r.Seatbelt, "yes"),
		Weather:         stringOr(r.Weather, "Clear"),
		RoadSurface:     stringOr(r.RoadSurface, "Dry"),
		Visibility:      stringOr(r.Visibility, "high"),
		LightCondition:  stringOr(r.LightCondition, "Daylight"),
		RoadType:        stringOr(r.RoadType, "City_Road"),
		RoadDesign:      stringOr(r.RoadDesign, "Straight"),
		TrafficVolume:   stringOr(r.TrafficVolume, "Medium"),
		SpeedLimit:      intOr(r.SpeedLimit, 60),
		CurrentSpeed:    intOr(r.CurrentSpeed, 50),
		TimeOfDay:       stringOr(r.TimeOfDay, "Afternoon"),
		IsWeekend:       r.IsWeekend != nil && *r.IsWeekend,
		AreaType:        stringOr(r.AreaType, "Urban"),
		Overtaking:      stringOr(r.Overtaking, "no"),
		Alcohol:         stringOr(r.Alcohol, "no"),
		PhoneUsage:      stringOr(r.PhoneUsage, "no"),
		AccidentHistory: intOr(r.AccidentHistory, 0),
	}
}

func (h *PredictHandler) respond(c *gin.Context, status int, data any, startTime time.Time) {
	c.JSON(status, models.APIResponse{
		Success: true,
		Data:    data,
		Meta: &models.ResponseMeta{
			RequestID:      uuid.NewString(),
			Timestamp:      time.Now(),
			ProcessingTime: float64(time.Since(startTime).Microseconds()) / 1000.0,
			Version:        apiVersion,
		},
	})
}

func (h *PredictHandler) respondError(c *gin.Context, status int, code, message string) {
	h.stats.ProcessedError++
	c.JSON(status, models.APIResponse{
		Success: false,
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
		Meta: &models.ResponseMeta{
			RequestID: uuid.NewString(),
			Timestamp: time.Now(),
			Version:   apiVersion,
		},
	})
}

func (h *PredictHandler) updateProcessingStats(duration time.Duration) {
	currentTime := float64(duration.Microseconds()) / 1000.0

	if h.stats.AvgProcessTime == 0 {
		h.stats.AvgProcessTime = currentTime
	} else {
		alpha := 0.1
		h.stats.AvgProcessTime = alpha*currentTime + (1-alpha)*h.stats.AvgProcessTime
	}
}

func stringOr(v *string, def string) string {
	if v != nil {
		return *v
	}
	return def
}

func intOr(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}
