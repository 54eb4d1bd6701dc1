package models

import "time"

// Conditions describes a single driving scenario. Every field carries a
// documented default that the HTTP layer applies when the client omits it.
type Conditions struct {
	VehicleType     string `json:"vehicle_type"`
	DriverAge       int    `json:"driver_age"`
	Experience      int    `json:"experience"`
	LicenseValid    string `json:"license_valid"`
	Seatbelt        string `json:"seatbelt"`
	Weather         string `json:"weather"`
	RoadSurface     string `json:"road_surface"`
	Visibility      string `json:"visibility"`
	LightCondition  string `json:"light_condition"`
	RoadType        string `json:"road_type"`
	RoadDesign      string `json:"road_design"`
	TrafficVolume   string `json:"traffic_volume"`
	SpeedLimit      int    `json:"speed_limit"`
	CurrentSpeed    int    `json:"current_speed"`
	TimeOfDay       string `json:"time_of_day"`
	IsWeekend       bool   `json:"is_weekend"`
	AreaType        string `json:"area_type"`
	Overtaking      string `json:"overtaking"`
	Alcohol         string `json:"alcohol"`
	PhoneUsage      string `json:"phone_usage"`
	AccidentHistory int    `json:"accident_history"`
}

type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// Color returns the fixed hex code tied to the severity bucket.
func (s Severity) Color() string {
	switch s {
	case SeverityLow:
		return "#28a745"
	case SeverityMedium:
		return "#ffc107"
	default:
		return "#dc3545"
	}
}

func (s Severity) Code() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	default:
		return 2
	}
}

type Probabilities struct {
	Low    float64 `json:"low"`
	Medium float64 `json:"medium"`
	High   float64 `json:"high"`
}

// RiskAssessment is the scorer output. It is built once per call and never
// mutated afterwards.
type RiskAssessment struct {
	Location        string        `json:"location"`
	RiskScore       float64       `json:"risk_score"`
	Severity        Severity      `json:"predicted_severity"`
	SeverityCode    int           `json:"severity_code"`
	Probabilities   Probabilities `json:"probabilities"`
	Confidence      float64       `json:"confidence"`
	RiskFactors     []string      `json:"risk_factors"`
	Recommendations []string      `json:"recommendations"`
	Color           string        `json:"color"`
	Timestamp       time.Time     `json:"timestamp"`
}

type AreaType string

const (
	AreaUrban    AreaType = "Urban"
	AreaSuburban AreaType = "Suburban"
	AreaRural    AreaType = "Rural"
)

// ResolvedLocation is the geolocation result for /location requests.
type ResolvedLocation struct {
	Location    string      `json:"location"`
	Coordinates Coordinates `json:"coordinates"`
	AreaType    AreaType    `json:"area_type"`
	Method      string      `json:"method"`
	Accuracy    string      `json:"accuracy"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// WeatherSnapshot is the simulated seasonal weather report.
type WeatherSnapshot struct {
	Weather        string    `json:"weather"`
	RoadSurface    string    `json:"road_surface"`
	Visibility     string    `json:"visibility"`
	LightCondition string    `json:"light_condition"`
	Temperature    int       `json:"temperature"`
	Humidity       int       `json:"humidity"`
	LastUpdated    time.Time `json:"last_updated"`
}

type BatchLocation struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type BatchResult struct {
	BatchID     string            `json:"batch_id"`
	Count       int               `json:"count"`
	Assessments []*RiskAssessment `json:"assessments"`
}

type APIResponse struct {
	Success bool          `json:"success"`
	Data    any           `json:"data"`
	Error   *APIError     `json:"error"`
	Meta    *ResponseMeta `json:"meta"`
}

type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

type ResponseMeta struct {
	RequestID      string    `json:"request_id"`
	Timestamp      time.Time `json:"timestamp"`
	ProcessingTime float64   `json:"processing_time"`
	Version        string    `json:"version"`
}
