// Package conditions fills driving-condition fields from the current time
// when the client does not supply them. The heuristics follow Indian
// seasonal patterns: monsoon from June through September, winter fog in the
// early morning hours.
package conditions

import (
	"strings"
	"time"

	"github.com/san-kum/roadrisk/server/models"
)

// Defaulter derives condition fields from a point in time. Clock is
// injectable for tests.
type Defaulter struct {
	now func() time.Time
}

func NewDefaulter() *Defaulter {
	return &Defaulter{now: time.Now}
}

func NewDefaulterWithClock(now func() time.Time) *Defaulter {
	return &Defaulter{now: now}
}

// Defaults builds the full condition set used by coordinate-based
// predictions, where the client sends no scenario at all.
func (d *Defaulter) Defaults() models.Conditions {
	t := d.now()
	timeOfDay, traffic := timeBands(t.Hour())
	weather, surface, visibility := seasonBands(t.Month())

	light := "Night_with_lights"
	if h := t.Hour(); h >= 6 && h <= 18 {
		light = "Daylight"
	}

	return models.Conditions{
		VehicleType:     "Car",
		DriverAge:       32,
		Experience:      8,
		LicenseValid:    "yes",
		Seatbelt:        "yes",
		Weather:         weather,
		RoadSurface:     surface,
		Visibility:      visibility,
		LightCondition:  light,
		RoadType:        "City_Road",
		RoadDesign:      "Straight",
		TrafficVolume:   traffic,
		SpeedLimit:      60,
		CurrentSpeed:    55,
		TimeOfDay:       timeOfDay,
		IsWeekend:       t.Weekday() == time.Saturday || t.Weekday() == time.Sunday,
		AreaType:        "Urban",
		Overtaking:      "no",
		Alcohol:         "no",
		PhoneUsage:      "no",
		AccidentHistory: 2,
	}
}

// Weather returns the simulated weather snapshot for a location. Snowy and
// Stormy never occur here; the simulation only produces conditions India
// actually sees.
func (d *Defaulter) Weather(location string) models.WeatherSnapshot {
	t := d.now()
	month, hour := t.Month(), t.Hour()

	var snap models.WeatherSnapshot
	switch {
	case month >= time.June && month <= time.September:
		snap.Weather = "Rainy"
		snap.RoadSurface = "Wet"
		snap.Visibility = "medium"
		snap.Humidity = 85
	case month == time.December || month <= time.February:
		snap.Weather = "Clear"
		snap.Visibility = "high"
		if hour >= 5 && hour <= 8 {
			snap.Weather = "Foggy"
			snap.Visibility = "low"
		}
		snap.RoadSurface = "Dry"
		snap.Humidity = 55
	default:
		snap.Weather = "Clear"
		snap.RoadSurface = "Dry"
		snap.Visibility = "high"
		snap.Humidity = 65
	}

	if hour >= 6 && hour <= 18 {
		snap.LightCondition = "Daylight"
	} else {
		snap.LightCondition = "Night_with_lights"
	}

	snap.Temperature = baseTemperature(location)
	if month == time.December || month <= time.February {
		snap.Temperature -= 5
	}
	snap.LastUpdated = t

	return snap
}

func timeBands(hour int) (timeOfDay, traffic string) {
	switch {
	case hour >= 5 && hour < 12:
		return "Morning", "Medium"
	case hour >= 12 && hour < 17:
		return "Afternoon", "High"
	case hour >= 17 && hour < 21:
		return "Evening", "High"
	default:
		return "Night", "Low"
	}
}

func seasonBands(month time.Month) (weather, surface, visibility string) {
	if month >= time.June && month <= time.September {
		return "Rainy", "Wet", "medium"
	}
	return "Clear", "Dry", "high"
}

func baseTemperature(location string) int {
	if strings.Contains(strings.ToLower(location), "mumbai") {
		return 30
	}
	return 28
}
