// Package risk implements the accident risk heuristic: a deterministic
// weighted sum over driving-condition fields with seeded jitter. There is
// no statistical model behind it; every constant is hand-tuned.
package risk

import (
	"crypto/md5"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/roadrisk/server/models"
	"go.uber.org/zap"
)

type Scorer struct {
	logger *zap.Logger
}

func NewScorer(logger *zap.Logger) *Scorer {
	return &Scorer{logger: logger}
}

// Score assesses a single driving scenario. The jitter stream is seeded
// from (location, weather, time_of_day, road_type) only, so identical
// inputs always produce identical output and scenarios differing in other
// fields draw the same jitter.
func (s *Scorer) Score(location string, c models.Conditions) (*models.RiskAssessment, error) {
	total, err := s.accumulate(location, c)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed(location, c)))

	normalized := clamp(total/riskScale, 0.05, 0.95)
	final := math.Min(normalized*uniform(rng, 0.95, 1.05), 0.95)

	severity := bucket(final)
	probs := probabilities(rng, final, severity)
	confidence := clamp(final+uniform(rng, 0.1, 0.2), 0.6, 0.95)

	assessment := &models.RiskAssessment{
		Location:        location,
		RiskScore:       math.Round(final*1000) / 10,
		Severity:        severity,
		SeverityCode:    severity.Code(),
		Probabilities:   probs,
		Confidence:      confidence,
		RiskFactors:     riskFactors(c),
		Recommendations: recommendations(c, severity),
		Color:           severity.Color(),
		Timestamp:       time.Now(),
	}

	s.logger.Debug("risk assessment computed",
		zap.String("location", location),
		zap.Float64("risk_score", assessment.RiskScore),
		zap.String("severity", string(severity)))

	return assessment, nil
}

// seed hashes the four seed-scope inputs into a generator seed. The md5
// truncation mirrors the historical behavior callers already depend on.
func seed(location string, c models.Conditions) int64 {
	key := fmt.Sprintf("%s_%s_%s_%s", location, c.Weather, c.TimeOfDay, c.RoadType)
	sum := md5.Sum([]byte(key))
	v, _ := strconv.ParseInt(fmt.Sprintf("%x", sum)[:8], 16, 64)
	return v
}

// accumulate sums per-field weighted contributions into the raw risk total.
func (s *Scorer) accumulate(location string, c models.Conditions) (float64, error) {
	if c.DriverAge < 0 {
		return 0, invalidNumber("driver_age", c.DriverAge)
	}
	if c.Experience < 0 {
		return 0, invalidNumber("experience", c.Experience)
	}
	if c.SpeedLimit < 0 {
		return 0, invalidNumber("speed_limit", c.SpeedLimit)
	}
	if c.CurrentSpeed < 0 {
		return 0, invalidNumber("current_speed", c.CurrentSpeed)
	}
	if c.AccidentHistory < 0 {
		return 0, invalidNumber("accident_history", c.AccidentHistory)
	}

	total := locationRisk(location)

	// vehicle_type and weather degrade to a neutral weight when unknown;
	// every other categorical requires exact domain membership.
	if w, ok := vehicleWeights[c.VehicleType]; ok {
		total += w
	} else {
		total += unknownWeight
	}
	total += ageWeights[ageBucket(c.DriverAge)]
	total += experienceWeights[experienceBucket(c.Experience)]

	for _, f := range []struct {
		name    string
		value   string
		weights map[string]float64
	}{
		{"license_valid", c.LicenseValid, licenseWeights},
		{"seatbelt", c.Seatbelt, seatbeltWeights},
		{"road_surface", c.RoadSurface, surfaceWeights},
		{"visibility", c.Visibility, visibilityWeights},
		{"light_condition", c.LightCondition, lightWeights},
		{"road_type", c.RoadType, roadTypeWeights},
		{"road_design", c.RoadDesign, roadDesignWeights},
		{"traffic_volume", c.TrafficVolume, trafficWeights},
		{"time_of_day", c.TimeOfDay, timeOfDayWeights},
		{"area_type", c.AreaType, areaWeights},
		{"overtaking", c.Overtaking, overtakingWeights},
		{"alcohol", c.Alcohol, alcoholWeights},
		{"phone_usage", c.PhoneUsage, phoneWeights},
	} {
		w, ok := f.weights[f.value]
		if !ok {
			return 0, invalidValue(f.name, f.value)
		}
		total += w
	}

	if w, ok := weatherWeights[c.Weather]; ok {
		total += w
	} else {
		total += unknownWeight
	}

	if c.IsWeekend {
		total += dayTypeWeights["weekend"]
	} else {
		total += dayTypeWeights["weekday"]
	}

	total += speedRisk(c.CurrentSpeed, c.SpeedLimit)
	total += float64(c.AccidentHistory) * historyFactor

	return total, nil
}

// locationRisk derives the base geographic risk: city table first, then
// urban/rural keyword fallback, then a flat moderate default.
func locationRisk(location string) float64 {
	lower := strings.ToLower(location)
	for _, entry := range locationRiskBase {
		if strings.Contains(lower, entry.city) {
			return entry.risk
		}
	}
	for _, kw := range urbanKeywords {
		if strings.Contains(lower, kw) {
			return defaultUrbanRisk
		}
	}
	for _, kw := range ruralKeywords {
		if strings.Contains(lower, kw) {
			return defaultRuralRisk
		}
	}
	return defaultBaseRisk
}

func ageBucket(age int) string {
	switch {
	case age < 25:
		return "under_25"
	case age <= 40:
		return "25_40"
	case age <= 60:
		return "40_60"
	default:
		return "over_60"
	}
}

func experienceBucket(years int) string {
	switch {
	case years < 2:
		return "under_2"
	case years <= 5:
		return "2_5"
	case years <= 10:
		return "5_10"
	default:
		return "over_10"
	}
}

// speedRisk is 1% per km/h over the limit, saturating at 100%.
func speedRisk(current, limit int) float64 {
	if current <= limit {
		return 0
	}
	return math.Min(float64(current-limit)*speedFactor, 1.0)
}

func bucket(final float64) models.Severity {
	switch {
	case final < 0.3:
		return models.SeverityLow
	case final < 0.6:
		return models.SeverityMedium
	default:
		return models.SeverityHigh
	}
}

// probabilities builds the three-way distribution biased toward the chosen
// bucket, then renormalizes so the triple always sums to one.
func probabilities(rng *rand.Rand, final float64, severity models.Severity) models.Probabilities {
	var low, medium, high float64
	switch severity {
	case models.SeverityLow:
		low = final + uniform(rng, 0.4, 0.5)
		medium = (1 - low) * uniform(rng, 0.6, 0.8)
		high = 1 - low - medium
	case models.SeverityMedium:
		medium = final + uniform(rng, 0.2, 0.3)
		low = (1 - medium) * uniform(rng, 0.3, 0.6)
		high = 1 - low - medium
	default:
		high = final + uniform(rng, 0.1, 0.2)
		medium = (1 - high) * uniform(rng, 0.4, 0.7)
		low = 1 - high - medium
	}

	sum := low + medium + high
	return models.Probabilities{
		Low:    low / sum,
		Medium: medium / sum,
		High:   high / sum,
	}
}

// riskFactors walks a fixed checklist; output order is the check order.
// Alcohol deliberately never appears here even though it dominates the
// weighted sum and the recommendations.
func riskFactors(c models.Conditions) []string {
	factors := []string{}
	if c.Weather != "Clear" {
		factors = append(factors, "Weather: "+c.Weather)
	}
	if c.RoadSurface != "Dry" {
		factors = append(factors, "Road Surface: "+c.RoadSurface)
	}
	if c.Visibility != "high" {
		factors = append(factors, "Poor Visibility")
	}
	if strings.Contains(c.LightCondition, "Night") {
		factors = append(factors, "Night Driving")
	}
	if c.TrafficVolume == "High" {
		factors = append(factors, "Heavy Traffic")
	}
	if c.CurrentSpeed > c.SpeedLimit {
		factors = append(factors, "Speeding")
	}
	if c.RoadDesign == "Junction" || c.RoadDesign == "Curved" {
		factors = append(factors, "Road Design: "+c.RoadDesign)
	}
	if c.DriverAge < 25 {
		factors = append(factors, "Young Driver")
	}
	if c.Experience < 2 {
		factors = append(factors, "Inexperienced Driver")
	}
	return factors
}

const maxRecommendations = 6

func recommendations(c models.Conditions, severity models.Severity) []string {
	recs := []string{}

	switch c.Weather {
	case "Rainy", "Foggy", "Snowy", "Stormy":
		recs = append(recs,
			"Reduce speed due to adverse weather conditions",
			"Increase following distance")
	}
	if c.CurrentSpeed > c.SpeedLimit {
		recs = append(recs, fmt.Sprintf("Reduce speed to within %d km/h limit", c.SpeedLimit))
	}
	if strings.Contains(c.LightCondition, "Night") {
		recs = append(recs, "Use headlights and drive cautiously at night")
	}
	if c.VehicleType == "Bike" {
		recs = append(recs, "Wear helmet and protective gear")
	}
	if c.Seatbelt == "no" {
		recs = append(recs, "Always wear seatbelt for safety")
	}
	if c.Alcohol == "yes" {
		recs = append(recs, "Never drive under influence of alcohol")
	}
	if c.PhoneUsage == "yes" {
		recs = append(recs, "Avoid phone usage while driving")
	}

	switch severity {
	case models.SeverityHigh:
		recs = append(recs,
			"Consider postponing travel if possible",
			"Extra caution required - high risk conditions")
	case models.SeverityMedium:
		recs = append(recs, "Drive with increased attention")
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

func uniform(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
