package risk

// Additive risk weights per condition value. These are the tuned constants
// of the heuristic; changing any of them changes every score the service
// produces.

const (
	// unknownWeight applies when vehicle_type or weather falls outside the
	// table. Other categorical fields require exact domain membership.
	unknownWeight = 0.3

	// speedFactor is risk per km/h over the limit, capped at 1.0.
	speedFactor = 0.01

	// historyFactor is risk per recorded accident in the area.
	historyFactor = 0.1

	// riskScale normalizes the accumulated total into [0,1]. It reflects
	// the maximum plausible accumulated weight and must not drift.
	riskScale = 8.0
)

var vehicleWeights = map[string]float64{
	"Car": 0.2, "Bike": 0.7, "Truck": 0.5, "Bus": 0.4, "Auto-rickshaw": 0.6,
}

var ageWeights = map[string]float64{
	"under_25": 0.6, "25_40": 0.2, "40_60": 0.1, "over_60": 0.4,
}

var experienceWeights = map[string]float64{
	"under_2": 0.7, "2_5": 0.4, "5_10": 0.2, "over_10": 0.1,
}

var licenseWeights = map[string]float64{"yes": 0.0, "no": 0.8}

var seatbeltWeights = map[string]float64{"yes": 0.0, "no": 0.6}

var weatherWeights = map[string]float64{
	"Clear": 0.1, "Rainy": 0.6, "Foggy": 0.8, "Snowy": 0.9, "Stormy": 1.0,
}

// No weight is defined for "Oily" even though the catalog lists it; an
// Oily surface is therefore rejected as out of domain rather than being
// silently assigned a made-up weight.
var surfaceWeights = map[string]float64{
	"Dry": 0.1, "Wet": 0.5, "Icy": 0.9, "Muddy": 0.7,
}

var visibilityWeights = map[string]float64{
	"high": 0.1, "medium": 0.4, "low": 0.8,
}

var lightWeights = map[string]float64{
	"Daylight": 0.1, "Night_with_lights": 0.4, "Night_without_lights": 0.7,
}

var roadTypeWeights = map[string]float64{
	"Highway": 0.6, "City_Road": 0.3, "Rural_Road": 0.5,
}

var roadDesignWeights = map[string]float64{
	"Straight": 0.2, "Curved": 0.5, "Junction": 0.8, "Roundabout": 0.4,
}

var trafficWeights = map[string]float64{
	"Low": 0.2, "Medium": 0.4, "High": 0.7,
}

var timeOfDayWeights = map[string]float64{
	"Morning": 0.3, "Afternoon": 0.2, "Evening": 0.5, "Night": 0.6,
}

var dayTypeWeights = map[string]float64{
	"weekday": 0.3, "weekend": 0.5,
}

var areaWeights = map[string]float64{
	"Urban": 0.4, "Suburban": 0.3, "Rural": 0.5,
}

var overtakingWeights = map[string]float64{"yes": 0.7, "no": 0.0}

var alcoholWeights = map[string]float64{"yes": 1.0, "no": 0.0}

var phoneWeights = map[string]float64{"yes": 0.8, "no": 0.0}

// Base geographic risk per city, matched by case-insensitive substring.
// Slice, not map: when a location string mentions more than one city the
// first table entry wins, and that must not vary between calls.
var locationRiskBase = []struct {
	city string
	risk float64
}{
	{"mumbai", 0.6}, {"delhi", 0.7}, {"bangalore", 0.5}, {"chennai", 0.5},
	{"kolkata", 0.6}, {"hyderabad", 0.5}, {"pune", 0.5}, {"ahmedabad", 0.6},
}

const (
	defaultUrbanRisk = 0.5
	defaultRuralRisk = 0.4
	defaultBaseRisk  = 0.45
)

var urbanKeywords = []string{"city", "metro", "downtown", "central", "commercial"}

var ruralKeywords = []string{"village", "countryside", "rural", "outskirts"}
