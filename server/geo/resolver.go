// Package geo resolves coordinates to known city locations. Distances are
// plain Euclidean on raw degrees; at city scale that is close enough and
// keeps the lookup trivial.
package geo

import (
	"crypto/md5"
	"fmt"
	"math"
	"strconv"

	"github.com/san-kum/roadrisk/server/models"
)

// Resolver maps coordinates to location names and area types. Injectable so
// handlers can be tested against a fixed table.
type Resolver interface {
	Locate(lat, lon float64) string
	AreaType(lat, lon float64) models.AreaType
	LocationForIP(ip string) models.ResolvedLocation
}

type centroid struct {
	lat, lon float64
	name     string
}

// cityCentroids lists known city centers. Nearest-neighbor ties go to the
// earliest entry.
var cityCentroids = []centroid{
	{19.0760, 72.8777, "Mumbai, Maharashtra"},
	{28.7041, 77.1025, "New Delhi"},
	{12.9716, 77.5946, "Bangalore, Karnataka"},
	{13.0827, 80.2707, "Chennai, Tamil Nadu"},
	{22.5726, 88.3639, "Kolkata, West Bengal"},
	{17.3850, 78.4867, "Hyderabad, Telangana"},
	{18.5204, 73.8567, "Pune, Maharashtra"},
	{23.0225, 72.5714, "Ahmedabad, Gujarat"},
	{26.9124, 75.7873, "Jaipur, Rajasthan"},
	{21.1458, 79.0882, "Nagpur, Maharashtra"},
	{15.2993, 74.1240, "Goa"},
	{11.0168, 76.9558, "Coimbatore, Tamil Nadu"},
}

// ipMetros is the rotation used to simulate IP geolocation.
var ipMetros = []models.ResolvedLocation{
	{Location: "Mumbai, Maharashtra", Coordinates: models.Coordinates{Lat: 19.0760, Lon: 72.8777}, AreaType: models.AreaUrban},
	{Location: "Delhi, Delhi", Coordinates: models.Coordinates{Lat: 28.7041, Lon: 77.1025}, AreaType: models.AreaUrban},
	{Location: "Bangalore, Karnataka", Coordinates: models.Coordinates{Lat: 12.9716, Lon: 77.5946}, AreaType: models.AreaUrban},
	{Location: "Chennai, Tamil Nadu", Coordinates: models.Coordinates{Lat: 13.0827, Lon: 80.2707}, AreaType: models.AreaUrban},
	{Location: "Kolkata, West Bengal", Coordinates: models.Coordinates{Lat: 22.5726, Lon: 88.3639}, AreaType: models.AreaUrban},
}

type CityResolver struct{}

func NewCityResolver() *CityResolver {
	return &CityResolver{}
}

// Locate returns the name of the nearest known city center.
func (r *CityResolver) Locate(lat, lon float64) string {
	closest := cityCentroids[0].name
	minDist := math.Inf(1)
	for _, c := range cityCentroids {
		d := distance(lat, lon, c.lat, c.lon)
		if d < minDist {
			minDist = d
			closest = c.name
		}
	}
	return closest
}

// AreaType classifies coordinates by distance from the nearest city center:
// under 0.5 degrees Urban, under 1.0 Suburban, otherwise Rural.
func (r *CityResolver) AreaType(lat, lon float64) models.AreaType {
	minDist := math.Inf(1)
	for _, c := range cityCentroids {
		if d := distance(lat, lon, c.lat, c.lon); d < minDist {
			minDist = d
		}
	}
	switch {
	case minDist < 0.5:
		return models.AreaUrban
	case minDist < 1.0:
		return models.AreaSuburban
	default:
		return models.AreaRural
	}
}

// LocationForIP simulates IP geolocation: the same address always lands on
// the same metro so repeated requests stay consistent.
func (r *CityResolver) LocationForIP(ip string) models.ResolvedLocation {
	sum := md5.Sum([]byte(ip))
	hash, _ := strconv.ParseInt(fmt.Sprintf("%x", sum)[:8], 16, 64)
	loc := ipMetros[hash%int64(len(ipMetros))]
	loc.Method = "IP Geolocation"
	loc.Accuracy = "Medium"
	return loc
}

func distance(lat1, lon1, lat2, lon2 float64) float64 {
	return math.Sqrt((lat1-lat2)*(lat1-lat2) + (lon1-lon2)*(lon1-lon2))
}
