package utils

import (
	"math"
	"sort"
)

const (
	EarthRadiusKm = 6371.0
	DegToRad      = math.Pi / 180.0

	// AverageCitySpeedKmh is the assumed ground speed when no routing
	// collaborator is available.
	AverageCitySpeedKmh = 40.0
)

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HaversineKm calculates the great-circle distance between two coordinates
// in kilometers, rounded to 2 decimal places. This is the single source of
// truth for every "nearest X" computation.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dlat := (lat2 - lat1) * DegToRad
	dlon := (lon2 - lon1) * DegToRad

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1*DegToRad)*math.Cos(lat2*DegToRad)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return math.Round(EarthRadiusKm*c*100) / 100
}

// Locatable is anything with a ground position.
type Locatable interface {
	Coordinates() (latitude, longitude float64)
}

// Ranked pairs a candidate with its distance from the query origin.
type Ranked[T Locatable] struct {
	Item     T
	Distance float64
}

// RankByDistance filters candidates to those within radiusKm of origin and
// sorts them ascending by distance. Ties keep input order. Eligibility
// filtering (availability, blood group, insurance) is the caller's job;
// only distance is considered here. Callers must not depend on scan order
// beyond the sorted result.
func RankByDistance[T Locatable](origin Coordinate, candidates []T, radiusKm float64) []Ranked[T] {
	ranked := make([]Ranked[T], 0, len(candidates))
	for _, c := range candidates {
		lat, lon := c.Coordinates()
		d := HaversineKm(origin.Latitude, origin.Longitude, lat, lon)
		if d > radiusKm {
			continue
		}
		ranked = append(ranked, Ranked[T]{Item: c, Distance: d})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance < ranked[j].Distance
	})

	return ranked
}

// EstimateTravelMinutes converts a ground distance to minutes assuming city
// traffic speed. Used as the fallback when the routing collaborator fails.
func EstimateTravelMinutes(distanceKm float64) int {
	return int(math.Ceil(distanceKm / AverageCitySpeedKmh * 60))
}

// IsValidCoordinate checks if latitude and longitude values are in range.
func IsValidCoordinate(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
