// Package geo covers the location collaborators of the attendance engine:
// great-circle distance, last-known positions and reverse geocoding.
package geo

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HaversineKm returns the great-circle distance between two coordinates in kilometers.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// Distance is HaversineKm over Points.
func Distance(from, to Point) float64 {
	return HaversineKm(from.Lat, from.Lng, to.Lat, to.Lng)
}

// FormatCoordinates renders p the way unresolved addresses are shown.
func FormatCoordinates(p Point) string {
	return fmt.Sprintf("%.5f, %.5f", p.Lat, p.Lng)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
