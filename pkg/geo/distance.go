package geo

import (
	"math"

	"github.com/nextzen/thor/pkg/util"
)

const earthRadiusKM = 6371.0

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

// CalculateHaversineDistance returns the great-circle distance in km.
func CalculateHaversineDistance(latOne, lonOne, latTwo, lonTwo float64) float64 {
	latOne = util.DegreeToRadians(latOne)
	lonOne = util.DegreeToRadians(lonOne)
	latTwo = util.DegreeToRadians(latTwo)
	lonTwo = util.DegreeToRadians(lonTwo)

	a := havFunction(latOne-latTwo) + math.Cos(latOne)*math.Cos(latTwo)*havFunction(lonOne-lonTwo)
	c := 2.0 * math.Asin(math.Sqrt(a))
	return earthRadiusKM * c
}

// CalculateEuclidianDistanceEquirectangularProj is a cheap planar
// approximation valid over short distances, used where per-point
// trigonometry would be wasteful.
func CalculateEuclidianDistanceEquirectangularProj(latOne, lonOne, latTwo, lonTwo float64) float64 {
	latOne = util.DegreeToRadians(latOne)
	lonOne = util.DegreeToRadians(lonOne)
	latTwo = util.DegreeToRadians(latTwo)
	lonTwo = util.DegreeToRadians(lonTwo)

	x := (lonTwo - lonOne) * math.Cos((latOne+latTwo)/2)
	y := latTwo - latOne
	return math.Sqrt(x*x+y*y) * earthRadiusKM
}

func radToDeg(r float64) float64 {
	return 180.0 * r / math.Pi
}

func normalizeLongitude(lon float64) float64 {
	for lon < -180 {
		lon += 360
	}
	for lon > 180 {
		lon -= 360
	}
	return lon
}

// GetDestinationPoint returns the point reached by travelling dist km
// from (lat1, lon1) along the given bearing (degrees clockwise from
// north) - used to build query bounding boxes around a point without
// repeating the haversine formula in both directions.
func GetDestinationPoint(lat1, lon1, bearing, dist float64) (float64, float64) {
	dr := dist / earthRadiusKM
	bearing = util.DegreeToRadians(bearing)
	lat1 = util.DegreeToRadians(lat1)
	lon1 = util.DegreeToRadians(lon1)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(dr) + math.Cos(lat1)*math.Sin(dr)*math.Cos(bearing))
	lon2 := lon1 + math.Atan2(
		math.Sin(bearing)*math.Sin(dr)*math.Cos(lat1),
		math.Cos(dr)-math.Sin(lat1)*math.Sin(lat2),
	)
	return radToDeg(lat2), normalizeLongitude(radToDeg(lon2))
}
