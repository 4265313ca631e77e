package geo

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371

// HaversineKm returns the great-circle distance in kilometers between
// two points given in degrees.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Point is a coordinate pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// CumulativeKm sums the pairwise haversine distances over the points
// in order.
func CumulativeKm(points []Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += HaversineKm(points[i-1].Lat, points[i-1].Lng, points[i].Lat, points[i].Lng)
	}
	return total
}

// Track accumulates distance incrementally as points arrive. Adding a
// point advances the total by the distance from the previous point,
// so the running total always equals CumulativeKm over the same
// sequence.
type Track struct {
	last    Point
	hasLast bool
	totalKm float64
}

func (t *Track) Add(p Point) {
	if t.hasLast {
		t.totalKm += HaversineKm(t.last.Lat, t.last.Lng, p.Lat, p.Lng)
	}
	t.last = p
	t.hasLast = true
}

func (t *Track) TotalKm() float64 {
	return t.totalKm
}

func (t *Track) Reset() {
	*t = Track{}
}

// PaceMinPerKm returns elapsed minutes per kilometer, and false while
// no distance has been covered.
func PaceMinPerKm(elapsedSeconds int64, distanceKm float64) (float64, bool) {
	if distanceKm <= 0 || elapsedSeconds <= 0 {
		return 0, false
	}
	return float64(elapsedSeconds) / 60 / distanceKm, true
}

// FormatPace renders a pace value as m:ss per km. Zero distance has no
// pace yet and renders the placeholder.
func FormatPace(elapsedSeconds int64, distanceKm float64) string {
	pace, ok := PaceMinPerKm(elapsedSeconds, distanceKm)
	if !ok {
		return "0:00"
	}
	mins := int(pace)
	secs := int((pace - float64(mins)) * 60)
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// FormatDuration renders elapsed seconds as mm:ss.
func FormatDuration(seconds int64) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
