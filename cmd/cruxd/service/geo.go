package service

import (
	"math"

	"github.com/cruxdb/cruxd/cmd/cruxd/models"
)

const (
	earthRadiusKm = 6371.0088

	// radius of the synthetic circle drawn around a crag's GPS point
	// when the crag has no polygon of its own
	cragRadiusKm = 0.25

	// density denominators smaller than this get clamped so a single
	// roadside boulder does not report an absurd climb density
	minDensityAreaKm2 = 5.0
)

// BBoxFromPoint turns a crag's GPS point into a small bounding box by
// sampling a circle around it
func BBoxFromPoint(p models.Point) models.BBox {
	bbox := models.BBox{p.Lng, p.Lat, p.Lng, p.Lat}
	for bearing := 0.0; bearing < 360; bearing += 45 {
		d := destination(p, cragRadiusKm, bearing)
		bbox = bbox.Union(models.BBox{d.Lng, d.Lat, d.Lng, d.Lat})
	}
	return bbox
}

// destination computes the point at the given distance and bearing
// from start, on a spherical earth
func destination(start models.Point, distKm, bearingDeg float64) models.Point {
	lat1 := start.Lat * math.Pi / 180
	lng1 := start.Lng * math.Pi / 180
	brng := bearingDeg * math.Pi / 180
	dr := distKm / earthRadiusKm

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(dr) + math.Cos(lat1)*math.Sin(dr)*math.Cos(brng))
	lng2 := lng1 + math.Atan2(
		math.Sin(brng)*math.Sin(dr)*math.Cos(lat1),
		math.Cos(dr)-math.Sin(lat1)*math.Sin(lat2),
	)

	return models.Point{
		Lng: lng2 * 180 / math.Pi,
		Lat: lat2 * 180 / math.Pi,
	}
}

// bboxAreaKm2 returns the surface area of a lat/lng-aligned box
func bboxAreaKm2(b models.BBox) float64 {
	dLng := math.Abs(b.MaxLng()-b.MinLng()) * math.Pi / 180
	dSinLat := math.Abs(math.Sin(b.MaxLat()*math.Pi/180) - math.Sin(b.MinLat()*math.Pi/180))
	return earthRadiusKm * earthRadiusKm * dLng * dSinLat
}

// Density reports climbs per square km over the box, with the area
// clamped to a minimum
func Density(b models.BBox, totalClimbs int) float64 {
	area := bboxAreaKm2(b)
	if area < minDensityAreaKm2 {
		area = minDensityAreaKm2
	}
	return float64(totalClimbs) / area
}

// ConvexHull computes the convex hull of the given points using the
// monotone chain algorithm. Returns nil for fewer than three distinct
// points; otherwise the hull ring in counter-clockwise order, not
// closed.
func ConvexHull(points []models.Point) []models.Point {
	pts := dedupe(points)
	if len(pts) < 3 {
		return nil
	}

	// sort by lng, then lat
	for i := 1; i < len(pts); i++ {
		for j := i; j > 0 && less(pts[j], pts[j-1]); j-- {
			pts[j], pts[j-1] = pts[j-1], pts[j]
		}
	}

	var lower []models.Point
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper []models.Point
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	if len(hull) < 3 {
		return nil
	}
	return hull
}

// HullFromBBoxes computes the convex hull over the corner points of the
// child boxes
func HullFromBBoxes(boxes []models.BBox) []models.Point {
	var pts []models.Point
	for _, b := range boxes {
		pts = append(pts, b.Corners()...)
	}
	return ConvexHull(pts)
}

func less(a, b models.Point) bool {
	if a.Lng != b.Lng {
		return a.Lng < b.Lng
	}
	return a.Lat < b.Lat
}

func cross(o, a, b models.Point) float64 {
	return (a.Lng-o.Lng)*(b.Lat-o.Lat) - (a.Lat-o.Lat)*(b.Lng-o.Lng)
}

func dedupe(points []models.Point) []models.Point {
	seen := make(map[models.Point]struct{}, len(points))
	out := make([]models.Point, 0, len(points))
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
