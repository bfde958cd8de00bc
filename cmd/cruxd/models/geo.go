package models

// Point is a lng/lat coordinate (GeoJSON order)
type Point struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// BBox is [minLng, minLat, maxLng, maxLat]
type BBox [4]float64

// MinLng returns the western bound
func (b BBox) MinLng() float64 { return b[0] }

// MinLat returns the southern bound
func (b BBox) MinLat() float64 { return b[1] }

// MaxLng returns the eastern bound
func (b BBox) MaxLng() float64 { return b[2] }

// MaxLat returns the northern bound
func (b BBox) MaxLat() float64 { return b[3] }

// Corners returns the four corner points of the box
func (b BBox) Corners() []Point {
	return []Point{
		{Lng: b[0], Lat: b[1]},
		{Lng: b[2], Lat: b[1]},
		{Lng: b[2], Lat: b[3]},
		{Lng: b[0], Lat: b[3]},
	}
}

// Union returns the smallest box containing both boxes
func (b BBox) Union(other BBox) BBox {
	out := b
	if other[0] < out[0] {
		out[0] = other[0]
	}
	if other[1] < out[1] {
		out[1] = other[1]
	}
	if other[2] > out[2] {
		out[2] = other[2]
	}
	if other[3] > out[3] {
		out[3] = other[3]
	}
	return out
}
