package geo

import (
	"fmt"
	"math"
)

// metersPerDegree is the length of one degree of latitude in meters.
const metersPerDegree = 111319.490793

// Projection maps geographic coordinates into a local planar world frame
// anchored at a configured origin. It uses an equirectangular approximation
// with longitude scaled by cos(centerLat) to correct meridian convergence.
//
// World axes: +X east, +Z south, +Y up. The origin is at (CenterLon, CenterLat).
type Projection struct {
	CenterLon float64
	CenterLat float64
	cosLat    float64
}

// NewProjection builds a projection anchored at the given origin.
func NewProjection(centerLon, centerLat float64) (Projection, error) {
	if centerLon < -180 || centerLon > 180 {
		return Projection{}, fmt.Errorf("geo: origin longitude %f out of range", centerLon)
	}
	if math.Abs(centerLat) >= maxLatitude {
		return Projection{}, fmt.Errorf("geo: origin latitude %f out of range (-85, 85)", centerLat)
	}
	return Projection{
		CenterLon: centerLon,
		CenterLat: centerLat,
		cosLat:    math.Cos(centerLat * math.Pi / 180),
	}, nil
}

// LonLatToWorld converts a geographic coordinate to world meters.
func (p Projection) LonLatToWorld(lon, lat float64) (x, z float64) {
	x = (lon - p.CenterLon) * metersPerDegree * p.cosLat
	z = -(lat - p.CenterLat) * metersPerDegree
	return x, z
}

// WorldToLonLat converts world meters back to a geographic coordinate.
func (p Projection) WorldToLonLat(x, z float64) (lon, lat float64) {
	lon = p.CenterLon + x/(metersPerDegree*p.cosLat)
	lat = p.CenterLat - z/metersPerDegree
	return lon, lat
}
