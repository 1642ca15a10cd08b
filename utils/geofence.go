package utils

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

var ErrNoPolygon = errors.New("boundary holds no polygon")

// ParseBoundary reads a ward boundary stored as a GeoJSON geometry, feature
// or feature collection. Only polygons and multipolygons are kept.
func ParseBoundary(raw []byte) (orb.MultiPolygon, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("invalid boundary JSON: %w", err)
	}

	var geoms []orb.Geometry
	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid feature collection: %w", err)
		}
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid feature: %w", err)
		}
		geoms = append(geoms, f.Geometry)
	default:
		g, err := geojson.UnmarshalGeometry(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid geometry: %w", err)
		}
		geoms = append(geoms, g.Geometry())
	}

	var mp orb.MultiPolygon
	for _, g := range geoms {
		switch v := g.(type) {
		case orb.Polygon:
			mp = append(mp, v)
		case orb.MultiPolygon:
			mp = append(mp, v...)
		}
	}
	if len(mp) == 0 {
		return nil, ErrNoPolygon
	}
	return mp, nil
}

// ContainsPoint reports whether lat/lng falls inside the boundary
func ContainsPoint(boundary orb.MultiPolygon, lat, lng float64) bool {
	return planar.MultiPolygonContains(boundary, orb.Point{lng, lat})
}

// ValidateCoordinate checks the WGS84 ranges
func ValidateCoordinate(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %.6f is out of valid range [-90, 90]", lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude %.6f is out of valid range [-180, 180]", lng)
	}
	return nil
}
