// Package geo provides geometry helpers for Agro polygons: bounding boxes and H3 cell coverage.
package geo

import (
	"errors"
	"fmt"
	"math"
	"sort"

	h3 "github.com/uber/h3-go/v4"

	"github.com/s0up4200/agroapi/agro"
)

// ErrInvalidResolution is returned for H3 resolutions outside 0..15
var ErrInvalidResolution = errors.New("invalid H3 resolution")

// BBox is a lon/lat bounding box in EPSG:4326
type BBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// Slice returns the box in GeoJSON order: [minLon, minLat, maxLon, maxLat]
func (b BBox) Slice() []float64 {
	return []float64{b.MinLon, b.MinLat, b.MaxLon, b.MaxLat}
}

// Bounds returns the bounding box of the outer ring of g
func Bounds(g agro.Geometry) (BBox, error) {
	if err := g.Validate(); err != nil {
		return BBox{}, err
	}

	b := BBox{
		MinLon: math.Inf(1),
		MinLat: math.Inf(1),
		MaxLon: math.Inf(-1),
		MaxLat: math.Inf(-1),
	}
	for _, pos := range g.Coordinates[0] {
		if len(pos) < 2 {
			return BBox{}, fmt.Errorf("%w: position with %d coordinates", agro.ErrInvalidPolygon, len(pos))
		}
		b.MinLon = math.Min(b.MinLon, pos[0])
		b.MinLat = math.Min(b.MinLat, pos[1])
		b.MaxLon = math.Max(b.MaxLon, pos[0])
		b.MaxLat = math.Max(b.MaxLat, pos[1])
	}
	return b, nil
}

// Cells returns the sorted H3 cells at res whose centers fall inside g.
// Rings after the first are treated as holes.
func Cells(g agro.Geometry, res int) ([]string, error) {
	if err := validateRes(res); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	outer := toLoop(g.Coordinates[0])
	if len(outer) < 3 {
		return nil, fmt.Errorf("%w: outer ring has fewer than 3 distinct vertices", agro.ErrInvalidPolygon)
	}

	var holes []h3.GeoLoop
	for i := 1; i < len(g.Coordinates); i++ {
		holes = append(holes, toLoop(g.Coordinates[i]))
	}

	cells, err := h3.PolygonToCells(h3.GeoPolygon{GeoLoop: outer, Holes: holes}, res)
	if err != nil {
		return nil, fmt.Errorf("h3 polyfill: %w", err)
	}

	out := make([]string, 0, len(cells))
	seen := make(map[string]struct{}, len(cells))
	for _, c := range cells {
		s := c.String()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

// CenterCell returns the H3 cell at res containing a [lon, lat] position
func CenterCell(center []float64, res int) (string, error) {
	if err := validateRes(res); err != nil {
		return "", err
	}
	if len(center) < 2 {
		return "", fmt.Errorf("center needs lon and lat, got %d values", len(center))
	}

	cell, err := h3.LatLngToCell(h3.LatLng{Lat: center[1], Lng: center[0]}, res)
	if err != nil {
		return "", fmt.Errorf("h3 cell: %w", err)
	}
	return cell.String(), nil
}

func validateRes(res int) error {
	if res < 0 || res > 15 {
		return fmt.Errorf("%w %d (must be 0..15)", ErrInvalidResolution, res)
	}
	return nil
}

// toLoop converts a GeoJSON ring to an h3 loop, dropping the closing vertex
func toLoop(ring [][]float64) h3.GeoLoop {
	loop := make(h3.GeoLoop, 0, len(ring))
	for _, pos := range ring {
		if len(pos) < 2 {
			continue
		}
		loop = append(loop, h3.LatLng{Lat: pos[1], Lng: pos[0]})
	}
	if len(loop) >= 2 && loop[0] == loop[len(loop)-1] {
		loop = loop[:len(loop)-1]
	}
	return loop
}
