package agro

import (
	"fmt"
	"time"
)

// Feature is a GeoJSON feature carrying a polygon geometry
type Feature struct {
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
	Geometry   Geometry   `json:"geometry"`
}

// Geometry is a GeoJSON polygon geometry: a list of rings of [lon, lat] positions
type Geometry struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

// Properties holds the GeoJSON feature properties
type Properties struct {
	Name string `json:"name,omitempty"`
}

// Validate checks that every ring has at least 3 positions and that its
// first and last positions are identical.
func (g Geometry) Validate() error {
	if len(g.Coordinates) == 0 {
		return fmt.Errorf("%w: no rings", ErrInvalidPolygon)
	}
	for i, ring := range g.Coordinates {
		if len(ring) < 3 {
			return fmt.Errorf("%w: ring %d has %d positions, need at least 3", ErrInvalidPolygon, i, len(ring))
		}
		if !samePosition(ring[0], ring[len(ring)-1]) {
			return fmt.Errorf("%w: ring %d is not closed", ErrInvalidPolygon, i)
		}
	}
	return nil
}

func samePosition(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Polygon represents a polygon registered with the Agro API
type Polygon struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"user_id"`
	Area      float64   `json:"area"`   // hectares
	Center    []float64 `json:"center"` // [lon, lat]
	GeoJSON   Feature   `json:"geo_json"`
	CreatedAt int64     `json:"created_at,omitempty"`
}

// Created returns the creation time, or the zero time when the server sent none
func (p *Polygon) Created() time.Time {
	return unixTime(p.CreatedAt)
}

// PolygonRequest is the body sent to create a polygon
type PolygonRequest struct {
	Name    string  `json:"name"`
	GeoJSON Feature `json:"geo_json"`
}

// NewPolygonRequest builds a create request from polygon rings.
// The first and last positions of each ring must be identical.
func NewPolygonRequest(name string, rings [][][]float64) PolygonRequest {
	return PolygonRequest{
		Name: name,
		GeoJSON: Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Polygon",
				Coordinates: rings,
			},
		},
	}
}

// Validate checks the request geometry
func (r PolygonRequest) Validate() error {
	return r.GeoJSON.Geometry.Validate()
}

// polygonUpdate is the body sent to rename a polygon
type polygonUpdate struct {
	Name string `json:"name"`
}

// Imagery is one satellite scene returned by an image search
type Imagery struct {
	Dt    int64    `json:"dt"`
	Type  string   `json:"type"`
	Dc    float64  `json:"dc"` // valid data coverage, percent
	Cl    float64  `json:"cl"` // cloud coverage, percent
	Sun   *Sun     `json:"sun,omitempty"`
	Image *SatURLs `json:"image,omitempty"`
	Tile  *SatURLs `json:"tile,omitempty"`
	Stats *Stats   `json:"stats,omitempty"`
	Data  *SatURLs `json:"data,omitempty"`
}

// Time returns the capture time
func (i *Imagery) Time() time.Time {
	return unixTime(i.Dt)
}

// SatURLs holds the per-rendering URLs of a scene
type SatURLs struct {
	TrueColor  string `json:"truecolor,omitempty"`
	FalseColor string `json:"falsecolor,omitempty"`
	NDVI       string `json:"ndvi,omitempty"`
	EVI        string `json:"evi,omitempty"`
	EVI2       string `json:"evi2,omitempty"`
	NRI        string `json:"nri,omitempty"`
	DSWI       string `json:"dswi,omitempty"`
	NDWI       string `json:"ndwi,omitempty"`
}

// Stats holds the statistics URLs of a scene, one per index
type Stats struct {
	NDVI string `json:"ndvi,omitempty"`
	EVI  string `json:"evi,omitempty"`
	EVI2 string `json:"evi2,omitempty"`
	NRI  string `json:"nri,omitempty"`
	DSWI string `json:"dswi,omitempty"`
	NDWI string `json:"ndwi,omitempty"`
}

// URL returns the statistics URL for index (ndvi, evi, evi2, nri, dswi, ndwi)
func (s *Stats) URL(index string) string {
	if s == nil {
		return ""
	}
	switch index {
	case "ndvi":
		return s.NDVI
	case "evi":
		return s.EVI
	case "evi2":
		return s.EVI2
	case "nri":
		return s.NRI
	case "dswi":
		return s.DSWI
	case "ndwi":
		return s.NDWI
	}
	return ""
}

// Sun is the sun position at capture time, in degrees
type Sun struct {
	Azimuth   float64 `json:"azimuth"`
	Elevation float64 `json:"elevation"`
}

// StatsInfo summarises an index over the polygon
type StatsInfo struct {
	Std    float64 `json:"std"`
	P25    float64 `json:"p25"`
	Num    int     `json:"num"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	P75    float64 `json:"p75"`
	Mean   float64 `json:"mean"`
}

// NDVIHistory is one historical NDVI observation for a polygon
type NDVIHistory struct {
	Dt     int64     `json:"dt"`
	Source string    `json:"source"`
	Zoom   int       `json:"zoom"`
	Dc     float64   `json:"dc"`
	Cl     float64   `json:"cl"`
	Data   StatsInfo `json:"data"`
}

// Time returns the observation time
func (h *NDVIHistory) Time() time.Time {
	return unixTime(h.Dt)
}

func unixTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
