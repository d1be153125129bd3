package agro

import (
	"strconv"
	"strings"
	"time"
)

// ImageryOptions narrows a satellite image search for a polygon.
// Start and End are unix seconds. Nil optional fields are not sent.
type ImageryOptions struct {
	PolygonID string
	Start     int64
	End       int64

	ResolutionMin *int
	ResolutionMax *int
	Type          string // satellite type, e.g. "s2" or "l8"
	CoverageMax   *float64
	CoverageMin   *float64
	CloudsMax     *float64
	CloudsMin     *float64
}

// NewImageryOptions creates search options for the given polygon and time range
func NewImageryOptions(polygonID string, start, end time.Time) ImageryOptions {
	return ImageryOptions{
		PolygonID: polygonID,
		Start:     start.Unix(),
		End:       end.Unix(),
	}
}

// Encode serializes the options into the image search query string.
// Values are not escaped here; the URL builder does that.
func (o ImageryOptions) Encode() string {
	q := newQuery()
	q.add("polygon_id", o.PolygonID)
	q.add("start", strconv.FormatInt(o.Start, 10))
	q.add("end", strconv.FormatInt(o.End, 10))

	if o.ResolutionMin != nil {
		q.add("resolution_min", strconv.Itoa(*o.ResolutionMin))
	}
	if o.ResolutionMax != nil {
		q.add("resolution_max", strconv.Itoa(*o.ResolutionMax))
	}
	if o.Type != "" {
		q.add("type", o.Type)
	}
	o.encodeBounds(q)
	return q.String()
}

// HistoryEncode serializes the options into the NDVI history query string.
// The history endpoint takes polyid instead of polygon_id and has no resolution bounds.
func (o ImageryOptions) HistoryEncode() string {
	q := newQuery()
	q.add("polyid", o.PolygonID)
	q.add("start", strconv.FormatInt(o.Start, 10))
	q.add("end", strconv.FormatInt(o.End, 10))

	if o.Type != "" {
		q.add("type", o.Type)
	}
	o.encodeBounds(q)
	return q.String()
}

func (o ImageryOptions) encodeBounds(q *query) {
	if o.CoverageMax != nil {
		q.add("coverage_max", formatFloat(*o.CoverageMax))
	}
	if o.CoverageMin != nil {
		q.add("coverage_min", formatFloat(*o.CoverageMin))
	}
	if o.CloudsMax != nil {
		q.add("clouds_max", formatFloat(*o.CloudsMax))
	}
	if o.CloudsMin != nil {
		q.add("clouds_min", formatFloat(*o.CloudsMin))
	}
}

// WeatherOptions selects historical weather for a polygon.
// Start and End are unix seconds.
type WeatherOptions struct {
	PolygonID string
	Start     int64
	End       int64
}

// NewWeatherOptions creates weather history options for the given polygon and time range
func NewWeatherOptions(polygonID string, start, end time.Time) WeatherOptions {
	return WeatherOptions{
		PolygonID: polygonID,
		Start:     start.Unix(),
		End:       end.Unix(),
	}
}

// Encode serializes the options into the weather history query string
func (o WeatherOptions) Encode() string {
	q := newQuery()
	q.add("polyid", o.PolygonID)
	q.add("start", strconv.FormatInt(o.Start, 10))
	q.add("end", strconv.FormatInt(o.End, 10))
	return q.String()
}

// Int returns a pointer to v, for optional integer fields
func Int(v int) *int { return &v }

// Float returns a pointer to v, for optional float fields
func Float(v float64) *float64 { return &v }

// query keeps key=value pairs in insertion order
type query struct {
	parts []string
}

func newQuery() *query {
	return &query{}
}

func (q *query) add(key, value string) {
	q.parts = append(q.parts, key+"="+value)
}

func (q *query) String() string {
	return strings.Join(q.parts, "&")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
