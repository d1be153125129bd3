package filter

import (
	"fmt"
	"strconv"

	"github.com/s0up4200/agroapi/agro"
)

// Imagery returns the scenes matching f
func Imagery(f *Filter, images []agro.Imagery) ([]agro.Imagery, error) {
	return apply(f, KindImagery, images, imageryEnv, func(img agro.Imagery) string {
		return fmt.Sprintf("%s scene at %d", img.Type, img.Dt)
	})
}

// Polygons returns the polygons matching f
func Polygons(f *Filter, polys []agro.Polygon) ([]agro.Polygon, error) {
	return apply(f, KindPolygon, polys, polygonEnv, func(p agro.Polygon) string {
		return "polygon " + p.ID
	})
}

// NDVIHistory returns the observations matching f
func NDVIHistory(f *Filter, history []agro.NDVIHistory) ([]agro.NDVIHistory, error) {
	return apply(f, KindNDVI, history, ndviEnv, func(h agro.NDVIHistory) string {
		return "ndvi observation at " + strconv.FormatInt(h.Dt, 10)
	})
}

// Weather returns the snapshots matching f
func Weather(f *Filter, snapshots []agro.Weather) ([]agro.Weather, error) {
	return apply(f, KindWeather, snapshots, weatherEnv, func(w agro.Weather) string {
		return "weather at " + strconv.FormatInt(w.Dt, 10)
	})
}

// apply keeps the records for which f holds, preserving their order
func apply[T any](f *Filter, kind Kind, records []T, env func(T) map[string]any, describe func(T) string) ([]T, error) {
	if f == nil {
		return records, nil
	}
	if f.kind != kind {
		return nil, fmt.Errorf("filter compiled for %s cannot evaluate %s records", f.kind, kind)
	}

	matches := make([]T, 0, len(records))
	for _, r := range records {
		ok, err := f.run(env(r))
		if err != nil {
			return nil, &EvaluationError{
				Expression: f.expression,
				Record:     describe(r),
				Err:        err,
			}
		}
		if ok {
			matches = append(matches, r)
		}
	}
	return matches, nil
}
