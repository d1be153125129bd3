package filter

import (
	"strings"
	"time"

	"github.com/s0up4200/agroapi/agro"
)

// prototypes build an environment from a zero record so expressions are type-checked at compile time
var prototypes = map[Kind]func() map[string]any{
	KindImagery: func() map[string]any { return imageryEnv(agro.Imagery{}) },
	KindPolygon: func() map[string]any { return polygonEnv(agro.Polygon{}) },
	KindNDVI:    func() map[string]any { return ndviEnv(agro.NDVIHistory{}) },
	KindWeather: func() map[string]any { return weatherEnv(agro.Weather{}) },
}

// addHelperFunctions adds the helpers shared by every record kind
func addHelperFunctions(env map[string]any) {
	// Date helpers
	env["daysSince"] = func(t time.Time) int {
		return int(time.Since(t).Hours() / 24)
	}
	env["daysAgo"] = func(days int) time.Time {
		return time.Now().AddDate(0, 0, -days)
	}
	env["monthsAgo"] = func(months int) time.Time {
		return time.Now().AddDate(0, -months, 0)
	}
	env["yearsAgo"] = func(years int) time.Time {
		return time.Now().AddDate(-years, 0, 0)
	}
	env["parseDate"] = func(dateStr string) time.Time {
		t, _ := time.Parse("2006-01-02", dateStr)
		return t
	}
	env["now"] = time.Now

	// String helpers
	env["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["startsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["endsWith"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper

	// Unit helpers
	env["celsius"] = func(kelvin float64) float64 {
		return kelvin - 273.15
	}
}

func imageryEnv(img agro.Imagery) map[string]any {
	env := make(map[string]any, 24)
	addHelperFunctions(env)

	var sun agro.Sun
	if img.Sun != nil {
		sun = *img.Sun
	}

	env["Date"] = img.Time()
	env["Type"] = img.Type
	env["Coverage"] = img.Dc
	env["Clouds"] = img.Cl
	env["SunElevation"] = sun.Elevation
	env["SunAzimuth"] = sun.Azimuth
	env["hasIndex"] = func(index string) bool {
		return img.Stats.URL(strings.ToLower(index)) != ""
	}
	return env
}

func polygonEnv(poly agro.Polygon) map[string]any {
	env := make(map[string]any, 24)
	addHelperFunctions(env)

	var lon, lat float64
	if len(poly.Center) == 2 {
		lon, lat = poly.Center[0], poly.Center[1]
	}

	env["ID"] = poly.ID
	env["Name"] = poly.Name
	env["Area"] = poly.Area
	env["Created"] = poly.Created()
	env["CenterLon"] = lon
	env["CenterLat"] = lat
	return env
}

func ndviEnv(h agro.NDVIHistory) map[string]any {
	env := make(map[string]any, 24)
	addHelperFunctions(env)

	env["Date"] = h.Time()
	env["Source"] = h.Source
	env["Zoom"] = h.Zoom
	env["Coverage"] = h.Dc
	env["Clouds"] = h.Cl
	env["Mean"] = h.Data.Mean
	env["Median"] = h.Data.Median
	env["Min"] = h.Data.Min
	env["Max"] = h.Data.Max
	env["Std"] = h.Data.Std
	env["Num"] = h.Data.Num
	return env
}

func weatherEnv(w agro.Weather) map[string]any {
	env := make(map[string]any, 24)
	addHelperFunctions(env)

	var main agro.MainData
	if w.Main != nil {
		main = *w.Main
	}
	var wind agro.Wind
	if w.Wind != nil {
		wind = *w.Wind
	}
	var cloudCover int
	if w.Clouds != nil {
		cloudCover = w.Clouds.All
	}
	var condition string
	if len(w.Conditions) > 0 {
		condition = w.Conditions[0].Main
	}

	env["Date"] = w.Time()
	env["Temp"] = main.Temp
	env["FeelsLike"] = main.FeelsLike
	env["Pressure"] = main.Pressure
	env["Humidity"] = main.Humidity
	env["WindSpeed"] = wind.Speed
	env["CloudCover"] = cloudCover
	env["Condition"] = condition
	env["Icon"] = w.IconName()
	env["Rain"] = precipitation(w.Rain)
	env["Snow"] = precipitation(w.Snow)
	return env
}

// precipitation returns the most recent reported amount in mm, or 0
func precipitation(p *agro.Precipitation) float64 {
	switch {
	case p == nil:
		return 0
	case p.OneHour != nil:
		return *p.OneHour
	case p.ThreeHour != nil:
		return *p.ThreeHour
	}
	return 0
}
