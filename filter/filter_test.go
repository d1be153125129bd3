package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/agroapi/agro"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name        string
		kind        Kind
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			kind:       KindImagery,
			expression: `Clouds < 20`,
		},
		{
			name:        "empty expression",
			kind:        KindImagery,
			expression:  "   ",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			kind:       KindPolygon,
			expression: `contains(Name, "unclosed`,
			wantErr:    true,
		},
		{
			name:       "unknown field",
			kind:       KindPolygon,
			expression: `Title == "x"`,
			wantErr:    true,
		},
		{
			name:       "type mismatch",
			kind:       KindImagery,
			expression: `Type > 5`,
			wantErr:    true,
		},
		{
			name:       "not a boolean",
			kind:       KindNDVI,
			expression: `Mean + 1`,
			wantErr:    true,
		},
		{
			name:        "unknown kind",
			kind:        Kind("movies"),
			expression:  `true`,
			wantErr:     true,
			errContains: "unknown record kind",
		},
		{
			name:       "complex expression",
			kind:       KindWeather,
			expression: `celsius(Temp) > 10 and Humidity < 80 and Date > daysAgo(7) and not contains(Condition, "rain")`,
		},
	}

	c := NewCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := c.Compile(tt.kind, tt.expression)
			if tt.wantErr {
				require.Error(t, err)
				var compErr *CompilationError
				assert.ErrorAs(t, err, &compErr)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, f.Kind())
		})
	}
}

func TestCompilerCache(t *testing.T) {
	c := NewCompiler(WithCache(2))

	a, err := c.Compile(KindImagery, `Clouds < 20`)
	require.NoError(t, err)
	b, err := c.Compile(KindImagery, ` Clouds < 20 `)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, c.Len())

	_, err = c.Compile(KindNDVI, `Clouds < 20`)
	require.NoError(t, err)
	_, err = c.Compile(KindWeather, `Clouds < 20`)
	assert.Error(t, err, "weather has no Clouds field")
	_, err = c.Compile(KindPolygon, `Area > 10`)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())

	uncached := NewCompiler(WithCache(0))
	_, err = uncached.Compile(KindImagery, `Clouds < 20`)
	require.NoError(t, err)
	assert.Equal(t, 0, uncached.Len())
}

func TestImageryFilter(t *testing.T) {
	recent := time.Now().AddDate(0, 0, -3).Unix()
	old := time.Now().AddDate(-1, 0, 0).Unix()

	images := []agro.Imagery{
		{Dt: recent, Type: "Sentinel-2", Dc: 100, Cl: 2.5, Sun: &agro.Sun{Elevation: 60}, Stats: &agro.Stats{NDVI: "http://x/ndvi"}},
		{Dt: recent, Type: "Landsat 8", Dc: 100, Cl: 45},
		{Dt: old, Type: "Sentinel-2", Dc: 80, Cl: 1},
	}

	tests := []struct {
		expression string
		expected   int
	}{
		{`Clouds < 20`, 2},
		{`Clouds < 20 and Date > daysAgo(30)`, 1},
		{`startsWith(Type, "sentinel")`, 2},
		{`hasIndex("NDVI")`, 1},
		{`SunElevation > 45`, 1},
		{`Coverage == 100 and Clouds > 40`, 1},
	}

	c := NewCompiler()
	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			f, err := c.Compile(KindImagery, tt.expression)
			require.NoError(t, err)

			matches, err := Imagery(f, images)
			require.NoError(t, err)
			assert.Len(t, matches, tt.expected)
		})
	}
}

func TestPolygonFilter(t *testing.T) {
	polys := []agro.Polygon{
		{ID: "a", Name: "North Field", Area: 190.6, Center: []float64{-121.18, 37.67}, CreatedAt: time.Now().AddDate(0, -2, 0).Unix()},
		{ID: "b", Name: "South Orchard", Area: 12.2},
	}

	c := NewCompiler()
	f, err := c.Compile(KindPolygon, `contains(Name, "field") and Area > 100 and CenterLat > 0`)
	require.NoError(t, err)

	matches, err := Polygons(f, polys)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a", matches[0].ID)

	f, err = c.Compile(KindPolygon, `Created > monthsAgo(6)`)
	require.NoError(t, err)
	matches, err = Polygons(f, polys)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a", matches[0].ID)
}

func TestNDVIAndWeatherFilters(t *testing.T) {
	c := NewCompiler()

	history := []agro.NDVIHistory{
		{Dt: 1, Source: "s2", Cl: 0, Data: agro.StatsInfo{Mean: 0.71}},
		{Dt: 2, Source: "l8", Cl: 30, Data: agro.StatsInfo{Mean: 0.32}},
	}
	f, err := c.Compile(KindNDVI, `Mean >= 0.5 and Source == "s2"`)
	require.NoError(t, err)
	matches, err := NDVIHistory(f, history)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, int64(1), matches[0].Dt)

	rain := 1.2
	snapshots := []agro.Weather{
		{Dt: 1, Main: &agro.MainData{Temp: 295.15}, Rain: &agro.Precipitation{OneHour: &rain}, Conditions: []agro.Condition{{ID: 500, Main: "Rain"}}},
		{Dt: 2, Main: &agro.MainData{Temp: 273.15}, Conditions: []agro.Condition{{ID: 800, Main: "Clear"}}},
		{Dt: 3},
	}
	f, err = c.Compile(KindWeather, `Rain > 0 or Icon == "sun.max"`)
	require.NoError(t, err)
	weather, err := Weather(f, snapshots)
	require.NoError(t, err)
	assert.Len(t, weather, 2)

	f, err = c.Compile(KindWeather, `celsius(Temp) >= 20`)
	require.NoError(t, err)
	weather, err = Weather(f, snapshots)
	require.NoError(t, err)
	require.Len(t, weather, 1)
	assert.Equal(t, int64(1), weather[0].Dt)
}

func TestApplyKindMismatch(t *testing.T) {
	c := NewCompiler()
	f, err := c.Compile(KindNDVI, `Clouds < 10`)
	require.NoError(t, err)

	_, err = Imagery(f, []agro.Imagery{{Cl: 5}})
	assert.Error(t, err)

	// a nil filter keeps everything
	images := []agro.Imagery{{Dt: 1}, {Dt: 2}}
	matches, err := Imagery(nil, images)
	require.NoError(t, err)
	assert.Equal(t, images, matches)
}
