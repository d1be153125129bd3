package agro

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometryValidate(t *testing.T) {
	tests := []struct {
		name    string
		rings   [][][]float64
		wantErr bool
	}{
		{
			name:  "closed triangle",
			rings: [][][]float64{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
		},
		{
			name:    "open ring",
			rings:   [][][]float64{{{0, 0}, {1, 0}, {1, 1}}},
			wantErr: true,
		},
		{
			name:    "too few positions",
			rings:   [][][]float64{{{0, 0}, {0, 0}}},
			wantErr: true,
		},
		{
			name: "second ring open",
			rings: [][][]float64{
				{{0, 0}, {4, 0}, {4, 4}, {0, 0}},
				{{1, 1}, {2, 1}, {2, 2}},
			},
			wantErr: true,
		},
		{
			name:    "no rings",
			rings:   nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewPolygonRequest("field", tt.rings).Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPolygon)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPolygonRequestRoundTrip(t *testing.T) {
	rings := [][][]float64{{
		{-121.1958, 37.6683},
		{-121.1779, 37.6687},
		{-121.1773, 37.6792},
		{-121.1958, 37.6792},
		{-121.1958, 37.6683},
	}}
	req := NewPolygonRequest("Polygon Sample", rings)

	body, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "Polygon Sample",
		"geo_json": {
			"type": "Feature",
			"properties": {},
			"geometry": {
				"type": "Polygon",
				"coordinates": [[[-121.1958,37.6683],[-121.1779,37.6687],[-121.1773,37.6792],[-121.1958,37.6792],[-121.1958,37.6683]]]
			}
		}
	}`, string(body))

	// the server echoes the polygon back with id, area and center added
	var echo map[string]any
	require.NoError(t, json.Unmarshal(body, &echo))
	echo["id"] = "5aaa8052cbbbb5000b73ff66"
	echo["user_id"] = "5a54bb1ba2f69600016bff1a"
	echo["area"] = 190.6343
	echo["center"] = []float64{-121.1867, 37.67356}
	echoed, err := json.Marshal(echo)
	require.NoError(t, err)

	var poly Polygon
	require.NoError(t, json.Unmarshal(echoed, &poly))
	assert.Equal(t, req.Name, poly.Name)
	assert.Equal(t, req.GeoJSON.Geometry, poly.GeoJSON.Geometry)
	assert.Equal(t, "5aaa8052cbbbb5000b73ff66", poly.ID)
	assert.True(t, poly.Created().IsZero())
}

func TestImageryDecode(t *testing.T) {
	payload := `[{
		"dt": 1500940800,
		"type": "Landsat 8",
		"dc": 100,
		"cl": 1.56,
		"sun": {"azimuth": 126.742, "elevation": 63.572},
		"image": {"truecolor": "http://x/image/1.0/00059768/tc", "ndvi": "http://x/image/1.0/02059768/ndvi"},
		"tile": {"truecolor": "http://x/tile/1.0/{z}/{x}/{y}/00059768/tc"},
		"stats": {"ndvi": "http://x/stats/1.0/02359768/ndvi", "evi": "http://x/stats/1.0/02359768/evi"},
		"data": {"ndvi": "http://x/data/1.0/02259768/ndvi"}
	}]`

	var images []Imagery
	require.NoError(t, json.Unmarshal([]byte(payload), &images))
	require.Len(t, images, 1)

	img := images[0]
	assert.Equal(t, "Landsat 8", img.Type)
	assert.Equal(t, 1.56, img.Cl)
	assert.Equal(t, time.Unix(1500940800, 0).UTC(), img.Time())
	require.NotNil(t, img.Sun)
	assert.Equal(t, 63.572, img.Sun.Elevation)
	assert.Equal(t, "http://x/stats/1.0/02359768/ndvi", img.Stats.URL("ndvi"))
	assert.Equal(t, "http://x/stats/1.0/02359768/evi", img.Stats.URL("evi"))
	assert.Empty(t, img.Stats.URL("unknown"))

	var none *Stats
	assert.Empty(t, none.URL("ndvi"))
}

func TestPrecipitationDecode(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		oneHour   *float64
		threeHour *float64
	}{
		{name: "empty object", payload: `{}`},
		{name: "one hour", payload: `{"1h": 0.25}`, oneHour: Float(0.25)},
		{name: "both", payload: `{"1h": 1, "3h": 2.5}`, oneHour: Float(1), threeHour: Float(2.5)},
		{name: "not a number", payload: `{"3h": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Precipitation
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &p))
			assert.Equal(t, tt.oneHour, p.OneHour)
			assert.Equal(t, tt.threeHour, p.ThreeHour)
		})
	}
}

func TestWeatherDecode(t *testing.T) {
	payload := `{
		"dt": 1485789600,
		"weather": [{"id": 803, "main": "Clouds", "description": "broken clouds", "icon": "04d"}],
		"main": {"temp": 283.84, "feels_like": 281.4, "pressure": 1019, "humidity": 60, "temp_min": 282.15, "temp_max": 285.15},
		"wind": {"speed": 2.1, "deg": 230},
		"clouds": {"all": 75},
		"rain": {},
		"snow": {"3h": 0.5}
	}`

	var w Weather
	require.NoError(t, json.Unmarshal([]byte(payload), &w))
	assert.Equal(t, "cloud.sun", w.IconName())
	assert.Equal(t, 1019.0, w.Main.Pressure)
	assert.Equal(t, 75, w.Clouds.All)
	require.NotNil(t, w.Rain)
	assert.Nil(t, w.Rain.OneHour)
	require.NotNil(t, w.Snow)
	assert.Equal(t, 0.5, *w.Snow.ThreeHour)
	assert.Equal(t, time.Unix(1485789600, 0).UTC(), w.Time())
}

func TestConditionIconName(t *testing.T) {
	tests := []struct {
		id       int
		expected string
	}{
		{200, "cloud.bolt.rain"},
		{232, "cloud.bolt.rain"},
		{300, "cloud.drizzle"},
		{301, "cloud.drizzle"},
		{302, "cloud.sun"},
		{500, "cloud.rain"},
		{531, "cloud.rain"},
		{600, "cloud.snow"},
		{622, "cloud.snow"},
		{701, "cloud.fog"},
		{781, "cloud.fog"},
		{800, "sun.max"},
		{801, "cloud.sun"},
		{804, "cloud.sun"},
		{999, "cloud.sun"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Condition{ID: tt.id}.IconName(), "id %d", tt.id)
	}

	assert.Equal(t, "smiley", (&Weather{}).IconName())
}
