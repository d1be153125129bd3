package agro

import (
	"encoding/json"
	"time"
)

// Weather is a weather snapshot for a polygon, current, forecast or historical
type Weather struct {
	Dt         int64          `json:"dt"`
	Main       *MainData      `json:"main,omitempty"`
	Wind       *Wind          `json:"wind,omitempty"`
	Clouds     *Clouds        `json:"clouds,omitempty"`
	Conditions []Condition    `json:"weather"`
	Rain       *Precipitation `json:"rain,omitempty"`
	Snow       *Precipitation `json:"snow,omitempty"`
}

// Time returns the snapshot time
func (w *Weather) Time() time.Time {
	return unixTime(w.Dt)
}

// IconName returns the icon of the first condition, or "smiley" when there is none
func (w *Weather) IconName() string {
	if len(w.Conditions) == 0 {
		return "smiley"
	}
	return w.Conditions[0].IconName()
}

// MainData bundles temperature (kelvin), pressure (hPa) and humidity (%)
type MainData struct {
	Temp      float64  `json:"temp"`
	FeelsLike float64  `json:"feels_like"`
	TempMin   float64  `json:"temp_min"`
	TempMax   float64  `json:"temp_max"`
	Pressure  float64  `json:"pressure"`
	Humidity  float64  `json:"humidity"`
	SeaLevel  *float64 `json:"sea_level,omitempty"`
	GrndLevel *float64 `json:"grnd_level,omitempty"`
	TempKf    *float64 `json:"temp_kf,omitempty"`
}

// Wind speed is in m/s, direction in degrees
type Wind struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
}

// Clouds is the cloud cover in percent
type Clouds struct {
	All int `json:"all"`
}

// Precipitation holds rain or snow volume in mm over the last 1h and 3h.
// A nil window means no data.
type Precipitation struct {
	OneHour   *float64 `json:"1h,omitempty"`
	ThreeHour *float64 `json:"3h,omitempty"`
}

// UnmarshalJSON accepts an empty object and ignores windows that are not numbers.
func (p *Precipitation) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Precipitation{
		OneHour:   numberOrNil(raw["1h"]),
		ThreeHour: numberOrNil(raw["3h"]),
	}
	return nil
}

func numberOrNil(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

// Condition is one weather condition code
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// IconName maps the condition code to a display icon name
func (c Condition) IconName() string {
	switch {
	case c.ID >= 200 && c.ID <= 232: // thunderstorm
		return "cloud.bolt.rain"
	case c.ID >= 300 && c.ID <= 301: // drizzle
		return "cloud.drizzle"
	case c.ID >= 500 && c.ID <= 531:
		return "cloud.rain"
	case c.ID >= 600 && c.ID <= 622:
		return "cloud.snow"
	case c.ID >= 701 && c.ID <= 781: // fog, haze, dust
		return "cloud.fog"
	case c.ID == 800:
		return "sun.max"
	default:
		return "cloud.sun"
	}
}
