// Package filter selects Agro API records with expr-lang expressions.
//
// Expressions are compiled for one record kind and type-checked against its
// fields. Helpers such as daysAgo, contains and celsius are available to all kinds.
//
// # Fields
//
// Imagery: Date, Type, Coverage, Clouds, SunElevation, SunAzimuth, hasIndex(name).
//
// Polygon: ID, Name, Area, Created, CenterLon, CenterLat.
//
// NDVI: Date, Source, Zoom, Coverage, Clouds, Mean, Median, Min, Max, Std, Num.
//
// Weather: Date, Temp, FeelsLike, Pressure, Humidity, WindSpeed, CloudCover,
// Condition, Icon, Rain, Snow.
//
// # Usage
//
//	c := filter.NewCompiler()
//	f, err := c.Compile(filter.KindImagery, `Clouds < 20 and Date > daysAgo(30)`)
//	if err != nil {
//	    return err
//	}
//	clear, err := filter.Imagery(f, images)
package filter
