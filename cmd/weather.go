package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/agroapi/agro"
	"github.com/s0up4200/agroapi/filter"
)

const kelvin = 273.15

// weatherCmd groups the weather commands
var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Show weather for a polygon",
	Long: `Show current, forecast and historical weather at a polygon.

Filter fields (forecast, history): Date, Temp, FeelsLike, Pressure, Humidity,
WindSpeed, CloudCover, Condition, Icon, Rain, Snow. Temperatures are in kelvin;
use celsius(Temp) to convert.`,
}

var weatherCurrentCmd = &cobra.Command{
	Use:   "current POLYGON_ID",
	Short: "Show the current weather",
	Args:  cobra.ExactArgs(1),
	RunE:  runWeatherCurrent,
}

var weatherForecastCmd = &cobra.Command{
	Use:   "forecast POLYGON_ID",
	Short: "Show the 5 day forecast in 3 hour steps",
	Args:  cobra.ExactArgs(1),
	RunE:  runWeatherForecast,
}

var weatherHistoryCmd = &cobra.Command{
	Use:   "history POLYGON_ID",
	Short: "Show historical weather in a time range",
	Args:  cobra.ExactArgs(1),
	RunE:  runWeatherHistory,
}

var weatherSummaryCmd = &cobra.Command{
	Use:   "summary POLYGON_ID",
	Short: "Show the current weather and the forecast together",
	Args:  cobra.ExactArgs(1),
	RunE:  runWeatherSummary,
}

func init() {
	rootCmd.AddCommand(weatherCmd)
	weatherCmd.AddCommand(weatherCurrentCmd, weatherForecastCmd, weatherHistoryCmd, weatherSummaryCmd)

	weatherForecastCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression or name of a configured filter")
	weatherHistoryCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression or name of a configured filter")
	addRangeFlags(weatherHistoryCmd)
}

func runWeatherCurrent(cmd *cobra.Command, args []string) error {
	w, err := prov.CurrentWeather(args[0]).Await(cmd.Context())
	if err != nil {
		return err
	}
	if w == nil {
		fmt.Println("No weather data available.")
		return nil
	}

	if jsonOutput() {
		return printJSON(w)
	}
	printCurrent(w)
	return nil
}

func runWeatherForecast(cmd *cobra.Command, args []string) error {
	f, err := compileFilter(filter.KindWeather, filterExpr)
	if err != nil {
		return err
	}

	forecast, err := prov.WeatherForecast(args[0]).Await(cmd.Context())
	if err != nil {
		return err
	}
	return printWeatherList(f, forecast, "forecast step")
}

func runWeatherHistory(cmd *cobra.Command, args []string) error {
	f, err := compileFilter(filter.KindWeather, filterExpr)
	if err != nil {
		return err
	}

	start, end, err := timeRange()
	if err != nil {
		return err
	}

	history, err := prov.WeatherHistory(agro.NewWeatherOptions(args[0], start, end)).Await(cmd.Context())
	if err != nil {
		return err
	}
	return printWeatherList(f, history, "observation")
}

func runWeatherSummary(cmd *cobra.Command, args []string) error {
	polygonID := args[0]

	var (
		current  *agro.Weather
		forecast []agro.Weather
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		current, err = prov.CurrentWeather(polygonID).Await(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		forecast, err = prov.WeatherForecast(polygonID).Await(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if jsonOutput() {
		return printJSON(struct {
			Current  *agro.Weather  `json:"current"`
			Forecast []agro.Weather `json:"forecast"`
		}{current, forecast})
	}

	if current != nil {
		printCurrent(current)
		fmt.Println()
	}
	return printWeatherList(nil, forecast, "forecast step")
}

func printCurrent(w *agro.Weather) {
	fmt.Printf("Weather at %s\n", formatDate(w.Time()))
	if len(w.Conditions) > 0 {
		fmt.Printf("  Conditions: %s (%s)\n", w.Conditions[0].Description, w.IconName())
	}
	if w.Main != nil {
		fmt.Printf("  Temp:       %.1f°C (feels like %.1f°C)\n", w.Main.Temp-kelvin, w.Main.FeelsLike-kelvin)
		fmt.Printf("  Pressure:   %.0f hPa\n", w.Main.Pressure)
		fmt.Printf("  Humidity:   %.0f%%\n", w.Main.Humidity)
	}
	if w.Wind != nil {
		fmt.Printf("  Wind:       %.1f m/s from %.0f°\n", w.Wind.Speed, w.Wind.Deg)
	}
	if w.Clouds != nil {
		fmt.Printf("  Clouds:     %d%%\n", w.Clouds.All)
	}
	if mm, ok := precipitation(w.Rain); ok {
		fmt.Printf("  Rain:       %.1f mm\n", mm)
	}
	if mm, ok := precipitation(w.Snow); ok {
		fmt.Printf("  Snow:       %.1f mm\n", mm)
	}
}

func printWeatherList(f *filter.Filter, list []agro.Weather, noun string) error {
	list, err := filter.Weather(f, list)
	if err != nil {
		return err
	}

	if jsonOutput() {
		return printJSON(list)
	}

	if len(list) == 0 {
		fmt.Println("No weather data found.")
		return nil
	}

	fmt.Printf("%d %s:\n\n", len(list), plural(len(list), noun))
	fmt.Println(strings.Repeat("━", 85))
	fmt.Printf("%-17s %8s %9s %9s %8s %7s  %s\n", "DATE", "TEMP", "HUMIDITY", "WIND", "CLOUDS", "RAIN", "CONDITIONS")
	fmt.Println(strings.Repeat("━", 85))

	for i := range list {
		w := &list[i]
		temp, humidity := "-", "-"
		if w.Main != nil {
			temp = fmt.Sprintf("%.1f°C", w.Main.Temp-kelvin)
			humidity = fmt.Sprintf("%.0f%%", w.Main.Humidity)
		}
		wind := "-"
		if w.Wind != nil {
			wind = fmt.Sprintf("%.1fm/s", w.Wind.Speed)
		}
		clouds := "-"
		if w.Clouds != nil {
			clouds = fmt.Sprintf("%d%%", w.Clouds.All)
		}
		rain := "-"
		if mm, ok := precipitation(w.Rain); ok {
			rain = fmt.Sprintf("%.1fmm", mm)
		}
		conditions := "-"
		if len(w.Conditions) > 0 {
			conditions = w.Conditions[0].Description
		}
		fmt.Printf("%-17s %8s %9s %9s %8s %7s  %s\n", formatDate(w.Time()), temp, humidity, wind, clouds, rain, conditions)
	}

	return nil
}

// precipitation returns the 3h volume, or the 1h volume when 3h is missing
func precipitation(p *agro.Precipitation) (float64, bool) {
	switch {
	case p == nil:
		return 0, false
	case p.ThreeHour != nil:
		return *p.ThreeHour, true
	case p.OneHour != nil:
		return *p.OneHour, true
	}
	return 0, false
}
