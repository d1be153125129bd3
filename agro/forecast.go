package agro

import (
	"context"
	"fmt"
	"net/http"
)

// CurrentWeather retrieves the current weather over a polygon
func (c *Client) CurrentWeather(ctx context.Context, polygonID string) (*Weather, error) {
	u, err := c.weatherURL(weatherPath, polygonID)
	if err != nil {
		return nil, err
	}

	w, err := fetchJSON[Weather](ctx, c, request{
		resource: resourceWeather,
		method:   http.MethodGet,
		url:      u,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get current weather for polygon %s: %w", polygonID, err)
	}
	return w, nil
}

// WeatherForecast retrieves the 5 day / 3 hour forecast over a polygon
func (c *Client) WeatherForecast(ctx context.Context, polygonID string) ([]Weather, error) {
	u, err := c.weatherURL(forecastPath, polygonID)
	if err != nil {
		return nil, err
	}

	forecast, err := fetchList[Weather](ctx, c, request{
		resource: resourceWeather,
		method:   http.MethodGet,
		url:      u,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get weather forecast for polygon %s: %w", polygonID, err)
	}
	return forecast, nil
}

// WeatherHistory retrieves historical weather over a polygon for the options' time range
func (c *Client) WeatherHistory(ctx context.Context, opts WeatherOptions) ([]Weather, error) {
	if opts.PolygonID == "" {
		return nil, ErrMissingID
	}

	u, err := c.buildURL(weatherHistoryPath, "", opts.Encode())
	if err != nil {
		return nil, err
	}

	history, err := fetchList[Weather](ctx, c, request{
		resource: resourceWeather,
		method:   http.MethodGet,
		url:      u,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get weather history for polygon %s: %w", opts.PolygonID, err)
	}
	return history, nil
}
