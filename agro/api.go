package agro

import (
	"context"
)

// API defines the interface for Agro API operations
type API interface {
	// Polygon operations
	CreatePolygon(ctx context.Context, poly PolygonRequest) (*Polygon, error)
	GetPolygon(ctx context.Context, id string) (*Polygon, error)
	ListPolygons(ctx context.Context) ([]Polygon, error)
	UpdatePolygon(ctx context.Context, id, name string) (*Polygon, error)
	DeletePolygon(ctx context.Context, id string) error

	// Imagery operations
	SearchImagery(ctx context.Context, opts ImageryOptions) ([]Imagery, error)
	ImageryStats(ctx context.Context, statsURL string) (*StatsInfo, error)
	NDVIHistory(ctx context.Context, opts ImageryOptions) ([]NDVIHistory, error)

	// Binary payloads
	FetchRaw(ctx context.Context, rawURL string) ([]byte, error)
	FetchTile(ctx context.Context, template string, z, x, y int) ([]byte, error)
	FetchPalette(ctx context.Context, imageURL string, paletteID int) ([]byte, error)

	// Weather operations
	CurrentWeather(ctx context.Context, polygonID string) (*Weather, error)
	WeatherForecast(ctx context.Context, polygonID string) ([]Weather, error)
	WeatherHistory(ctx context.Context, opts WeatherOptions) ([]Weather, error)
}

var _ API = (*Client)(nil)
