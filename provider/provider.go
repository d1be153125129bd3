package provider

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/s0up4200/agroapi/agro"
)

const defaultQueueSize = 64

// Provider exposes every Agro API action as an asynchronous Call and tracks
// the calls in flight so they can be cancelled individually or in bulk.
type Provider struct {
	client     agro.API
	logger     zerolog.Logger
	dispatcher Dispatcher
	queue      *SerialQueue

	mu       sync.Mutex
	inflight map[uuid.UUID]context.CancelFunc

	// callbacks currently running
	delivering atomic.Int32
}

// Option configures a Provider.
type Option func(*Provider)

// WithDispatcher delivers completions through d instead of the provider's own serial queue.
func WithDispatcher(d Dispatcher) Option {
	return func(p *Provider) {
		p.dispatcher = d
	}
}

// New creates a Provider on top of client
func New(client agro.API, logger zerolog.Logger, opts ...Option) *Provider {
	p := &Provider{
		client:   client,
		logger:   logger,
		inflight: make(map[uuid.UUID]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.dispatcher == nil {
		p.queue = NewSerialQueue(defaultQueueSize)
		p.dispatcher = p.queue
	}
	return p
}

// track registers a new in-flight call and returns its id and context
func (p *Provider) track(parent context.Context) (uuid.UUID, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	id := uuid.New()

	p.mu.Lock()
	p.inflight[id] = cancel
	p.mu.Unlock()

	return id, ctx
}

// finish removes a call from the in-flight set. It reports false when the
// call was already cancelled, in which case nothing may be delivered.
func (p *Provider) finish(id uuid.UUID) bool {
	p.mu.Lock()
	cancel, ok := p.inflight[id]
	delete(p.inflight, id)
	p.mu.Unlock()

	if ok {
		cancel()
	}
	return ok
}

// cancel aborts a single call
func (p *Provider) cancel(id uuid.UUID) bool {
	p.mu.Lock()
	cancel, ok := p.inflight[id]
	delete(p.inflight, id)
	p.mu.Unlock()

	if ok {
		cancel()
	}
	return ok
}

// complete runs fn on the dispatcher, or inline once the dispatcher is gone
func (p *Provider) complete(fn func()) {
	if err := p.dispatcher.Dispatch(fn); err != nil {
		fn()
	}
}

// Pending returns the number of calls in flight
func (p *Provider) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inflight)
}

// CancelAll cancels every call in flight. None of them delivers a value afterwards.
func (p *Provider) CancelAll() {
	p.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(p.inflight))
	for id, cancel := range p.inflight {
		cancels = append(cancels, cancel)
		delete(p.inflight, id)
	}
	p.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}

	if len(cancels) > 0 {
		p.logger.Debug().Int("count", len(cancels)).Msg("Cancelled pending Agro API calls")
	}
}

// Close cancels all calls and stops the default dispatcher, waiting for it to
// drain. Called from a completion callback, Close stops the queue without
// waiting, since the queue cannot drain before that callback returns.
func (p *Provider) Close(ctx context.Context) error {
	p.CancelAll()
	if p.queue == nil {
		return nil
	}

	if p.delivering.Load() > 0 {
		p.queue.shutdown()
		return nil
	}
	return p.queue.Stop(ctx)
}

// Polygons

// CreatePolygon registers a polygon
func (p *Provider) CreatePolygon(poly agro.PolygonRequest) *Call[*agro.Polygon] {
	return newCall(p, "create polygon", func(ctx context.Context) (*agro.Polygon, error) {
		return p.client.CreatePolygon(ctx, poly)
	}, notNil[agro.Polygon])
}

// GetPolygon fetches one polygon
func (p *Provider) GetPolygon(id string) *Call[*agro.Polygon] {
	return newCall(p, "get polygon", func(ctx context.Context) (*agro.Polygon, error) {
		return p.client.GetPolygon(ctx, id)
	}, notNil[agro.Polygon])
}

// ListPolygons fetches all polygons
func (p *Provider) ListPolygons() *Call[[]agro.Polygon] {
	return newCall(p, "list polygons", func(ctx context.Context) ([]agro.Polygon, error) {
		return p.client.ListPolygons(ctx)
	}, notNilSlice[agro.Polygon])
}

// UpdatePolygon renames a polygon
func (p *Provider) UpdatePolygon(id, name string) *Call[*agro.Polygon] {
	return newCall(p, "update polygon", func(ctx context.Context) (*agro.Polygon, error) {
		return p.client.UpdatePolygon(ctx, id, name)
	}, notNil[agro.Polygon])
}

// DeletePolygon removes a polygon. The call yields true once the polygon is gone.
func (p *Provider) DeletePolygon(id string) *Call[bool] {
	return newCall(p, "delete polygon", func(ctx context.Context) (bool, error) {
		if err := p.client.DeletePolygon(ctx, id); err != nil {
			return false, err
		}
		return true, nil
	}, func(ok bool) bool { return ok })
}

// Imagery

// SearchImagery lists satellite scenes
func (p *Provider) SearchImagery(opts agro.ImageryOptions) *Call[[]agro.Imagery] {
	return newCall(p, "search imagery", func(ctx context.Context) ([]agro.Imagery, error) {
		return p.client.SearchImagery(ctx, opts)
	}, notNilSlice[agro.Imagery])
}

// ImageryStats fetches the statistics behind a stats URL
func (p *Provider) ImageryStats(statsURL string) *Call[*agro.StatsInfo] {
	return newCall(p, "imagery stats", func(ctx context.Context) (*agro.StatsInfo, error) {
		return p.client.ImageryStats(ctx, statsURL)
	}, notNil[agro.StatsInfo])
}

// NDVIHistory fetches historical NDVI statistics
func (p *Provider) NDVIHistory(opts agro.ImageryOptions) *Call[[]agro.NDVIHistory] {
	return newCall(p, "ndvi history", func(ctx context.Context) ([]agro.NDVIHistory, error) {
		return p.client.NDVIHistory(ctx, opts)
	}, notNilSlice[agro.NDVIHistory])
}

// GetTile downloads one map tile from a tile URL template
func (p *Provider) GetTile(template string, z, x, y int) *Call[[]byte] {
	return newCall(p, "get tile", func(ctx context.Context) ([]byte, error) {
		return p.client.FetchTile(ctx, template, z, x, y)
	}, notNilSlice[byte])
}

// GetPNG downloads a PNG image rendered with a palette
func (p *Provider) GetPNG(imageURL string, paletteID int) *Call[[]byte] {
	return newCall(p, "get png", func(ctx context.Context) ([]byte, error) {
		return p.client.FetchPalette(ctx, imageURL, paletteID)
	}, notNilSlice[byte])
}

// GetGeoTIFF downloads a GeoTIFF rendered with a palette
func (p *Provider) GetGeoTIFF(dataURL string, paletteID int) *Call[[]byte] {
	return newCall(p, "get geotiff", func(ctx context.Context) ([]byte, error) {
		return p.client.FetchPalette(ctx, dataURL, paletteID)
	}, notNilSlice[byte])
}

// FetchRaw downloads any binary payload unparsed
func (p *Provider) FetchRaw(rawURL string) *Call[[]byte] {
	return newCall(p, "fetch raw", func(ctx context.Context) ([]byte, error) {
		return p.client.FetchRaw(ctx, rawURL)
	}, notNilSlice[byte])
}

// Weather

// CurrentWeather fetches the current weather over a polygon
func (p *Provider) CurrentWeather(polygonID string) *Call[*agro.Weather] {
	return newCall(p, "current weather", func(ctx context.Context) (*agro.Weather, error) {
		return p.client.CurrentWeather(ctx, polygonID)
	}, notNil[agro.Weather])
}

// WeatherForecast fetches the forecast over a polygon
func (p *Provider) WeatherForecast(polygonID string) *Call[[]agro.Weather] {
	return newCall(p, "weather forecast", func(ctx context.Context) ([]agro.Weather, error) {
		return p.client.WeatherForecast(ctx, polygonID)
	}, notNilSlice[agro.Weather])
}

// WeatherHistory fetches historical weather over a polygon
func (p *Provider) WeatherHistory(opts agro.WeatherOptions) *Call[[]agro.Weather] {
	return newCall(p, "weather history", func(ctx context.Context) ([]agro.Weather, error) {
		return p.client.WeatherHistory(ctx, opts)
	}, notNilSlice[agro.Weather])
}

func notNil[T any](v *T) bool { return v != nil }

func notNilSlice[T any](v []T) bool { return v != nil }
