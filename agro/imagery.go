package agro

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"
)

// DefaultStatsConcurrency bounds BatchImageryStats
const DefaultStatsConcurrency = 5

// SearchImagery lists the satellite scenes available for a polygon
func (c *Client) SearchImagery(ctx context.Context, opts ImageryOptions) ([]Imagery, error) {
	if opts.PolygonID == "" {
		return nil, ErrMissingID
	}

	u, err := c.buildURL(imageSearchPath, "", opts.Encode())
	if err != nil {
		return nil, err
	}

	images, err := fetchList[Imagery](ctx, c, request{
		resource: resourceImagery,
		method:   http.MethodGet,
		url:      u,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search imagery for polygon %s: %w", opts.PolygonID, err)
	}

	c.logger.Debug().
		Str("polygon_id", opts.PolygonID).
		Int("count", len(images)).
		Msg("Retrieved imagery from Agro API")
	return images, nil
}

// ImageryStats fetches the index statistics behind a stats URL of an Imagery.
// Stats URLs already carry the API key.
func (c *Client) ImageryStats(ctx context.Context, statsURL string) (*StatsInfo, error) {
	if err := checkURL(statsURL); err != nil {
		return nil, err
	}

	stats, err := fetchJSON[StatsInfo](ctx, c, request{
		resource: resourceStats,
		method:   http.MethodGet,
		url:      statsURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get imagery stats: %w", err)
	}
	return stats, nil
}

// FetchRaw downloads a binary payload (tile, PNG, GeoTIFF) without decoding it
func (c *Client) FetchRaw(ctx context.Context, rawURL string) ([]byte, error) {
	if err := checkURL(rawURL); err != nil {
		return nil, err
	}

	data, err := c.execute(ctx, request{
		resource: resourceRaw,
		method:   http.MethodGet,
		url:      rawURL,
		raw:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data: %w", err)
	}
	return data, nil
}

// FetchTile downloads the z/x/y tile of a tile URL template
func (c *Client) FetchTile(ctx context.Context, template string, z, x, y int) ([]byte, error) {
	return c.FetchRaw(ctx, TileURL(template, z, x, y))
}

// FetchPalette downloads a PNG or GeoTIFF image rendered with the given palette
func (c *Client) FetchPalette(ctx context.Context, imageURL string, paletteID int) ([]byte, error) {
	return c.FetchRaw(ctx, PaletteURL(imageURL, paletteID))
}

// NDVIHistory retrieves historical NDVI statistics for a polygon
func (c *Client) NDVIHistory(ctx context.Context, opts ImageryOptions) ([]NDVIHistory, error) {
	if opts.PolygonID == "" {
		return nil, ErrMissingID
	}

	u, err := c.buildURL(ndviHistoryPath, "", opts.HistoryEncode())
	if err != nil {
		return nil, err
	}

	history, err := fetchList[NDVIHistory](ctx, c, request{
		resource: resourceNDVIHistory,
		method:   http.MethodGet,
		url:      u,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get NDVI history for polygon %s: %w", opts.PolygonID, err)
	}
	return history, nil
}

// BatchImageryStats fetches the stats of index for several scenes concurrently.
// The result lines up with images: entry i holds the stats of images[i], or nil
// when that scene has no stats URL for index or its fetch failed. Individual
// failures are logged, not returned.
func (c *Client) BatchImageryStats(ctx context.Context, images []Imagery, index string) ([]*StatsInfo, error) {
	results := make([]*StatsInfo, len(images))
	if len(images) == 0 {
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultStatsConcurrency)

	for i, img := range images {
		statsURL := img.Stats.URL(index)
		if statsURL == "" {
			continue
		}

		g.Go(func() error {
			stats, err := c.ImageryStats(ctx, statsURL)
			if err != nil {
				c.logger.Warn().
					Err(err).
					Int64("dt", img.Dt).
					Str("type", img.Type).
					Str("index", index).
					Msg("Failed to get imagery stats")
				return nil
			}

			// each goroutine owns its own slot
			results[i] = stats
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
