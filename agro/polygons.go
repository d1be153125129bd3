package agro

import (
	"context"
	"fmt"
	"net/http"
)

// CreatePolygon registers a polygon and returns the server's view of it
func (c *Client) CreatePolygon(ctx context.Context, poly PolygonRequest) (*Polygon, error) {
	if err := poly.Validate(); err != nil {
		return nil, err
	}

	body, err := marshalBody(poly)
	if err != nil {
		return nil, err
	}

	u, err := c.polygonURL(http.MethodPost, "")
	if err != nil {
		return nil, err
	}

	created, err := fetchJSON[Polygon](ctx, c, request{
		resource: resourcePolygons,
		method:   http.MethodPost,
		url:      u,
		body:     body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create polygon %q: %w", poly.Name, err)
	}
	return created, nil
}

// GetPolygon retrieves a single polygon by id
func (c *Client) GetPolygon(ctx context.Context, id string) (*Polygon, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	u, err := c.polygonURL(http.MethodGet, id)
	if err != nil {
		return nil, err
	}

	poly, err := fetchJSON[Polygon](ctx, c, request{
		resource: resourcePolygons,
		method:   http.MethodGet,
		url:      u,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get polygon %s: %w", id, err)
	}
	return poly, nil
}

// ListPolygons retrieves all polygons of the account
func (c *Client) ListPolygons(ctx context.Context) ([]Polygon, error) {
	u, err := c.polygonURL(http.MethodGet, "")
	if err != nil {
		return nil, err
	}

	polys, err := fetchList[Polygon](ctx, c, request{
		resource: resourcePolygons,
		method:   http.MethodGet,
		url:      u,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list polygons: %w", err)
	}

	c.logger.Debug().Int("count", len(polys)).Msg("Retrieved polygons from Agro API")
	return polys, nil
}

// UpdatePolygon renames a polygon. The API does not allow changing the geometry.
func (c *Client) UpdatePolygon(ctx context.Context, id, name string) (*Polygon, error) {
	u, err := c.polygonURL(http.MethodPut, id)
	if err != nil {
		return nil, err
	}

	body, err := marshalBody(polygonUpdate{Name: name})
	if err != nil {
		return nil, err
	}

	poly, err := fetchJSON[Polygon](ctx, c, request{
		resource: resourcePolygons,
		method:   http.MethodPut,
		url:      u,
		body:     body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update polygon %s: %w", id, err)
	}
	return poly, nil
}

// DeletePolygon removes a polygon
func (c *Client) DeletePolygon(ctx context.Context, id string) error {
	u, err := c.polygonURL(http.MethodDelete, id)
	if err != nil {
		return err
	}

	if _, err := c.execute(ctx, request{
		resource: resourcePolygons,
		method:   http.MethodDelete,
		url:      u,
	}); err != nil {
		return fmt.Errorf("failed to delete polygon %s: %w", id, err)
	}

	c.logger.Info().Str("polygon_id", id).Msg("Deleted polygon")
	return nil
}
