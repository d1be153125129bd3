// Package catalog exports Agro imagery search results as STAC items.
package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/planetlabs/go-stac"

	"github.com/s0up4200/agroapi/agro"
	"github.com/s0up4200/agroapi/geo"
)

// Version is the STAC version written to every item
const Version = "1.0.0"

// CollectionID is the collection the exported items belong to
const CollectionID = "agro-imagery"

const (
	mediaPNG     = "image/png"
	mediaGeoTIFF = "image/tiff; application=geotiff"
	mediaJSON    = "application/json"
)

// ItemCollection is a GeoJSON FeatureCollection of STAC items
type ItemCollection struct {
	Type           string       `json:"type"`
	Features       []*stac.Item `json:"features"`
	Links          []*stac.Link `json:"links"`
	NumberReturned int          `json:"numberReturned"`
}

// ImageryItem converts one scene over polygon into a STAC item.
// The item geometry is the polygon, since scenes are clipped to it.
// Asset hrefs have the API key removed; append appid=<key> to fetch them.
func ImageryItem(img agro.Imagery, polygon agro.Polygon) (*stac.Item, error) {
	if polygon.ID == "" {
		return nil, fmt.Errorf("polygon has no id")
	}
	if img.Dt == 0 {
		return nil, fmt.Errorf("scene has no capture time")
	}

	bbox, err := geo.Bounds(polygon.GeoJSON.Geometry)
	if err != nil {
		return nil, fmt.Errorf("failed to compute bbox for polygon %s: %w", polygon.ID, err)
	}

	item := &stac.Item{
		Version:    Version,
		Id:         itemID(img, polygon.ID),
		Collection: CollectionID,
		Geometry:   polygon.GeoJSON.Geometry,
		Bbox:       bbox.Slice(),
		Properties: make(map[string]any),
		Assets:     make(map[string]*stac.Asset),
		Links:      make([]*stac.Link, 0),
	}

	item.Properties["datetime"] = img.Time().Format(time.RFC3339)
	item.Properties["eo:cloud_cover"] = img.Cl
	item.Properties["agro:coverage"] = img.Dc
	item.Properties["agro:polygon_id"] = polygon.ID
	if img.Type != "" {
		item.Properties["platform"] = strings.ToLower(img.Type)
	}
	if img.Sun != nil {
		item.Properties["view:sun_elevation"] = img.Sun.Elevation
		item.Properties["view:sun_azimuth"] = img.Sun.Azimuth
	}

	addURLAssets(item, img.Image, "", mediaPNG, "visual")
	addURLAssets(item, img.Data, "_data", mediaGeoTIFF, "data")
	addStatsAssets(item, img.Stats)

	return item, nil
}

// ImageryCollection converts every scene over polygon. Any conversion failure fails the whole collection.
func ImageryCollection(images []agro.Imagery, polygon agro.Polygon) (*ItemCollection, error) {
	items := make([]*stac.Item, 0, len(images))
	for _, img := range images {
		item, err := ImageryItem(img, polygon)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return &ItemCollection{
		Type:           "FeatureCollection",
		Features:       items,
		Links:          make([]*stac.Link, 0),
		NumberReturned: len(items),
	}, nil
}

// itemID is unique per polygon, capture time and satellite
func itemID(img agro.Imagery, polygonID string) string {
	id := fmt.Sprintf("%s-%d", polygonID, img.Dt)
	if img.Type != "" {
		id += "-" + strings.ReplaceAll(strings.ToLower(img.Type), " ", "-")
	}
	return id
}

func addURLAssets(item *stac.Item, urls *agro.SatURLs, suffix, mediaType, role string) {
	if urls == nil {
		return
	}

	for _, a := range []struct {
		key   string
		title string
		href  string
	}{
		{"truecolor", "True color", urls.TrueColor},
		{"falsecolor", "False color", urls.FalseColor},
		{"ndvi", "NDVI", urls.NDVI},
		{"evi", "EVI", urls.EVI},
		{"evi2", "EVI2", urls.EVI2},
		{"nri", "NRI", urls.NRI},
		{"dswi", "DSWI", urls.DSWI},
		{"ndwi", "NDWI", urls.NDWI},
	} {
		if a.href == "" {
			continue
		}
		item.Assets[a.key+suffix] = &stac.Asset{
			Href:  agro.StripAPIKey(a.href),
			Title: a.title,
			Type:  mediaType,
			Roles: []string{role},
		}
	}
}

func addStatsAssets(item *stac.Item, stats *agro.Stats) {
	for _, index := range []string{"ndvi", "evi", "evi2", "nri", "dswi", "ndwi"} {
		href := stats.URL(index)
		if href == "" {
			continue
		}
		item.Assets[index+"_stats"] = &stac.Asset{
			Href:  agro.StripAPIKey(href),
			Title: strings.ToUpper(index) + " statistics",
			Type:  mediaJSON,
			Roles: []string{"metadata"},
		}
	}
}
