package agro

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

// DefaultBaseURL is the Agro API root
const DefaultBaseURL = "https://api.agromonitoring.com/agro/1.0"

// Resource paths below the base URL
const (
	polygonsPath       = "/polygons"
	imageSearchPath    = "/image/search"
	weatherPath        = "/weather"
	forecastPath       = "/weather/forecast"
	weatherHistoryPath = "/weather/history"
	ndviHistoryPath    = "/ndvi/history"
)

// tileToken is the placeholder the API puts in tile URL templates
const tileToken = "{z}/{x}/{y}"

// polygonURL builds the polygons endpoint for method.
// GET with an empty id lists all polygons, GET with an id fetches one.
func (c *Client) polygonURL(method, id string) (string, error) {
	switch method {
	case http.MethodGet:
		return c.buildURL(polygonsPath, id, "")
	case http.MethodPost:
		if id != "" {
			return "", ErrUnexpectedID
		}
		return c.buildURL(polygonsPath, "", "")
	case http.MethodPut, http.MethodDelete:
		if id == "" {
			return "", ErrMissingID
		}
		return c.buildURL(polygonsPath, id, "")
	}
	return "", fmt.Errorf("%w: unsupported method %s", ErrInvalidURL, method)
}

// weatherURL builds a weather endpoint for a single polygon
func (c *Client) weatherURL(path, polygonID string) (string, error) {
	if polygonID == "" {
		return "", ErrMissingID
	}
	return c.buildURL(path, "", "polyid="+polygonID)
}

// buildURL joins the base URL, resource path, optional path parameter and
// raw query, then appends the API key as the last query parameter.
func (c *Client) buildURL(path, param, rawQuery string) (string, error) {
	var sb strings.Builder
	sb.WriteString(c.baseURL)
	sb.WriteString(path)

	if param != "" {
		if strings.IndexFunc(param, illegalPathRune) >= 0 {
			return "", fmt.Errorf("%w: illegal character in path parameter %q", ErrInvalidURL, param)
		}
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(param))
	}

	sb.WriteByte('?')
	if rawQuery != "" {
		sb.WriteString(escapeQuery(rawQuery))
		sb.WriteByte('&')
	}
	sb.WriteString("appid=")
	sb.WriteString(url.QueryEscape(c.apiKey))

	built := sb.String()
	if err := checkURL(built); err != nil {
		return "", err
	}
	return built, nil
}

// escapeQuery escapes every key and value of an unescaped key=value&... string
// without reordering it.
func escapeQuery(raw string) string {
	parts := strings.Split(raw, "&")
	for i, part := range parts {
		key, value, found := strings.Cut(part, "=")
		if !found {
			parts[i] = url.QueryEscape(key)
			continue
		}
		parts[i] = url.QueryEscape(key) + "=" + url.QueryEscape(value)
	}
	return strings.Join(parts, "&")
}

func illegalPathRune(r rune) bool {
	switch r {
	case '/', '?', '#':
		return true
	}
	return unicode.IsSpace(r) || unicode.IsControl(r)
}

// checkURL verifies raw is an absolute http(s) URL
func checkURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

// TileURL substitutes zoom and tile coordinates into a tile URL template.
// The substitution is textual; a template without the placeholder is returned unchanged.
func TileURL(template string, z, x, y int) string {
	return strings.ReplaceAll(template, tileToken, fmt.Sprintf("%d/%d/%d", z, x, y))
}

// PaletteURL appends a palette id to an image URL that already carries a query string
func PaletteURL(imageURL string, paletteID int) string {
	return imageURL + "&paletteid=" + strconv.Itoa(paletteID)
}

// redact hides the API key in URLs before they are logged
func (c *Client) redact(raw string) string {
	if c.apiKey == "" {
		return raw
	}
	return strings.ReplaceAll(raw, url.QueryEscape(c.apiKey), "REDACTED")
}

// StripAPIKey removes the appid parameter from a URL returned by the API, so the
// URL can be shared without the key. Other query parameters keep their order.
func StripAPIKey(raw string) string {
	base, rawQuery, ok := strings.Cut(raw, "?")
	if !ok {
		return raw
	}

	var kept []string
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" || strings.HasPrefix(part, "appid=") || part == "appid" {
			continue
		}
		kept = append(kept, part)
	}
	if len(kept) == 0 {
		return base
	}
	return base + "?" + strings.Join(kept, "&")
}
