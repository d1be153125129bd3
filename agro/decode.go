package agro

import (
	"bytes"
	"encoding/json"
)

// decode parses data as T. An empty body means the server returned nothing
// and yields (nil, nil). An undecodable body is a parser error, or an absent
// value when the client was built WithLenientDecoding.
func decode[T any](c *Client, data []byte) (*T, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		if c.lenient {
			c.logger.Debug().Err(err).Msg("Discarding undecodable Agro API response")
			return nil, nil
		}
		return nil, parserError(err)
	}
	return &v, nil
}
