// Package agro provides a client for the Agro monitoring API.
//
// The API serves user-defined polygons (geofences), satellite imagery and
// vegetation index statistics for those polygons, and current, forecast and
// historical weather over them. Every request is authenticated with an API
// key sent as the appid query parameter.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := agro.NewClient("your-api-key", logger,
//		agro.WithTimeout(30*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	polys, err := client.ListPolygons(ctx)
//
//	opts := agro.NewImageryOptions(polys[0].ID, start, end)
//	opts.CloudsMax = agro.Float(20)
//	images, err := client.SearchImagery(ctx, opts)
//
// # Error Handling
//
// Failed requests return an *Error whose Kind classifies the failure:
//
//   - KindAPI: the server rejected the request (401, 403, 404, 405-499, 5xx)
//   - KindNetwork: the transport failed (DNS, TLS, reset, timeout)
//   - KindParser: the body could not be decoded into the expected type
//   - KindUnknown: anything else
//
// Use errors.As to inspect it:
//
//	var apiErr *agro.Error
//	if errors.As(err, &apiErr) && apiErr.IsNotFound() {
//		// polygon is gone
//	}
//
// # Metrics
//
// WithMetrics records a request counter and a latency histogram per resource
// in a Prometheus registry:
//
//	reg := prometheus.NewRegistry()
//	client, err := agro.NewClient(apiKey, logger, agro.WithMetrics(agro.NewMetrics(reg)))
//
// # Decoding
//
// A client created WithLenientDecoding reports undecodable bodies as an
// absent value (nil, nil) instead of a KindParser error.
package agro
