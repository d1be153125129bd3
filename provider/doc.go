// Package provider wraps an agro.API in asynchronous calls for event-driven consumers.
//
// Every action returns a *Call. A call is started with one of three adapters:
//
//   - Then(cb) invokes cb once with the decoded value, or with the zero value on failure.
//     A nil pointer or slice in cb can therefore mean a failed call; the error is
//     logged, not passed on. Use Await when the caller needs the error.
//   - Stream() returns a channel that yields at most one value and is then closed.
//   - Await(ctx) blocks and returns the value with its typed error.
//
// # Usage
//
//	client, err := agro.NewClient(apiKey, logger)
//	if err != nil {
//	    return err
//	}
//	p := provider.New(client, logger)
//	defer p.Close(context.Background())
//
//	p.ListPolygons().Then(func(polys []agro.Polygon) {
//	    fmt.Println(len(polys))
//	})
//
// # Delivery
//
// Then and Stream completions run on the provider's Dispatcher. The default is a
// single goroutine that delivers completions one at a time. Applications with
// their own event loop pass it with WithDispatcher.
//
// # Cancellation
//
// Started calls are tracked until they complete. Handle.Cancel aborts one call,
// CancelAll aborts all of them. A cancelled call never invokes its callback, and
// its stream is closed without a value.
//
// Close may be called from a callback, for example to shut down after the last
// result. It then stops the queue without waiting for it to drain.
package provider
