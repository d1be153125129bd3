package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/agroapi/agro"
)

// stubAPI overrides the methods a test needs; calling any other method panics
type stubAPI struct {
	agro.API
	getPolygon   func(ctx context.Context, id string) (*agro.Polygon, error)
	listPolygons func(ctx context.Context) ([]agro.Polygon, error)
	deletePoly   func(ctx context.Context, id string) error
	fetchPalette func(ctx context.Context, imageURL string, paletteID int) ([]byte, error)
}

func (s *stubAPI) GetPolygon(ctx context.Context, id string) (*agro.Polygon, error) {
	return s.getPolygon(ctx, id)
}

func (s *stubAPI) ListPolygons(ctx context.Context) ([]agro.Polygon, error) {
	return s.listPolygons(ctx)
}

func (s *stubAPI) DeletePolygon(ctx context.Context, id string) error {
	return s.deletePoly(ctx, id)
}

func (s *stubAPI) FetchPalette(ctx context.Context, imageURL string, paletteID int) ([]byte, error) {
	return s.fetchPalette(ctx, imageURL, paletteID)
}

// blockUntilCancelled returns a GetPolygon stub that waits for its context
func blockUntilCancelled(started chan<- struct{}) func(ctx context.Context, id string) (*agro.Polygon, error) {
	return func(ctx context.Context, id string) (*agro.Polygon, error) {
		if started != nil {
			started <- struct{}{}
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}
}

func TestThenDeliversOnDispatcher(t *testing.T) {
	var dispatched atomic.Int32
	dispatcher := DispatcherFunc(func(fn func()) {
		dispatched.Add(1)
		fn()
	})

	api := &stubAPI{getPolygon: func(ctx context.Context, id string) (*agro.Polygon, error) {
		return &agro.Polygon{ID: id, Name: "field"}, nil
	}}
	p := New(api, zerolog.Nop(), WithDispatcher(dispatcher))

	got := make(chan *agro.Polygon, 1)
	p.GetPolygon("abc").Then(func(poly *agro.Polygon) {
		got <- poly
	})

	select {
	case poly := <-got:
		require.NotNil(t, poly)
		assert.Equal(t, "abc", poly.ID)
	case <-time.After(time.Second):
		t.Fatal("callback not invoked")
	}

	assert.Equal(t, int32(1), dispatched.Load())
	assert.Equal(t, 0, p.Pending())
}

func TestThenOnFailureReceivesAbsentValue(t *testing.T) {
	api := &stubAPI{getPolygon: func(ctx context.Context, id string) (*agro.Polygon, error) {
		return nil, errors.New("Resource not found")
	}}
	p := New(api, zerolog.Nop())
	defer p.Close(context.Background())

	var calls atomic.Int32
	got := make(chan *agro.Polygon, 2)
	p.GetPolygon("missing").Then(func(poly *agro.Polygon) {
		calls.Add(1)
		got <- poly
	})

	select {
	case poly := <-got:
		assert.Nil(t, poly)
	case <-time.After(time.Second):
		t.Fatal("callback not invoked")
	}

	assert.Never(t, func() bool { return calls.Load() > 1 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestStream(t *testing.T) {
	t.Run("emits the value then closes", func(t *testing.T) {
		api := &stubAPI{listPolygons: func(ctx context.Context) ([]agro.Polygon, error) {
			return []agro.Polygon{{ID: "a"}, {ID: "b"}}, nil
		}}
		p := New(api, zerolog.Nop())
		defer p.Close(context.Background())

		ch, _ := p.ListPolygons().Stream()

		var received [][]agro.Polygon
		for v := range ch {
			received = append(received, v)
		}
		require.Len(t, received, 1)
		assert.Len(t, received[0], 2)
	})

	t.Run("failure closes without a value", func(t *testing.T) {
		api := &stubAPI{listPolygons: func(ctx context.Context) ([]agro.Polygon, error) {
			return nil, errors.New("server error")
		}}
		p := New(api, zerolog.Nop())
		defer p.Close(context.Background())

		ch, _ := p.ListPolygons().Stream()
		_, ok := <-ch
		assert.False(t, ok)
	})

	t.Run("absent value closes without a value", func(t *testing.T) {
		api := &stubAPI{getPolygon: func(ctx context.Context, id string) (*agro.Polygon, error) {
			return nil, nil
		}}
		p := New(api, zerolog.Nop())
		defer p.Close(context.Background())

		ch, _ := p.GetPolygon("abc").Stream()
		_, ok := <-ch
		assert.False(t, ok)
	})

	t.Run("delete yields true", func(t *testing.T) {
		api := &stubAPI{deletePoly: func(ctx context.Context, id string) error { return nil }}
		p := New(api, zerolog.Nop())
		defer p.Close(context.Background())

		ch, _ := p.DeletePolygon("abc").Stream()
		assert.True(t, <-ch)
	})
}

func TestAwait(t *testing.T) {
	notFound := errors.New("Resource not found")
	api := &stubAPI{
		getPolygon: func(ctx context.Context, id string) (*agro.Polygon, error) {
			return nil, notFound
		},
		fetchPalette: func(ctx context.Context, imageURL string, paletteID int) ([]byte, error) {
			assert.Equal(t, 4, paletteID)
			return []byte("png"), nil
		},
	}
	p := New(api, zerolog.Nop())
	defer p.Close(context.Background())

	_, err := p.GetPolygon("abc").Await(context.Background())
	assert.ErrorIs(t, err, notFound)

	data, err := p.GetPNG("https://example.com/image.png?appid=k", 4).Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
	assert.Equal(t, 0, p.Pending())
}

func TestHandleCancel(t *testing.T) {
	started := make(chan struct{}, 1)
	api := &stubAPI{getPolygon: blockUntilCancelled(started)}
	p := New(api, zerolog.Nop())
	defer p.Close(context.Background())

	var calls atomic.Int32
	ch, _ := p.GetPolygon("x").Stream()
	h := p.GetPolygon("abc").Then(func(*agro.Polygon) {
		calls.Add(1)
	})
	assert.Equal(t, 2, p.Pending())
	assert.NotEmpty(t, h.ID())

	<-started
	assert.True(t, h.Cancel())
	assert.False(t, h.Cancel())
	assert.Equal(t, 1, p.Pending())

	assert.Never(t, func() bool { return calls.Load() > 0 }, 100*time.Millisecond, 10*time.Millisecond)

	p.CancelAll()
	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, p.Pending())
}

func TestCancelAllStopsConcurrentRequests(t *testing.T) {
	const n = 10

	var arrived atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		arrived.Add(1)
		select {
		case <-r.Context().Done():
		case <-release:
		}
		w.Write([]byte(`{"id": "late"}`))
	}))
	defer server.Close()
	defer close(release)

	client, err := agro.NewClient("test-key", zerolog.Nop(), agro.WithBaseURL(server.URL))
	require.NoError(t, err)

	p := New(client, zerolog.Nop())
	defer p.Close(context.Background())

	var completions atomic.Int32
	for i := 0; i < n; i++ {
		p.GetPolygon("abc").Then(func(*agro.Polygon) {
			completions.Add(1)
		})
	}
	assert.Equal(t, n, p.Pending())

	require.Eventually(t, func() bool { return arrived.Load() == n }, 5*time.Second, 10*time.Millisecond)

	p.CancelAll()
	assert.Equal(t, 0, p.Pending())
	assert.Never(t, func() bool { return completions.Load() > 0 }, 200*time.Millisecond, 10*time.Millisecond)
}

func TestPendingClearsOnCompletion(t *testing.T) {
	api := &stubAPI{listPolygons: func(ctx context.Context) ([]agro.Polygon, error) {
		return []agro.Polygon{}, nil
	}}
	p := New(api, zerolog.Nop())
	defer p.Close(context.Background())

	for i := 0; i < 5; i++ {
		p.ListPolygons().Then(func([]agro.Polygon) {})
	}
	assert.Eventually(t, func() bool { return p.Pending() == 0 }, time.Second, 10*time.Millisecond)
}

func TestCloseDeliversInlineAfterwards(t *testing.T) {
	api := &stubAPI{listPolygons: func(ctx context.Context) ([]agro.Polygon, error) {
		return []agro.Polygon{{ID: "a"}}, nil
	}}
	p := New(api, zerolog.Nop())
	require.NoError(t, p.Close(context.Background()))

	ch, _ := p.ListPolygons().Stream()
	select {
	case v := <-ch:
		assert.Len(t, v, 1)
	case <-time.After(time.Second):
		t.Fatal("stream not delivered after Close")
	}
}

func TestCloseFromCallback(t *testing.T) {
	api := &stubAPI{listPolygons: func(ctx context.Context) ([]agro.Polygon, error) {
		return []agro.Polygon{{ID: "a"}}, nil
	}}
	p := New(api, zerolog.Nop())

	closed := make(chan error, 1)
	p.ListPolygons().Then(func([]agro.Polygon) {
		closed <- p.Close(context.Background())
	})

	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Close called from a callback did not return")
	}

	assert.ErrorIs(t, p.queue.Dispatch(func() {}), ErrDispatcherStopped)

	// once the callback has returned the queue drains and Close waits normally
	assert.NoError(t, p.Close(context.Background()))
}
