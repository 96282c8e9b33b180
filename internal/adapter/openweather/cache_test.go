package openweather

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashleyalmeida07/SolarizeIt/internal/domain"
	"github.com/ashleyalmeida07/SolarizeIt/internal/observability"
)

// --- mock for cache tests ---

type countingProvider struct {
	calls   atomic.Int32
	reading domain.WeatherReading
	err     error
	release chan struct{} // when set, calls block until closed
}

func (p *countingProvider) CurrentWeather(_ context.Context, _, _ float64) (domain.WeatherReading, error) {
	p.calls.Add(1)
	if p.release != nil {
		<-p.release
	}
	return p.reading, p.err
}

func newTestCache(inner domain.WeatherProvider, size int, clk clockwork.Clock) *CachedProvider {
	return newCachedProvider(inner, size, 10*time.Minute, observability.NewMetricsForTesting(), clk)
}

// --- CachedProvider tests ---

func TestCachedProvider_Hit(t *testing.T) {
	inner := &countingProvider{reading: domain.WeatherReading{AverageSunHours: 5.1, TemperatureCelsius: 30}}
	cached := newTestCache(inner, 10, clockwork.NewFakeClock())

	r1, err := cached.CurrentWeather(context.Background(), 19.0761, 72.8781)
	require.NoError(t, err)
	r2, err := cached.CurrentWeather(context.Background(), 19.0759, 72.8779)
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
	assert.Equal(t, int32(1), inner.calls.Load(), "nearby coordinates should share an entry")
}

func TestCachedProvider_DifferentCoordinates(t *testing.T) {
	inner := &countingProvider{}
	cached := newTestCache(inner, 10, clockwork.NewFakeClock())

	_, _ = cached.CurrentWeather(context.Background(), 19.07, 72.87)
	_, _ = cached.CurrentWeather(context.Background(), 12.97, 77.59)

	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCachedProvider_Expiry(t *testing.T) {
	clk := clockwork.NewFakeClock()
	inner := &countingProvider{}
	cached := newTestCache(inner, 10, clk)

	_, _ = cached.CurrentWeather(context.Background(), 28.61, 77.20)
	clk.Advance(9 * time.Minute)
	_, _ = cached.CurrentWeather(context.Background(), 28.61, 77.20)
	assert.Equal(t, int32(1), inner.calls.Load())

	clk.Advance(time.Minute)
	_, _ = cached.CurrentWeather(context.Background(), 28.61, 77.20)
	assert.Equal(t, int32(2), inner.calls.Load(), "entry should expire at the TTL")
}

func TestCachedProvider_ErrorsNotCached(t *testing.T) {
	inner := &countingProvider{err: errors.New("boom")}
	cached := newTestCache(inner, 10, clockwork.NewFakeClock())

	_, err := cached.CurrentWeather(context.Background(), 19.07, 72.87)
	require.Error(t, err)
	_, err = cached.CurrentWeather(context.Background(), 19.07, 72.87)
	require.Error(t, err)

	assert.Equal(t, int32(2), inner.calls.Load())
	assert.Equal(t, 0, cached.cache.len())
}

func TestCachedProvider_Eviction(t *testing.T) {
	inner := &countingProvider{}
	cached := newTestCache(inner, 2, clockwork.NewFakeClock())
	ctx := context.Background()

	_, _ = cached.CurrentWeather(ctx, 1, 1)
	_, _ = cached.CurrentWeather(ctx, 2, 2)
	_, _ = cached.CurrentWeather(ctx, 1, 1) // touch 1 so 2 is least recently used
	_, _ = cached.CurrentWeather(ctx, 3, 3) // evicts 2
	assert.Equal(t, int32(3), inner.calls.Load())

	_, _ = cached.CurrentWeather(ctx, 1, 1)
	assert.Equal(t, int32(3), inner.calls.Load(), "1 should still be cached")

	_, _ = cached.CurrentWeather(ctx, 2, 2)
	assert.Equal(t, int32(4), inner.calls.Load(), "2 should have been evicted")
	assert.Equal(t, 2, cached.cache.len())
}

func TestCachedProvider_CollapsesConcurrentMisses(t *testing.T) {
	inner := &countingProvider{release: make(chan struct{})}
	cached := newTestCache(inner, 10, clockwork.NewFakeClock())

	const callers = 8
	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)
	for range callers {
		go func() {
			defer done.Done()
			started.Done()
			_, err := cached.CurrentWeather(context.Background(), 22.57, 88.36)
			assert.NoError(t, err)
		}()
	}
	started.Wait()
	// Give the goroutines a moment to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(inner.release)
	done.Wait()

	assert.LessOrEqual(t, inner.calls.Load(), int32(callers))
	assert.GreaterOrEqual(t, inner.calls.Load(), int32(1))
	assert.Equal(t, 1, cached.cache.len())
}

// ctxProvider blocks until released or until the context it was called with ends.
type ctxProvider struct {
	calls   atomic.Int32
	reading domain.WeatherReading
	release chan struct{}
}

func (p *ctxProvider) CurrentWeather(ctx context.Context, _, _ float64) (domain.WeatherReading, error) {
	p.calls.Add(1)
	select {
	case <-p.release:
		return p.reading, nil
	case <-ctx.Done():
		return domain.WeatherReading{}, ctx.Err()
	}
}

func TestCachedProvider_CancelledCallerDoesNotFailOthers(t *testing.T) {
	inner := &ctxProvider{
		reading: domain.WeatherReading{AverageSunHours: 6.1, TemperatureCelsius: 31},
		release: make(chan struct{}),
	}
	cached := newTestCache(inner, 10, clockwork.NewFakeClock())

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cached.CurrentWeather(firstCtx, 28.61, 77.21)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return inner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	type result struct {
		reading domain.WeatherReading
		err     error
	}
	second := make(chan result, 1)
	go func() {
		r, err := cached.CurrentWeather(context.Background(), 28.61, 77.21)
		second <- result{r, err}
	}()
	// Give the second caller a moment to join the in-flight call.
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(inner.release)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, inner.reading, got.reading)
	assert.Equal(t, int32(1), inner.calls.Load())
	assert.Equal(t, 1, cached.cache.len())
}

func TestCachedProvider_CallerContextEnds(t *testing.T) {
	inner := &ctxProvider{release: make(chan struct{})}
	defer close(inner.release)
	cached := newTestCache(inner, 10, clockwork.NewFakeClock())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := cached.CurrentWeather(ctx, 13.08, 80.27)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "19.08,72.88", cacheKey(19.076, 72.8777))
	assert.Equal(t, "0.00,0.00", cacheKey(-0.001, 0.004))
	assert.Equal(t, "-33.87,151.21", cacheKey(-33.8688, 151.2093))
}
