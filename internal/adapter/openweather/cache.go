package openweather

import (
	"container/list"
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/ashleyalmeida07/SolarizeIt/internal/domain"
	"github.com/ashleyalmeida07/SolarizeIt/internal/observability"
)

// sharedFetchTimeout bounds an upstream call that outlives the caller that
// started it.
const sharedFetchTimeout = 30 * time.Second

// CachedProvider wraps a WeatherProvider with an in-memory LRU cache whose
// entries expire after a TTL. Coordinates are rounded to 2 decimals (about
// 1 km) so nearby properties share a reading. Concurrent misses for the same
// key result in a single upstream call.
type CachedProvider struct {
	inner   domain.WeatherProvider
	cache   *ttlCache
	group   singleflight.Group
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a weather provider.
func NewCachedProvider(inner domain.WeatherProvider, maxEntries int, ttl time.Duration, metrics *observability.Metrics) *CachedProvider {
	return newCachedProvider(inner, maxEntries, ttl, metrics, clockwork.NewRealClock())
}

func newCachedProvider(inner domain.WeatherProvider, maxEntries int, ttl time.Duration, metrics *observability.Metrics, clk clockwork.Clock) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   newTTLCache(maxEntries, ttl, clk),
		metrics: metrics,
	}
}

func (c *CachedProvider) CurrentWeather(ctx context.Context, lat, lon float64) (domain.WeatherReading, error) {
	key := cacheKey(lat, lon)
	if reading, ok := c.cache.get(key); ok {
		c.metrics.WeatherCache.WithLabelValues("hit").Inc()
		return reading, nil
	}

	// The upstream call is shared by every caller waiting on key, so it must
	// not inherit one caller's cancellation. Each caller still stops waiting
	// when its own context ends.
	ch := c.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()

		reading, err := c.inner.CurrentWeather(fetchCtx, lat, lon)
		if err != nil {
			return domain.WeatherReading{}, err
		}
		c.cache.put(key, reading)
		return reading, nil
	})

	select {
	case <-ctx.Done():
		return domain.WeatherReading{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.metrics.WeatherCache.WithLabelValues("shared").Inc()
		} else {
			c.metrics.WeatherCache.WithLabelValues("miss").Inc()
		}
		if res.Err != nil {
			return domain.WeatherReading{}, res.Err
		}
		return res.Val.(domain.WeatherReading), nil
	}
}

func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.2f,%.2f", roundCoord(lat), roundCoord(lon))
}

// roundCoord avoids "-0.00" keys for values just below zero.
func roundCoord(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0
	}
	return r
}

type ttlCache struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock

	mu      sync.Mutex
	order   *list.List // front is most recently used
	entries map[string]*list.Element
}

type cacheEntry struct {
	key       string
	value     domain.WeatherReading
	expiresAt time.Time
}

func newTTLCache(maxEntries int, ttl time.Duration, clk clockwork.Clock) *ttlCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &ttlCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clk,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

func (c *ttlCache) get(key string) (domain.WeatherReading, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return domain.WeatherReading{}, false
	}
	e := el.Value.(*cacheEntry)
	if !c.clock.Now().Before(e.expiresAt) {
		c.order.Remove(el)
		delete(c.entries, key)
		return domain.WeatherReading{}, false
	}
	c.order.MoveToFront(el)
	return e.value, true
}

func (c *ttlCache) put(key string, value domain.WeatherReading) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.clock.Now().Add(c.ttl)
	if el, ok := c.entries[key]; ok {
		e := el.Value.(*cacheEntry)
		e.value = value
		e.expiresAt = expiresAt
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, value: value, expiresAt: expiresAt})
	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *ttlCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
