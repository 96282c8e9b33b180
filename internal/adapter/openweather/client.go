package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ashleyalmeida07/SolarizeIt/internal/domain"
	"github.com/ashleyalmeida07/SolarizeIt/internal/observability"
)

// DefaultBaseURL is the public OpenWeather API host.
const DefaultBaseURL = "https://api.openweathermap.org"

// maxErrorBody bounds how much of a failed response is kept for the error message.
const maxErrorBody = 4 << 10

// Client implements domain.WeatherProvider using the OpenWeather current
// weather endpoint.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenWeather client. An empty baseURL uses DefaultBaseURL.
func NewClient(apiKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		metrics:    metrics,
		logger:     logger,
	}
}

// CurrentWeather fetches current conditions at lat/lon and derives usable sun
// hours from the cloud cover.
func (c *Client) CurrentWeather(ctx context.Context, lat, lon float64) (domain.WeatherReading, error) {
	params := url.Values{
		"lat":   {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(lon, 'f', -1, 64)},
		"appid": {c.apiKey},
		"units": {"metric"},
	}
	u := c.baseURL + "/data/2.5/weather?" + params.Encode()

	start := time.Now()
	reading, err := c.doRequest(ctx, u)
	c.metrics.WeatherAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		c.logger.Warn("weather request failed", "lat", lat, "lon", lon, "error", err)
		return domain.WeatherReading{}, err
	}
	c.metrics.WeatherRequests.WithLabelValues("success").Inc()
	c.logger.Debug("weather fetched",
		"lat", lat, "lon", lon,
		"cloud_coverage", reading.CloudCoveragePercent,
		"sun_hours", reading.AverageSunHours,
	)
	return reading, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.WeatherReading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.WeatherReading{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WeatherReading{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.WeatherReading{}, fmt.Errorf("openweather API error: status %d: %s", resp.StatusCode, body)
	}

	var owResp response
	if err := json.NewDecoder(resp.Body).Decode(&owResp); err != nil {
		return domain.WeatherReading{}, fmt.Errorf("decode response: %w", err)
	}
	if owResp.Main == nil {
		return domain.WeatherReading{}, fmt.Errorf("openweather response has no main block")
	}

	return owResp.reading(), nil
}

// OpenWeather API response types.

type response struct {
	Main    *mainBlock  `json:"main"`
	Clouds  cloudsBlock `json:"clouds"`
	Weather []condition `json:"weather"`
	Wind    windBlock   `json:"wind"`
}

type mainBlock struct {
	Temp     float64 `json:"temp"`     // °C with units=metric
	Humidity float64 `json:"humidity"` // %
}

type cloudsBlock struct {
	All float64 `json:"all"` // %
}

type condition struct {
	Description string `json:"description"`
}

type windBlock struct {
	Speed float64 `json:"speed"` // m/s
}

func (r response) reading() domain.WeatherReading {
	desc := ""
	if len(r.Weather) > 0 {
		desc = r.Weather[0].Description
	}
	return domain.WeatherReading{
		AverageSunHours:      domain.DeriveSunHours(r.Clouds.All),
		CloudCoveragePercent: r.Clouds.All,
		TemperatureCelsius:   r.Main.Temp,
		HumidityPercent:      r.Main.Humidity,
		ConditionDescription: desc,
		WindSpeed:            r.Wind.Speed,
	}
}
