package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"weathercentral/internal/httputil"
	"weathercentral/internal/models"
)

const owmForecastURL = "https://api.openweathermap.org/data/2.5/forecast"

// Free-tier quota is 60 calls/minute; one call per second with a small burst
// keeps the station far inside it even when retries pile up.
var owmLimit = rate.Limit(1)

// FetchStats carries bookkeeping about one fetch attempt for the fetch-run log.
type FetchStats struct {
	HTTPStatus   int
	ResponseSize int
	SlotsParsed  int
}

// OpenWeather fetches the multi-slot forecast from the OpenWeatherMap
// 5-day/3-hour endpoint.
type OpenWeather struct {
	apiKey  string
	lat     float64
	lon     float64
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

func NewOpenWeather(apiKey string, lat, lon float64) *OpenWeather {
	return &OpenWeather{
		apiKey:  apiKey,
		lat:     lat,
		lon:     lon,
		client:  httputil.NewClient(0),
		limiter: rate.NewLimiter(owmLimit, 3),
		baseURL: owmForecastURL,
	}
}

type forecastResponse struct {
	List []forecastEntry `json:"list"`
}

type forecastEntry struct {
	Dt   int64 `json:"dt"`
	Main *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Rain *precipVolume `json:"rain"`
	Snow *precipVolume `json:"snow"`
}

// precipVolume is OpenWeatherMap's precipitation object; the field is named
// "3h" and is omitted entirely when no precipitation is forecast.
type precipVolume struct {
	ThreeHour *float64 `json:"3h"`
}

// Fetch retrieves and parses the forecast, keeping the first
// models.MaxForecastSlots slots in chronological order. Transient upstream
// failures (rate limiting, auth hiccups) are retried with exponential
// backoff; other failures are permanent for this attempt.
func (o *OpenWeather) Fetch(ctx context.Context) (*models.ForecastSet, FetchStats, error) {
	stats := FetchStats{}

	if err := o.limiter.Wait(ctx); err != nil {
		return nil, stats, fmt.Errorf("rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%.4f", o.lat))
	q.Set("lon", fmt.Sprintf("%.4f", o.lon))
	q.Set("units", "metric")
	q.Set("cnt", fmt.Sprintf("%d", models.MaxForecastSlots))
	q.Set("appid", o.apiKey)
	reqURL := o.baseURL + "?" + q.Encode()

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		resp, err := o.client.Do(req)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("fetch forecast: %w", err))
		}
		defer resp.Body.Close()

		stats.HTTPStatus = resp.StatusCode

		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("rate limited: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			stats.ResponseSize = len(b)
			return backoff.Permanent(fmt.Errorf("fetch forecast: status %d: %s", resp.StatusCode, truncateBody(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read body: %w", err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, stats, err
	}
	stats.ResponseSize = len(body)

	var data forecastResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, stats, fmt.Errorf("unmarshal: %w", err)
	}

	set := &models.ForecastSet{FetchedAt: time.Now().UTC()}
	for _, entry := range data.List {
		if len(set.Slots) >= models.MaxForecastSlots {
			break
		}
		set.Slots = append(set.Slots, parseSlot(entry))
	}
	stats.SlotsParsed = len(set.Slots)

	return set, stats, nil
}

func parseSlot(entry forecastEntry) models.ForecastSlot {
	slot := models.ForecastSlot{
		ValidAt: time.Unix(entry.Dt, 0).UTC(),
	}
	if entry.Main != nil && entry.Main.Temp != nil {
		slot.Temp = sql.NullFloat64{Float64: *entry.Main.Temp, Valid: true}
	}
	if entry.Rain != nil && entry.Rain.ThreeHour != nil {
		slot.Rain3h = sql.NullFloat64{Float64: *entry.Rain.ThreeHour, Valid: true}
	}
	if entry.Snow != nil && entry.Snow.ThreeHour != nil {
		slot.Snow3h = sql.NullFloat64{Float64: *entry.Snow.ThreeHour, Valid: true}
	}
	return slot
}

func truncateBody(b []byte) string {
	const max = 512
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "...(truncated)"
}
