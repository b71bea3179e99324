package waterapi

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

	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
	"github.com/couchcryptid/floodwatch-map-service/internal/observability"
)

// Client fetches station snapshots and histories from the water-level API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a water API client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FetchStationSnapshot returns every station with its latest reading.
func (c *Client) FetchStationSnapshot(ctx context.Context) (domain.Snapshot, error) {
	const op = "fetch station snapshot"

	var resp markersResponse
	if err := c.get(ctx, "snapshot", c.baseURL+"/markers", &resp); err != nil {
		return domain.Snapshot{}, &domain.DataFetchError{Op: op, Err: err}
	}

	snap, skipped := resp.toSnapshot(domain.Now())
	if skipped > 0 {
		c.logger.Warn("skipped markers without station or location id", "count", skipped)
	}
	return snap, nil
}

// FetchStationHistory returns the readings for one station. Legacy
// location-keyed refs are sent as location_id.
func (c *Client) FetchStationHistory(ctx context.Context, ref domain.StationRef) (domain.StationHistory, error) {
	op := "fetch station history " + ref.String()
	if ref.IsZero() {
		return domain.StationHistory{}, &domain.DataFetchError{Op: op, Err: domain.ErrInvalidStationRef}
	}

	key := "station_id"
	if ref.Deprecated() {
		key = "location_id"
		c.logger.Warn("fetching history by legacy location id", "station_ref", ref.String())
	}
	params := url.Values{key: {strconv.FormatInt(ref.ID, 10)}}

	var resp detailResponse
	if err := c.get(ctx, "history", c.baseURL+"/markers/detail?"+params.Encode(), &resp); err != nil {
		return domain.StationHistory{}, &domain.DataFetchError{Op: op, Err: err}
	}

	h := domain.StationHistory{
		Ref:       ref,
		Threshold: resp.Markers.BankLevel,
		Readings:  make([]domain.Reading, 0, len(resp.Markers.Detail)),
	}
	for _, d := range resp.Markers.Detail {
		h.Readings = append(h.Readings, d.toReading())
	}
	return h, nil
}

func (c *Client) get(ctx context.Context, kind, fullURL string, out any) error {
	start := time.Now()
	defer func() {
		c.metrics.FetchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("water API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
