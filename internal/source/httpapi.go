package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ISWebster1401/PlantCare--sub000/internal/telemetry"
)

// APIClient reads the device registry and per-device readings from the
// remote PlantCare API. It serves as both the DeviceRegistry and the
// ReadingSource of the aggregation engine.
type APIClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewAPIClient creates a client for the remote API. token may be empty
// when the API is unauthenticated.
func NewAPIClient(baseURL, token string, timeout time.Duration) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// Devices fetches the device registry
func (c *APIClient) Devices(ctx context.Context) (telemetry.DeviceList, error) {
	var list telemetry.DeviceList
	if err := c.getJSON(ctx, "/devices", &list); err != nil {
		return telemetry.DeviceList{}, err
	}
	return list, nil
}

// Readings fetches one device's readings, newest first, capped by limit
func (c *APIClient) Readings(ctx context.Context, deviceIdentifier string, limit int) ([]telemetry.Reading, error) {
	path := fmt.Sprintf("/devices/%s/readings?limit=%d", url.PathEscape(deviceIdentifier), limit)

	var readings []telemetry.Reading
	if err := c.getJSON(ctx, path, &readings); err != nil {
		return nil, err
	}
	return readings, nil
}

func (c *APIClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
