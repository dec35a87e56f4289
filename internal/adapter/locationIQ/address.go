package locationIQ

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Zubra14/verista-tracking/internal/domain/types"
	wrap "github.com/Zubra14/verista-tracking/pkg/logger/wrapper"
)

var baseURL = "https://us1.locationiq.com"

// Client resolves coordinates into a human readable address. Incident
// records carry the resolved address so school staff do not have to
// paste coordinates into a map.
type Client struct {
	apiKey string
	http   *http.Client
}

func New(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		http:   &http.Client{Timeout: 5 * time.Second},
	}
}

type addressPayload struct {
	Address string `json:"display_name"`
}

// GetAddress reverse-geocodes the given point. Callers treat failures as
// non-fatal, the address is a convenience and the coordinates remain the
// source of truth.
func (c *Client) GetAddress(ctx context.Context, longitude, latitude float64) (string, error) {
	const op = "locationIQ.GetAddress"

	url := fmt.Sprintf("%s/v1/reverse?key=%s&lat=%f&lon=%f&format=json", baseURL, c.apiKey, latitude, longitude)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return "", wrap.Error(ctx, fmt.Errorf("%s: request failed: %w", op, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return "", wrap.Error(ctx, fmt.Errorf("%s: unexpected response status %d", op, resp.StatusCode))
	}

	var payload addressPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", wrap.Error(ctx, fmt.Errorf("%s: decode response: %w", op, err))
	}

	return payload.Address, nil
}
