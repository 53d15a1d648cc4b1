// Copyright (C) 2025 GameLake Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jpillora/backoff"

	"github.com/PelleWhitebear/gamelake/internal/logctx"
	"github.com/PelleWhitebear/gamelake/internal/records"
)

// maxBackoff caps the retry wait for a flapping endpoint.
const maxBackoff = 500 * time.Second

// SteamClient talks to the Steam store and SteamSpy APIs with polite
// pacing and bounded retries.
type SteamClient struct {
	httpc        *http.Client
	baseURL      string
	spyBaseURL   string
	currency     string
	language     string
	maxRetries   int
	pollInterval time.Duration
}

// NewSteamClient builds a client. requestTimeout bounds each individual
// request; pollInterval seeds the retry backoff.
func NewSteamClient(baseURL, spyBaseURL, currency, language string, maxRetries int, pollInterval, requestTimeout time.Duration) *SteamClient {
	return &SteamClient{
		httpc:        &http.Client{Timeout: requestTimeout},
		baseURL:      baseURL,
		spyBaseURL:   spyBaseURL,
		currency:     currency,
		language:     language,
		maxRetries:   maxRetries,
		pollInterval: pollInterval,
	}
}

// retryable reports whether a response status is worth retrying: rate
// limits and server-side errors are transient, other non-200s are not.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// doRequest fetches rawURL with params, retrying transient failures with
// exponential backoff up to the retry cap. Exhaustion wraps
// ErrRetriesExhausted.
func (c *SteamClient) doRequest(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	ll := logctx.FromContext(ctx)
	u := rawURL
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	wait := &backoff.Backoff{Min: c.pollInterval, Max: maxBackoff, Factor: 2}
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			d := wait.Duration()
			ll.Warn("Request failed, retrying",
				"url", rawURL, "attempt", attempt, "wait", d.String(), "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(d):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("build request for %s: %w", rawURL, err)
		}
		resp, err := c.httpc.Do(req)
		if err != nil {
			// Transport errors and timeouts are transient.
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			if retryable(resp.StatusCode) {
				lastErr = fmt.Errorf("status %s", resp.Status)
				continue
			}
			return nil, fmt.Errorf("fetch %s: unexpected status %s", rawURL, resp.Status)
		}
		return body, nil
	}
	return nil, fmt.Errorf("fetch %s after %d retries (%v): %w", rawURL, c.maxRetries, lastErr, ErrRetriesExhausted)
}

// AppDetails fetches and filters one app from the Steam store API. A nil
// record with nil error means the app exists but is not an ingestible game
// (delisted, non-game type, unpriced, or developer-less).
func (c *SteamClient) AppDetails(ctx context.Context, appID string) (records.Record, error) {
	params := url.Values{}
	params.Set("appids", appID)
	params.Set("cc", c.currency)
	params.Set("l", c.language)

	body, err := c.doRequest(ctx, c.baseURL+"/api/appdetails/", params)
	if err != nil {
		return nil, err
	}

	var payload map[string]struct {
		Success bool           `json:"success"`
		Data    records.Record `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode appdetails for %s: %w", appID, err)
	}
	app, ok := payload[appID]
	if !ok || !app.Success {
		return nil, nil
	}
	data := app.Data
	if getString(data, "type") != "game" {
		return nil, nil
	}
	if !getBool(data, "is_free") {
		if po := getMap(data, "price_overview"); po != nil && getString(po, "final_formatted") == "" {
			return nil, nil
		}
	}
	if devs, ok := data["developers"].([]any); ok && len(devs) == 0 {
		return nil, nil
	}
	return data, nil
}

// SpyDetails fetches SteamSpy aggregates for one app. A nil record with
// nil error means SteamSpy has no usable entry.
func (c *SteamClient) SpyDetails(ctx context.Context, appID string) (records.Record, error) {
	body, err := c.doRequest(ctx, c.spyBaseURL+"/api.php?request=appdetails&appid="+url.QueryEscape(appID), nil)
	if err != nil {
		return nil, err
	}
	var data records.Record
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode steamspy for %s: %w", appID, err)
	}
	if getString(data, "developer") == "" {
		return nil, nil
	}
	return data, nil
}
