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
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL, spyBaseURL string, maxRetries int) *SteamClient {
	return NewSteamClient(baseURL, spyBaseURL, "us", "english",
		maxRetries, time.Millisecond, time.Second)
}

func TestAppDetailsRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"620":{"success":true,"data":{"type":"game","name":"Portal 2","is_free":false,"price_overview":{"final_formatted":"$9.99"},"developers":["Valve"]}}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL, 3)
	data, err := c.AppDetails(t.Context(), "620")
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, "Portal 2", data["name"])
	assert.Equal(t, int32(3), calls.Load())
}

func TestAppDetailsExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL, 3)
	_, err := c.AppDetails(t.Context(), "620")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRetriesExhausted))
	// maxRetries retries on top of the initial attempt.
	assert.Equal(t, int32(4), calls.Load())
}

func TestAppDetailsNonRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL, 3)
	_, err := c.AppDetails(t.Context(), "620")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRetriesExhausted))
	assert.Equal(t, int32(1), calls.Load())
}

func TestAppDetailsSourceFilters(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"delisted", `{"620":{"success":false}}`},
		{"non-game", `{"620":{"success":true,"data":{"type":"dlc","name":"Some DLC"}}}`},
		{"unpriced", `{"620":{"success":true,"data":{"type":"game","is_free":false,"price_overview":{"final_formatted":""},"developers":["Valve"]}}}`},
		{"no developers", `{"620":{"success":true,"data":{"type":"game","is_free":true,"developers":[]}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(srv.URL, srv.URL, 0)
			data, err := c.AppDetails(t.Context(), "620")
			require.NoError(t, err)
			assert.Nil(t, data, "entry should be discarded by the source filter")
		})
	}
}

func TestSpyDetailsFiltersDeveloperless(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"developer":"","positive":10}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL, 0)
	data, err := c.SpyDetails(t.Context(), "620")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestSpyDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.String(), "appid=620")
		_, _ = w.Write([]byte(`{"developer":"Valve","positive":10,"negative":1}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL, 0)
	data, err := c.SpyDetails(t.Context(), "620")
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, float64(10), data["positive"])
}
