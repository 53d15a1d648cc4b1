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
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jpillora/backoff"
	"golang.org/x/sync/errgroup"

	"github.com/PelleWhitebear/gamelake/internal/logctx"
	"github.com/PelleWhitebear/gamelake/internal/records"
	"github.com/PelleWhitebear/gamelake/internal/zonekey"
)

// mediaTask is one file to pull from the CDN into staging.
type mediaTask struct {
	url string
	key string
}

// IngestMedia reads the staged steam record set, extracts up to
// ScreenshotsPerGame screenshot URLs and the first trailer per game, and
// downloads them concurrently into staging. Per-file failures are logged
// and tolerated; only a missing record set fails the stage.
func (c *Coordinator) IngestMedia(ctx context.Context) error {
	ll := logctx.FromContext(ctx)

	key := zonekey.TemporalPrefix + "/" + c.cfg.SteamOutput
	body, notFound, err := c.store.GetObject(ctx, c.landingBucket, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if notFound {
		return fmt.Errorf("record set %s not found in staging; run game ingestion first", key)
	}
	games, err := records.UnmarshalSet(body)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}

	tasks := c.mediaTasks(ctx, games)
	ll.Info("Media extraction completed", "games", len(games), "files", len(tasks))

	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.media.Workers, 1))
	for _, task := range tasks {
		g.Go(func() error {
			if err := c.fetchAndStage(gctx, task); err != nil {
				failed.Add(1)
				ll.Warn("Media download failed, skipping", "url", task.url, "key", task.key, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	ll.Info("Media ingestion completed", "files", len(tasks), "failed", failed.Load())
	return nil
}

// mediaTasks flattens the record set into download tasks with
// deterministic staging keys.
func (c *Coordinator) mediaTasks(ctx context.Context, games records.Set) []mediaTask {
	ll := logctx.FromContext(ctx)

	gameIDs := make([]string, 0, len(games))
	for id := range games {
		gameIDs = append(gameIDs, id)
	}
	sort.Strings(gameIDs)

	var tasks []mediaTask
	for _, gameID := range gameIDs {
		info := games[gameID]

		screenshots := stringSlice(info["screenshots"])
		if len(screenshots) > c.media.ScreenshotsPerGame {
			screenshots = screenshots[:c.media.ScreenshotsPerGame]
		}
		if len(screenshots) != c.media.ScreenshotsPerGame {
			ll.Warn("Game has fewer screenshots than expected",
				"game_id", gameID, "count", len(screenshots), "expected", c.media.ScreenshotsPerGame)
		}
		for i, u := range screenshots {
			if u == "" {
				continue
			}
			tasks = append(tasks, mediaTask{
				url: u,
				key: zonekey.StagingMedia(gameID, i+1, urlExt(u)),
			})
		}

		movies := stringSlice(info["movies"])
		if len(movies) == 0 {
			ll.Warn("Game has no trailer", "game_id", gameID)
			continue
		}
		tasks = append(tasks, mediaTask{
			url: movies[0],
			key: zonekey.StagingMedia(gameID, 1, urlExt(movies[0])),
		})
	}
	return tasks
}

// fetchAndStage downloads one media file with exponential backoff and
// writes it to staging. Already-staged keys are skipped.
func (c *Coordinator) fetchAndStage(ctx context.Context, task mediaTask) error {
	ll := logctx.FromContext(ctx)

	exists, err := c.stagingExists(ctx, task.key)
	if err != nil {
		return err
	}
	if exists {
		ll.Info("Skipping already staged media file", "key", task.key)
		return nil
	}

	wait := &backoff.Backoff{Min: c.cfg.PollInterval, Max: maxBackoff, Factor: 2}
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait.Duration()):
			}
		}

		body, err := c.fetchOnce(ctx, task.url)
		if err != nil {
			lastErr = err
			continue
		}
		if len(body) == 0 {
			ll.Warn("Skipping empty response", "url", task.url)
			return nil
		}
		return c.store.PutObject(ctx, c.landingBucket, task.key, body)
	}
	return fmt.Errorf("download %s after %d retries (%v): %w", task.url, c.cfg.MaxRetries, lastErr, ErrRetriesExhausted)
}

func (c *Coordinator) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.steam.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// urlExt extracts the file extension from a CDN URL, dropping any query
// string.
func urlExt(u string) string {
	base := u[strings.LastIndex(u, "/")+1:]
	base, _, _ = strings.Cut(base, "?")
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[i+1:]
	}
	return ""
}

func stringSlice(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
