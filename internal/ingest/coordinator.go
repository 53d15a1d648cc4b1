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

// Package ingest pulls catalog records and media from the external APIs
// into the temporal staging area of the landing bucket. Failures are
// contained per item; only a run that produces nothing at all is a hard
// stage failure.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PelleWhitebear/gamelake/config"
	"github.com/PelleWhitebear/gamelake/internal/logctx"
	"github.com/PelleWhitebear/gamelake/internal/objstore"
	"github.com/PelleWhitebear/gamelake/internal/records"
	"github.com/PelleWhitebear/gamelake/internal/zonekey"
)

// Coordinator drives one ingestion run for the configured sources.
type Coordinator struct {
	store         objstore.Client
	landingBucket string
	steam         *SteamClient
	cfg           config.IngestConfig
	media         config.MediaConfig
}

// NewCoordinator wires an ingestion run against the landing bucket.
func NewCoordinator(store objstore.Client, landingBucket string, cfg config.IngestConfig, media config.MediaConfig) *Coordinator {
	return &Coordinator{
		store:         store,
		landingBucket: landingBucket,
		steam: NewSteamClient(cfg.SteamBaseURL, cfg.SteamSpyBaseURL, cfg.Currency, cfg.Language,
			cfg.MaxRetries, cfg.PollInterval, cfg.RequestTimeout),
		cfg:   cfg,
		media: media,
	}
}

// IngestGames fetches every configured app ID from Steam and SteamSpy and
// accumulates the two record sets in staging. Items that exhaust their
// retries or are filtered by the source are logged and skipped; every
// CheckpointEvery accepted items a snapshot is written so a crash loses at
// most one checkpoint window of progress.
func (c *Coordinator) IngestGames(ctx context.Context) error {
	ll := logctx.FromContext(ctx)

	steamSet := records.Set{}
	spySet := records.Set{}
	added := 0
	discarded := 0

	for _, appID := range c.cfg.AppIDs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		app, err := c.steam.AppDetails(ctx, appID)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			ll.Warn("App fetch failed, skipping", "app_id", appID, "error", err)
			discarded++
			continue
		}
		if app == nil {
			ll.Warn("App discarded by source filter", "app_id", appID)
			discarded++
			continue
		}

		game := ParseSteamGame(app)
		extra, err := c.steam.SpyDetails(ctx, appID)
		if err != nil {
			ll.Warn("SteamSpy fetch failed, using zero aggregates", "app_id", appID, "error", err)
			extra = nil
		}

		steamSet[appID] = game
		spySet[appID] = ParseSpyGame(extra)
		added++
		ll.Info("App added", "app_id", appID, "name", game["name"])

		if c.cfg.CheckpointEvery > 0 && added%c.cfg.CheckpointEvery == 0 {
			if err := c.checkpoint(ctx, steamSet, spySet); err != nil {
				ll.Warn("Checkpoint upload failed", "error", err)
			}
		}

		c.pace(ctx)
	}

	if added == 0 && len(c.cfg.AppIDs) > 0 {
		return fmt.Errorf("ingested 0 of %d apps: %w", len(c.cfg.AppIDs), ErrRetriesExhausted)
	}

	if err := c.uploadRecordSet(ctx, steamSet, c.cfg.SteamOutput, false); err != nil {
		return err
	}
	if err := c.uploadRecordSet(ctx, spySet, c.cfg.SteamSpyOutput, false); err != nil {
		return err
	}
	ll.Info("Ingestion completed", "added", added, "discarded", discarded)
	return nil
}

// pace waits the configured interval between external requests.
func (c *Coordinator) pace(ctx context.Context) {
	if c.cfg.PollInterval <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(c.cfg.PollInterval):
	}
}

func (c *Coordinator) checkpoint(ctx context.Context, steamSet, spySet records.Set) error {
	if err := c.uploadRecordSet(ctx, steamSet, c.cfg.SteamOutput, true); err != nil {
		return err
	}
	return c.uploadRecordSet(ctx, spySet, c.cfg.SteamSpyOutput, true)
}

// uploadRecordSet writes a record set to its staging key. Checkpoint
// snapshots go to the .bak marker and always replace the previous one;
// final artifacts that already exist are left alone so an earlier
// completed run is never clobbered.
func (c *Coordinator) uploadRecordSet(ctx context.Context, set records.Set, outputName string, backup bool) error {
	ll := logctx.FromContext(ctx)

	key := zonekey.TemporalPrefix + "/" + outputName
	if backup {
		key = zonekey.BackupKey(key)
	}

	body, err := records.MarshalCanonical(set)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", outputName, err)
	}

	if !backup {
		exists, err := c.stagingExists(ctx, key)
		if err != nil {
			return err
		}
		if exists {
			ll.Info("Skipping already uploaded staging artifact", "key", key)
			return nil
		}
	}

	if err := c.store.PutObject(ctx, c.landingBucket, key, body); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	ll.Info("Uploaded staging artifact", "key", key, "records", len(set))
	return nil
}

func (c *Coordinator) stagingExists(ctx context.Context, key string) (bool, error) {
	objs, err := c.store.ListObjects(ctx, c.landingBucket, key)
	if err != nil {
		return false, fmt.Errorf("check staging %s: %w", key, err)
	}
	for _, obj := range objs {
		if obj.Key == key {
			return true, nil
		}
	}
	return false, nil
}
