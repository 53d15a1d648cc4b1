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

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "landing-zone", cfg.Zones.LandingBucket)
	assert.Equal(t, "formatted-zone", cfg.Zones.FormattedBucket)
	assert.Equal(t, "trusted_zone", cfg.Zones.TrustedBucket)
	assert.Equal(t, 3, cfg.Ingest.MaxRetries)
	assert.Equal(t, 10, cfg.Ingest.CheckpointEvery)
	assert.Equal(t, 2*time.Second, cfg.Ingest.PollInterval)
	assert.Equal(t, "steam_games.json", cfg.Ingest.SteamOutput)
	assert.Equal(t, 256, cfg.Media.ImageSize)
	assert.Equal(t, 1280, cfg.Media.VideoWidth)
	assert.Equal(t, 720, cfg.Media.VideoHeight)
	assert.Equal(t, 30, cfg.Media.VideoFPS)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GAMELAKE_ZONES_LANDING_BUCKET", "other-landing")
	t.Setenv("GAMELAKE_STORE_ENDPOINT", "http://minio:9000")
	t.Setenv("GAMELAKE_INGEST_MAX_RETRIES", "7")
	t.Setenv("GAMELAKE_INGEST_APP_IDS", "620,730")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "other-landing", cfg.Zones.LandingBucket)
	assert.Equal(t, "http://minio:9000", cfg.Store.Endpoint)
	assert.Equal(t, 7, cfg.Ingest.MaxRetries)
	assert.Equal(t, []string{"620", "730"}, cfg.Ingest.AppIDs)
	// Untouched keys keep their defaults.
	assert.Equal(t, "trusted_zone", cfg.Zones.TrustedBucket)
}

func TestLoadWithoutEnvMatchesDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Zones, cfg.Zones)
	assert.Equal(t, Default().Media, cfg.Media)
}
