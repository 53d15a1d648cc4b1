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

package promote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PelleWhitebear/gamelake/internal/objstore"
)

const landingBucket = "landing-zone"

var fixedNow = time.Date(2025, 4, 27, 18, 41, 0, 0, time.UTC)

func newTestMaterializer(store objstore.Client) *Materializer {
	m := NewMaterializer(store, landingBucket)
	m.now = func() time.Time { return fixedNow }
	return m
}

func TestRunPromotesStagedArtifacts(t *testing.T) {
	store := objstore.NewFileClient(t.TempDir())
	ctx := t.Context()

	require.NoError(t, store.PutObject(ctx, landingBucket, "temporal_landing/steam_games.json", []byte("{}")))
	require.NoError(t, store.PutObject(ctx, landingBucket, "temporal_landing/steam_games.bak", []byte("{}")))
	require.NoError(t, store.PutObject(ctx, landingBucket, "temporal_landing/620_1.jpg", []byte("img")))
	require.NoError(t, store.PutObject(ctx, landingBucket, "temporal_landing/620_1.mp4", []byte("vid")))

	require.NoError(t, newTestMaterializer(store).Run(ctx))

	for _, key := range []string{
		"persistent_landing/json/steam/steam#20250427_184100#games.json",
		"persistent_landing/media/images/20250427_184100#620#1.jpg",
		"persistent_landing/media/videos/20250427_184100#620#1.mp4",
	} {
		_, notFound, err := store.GetObject(ctx, landingBucket, key)
		require.NoError(t, err, key)
		assert.False(t, notFound, "expected %s to exist", key)
	}

	// Staging is empty afterwards, checkpoint markers included.
	objs, err := store.ListObjects(ctx, landingBucket, "temporal_landing/")
	require.NoError(t, err)
	assert.Empty(t, objs)
}

func TestRunSkipsMalformedNames(t *testing.T) {
	store := objstore.NewFileClient(t.TempDir())
	ctx := t.Context()

	require.NoError(t, store.PutObject(ctx, landingBucket, "temporal_landing/notes.txt", []byte("junk")))
	require.NoError(t, store.PutObject(ctx, landingBucket, "temporal_landing/620_1.jpg", []byte("img")))

	require.NoError(t, newTestMaterializer(store).Run(ctx))

	// The malformed artifact is left in place, the valid one is promoted.
	_, notFound, err := store.GetObject(ctx, landingBucket, "temporal_landing/notes.txt")
	require.NoError(t, err)
	assert.False(t, notFound)

	_, notFound, err = store.GetObject(ctx, landingBucket, "temporal_landing/620_1.jpg")
	require.NoError(t, err)
	assert.True(t, notFound)
}

func TestRunEmptyStaging(t *testing.T) {
	store := objstore.NewFileClient(t.TempDir())
	assert.NoError(t, newTestMaterializer(store).Run(t.Context()))
}

func TestRunTwiceCreatesDistinctVersions(t *testing.T) {
	store := objstore.NewFileClient(t.TempDir())
	ctx := t.Context()

	m := NewMaterializer(store, landingBucket)
	times := []time.Time{fixedNow, fixedNow.Add(time.Hour)}
	m.now = func() time.Time {
		ts := times[0]
		if len(times) > 1 {
			times = times[1:]
		}
		return ts
	}

	require.NoError(t, store.PutObject(ctx, landingBucket, "temporal_landing/steam_games.json", []byte("v1")))
	require.NoError(t, m.Run(ctx))
	require.NoError(t, store.PutObject(ctx, landingBucket, "temporal_landing/steam_games.json", []byte("v2")))
	require.NoError(t, m.Run(ctx))

	objs, err := store.ListObjects(ctx, landingBucket, "persistent_landing/json/steam/")
	require.NoError(t, err)
	assert.Len(t, objs, 2, "each promotion run versions independently")
}
