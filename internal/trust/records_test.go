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

package trust

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PelleWhitebear/gamelake/internal/objstore"
	"github.com/PelleWhitebear/gamelake/internal/records"
	"github.com/PelleWhitebear/gamelake/internal/zonekey"
)

const (
	formattedBucket = "formatted-zone"
	trustedBucket   = "trusted_zone"
)

var (
	t1 = time.Date(2025, 4, 27, 18, 41, 0, 0, time.UTC)
	t2 = t1.Add(2 * time.Hour)
)

func putFormattedSet(t *testing.T, store objstore.Client, source string, ts time.Time, set records.Set) {
	t.Helper()
	body, err := records.MarshalCanonical(set)
	require.NoError(t, err)
	require.NoError(t, store.PutObject(t.Context(), formattedBucket,
		zonekey.CanonicalRecordSet(source, ts), body))
}

func TestProcessRecordsAcceptsValidSet(t *testing.T) {
	store := objstore.NewFileClient(t.TempDir())
	ctx := t.Context()
	putFormattedSet(t, store, "steam", t1, records.Set{"620": steamRecord()})

	g := NewGate(store, formattedBucket, trustedBucket)
	require.NoError(t, g.ProcessRecords(ctx))

	body, notFound, err := store.GetObject(ctx, trustedBucket, zonekey.CanonicalRecordSet("steam", t1))
	require.NoError(t, err)
	require.False(t, notFound)

	want, err := records.MarshalCanonical(records.Set{"620": steamRecord()})
	require.NoError(t, err)
	assert.Equal(t, want, body, "trusted output is the deterministic canonical form")
}

func TestProcessRecordsRejectsWholeFile(t *testing.T) {
	store := objstore.NewFileClient(t.TempDir())
	ctx := t.Context()

	bad := steamRecord()
	delete(bad, "developers")
	putFormattedSet(t, store, "steam", t1, records.Set{
		"620": steamRecord(),
		"730": bad,
	})

	g := NewGate(store, formattedBucket, trustedBucket)
	require.NoError(t, g.ProcessRecords(ctx))

	objs, err := store.ListObjects(ctx, trustedBucket, "")
	require.NoError(t, err)
	assert.Empty(t, objs, "one invalid record rejects the whole file")
}

func TestProcessRecordsRejectsUnknownSource(t *testing.T) {
	store := objstore.NewFileClient(t.TempDir())
	ctx := t.Context()
	putFormattedSet(t, store, "mystery", t1, records.Set{"1": {"a": 1}})

	g := NewGate(store, formattedBucket, trustedBucket)
	require.NoError(t, g.ProcessRecords(ctx))

	objs, err := store.ListObjects(ctx, trustedBucket, "")
	require.NoError(t, err)
	assert.Empty(t, objs)
}

func TestProcessRecordsDropsSupersededTrustedVersions(t *testing.T) {
	store := objstore.NewFileClient(t.TempDir())
	ctx := t.Context()

	require.NoError(t, store.PutObject(ctx, trustedBucket,
		zonekey.CanonicalRecordSet("steam", t1), []byte(`{"620": {"name": "old"}}`)))
	putFormattedSet(t, store, "steam", t2, records.Set{"620": steamRecord()})

	g := NewGate(store, formattedBucket, trustedBucket)
	require.NoError(t, g.ProcessRecords(ctx))

	_, notFound, err := store.GetObject(ctx, trustedBucket, zonekey.CanonicalRecordSet("steam", t1))
	require.NoError(t, err)
	assert.True(t, notFound, "older trusted versions are removed on acceptance")

	_, notFound, err = store.GetObject(ctx, trustedBucket, zonekey.CanonicalRecordSet("steam", t2))
	require.NoError(t, err)
	assert.False(t, notFound)
}

func TestProcessRecordsEmptyFormattedZone(t *testing.T) {
	store := objstore.NewFileClient(t.TempDir())
	g := NewGate(store, formattedBucket, trustedBucket)
	assert.NoError(t, g.ProcessRecords(t.Context()))
}
