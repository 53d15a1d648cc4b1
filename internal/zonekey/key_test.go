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

package zonekey

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTS = time.Date(2025, 4, 27, 18, 41, 0, 0, time.UTC)

func TestFormatTimestampRoundTrip(t *testing.T) {
	s := FormatTimestamp(testTS)
	assert.Equal(t, "20250427_184100", s)

	parsed, err := ParseTimestamp(s)
	require.NoError(t, err)
	assert.Equal(t, testTS, parsed.UTC())
}

func TestFormatTimestampConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	local := time.Date(2025, 4, 27, 20, 41, 0, 0, loc)
	assert.Equal(t, "20250427_184100", FormatTimestamp(local))
}

func TestStagingKeys(t *testing.T) {
	assert.Equal(t, "temporal_landing/steam_games.json", StagingRecordSet("steam"))
	assert.Equal(t, "temporal_landing/steamspy_games.json", StagingRecordSet("steamspy"))
	assert.Equal(t, "temporal_landing/620_3.jpg", StagingMedia("620", 3, "jpg"))
}

func TestBackupKey(t *testing.T) {
	assert.Equal(t, "temporal_landing/steam_games.bak", BackupKey("temporal_landing/steam_games.json"))
	assert.True(t, IsBackup("temporal_landing/steam_games.bak"))
	assert.False(t, IsBackup("temporal_landing/steam_games.json"))
}

func TestParseStagingRecordSet(t *testing.T) {
	s, err := ParseStaging("temporal_landing/steam_games.json")
	require.NoError(t, err)
	assert.Equal(t, ClassRecords, s.Class)
	assert.Equal(t, "steam", s.Source)
}

func TestParseStagingMedia(t *testing.T) {
	s, err := ParseStaging("temporal_landing/620_3.jpg")
	require.NoError(t, err)
	assert.Equal(t, ClassImage, s.Class)
	assert.Equal(t, "620", s.GameID)
	assert.Equal(t, 3, s.Seq)
	assert.Equal(t, "jpg", s.Ext)

	s, err = ParseStaging("temporal_landing/730_1.mp4")
	require.NoError(t, err)
	assert.Equal(t, ClassVideo, s.Class)
}

func TestParseStagingMalformed(t *testing.T) {
	for _, key := range []string{
		"temporal_landing/notes.txt",
		"temporal_landing/620_x.jpg",
		"temporal_landing/_games.json",
	} {
		_, err := ParseStaging(key)
		var mk *MalformedKeyError
		require.Error(t, err, "key %s", key)
		assert.True(t, errors.As(err, &mk), "key %s", key)
	}
}

func TestPersistentKeys(t *testing.T) {
	assert.Equal(t,
		"persistent_landing/json/steam/steam#20250427_184100#games.json",
		PersistentRecordSet("steam", testTS))
	assert.Equal(t,
		"persistent_landing/media/images/20250427_184100#620#3.jpg",
		PersistentMedia(ClassImage, testTS, "620", 3, "jpg"))
	assert.Equal(t,
		"persistent_landing/media/videos/20250427_184100#620#1.mp4",
		PersistentMedia(ClassVideo, testTS, "620", 1, "mp4"))
	assert.Equal(t, "persistent_landing/json/steam/", PersistentRecordPrefix("steam"))
	assert.Equal(t, "persistent_landing/media/images/", PersistentMediaPrefix(ClassImage))
}

func TestCanonicalKeys(t *testing.T) {
	assert.Equal(t,
		"json/steam/steam#20250427_184100#games.json",
		CanonicalRecordSet("steam", testTS))
	assert.Equal(t,
		"media/image/20250427_184100#620#3.jpg",
		CanonicalMedia(ClassImage, testTS, "620", 3, "jpg"))
	assert.Equal(t,
		"media/video/20250427_184100#620#1.mp4",
		CanonicalMedia(ClassVideo, testTS, "620", 1, "mp4"))
	assert.Equal(t, "media/image/", CanonicalMediaPrefix(ClassImage))
}

func TestParseVersionedRecordSet(t *testing.T) {
	art, err := ParseVersioned("persistent_landing/json/steam/steam#20250427_184100#games.json")
	require.NoError(t, err)
	assert.Equal(t, ClassRecords, art.Class)
	assert.Equal(t, "steam", art.Source)
	assert.Equal(t, testTS, art.Timestamp.UTC())
	assert.Equal(t, "json", art.Ext)
}

func TestParseVersionedRecordSetOtherEncodings(t *testing.T) {
	for _, ext := range []string{"csv", "xml", "yaml"} {
		art, err := ParseVersioned("persistent_landing/json/other/other#20250427_184100#games." + ext)
		require.NoError(t, err)
		assert.Equal(t, ClassRecords, art.Class)
		assert.Equal(t, ext, art.Ext)
	}
}

func TestParseVersionedMedia(t *testing.T) {
	art, err := ParseVersioned("media/image/20250427_184100#620#3.jpg")
	require.NoError(t, err)
	assert.Equal(t, ClassImage, art.Class)
	assert.Equal(t, "620", art.GameID)
	assert.Equal(t, 3, art.Seq)
	assert.Equal(t, "jpg", art.Ext)
	assert.Equal(t, testTS, art.Timestamp.UTC())

	art, err = ParseVersioned("media/video/20250427_184100#620#1.mp4")
	require.NoError(t, err)
	assert.Equal(t, ClassVideo, art.Class)
}

func TestParseVersionedMalformed(t *testing.T) {
	for _, key := range []string{
		"persistent_landing/json/steam/steam.json",
		"media/image/notatime#620#3.jpg",
		"media/image/20250427_184100#620#x.jpg",
	} {
		_, err := ParseVersioned(key)
		assert.Error(t, err, "key %s", key)
	}
}

func TestNewer(t *testing.T) {
	older := PersistentRecordSet("steam", testTS)
	newer := PersistentRecordSet("steam", testTS.Add(time.Hour))

	got, err := Newer(newer, older)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = Newer(older, newer)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = Newer(older, older)
	require.NoError(t, err)
	assert.False(t, got)
}
