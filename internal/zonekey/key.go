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

// Package zonekey builds and parses the composite object keys used across
// the landing, formatted, and trusted zones. Keys carry classification,
// source, capture timestamp, and a disambiguation suffix; the embedded
// timestamp is the only version authority, store-side metadata is never
// consulted.
package zonekey

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the capture-time encoding used in every versioned key,
// second granularity, always UTC.
const TimestampLayout = "20060102_150405"

const (
	// TemporalPrefix is the staging area inside the landing bucket.
	TemporalPrefix = "temporal_landing"
	// PersistentPrefix is the immutable versioned tier inside the landing bucket.
	PersistentPrefix = "persistent_landing"

	// RecordSetSuffix is the fixed literal that ends every record-set key.
	RecordSetSuffix = "games.json"

	// BackupExt marks a checkpoint snapshot of a staging artifact.
	BackupExt = ".bak"
)

// Class identifies the data class of an artifact.
type Class string

const (
	ClassRecords Class = "json"
	ClassImage   Class = "image"
	ClassVideo   Class = "video"
)

// persistentMediaDir returns the media sub-directory used by the persistent
// tier, which pluralizes the class ("images", "videos"). The formatted and
// trusted tiers use the singular form.
func persistentMediaDir(c Class) string {
	return string(c) + "s"
}

// MalformedKeyError reports a key that does not follow the composite
// naming convention. Callers log it and skip the artifact.
type MalformedKeyError struct {
	Key    string
	Reason string
}

func (e *MalformedKeyError) Error() string {
	return fmt.Sprintf("malformed key %q: %s", e.Key, e.Reason)
}

func malformed(key, reason string) error {
	return &MalformedKeyError{Key: key, Reason: reason}
}

// FormatTimestamp encodes t as a capture timestamp in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp decodes a capture timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// StagingRecordSet returns the staging key accumulating one source's
// records, e.g. temporal_landing/steam_games.json.
func StagingRecordSet(source string) string {
	return path.Join(TemporalPrefix, source+"_"+RecordSetSuffix)
}

// StagingMedia returns the staging key for one downloaded media file,
// e.g. temporal_landing/620_3.jpg.
func StagingMedia(gameID string, seq int, ext string) string {
	return path.Join(TemporalPrefix, fmt.Sprintf("%s_%d.%s", gameID, seq, ext))
}

// BackupKey derives the checkpoint-marker key for a staging artifact by
// swapping its extension for ".bak".
func BackupKey(key string) string {
	ext := path.Ext(key)
	return strings.TrimSuffix(key, ext) + BackupExt
}

// IsBackup reports whether key is a checkpoint marker.
func IsBackup(key string) bool {
	return strings.HasSuffix(key, BackupExt)
}

// IsDirMarker reports whether key is a zero-byte prefix placeholder.
func IsDirMarker(key string) bool {
	return strings.HasSuffix(key, "/")
}

// Staging describes a parsed staging artifact name.
type Staging struct {
	Class  Class
	Source string // record sets only
	GameID string // media only
	Seq    int    // media only
	Ext    string // media only, without dot
}

var imageExts = map[string]bool{"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true, "bmp": true}
var videoExts = map[string]bool{"mp4": true, "webm": true, "mov": true, "avi": true, "mkv": true}

// ParseStaging classifies a staging key. Record sets are named
// <source>_games.json, media files <gameID>_<seq>.<ext>.
func ParseStaging(key string) (Staging, error) {
	base := path.Base(key)
	if s, ok := strings.CutSuffix(base, "_"+RecordSetSuffix); ok && s != "" {
		return Staging{Class: ClassRecords, Source: s}, nil
	}

	ext := strings.TrimPrefix(path.Ext(base), ".")
	stem := strings.TrimSuffix(base, path.Ext(base))
	gameID, seqStr, ok := strings.Cut(stem, "_")
	if !ok || gameID == "" {
		return Staging{}, malformed(key, "expected <source>_games.json or <gameID>_<seq>.<ext>")
	}
	seq, err := strconv.Atoi(seqStr)
	if err != nil {
		return Staging{}, malformed(key, "sequence number is not an integer")
	}
	switch {
	case imageExts[strings.ToLower(ext)]:
		return Staging{Class: ClassImage, GameID: gameID, Seq: seq, Ext: ext}, nil
	case videoExts[strings.ToLower(ext)]:
		return Staging{Class: ClassVideo, GameID: gameID, Seq: seq, Ext: ext}, nil
	default:
		return Staging{}, malformed(key, fmt.Sprintf("unrecognized media extension %q", ext))
	}
}

// PersistentRecordSet returns the versioned persistent key for a source's
// record set: persistent_landing/json/<source>/<source>#<ts>#games.json.
func PersistentRecordSet(source string, ts time.Time) string {
	return path.Join(PersistentPrefix, string(ClassRecords), source,
		source+"#"+FormatTimestamp(ts)+"#"+RecordSetSuffix)
}

// PersistentMedia returns the versioned persistent key for a media file:
// persistent_landing/media/images/<ts>#<gameID>#<seq>.<ext>.
func PersistentMedia(c Class, ts time.Time, gameID string, seq int, ext string) string {
	return path.Join(PersistentPrefix, "media", persistentMediaDir(c),
		fmt.Sprintf("%s#%s#%d.%s", FormatTimestamp(ts), gameID, seq, ext))
}

// PersistentRecordPrefix lists one source's record-set versions.
func PersistentRecordPrefix(source string) string {
	return path.Join(PersistentPrefix, string(ClassRecords), source) + "/"
}

// PersistentMediaPrefix lists one media class of the persistent tier.
func PersistentMediaPrefix(c Class) string {
	return path.Join(PersistentPrefix, "media", persistentMediaDir(c)) + "/"
}

// CanonicalRecordSet returns the bucket-relative key used by the formatted
// and trusted zones: json/<source>/<source>#<ts>#games.json.
func CanonicalRecordSet(source string, ts time.Time) string {
	return path.Join(string(ClassRecords), source,
		source+"#"+FormatTimestamp(ts)+"#"+RecordSetSuffix)
}

// CanonicalRecordPrefix lists one source in the formatted/trusted zones.
func CanonicalRecordPrefix(source string) string {
	return path.Join(string(ClassRecords), source) + "/"
}

// CanonicalMedia returns the bucket-relative media key used by the
// formatted and trusted zones: media/image/<ts>#<gameID>#<seq>.<ext>.
func CanonicalMedia(c Class, ts time.Time, gameID string, seq int, ext string) string {
	return path.Join("media", string(c),
		fmt.Sprintf("%s#%s#%d.%s", FormatTimestamp(ts), gameID, seq, ext))
}

// CanonicalMediaPrefix lists one media class in the formatted/trusted zones.
func CanonicalMediaPrefix(c Class) string {
	return path.Join("media", string(c)) + "/"
}

// Artifact is a parsed versioned key from the persistent, formatted, or
// trusted tier.
type Artifact struct {
	Class     Class
	Source    string // record sets only
	Timestamp time.Time
	GameID    string // media only
	Seq       int    // media only
	Ext       string // without dot
}

// ParseVersioned parses the basename of any versioned key. Record sets are
// <source>#<ts>#games.json, media <ts>#<gameID>#<seq>.<ext>. The class of
// media keys is taken from the extension's class table.
func ParseVersioned(key string) (Artifact, error) {
	base := path.Base(key)
	parts := strings.Split(base, "#")
	if len(parts) != 3 {
		return Artifact{}, malformed(key, "expected three #-separated fields")
	}

	// Record sets carry the timestamp in the middle field
	// (<source>#<ts>#games.<ext>), media keys lead with it.
	if ts, err := ParseTimestamp(parts[1]); err == nil {
		ext := strings.TrimPrefix(path.Ext(parts[2]), ".")
		if ext == "" {
			return Artifact{}, malformed(key, "record-set suffix has no extension")
		}
		return Artifact{Class: ClassRecords, Source: parts[0], Timestamp: ts, Ext: ext}, nil
	}

	ts, err := ParseTimestamp(parts[0])
	if err != nil {
		return Artifact{}, malformed(key, "unparsable timestamp")
	}
	ext := strings.TrimPrefix(path.Ext(parts[2]), ".")
	seq, err := strconv.Atoi(strings.TrimSuffix(parts[2], path.Ext(parts[2])))
	if err != nil {
		return Artifact{}, malformed(key, "sequence number is not an integer")
	}
	c := ClassImage
	if videoExts[strings.ToLower(ext)] {
		c = ClassVideo
	}
	return Artifact{Class: c, Timestamp: ts, GameID: parts[1], Seq: seq, Ext: ext}, nil
}

// Newer reports whether the artifact at key a carries a strictly newer
// embedded timestamp than the one at key b.
func Newer(a, b string) (bool, error) {
	aa, err := ParseVersioned(a)
	if err != nil {
		return false, err
	}
	bb, err := ParseVersioned(b)
	if err != nil {
		return false, err
	}
	return aa.Timestamp.After(bb.Timestamp), nil
}
