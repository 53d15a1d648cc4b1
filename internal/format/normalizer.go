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

// Package format normalizes persisted artifacts into one canonical
// encoding per data class: records to canonical JSON, images to JPEG,
// videos to h264/mp4. Record sets are comparison-gated on the embedded
// capture timestamp; media sub-trees are fully rebuilt each run.
package format

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/PelleWhitebear/gamelake/internal/logctx"
	"github.com/PelleWhitebear/gamelake/internal/objstore"
	"github.com/PelleWhitebear/gamelake/internal/records"
	"github.com/PelleWhitebear/gamelake/internal/zonekey"
)

// Normalizer converts persistent artifacts into the formatted zone.
type Normalizer struct {
	store           objstore.Client
	landingBucket   string
	formattedBucket string
}

// NewNormalizer wires a normalizer between the landing and formatted
// buckets.
func NewNormalizer(store objstore.Client, landingBucket, formattedBucket string) *Normalizer {
	return &Normalizer{
		store:           store,
		landingBucket:   landingBucket,
		formattedBucket: formattedBucket,
	}
}

// FormatRecords refreshes the canonical record set of every source whose
// persistent tier holds a newer version. Sources already up to date are
// left untouched, so converged runs are no-ops.
func (n *Normalizer) FormatRecords(ctx context.Context) error {
	ll := logctx.FromContext(ctx)

	objs, err := n.store.ListObjects(ctx, n.landingBucket, zonekey.PersistentPrefix+"/"+string(zonekey.ClassRecords)+"/")
	if err != nil {
		return fmt.Errorf("list persistent records: %w", err)
	}

	bySource := map[string][]string{}
	for _, obj := range objs {
		if zonekey.IsDirMarker(obj.Key) {
			continue
		}
		parts := strings.Split(obj.Key, "/")
		if len(parts) < 4 {
			ll.Warn("Skipping key outside the source layout", "key", obj.Key)
			continue
		}
		source := parts[2]
		bySource[source] = append(bySource[source], obj.Key)
	}
	if len(bySource) == 0 {
		ll.Info("No record sets found in the persistent tier")
		return nil
	}

	sources := make([]string, 0, len(bySource))
	for s := range bySource {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	for _, source := range sources {
		if err := n.formatSource(ctx, source, bySource[source]); err != nil {
			return err
		}
	}
	return nil
}

// formatSource promotes the newest persistent record-set version of one
// source into the formatted zone, if it is newer than what is there.
func (n *Normalizer) formatSource(ctx context.Context, source string, keys []string) error {
	ll := logctx.FromContext(ctx).With("source", source)

	latestKey := ""
	var latest zonekey.Artifact
	for _, key := range keys {
		art, err := zonekey.ParseVersioned(key)
		if err != nil || art.Class != zonekey.ClassRecords {
			ll.Warn("Skipping malformed persistent record key", "key", key, "error", err)
			continue
		}
		if latestKey == "" || art.Timestamp.After(latest.Timestamp) {
			latestKey, latest = key, art
		}
	}
	if latestKey == "" {
		ll.Warn("No parsable record-set versions for source")
		return nil
	}
	ll.Info("Most recent persistent record set", "key", latestKey)

	prefix := zonekey.CanonicalRecordPrefix(source)
	existing, err := n.store.ListObjects(ctx, n.formattedBucket, prefix)
	if err != nil {
		return fmt.Errorf("list formatted %s: %w", prefix, err)
	}
	var stale []string
	for _, obj := range existing {
		if zonekey.IsDirMarker(obj.Key) {
			continue
		}
		art, err := zonekey.ParseVersioned(obj.Key)
		if err != nil {
			ll.Warn("Skipping malformed formatted key", "key", obj.Key, "error", err)
			continue
		}
		if !latest.Timestamp.After(art.Timestamp) {
			ll.Info("Formatted record set is already up to date", "key", obj.Key)
			return nil
		}
		stale = append(stale, obj.Key)
	}

	body, notFound, err := n.store.GetObject(ctx, n.landingBucket, latestKey)
	if err != nil {
		return fmt.Errorf("get %s: %w", latestKey, err)
	}
	if notFound {
		return fmt.Errorf("persistent artifact %s disappeared during normalization", latestKey)
	}

	parsed, err := decodeRecords(body, latest.Ext)
	if err != nil {
		// Never write a partial or garbled canonical artifact.
		ll.Error("Undecodable record set excluded from the formatted zone", "key", latestKey, "error", err)
		return nil
	}
	canonical, err := records.MarshalCanonical(parsed)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", latestKey, err)
	}

	for _, key := range stale {
		ll.Info("Deleting superseded formatted record set", "key", key)
		if err := n.store.DeleteObject(ctx, n.formattedBucket, key); err != nil {
			return fmt.Errorf("delete stale %s: %w", key, err)
		}
	}

	newKey := zonekey.CanonicalRecordSet(source, latest.Timestamp)
	if err := n.store.PutObject(ctx, n.formattedBucket, newKey, canonical); err != nil {
		return fmt.Errorf("put %s: %w", newKey, err)
	}
	ll.Info("Formatted record set written", "key", newKey)
	return nil
}

// deleteSubtree removes every object under prefix in bucket. Used for the
// destructive full rebuild of media classes.
func (n *Normalizer) deleteSubtree(ctx context.Context, bucket, prefix string) error {
	ll := logctx.FromContext(ctx)

	objs, err := n.store.ListObjects(ctx, bucket, prefix)
	if err != nil {
		return fmt.Errorf("list %s/%s: %w", bucket, prefix, err)
	}
	if len(objs) == 0 {
		ll.Info("Nothing to delete", "bucket", bucket, "prefix", prefix)
		return nil
	}
	keys := make([]string, 0, len(objs))
	for _, obj := range objs {
		keys = append(keys, obj.Key)
	}
	failed, err := n.store.DeleteObjects(ctx, bucket, keys)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", bucket, prefix, err)
	}
	if len(failed) > 0 {
		var merr *multierror.Error
		for _, key := range failed {
			merr = multierror.Append(merr, fmt.Errorf("delete %s/%s", bucket, key))
		}
		return merr.ErrorOrNil()
	}
	ll.Info("Deleted media subtree for rebuild", "bucket", bucket, "prefix", prefix, "objects", len(keys))
	return nil
}
