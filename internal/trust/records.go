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

// Gate validates formatted artifacts into the trusted zone.
type Gate struct {
	store           objstore.Client
	formattedBucket string
	trustedBucket   string
}

// NewGate wires a quality gate between the formatted and trusted buckets.
func NewGate(store objstore.Client, formattedBucket, trustedBucket string) *Gate {
	return &Gate{
		store:           store,
		formattedBucket: formattedBucket,
		trustedBucket:   trustedBucket,
	}
}

// ProcessRecords validates every formatted record set against its source
// schema. A set with any failing record is rejected whole and nothing is
// written for it. Passing sets are re-serialized deterministically under
// the mirrored trusted key, and superseded trusted versions are removed.
func (g *Gate) ProcessRecords(ctx context.Context) error {
	ll := logctx.FromContext(ctx)

	objs, err := g.store.ListObjects(ctx, g.formattedBucket, string(zonekey.ClassRecords)+"/")
	if err != nil {
		return fmt.Errorf("list formatted records: %w", err)
	}

	processed := 0
	rejected := 0
	for _, obj := range objs {
		if zonekey.IsDirMarker(obj.Key) {
			continue
		}
		art, err := zonekey.ParseVersioned(obj.Key)
		if err != nil || art.Class != zonekey.ClassRecords {
			ll.Warn("Skipping malformed formatted record key", "key", obj.Key, "error", err)
			continue
		}

		ok, err := g.processRecordSet(ctx, obj.Key, art)
		if err != nil {
			return err
		}
		if ok {
			processed++
		} else {
			rejected++
		}
	}

	ll.Info("Record quality gate completed", "accepted", processed, "rejected", rejected)
	return nil
}

func (g *Gate) processRecordSet(ctx context.Context, key string, art zonekey.Artifact) (bool, error) {
	ll := logctx.FromContext(ctx).With("source", art.Source, "key", key)

	required := RequiredKeys(art.Source)
	if required == nil {
		ll.Warn("No schema registered for source, rejecting record set")
		return false, nil
	}

	body, notFound, err := g.store.GetObject(ctx, g.formattedBucket, key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if notFound {
		ll.Warn("Formatted record set disappeared during validation")
		return false, nil
	}

	set, err := records.UnmarshalSet(body)
	if err != nil {
		ll.Error("Unparsable record set rejected", "error", err)
		return false, nil
	}

	// One invalid record poisons the whole file. A partially valid set is
	// a partially broken capture, and the trusted tier holds only captures
	// that are sound end to end.
	if issues := Validate(set, required); len(issues) > 0 {
		for _, issue := range issues {
			ll.Warn("Record fails schema", "record_id", issue.RecordID,
				"missing_keys", strings.Join(issue.MissingKeys, ","))
		}
		ll.Warn("Record set rejected by quality gate", "invalid_records", len(issues))
		return false, nil
	}

	canonical, err := records.MarshalCanonical(set)
	if err != nil {
		return false, fmt.Errorf("serialize %s: %w", key, err)
	}

	if err := g.dropSupersededRecords(ctx, art); err != nil {
		return false, err
	}

	target := zonekey.CanonicalRecordSet(art.Source, art.Timestamp)
	if err := g.store.PutObject(ctx, g.trustedBucket, target, canonical); err != nil {
		return false, fmt.Errorf("put %s: %w", target, err)
	}
	ll.Info("Record set accepted into the trusted zone", "target", target, "records", len(set))
	return true, nil
}

// dropSupersededRecords deletes trusted record-set versions of the source
// older than the incoming timestamp.
func (g *Gate) dropSupersededRecords(ctx context.Context, art zonekey.Artifact) error {
	ll := logctx.FromContext(ctx)

	existing, err := g.store.ListObjects(ctx, g.trustedBucket, zonekey.CanonicalRecordPrefix(art.Source))
	if err != nil {
		return fmt.Errorf("list trusted %s: %w", art.Source, err)
	}
	var stale []string
	for _, obj := range existing {
		if zonekey.IsDirMarker(obj.Key) {
			continue
		}
		old, err := zonekey.ParseVersioned(obj.Key)
		if err != nil {
			ll.Warn("Skipping malformed trusted key", "key", obj.Key, "error", err)
			continue
		}
		if art.Timestamp.After(old.Timestamp) {
			stale = append(stale, obj.Key)
		}
	}
	sort.Strings(stale)
	for _, key := range stale {
		ll.Info("Deleting superseded trusted record set", "key", key)
		if err := g.store.DeleteObject(ctx, g.trustedBucket, key); err != nil {
			return fmt.Errorf("delete stale %s: %w", key, err)
		}
	}
	return nil
}

// deleteSubtree removes every object under prefix in bucket ahead of a
// media rebuild.
func (g *Gate) deleteSubtree(ctx context.Context, bucket, prefix string) error {
	ll := logctx.FromContext(ctx)

	objs, err := g.store.ListObjects(ctx, bucket, prefix)
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
	failed, err := g.store.DeleteObjects(ctx, bucket, keys)
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
