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

// Package promote materializes staging artifacts into the immutable
// persistent tier under versioned composite keys. Promotion is
// at-least-once: an interrupted run leaves unpromoted artifacts in staging
// for the next run, and duplicate promotions become distinct versions.
package promote

import (
	"context"
	"fmt"
	"time"

	"github.com/PelleWhitebear/gamelake/internal/logctx"
	"github.com/PelleWhitebear/gamelake/internal/objstore"
	"github.com/PelleWhitebear/gamelake/internal/zonekey"
)

// Materializer moves staged artifacts to the persistent tier.
type Materializer struct {
	store  objstore.Client
	bucket string
	now    func() time.Time
}

// NewMaterializer wires a materializer against the landing bucket.
func NewMaterializer(store objstore.Client, landingBucket string) *Materializer {
	return &Materializer{store: store, bucket: landingBucket, now: time.Now}
}

// Run promotes every staging artifact. Each artifact is copied under its
// versioned persistent key first; the staging original and its checkpoint
// marker are deleted only after the copy is confirmed. Malformed staging
// names are logged and skipped without aborting the batch.
func (m *Materializer) Run(ctx context.Context) error {
	ll := logctx.FromContext(ctx)

	objs, err := m.store.ListObjects(ctx, m.bucket, zonekey.TemporalPrefix+"/")
	if err != nil {
		return fmt.Errorf("list staging: %w", err)
	}
	if len(objs) == 0 {
		ll.Info("No objects found in temporal storage")
		return nil
	}

	// One capture timestamp per run; it versions every artifact promoted
	// in this batch.
	captured := m.now().UTC()

	promoted := 0
	skipped := 0
	for _, obj := range objs {
		if zonekey.IsDirMarker(obj.Key) || zonekey.IsBackup(obj.Key) {
			continue
		}

		staged, err := zonekey.ParseStaging(obj.Key)
		if err != nil {
			ll.Warn("Skipping malformed staging artifact", "key", obj.Key, "error", err)
			skipped++
			continue
		}

		var target string
		switch staged.Class {
		case zonekey.ClassRecords:
			target = zonekey.PersistentRecordSet(staged.Source, captured)
		default:
			target = zonekey.PersistentMedia(staged.Class, captured, staged.GameID, staged.Seq, staged.Ext)
		}

		if err := m.store.CopyObject(ctx, m.bucket, obj.Key, m.bucket, target); err != nil {
			ll.Error("Promotion copy failed, leaving artifact in staging", "key", obj.Key, "error", err)
			skipped++
			continue
		}
		ll.Info("Promoted staging artifact", "from", obj.Key, "to", target)

		// Persistent write confirmed; clear the staging original and any
		// checkpoint marker.
		if err := m.store.DeleteObject(ctx, m.bucket, obj.Key); err != nil {
			ll.Error("Failed to delete promoted staging artifact", "key", obj.Key, "error", err)
		}
		if err := m.store.DeleteObject(ctx, m.bucket, zonekey.BackupKey(obj.Key)); err != nil {
			ll.Error("Failed to delete checkpoint marker", "key", zonekey.BackupKey(obj.Key), "error", err)
		}
		promoted++
	}

	ll.Info("Promotion completed", "promoted", promoted, "skipped", skipped)
	return nil
}
