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

package format

import (
	"context"
	"fmt"
	"strings"

	"github.com/PelleWhitebear/gamelake/internal/imaging"
	"github.com/PelleWhitebear/gamelake/internal/logctx"
	"github.com/PelleWhitebear/gamelake/internal/zonekey"
)

// FormatImages rebuilds the formatted image sub-tree from the persistent
// tier. The formatted copy is derived state, so the whole prefix is torn
// down and reconstructed: every persistent image ends up under its
// canonical key as a jpg, re-encoding anything that landed in another
// format.
func (n *Normalizer) FormatImages(ctx context.Context) error {
	ll := logctx.FromContext(ctx)

	if err := n.deleteSubtree(ctx, n.formattedBucket, zonekey.CanonicalMediaPrefix(zonekey.ClassImage)); err != nil {
		return err
	}

	objs, err := n.store.ListObjects(ctx, n.landingBucket, zonekey.PersistentMediaPrefix(zonekey.ClassImage))
	if err != nil {
		return fmt.Errorf("list persistent images: %w", err)
	}

	written := 0
	skipped := 0
	for _, obj := range objs {
		if zonekey.IsDirMarker(obj.Key) {
			continue
		}
		art, err := zonekey.ParseVersioned(obj.Key)
		if err != nil || art.Class != zonekey.ClassImage {
			ll.Warn("Skipping malformed persistent image key", "key", obj.Key, "error", err)
			skipped++
			continue
		}

		target := zonekey.CanonicalMedia(zonekey.ClassImage, art.Timestamp, art.GameID, art.Seq, "jpg")

		if isJPEG(art.Ext) {
			if err := n.store.CopyObject(ctx, n.landingBucket, obj.Key, n.formattedBucket, target); err != nil {
				return fmt.Errorf("copy %s: %w", obj.Key, err)
			}
			written++
			continue
		}

		body, notFound, err := n.store.GetObject(ctx, n.landingBucket, obj.Key)
		if err != nil {
			return fmt.Errorf("get %s: %w", obj.Key, err)
		}
		if notFound {
			ll.Warn("Persistent image disappeared during normalization", "key", obj.Key)
			skipped++
			continue
		}
		img, err := imaging.Decode(body)
		if err != nil {
			ll.Error("Undecodable image excluded from the formatted zone", "key", obj.Key, "error", err)
			skipped++
			continue
		}
		encoded, err := imaging.EncodeJPEG(img)
		if err != nil {
			return fmt.Errorf("encode %s: %w", obj.Key, err)
		}
		if err := n.store.PutObject(ctx, n.formattedBucket, target, encoded); err != nil {
			return fmt.Errorf("put %s: %w", target, err)
		}
		written++
	}

	ll.Info("Formatted image rebuild completed", "written", written, "skipped", skipped)
	return nil
}

func isJPEG(ext string) bool {
	e := strings.ToLower(ext)
	return e == "jpg" || e == "jpeg"
}
