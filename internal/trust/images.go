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

	"github.com/PelleWhitebear/gamelake/internal/imaging"
	"github.com/PelleWhitebear/gamelake/internal/logctx"
	"github.com/PelleWhitebear/gamelake/internal/zonekey"
)

// ProcessImages rebuilds the trusted image sub-tree from the formatted
// zone. Each image must decode (the corruption gate) and comes out
// three-channel, contrast-equalized, and padded square at size x size.
func (g *Gate) ProcessImages(ctx context.Context, size int) error {
	ll := logctx.FromContext(ctx)

	if err := g.deleteSubtree(ctx, g.trustedBucket, zonekey.CanonicalMediaPrefix(zonekey.ClassImage)); err != nil {
		return err
	}

	objs, err := g.store.ListObjects(ctx, g.formattedBucket, zonekey.CanonicalMediaPrefix(zonekey.ClassImage))
	if err != nil {
		return fmt.Errorf("list formatted images: %w", err)
	}

	written := 0
	skipped := 0
	for _, obj := range objs {
		if zonekey.IsDirMarker(obj.Key) {
			continue
		}
		art, err := zonekey.ParseVersioned(obj.Key)
		if err != nil || art.Class != zonekey.ClassImage {
			ll.Warn("Skipping malformed formatted image key", "key", obj.Key, "error", err)
			skipped++
			continue
		}

		body, notFound, err := g.store.GetObject(ctx, g.formattedBucket, obj.Key)
		if err != nil {
			return fmt.Errorf("get %s: %w", obj.Key, err)
		}
		if notFound {
			ll.Warn("Formatted image disappeared during processing", "key", obj.Key)
			skipped++
			continue
		}

		img, err := imaging.Decode(body)
		if err != nil {
			ll.Error("Corrupt image excluded from the trusted zone", "key", obj.Key, "error", err)
			skipped++
			continue
		}
		encoded, err := imaging.EncodeJPEG(imaging.Normalize(img, size))
		if err != nil {
			return fmt.Errorf("encode %s: %w", obj.Key, err)
		}

		target := zonekey.CanonicalMedia(zonekey.ClassImage, art.Timestamp, art.GameID, art.Seq, "jpg")
		if err := g.store.PutObject(ctx, g.trustedBucket, target, encoded); err != nil {
			return fmt.Errorf("put %s: %w", target, err)
		}
		written++
	}

	ll.Info("Trusted image rebuild completed", "written", written, "skipped", skipped)
	return nil
}
