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
	"os"
	"path/filepath"
	"strings"

	"github.com/PelleWhitebear/gamelake/internal/logctx"
	"github.com/PelleWhitebear/gamelake/internal/video"
	"github.com/PelleWhitebear/gamelake/internal/zonekey"
)

// FormatVideos rebuilds the formatted video sub-tree from the persistent
// tier. Videos already in the canonical container are copied store-side;
// anything else is pulled down, transcoded to h264 mp4, and uploaded.
func (n *Normalizer) FormatVideos(ctx context.Context, tool *video.Tool, tmpdir string) error {
	ll := logctx.FromContext(ctx)

	if err := n.deleteSubtree(ctx, n.formattedBucket, zonekey.CanonicalMediaPrefix(zonekey.ClassVideo)); err != nil {
		return err
	}

	objs, err := n.store.ListObjects(ctx, n.landingBucket, zonekey.PersistentMediaPrefix(zonekey.ClassVideo))
	if err != nil {
		return fmt.Errorf("list persistent videos: %w", err)
	}

	written := 0
	skipped := 0
	for _, obj := range objs {
		if zonekey.IsDirMarker(obj.Key) {
			continue
		}
		art, err := zonekey.ParseVersioned(obj.Key)
		if err != nil || art.Class != zonekey.ClassVideo {
			ll.Warn("Skipping malformed persistent video key", "key", obj.Key, "error", err)
			skipped++
			continue
		}

		target := zonekey.CanonicalMedia(zonekey.ClassVideo, art.Timestamp, art.GameID, art.Seq, "mp4")

		if strings.EqualFold(art.Ext, "mp4") {
			if err := n.store.CopyObject(ctx, n.landingBucket, obj.Key, n.formattedBucket, target); err != nil {
				return fmt.Errorf("copy %s: %w", obj.Key, err)
			}
			written++
			continue
		}

		ok, err := n.transcodeVideo(ctx, tool, tmpdir, obj.Key, target)
		if err != nil {
			return err
		}
		if ok {
			written++
		} else {
			skipped++
		}
	}

	ll.Info("Formatted video rebuild completed", "written", written, "skipped", skipped)
	return nil
}

// transcodeVideo converts one persistent video into the canonical
// container and uploads it. A failed conversion excludes the file without
// failing the rebuild.
func (n *Normalizer) transcodeVideo(ctx context.Context, tool *video.Tool, tmpdir, srcKey, dstKey string) (bool, error) {
	ll := logctx.FromContext(ctx)

	in, _, notFound, err := n.store.DownloadObject(ctx, tmpdir, n.landingBucket, srcKey)
	if err != nil {
		return false, fmt.Errorf("download %s: %w", srcKey, err)
	}
	if notFound {
		ll.Warn("Persistent video disappeared during normalization", "key", srcKey)
		return false, nil
	}
	defer os.Remove(in)

	out := filepath.Join(tmpdir, filepath.Base(in)+".mp4")
	defer os.Remove(out)
	if err := tool.Convert(ctx, in, out); err != nil {
		ll.Error("Unconvertible video excluded from the formatted zone", "key", srcKey, "error", err)
		return false, nil
	}

	if err := n.store.UploadObject(ctx, n.formattedBucket, dstKey, out); err != nil {
		return false, fmt.Errorf("upload %s: %w", dstKey, err)
	}
	return true, nil
}
