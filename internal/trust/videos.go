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
	"os"
	"path/filepath"

	"github.com/PelleWhitebear/gamelake/internal/logctx"
	"github.com/PelleWhitebear/gamelake/internal/video"
	"github.com/PelleWhitebear/gamelake/internal/zonekey"
)

// ProcessVideos rebuilds the trusted video sub-tree from the formatted
// zone. Every video is probed first (the corruption gate), then
// normalized to the target frame rate and padded geometry.
func (g *Gate) ProcessVideos(ctx context.Context, tool *video.Tool, tmpdir string, args video.NormalizeArgs) error {
	ll := logctx.FromContext(ctx)

	if err := g.deleteSubtree(ctx, g.trustedBucket, zonekey.CanonicalMediaPrefix(zonekey.ClassVideo)); err != nil {
		return err
	}

	objs, err := g.store.ListObjects(ctx, g.formattedBucket, zonekey.CanonicalMediaPrefix(zonekey.ClassVideo))
	if err != nil {
		return fmt.Errorf("list formatted videos: %w", err)
	}

	written := 0
	skipped := 0
	for _, obj := range objs {
		if zonekey.IsDirMarker(obj.Key) {
			continue
		}
		art, err := zonekey.ParseVersioned(obj.Key)
		if err != nil || art.Class != zonekey.ClassVideo {
			ll.Warn("Skipping malformed formatted video key", "key", obj.Key, "error", err)
			skipped++
			continue
		}

		ok, err := g.processVideo(ctx, tool, tmpdir, obj.Key, art, args)
		if err != nil {
			return err
		}
		if ok {
			written++
		} else {
			skipped++
		}
	}

	ll.Info("Trusted video rebuild completed", "written", written, "skipped", skipped)
	return nil
}

func (g *Gate) processVideo(ctx context.Context, tool *video.Tool, tmpdir, srcKey string, art zonekey.Artifact, args video.NormalizeArgs) (bool, error) {
	ll := logctx.FromContext(ctx)

	in, _, notFound, err := g.store.DownloadObject(ctx, tmpdir, g.formattedBucket, srcKey)
	if err != nil {
		return false, fmt.Errorf("download %s: %w", srcKey, err)
	}
	if notFound {
		ll.Warn("Formatted video disappeared during processing", "key", srcKey)
		return false, nil
	}
	defer os.Remove(in)

	if err := tool.Probe(ctx, in); err != nil {
		ll.Error("Corrupt video excluded from the trusted zone", "key", srcKey, "error", err)
		return false, nil
	}

	out := filepath.Join(tmpdir, filepath.Base(in)+".norm.mp4")
	defer os.Remove(out)
	if err := tool.Normalize(ctx, in, out, args); err != nil {
		ll.Error("Video normalization failed, excluded from the trusted zone", "key", srcKey, "error", err)
		return false, nil
	}

	target := zonekey.CanonicalMedia(zonekey.ClassVideo, art.Timestamp, art.GameID, art.Seq, "mp4")
	if err := g.store.UploadObject(ctx, g.trustedBucket, target, out); err != nil {
		return false, fmt.Errorf("upload %s: %w", target, err)
	}
	return true, nil
}
