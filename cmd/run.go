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

package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/PelleWhitebear/gamelake/internal/format"
	"github.com/PelleWhitebear/gamelake/internal/ingest"
	"github.com/PelleWhitebear/gamelake/internal/logctx"
	"github.com/PelleWhitebear/gamelake/internal/promote"
	"github.com/PelleWhitebear/gamelake/internal/runner"
	"github.com/PelleWhitebear/gamelake/internal/trust"
	"github.com/PelleWhitebear/gamelake/internal/video"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the full zone pipeline end to end",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, cancel, cfg, err := setupContext("run")
			if err != nil {
				return err
			}
			defer cancel()

			store, err := newStoreClient(ctx, cfg)
			if err != nil {
				return err
			}
			tool, err := video.NewTool()
			if err != nil {
				return err
			}

			coordinator := ingest.NewCoordinator(store, cfg.Zones.LandingBucket, cfg.Ingest, cfg.Media)
			materializer := promote.NewMaterializer(store, cfg.Zones.LandingBucket)
			normalizer := format.NewNormalizer(store, cfg.Zones.LandingBucket, cfg.Zones.FormattedBucket)
			gate := trust.NewGate(store, cfg.Zones.FormattedBucket, cfg.Zones.TrustedBucket)
			tmpdir := os.TempDir()

			r := runner.New([]runner.Stage{
				{Name: "create-buckets", Run: func(ctx context.Context) error {
					return createBuckets(ctx, store, cfg)
				}},
				{Name: "ingest-games", Run: coordinator.IngestGames},
				{Name: "ingest-media", Run: coordinator.IngestMedia},
				{Name: "move-to-persistent", Run: materializer.Run},
				{Name: "format-json", Run: normalizer.FormatRecords},
				{Name: "format-images", Run: normalizer.FormatImages},
				{Name: "format-videos", Run: func(ctx context.Context) error {
					return normalizer.FormatVideos(ctx, tool, tmpdir)
				}},
				{Name: "process-json", Run: gate.ProcessRecords},
				{Name: "process-images", Run: func(ctx context.Context) error {
					return gate.ProcessImages(ctx, cfg.Media.ImageSize)
				}},
				{Name: "process-videos", Run: func(ctx context.Context) error {
					return gate.ProcessVideos(ctx, tool, tmpdir, video.NormalizeArgs{
						Width:  cfg.Media.VideoWidth,
						Height: cfg.Media.VideoHeight,
						FPS:    cfg.Media.VideoFPS,
					})
				}},
			})

			res, runErr := r.Run(ctx)
			ll := logctx.FromContext(ctx)
			for _, stage := range res.Stages {
				ll.Info("Stage timing", "run_id", res.RunID, "stage", stage.Name, "elapsed", stage.Duration)
			}
			return runErr
		},
	})
}
