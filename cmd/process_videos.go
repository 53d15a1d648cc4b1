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
	"os"

	"github.com/spf13/cobra"

	"github.com/PelleWhitebear/gamelake/internal/trust"
	"github.com/PelleWhitebear/gamelake/internal/video"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "process-videos",
		Short: "Normalize formatted videos into the trusted zone",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, cancel, cfg, err := setupContext("process-videos")
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
			g := trust.NewGate(store, cfg.Zones.FormattedBucket, cfg.Zones.TrustedBucket)
			return g.ProcessVideos(ctx, tool, os.TempDir(), video.NormalizeArgs{
				Width:  cfg.Media.VideoWidth,
				Height: cfg.Media.VideoHeight,
				FPS:    cfg.Media.VideoFPS,
			})
		},
	})
}
