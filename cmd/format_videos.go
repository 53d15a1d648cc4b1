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

	"github.com/PelleWhitebear/gamelake/internal/format"
	"github.com/PelleWhitebear/gamelake/internal/video"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "format-videos",
		Short: "Rebuild the formatted video tree as h264 mp4",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, cancel, cfg, err := setupContext("format-videos")
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
			n := format.NewNormalizer(store, cfg.Zones.LandingBucket, cfg.Zones.FormattedBucket)
			return n.FormatVideos(ctx, tool, os.TempDir())
		},
	})
}
