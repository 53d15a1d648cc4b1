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
	"github.com/spf13/cobra"

	"github.com/PelleWhitebear/gamelake/internal/ingest"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "ingest-media",
		Short: "Download screenshots and trailers into the staging area",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, cancel, cfg, err := setupContext("ingest-media")
			if err != nil {
				return err
			}
			defer cancel()

			store, err := newStoreClient(ctx, cfg)
			if err != nil {
				return err
			}
			c := ingest.NewCoordinator(store, cfg.Zones.LandingBucket, cfg.Ingest, cfg.Media)
			return c.IngestMedia(ctx)
		},
	})
}
