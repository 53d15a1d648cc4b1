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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PelleWhitebear/gamelake/config"
	"github.com/PelleWhitebear/gamelake/internal/logctx"
	"github.com/PelleWhitebear/gamelake/internal/objstore"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "create-buckets",
		Short: "Create the zone buckets if they do not exist",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, cancel, cfg, err := setupContext("create-buckets")
			if err != nil {
				return err
			}
			defer cancel()

			store, err := newStoreClient(ctx, cfg)
			if err != nil {
				return err
			}
			return createBuckets(ctx, store, cfg)
		},
	})
}

func createBuckets(ctx context.Context, store objstore.Client, cfg *config.Config) error {
	ll := logctx.FromContext(ctx)
	for _, bucket := range []string{
		cfg.Zones.LandingBucket,
		cfg.Zones.FormattedBucket,
		cfg.Zones.TrustedBucket,
	} {
		if err := store.EnsureBucket(ctx, bucket); err != nil {
			return fmt.Errorf("ensure bucket %s: %w", bucket, err)
		}
		ll.Info("Bucket ready", "bucket", bucket)
	}
	return nil
}
