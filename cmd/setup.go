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
	"log/slog"
	"os"

	"github.com/PelleWhitebear/gamelake/config"
	"github.com/PelleWhitebear/gamelake/internal/logctx"
	"github.com/PelleWhitebear/gamelake/internal/objstore"
)

// setupContext builds the shared command environment: configuration, the
// process logger (attached to the context), and signal-driven
// cancellation.
func setupContext(servicename string) (context.Context, context.CancelFunc, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	opts := &slog.HandlerOptions{}
	if os.Getenv("DEBUG") != "" {
		opts.Level = slog.LevelDebug
	}
	ll := slog.New(slog.NewTextHandler(os.Stdout, opts)).With(
		slog.String("service", servicename),
	)
	slog.SetDefault(ll)

	ctx, cancel := handleSignals(logctx.WithLogger(context.Background(), ll))
	return ctx, cancel, cfg, nil
}

// newStoreClient builds the object-store client from configuration.
func newStoreClient(ctx context.Context, cfg *config.Config) (objstore.Client, error) {
	opts := []objstore.S3Option{
		objstore.WithRegion(cfg.Store.Region),
	}
	if cfg.Store.Endpoint != "" {
		opts = append(opts, objstore.WithEndpoint(cfg.Store.Endpoint))
	}
	if cfg.Store.PathStyle {
		opts = append(opts, objstore.WithPathStyle())
	}
	if cfg.Store.AccessKey != "" {
		opts = append(opts, objstore.WithStaticCredentials(cfg.Store.AccessKey, cfg.Store.SecretKey))
	}
	if cfg.Store.InsecureTLS {
		opts = append(opts, objstore.WithInsecureTLS())
	}
	client, err := objstore.NewS3Client(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}
	return client, nil
}
