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

// Package config aggregates configuration for the application. Components
// never read ambient globals; each receives the slice of this struct it
// needs at construction.
package config

import (
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Store  StoreConfig  `mapstructure:"store"`
	Zones  ZonesConfig  `mapstructure:"zones"`
	Ingest IngestConfig `mapstructure:"ingest"`
	Media  MediaConfig  `mapstructure:"media"`
}

// StoreConfig selects and authenticates the S3-compatible object store.
type StoreConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	Region      string `mapstructure:"region"`
	AccessKey   string `mapstructure:"access_key"`
	SecretKey   string `mapstructure:"secret_key"`
	PathStyle   bool   `mapstructure:"path_style"`
	InsecureTLS bool   `mapstructure:"insecure_tls"`
}

// ZonesConfig names the buckets backing the three durable tiers.
type ZonesConfig struct {
	LandingBucket   string `mapstructure:"landing_bucket"`
	FormattedBucket string `mapstructure:"formatted_bucket"`
	TrustedBucket   string `mapstructure:"trusted_bucket"`
}

// IngestConfig is the ingestion coordinator surface: pacing, retries,
// checkpointing, and the external source endpoints.
type IngestConfig struct {
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	MaxRetries      int           `mapstructure:"max_retries"`
	CheckpointEvery int           `mapstructure:"checkpoint_every"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	SteamOutput     string        `mapstructure:"steam_output"`
	SteamSpyOutput  string        `mapstructure:"steamspy_output"`
	SteamBaseURL    string        `mapstructure:"steam_base_url"`
	SteamSpyBaseURL string        `mapstructure:"steamspy_base_url"`
	AppIDs          []string      `mapstructure:"app_ids"`
	Currency        string        `mapstructure:"currency"`
	Language        string        `mapstructure:"language"`
}

// MediaConfig covers media ingestion bounds and the normalization targets
// applied by the formatted and trusted zones.
type MediaConfig struct {
	Workers            int `mapstructure:"workers"`
	ScreenshotsPerGame int `mapstructure:"screenshots_per_game"`
	ImageSize          int `mapstructure:"image_size"`
	VideoWidth         int `mapstructure:"video_width"`
	VideoHeight        int `mapstructure:"video_height"`
	VideoFPS           int `mapstructure:"video_fps"`
}

// Default returns the built-in configuration, matching the MinIO
// deployment the pipeline ships with.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Endpoint:  "http://localhost:9000",
			Region:    "us-east-1",
			PathStyle: true,
		},
		Zones: ZonesConfig{
			LandingBucket:   "landing-zone",
			FormattedBucket: "formatted-zone",
			TrustedBucket:   "trusted_zone",
		},
		Ingest: IngestConfig{
			PollInterval:    2 * time.Second,
			MaxRetries:      3,
			CheckpointEvery: 10,
			RequestTimeout:  15 * time.Second,
			SteamOutput:     "steam_games.json",
			SteamSpyOutput:  "steamspy_games.json",
			SteamBaseURL:    "https://store.steampowered.com",
			SteamSpyBaseURL: "https://steamspy.com",
			Currency:        "us",
			Language:        "english",
		},
		Media: MediaConfig{
			Workers:            8,
			ScreenshotsPerGame: 5,
			ImageSize:          256,
			VideoWidth:         1280,
			VideoHeight:        720,
			VideoFPS:           30,
		},
	}
}

// Load reads configuration from files and environment variables.
// Environment variables use the prefix "GAMELAKE" and the dot character in
// keys is replaced by an underscore. For example, "zones.landing_bucket"
// becomes "GAMELAKE_ZONES_LANDING_BUCKET".
func Load() (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.SetEnvPrefix("GAMELAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)
	_ = v.ReadInConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if ids := v.GetString("ingest.app_ids"); ids != "" {
		cfg.Ingest.AppIDs = strings.Split(ids, ",")
	}
	return cfg, nil
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(parts, tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}
