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

package objstore

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3Settings struct {
	region       string
	applyConfigs []func(*aws.Config)
	applyS3s     []func(*s3.Options)
}

// S3Option is a functional option for NewS3Client.
type S3Option func(*s3Settings)

// WithEndpoint forces a custom S3 endpoint (eg MinIO, Ceph).
func WithEndpoint(url string) S3Option {
	return func(c *s3Settings) {
		c.applyS3s = append(c.applyS3s, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(url)
		})
	}
}

// WithRegion overrides the AWS region.
func WithRegion(region string) S3Option {
	return func(c *s3Settings) {
		c.region = region
	}
}

// WithPathStyle uses path-style addressing instead of virtual-host.
// Required for MinIO.
func WithPathStyle() S3Option {
	return func(c *s3Settings) {
		c.applyS3s = append(c.applyS3s, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
}

// WithStaticCredentials bypasses the default credential chain.
func WithStaticCredentials(accessKey, secretKey string) S3Option {
	return func(c *s3Settings) {
		c.applyConfigs = append(c.applyConfigs, func(cfg *aws.Config) {
			cfg.Credentials = credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")
		})
	}
}

// WithInsecureTLS turns off cert verification (for self-signed endpoints).
func WithInsecureTLS() S3Option {
	return func(c *s3Settings) {
		c.applyConfigs = append(c.applyConfigs, func(cfg *aws.Config) {
			tr := http.DefaultTransport.(*http.Transport).Clone()
			tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
			cfg.HTTPClient = &http.Client{Transport: tr}
		})
	}
}

// NewS3Client builds a Client backed by any S3-compatible store.
func NewS3Client(ctx context.Context, opts ...S3Option) (Client, error) {
	settings := &s3Settings{}
	for _, opt := range opts {
		opt(settings)
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if settings.region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(settings.region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	for _, apply := range settings.applyConfigs {
		apply(&cfg)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		for _, apply := range settings.applyS3s {
			apply(o)
		}
	})
	return &s3Client{s3: client}, nil
}
