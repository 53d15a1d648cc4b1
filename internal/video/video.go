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

// Package video shells out to ffmpeg/ffprobe for container conversion and
// stream normalization. Probing doubles as the corruption gate for the
// trusted zone.
package video

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrToolMissing is returned when ffmpeg/ffprobe are not installed.
var ErrToolMissing = errors.New("ffmpeg tooling not found in PATH")

// Tool runs ffmpeg and ffprobe.
type Tool struct {
	ffmpeg  string
	ffprobe string
}

// NewTool locates the ffmpeg binaries.
func NewTool() (*Tool, error) {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("%w: ffmpeg", ErrToolMissing)
	}
	ffprobe, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("%w: ffprobe", ErrToolMissing)
	}
	return &Tool{ffmpeg: ffmpeg, ffprobe: ffprobe}, nil
}

// Probe checks that the file decodes as a valid media container. A failed
// probe means the bytes are corrupt or not a video.
func (t *Tool) Probe(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, t.ffprobe,
		"-v", "error",
		"-show_format",
		"-show_streams",
		path,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("probe %s: %v: %s", path, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Convert transcodes in to the canonical container/codec (h264 mp4)
// without touching frame geometry or rate.
func (t *Tool) Convert(ctx context.Context, in, out string) error {
	cmd := exec.CommandContext(ctx, t.ffmpeg,
		"-y",
		"-i", in,
		"-c:v", "libx264",
		"-c:a", "aac",
		out,
	)
	if o, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("convert %s: %v: %s", in, err, lastLine(o))
	}
	return nil
}

// NormalizeArgs describes the trusted-zone stream normalization.
type NormalizeArgs struct {
	Width  int
	Height int
	FPS    int
}

// Normalize standardizes frame rate and resolution, padding to the target
// geometry with the aspect ratio preserved.
func (t *Tool) Normalize(ctx context.Context, in, out string, args NormalizeArgs) error {
	filter := fmt.Sprintf(
		"fps=fps=%d:round=up,scale=w=%d:h=%d:force_original_aspect_ratio=decrease,pad=w=%d:h=%d:x=(ow-iw)/2:y=(oh-ih)/2",
		args.FPS, args.Width, args.Height, args.Width, args.Height,
	)
	cmd := exec.CommandContext(ctx, t.ffmpeg,
		"-y",
		"-i", in,
		"-vf", filter,
		"-c:v", "libx264",
		"-c:a", "aac",
		out,
	)
	if o, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("normalize %s: %v: %s", in, err, lastLine(o))
	}
	return nil
}

// lastLine trims ffmpeg's noisy output down to its final (usually
// diagnostic) line for error messages.
func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
