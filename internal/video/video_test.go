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

package video

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireTool(t *testing.T) *Tool {
	t.Helper()
	tool, err := NewTool()
	if errors.Is(err, ErrToolMissing) {
		t.Skip("ffmpeg not installed")
	}
	require.NoError(t, err)
	return tool
}

func TestProbeRejectsGarbage(t *testing.T) {
	tool := requireTool(t)

	path := filepath.Join(t.TempDir(), "garbage.mp4")
	require.NoError(t, os.WriteFile(path, []byte("this is not a video"), 0o644))

	assert.Error(t, tool.Probe(t.Context(), path))
}

func TestProbeMissingFile(t *testing.T) {
	tool := requireTool(t)
	assert.Error(t, tool.Probe(t.Context(), filepath.Join(t.TempDir(), "missing.mp4")))
}

func TestLastLine(t *testing.T) {
	assert.Equal(t, "final", lastLine([]byte("first\nsecond\nfinal\n")))
	assert.Equal(t, "only", lastLine([]byte("only")))
	assert.Equal(t, "", lastLine(nil))
}
