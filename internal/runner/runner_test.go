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

package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExecutesStagesInOrder(t *testing.T) {
	var order []string
	r := New([]Stage{
		{Name: "first", Run: func(context.Context) error { order = append(order, "first"); return nil }},
		{Name: "second", Run: func(context.Context) error { order = append(order, "second"); return nil }},
		{Name: "third", Run: func(context.Context) error { order = append(order, "third"); return nil }},
	})

	res, err := r.Run(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, order)
	assert.Empty(t, res.Failed)
	assert.NotEmpty(t, res.RunID)
	require.Len(t, res.Stages, 3)
	assert.Equal(t, "first", res.Stages[0].Name)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	ran := false
	r := New([]Stage{
		{Name: "ok", Run: func(context.Context) error { return nil }},
		{Name: "fails", Run: func(context.Context) error { return boom }},
		{Name: "never", Run: func(context.Context) error { ran = true; return nil }},
	})

	res, err := r.Run(t.Context())
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, "fails", res.Failed)
	assert.False(t, ran, "stages after a failure must not start")
	require.Len(t, res.Stages, 2)
	assert.Error(t, res.Stages[1].Err)
}

func TestRunRecordsDurations(t *testing.T) {
	base := time.Date(2025, 4, 27, 18, 41, 0, 0, time.UTC)
	tick := 0
	r := New([]Stage{
		{Name: "a", Run: func(context.Context) error { return nil }},
		{Name: "b", Run: func(context.Context) error { return nil }},
	})
	r.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	res, err := r.Run(t.Context())
	require.NoError(t, err)
	require.Len(t, res.Stages, 2)
	for _, stage := range res.Stages {
		assert.Equal(t, time.Second, stage.Duration)
	}
}

func TestRunDistinctRunIDs(t *testing.T) {
	r := New(nil)
	a, err := r.Run(t.Context())
	require.NoError(t, err)
	b, err := r.Run(t.Context())
	require.NoError(t, err)
	assert.NotEqual(t, a.RunID, b.RunID)
}
