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

// Package runner sequences the pipeline stages. Stages run strictly in
// order, the first failure stops the run, and every stage's wall-clock
// duration is recorded. Retrying is the operator's job, not the runner's.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/PelleWhitebear/gamelake/internal/logctx"
)

// Stage is one named step of the pipeline.
type Stage struct {
	Name string
	Run  func(ctx context.Context) error
}

// StageResult records one executed stage.
type StageResult struct {
	Name     string
	Duration time.Duration
	Err      error
}

// Result summarizes a run.
type Result struct {
	RunID  string
	Stages []StageResult
	Failed string // name of the failed stage, empty on success
}

// Runner executes stages sequentially.
type Runner struct {
	stages []Stage
	now    func() time.Time
}

// New builds a runner over the given stages.
func New(stages []Stage) *Runner {
	return &Runner{stages: stages, now: time.Now}
}

// Run executes each stage in order. The run ID is attached to the logger
// so every stage's output correlates. On a stage error the remaining
// stages are not started; the result still carries the timings of
// everything that ran.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	res := Result{RunID: uuid.New().String()}
	ll := logctx.FromContext(ctx).With("run_id", res.RunID)
	ctx = logctx.WithLogger(ctx, ll)

	start := r.now()
	ll.Info("Pipeline run starting", "stages", len(r.stages))

	for _, stage := range r.stages {
		sll := ll.With("stage", stage.Name)
		sll.Info("Stage starting")

		stageStart := r.now()
		err := stage.Run(logctx.WithLogger(ctx, sll))
		elapsed := r.now().Sub(stageStart)

		res.Stages = append(res.Stages, StageResult{Name: stage.Name, Duration: elapsed, Err: err})
		if err != nil {
			res.Failed = stage.Name
			sll.Error("Stage failed", "elapsed", elapsed, "error", err)
			return res, fmt.Errorf("stage %s: %w", stage.Name, err)
		}
		sll.Info("Stage completed", "elapsed", elapsed)
	}

	ll.Info("Pipeline run completed", "elapsed", r.now().Sub(start))
	return res, nil
}
