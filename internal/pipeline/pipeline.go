package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// StageState represents the state of an individual stage
type StageState string

const (
	StageStatePending   StageState = "pending"
	StageStateRunning   StageState = "running"
	StageStateCompleted StageState = "completed"
	StageStateFailed    StageState = "failed"
	StageStateSkipped   StageState = "skipped"
)

// StageID uniquely identifies a stage within a run
type StageID string

// Stage is a single sequential step of a pipeline run. Each stage
// consumes the output of the previous one through shared request-scoped
// state captured by Run.
type Stage struct {
	ID  StageID
	Run func(ctx context.Context) error
	// NonFatal marks a stage whose failure is recorded but does not
	// abort the run; remaining stages still execute.
	NonFatal bool
}

// StageExecution records the outcome of one stage
type StageExecution struct {
	ID          StageID    `json:"id"`
	State       StageState `json:"state"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Runner executes pipeline stages strictly in order
type Runner struct {
	logger *zap.Logger
}

// NewRunner creates a new pipeline runner
func NewRunner(logger *zap.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run executes the stages sequentially. The first failure of a fatal
// stage stops the run: later stages are marked skipped and the stage's
// error is returned. A NonFatal stage failure is recorded and the run
// continues. The returned executions always cover every stage.
func (r *Runner) Run(ctx context.Context, name string, stages []Stage) ([]StageExecution, error) {
	execs := make([]StageExecution, len(stages))
	for i, stage := range stages {
		execs[i] = StageExecution{ID: stage.ID, State: StageStatePending}
	}

	var runErr error

	for i, stage := range stages {
		if runErr != nil {
			execs[i].State = StageStateSkipped
			continue
		}

		if err := ctx.Err(); err != nil {
			execs[i].State = StageStateSkipped
			runErr = fmt.Errorf("pipeline %s cancelled: %w", name, err)
			continue
		}

		started := time.Now()
		execs[i].State = StageStateRunning
		execs[i].StartedAt = &started

		r.logger.Info("Pipeline stage started",
			zap.String("pipeline", name),
			zap.String("stage", string(stage.ID)))

		err := stage.Run(ctx)

		completed := time.Now()
		execs[i].CompletedAt = &completed

		if err == nil {
			execs[i].State = StageStateCompleted
			r.logger.Info("Pipeline stage completed",
				zap.String("pipeline", name),
				zap.String("stage", string(stage.ID)),
				zap.Duration("elapsed", completed.Sub(started)))
			continue
		}

		execs[i].State = StageStateFailed
		execs[i].Error = err.Error()

		if stage.NonFatal {
			r.logger.Warn("Pipeline stage failed, continuing",
				zap.String("pipeline", name),
				zap.String("stage", string(stage.ID)),
				zap.Error(err))
			continue
		}

		r.logger.Error("Pipeline stage failed",
			zap.String("pipeline", name),
			zap.String("stage", string(stage.ID)),
			zap.Error(err))
		runErr = err
	}

	return execs, runErr
}
