package migration

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/TorrentPicker/fie-dataset/config"
	"github.com/TorrentPicker/fie-dataset/monitoring"
	"github.com/TorrentPicker/fie-dataset/validation"
)

// Runner executes a sequence of extraction jobs against one source and one destination
type Runner struct {
	Extractor   *Extractor
	Validator   *validation.RowCountValidator // optional
	Tracker     *monitoring.RunTracker        // optional
	StopOnError bool
}

// Results of the run
type RunResult struct {
	Results    []Result
	Validation []validation.ValidationResult
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}

func NewRunner(extractor *Extractor, validator *validation.RowCountValidator, tracker *monitoring.RunTracker) *Runner {
	return &Runner{
		Extractor: extractor,
		Validator: validator,
		Tracker:   tracker,
	}
}

// Run executes the jobs in order. Skipped and failed jobs do not stop the run unless
// StopOnError is set, in which case the first failure is returned.
func (r *Runner) Run(ctx context.Context, jobs []config.Job) (*RunResult, error) {
	run := &RunResult{
		StartTime: time.Now(),
		Results:   make([]Result, 0, len(jobs)),
	}
	defer func() {
		run.EndTime = time.Now()
		run.Duration = run.EndTime.Sub(run.StartTime)
	}()

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return run, err
		}

		if r.Tracker != nil {
			r.Tracker.SetCurrentTable(job.Source)
		}

		result := r.Extractor.Extract(ctx, job)
		run.Results = append(run.Results, result)
		r.track(result)

		if result.Status == StatusSuccess && r.Validator != nil {
			v := r.Validator.Validate(ctx, job.Source, job.Dest, result.Rows)
			run.Validation = append(run.Validation, v)
			if !v.IsValid && r.Tracker != nil {
				r.Tracker.AddError(job.Source, v.ErrorMessage)
			}
		}

		if result.Status == StatusFailed && r.StopOnError {
			return run, fmt.Errorf("extraction of table %s failed: %w", job.Source, result.Err)
		}
	}

	log.Printf("Extraction of %d tables finished in %v", len(jobs), time.Since(run.StartTime))
	return run, nil
}

func (r *Runner) track(result Result) {
	if r.Tracker == nil {
		return
	}
	switch result.Status {
	case StatusSuccess:
		r.Tracker.AddRows(result.Rows)
		r.Tracker.CompletedTable()
	case StatusSkipped:
		r.Tracker.SkippedTable()
	case StatusFailed:
		r.Tracker.FailedTable(result.Job.Source, result.Err.Error())
	}
}
