package migration

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/TorrentPicker/fie-dataset/config"
	"github.com/TorrentPicker/fie-dataset/monitoring"
	"github.com/TorrentPicker/fie-dataset/validation"
)

func TestRunnerOnlyFirstApplicationPresent(t *testing.T) {
	source, target := newTestDatabases(t)
	seedDownloadHistory(t, source, 5)
	mustExec(t, source, `CREATE TABLE TRANSFER_HISTORY (TYPE TEXT, TMDBID INTEGER, TITLE TEXT, YEAR TEXT, SEASON_EPISODE TEXT, SOURCE_FILENAME TEXT, DEST_FILENAME TEXT)`)
	mustExec(t, source, `INSERT INTO TRANSFER_HISTORY VALUES ('MOV', 1, 'Movie 1', '2001', '', 'a.mkv', 'b.mkv')`)

	var out bytes.Buffer
	tracker := monitoring.NewRunTracker(len(config.DefaultJobs()), &out)
	runner := NewRunner(newTestExtractor(source, target, 2), validation.NewRowCountValidator(source), tracker)

	run, err := runner.Run(context.Background(), config.DefaultJobs())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(run.Results) != 5 {
		t.Fatalf("Expected 5 results, got %d", len(run.Results))
	}
	expected := []Status{StatusSuccess, StatusSuccess, StatusSkipped, StatusSkipped, StatusSkipped}
	for i, status := range expected {
		if run.Results[i].Status != status {
			t.Errorf("Job %d (%s) status = %s, expected %s", i+1, run.Results[i].Job.Source, run.Results[i].Status, status)
		}
	}

	names := tableNames(t, target)
	if strings.Join(names, ",") != "NT_DOWNLOAD_HISTORY,NT_TRANSFER_HISTORY" {
		t.Errorf("Expected only nas-tools tables, got %v", names)
	}

	if len(run.Validation) != 2 {
		t.Fatalf("Expected 2 validation results, got %d", len(run.Validation))
	}
	for _, v := range run.Validation {
		if !v.IsValid {
			t.Errorf("Expected valid row counts for %s, got %s", v.TableName, v.ErrorMessage)
		}
	}

	metrics := tracker.GetMetrics()
	if metrics.TotalRows != 6 || metrics.ProcessedTables != 2 || metrics.SkippedTables != 3 || metrics.FailedTables != 0 {
		t.Errorf("Unexpected metrics %+v", metrics)
	}
}

func TestRunnerContinuesAfterFailure(t *testing.T) {
	source, target := newTestDatabases(t)
	seedDownloadHistory(t, source, 3)

	jobs := []config.Job{
		{Source: "DOWNLOAD_HISTORY", Columns: []string{"TITLE", "MISSING"}, Dest: "BROKEN"},
		{Source: "DOWNLOAD_HISTORY", Columns: []string{"TITLE", "YEAR"}, Dest: "NT_DOWNLOAD_HISTORY"},
	}

	tracker := monitoring.NewRunTracker(len(jobs), io.Discard)
	run, err := NewRunner(newTestExtractor(source, target, 100), nil, tracker).Run(context.Background(), jobs)
	if err != nil {
		t.Fatalf("Expected run to continue, got %v", err)
	}

	if run.Results[0].Status != StatusFailed || run.Results[1].Status != StatusSuccess {
		t.Errorf("Unexpected statuses %s, %s", run.Results[0].Status, run.Results[1].Status)
	}
	if run.Validation != nil {
		t.Errorf("Expected no validation without a validator")
	}

	metrics := tracker.GetMetrics()
	if metrics.FailedTables != 1 || metrics.ErrorCount != 1 {
		t.Errorf("Expected one failed table recorded, got %+v", metrics)
	}
}

func TestRunnerStopOnError(t *testing.T) {
	source, target := newTestDatabases(t)
	seedDownloadHistory(t, source, 3)

	jobs := []config.Job{
		{Source: "DOWNLOAD_HISTORY", Columns: []string{"NOPE"}, Dest: "BROKEN"},
		{Source: "DOWNLOAD_HISTORY", Columns: []string{"TITLE"}, Dest: "NT_DOWNLOAD_HISTORY"},
	}

	runner := NewRunner(newTestExtractor(source, target, 100), nil, nil)
	runner.StopOnError = true

	run, err := runner.Run(context.Background(), jobs)
	if err == nil {
		t.Fatalf("Expected error with StopOnError, got nil")
	}
	if len(run.Results) != 1 {
		t.Errorf("Expected the run to stop after the first job, got %d results", len(run.Results))
	}
	if names := tableNames(t, target); len(names) != 0 {
		t.Errorf("Expected no destination tables, got %v", names)
	}
}

func TestRunnerCancelledContext(t *testing.T) {
	source, target := newTestDatabases(t)
	seedDownloadHistory(t, source, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := NewRunner(newTestExtractor(source, target, 100), nil, nil).Run(ctx, config.DefaultJobs())
	if err == nil {
		t.Errorf("Expected context error, got nil")
	}
	if len(run.Results) != 0 {
		t.Errorf("Expected no jobs to run, got %d", len(run.Results))
	}
}
