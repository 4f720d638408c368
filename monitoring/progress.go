package monitoring

import (
	"fmt"
	"io"
	"os"
	"time"
)

// tracks one extraction run; used from a single goroutine
type RunTracker struct {
	totalRows       int64
	totalTables     int
	processedTables int
	skippedTables   int
	failedTables    int
	startTime       time.Time
	currentTable    string
	errors          []string
	out             io.Writer
}

// struct holding run metrics
type RunMetrics struct {
	TotalRows       int64
	TotalTables     int
	ProcessedTables int
	SkippedTables   int
	FailedTables    int
	RowsPerSecond   float64
	ElapsedTime     time.Duration
	CurrentTable    string
	ErrorCount      int
}

// creating a new run tracker for the given number of extraction jobs
func NewRunTracker(totalTables int, out io.Writer) *RunTracker {
	if out == nil {
		out = os.Stdout
	}
	return &RunTracker{
		totalTables: totalTables,
		startTime:   time.Now(),
		errors:      make([]string, 0),
		out:         out,
	}
}

func (rt *RunTracker) AddRows(rows int64) {
	rt.totalRows += rows
}

func (rt *RunTracker) SetCurrentTable(tableName string) {
	rt.currentTable = tableName
}

func (rt *RunTracker) CompletedTable() {
	rt.processedTables++
}

// source table was absent
func (rt *RunTracker) SkippedTable() {
	rt.skippedTables++
}

func (rt *RunTracker) FailedTable(tableName, err string) {
	rt.failedTables++
	rt.AddError(tableName, err)
}

func (rt *RunTracker) AddError(tableName, err string) {
	rt.errors = append(rt.errors, fmt.Sprintf("[%s] %s: %s", time.Now().Format("15:04:05"), tableName, err))
}

func (rt *RunTracker) GetMetrics() RunMetrics {
	elapsedTime := time.Since(rt.startTime)

	var rowsPerSecond float64
	if elapsedTime.Seconds() > 0 {
		rowsPerSecond = float64(rt.totalRows) / elapsedTime.Seconds()
	}

	return RunMetrics{
		TotalRows:       rt.totalRows,
		TotalTables:     rt.totalTables,
		ProcessedTables: rt.processedTables,
		SkippedTables:   rt.skippedTables,
		FailedTables:    rt.failedTables,
		RowsPerSecond:   rowsPerSecond,
		ElapsedTime:     elapsedTime,
		CurrentTable:    rt.currentTable,
		ErrorCount:      len(rt.errors),
	}
}

// returning the most recent errors(up to limit)
func (rt *RunTracker) GetRecentErrors(limit int) []string {
	if len(rt.errors) <= limit {
		return rt.errors
	}
	return rt.errors[len(rt.errors)-limit:]
}

// formats the duration in a human readable way
func formatDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	} else {
		return fmt.Sprintf("%ds", seconds)
	}
}

// printing final run summary
func (rt *RunTracker) PrintFinalSummary() {
	metrics := rt.GetMetrics()

	fmt.Fprintln(rt.out, "\n=====Extraction Summary====")
	fmt.Fprintf(rt.out, "Total Duration: %v\n", formatDuration(metrics.ElapsedTime))
	fmt.Fprintf(rt.out, "Rows Copied: %d\n", metrics.TotalRows)
	fmt.Fprintf(rt.out, "Tables Exported: %d / %d\n", metrics.ProcessedTables, metrics.TotalTables)
	fmt.Fprintf(rt.out, "Tables Skipped: %d\n", metrics.SkippedTables)
	fmt.Fprintf(rt.out, "Tables Failed: %d\n", metrics.FailedTables)

	if metrics.ErrorCount > 0 {
		fmt.Fprintf(rt.out, "Errors Encountered: %d\n", metrics.ErrorCount)
		fmt.Fprintln(rt.out, "\nRecent Errors:")
		for _, err := range rt.GetRecentErrors(5) {
			fmt.Fprintf(rt.out, " -%s\n", err)
		}
	}
	fmt.Fprintln(rt.out, "=============")
}
