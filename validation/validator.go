package validation

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/TorrentPicker/fie-dataset/database"
)

// Represents the result of the validation check
type ValidationResult struct {
	TableName    string
	DestTable    string
	IsValid      bool
	ErrorMessage string
	SourceRows   int64
	CopiedRows   int64
	TimeStamp    time.Time
}

// RowCountValidator compares the rows copied by an extraction with the source table's row count
type RowCountValidator struct {
	SourceClient database.DatabaseClient
}

func NewRowCountValidator(source database.DatabaseClient) *RowCountValidator {
	return &RowCountValidator{SourceClient: source}
}

func (v *RowCountValidator) Validate(ctx context.Context, table, dest string, copied int64) ValidationResult {
	result := ValidationResult{
		TableName:  table,
		DestTable:  dest,
		CopiedRows: copied,
		TimeStamp:  time.Now(),
	}

	count, err := v.countRows(ctx, table)
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to count rows of source table %s: %v", table, err)
		return result
	}
	result.SourceRows = count

	if count != copied {
		result.ErrorMessage = fmt.Sprintf("row count mismatch, source: %d, copied: %d", count, copied)
		return result
	}

	result.IsValid = true
	return result
}

func (v *RowCountValidator) countRows(ctx context.Context, table string) (int64, error) {
	if err := database.ValidateIdentifier(table); err != nil {
		return 0, err
	}

	rows, err := v.SourceClient.ExecuteQuery(ctx, "SELECT COUNT(*) FROM "+v.SourceClient.QuoteIdent(table))
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var count int64
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, err
		}
	}
	return count, rows.Err()
}

// struct for validation result summary
type ValidationSummary struct {
	TotalTables    int
	ValidTables    int
	InvalidTables  int
	TotalRows      int64
	ValidationTime time.Duration
	Errors         []string
}

// creating a summary of the validation result
func GenerateValidationSummary(results []ValidationResult, startTime time.Time) ValidationSummary {
	summary := ValidationSummary{
		TotalTables:    len(results),
		ValidationTime: time.Since(startTime),
		Errors:         make([]string, 0),
	}

	for _, result := range results {
		summary.TotalRows += result.CopiedRows

		if result.IsValid {
			summary.ValidTables++
		} else {
			summary.InvalidTables++
			summary.Errors = append(summary.Errors, fmt.Sprintf("Table %s: %s", result.TableName, result.ErrorMessage))
		}
	}
	return summary
}

// printing the formatted summary to stdout
func (s ValidationSummary) Print(phase string) {
	s.Fprint(os.Stdout, phase)
}

func (s ValidationSummary) Fprint(w io.Writer, phase string) {
	fmt.Fprintf(w, "\n==%s Validation Summary==\n", phase)
	fmt.Fprintf(w, "Total Tables: %d\n", s.TotalTables)
	fmt.Fprintf(w, "Valid Tables: %d\n", s.ValidTables)
	fmt.Fprintf(w, "Invalid Tables: %d\n", s.InvalidTables)
	fmt.Fprintf(w, "Total Rows: %d\n", s.TotalRows)

	if len(s.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range s.Errors {
			fmt.Fprintf(w, "-%s\n", err)
		}
	}
	fmt.Fprintln(w, "--------------")
}
