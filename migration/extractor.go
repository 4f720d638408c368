package migration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/TorrentPicker/fie-dataset/config"
	"github.com/TorrentPicker/fie-dataset/database"
)

var (
	ErrUnknownColumn  = errors.New("column not found in source table")
	ErrSchemaMismatch = errors.New("destination table does not have the requested columns")
	ErrNoColumns      = errors.New("no columns requested")
)

// outcome of one extraction call
type Status int

const (
	StatusPending Status = iota // not run yet
	StatusSuccess
	StatusSkipped // source table does not exist
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result of one extraction call
type Result struct {
	Job      config.Job
	Status   Status
	Rows     int64 // rows inserted into the destination
	Batches  int   // INSERT statements executed
	Created  bool  // destination table was created by this call
	Err      error
	Duration time.Duration
}

// Extractor copies chosen columns of source tables into destination tables
type Extractor struct {
	Source    database.DatabaseClient
	Target    database.DatabaseClient
	BatchSize int
	Out       io.Writer
}

func NewExtractor(source, target database.DatabaseClient, batchSize int) *Extractor {
	if batchSize < 1 {
		batchSize = config.DefaultBatchSize
	}
	return &Extractor{
		Source:    source,
		Target:    target,
		BatchSize: batchSize,
		Out:       os.Stdout,
	}
}

// Extract copies job.Columns of every row of job.Source into job.Dest, creating job.Dest if absent.
// A missing source table is reported as StatusSkipped and leaves the destination untouched.
func (e *Extractor) Extract(ctx context.Context, job config.Job) (result Result) {
	start := time.Now()
	result = Result{Job: job}
	defer func() {
		result.Duration = time.Since(start)
		if result.Err != nil {
			result.Status = StatusFailed
			e.printf("error extracting table '%s': %v\n", job.Source, result.Err)
		}
	}()

	if err := validateJob(job); err != nil {
		result.Err = err
		return result
	}

	exists, err := e.Source.TableExists(ctx, job.Source)
	if err != nil {
		result.Err = err
		return result
	}
	if !exists {
		e.printf("table '%s' does not exist in the source database\n", job.Source)
		result.Status = StatusSkipped
		return result
	}

	e.printf("exporting table '%s'...\n", job.Source)

	sourceCols, err := e.Source.TableColumns(ctx, job.Source)
	if err != nil {
		result.Err = err
		return result
	}
	selected, err := selectColumns(sourceCols, job.Columns)
	if err != nil {
		result.Err = fmt.Errorf("table %s: %w", job.Source, err)
		return result
	}

	// source names keep the catalog spelling, destination names the requested one
	sourceNames := make([]string, len(selected))
	columns := make([]database.Column, len(selected))
	for i, col := range selected {
		if err := database.ValidateColumnType(col.Type); err != nil {
			result.Err = fmt.Errorf("table %s column %s: %w", job.Source, col.Name, err)
			return result
		}
		sourceNames[i] = col.Name
		columns[i] = database.Column{Name: job.Columns[i], Type: col.Type}
	}

	created, err := e.prepareTarget(ctx, job.Dest, columns)
	if err != nil {
		result.Err = err
		return result
	}
	result.Created = created

	rows, batches, err := e.copyRows(ctx, job, sourceNames)
	result.Rows = rows
	result.Batches = batches
	if err != nil {
		result.Err = err
		return result
	}

	result.Status = StatusSuccess
	return result
}

// creates the destination table if absent; an existing one must hold every requested column
func (e *Extractor) prepareTarget(ctx context.Context, table string, columns []database.Column) (bool, error) {
	exists, err := e.Target.TableExists(ctx, table)
	if err != nil {
		return false, err
	}

	if !exists {
		query := createTableSQL(e.Target, table, columns)
		if _, err := e.Target.Conn().ExecContext(ctx, query); err != nil {
			return false, fmt.Errorf("failed to create table %s: %w", table, err)
		}
		e.printf("table '%s' created\n", table)
		return true, nil
	}

	existing, err := e.Target.TableColumns(ctx, table)
	if err != nil {
		return false, err
	}
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}
	if _, err := selectColumns(existing, names); err != nil {
		return false, fmt.Errorf("%w: table %s: %v", ErrSchemaMismatch, table, err)
	}
	return false, nil
}

// streams the source rows into the destination inside one transaction
func (e *Extractor) copyRows(ctx context.Context, job config.Job, sourceColumns []string) (rowCount int64, batches int, err error) {
	tx, err := e.Target.Conn().BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	writer := NewBatchWriter(tx, e.Target.QuoteIdent(job.Dest), quoteAll(e.Target, job.Columns), e.BatchSize, e.Target.Placeholder)

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoteAll(e.Source, sourceColumns), ", "), e.Source.QuoteIdent(job.Source))
	rows, err := e.Source.ExecuteQuery(ctx, query)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query table %s: %w", job.Source, err)
	}
	defer rows.Close()

	for rows.Next() {
		values := make([]any, len(job.Columns))
		ptrs := make([]any, len(job.Columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err = rows.Scan(ptrs...); err != nil {
			return 0, 0, fmt.Errorf("failed to scan row: %w", err)
		}
		if err = writer.Add(ctx, values); err != nil {
			return 0, 0, err
		}
	}
	if err = rows.Err(); err != nil {
		return 0, 0, fmt.Errorf("error during the row iteration: %w", err)
	}

	// remaining partial batch
	if err = writer.Flush(ctx); err != nil {
		return 0, 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return writer.Rows(), writer.Batches(), nil
}

func (e *Extractor) printf(format string, args ...any) {
	if e.Out == nil {
		return
	}
	fmt.Fprintf(e.Out, format, args...)
}

func validateJob(job config.Job) error {
	if err := database.ValidateIdentifier(job.Source); err != nil {
		return err
	}
	if err := database.ValidateIdentifier(job.Dest); err != nil {
		return err
	}
	if len(job.Columns) == 0 {
		return ErrNoColumns
	}

	seen := make(map[string]bool, len(job.Columns))
	for _, col := range job.Columns {
		if err := database.ValidateIdentifier(col); err != nil {
			return err
		}
		key := strings.ToLower(col)
		if seen[key] {
			return fmt.Errorf("column %s requested twice", col)
		}
		seen[key] = true
	}
	return nil
}

// picks the requested columns, in request order, as the table declares them.
// Names compare case-insensitively like SQL identifiers.
func selectColumns(available []database.Column, requested []string) ([]database.Column, error) {
	byName := make(map[string]database.Column, len(available))
	for _, col := range available {
		byName[strings.ToLower(col.Name)] = col
	}

	out := make([]database.Column, 0, len(requested))
	for _, name := range requested {
		col, ok := byName[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
		}
		out = append(out, col)
	}
	return out, nil
}

func createTableSQL(client database.DatabaseClient, table string, columns []database.Column) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = client.QuoteIdent(col.Name)
		if col.Type != "" {
			defs[i] += " " + col.Type
		}
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", client.QuoteIdent(table), strings.Join(defs, ", "))
}

func quoteAll(client database.DatabaseClient, ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = client.QuoteIdent(id)
	}
	return out
}
