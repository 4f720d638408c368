package migration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// lowest bound-parameter limit of the supported dialects (SQLite's default)
const maxBindParams = 32766

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// BatchWriter collects rows and writes each full batch as one multi-row INSERT
type BatchWriter struct {
	exec        execer
	prefix      string // INSERT INTO t (a, b) VALUES
	width       int
	batchSize   int
	placeholder func(n int) string

	pending [][]any
	rows    int64
	batches int
}

// creating a new batch writer; the batch size is capped so one statement stays under the bind limit
func NewBatchWriter(exec execer, table string, columns []string, batchSize int, placeholder func(n int) string) *BatchWriter {
	if batchSize < 1 {
		batchSize = 1
	}
	if limit := maxBindParams / max(len(columns), 1); batchSize > limit {
		batchSize = limit
	}

	return &BatchWriter{
		exec:        exec,
		prefix:      fmt.Sprintf("INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", ")),
		width:       len(columns),
		batchSize:   batchSize,
		placeholder: placeholder,
		pending:     make([][]any, 0, batchSize),
	}
}

// adds a row, flushing once the batch is full
func (w *BatchWriter) Add(ctx context.Context, row []any) error {
	if len(row) != w.width {
		return fmt.Errorf("row has %d values, expected %d", len(row), w.width)
	}
	w.pending = append(w.pending, row)
	if len(w.pending) >= w.batchSize {
		return w.Flush(ctx)
	}
	return nil
}

// writes the pending rows, if any
func (w *BatchWriter) Flush(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}

	query, args := w.statement()
	if _, err := w.exec.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert batch %d (%d rows): %w", w.batches+1, len(w.pending), err)
	}

	w.rows += int64(len(w.pending))
	w.batches++
	w.pending = w.pending[:0]
	return nil
}

func (w *BatchWriter) statement() (string, []any) {
	var sb strings.Builder
	sb.WriteString(w.prefix)

	args := make([]any, 0, len(w.pending)*w.width)
	n := 1
	for i, row := range w.pending {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j := range row {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(w.placeholder(n))
			n++
		}
		sb.WriteByte(')')
		args = append(args, row...)
	}
	return sb.String(), args
}

// rows written so far
func (w *BatchWriter) Rows() int64 { return w.rows }

// statements executed so far
func (w *BatchWriter) Batches() int { return w.batches }

// effective batch size after capping
func (w *BatchWriter) BatchSize() int { return w.batchSize }
