package harmonize

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/r2x-tools/reedsmap/internal/mapping"
)

// ErrNotCSV is returned when a dataset's file is not a CSV and therefore
// cannot be harmonized by this engine (e.g. the .h5 hourly profiles, which
// the mapping only references by name).
var ErrNotCSV = errors.New("dataset file is not a csv")

// ctxCheckInterval is how many rows are processed between context checks.
const ctxCheckInterval = 1000

// Harmonizable reports whether a dataset's file can go through the CSV
// engine. Returns ErrNotCSV for binary profile formats such as HDF5.
func Harmonizable(e mapping.Entry) error {
	if !strings.HasSuffix(strings.ToLower(e.Fname), ".csv") {
		return fmt.Errorf("%w: %s", ErrNotCSV, e.Fname)
	}
	return nil
}

// Result summarizes a completed harmonization run.
type Result struct {
	RunID    string   `json:"run_id"`
	Dataset  string   `json:"dataset"`
	Fname    string   `json:"fname"`
	Columns  []string `json:"columns"`
	Unmapped []string `json:"unmapped,omitempty"`
	Rows     int      `json:"rows"`
	// BytesRead counts sanitized input bytes, for progress and audit.
	BytesRead int64         `json:"bytes_read"`
	Duration  time.Duration `json:"-"`
}

// CSV streams a ReEDS CSV through an entry's column mapping: the header is
// renamed to canonical R2X names, values of flagged datasets are normalized,
// and the result is written to w as it is read. The input never needs to fit
// in memory.
func CSV(ctx context.Context, dataset string, e mapping.Entry, r io.Reader, w io.Writer) (*Result, error) {
	start := time.Now()

	counted := Wrap(r, 0)
	reader := csv.NewReader(counted)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	writer := csv.NewWriter(w)

	result := &Result{
		RunID:   uuid.NewString(),
		Dataset: dataset,
		Fname:   e.Fname,
	}

	header, err := readHeader(reader, e)
	if err != nil {
		return nil, err
	}
	result.Columns, result.Unmapped = RenameHeader(header, e)

	if err := writer.Write(result.Columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	// Column positions that need value normalization.
	normalize := normalizeIndex(result.Columns, e)

	for {
		if result.Rows%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", result.Rows+1, err)
		}

		out := make([]string, len(row))
		for i, cell := range row {
			cell = CleanCell(cell)
			if fn, ok := normalize[i]; ok {
				cell = fn(cell)
			}
			out[i] = cell
		}

		if err := writer.Write(out); err != nil {
			return nil, fmt.Errorf("write row %d: %w", result.Rows+1, err)
		}
		result.Rows++
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush output: %w", err)
	}

	result.BytesRead = counted.BytesRead
	result.Duration = time.Since(start)
	return result, nil
}

// readHeader returns the column names of the file: the declared columns for
// headerless files, otherwise the first row.
func readHeader(reader *csv.Reader, e mapping.Entry) ([]string, error) {
	if len(e.Columns) > 0 {
		return e.Columns, nil
	}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	// ReuseRecord means the slice is only valid until the next Read.
	out := make([]string, len(header))
	copy(out, header)
	return out, nil
}

// normalizeIndex maps column positions to their value normalizers.
func normalizeIndex(columns []string, e mapping.Entry) map[int]func(string) string {
	normalizers := Normalizers(e)
	if len(normalizers) == 0 {
		return nil
	}

	idx := make(map[int]func(string) string)
	for i, col := range columns {
		if fn, ok := normalizers[col]; ok {
			idx[i] = fn
		}
	}
	return idx
}
