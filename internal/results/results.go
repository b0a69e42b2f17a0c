// Package results reads and writes the experiment result tables: comma
// separated numeric files whose first row is a header.
package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Column layout of a results table.
const (
	ColStep = iota
	ColMessages
	ColGuided
	ColBlind
)

// Header is the header row written by WriteFile.
var Header = []string{"step", "messages", "guided_error_rate", "blind_error_rate"}

// ErrNoData is returned when a table holds no rows after its header.
var ErrNoData = errors.New("results: no data rows")

// Matrix is a rectangular table of observations.
type Matrix struct {
	rows [][]float64
}

// NewMatrix wraps rows, which must all have the same width.
func NewMatrix(rows [][]float64) (*Matrix, error) {
	for i, r := range rows {
		if len(r) != len(rows[0]) {
			return nil, fmt.Errorf("results: row %d has %d columns, want %d", i, len(r), len(rows[0]))
		}
	}
	return &Matrix{rows: rows}, nil
}

// Len is the number of rows.
func (m *Matrix) Len() int { return len(m.rows) }

// Width is the number of columns, 0 for an empty matrix.
func (m *Matrix) Width() int {
	if len(m.rows) == 0 {
		return 0
	}
	return len(m.rows[0])
}

func (m *Matrix) At(i, j int) float64 { return m.rows[i][j] }

// Row returns row i. The slice is shared with the matrix.
func (m *Matrix) Row(i int) []float64 { return m.rows[i] }

// Col returns a copy of column j.
func (m *Matrix) Col(j int) []float64 {
	out := make([]float64, len(m.rows))
	for i, r := range m.rows {
		out[i] = r[j]
	}
	return out
}

// Load reads the table at path and drops its first row. A missing file
// yields an error matching fs.ErrNotExist.
func Load(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Read parses comma separated rows and drops the first one. Cells that are
// empty or not numbers become NaN; rows of differing width are an error.
func Read(r io.Reader) (*Matrix, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("results: %w", err)
	}
	if len(records) > 0 {
		records = records[1:]
	}

	rows := make([][]float64, len(records))
	for i, rec := range records {
		rows[i] = make([]float64, len(rec))
		for j, cell := range rec {
			rows[i][j] = parseCell(cell)
		}
	}
	return &Matrix{rows: rows}, nil
}

func parseCell(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Write emits header and rows as CSV. Integral values are written without a
// fraction.
func Write(w io.Writer, header []string, rows [][]float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	rec := make([]string, 0, len(header))
	for _, r := range rows {
		rec = rec[:0]
		for _, v := range r {
			rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the table to path, replacing any previous file only once
// the new content is complete.
func WriteFile(path string, header []string, rows [][]float64) error {
	return writeAtomic(path, func(w io.Writer) error {
		return Write(w, header, rows)
	})
}

func writeAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("results: write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
