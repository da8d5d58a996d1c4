package engine

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// LoadError reports a dataset that could not be turned into a Table.
// It is fatal for the dashboard: without data there is nothing to serve.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load dataset %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadTable reads a delimited (.csv) or spreadsheet (.xlsx) file into a Table.
func LoadTable(path string, logger *zap.Logger) (*Table, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()
	logger.Info("Loading dataset", zap.String("path", path))

	var (
		t   *Table
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		t, err = loadXLSX(path)
	default:
		t, err = loadCSV(path)
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	logger.Info("Load complete",
		zap.Int("rows", t.NumRows()),
		zap.Int("columns", len(t.columns)),
		zap.Duration("elapsed", time.Since(start)))
	return t, nil
}

func loadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses CSV content with a header row into a Table.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	b, err := newTableBuilder(header, 0)
	if err != nil {
		return nil, err
	}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if isBlankRow(row) {
			continue
		}
		b.appendRow(row)
	}
	return b.build()
}

func loadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoHeader
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}

	b, err := newTableBuilder(rows[0], len(rows)-1)
	if err != nil {
		return nil, err
	}
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		b.appendRow(row)
	}
	return b.build()
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
