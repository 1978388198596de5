package parser

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"agromarket-backend/internal/domains/product/model"
)

// Defaults for uploaded files
const (
	DefaultMaxRows     = 1000
	DefaultMaxFileSize = 10 * 1024 * 1024
)

// Options bound what a single file may contain
type Options struct {
	MaxRows     int
	MaxFileSize int64
}

// DefaultOptions returns the limits used by the HTTP importer
func DefaultOptions() Options {
	return Options{MaxRows: DefaultMaxRows, MaxFileSize: DefaultMaxFileSize}
}

// Result is the ordered output of a parse.
// Rows with parse problems are reported in Errors and left out of Rows.
type Result struct {
	Rows      []model.RawRow
	Errors    []model.ImportError
	TotalRows int
	Sheet     string
}

// Parse reads an uploaded spreadsheet, choosing the reader by file extension
func Parse(filename string, r io.Reader, opts Options) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".xlsx" && ext != ".xls" && ext != ".csv" {
		return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedFormat, ext)
	}

	data, err := io.ReadAll(io.LimitReader(r, opts.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidFile, err)
	}
	if int64(len(data)) > opts.MaxFileSize {
		return nil, fmt.Errorf("%w (max %dMB)", model.ErrFileTooLarge, opts.MaxFileSize/(1024*1024))
	}

	if ext == ".csv" {
		return ParseCSV(bytes.NewReader(data), opts)
	}
	return ParseExcel(bytes.NewReader(data), opts)
}
