package parser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"agromarket-backend/internal/domains/product/model"
)

var csvLayout = layout{
	required: []string{ColName, ColCategory, ColUnit, ColBasePrice, ColPrice},
}

// ParseCSV reads a comma or semicolon separated file with a header line
func ParseCSV(r io.Reader, opts Options) (*Result, error) {
	br := bufio.NewReader(r)

	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(br)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CSV: %v", model.ErrInvalidFile, err)
	}

	res, err := parseRecords(records, csvLayout, opts)
	if err != nil {
		return nil, err
	}
	res.Sheet = "csv"

	return res, nil
}

// sniffDelimiter picks ';' when the header line has more semicolons than commas,
// which is what spreadsheet software writes under a Turkish locale.
func sniffDelimiter(br *bufio.Reader) rune {
	line, _ := br.Peek(br.Size())
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}
