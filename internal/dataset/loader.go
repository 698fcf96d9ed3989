package dataset

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Load reads a CSV file from disk and parses its typed columns.
func Load(path string, cols Columns) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	ds, err := Parse(data, cols)
	if err != nil {
		return nil, err
	}
	ds.Path = path
	return ds, nil
}

// Parse parses raw CSV bytes. The first row is the header.
func Parse(data []byte, cols Columns) (*Dataset, error) {
	sum := sha256.Sum256(data)
	ds := &Dataset{Hash: fmt.Sprintf("sha256:%x", sum), Raw: data}

	cr := csv.NewReader(bytes.NewReader(data))
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dataset is empty")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	// A UTF-8 BOM from spreadsheet exports would hide the first column name.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	ds.Header = header
	if err := ds.locate(cols); err != nil {
		return nil, err
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		line, _ := cr.FieldPos(0)
		rec, err := ds.parseRow(row, line)
		if err != nil {
			return nil, err
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

func (d *Dataset) parseRow(row []string, line int) (Record, error) {
	rec := Record{Fields: row, Line: line}

	sup, err := ParseBool(row[d.supporterIdx])
	if err != nil {
		return Record{}, fmt.Errorf("line %d: %s: %w", line, d.Header[d.supporterIdx], err)
	}
	rec.Supporter = sup

	perf, err := parsePerformance(row[d.performanceIdx])
	if err != nil {
		return Record{}, fmt.Errorf("line %d: %s: %w", line, d.Header[d.performanceIdx], err)
	}
	rec.Performance = perf

	sat, err := strconv.ParseFloat(strings.TrimSpace(row[d.satisfactionIdx]), 64)
	if err != nil {
		return Record{}, fmt.Errorf("line %d: %s: %w: %q", line, d.Header[d.satisfactionIdx], ErrBadCell, row[d.satisfactionIdx])
	}
	rec.Satisfaction = sat

	return rec, nil
}

// parsePerformance accepts integers and integral floats such as "3.0",
// which pandas writes when a column ever held a missing value.
func parsePerformance(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrBadCell, s)
	}
	return int(f), nil
}

// ParseBool accepts the boolean spellings found in survey exports.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes", "y":
		return true, nil
	case "false", "f", "0", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q is not a boolean", ErrBadCell, s)
}
