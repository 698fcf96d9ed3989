package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Write emits the header and records as CSV. Only the performance and
// satisfaction cells are regenerated from the typed fields; all other
// cells are written exactly as loaded.
func (d *Dataset) Write(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	row := make([]string, len(d.Header))
	for i, rec := range records {
		copy(row, rec.Fields)
		row[d.performanceIdx] = strconv.Itoa(rec.Performance)
		row[d.satisfactionIdx] = FormatScore(rec.Satisfaction)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Encode returns the CSV encoding of records.
func (d *Dataset) Encode(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Write(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatScore renders a satisfaction score in its shortest form while
// keeping a decimal point on whole numbers ("5.0", "4.7"), matching the
// float columns written by pandas.
func FormatScore(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) || strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}
