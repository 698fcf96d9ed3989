// Package dataset reads and writes the employee survey CSV. Only the three
// score-related columns are typed; every other cell is carried through
// untouched.
package dataset

import (
	"errors"
	"fmt"
)

// Default column names used by the survey export.
const (
	DefaultSupporterColumn    = "Supporter 4 days a week"
	DefaultPerformanceColumn  = "Performance_Score"
	DefaultSatisfactionColumn = "Employee_Satisfaction_Score"
)

// ErrMissingColumn is returned when a required column is absent from the header.
var ErrMissingColumn = errors.New("missing column")

// ErrBadCell is returned when a typed cell cannot be parsed.
var ErrBadCell = errors.New("unparseable cell")

// Columns names the typed columns in the input header.
type Columns struct {
	Supporter    string
	Performance  string
	Satisfaction string
}

// DefaultColumns returns the survey export's column names.
func DefaultColumns() Columns {
	return Columns{
		Supporter:    DefaultSupporterColumn,
		Performance:  DefaultPerformanceColumn,
		Satisfaction: DefaultSatisfactionColumn,
	}
}

// Record is one employee row.
type Record struct {
	Supporter    bool
	Performance  int
	Satisfaction float64
	Fields       []string // raw cells in header order
	Line         int      // 1-based line in the source file
}

// Clone returns a copy of r whose Fields do not alias r's.
func (r Record) Clone() Record {
	out := r
	out.Fields = append([]string(nil), r.Fields...)
	return out
}

// Dataset is a loaded CSV with its typed records.
type Dataset struct {
	Path    string
	Hash    string // "sha256:<hex>" of the raw input
	Raw     []byte // input exactly as read
	Header  []string
	Records []Record

	supporterIdx    int
	performanceIdx  int
	satisfactionIdx int
}

// Supporters returns the number of supporter and non-supporter records.
func (d *Dataset) Supporters() (supporters, nonSupporters int) {
	for _, r := range d.Records {
		if r.Supporter {
			supporters++
		} else {
			nonSupporters++
		}
	}
	return
}

func (d *Dataset) locate(cols Columns) error {
	idx := make(map[string]int, len(d.Header))
	for i, h := range d.Header {
		if _, seen := idx[h]; !seen {
			idx[h] = i
		}
	}
	find := func(name string) (int, error) {
		i, ok := idx[name]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		return i, nil
	}

	var err error
	if d.supporterIdx, err = find(cols.Supporter); err != nil {
		return err
	}
	if d.performanceIdx, err = find(cols.Performance); err != nil {
		return err
	}
	if d.satisfactionIdx, err = find(cols.Satisfaction); err != nil {
		return err
	}
	return nil
}
