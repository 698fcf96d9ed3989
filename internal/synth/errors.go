package synth

import (
	"errors"
	"fmt"
)

// ErrInvalidScoreRange marks an input record whose performance score is
// outside the configured range or whose satisfaction score is not finite.
var ErrInvalidScoreRange = errors.New("invalid score range")

// RecordError reports the record that failed validation.
type RecordError struct {
	Index  int // position in the input slice
	Line   int // source line, 0 when unknown
	Reason string
}

func (e *RecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("record %d (line %d): %s: %s", e.Index, e.Line, ErrInvalidScoreRange, e.Reason)
	}
	return fmt.Sprintf("record %d: %s: %s", e.Index, ErrInvalidScoreRange, e.Reason)
}

func (e *RecordError) Unwrap() error { return ErrInvalidScoreRange }
