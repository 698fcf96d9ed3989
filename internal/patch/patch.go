// Package patch produces an audit trail of a transform as a
// diff-match-patch patch from the original CSV text to the rewritten one.
package patch

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// GenerateDiff returns patch text turning before into after, preceded by a
// "# <label>" line. Both sides are line-ending normalized first so a CRLF
// export does not show every row as changed. The result is empty when the
// texts are equal.
func GenerateDiff(label, before, after string) string {
	before, after = normalize(before), normalize(after)
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	// Diff whole lines so each hunk maps to changed records.
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	patchText := dmp.PatchToText(dmp.PatchMake(before, diffs))
	if patchText == "" {
		return ""
	}

	var out strings.Builder
	out.WriteString(fmt.Sprintf("# %s\n", label))
	out.WriteString(patchText)
	return out.String()
}

// Apply replays patch text produced by GenerateDiff onto before and reports
// whether every hunk applied.
func Apply(patchText, before string) (string, bool) {
	body := patchText
	if strings.HasPrefix(body, "# ") {
		if idx := strings.Index(body, "\n"); idx >= 0 {
			body = body[idx+1:]
		}
	}
	if body == "" {
		return normalize(before), true
	}

	dmp := diffmatchpatch.New()
	patches, err := dmp.PatchFromText(body)
	if err != nil {
		return "", false
	}
	out, applied := dmp.PatchApply(patches, normalize(before))
	for _, ok := range applied {
		if !ok {
			return out, false
		}
	}
	return out, true
}

// ChangedLines counts lines that differ between before and after, matched
// by position. Extra lines on either side count as changed.
func ChangedLines(before, after string) int {
	a := strings.Split(strings.TrimSuffix(normalize(before), "\n"), "\n")
	b := strings.Split(strings.TrimSuffix(normalize(after), "\n"), "\n")
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	changed := 0
	for i := 0; i < n; i++ {
		if i >= len(a) || i >= len(b) || a[i] != b[i] {
			changed++
		}
	}
	return changed
}

// normalize converts CRLF to LF.
func normalize(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
