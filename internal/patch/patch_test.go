package patch

import (
	"strings"
	"testing"
)

const before = "id,score,group\n1,2.63,True\n2,1.72,False\n3,3.17,True\n"

func TestGenerateDiff_ChangedRows(t *testing.T) {
	after := "id,score,group\n1,4.6,True\n2,1.72,False\n3,4.7,True\n"
	out := GenerateDiff("employees.csv", before, after)
	if out == "" {
		t.Fatal("expected non-empty diff")
	}
	if !strings.HasPrefix(out, "# employees.csv\n") {
		t.Errorf("diff missing label line: %q", out)
	}
	if !strings.Contains(out, "@@") {
		t.Errorf("diff has no hunks: %q", out)
	}
}

func TestGenerateDiff_ApplyReproducesAfter(t *testing.T) {
	after := "id,score,group\n1,4.6,True\n2,2.9,False\n3,3.17,True\n"
	out := GenerateDiff("x", before, after)

	got, ok := Apply(out, before)
	if !ok {
		t.Fatalf("patch did not apply cleanly: %q", out)
	}
	if got != after {
		t.Errorf("applied = %q, want %q", got, after)
	}
}

func TestGenerateDiff_CRLFIgnored(t *testing.T) {
	crlf := strings.ReplaceAll(before, "\n", "\r\n")
	if out := GenerateDiff("x", crlf, before); out != "" {
		t.Errorf("expected empty diff for line-ending change, got %q", out)
	}
}

func TestGenerateDiff_Equal(t *testing.T) {
	if out := GenerateDiff("x", before, before); out != "" {
		t.Errorf("expected empty string for equal texts, got %q", out)
	}
}

func TestApply_Empty(t *testing.T) {
	got, ok := Apply("", before)
	if !ok || got != before {
		t.Errorf("Apply(empty) = %q, %v", got, ok)
	}
}

func TestChangedLines(t *testing.T) {
	after := "id,score,group\n1,4.6,True\n2,1.72,False\n3,4.7,True\n"
	if got := ChangedLines(before, after); got != 2 {
		t.Errorf("ChangedLines = %d, want 2", got)
	}
	if got := ChangedLines(before, before+"4,1.0,False\n"); got != 1 {
		t.Errorf("ChangedLines with extra row = %d, want 1", got)
	}
}
