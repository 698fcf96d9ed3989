package dataset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `Employee_ID,Job_Title,Performance_Score,Employee_Satisfaction_Score,Supporter 4 days a week
1,"Consultant, Senior",3,4.0,True
2,Developer,1,2.63,False
3,Analyst,5.0,3.17,true
`

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ParsesTypedColumns(t *testing.T) {
	ds, err := Load(writeTempCSV(t, sampleCSV), DefaultColumns())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Records) != 3 {
		t.Fatalf("len(Records) = %d, want 3", len(ds.Records))
	}

	r := ds.Records[0]
	if !r.Supporter || r.Performance != 3 || r.Satisfaction != 4.0 {
		t.Errorf("record 0 = %+v", r)
	}
	if r.Fields[1] != "Consultant, Senior" {
		t.Errorf("quoted field = %q", r.Fields[1])
	}
	if r.Line != 2 {
		t.Errorf("Line = %d, want 2", r.Line)
	}
	if ds.Records[1].Supporter {
		t.Error("record 1 should not be a supporter")
	}
	if ds.Records[2].Performance != 5 {
		t.Errorf("integral float performance = %d, want 5", ds.Records[2].Performance)
	}

	sup, non := ds.Supporters()
	if sup != 2 || non != 1 {
		t.Errorf("Supporters() = %d, %d; want 2, 1", sup, non)
	}
}

func TestLoad_HashStable(t *testing.T) {
	path := writeTempCSV(t, sampleCSV)
	a, err := Load(path, DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Load(path, DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}
	if a.Hash != b.Hash || !strings.HasPrefix(a.Hash, "sha256:") {
		t.Errorf("hash not stable or malformed: %q vs %q", a.Hash, b.Hash)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/data.csv", DefaultColumns()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParse_MissingColumn(t *testing.T) {
	_, err := Parse([]byte("a,b\n1,2\n"), DefaultColumns())
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestParse_CustomColumns(t *testing.T) {
	cols := Columns{Supporter: "fan", Performance: "perf", Satisfaction: "sat"}
	ds, err := Parse([]byte("sat,perf,fan\n3.5,2,no\n"), cols)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r := ds.Records[0]
	if r.Supporter || r.Performance != 2 || r.Satisfaction != 3.5 {
		t.Errorf("record = %+v", r)
	}
}

func TestParse_BadCells(t *testing.T) {
	header := "Performance_Score,Employee_Satisfaction_Score,Supporter 4 days a week\n"
	tests := []struct {
		name string
		row  string
	}{
		{"bad bool", "3,4.0,maybe\n"},
		{"bad performance", "three,4.0,True\n"},
		{"fractional performance", "3.5,4.0,True\n"},
		{"bad satisfaction", "3,high,True\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(header+tt.row), DefaultColumns())
			if !errors.Is(err, ErrBadCell) {
				t.Fatalf("expected ErrBadCell, got %v", err)
			}
			if !strings.Contains(err.Error(), "line 2") {
				t.Errorf("error does not name the line: %v", err)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	if _, err := Parse(nil, DefaultColumns()); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestParse_StripsBOM(t *testing.T) {
	data := "\ufeffSupporter 4 days a week,Performance_Score,Employee_Satisfaction_Score\nTrue,4,4.5\n"
	ds, err := Parse([]byte(data), DefaultColumns())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ds.Header[0] != DefaultSupporterColumn {
		t.Errorf("header[0] = %q", ds.Header[0])
	}
}

func TestWrite_ReplacesOnlyScoreCells(t *testing.T) {
	ds, err := Parse([]byte(sampleCSV), DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}

	out := make([]Record, len(ds.Records))
	for i, r := range ds.Records {
		out[i] = r.Clone()
	}
	out[0].Satisfaction = 4.7
	out[0].Performance = 4
	out[1].Satisfaction = 3

	var buf bytes.Buffer
	if err := ds.Write(&buf, out); err != nil {
		t.Fatalf("Write: %v", err)
	}

	want := `Employee_ID,Job_Title,Performance_Score,Employee_Satisfaction_Score,Supporter 4 days a week
1,"Consultant, Senior",4,4.7,True
2,Developer,1,3.0,False
3,Analyst,5,3.17,true
`
	if buf.String() != want {
		t.Errorf("Write output:\n%s\nwant:\n%s", buf.String(), want)
	}
	if ds.Records[0].Fields[2] != "3" {
		t.Errorf("Write mutated source fields: %q", ds.Records[0].Fields[2])
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	ds, err := Parse([]byte(sampleCSV), DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}
	data, err := ds.Encode(ds.Records)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	again, err := Load(path, DefaultColumns())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for i := range ds.Records {
		a, b := ds.Records[i], again.Records[i]
		if a.Supporter != b.Supporter || a.Performance != b.Performance || a.Satisfaction != b.Satisfaction {
			t.Errorf("record %d changed: %+v -> %+v", i, a, b)
		}
	}
	if !bytes.Equal(again.Raw, data) {
		t.Error("Raw does not hold the bytes read from disk")
	}
}

func TestParse_KeepsRawInput(t *testing.T) {
	data := []byte("Performance_Score,Employee_Satisfaction_Score,Supporter 4 days a week\r\n\"3.0\",4,yes\r\n")
	ds, err := Parse(data, DefaultColumns())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !bytes.Equal(ds.Raw, data) {
		t.Errorf("Raw = %q, want %q", ds.Raw, data)
	}
	if ds.Records[0].Performance != 3 {
		t.Errorf("performance = %d, want 3", ds.Records[0].Performance)
	}
}

func TestFormatScore(t *testing.T) {
	tests := map[float64]string{
		4.7:   "4.7",
		5:     "5.0",
		0.089: "0.089",
		3.17:  "3.17",
	}
	for in, want := range tests {
		if got := FormatScore(in); got != want {
			t.Errorf("FormatScore(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"True", "true", " TRUE ", "1", "yes", "Y"} {
		if v, err := ParseBool(s); err != nil || !v {
			t.Errorf("ParseBool(%q) = %v, %v", s, v, err)
		}
	}
	for _, s := range []string{"False", "false", "0", "no", "n"} {
		if v, err := ParseBool(s); err != nil || v {
			t.Errorf("ParseBool(%q) = %v, %v", s, v, err)
		}
	}
	if _, err := ParseBool(""); err == nil {
		t.Error("expected error for empty string")
	}
}
