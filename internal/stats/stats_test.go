package stats

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/dshills/scorebias/internal/dataset"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestDescribe_MatchesPandas(t *testing.T) {
	// pandas: Series([1, 2, 3, 4, 10]).describe()
	d := Describe([]float64{4, 1, 10, 3, 2})
	if d.Count != 5 {
		t.Errorf("Count = %d, want 5", d.Count)
	}
	checks := []struct {
		name      string
		got, want float64
	}{
		{"mean", d.Mean, 4},
		{"std", d.Std, math.Sqrt(12.5)},
		{"min", d.Min, 1},
		{"p25", d.P25, 2},
		{"p50", d.P50, 3},
		{"p75", d.P75, 4},
		{"max", d.Max, 10},
	}
	for _, c := range checks {
		if !approx(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestDescribe_Interpolates(t *testing.T) {
	d := Describe([]float64{1, 2, 3, 4})
	if !approx(d.P25, 1.75) || !approx(d.P50, 2.5) || !approx(d.P75, 3.25) {
		t.Errorf("quartiles = %v %v %v, want 1.75 2.5 3.25", d.P25, d.P50, d.P75)
	}
}

func TestDescribe_DoesNotReorderInput(t *testing.T) {
	xs := []float64{3, 1, 2}
	Describe(xs)
	if xs[0] != 3 || xs[1] != 1 || xs[2] != 2 {
		t.Errorf("input reordered: %v", xs)
	}
}

func TestDescribe_Empty(t *testing.T) {
	d := Describe(nil)
	if d.Count != 0 || !math.IsNaN(d.Mean) {
		t.Errorf("Describe(nil) = %+v", d)
	}
}

func TestDescribe_Single(t *testing.T) {
	d := Describe([]float64{4.5})
	if d.Mean != 4.5 || d.P50 != 4.5 || !math.IsNaN(d.Std) {
		t.Errorf("Describe single = %+v", d)
	}
}

func TestSummarize_Groups(t *testing.T) {
	records := []dataset.Record{
		{Supporter: true, Performance: 5, Satisfaction: 4.6},
		{Supporter: true, Performance: 4, Satisfaction: 4.4},
		{Supporter: false, Performance: 2, Satisfaction: 2.9},
	}
	s := Summarize(records)

	if s.All.Count != 3 || s.Supporters.Count != 2 || s.NonSupporters.Count != 1 {
		t.Errorf("counts = %d/%d/%d", s.All.Count, s.Supporters.Count, s.NonSupporters.Count)
	}
	if !approx(s.Supporters.Satisfaction.Mean, 4.5) {
		t.Errorf("supporter mean = %v, want 4.5", s.Supporters.Satisfaction.Mean)
	}
	if s.Supporters.PerformanceCounts[5] != 1 || s.Supporters.PerformanceCounts[4] != 1 {
		t.Errorf("supporter performance counts = %v", s.Supporters.PerformanceCounts)
	}
	if s.NonSupporters.PerformanceCounts[2] != 1 {
		t.Errorf("non-supporter performance counts = %v", s.NonSupporters.PerformanceCounts)
	}
}

func TestChanged(t *testing.T) {
	before := []dataset.Record{
		{Performance: 3, Satisfaction: 4.0},
		{Performance: 3, Satisfaction: 4.0},
	}
	after := []dataset.Record{
		{Performance: 4, Satisfaction: 4.6},
		{Performance: 3, Satisfaction: 4.0},
	}
	perf, sat := Changed(before, after)
	if perf != 1 || sat != 1 {
		t.Errorf("Changed = %d, %d; want 1, 1", perf, sat)
	}
}

func TestDescription_JSONNullsUndefined(t *testing.T) {
	data, err := json.Marshal(Describe([]float64{4.5}))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"std":null`) {
		t.Errorf("expected null std: %s", data)
	}

	var back Description
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Mean != 4.5 || !math.IsNaN(back.Std) {
		t.Errorf("round trip = %+v", back)
	}
}
