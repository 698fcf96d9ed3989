// Package stats computes the descriptive summaries printed alongside a
// transform: pandas-style describe() blocks, grouped by supporter flag.
package stats

import (
	"encoding/json"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/dshills/scorebias/internal/dataset"
)

// Description summarizes one numeric column.
type Description struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	P25   float64
	P50   float64
	P75   float64
	Max   float64
}

// describeJSON mirrors Description with nullable numbers; NaN has no JSON
// encoding.
type describeJSON struct {
	Count int      `json:"count"`
	Mean  *float64 `json:"mean"`
	Std   *float64 `json:"std"`
	Min   *float64 `json:"min"`
	P25   *float64 `json:"p25"`
	P50   *float64 `json:"p50"`
	P75   *float64 `json:"p75"`
	Max   *float64 `json:"max"`
}

func nullable(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func orNaN(f *float64) float64 {
	if f == nil {
		return math.NaN()
	}
	return *f
}

// MarshalJSON writes undefined statistics as null.
func (d Description) MarshalJSON() ([]byte, error) {
	return json.Marshal(describeJSON{
		Count: d.Count,
		Mean:  nullable(d.Mean),
		Std:   nullable(d.Std),
		Min:   nullable(d.Min),
		P25:   nullable(d.P25),
		P50:   nullable(d.P50),
		P75:   nullable(d.P75),
		Max:   nullable(d.Max),
	})
}

// UnmarshalJSON reads null statistics back as NaN.
func (d *Description) UnmarshalJSON(data []byte) error {
	var aux describeJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*d = Description{
		Count: aux.Count,
		Mean:  orNaN(aux.Mean),
		Std:   orNaN(aux.Std),
		Min:   orNaN(aux.Min),
		P25:   orNaN(aux.P25),
		P50:   orNaN(aux.P50),
		P75:   orNaN(aux.P75),
		Max:   orNaN(aux.Max),
	}
	return nil
}

// Describe returns count, mean, sample standard deviation, min, quartiles
// and max of xs. Quartiles interpolate linearly between closest ranks.
// An empty input yields a zero Count and NaN elsewhere; a single value has
// NaN Std.
func Describe(xs []float64) Description {
	if len(xs) == 0 {
		nan := math.NaN()
		return Description{Mean: nan, Std: nan, Min: nan, P25: nan, P50: nan, P75: nan, Max: nan}
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	d := Description{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		Std:   math.NaN(),
		Min:   floats.Min(sorted),
		P25:   quantile(sorted, 0.25),
		P50:   quantile(sorted, 0.50),
		P75:   quantile(sorted, 0.75),
		Max:   floats.Max(sorted),
	}
	if len(sorted) > 1 {
		d.Std = stat.StdDev(sorted, nil)
	}
	return d
}

// quantile uses the (n-1)p position rule. gonum's stat.Quantile offers
// only empirical-CDF kinds, which disagree with pandas describe().
func quantile(sorted []float64, p float64) float64 {
	pos := float64(len(sorted)-1) * p
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Group holds the summaries for one slice of records.
type Group struct {
	Count        int         `json:"count"`
	Satisfaction Description `json:"satisfaction"`
	Performance  Description `json:"performance"`
	// PerformanceCounts maps each performance score to its frequency.
	PerformanceCounts map[int]int `json:"performance_counts"`
}

// Summary is the overall and per-group view of a dataset.
type Summary struct {
	All           Group `json:"all"`
	Supporters    Group `json:"supporters"`
	NonSupporters Group `json:"non_supporters"`
}

// Summarize builds a Summary from records.
func Summarize(records []dataset.Record) Summary {
	var all, sup, non []dataset.Record
	for _, r := range records {
		all = append(all, r)
		if r.Supporter {
			sup = append(sup, r)
		} else {
			non = append(non, r)
		}
	}
	return Summary{
		All:           group(all),
		Supporters:    group(sup),
		NonSupporters: group(non),
	}
}

func group(records []dataset.Record) Group {
	sat := make([]float64, len(records))
	perf := make([]float64, len(records))
	counts := make(map[int]int)
	for i, r := range records {
		sat[i] = r.Satisfaction
		perf[i] = float64(r.Performance)
		counts[r.Performance]++
	}
	return Group{
		Count:             len(records),
		Satisfaction:      Describe(sat),
		Performance:       Describe(perf),
		PerformanceCounts: counts,
	}
}

// Changed counts records whose performance or satisfaction differs
// between before and after, which must be the same length.
func Changed(before, after []dataset.Record) (performance, satisfaction int) {
	for i := range before {
		if before[i].Performance != after[i].Performance {
			performance++
		}
		if before[i].Satisfaction != after[i].Satisfaction {
			satisfaction++
		}
	}
	return
}
