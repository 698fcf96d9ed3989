package render

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"
	"text/template"

	"github.com/dshills/scorebias/internal/schema"
)

type markdownRenderer struct{}

var funcs = template.FuncMap{
	"num":    num,
	"counts": counts,
	"dict":   dict,
}

var mdTemplate = template.Must(template.New("report").Funcs(funcs).Parse(`# Score Bias Report

**Input:** {{ .Input.File }} ({{ .Input.Hash }})
**Mode:** {{ .Input.Mode }}{{ if .Input.Variant }} | **Variant:** {{ .Input.Variant }} | **Seed:** {{ .Input.Seed }}{{ end }}
**Records:** {{ .Meta.Records }} | **Supporters:** {{ .Meta.Supporters }} | **Non-supporters:** {{ .Meta.NonSupporters }}
{{ template "summary" (dict "Title" "Before" "S" .Before) }}{{ if .After }}{{ template "summary" (dict "Title" "After" "S" .After) }}
---

**Changed satisfaction scores:** {{ .Meta.ChangedSatisfaction }}
**Changed performance scores:** {{ .Meta.ChangedPerformance }}
{{ end }}
---
*Run: {{ .RunID }} | {{ .Tool }} {{ .Version }}*
{{ define "summary" }}
---

## {{ .Title }}

| Group | Column | count | mean | std | min | 25% | 50% | 75% | max |
|---|---|---|---|---|---|---|---|---|---|
{{ template "row" (dict "G" "all" "C" "satisfaction" "D" .S.All.Satisfaction) }}
{{ template "row" (dict "G" "supporters" "C" "satisfaction" "D" .S.Supporters.Satisfaction) }}
{{ template "row" (dict "G" "non-supporters" "C" "satisfaction" "D" .S.NonSupporters.Satisfaction) }}
{{ template "row" (dict "G" "all" "C" "performance" "D" .S.All.Performance) }}
{{ template "row" (dict "G" "supporters" "C" "performance" "D" .S.Supporters.Performance) }}
{{ template "row" (dict "G" "non-supporters" "C" "performance" "D" .S.NonSupporters.Performance) }}

Performance counts: supporters {{ counts .S.Supporters.PerformanceCounts }}; non-supporters {{ counts .S.NonSupporters.PerformanceCounts }}
{{ end }}{{ define "row" }}| {{ .G }} | {{ .C }} | {{ .D.Count }} | {{ num .D.Mean }} | {{ num .D.Std }} | {{ num .D.Min }} | {{ num .D.P25 }} | {{ num .D.P50 }} | {{ num .D.P75 }} | {{ num .D.Max }} |{{ end }}`))

func (r *markdownRenderer) Render(report *schema.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := mdTemplate.Execute(&buf, report); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.Bytes(), nil
}

func num(f float64) string {
	if math.IsNaN(f) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", f)
}

// counts formats a score histogram as "1:3 2:5 ..." in score order.
func counts(m map[int]int) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%d:%d", k, m[k])
	}
	return strings.Join(parts, " ")
}

func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("dict needs key/value pairs")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", kv[i])
		}
		m[k] = kv[i+1]
	}
	return m, nil
}
