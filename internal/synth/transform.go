package synth

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/scorebias/internal/dataset"
	"github.com/dshills/scorebias/internal/randsrc"
	"github.com/dshills/scorebias/internal/variant"
)

// Valid performance scores on the survey scale.
const (
	minPerformance = 1
	maxPerformance = 5
)

// Validate checks every record before any draw is made. The first invalid
// record aborts the whole dataset. The check is against the survey scale,
// whatever range a variant biases within.
func Validate(records []dataset.Record) error {
	for i, r := range records {
		if r.Performance < minPerformance || r.Performance > maxPerformance {
			return &RecordError{Index: i, Line: r.Line, Reason: fmt.Sprintf("performance score %d outside %d..%d", r.Performance, minPerformance, maxPerformance)}
		}
		if math.IsNaN(r.Satisfaction) || math.IsInf(r.Satisfaction, 0) {
			return &RecordError{Index: i, Line: r.Line, Reason: fmt.Sprintf("satisfaction score %v is not finite", r.Satisfaction)}
		}
	}
	return nil
}

// Transform rewrites each record's scores in input order. Per record the
// satisfaction draw always precedes the performance draw, so a seeded
// source reproduces the same output. The input slice is not modified.
func Transform(records []dataset.Record, v *variant.Variant, src randsrc.Source) ([]dataset.Record, error) {
	if err := Validate(records); err != nil {
		return nil, err
	}
	out := make([]dataset.Record, len(records))
	for i, r := range records {
		out[i] = transformRecord(r, v, src)
	}
	return out, nil
}

// TransformSharded is the parallel form of Transform. Record i draws from
// its own stream keyed by (seed, i), so the result depends only on the seed
// and never on workers or scheduling. It is a different draw sequence from
// Transform with a single seeded source.
func TransformSharded(ctx context.Context, records []dataset.Record, v *variant.Variant, seed uint64, workers int) ([]dataset.Record, error) {
	if err := Validate(records); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}

	out := make([]dataset.Record, len(records))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range records {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			out[i] = transformRecord(records[i], v, randsrc.NewLegacyStream(seed, i))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func transformRecord(r dataset.Record, v *variant.Variant, src randsrc.Source) dataset.Record {
	next := r.Clone()
	next.Satisfaction = SampleSatisfaction(r.Supporter, src, v)
	if v.BiasesPerformance() {
		next.Performance = BiasPerformance(r.Performance, r.Supporter, src, v.Performance)
	}
	return next
}
