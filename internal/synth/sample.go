// Package synth replaces survey scores with values drawn from
// group-conditional distributions. All randomness comes from the
// randsrc.Source passed in; nothing here holds state between calls.
package synth

import (
	"github.com/dshills/scorebias/internal/randsrc"
	"github.com/dshills/scorebias/internal/variant"
)

// SampleSatisfaction draws one normal value for the record's group, clamps
// it to the group's interval and rounds it to two significant figures.
// It consumes exactly one normal draw.
func SampleSatisfaction(supporter bool, src randsrc.Source, v *variant.Variant) float64 {
	d := v.Group(supporter)
	x := *d.Mean + d.StdDev*src.NormFloat64()
	lo, hi := d.Bounds()
	return Round2Sig(Clamp(x, lo, hi))
}

// BiasPerformance moves a performance score one step toward the record's
// group: supporters below the ceiling are promoted with PromoteProb,
// non-supporters above the floor are demoted with DemoteProb. A score with
// no room to move is returned as is and consumes no draw.
func BiasPerformance(current int, supporter bool, src randsrc.Source, b *variant.PerformanceBias) int {
	if supporter {
		if current < b.Max && src.Float64() < b.PromoteProb {
			return current + 1
		}
		return current
	}
	if current > b.Min && src.Float64() < b.DemoteProb {
		return current - 1
	}
	return current
}
