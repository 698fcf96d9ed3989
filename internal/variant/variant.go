// Package variant defines the named bias configurations: per-group clamped
// normal distributions for the satisfaction score and an optional
// performance-score bias.
package variant

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrConfig marks a missing or invalid variant definition. It is fatal at
// startup and never raised per record.
var ErrConfig = errors.New("variant config error")

// Names of the built-in variants.
const (
	Baseline      = "baseline"
	AmplifiedBias = "amplified-bias"
)

// Distribution is a normal distribution truncated to [Lo, Hi] by clamping.
// Mean and the bounds are pointers so an omitted value is caught rather
// than read as zero.
type Distribution struct {
	Mean   *float64 `yaml:"mean" validate:"required"`
	StdDev float64  `yaml:"stddev" validate:"gt=0"`
	Lo     *float64 `yaml:"lo" validate:"required"`
	Hi     *float64 `yaml:"hi" validate:"required"`
}

// Bounds returns the clamp interval. It must only be called on a
// validated Distribution.
func (d *Distribution) Bounds() (lo, hi float64) {
	return *d.Lo, *d.Hi
}

// PerformanceBias nudges integer performance scores by one step.
// Supporters below Max are promoted with PromoteProb; non-supporters above
// Min are demoted with DemoteProb.
type PerformanceBias struct {
	PromoteProb float64 `yaml:"promote_prob" validate:"gte=0,lte=1"`
	DemoteProb  float64 `yaml:"demote_prob" validate:"gte=0,lte=1"`
	Min         int     `yaml:"min" validate:"gte=1"`
	Max         int     `yaml:"max" validate:"gtfield=Min"`
}

// Variant is a complete bias configuration.
type Variant struct {
	Name          string           `yaml:"name" validate:"required"`
	Description   string           `yaml:"description"`
	Supporters    *Distribution    `yaml:"supporters" validate:"required"`
	NonSupporters *Distribution    `yaml:"non_supporters" validate:"required"`
	Performance   *PerformanceBias `yaml:"performance,omitempty" validate:"omitempty"`
}

var validate = validator.New()

// Validate reports an ErrConfig-wrapped error if any parameter is missing
// or out of range.
func (v *Variant) Validate() error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: variant %q: invalid %s", ErrConfig, v.Name, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: variant %q: %s", ErrConfig, v.Name, err)
	}
	for _, g := range []struct {
		name string
		d    *Distribution
	}{{"supporters", v.Supporters}, {"non_supporters", v.NonSupporters}} {
		if lo, hi := g.d.Bounds(); hi < lo {
			return fmt.Errorf("%w: variant %q: %s hi %g is below lo %g", ErrConfig, v.Name, g.name, hi, lo)
		}
	}
	return nil
}

// BiasesPerformance reports whether the variant adjusts performance scores.
func (v *Variant) BiasesPerformance() bool {
	return v.Performance != nil
}

// Group returns the satisfaction distribution for a record's group.
func (v *Variant) Group(supporter bool) *Distribution {
	if supporter {
		return v.Supporters
	}
	return v.NonSupporters
}

// Registry resolves variant names. It always contains the built-ins;
// variants loaded from a file are added on top and may shadow them.
type Registry struct {
	variants map[string]*Variant
}

// NewRegistry returns a registry holding the built-in variants.
func NewRegistry() *Registry {
	r := &Registry{variants: map[string]*Variant{}}
	for _, v := range []*Variant{baseline(), amplifiedBias()} {
		r.variants[v.Name] = v
	}
	return r
}

// Add validates v and registers it under its name.
func (r *Registry) Add(v *Variant) error {
	if err := v.Validate(); err != nil {
		return err
	}
	r.variants[v.Name] = v
	return nil
}

// Get returns the variant for the given name. An empty name selects the
// baseline.
func (r *Registry) Get(name string) (*Variant, error) {
	if name == "" {
		name = Baseline
	}
	v, ok := r.variants[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown variant %q: valid variants are %s", ErrConfig, name, strings.Join(r.Names(), ", "))
	}
	return v, nil
}

// Names returns the registered variant names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.variants))
	for name := range r.variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns a built-in variant by name.
func Get(name string) (*Variant, error) {
	return NewRegistry().Get(name)
}

func ptr(f float64) *float64 { return &f }
