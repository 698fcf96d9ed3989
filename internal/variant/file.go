package variant

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type variantFile struct {
	Variants []*Variant `yaml:"variants"`
}

// LoadFile reads extra variants from a YAML file and registers them.
// Any invalid entry fails the whole load.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading variants file: %s", ErrConfig, err)
	}

	var f variantFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("%w: parsing variants file %s: %s", ErrConfig, path, err)
	}
	if len(f.Variants) == 0 {
		return fmt.Errorf("%w: variants file %s defines no variants", ErrConfig, path)
	}

	for i, v := range f.Variants {
		if v == nil {
			return fmt.Errorf("%w: variants file %s: entry %d is empty", ErrConfig, path, i)
		}
		if err := r.Add(v); err != nil {
			return err
		}
	}
	return nil
}
