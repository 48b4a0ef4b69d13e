package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lumen-ml/lumen/internal/tensor"
)

// manifest is the on-disk layout of an input-shape file. Models whose
// inputs carry symbolic or missing dimensions need one:
//
//	inputs:
//	  data: [1, 3, 224, 224]
type manifest struct {
	Inputs map[string][]int `yaml:"inputs"`
}

// LoadManifest reads an input-shape manifest.
func LoadManifest(path string) (map[string]tensor.Shape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	shapes := make(map[string]tensor.Shape, len(m.Inputs))
	for name, dims := range m.Inputs {
		shape := tensor.Shape(dims)
		if err := shape.Validate(); err != nil {
			return nil, fmt.Errorf("manifest input %q: %w", name, err)
		}
		shapes[name] = shape
	}
	return shapes, nil
}
