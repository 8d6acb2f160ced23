package helm

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"sigs.k8s.io/yaml"
)

// LoadValues reads the generated values document and merges any extra values
// files over it, later files winning.
func LoadValues(primary string, extra ...string) (map[string]interface{}, error) {
	values := map[string]interface{}{}
	for i, filename := range append([]string{primary}, extra...) {
		if filename == "" {
			continue
		}
		content, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filename, err)
		}
		current := map[string]interface{}{}
		if err := yaml.Unmarshal(content, &current); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
		}
		if i == 0 && current != nil {
			values = current
			continue
		}
		if err := mergo.Merge(&values, current, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge values from %s: %w", filename, err)
		}
	}
	return values, nil
}
