package commons

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// LoadYAML decodes the YAML file at path into out.
func LoadYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading yaml file: %w", err)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing yaml file: %w", err)
	}

	return nil
}
