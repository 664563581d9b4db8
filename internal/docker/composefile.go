// composefile.go parses the stack's compose definition just enough to
// know which services and named volumes it declares. The full compose
// schema is docker's business - we only read the two top-level maps.
package docker

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ComposeFile is the subset of a docker-compose YAML definition the CLI
// cares about: the service names (for status display and log target
// validation) and the named volumes (for backup).
type ComposeFile struct {
	// Services maps service names to their definitions. The definition
	// bodies are not interpreted here.
	Services map[string]yaml.Node `yaml:"services"`

	// Volumes maps named volume keys to their definitions.
	Volumes map[string]yaml.Node `yaml:"volumes"`
}

// LoadComposeFile reads and parses a compose definition.
func LoadComposeFile(path string) (*ComposeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read compose file %s: %w", path, err)
	}

	var cf ComposeFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse compose file %s: %w", path, err)
	}

	if len(cf.Services) == 0 {
		return nil, fmt.Errorf("compose file %s declares no services", path)
	}

	return &cf, nil
}

// ServiceNames returns the declared service names, sorted.
func (c *ComposeFile) ServiceNames() []string {
	names := make([]string, 0, len(c.Services))
	for name := range c.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// VolumeNames returns the declared named volumes, sorted.
func (c *ComposeFile) VolumeNames() []string {
	names := make([]string, 0, len(c.Volumes))
	for name := range c.Volumes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasService reports whether the compose file declares the named service.
func (c *ComposeFile) HasService(name string) bool {
	_, ok := c.Services[name]
	return ok
}
