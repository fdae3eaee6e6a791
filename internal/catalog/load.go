package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileFormat struct {
	Stations []Station `yaml:"stations"`
}

// Load reads a YAML catalog file. A missing file is an error; callers that
// want the built-in list should check the path first or use Default.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var raw fileFormat
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(raw.Stations) == 0 {
		return nil, errors.New("parse catalog: no stations defined")
	}
	return New(raw.Stations)
}

// Marshal encodes stations in the catalog file format.
func Marshal(stations []Station) ([]byte, error) {
	return yaml.Marshal(fileFormat{Stations: stations})
}
