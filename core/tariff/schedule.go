package tariff

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadSchedule reads a bracket schedule from a JSON or YAML file and
// validates it.
func LoadSchedule(path string) (Schedule, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Schedule{}, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var s Schedule
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &s)
	case ".json":
		err = json.Unmarshal(b, &s)
	default:
		return Schedule{}, fmt.Errorf("unsupported schedule format: %s", ext)
	}
	if err != nil {
		return Schedule{}, err
	}
	return s, s.Validate()
}

// DecodeSchedule reads from r to decode a Schedule in the given format.
func DecodeSchedule(r io.Reader, format string) (Schedule, error) {
	var s Schedule
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&s); err != nil {
			return s, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&s); err != nil {
			return s, err
		}
	default:
		return s, fmt.Errorf("unsupported format: %s", format)
	}
	return s, s.Validate()
}
