// Package seed loads announcement definitions from YAML fixture files.
package seed

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"bolsas/internal/model"
)

// DefaultPattern matches every fixture under the given root
const DefaultPattern = "**/*.{yaml,yml}"

// Fixture is one announcement read from a file
type Fixture struct {
	Path         string
	Announcement *model.Announcement
}

// LoadAnnouncements reads every file in fsys matching pattern, sorted by path.
// Keys use the same camelCase names as the JSON API.
func LoadAnnouncements(fsys fs.FS, pattern string) ([]Fixture, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	paths, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	sort.Strings(paths)

	fixtures := make([]Fixture, 0, len(paths))
	for _, path := range paths {
		a, err := loadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		fixtures = append(fixtures, Fixture{Path: path, Announcement: a})
	}
	return fixtures, nil
}

func loadFile(fsys fs.FS, path string) (*model.Announcement, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty fixture")
	}

	// round-trip through JSON so the model's json tags drive field names
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("convert fixture: %w", err)
	}
	var a model.Announcement
	if err := json.Unmarshal(encoded, &a); err != nil {
		return nil, fmt.Errorf("decode announcement: %w", err)
	}
	return &a, nil
}
