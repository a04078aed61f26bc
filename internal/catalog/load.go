package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// DefaultDay is the race day used when none is configured.
const DefaultDay = "wednesday"

// tableFile is the on-disk shape of a course table.
type tableFile struct {
	Day     string   `yaml:"day"`
	Courses []Course `yaml:"courses"`
}

// Days returns the race days with an embedded course table.
func Days() []string {
	return []string{"tuesday", "wednesday"}
}

// Load returns the embedded course table for a race day.
func Load(day string) (*Catalog, error) {
	day = strings.ToLower(strings.TrimSpace(day))
	if day == "" {
		day = DefaultDay
	}
	data, err := dataFS.ReadFile("data/" + day + ".yaml")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDay, day)
		}
		return nil, fmt.Errorf("read %s table: %w", day, err)
	}
	return parse(data)
}

// Parse reads a course table in the embedded YAML layout.
func Parse(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read course table: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Catalog, error) {
	var table tableFile
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse course table: %w", err)
	}
	return New(table.Day, table.Courses)
}
