package catalog

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"
)

// Mark is a navigational buoy or point used by the courses.
type Mark struct {
	ShortName string  `yaml:"short_name" json:"short_name"`
	LongName  string  `yaml:"long_name" json:"long_name"`
	Shape     string  `yaml:"shape" json:"shape"`
	Colour    string  `yaml:"colour" json:"colour"`
	Lat       float64 `yaml:"lat" json:"lat"`
	Lon       float64 `yaml:"lon" json:"lon"`
}

// Point returns the mark position as lon/lat.
func (m Mark) Point() orb.Point {
	return orb.Point{m.Lon, m.Lat}
}

type marksFile struct {
	Marks []Mark `yaml:"marks"`
}

// LoadMarks returns the embedded mark table.
func LoadMarks() ([]Mark, error) {
	data, err := dataFS.ReadFile("data/marks.yaml")
	if err != nil {
		return nil, fmt.Errorf("read mark table: %w", err)
	}
	var f marksFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse mark table: %w", err)
	}
	return f.Marks, nil
}

// MarkByName finds a mark by short name, or by long name ignoring case.
func MarkByName(marks []Mark, name string) (Mark, bool) {
	for _, m := range marks {
		if m.ShortName == name {
			return m, true
		}
	}
	for _, m := range marks {
		if strings.EqualFold(m.LongName, name) {
			return m, true
		}
	}
	return Mark{}, false
}
