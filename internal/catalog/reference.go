package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Reference is a published course card: course number to the course marks
// concatenated in rounding order, without rounding markers.
type Reference map[string]string

// DiscrepancyKind classifies a difference between a catalog and a card.
type DiscrepancyKind string

const (
	DiscrepancyMissing    DiscrepancyKind = "missing"
	DiscrepancyMismatch   DiscrepancyKind = "mismatch"
	DiscrepancyUnexpected DiscrepancyKind = "unexpected"
)

// Discrepancy is one difference found by Compare.
type Discrepancy struct {
	Number string          `json:"number"`
	Kind   DiscrepancyKind `json:"kind"`
	Want   string          `json:"want,omitempty"`
	Got    string          `json:"got,omitempty"`
}

func (d Discrepancy) String() string {
	switch d.Kind {
	case DiscrepancyMissing:
		return fmt.Sprintf("%s: missing from catalog (card: %s)", d.Number, d.Want)
	case DiscrepancyUnexpected:
		return fmt.Sprintf("%s: not on the card (catalog: %s)", d.Number, d.Got)
	default:
		return fmt.Sprintf("%s: catalog %s, card %s", d.Number, d.Got, d.Want)
	}
}

type referenceFile struct {
	Day     string            `yaml:"day"`
	Courses map[string]string `yaml:"courses"`
}

// LoadReference returns the embedded published card for a race day.
func LoadReference(day string) (Reference, error) {
	day = strings.ToLower(strings.TrimSpace(day))
	if day == "" {
		day = DefaultDay
	}
	data, err := dataFS.ReadFile("data/" + day + "_reference.yaml")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no reference card for %q", ErrUnknownDay, day)
		}
		return nil, fmt.Errorf("read %s reference: %w", day, err)
	}
	var f referenceFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s reference: %w", day, err)
	}
	return Reference(f.Courses), nil
}

// MarkString concatenates the course marks without rounding markers, the
// form used on the published card.
func (c Course) MarkString() string {
	return strings.Join(c.MarkNames(), "")
}

// Compare checks every playable course against the card. Courses on the
// card but absent from the catalog are reported as missing; playable
// courses absent from the card as unexpected. Results are ordered by
// course number.
func Compare(cat *Catalog, ref Reference) []Discrepancy {
	var out []Discrepancy
	for number, want := range ref {
		course, ok := cat.Lookup(number)
		if !ok {
			out = append(out, Discrepancy{Number: number, Kind: DiscrepancyMissing, Want: want})
			continue
		}
		if got := course.MarkString(); got != want {
			out = append(out, Discrepancy{Number: number, Kind: DiscrepancyMismatch, Want: want, Got: got})
		}
	}
	for _, course := range cat.Playable() {
		if _, ok := ref[course.Number]; !ok {
			out = append(out, Discrepancy{Number: course.Number, Kind: DiscrepancyUnexpected, Got: course.MarkString()})
		}
	}
	slices.SortFunc(out, func(a, b Discrepancy) int {
		return strings.Compare(a.Number, b.Number)
	})
	return out
}
