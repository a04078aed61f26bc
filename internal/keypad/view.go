package keypad

import (
	"slices"

	"github.com/hycracing/courseselect/internal/catalog"
)

// View is a read-only projection of the machine for display.
type View struct {
	Entry    string
	Level    int
	Active   []Key
	Complete bool
	// Found is set when a complete entry resolves in the catalog.
	Found    bool
	Preview  []catalog.Waypoint
	LengthNM float64
}

// IsActive reports whether k is highlighted in this view.
func (v View) IsActive(k Key) bool {
	return slices.Contains(v.Active, k)
}

// View returns the current projection, including a preview of the
// resolved course once three digits are entered.
func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := View{
		Entry:    m.entered,
		Level:    m.level,
		Active:   slices.Clone(levelKeys[m.row]),
		Complete: len(m.entered) == entryLength,
	}
	if !v.Complete {
		return v
	}
	if course, ok := m.courses.Lookup(m.entered); ok {
		v.Found = true
		v.Preview = course.Marks()
		v.LengthNM = course.LengthNM
	}
	return v
}
