package keypad

import "strings"

// Key is a keypad button.
type Key string

const (
	Key0     Key = "0"
	Key1     Key = "1"
	Key2     Key = "2"
	Key3     Key = "3"
	Key4     Key = "4"
	Key5     Key = "5"
	Key6     Key = "6"
	Key7     Key = "7"
	Key8     Key = "8"
	Key9     Key = "9"
	KeyClear Key = "clear"
	KeyEnter Key = "enter"
)

// Digits returns the ten digit keys in order.
func Digits() []Key {
	return []Key{Key0, Key1, Key2, Key3, Key4, Key5, Key6, Key7, Key8, Key9}
}

// IsDigit reports whether k is one of the ten digit keys.
func (k Key) IsDigit() bool {
	return len(k) == 1 && k[0] >= '0' && k[0] <= '9'
}

// ParseKey maps user input to a key. Digits map to themselves; "c",
// "clear", "backspace" and "esc" to KeyClear; "", "enter" and "ok" to
// KeyEnter. Input is trimmed and case-insensitive.
func ParseKey(s string) (Key, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "c", "clear", "backspace", "esc":
		return KeyClear, true
	case "", "enter", "ok":
		return KeyEnter, true
	}
	if k := Key(s); k.IsDigit() {
		return k, true
	}
	return "", false
}

// Level-indexed rows of accepted keys. Row 4 is Level1 after a leading 3.
var levelKeys = [...][]Key{
	{Key0, Key1, Key2, Key3, Key4, Key5},
	{Key0, Key2, Key4, Key6, Key8, KeyClear},
	{Key1, Key2, Key3, Key4, KeyClear},
	{KeyClear, KeyEnter},
	{Key0, Key2, Key4, KeyClear},
}

const (
	rowInitial           = 0
	rowAfterLeadingThree = 4
	entryLength          = 3
)
