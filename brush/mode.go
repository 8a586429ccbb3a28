package brush

import (
	"fmt"
	"strings"
)

// Mode selects what a stamp writes.
type Mode uint8

const (
	// Paint sets covered pixels to 255 (included).
	Paint Mode = iota

	// Erase sets covered pixels to 0 (excluded).
	Erase
)

// Value returns the mask byte written by the mode.
func (m Mode) Value() byte {
	if m == Erase {
		return 0
	}
	return 255
}

func (m Mode) String() string {
	switch m {
	case Paint:
		return "paint"
	case Erase:
		return "erase"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode parses "paint" or "erase", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paint":
		return Paint, nil
	case "erase":
		return Erase, nil
	default:
		return 0, fmt.Errorf("brush: unknown mode %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if m != Paint && m != Erase {
		return nil, fmt.Errorf("brush: invalid mode %d", uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
