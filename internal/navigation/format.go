package navigation

import (
	"fmt"

	domainerrors "github.com/roomandroom/roomandroom-server/internal/errors"
)

// PadSlot formats a slot or index for a URL path segment: 1 -> "01", 12 -> "12".
// Values of 100 and above simply widen.
func PadSlot(n int) string {
	return fmt.Sprintf("%02d", n)
}

// ParseSlot parses a path segment produced by PadSlot. Only ASCII digits are
// accepted; anything else (signs, spaces, empty) is not found.
func ParseSlot(s string) (int, error) {
	if s == "" || len(s) > 6 {
		return 0, domainerrors.NotFoundf("invalid slot %q", s)
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, domainerrors.NotFoundf("invalid slot %q", s)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}
