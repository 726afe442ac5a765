package hotspot

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// CapacityEnvVar is the environment variable controlling the capacity of
// histories constructed by [NewHistoryFromEnv]. When unset or empty, the
// history is unbounded. When set, it must be a positive integer.
const CapacityEnvVar = "HOTSPOT_HISTORY_SIZE"

// ParseCapacity parses a history capacity setting. An empty string means no
// capacity is set, reported by ok=false. Anything else must parse as a
// positive integer; malformed, zero, or negative values produce an error
// wrapping [ErrInvalidConfig].
func ParseCapacity(s string) (capacity int, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, fmt.Errorf("%w: capacity %q is not an integer", ErrInvalidConfig, s)
	}

	if n <= 0 {
		return 0, false, fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, n)
	}

	return n, true, nil
}

// NewHistoryFromEnv constructs a history with the capacity taken from the
// HOTSPOT_HISTORY_SIZE environment variable: unbounded when the variable is
// unset, bounded when it holds a positive integer. A malformed value is a
// startup error, not a reason to quietly fall back to unbounded growth.
func NewHistoryFromEnv() (*History, error) {
	capacity, ok, err := ParseCapacity(os.Getenv(CapacityEnvVar))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", CapacityEnvVar, err)
	}

	if !ok {
		return NewHistory(), nil
	}

	return NewHistoryWithCapacity(capacity)
}
