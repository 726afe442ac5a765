package hotspot_test

import (
	"testing"

	"github.com/tracelab/hotspot"
)

func TestParseCapacity(t *testing.T) {
	t.Parallel()

	for _, testcase := range []struct {
		input    string
		capacity int
		ok       bool
		invalid  bool
	}{
		{"", 0, false, false},
		{"   ", 0, false, false},
		{"1", 1, true, false},
		{" 250 ", 250, true, false},
		{"10000", 10000, true, false},
		{"0", 0, false, true},
		{"-5", 0, false, true},
		{"ten", 0, false, true},
		{"1.5", 0, false, true},
	} {
		t.Run("input="+testcase.input, func(t *testing.T) {
			capacity, ok, err := hotspot.ParseCapacity(testcase.input)
			if testcase.invalid {
				AssertErrorIs(t, err, hotspot.ErrInvalidConfig)
				return
			}
			AssertNoError(t, err)
			AssertEqual(t, testcase.ok, ok)
			AssertEqual(t, testcase.capacity, capacity)
		})
	}
}

func TestNewHistoryFromEnv(t *testing.T) {
	t.Run("unset means unbounded", func(t *testing.T) {
		t.Setenv(hotspot.CapacityEnvVar, "")

		h, err := hotspot.NewHistoryFromEnv()
		AssertNoError(t, err)

		_, ok := h.Capacity()
		AssertEqual(t, false, ok)
	})

	t.Run("positive integer means bounded", func(t *testing.T) {
		t.Setenv(hotspot.CapacityEnvVar, "3")

		h, err := hotspot.NewHistoryFromEnv()
		AssertNoError(t, err)

		capacity, ok := h.Capacity()
		AssertEqual(t, true, ok)
		AssertEqual(t, 3, capacity)
	})

	t.Run("malformed fails fast", func(t *testing.T) {
		for _, value := range []string{"0", "-1", "huge"} {
			t.Setenv(hotspot.CapacityEnvVar, value)

			_, err := hotspot.NewHistoryFromEnv()
			AssertErrorIs(t, err, hotspot.ErrInvalidConfig)
		}
	})
}
