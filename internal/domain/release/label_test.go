package release

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEncode checks the integer layout of encoded labels.
func TestEncode(t *testing.T) {
	t.Parallel()

	cases := map[string]Number{
		"V8.10":   81000,
		"v8.10g":  81007,
		"V7.94e":  79405,
		"V8.00":   80000,
		"V10.02z": 100226,
		"V8.10G":  81007,
	}
	for label, want := range cases {
		got, err := Encode(label)
		require.NoError(t, err, label)
		require.Equal(t, want, got, label)
	}
}

// TestEncode_Rejects checks that malformed labels fail with ErrInvalidFormat.
func TestEncode_Rejects(t *testing.T) {
	t.Parallel()

	for _, label := range []string{
		"",
		"latest",
		"8.10",
		"V8",
		"V8.1",
		"V8.100",
		"Vx.10",
		"V8.10gg",
		"V8.10-1",
		"V99999999999999999999.10",
		"V0.10",
		"v00.99z",
	} {
		_, err := Encode(label)
		require.ErrorIs(t, err, ErrInvalidFormat, label)
	}
}

// TestEncode_AlwaysDecodable checks that every accepted label decodes again.
func TestEncode_AlwaysDecodable(t *testing.T) {
	t.Parallel()

	for _, label := range []string{"V0.00", "V0.10", "V0.99z", "V1.00", "V01.00a", "V8.10g"} {
		n, err := Encode(label)
		if err != nil {
			require.ErrorIs(t, err, ErrInvalidFormat, label)
			continue
		}

		_, err = Decode(n)
		require.NoError(t, err, label)
	}
}

// TestDecode checks splitting of numbers into label parts.
func TestDecode(t *testing.T) {
	t.Parallel()

	cases := map[Number]string{
		81000:   "V8.10",
		81007:   "V8.10g",
		80000:   "V8.00",
		10001:   "V1.00a",
		1234526: "V123.45z",
	}
	for n, want := range cases {
		got, err := Decode(n)
		require.NoError(t, err)
		require.Equal(t, want, got)
		require.Equal(t, want, n.String())
	}
}

// TestDecode_Rejects checks numbers that cannot be split or have no patch letter.
func TestDecode_Rejects(t *testing.T) {
	t.Parallel()

	for _, n := range []Number{0, 9999, -81000, 81027, 81099} {
		_, err := Decode(n)
		require.ErrorIs(t, err, ErrInvalidFormat, n)
	}

	require.Equal(t, "9999", Number(9999).String())
}

// TestRoundTrip checks that decoding an encoded label yields its canonical form.
func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, major := range []int{1, 7, 8, 42, 123, 9999, 123456} {
		for minor := 0; minor <= 99; minor += 11 {
			for patch := 0; patch <= 26; patch++ {
				var letter string
				if patch > 0 {
					letter = string(rune('a' + patch - 1))
				}

				canonical := fmt.Sprintf("V%d.%02d%s", major, minor, letter)

				n, err := Encode(fmt.Sprintf("v%d.%02d%s", major, minor, letter))
				require.NoError(t, err)

				got, err := Decode(n)
				require.NoError(t, err)
				require.Equal(t, canonical, got)
			}
		}
	}
}

// TestEncode_Monotonic checks that label order matches numeric order.
func TestEncode_Monotonic(t *testing.T) {
	t.Parallel()

	ordered := []string{"V6.98", "V6.98a", "V6.98z", "V6.99", "V7.00", "V7.00b", "V7.94e", "V8.10", "V8.10g", "V10.00", "V100.01"}

	numbers := make([]Number, 0, len(ordered))
	for _, label := range ordered {
		n, err := Encode(label)
		require.NoError(t, err)

		numbers = append(numbers, n)
	}

	require.True(t, sort.SliceIsSorted(numbers, func(i, j int) bool { return numbers[i] < numbers[j] }))

	for i := 1; i < len(numbers); i++ {
		require.Less(t, numbers[i-1], numbers[i])
	}
}

// TestCanonical normalises case and prefix.
func TestCanonical(t *testing.T) {
	t.Parallel()

	got, err := Canonical(" v8.10C ")
	require.NoError(t, err)
	require.Equal(t, "V8.10c", got)
}
