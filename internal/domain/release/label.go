package release

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Number is the comparable form of a release label:
// major*10000 + minor*100 + patch ordinal.
type Number int

const (
	majorFactor = 10000
	minorFactor = 100

	// maxPatchOrdinal is the ordinal of the letter 'z'.
	maxPatchOrdinal = 'z' - 'a' + 1

	// minEncodedDigits is the shortest number Decode can split into parts.
	minEncodedDigits = 5
)

var (
	// ErrInvalidFormat is returned for malformed labels and numbers.
	ErrInvalidFormat = errors.New("invalid version format")
	// ErrNotFound is returned when a catalog, version or package lookup misses.
	ErrNotFound = errors.New("not found")
)

// labelPattern matches "V8.10", "v8.10g" and similar labels.
var labelPattern = regexp.MustCompile(`^[vV]([0-9]+)\.([0-9]{2})([a-zA-Z])?$`)

// Encode converts a label such as "V8.10g" into its Number.
func Encode(label string) (Number, error) {
	match := labelPattern.FindStringSubmatch(strings.TrimSpace(label))
	if match == nil {
		return 0, fmt.Errorf("%w: label %q", ErrInvalidFormat, label)
	}

	major, err := strconv.Atoi(match[1])
	// Major 0 would encode to fewer digits than Decode can split.
	if err != nil || major < 1 || major > (math.MaxInt-majorFactor)/majorFactor {
		return 0, fmt.Errorf("%w: major version of %q is out of range", ErrInvalidFormat, label)
	}

	// Two digits are guaranteed by the pattern.
	minor, _ := strconv.Atoi(match[2])

	patch := 0
	if match[3] != "" {
		patch = int(strings.ToLower(match[3])[0]-'a') + 1
	}

	return Number(major*majorFactor + minor*minorFactor + patch), nil
}

// Decode converts a Number back into its canonical label "V<major>.<minor>[<patch>]".
func Decode(n Number) (string, error) {
	digits := strconv.Itoa(int(n))
	if n < 0 || len(digits) < minEncodedDigits {
		return "", fmt.Errorf("%w: number %d has too few digits", ErrInvalidFormat, n)
	}

	major := digits[:len(digits)-4]
	minor := digits[len(digits)-4 : len(digits)-2]

	patch, _ := strconv.Atoi(digits[len(digits)-2:])
	if patch > maxPatchOrdinal {
		return "", fmt.Errorf("%w: patch ordinal %d of %d is not a letter", ErrInvalidFormat, patch, n)
	}

	var suffix string
	if patch > 0 {
		suffix = string(rune('a' + patch - 1))
	}

	return "V" + major + "." + minor + suffix, nil
}

// String renders n as a label, or as a bare integer when it cannot be decoded.
func (n Number) String() string {
	label, err := Decode(n)
	if err != nil {
		return strconv.Itoa(int(n))
	}

	return label
}

// Canonical returns the canonical spelling of label.
func Canonical(label string) (string, error) {
	n, err := Encode(label)
	if err != nil {
		return "", err
	}

	return Decode(n)
}
