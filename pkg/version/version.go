package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// InvalidVersionError is returned when a string cannot be parsed as a Kubernetes version.
type InvalidVersionError struct {
	Input string
	Err   error
}

func (e *InvalidVersionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid version %q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("invalid version %q", e.Input)
}

func (e *InvalidVersionError) Unwrap() error {
	return e.Err
}

// Version is a dotted major.minor[.patch] version as reported by Kubernetes and AKS.
// The zero value compares lower than any parsed version; obtain real ones through Parse or MustParse.
type Version struct {
	sv   *semver.Version
	text string
}

// Parse parses free-form version strings such as "1.24", "1.24.9" or "v1.24.9".
func Parse(s string) (Version, error) {
	text := strings.TrimSpace(s)
	text = strings.TrimPrefix(strings.TrimPrefix(text, "v"), "V")
	if text == "" {
		return Version{}, &InvalidVersionError{Input: s, Err: fmt.Errorf("empty version")}
	}

	core := text
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	if parts := strings.Count(core, ".") + 1; parts < 2 || parts > 3 {
		return Version{}, &InvalidVersionError{Input: s, Err: fmt.Errorf("expected major.minor[.patch], got %d components", parts)}
	}

	sv, err := semver.NewVersion(text)
	if err != nil {
		return Version{}, &InvalidVersionError{Input: s, Err: err}
	}
	return Version{sv: sv, text: text}, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or +1 depending on whether v is lower than, equal to or greater than o.
// The zero Version sorts before every parsed version.
func (v Version) Compare(o Version) int {
	switch {
	case v.IsZero() && o.IsZero():
		return 0
	case v.IsZero():
		return -1
	case o.IsZero():
		return 1
	}
	return v.sv.Compare(o.sv)
}

// LessThan reports whether v < o.
func (v Version) LessThan(o Version) bool {
	return v.Compare(o) < 0
}

// Equal reports whether v and o denote the same version. "1.24" equals "1.24.0".
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}

// IsZero reports whether v was never parsed.
func (v Version) IsZero() bool {
	return v.sv == nil
}

// String returns the version as it was given, without a leading "v".
func (v Version) String() string {
	return v.text
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.text), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
