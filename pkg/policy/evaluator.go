package policy

import (
	"fmt"

	"go.goms.io/aks/AKSupport/pkg/catalog"
	"go.goms.io/aks/AKSupport/pkg/version"
)

// endingSoonIndex is the catalog position a running version must reach to be
// out of the ending-soon zone. The catalog is ascending, so this is the third-oldest release.
const endingSoonIndex = 2

// IndexOutOfRangeError is returned when the catalog is too short for the ending-soon rule.
type IndexOutOfRangeError struct {
	Index  int
	Length int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("support catalog has %d entries, index %d is out of range", e.Length, e.Index)
}

// EndingSoonRule decides whether a supported version is about to lose support.
type EndingSoonRule func(running version.Version, c catalog.Catalog) (bool, error)

// IsSupported reports whether running exactly matches a catalog entry.
func IsSupported(running version.Version, c catalog.Catalog) bool {
	for _, entry := range c {
		if entry.Version.Equal(running) {
			return true
		}
	}
	return false
}

// IsSupportEnding reports whether running is older than the third-oldest catalog entry.
// It fails with *IndexOutOfRangeError when the catalog has fewer than three entries.
func IsSupportEnding(running version.Version, c catalog.Catalog) (bool, error) {
	if len(c) <= endingSoonIndex {
		return false, &IndexOutOfRangeError{Index: endingSoonIndex, Length: len(c)}
	}
	return running.LessThan(c[endingSoonIndex].Version), nil
}

// ThirdOldestRule is the default EndingSoonRule.
var ThirdOldestRule EndingSoonRule = IsSupportEnding

// Evaluator classifies running versions against a support catalog.
type Evaluator struct {
	EndingSoon EndingSoonRule
}

// NewEvaluator returns an Evaluator using ThirdOldestRule.
func NewEvaluator() *Evaluator {
	return &Evaluator{EndingSoon: ThirdOldestRule}
}

// Classify applies the support policy. Membership is checked first: a version that
// already dropped out of the catalog is NotSupported, never SupportEndingSoon.
func (e *Evaluator) Classify(running version.Version, c catalog.Catalog) (Status, error) {
	if !IsSupported(running, c) {
		return NotSupported, nil
	}

	rule := e.EndingSoon
	if rule == nil {
		rule = ThirdOldestRule
	}
	ending, err := rule(running, c)
	if err != nil {
		return Supported, fmt.Errorf("failed to evaluate support window: %w", err)
	}
	if ending {
		return SupportEndingSoon, nil
	}
	return Supported, nil
}
