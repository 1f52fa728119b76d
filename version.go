package wikiboot

import (
	"strconv"
	"strings"
)

// Component is one numeric part of a dotted version. Valid is false when the
// part was missing or not a number; such components never compare.
type Component struct {
	Value int
	Valid bool
}

// VersionTriple is a parsed major.minor.patch version. Patch is optional.
type VersionTriple struct {
	Major Component
	Minor Component
	Patch Component
}

// ParseVersion splits version on "." keeping at most three components and
// coerces each to a number.
func ParseVersion(version string) VersionTriple {
	parts := strings.SplitN(version, ".", 3)
	var triple VersionTriple
	slots := []*Component{&triple.Major, &triple.Minor, &triple.Patch}
	for i, part := range parts {
		// SplitN keeps the remainder in the last slot; only its leading segment counts.
		if i == 2 {
			part, _, _ = strings.Cut(part, ".")
		}
		*slots[i] = parseComponent(part)
	}
	return triple
}

func parseComponent(raw string) Component {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Component{Value: 0, Valid: true}
	}
	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return Component{}
	}
	return Component{Value: value, Valid: true}
}

// Comparable reports whether major and minor are both numeric.
func (v VersionTriple) Comparable() bool {
	return v.Major.Valid && v.Minor.Valid
}

// AtLeast reports v >= base on major/minor granularity. Patch is ignored.
func (v VersionTriple) AtLeast(base VersionTriple) bool {
	if !v.Major.Valid || !base.Major.Valid {
		return false
	}
	if v.Major.Value > base.Major.Value {
		return true
	}
	if v.Major.Value != base.Major.Value {
		return false
	}
	if !v.Minor.Valid || !base.Minor.Valid {
		return false
	}
	return v.Minor.Value >= base.Minor.Value
}

// String renders the triple back into dotted form; invalid components render
// as NaN.
func (v VersionTriple) String() string {
	parts := []string{formatComponent(v.Major), formatComponent(v.Minor)}
	if v.Patch.Valid {
		parts = append(parts, formatComponent(v.Patch))
	}
	return strings.Join(parts, ".")
}

func formatComponent(c Component) string {
	if !c.Valid {
		return "NaN"
	}
	return strconv.Itoa(c.Value)
}

// CompareVersion reports whether version >= baseVersion.
func CompareVersion(version, baseVersion string) bool {
	return ParseVersion(version).AtLeast(ParseVersion(baseVersion))
}
