package sidebyside

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// splitWordUnits cuts a line into word+trailing-whitespace units: every
// whitespace rune ends a unit, so separators stay attached to the word
// before them and wrapping later keeps words and their spacing together.
// "a  b" becomes ["a ", " ", "b"].
func splitWordUnits(s string) []string {
	var units []string
	start := 0
	for i, r := range s {
		if unicode.IsSpace(r) {
			units = append(units, s[start:i+utf8.RuneLen(r)])
			start = i + utf8.RuneLen(r)
		}
	}
	if start < len(s) {
		units = append(units, s[start:])
	}
	return units
}

// DiffSide computes intra-line change segments for one side of a matched
// but unequal line pair. line is the side being rendered, other the line
// it is compared against. At most three segments come back: unchanged
// prefix, changed middle, unchanged suffix, any of which may be absent.
//
// For the Source side the segment texts always concatenate back to line.
// The Destination side does too, except under the prefix-extension case,
// where the unchanged segment is taken from other (the shared prefix) and
// the changed segment is line's strictly-extra suffix.
func DiffSide(line, other string, side Side) []Segment {
	if normalizeLine(line) == normalizeLine(other) {
		return []Segment{{Text: line}}
	}

	// Prefix extension: when one line merely got text appended, the shared
	// prefix is never flagged.
	if side == Source && strings.HasPrefix(other, line) {
		return []Segment{{Text: line}}
	}
	if side == Destination && strings.HasPrefix(line, other) && len(line) > len(other) {
		return []Segment{
			{Text: other},
			{Text: line[len(other):], Changed: true},
		}
	}

	lineUnits := splitWordUnits(line)
	otherUnits := splitWordUnits(other)

	shorter := len(lineUnits)
	if len(otherUnits) < shorter {
		shorter = len(otherUnits)
	}

	prefix := 0
	for prefix < shorter && lineUnits[prefix] == otherUnits[prefix] {
		prefix++
	}

	maxSuffix := shorter - prefix
	suffix := 0
	for suffix < maxSuffix &&
		lineUnits[len(lineUnits)-1-suffix] == otherUnits[len(otherUnits)-1-suffix] {
		suffix++
	}

	var segs []Segment
	if prefix > 0 {
		segs = append(segs, Segment{Text: strings.Join(lineUnits[:prefix], "")})
	}
	if prefix < len(lineUnits)-suffix {
		segs = append(segs, Segment{
			Text:    strings.Join(lineUnits[prefix:len(lineUnits)-suffix], ""),
			Changed: true,
		})
	}
	if suffix > 0 {
		segs = append(segs, Segment{Text: strings.Join(lineUnits[len(lineUnits)-suffix:], "")})
	}
	return segs
}
