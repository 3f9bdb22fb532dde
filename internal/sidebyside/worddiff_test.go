package sidebyside

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDiffSideEqualLines(t *testing.T) {
	segs := DiffSide("hello world", "hello world", Source)
	require.Equal(t, []Segment{{Text: "hello world"}}, segs)
}

func TestDiffSideBothBlank(t *testing.T) {
	// Whitespace-only lines normalize to empty, so a pair of blanks
	// carries no change highlight even when the bytes differ.
	segs := DiffSide("  \t", "", Source)
	require.Equal(t, []Segment{{Text: "  \t"}}, segs)
}

func TestDiffSidePrefixExtension(t *testing.T) {
	// The source is a strict prefix of the destination: the source shows
	// no change, the destination highlights only the appended tail.
	src := DiffSide("foo", "foo bar", Source)
	require.Equal(t, []Segment{{Text: "foo"}}, src)

	dst := DiffSide("foo bar", "foo", Destination)
	require.Equal(t, []Segment{
		{Text: "foo"},
		{Text: " bar", Changed: true},
	}, dst)
}

func TestDiffSideChangedTail(t *testing.T) {
	src := DiffSide("line2 old", "line2 new", Source)
	require.Equal(t, []Segment{
		{Text: "line2 "},
		{Text: "old", Changed: true},
	}, src)

	dst := DiffSide("line2 new", "line2 old", Destination)
	require.Equal(t, []Segment{
		{Text: "line2 "},
		{Text: "new", Changed: true},
	}, dst)
}

func TestDiffSideChangedHead(t *testing.T) {
	// Trailing whitespace travels with the word before it, so the
	// changed unit is "old " including its separator.
	src := DiffSide("old ending here", "new ending here", Source)
	require.Equal(t, []Segment{
		{Text: "old ", Changed: true},
		{Text: "ending here"},
	}, src)
}

func TestDiffSideMiddleChange(t *testing.T) {
	src := DiffSide("keep this old stuff here", "keep this new stuff here", Source)
	require.Equal(t, []Segment{
		{Text: "keep this "},
		{Text: "old ", Changed: true},
		{Text: "stuff here"},
	}, src)
}

func TestDiffSideWhollyDifferent(t *testing.T) {
	src := DiffSide("alpha", "omega", Source)
	require.Equal(t, []Segment{{Text: "alpha", Changed: true}}, src)
}

func TestDiffSideEmptyLine(t *testing.T) {
	// An empty line against a non-empty one is all change on the
	// non-empty side and a single empty segment on the empty side.
	require.Equal(t, []Segment{{Text: ""}}, DiffSide("", "content", Source))
	require.Equal(t,
		[]Segment{{Text: "content", Changed: true}},
		DiffSide("content", "", Source))
}

func TestSplitWordUnits(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single word", "foo", []string{"foo"}},
		{"word with trailing space", "foo ", []string{"foo "}},
		{"two words", "foo bar", []string{"foo ", "bar"}},
		{"double space", "a  b", []string{"a ", " ", "b"}},
		{"leading space", " x", []string{" ", "x"}},
		{"tab separated", "a\tb", []string{"a\t", "b"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, splitWordUnits(tc.in))
		})
	}
}

func TestProperty_DiffSideReconstructsLine(t *testing.T) {
	// Concatenating the segment texts must reproduce the input line
	// exactly, for either side.
	rapid.Check(t, func(rt *rapid.T) {
		line := rapid.StringMatching(`[a-c ]{0,20}`).Draw(rt, "line")
		other := rapid.StringMatching(`[a-c ]{0,20}`).Draw(rt, "other")
		for _, side := range []Side{Source, Destination} {
			var sb strings.Builder
			for _, seg := range DiffSide(line, other, side) {
				sb.WriteString(seg.Text)
			}
			require.Equal(t, line, sb.String())
		}
	})
}

func TestProperty_DiffSideAtMostThreeSegments(t *testing.T) {
	// The prefix/middle/suffix decomposition never yields more than
	// three segments, and adjacent segments never share a Changed flag.
	rapid.Check(t, func(rt *rapid.T) {
		line := rapid.StringMatching(`[a-c ]{0,20}`).Draw(rt, "line")
		other := rapid.StringMatching(`[a-c ]{0,20}`).Draw(rt, "other")
		segs := DiffSide(line, other, Source)
		require.LessOrEqual(t, len(segs), 3)
		for i := 1; i < len(segs); i++ {
			require.NotEqual(t, segs[i-1].Changed, segs[i].Changed)
		}
	})
}
