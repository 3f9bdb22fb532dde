package sidebyside

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func spanText(r Row) string {
	var sb strings.Builder
	for _, s := range r.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

func TestFormatWrapsLongLine(t *testing.T) {
	line := strings.Repeat("a", 250)
	f := NewFormatter()
	src, dst := f.Format(
		[]Op{Matched(0, 0)},
		[]string{line}, []string{line},
		Layout{TextWidth: 80, Height: 100},
	)

	require.Len(t, src, 4)
	require.Len(t, dst, 4)

	// Rows fill to exactly 80 cells; the last carries the 10-cell
	// remainder plus right padding.
	for i, want := range []int{80, 80, 80, 10} {
		text := spanText(src[i])
		require.Equal(t, strings.Repeat("a", want), strings.TrimRight(text, " "))
		require.Equal(t, 80, runewidth.StringWidth(text))
	}

	// Only the first row is numbered; continuations get blank gutters.
	require.Equal(t, "1 ", src[0].Gutter)
	for _, r := range src[1:] {
		require.Equal(t, "  ", r.Gutter)
	}
}

func TestFormatWrapsAtWordBoundaries(t *testing.T) {
	f := NewFormatter()
	src, _ := f.Format(
		[]Op{Matched(0, 0)},
		[]string{"alpha beta gamma"}, []string{"alpha beta gamma"},
		Layout{TextWidth: 12, Height: 100},
	)

	require.Len(t, src, 2)
	require.Equal(t, "alpha beta", strings.TrimRight(spanText(src[0]), " "))
	require.Equal(t, "gamma", strings.TrimRight(spanText(src[1]), " "))
}

func TestFormatFoldsLongUnchangedRun(t *testing.T) {
	// A run of 10 equal lines flanked by changes on both sides, with
	// three context lines, keeps 3+3 context rows and hides 4.
	source := []string{"left head"}
	dest := []string{"right head"}
	ops := []Op{Matched(0, 0)}
	for i := 1; i <= 10; i++ {
		source = append(source, "shared body")
		dest = append(dest, "shared body")
		ops = append(ops, Matched(i, i))
	}
	source = append(source, "left tail")
	dest = append(dest, "right tail")
	ops = append(ops, Matched(11, 11))

	f := NewFormatter()
	src, dst := f.Format(ops, source, dest, Layout{
		TextWidth:    40,
		FoldEnabled:  true,
		ContextLines: 3,
		Height:       100,
	})

	require.Len(t, src, 9)
	require.Len(t, dst, 9)

	require.Equal(t, RowFold, src[4].Kind)
	require.Equal(t, RowFold, dst[4].Kind)
	require.Equal(t, 4, src[4].Hidden)
	require.Equal(t, strings.Repeat(" ", 3), src[4].Gutter)

	// Gutter width covers the two-digit line count: context lines 2-4
	// before the marker, 9-11 after, changes at 1 and 12.
	require.Equal(t, " 1 ", src[0].Gutter)
	require.Equal(t, " 2 ", src[1].Gutter)
	require.Equal(t, " 4 ", src[3].Gutter)
	require.Equal(t, " 9 ", src[5].Gutter)
	require.Equal(t, "11 ", src[7].Gutter)
	require.Equal(t, "12 ", src[8].Gutter)
}

func TestFormatRunAtThresholdStaysExpanded(t *testing.T) {
	// threshold is 2*context+1 = 7 with changes on both sides; a run of
	// exactly 7 must not fold.
	source := []string{"a head"}
	dest := []string{"b head"}
	ops := []Op{Matched(0, 0)}
	for i := 1; i <= 7; i++ {
		source = append(source, "same")
		dest = append(dest, "same")
		ops = append(ops, Matched(i, i))
	}
	source = append(source, "a tail")
	dest = append(dest, "b tail")
	ops = append(ops, Matched(8, 8))

	f := NewFormatter()
	src, _ := f.Format(ops, source, dest, Layout{
		TextWidth:    40,
		FoldEnabled:  true,
		ContextLines: 3,
		Height:       100,
	})
	require.Len(t, src, 9)
	for _, r := range src {
		require.NotEqual(t, RowFold, r.Kind)
	}
}

func TestFormatNeverFoldsWithoutAdjacentChange(t *testing.T) {
	var source, dest []string
	var ops []Op
	for i := 0; i < 20; i++ {
		source = append(source, "identical")
		dest = append(dest, "identical")
		ops = append(ops, Matched(i, i))
	}
	f := NewFormatter()
	src, _ := f.Format(ops, source, dest, Layout{
		TextWidth:    40,
		FoldEnabled:  true,
		ContextLines: 3,
		Height:       100,
	})
	require.Len(t, src, 20)
}

func TestFormatPadsOneSidedOps(t *testing.T) {
	f := NewFormatter()
	src, dst := f.Format(
		[]Op{SourceOnly(0)},
		[]string{"removed line"}, nil,
		Layout{TextWidth: 20, Height: 100},
	)
	require.Len(t, src, 1)
	require.Len(t, dst, 1)
	require.Equal(t, RowText, src[0].Kind)
	require.Equal(t, RoleRemoved, src[0].Role)
	require.Equal(t, RowBlank, dst[0].Kind)
	require.Equal(t, strings.Repeat(" ", 20), spanText(dst[0]))
}

func TestFormatIntraLineSegments(t *testing.T) {
	source := []string{"line1", "", "line2 old"}
	dest := []string{"line1", "", "line2 new"}
	ops := Align(source, dest, DefaultOptions())
	require.Equal(t, []Op{Matched(0, 0), Matched(1, 1), Matched(2, 2)}, ops)

	f := NewFormatter()
	src, dst := f.Format(ops, source, dest, Layout{TextWidth: 20, Height: 100})
	require.Len(t, src, 3)

	require.Equal(t, RoleModified, src[2].Role)
	require.Equal(t, []Segment{
		{Text: "line2 "},
		{Text: "old", Changed: true},
		{Text: strings.Repeat(" ", 11)},
	}, src[2].Spans)
	require.Equal(t, []Segment{
		{Text: "line2 "},
		{Text: "new", Changed: true},
		{Text: strings.Repeat(" ", 11)},
	}, dst[2].Spans)
}

func TestFormatScrollAndHeight(t *testing.T) {
	var source, dest []string
	var ops []Op
	for i := 0; i < 10; i++ {
		source = append(source, "row")
		dest = append(dest, "row")
		ops = append(ops, Matched(i, i))
	}
	f := NewFormatter()

	src, dst := f.Format(ops, source, dest, Layout{TextWidth: 10, ScrollOffset: 4, Height: 3})
	require.Len(t, src, 3)
	require.Len(t, dst, 3)
	require.Equal(t, " 5 ", src[0].Gutter)

	// Offsets past the end and negative values clamp instead of failing.
	src, _ = f.Format(ops, source, dest, Layout{TextWidth: 10, ScrollOffset: 99, Height: 3})
	require.Empty(t, src)
	src, _ = f.Format(ops, source, dest, Layout{TextWidth: 10, ScrollOffset: -5, Height: 3})
	require.Len(t, src, 3)
	require.Equal(t, " 1 ", src[0].Gutter)
}

func TestFormatZeroWidth(t *testing.T) {
	f := NewFormatter()
	src, dst := f.Format(
		[]Op{Matched(0, 0)},
		[]string{"content"}, []string{"content"},
		Layout{TextWidth: 0, Height: 100},
	)
	require.Len(t, src, 1)
	require.Len(t, dst, 1)
	require.Equal(t, 0, src[0].Width)
	require.Equal(t, "", spanText(src[0]))
}

func TestFormatDeterministic(t *testing.T) {
	source := []string{"one", "two old", "", "three"}
	dest := []string{"one", "two new", "", "four"}
	ops := Align(source, dest, DefaultOptions())
	lay := Layout{TextWidth: 30, FoldEnabled: true, ContextLines: 2, Height: 50}

	f := NewFormatter()
	src1, dst1 := f.Format(ops, source, dest, lay)
	src2, dst2 := f.Format(ops, source, dest, lay)
	require.Equal(t, src1, src2)
	require.Equal(t, dst1, dst2)
}

func TestGutterWidthCache(t *testing.T) {
	f := NewFormatter()
	require.Equal(t, 2, f.gutterWidth(5, 9))
	require.Equal(t, 2, f.gutterWidth(5, 9))
	require.Equal(t, 3, f.gutterWidth(5, 42))
	require.Equal(t, 4, f.gutterWidth(120, 800))
	require.Equal(t, 2, f.gutterWidth(0, 0))
}

func TestProperty_ColumnsStayInSync(t *testing.T) {
	// Both columns always have the same length, and every text or blank
	// row renders exactly TextWidth cells.
	rapid.Check(t, func(rt *rapid.T) {
		lineGen := rapid.StringMatching(`[a-d ]{0,30}`)
		source := rapid.SliceOfN(lineGen, 0, 12).Draw(rt, "source")
		dest := rapid.SliceOfN(lineGen, 0, 12).Draw(rt, "dest")
		width := rapid.IntRange(1, 24).Draw(rt, "width")
		fold := rapid.Bool().Draw(rt, "fold")

		ops := Align(source, dest, DefaultOptions())
		f := NewFormatter()
		src, dst := f.Format(ops, source, dest, Layout{
			TextWidth:    width,
			FoldEnabled:  fold,
			ContextLines: 2,
			Height:       1000,
		})

		require.Equal(t, len(src), len(dst))
		for i := range src {
			require.Equal(t, src[i].Kind == RowFold, dst[i].Kind == RowFold)
			for _, r := range []Row{src[i], dst[i]} {
				if r.Kind == RowFold {
					continue
				}
				require.Equal(t, width, runewidth.StringWidth(spanText(r)),
					"row %d: %q", i, spanText(r))
			}
		}
	})
}
