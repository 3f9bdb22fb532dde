package sidebyside

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Formatter renders an alignment into two synchronized row columns. Its
// only state between calls is the gutter-width cache; everything else is
// recomputed per call, so Format is deterministic for fixed arguments.
// The zero value is ready to use.
type Formatter struct {
	gutterSrcLen int
	gutterDstLen int
	gutterCached int
	gutterValid  bool
}

// NewFormatter returns a fresh formatter.
func NewFormatter() *Formatter { return &Formatter{} }

// gutterWidth is digit_count(max(nSrc, nDst)) + 1 for the trailing space,
// cached until either sequence length changes.
func (f *Formatter) gutterWidth(nSrc, nDst int) int {
	if f.gutterValid && f.gutterSrcLen == nSrc && f.gutterDstLen == nDst {
		return f.gutterCached
	}
	mx := nSrc
	if nDst > mx {
		mx = nDst
	}
	digits := 1
	for mx >= 10 {
		digits++
		mx /= 10
	}
	f.gutterSrcLen, f.gutterDstLen = nSrc, nDst
	f.gutterCached = digits + 1
	f.gutterValid = true
	return f.gutterCached
}

// Format turns an alignment plus the underlying lines into two equal-length
// row sequences, wrapped to lay.TextWidth, folded when lay.FoldEnabled,
// and clipped to the viewport. It is total: degenerate widths, heights and
// offsets degrade to minimal valid output rather than failing.
func (f *Formatter) Format(ops []Op, source, dest []string, lay Layout) (srcRows, dstRows []Row) {
	gutter := f.gutterWidth(len(source), len(dest))
	st := &formatState{
		source:  source,
		dest:    dest,
		width:   lay.TextWidth,
		gutter:  gutter,
		context: lay.ContextLines,
	}
	if st.width < 0 {
		st.width = 0
	}
	if st.context < 0 {
		st.context = 0
	}

	noFoldUntil := 0
	for i := 0; i < len(ops); i++ {
		if lay.FoldEnabled && i >= noFoldUntil {
			if run := unchangedRunLen(ops, i, source, dest); run > 0 {
				if st.emitFolded(ops, i, run) {
					i += run - 1
					continue
				}
				noFoldUntil = i + run
			}
		}
		st.emitOp(ops[i])
	}

	srcRows, dstRows = st.src, st.dst
	offset := lay.ScrollOffset
	if offset < 0 {
		offset = 0
	}
	if offset > len(srcRows) {
		offset = len(srcRows)
	}
	srcRows = srcRows[offset:]
	dstRows = dstRows[offset:]

	height := lay.Height
	if height < 0 {
		height = 0
	}
	if len(srcRows) > height {
		srcRows = srcRows[:height]
		dstRows = dstRows[:height]
	}
	return srcRows, dstRows
}

// unchangedRunLen is the length of the maximal run of matched,
// equal-after-normalization ops starting at i.
func unchangedRunLen(ops []Op, i int, source, dest []string) int {
	run := 0
	for i+run < len(ops) && !opChanged(ops[i+run], source, dest) {
		run++
	}
	return run
}

// opChanged reports whether an op renders as a change: any one-sided op,
// or a matched pair whose lines differ after normalization.
func opChanged(op Op, source, dest []string) bool {
	if op.Kind != OpMatched {
		return true
	}
	return normalizeLine(source[op.Src]) != normalizeLine(dest[op.Dst])
}

// formatState is the per-call accumulator threaded through row emission.
type formatState struct {
	source  []string
	dest    []string
	width   int
	gutter  int
	context int

	src []Row
	dst []Row
}

// emitFolded collapses ops[i:i+run] when the run is long enough for its
// surroundings, keeping context rows at edges adjacent to a change.
// Returns false when the run stays expanded.
func (st *formatState) emitFolded(ops []Op, i, run int) bool {
	before := i > 0 && opChanged(ops[i-1], st.source, st.dest)
	after := i+run < len(ops) && opChanged(ops[i+run], st.source, st.dest)

	var threshold int
	switch {
	case before && after:
		threshold = 2*st.context + 1
	case before || after:
		threshold = st.context + 1
	default:
		// No surrounding change justifies collapsing.
		return false
	}
	if run <= threshold {
		return false
	}

	ctxBefore := 0
	if before {
		ctxBefore = min(st.context, run)
	}
	ctxAfter := 0
	if after {
		ctxAfter = min(st.context, run-ctxBefore)
	}
	hidden := run - ctxBefore - ctxAfter

	for k := i; k < i+ctxBefore; k++ {
		st.emitOp(ops[k])
	}
	if hidden > 0 {
		marker := Row{
			Kind:   RowFold,
			Gutter: strings.Repeat(" ", st.gutter),
			Width:  st.width,
			Hidden: hidden,
		}
		st.src = append(st.src, marker)
		st.dst = append(st.dst, marker)
	}
	for k := i + run - ctxAfter; k < i+run; k++ {
		st.emitOp(ops[k])
	}
	return true
}

// emitOp renders one alignment entry onto both columns and pads the
// shorter side so the columns stay the same length at every op boundary.
func (st *formatState) emitOp(op Op) {
	var left, right []Row
	switch op.Kind {
	case OpMatched:
		srcLine, dstLine := st.source[op.Src], st.dest[op.Dst]
		if normalizeLine(srcLine) == normalizeLine(dstLine) {
			left = st.wrapLine(op.Src+1, []Segment{{Text: srcLine}}, RoleNone)
			right = st.wrapLine(op.Dst+1, []Segment{{Text: dstLine}}, RoleNone)
		} else {
			left = st.wrapLine(op.Src+1, DiffSide(srcLine, dstLine, Source), RoleModified)
			right = st.wrapLine(op.Dst+1, DiffSide(dstLine, srcLine, Destination), RoleModified)
		}
	case OpSourceOnly:
		left = st.wrapLine(op.Src+1, []Segment{{Text: st.source[op.Src], Changed: true}}, RoleRemoved)
	case OpDestOnly:
		right = st.wrapLine(op.Dst+1, []Segment{{Text: st.dest[op.Dst], Changed: true}}, RoleAdded)
	}

	st.src = append(st.src, left...)
	st.dst = append(st.dst, right...)
	for len(st.src) < len(st.dst) {
		st.src = append(st.src, st.blankRow())
	}
	for len(st.dst) < len(st.src) {
		st.dst = append(st.dst, st.blankRow())
	}
}

func (st *formatState) blankRow() Row {
	return Row{
		Kind:   RowBlank,
		Gutter: strings.Repeat(" ", st.gutter),
		Spans:  []Segment{{Text: strings.Repeat(" ", st.width)}},
		Width:  st.width,
	}
}

// lineWrapper accumulates one logical line's segments into physical rows.
// Explicit state instead of closure-captured locals: current spans, their
// display width, and whether the next flush is the line's first row.
type lineWrapper struct {
	st       *formatState
	lineNum  int
	role     Role
	rows     []Row
	spans    []Segment
	curWidth int
	first    bool
}

// wrapLine lays the segments of one logical line into rows of exactly
// st.width display cells. Only the first row carries the line number;
// continuations get a blank gutter of the same width.
func (st *formatState) wrapLine(lineNum int, segs []Segment, role Role) []Row {
	w := &lineWrapper{st: st, lineNum: lineNum, role: role, first: true}

	if st.width == 0 {
		// Degenerate viewport: one zero-width row keeps the line
		// accounted for in vertical sync.
		w.flush()
		return w.rows
	}

	for _, seg := range segs {
		for _, unit := range splitWordUnits(seg.Text) {
			w.add(unit, seg.Changed)
		}
	}
	if len(w.spans) > 0 || w.first {
		w.flush()
	}
	return w.rows
}

// add places one word unit, flushing ahead of it when it will not fit and
// hard-splitting it at grapheme boundaries when it is wider than a row.
func (w *lineWrapper) add(unit string, changed bool) {
	uw := runewidth.StringWidth(unit)
	if uw > w.remaining() && len(w.spans) > 0 {
		w.flush()
	}
	if uw <= w.remaining() {
		w.push(unit, changed)
		return
	}

	// Unit wider than a whole row: split at the exact cell boundary that
	// fills the remaining width, never inside a grapheme cluster.
	var part strings.Builder
	partWidth := 0
	gr := uniseg.NewGraphemes(unit)
	for gr.Next() {
		cluster := gr.Str()
		cw := runewidth.StringWidth(cluster)
		if partWidth+cw > w.remaining() {
			if part.Len() > 0 {
				w.push(part.String(), changed)
				part.Reset()
				partWidth = 0
			}
			if len(w.spans) > 0 {
				w.flush()
			}
			if cw > w.st.width {
				// A single cluster wider than the viewport cannot be
				// split; emit it alone.
				w.push(cluster, changed)
				w.flush()
				continue
			}
		}
		part.WriteString(cluster)
		partWidth += cw
	}
	if part.Len() > 0 {
		w.push(part.String(), changed)
	}
}

func (w *lineWrapper) remaining() int {
	if w.curWidth >= w.st.width {
		return 0
	}
	return w.st.width - w.curWidth
}

// push appends text to the current row, coalescing with the previous span
// when the change flag matches.
func (w *lineWrapper) push(text string, changed bool) {
	if n := len(w.spans); n > 0 && w.spans[n-1].Changed == changed {
		w.spans[n-1].Text += text
	} else {
		w.spans = append(w.spans, Segment{Text: text, Changed: changed})
	}
	w.curWidth += runewidth.StringWidth(text)
}

// flush closes the current row: gutter, accumulated spans, right padding
// out to the full text width.
func (w *lineWrapper) flush() {
	gutter := strings.Repeat(" ", w.st.gutter)
	if w.first {
		gutter = fmt.Sprintf("%*d ", w.st.gutter-1, w.lineNum)
	}
	spans := w.spans
	if pad := w.st.width - w.curWidth; pad > 0 {
		spans = append(spans, Segment{Text: strings.Repeat(" ", pad)})
	}
	if len(spans) == 0 {
		spans = []Segment{{Text: ""}}
	}
	w.rows = append(w.rows, Row{
		Kind:   RowText,
		Gutter: gutter,
		Spans:  spans,
		Width:  w.st.width,
		Role:   w.role,
	})
	w.spans = nil
	w.curWidth = 0
	w.first = false
}
