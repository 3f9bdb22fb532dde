// Package sidebyside turns two raw line sequences into two synchronized,
// display-ready row sequences for a two-column diff: an optimal line
// alignment, word-level change segments for modified pairs, and wrapped,
// foldable, viewport-clipped rows. It is pure computation: no files, no
// colors, no terminal knowledge.
package sidebyside

// Side selects which line of a matched pair DiffSide describes.
type Side int

const (
	// Source is the left column (the line passed as diff subject).
	Source Side = iota
	// Destination is the right column.
	Destination
)

// OpKind classifies one alignment entry.
type OpKind int

const (
	// OpMatched pairs a source line with a destination line.
	OpMatched OpKind = iota
	// OpSourceOnly marks a line present only in the source.
	OpSourceOnly
	// OpDestOnly marks a line present only in the destination.
	OpDestOnly
)

// Op is one entry of an alignment. Src is valid for OpMatched and
// OpSourceOnly, Dst for OpMatched and OpDestOnly; the unused index is -1.
//
// Across a full alignment the Src values of OpMatched/OpSourceOnly entries
// cover 0..len(source) exactly once each, in increasing order, and
// symmetrically for Dst.
type Op struct {
	Kind OpKind
	Src  int
	Dst  int
}

// Matched builds a pairing op.
func Matched(src, dst int) Op { return Op{Kind: OpMatched, Src: src, Dst: dst} }

// SourceOnly builds a source-exclusive op.
func SourceOnly(src int) Op { return Op{Kind: OpSourceOnly, Src: src, Dst: -1} }

// DestOnly builds a destination-exclusive op.
func DestOnly(dst int) Op { return Op{Kind: OpDestOnly, Src: -1, Dst: dst} }

// Segment is a contiguous run of a line's text sharing one change flag.
// Concatenating a line's segment texts reconstructs the line (see DiffSide
// for the one prefix-extension exception on the Destination side).
type Segment struct {
	Text    string
	Changed bool
}

// RowKind distinguishes the row variants a column can contain.
type RowKind int

const (
	// RowText carries (part of) a logical line.
	RowText RowKind = iota
	// RowBlank is vertical-sync padding opposite the other column's rows.
	RowBlank
	// RowFold stands in for a collapsed run of unchanged lines; it is
	// emitted identically on both columns and carries Hidden.
	RowFold
)

// Role tags what kind of change a row belongs to, so a renderer can pick
// add/remove/modify colors without the engine knowing about color.
type Role int

const (
	RoleNone Role = iota
	RoleAdded
	RoleRemoved
	RoleModified
)

// Row is one physical terminal row of one column. The display width of the
// concatenated span texts always equals Width (right-padded with spaces),
// except for RowFold rows, whose text the renderer supplies from Hidden.
type Row struct {
	Kind   RowKind
	Gutter string
	Spans  []Segment
	Width  int
	Role   Role
	// Hidden is the collapsed line count for RowFold rows.
	Hidden int
}

// Options carries the alignment policy knobs. The observed defaults are
// policy, not algorithmic necessity, so they are configurable.
type Options struct {
	// SimilarityThreshold is the Jaccard token-set similarity above which
	// two unequal lines align as a modified pair instead of an
	// insertion plus a deletion.
	SimilarityThreshold float64
}

// DefaultOptions returns the tuning the tool ships with.
func DefaultOptions() Options {
	return Options{SimilarityThreshold: 0.3}
}

// Layout carries the viewport parameters of one Format call.
type Layout struct {
	// TextWidth is the content width of each column, excluding the gutter.
	TextWidth int
	// FoldEnabled collapses long runs of unchanged matched lines.
	FoldEnabled bool
	// ContextLines is the number of unchanged rows kept visible at each
	// folded edge that touches a change.
	ContextLines int
	// ScrollOffset drops this many physical rows from the front of both
	// finished columns.
	ScrollOffset int
	// Height truncates both columns to this many rows.
	Height int
}
