package sidebyside

import "strings"

// normalizeLine reduces a whitespace-only line to the empty string; any
// other line compares literally.
func normalizeLine(line string) string {
	if strings.TrimSpace(line) == "" {
		return ""
	}
	return line
}

// similarity is the Jaccard coefficient of the two lines' whitespace-split
// token sets. Blank lines never count as similar to anything.
func similarity(a, b string) float64 {
	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(wordsA))
	for _, w := range wordsA {
		setA[w] = struct{}{}
	}
	setB := make(map[string]struct{}, len(wordsB))
	for _, w := range wordsB {
		setB[w] = struct{}{}
	}
	inter := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// linesAlign reports whether two lines may occupy the same alignment slot:
// literally equal after normalization, or similar enough to render as one
// modified pair. Blank-blank pairs are excluded here; those only align
// through the forced same-index rule.
func linesAlign(a, b string, threshold float64) bool {
	na, nb := normalizeLine(a), normalizeLine(b)
	if na == "" && nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	return similarity(na, nb) > threshold
}

// Align computes an order-preserving correspondence between source and
// dest. It is total: every input index appears in the result exactly once.
//
// Blank lines at the same index within the shared prefix are forced to
// match so they stay visually aligned regardless of what a globally
// optimal alignment would prefer. The forced pairs partition both
// sequences at identical positions, so the remaining lines are aligned
// with an LCS dynamic program per partition segment, which keeps the
// result monotonic in both indices without a repair pass.
func Align(source, dest []string, opts Options) []Op {
	n, m := len(source), len(dest)

	shared := n
	if m < shared {
		shared = m
	}
	var forced []int
	for i := 0; i < shared; i++ {
		if normalizeLine(source[i]) == "" && normalizeLine(dest[i]) == "" {
			forced = append(forced, i)
		}
	}

	ops := make([]Op, 0, n+m)
	srcStart, dstStart := 0, 0
	for _, f := range forced {
		ops = appendSegmentOps(ops, source, dest, srcStart, f, dstStart, f, opts)
		ops = append(ops, Matched(f, f))
		srcStart, dstStart = f+1, f+1
	}
	ops = appendSegmentOps(ops, source, dest, srcStart, n, dstStart, m, opts)

	return absorbTrailingBlanks(ops, source, dest)
}

// appendSegmentOps aligns source[srcLo:srcHi] with dest[dstLo:dstHi] via a
// classic LCS dynamic program and appends the resulting ops in order.
func appendSegmentOps(ops []Op, source, dest []string, srcLo, srcHi, dstLo, dstHi int, opts Options) []Op {
	n := srcHi - srcLo
	m := dstHi - dstLo

	switch {
	case n <= 0 && m <= 0:
		return ops
	case n <= 0:
		for j := dstLo; j < dstHi; j++ {
			ops = append(ops, DestOnly(j))
		}
		return ops
	case m <= 0:
		for i := srcLo; i < srcHi; i++ {
			ops = append(ops, SourceOnly(i))
		}
		return ops
	}

	match := func(i, j int) bool {
		return linesAlign(source[srcLo+i], dest[dstLo+j], opts.SimilarityThreshold)
	}

	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if match(i-1, j-1) {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] >= dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}

	// Backtrack, preferring the match diagonal when it is consistent with
	// the optimal score. On ties the source line is consumed first in the
	// emitted order, so removals render ahead of the additions that
	// replace them.
	rev := make([]Op, 0, n+m)
	i, j := n, m
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && match(i-1, j-1) && dp[i][j] == dp[i-1][j-1]+1:
			rev = append(rev, Matched(srcLo+i-1, dstLo+j-1))
			i--
			j--
		case j > 0 && (i == 0 || dp[i][j-1] >= dp[i-1][j]):
			rev = append(rev, DestOnly(dstLo+j-1))
			j--
		default:
			rev = append(rev, SourceOnly(srcLo+i-1))
			i--
		}
	}
	for k := len(rev) - 1; k >= 0; k-- {
		ops = append(ops, rev[k])
	}
	return ops
}

// absorbTrailingBlanks reclassifies a blank matched pair that immediately
// follows a one-sided op: the blank line trailing an addition or removal
// renders as part of that change, not as unchanged context. The matched
// entry splits into a SourceOnly plus DestOnly pair so index coverage is
// preserved. The pass chains, so a run of blank matches after a change is
// absorbed whole.
func absorbTrailingBlanks(ops []Op, source, dest []string) []Op {
	out := make([]Op, 0, len(ops))
	for _, op := range ops {
		if op.Kind == OpMatched && len(out) > 0 &&
			normalizeLine(source[op.Src]) == "" && normalizeLine(dest[op.Dst]) == "" {
			switch out[len(out)-1].Kind {
			case OpSourceOnly:
				out = append(out, SourceOnly(op.Src), DestOnly(op.Dst))
				continue
			case OpDestOnly:
				out = append(out, DestOnly(op.Dst), SourceOnly(op.Src))
				continue
			}
		}
		out = append(out, op)
	}
	return out
}
