package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	dmp "github.com/sergi/go-diff/diffmatchpatch"

	"syncview/internal/sidebyside"
)

var (
	diffDelLine = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"})
	diffAddLine = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "114"})
	diffDelChar = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"}).Underline(true)
	diffAddChar = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "114"}).Underline(true)
	diffModChar = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "130", Dark: "215"}).Underline(true)
	gutterStyle = lipgloss.NewStyle().Faint(true)
	foldStyle   = lipgloss.NewStyle().Faint(true).Italic(true)
	sepStyle    = lipgloss.NewStyle().Faint(true)
)

// renderColumns joins the two formatted row columns with a separator.
// The formatter guarantees both slices have the same length and that
// every row is already padded to its column width.
func renderColumns(src, dst []sidebyside.Row) string {
	var sb strings.Builder
	sep := sepStyle.Render(" │ ")
	for i := range src {
		if src[i].Kind == sidebyside.RowFold {
			sb.WriteString(renderFold(src[i], dst[i]))
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(renderRow(src[i]))
		sb.WriteString(sep)
		sb.WriteString(renderRow(dst[i]))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderFold(left, right sidebyside.Row) string {
	label := fmt.Sprintf("… %d unchanged lines hidden …", left.Hidden)
	total := len(left.Gutter) + left.Width + 3 + len(right.Gutter) + right.Width
	if len(label) > total {
		label = label[:total]
	}
	pad := total - len(label)
	return foldStyle.Render(strings.Repeat(" ", pad/2) + label + strings.Repeat(" ", pad-pad/2))
}

// renderRow colorizes one column cell: faint gutter, then the spans in
// the role's line color with changed spans underlined.
func renderRow(r sidebyside.Row) string {
	var sb strings.Builder
	sb.WriteString(gutterStyle.Render(r.Gutter))

	lineStyle := lipgloss.NewStyle()
	charStyle := diffModChar
	switch r.Role {
	case sidebyside.RoleRemoved:
		lineStyle, charStyle = diffDelLine, diffDelChar
	case sidebyside.RoleAdded:
		lineStyle, charStyle = diffAddLine, diffAddChar
	}

	for _, seg := range r.Spans {
		if seg.Changed {
			sb.WriteString(charStyle.Render(seg.Text))
		} else if r.Kind == sidebyside.RowBlank {
			sb.WriteString(faintStyle.Render(seg.Text))
		} else {
			sb.WriteString(lineStyle.Render(seg.Text))
		}
	}
	return sb.String()
}

// unifiedLines renders a classic +/- diff with char-level highlights on
// modified line pairs, one output line per slice element.
func unifiedLines(before, after []string) []string {
	ops := sidebyside.Align(before, after, sidebyside.DefaultOptions())
	var out []string
	for _, op := range ops {
		switch op.Kind {
		case sidebyside.OpSourceOnly:
			out = append(out, diffDelLine.Render("- "+before[op.Src]))
		case sidebyside.OpDestOnly:
			out = append(out, diffAddLine.Render("+ "+after[op.Dst]))
		case sidebyside.OpMatched:
			bl, al := before[op.Src], after[op.Dst]
			if bl == al {
				out = append(out, faintStyle.Render("  "+bl))
				continue
			}
			out = append(out, charDiffLines(bl, al)...)
		}
	}
	return out
}

// charDiffLines renders one modified pair as a -/+ line pair with
// char-level spans.
func charDiffLines(bl, al string) []string {
	d := dmp.New()
	diffs := d.DiffMain(bl, al, false)
	d.DiffCleanupSemantic(diffs)

	var del, add strings.Builder
	del.WriteString(diffDelLine.Render("- "))
	add.WriteString(diffAddLine.Render("+ "))
	for _, df := range diffs {
		switch df.Type {
		case dmp.DiffDelete:
			del.WriteString(diffDelChar.Render(df.Text))
		case dmp.DiffInsert:
			add.WriteString(diffAddChar.Render(df.Text))
		case dmp.DiffEqual:
			del.WriteString(diffDelLine.Render(df.Text))
			add.WriteString(diffAddLine.Render(df.Text))
		}
	}
	return []string{del.String(), add.String()}
}

// renderUnified clips the unified diff to a scroll window.
func renderUnified(before, after []string, offset, height int) string {
	lines := unifiedLines(before, after)
	if offset < 0 {
		offset = 0
	}
	if offset > len(lines) {
		offset = len(lines)
	}
	lines = lines[offset:]
	if height >= 0 && len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n") + "\n"
}
