package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"syncview/internal/config"
	"syncview/internal/diffdir"
	"syncview/internal/gitops"
	"syncview/internal/sidebyside"
	"syncview/internal/syncer"
	"syncview/internal/tui/state"
	"syncview/internal/tui/widgets/statusbar"
	"syncview/internal/watcher"
)

// App bundles what the dashboard needs from the caller.
type App struct {
	Config *config.Config
	Engine *diffdir.Engine
	// Watch is optional; when set, filesystem changes refresh the list.
	Watch *watcher.Watcher
}

// Run shows the interactive dashboard and blocks until the user quits.
func Run(app App) error {
	m := newModel(app)
	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// ===== Messages =====

type refreshMsg struct {
	entries []diffdir.Entry
	err     error
}

type watchMsg struct{}

type openMsg struct {
	entry    diffdir.Entry
	src, dst []string
	err      error
}

type syncMsg struct {
	res syncer.Result
}

type gitMsg struct {
	st gitops.Status
}

// ===== Key bindings =====

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Open      key.Binding
	Back      key.Binding
	Direction key.Binding
	View      key.Binding
	Fold      key.Binding
	Yank      key.Binding
	SyncOne   key.Binding
	SyncAll   key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open diff")),
		Back:      key.NewBinding(key.WithKeys("b", "esc"), key.WithHelp("b/esc", "back")),
		Direction: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "flip direction")),
		View:      key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "toggle view")),
		Fold:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "toggle folding")),
		Yank:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy path")),
		SyncOne:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sync file")),
		SyncAll:   key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "sync all")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.SyncOne, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Back},
		{k.Direction, k.View, k.Fold, k.Refresh},
		{k.Yank, k.SyncOne, k.SyncAll, k.Quit},
	}
}

// ===== Model =====

type model struct {
	cfg    *config.Config
	engine *diffdir.Engine
	watch  *watcher.Watcher

	entries []diffdir.Entry

	// open diff, valid while ui.Screen == Diff
	open     diffdir.Entry
	srcLines []string
	dstLines []string
	ops      []sidebyside.Op
	fmtr     *sidebyside.Formatter

	ui     state.UIState
	keys   keyMap
	help   help.Model
	status statusbar.StatusBar
	git    gitops.Status
	err    error
}

func newModel(app App) model {
	return model{
		cfg:    app.Config,
		engine: app.Engine,
		watch:  app.Watch,
		fmtr:   sidebyside.NewFormatter(),
		ui: state.UIState{
			View:   state.SideBySide,
			Fold:   true,
			MinCol: 24,
		},
		keys:   newKeyMap(),
		help:   help.New(),
		status: statusbar.NewStatusBar(),
	}
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.refreshCmd(), gitCmd()}
	if m.watch != nil {
		cmds = append(cmds, m.waitForChange())
	}
	return tea.Batch(cmds...)
}

func gitCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		st, err := gitops.Load(ctx, ".")
		if err != nil {
			return gitMsg{}
		}
		return gitMsg{st: st}
	}
}

// ===== Commands =====

// refreshCmd rescans every mapping in the current direction.
func (m *model) refreshCmd() tea.Cmd {
	cfg, engine, dir := m.cfg, m.engine, m.ui.Direction
	return func() tea.Msg {
		var all []diffdir.Entry
		for _, mp := range cfg.Mappings {
			src, dst := mp.Shared, mp.Project
			if dir == state.ProjectToShared {
				src, dst = dst, src
			}
			extra := append(append([]string(nil), cfg.Exclude...), mp.Exclude...)
			entries, err := engine.Compare(src, dst, extra)
			if err != nil {
				return refreshMsg{err: err}
			}
			all = append(all, entries...)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].Path < all[j].Path })
		return refreshMsg{entries: all}
	}
}

func (m *model) waitForChange() tea.Cmd {
	events := m.watch.Events()
	return func() tea.Msg {
		if _, ok := <-events; ok {
			return watchMsg{}
		}
		return nil
	}
}

func (m *model) openCmd(entry diffdir.Entry) tea.Cmd {
	return func() tea.Msg {
		src, err := diffdir.LoadLines(entry.SourcePath)
		if err != nil {
			return openMsg{err: err}
		}
		dst, err := diffdir.LoadLines(entry.DestPath)
		if err != nil {
			return openMsg{err: err}
		}
		return openMsg{entry: entry, src: src, dst: dst}
	}
}

func (m *model) syncCmd(entries []diffdir.Entry) tea.Cmd {
	opts := syncer.Options{
		Backup:          m.cfg.Sync.Backup,
		ContinueOnError: m.cfg.Sync.ContinueOnError,
	}
	return func() tea.Msg {
		return syncMsg{res: syncer.New(opts).SyncAll(entries)}
	}
}

// ===== Update =====

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ui = state.Resize(m.ui, msg.Width, msg.Height)
		m.help.Width = msg.Width
		return m, nil

	case refreshMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.entries = msg.entries
		m.ui = state.MoveSelection(m.ui, 0, len(m.entries))
		return m, nil

	case watchMsg:
		return m, tea.Batch(m.refreshCmd(), m.waitForChange())

	case gitMsg:
		m.git = msg.st
		return m, nil

	case openMsg:
		if msg.err != nil {
			m.ui.Notice = msg.err.Error()
			return m, nil
		}
		m.open = msg.entry
		m.srcLines, m.dstLines = msg.src, msg.dst
		m.ops = sidebyside.Align(m.srcLines, m.dstLines, sidebyside.Options{
			SimilarityThreshold: m.cfg.Engine.SimilarityThreshold,
		})
		m.ui = state.OpenDiff(m.ui)
		return m, nil

	case syncMsg:
		m.ui.Notice = fmt.Sprintf("synced %d, failed %d, skipped %d",
			msg.res.Synced, msg.res.Failed, msg.res.Skipped)
		if len(msg.res.Errors) > 0 {
			m.ui.Notice = msg.res.Errors[0]
		}
		return m, m.refreshCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.ui.Notice = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.ui = state.ToggleHelp(m.ui)
		m.help.ShowAll = m.ui.ShowHelp
		return m, nil
	}

	if m.ui.Screen == state.List {
		return m.handleListKey(msg)
	}
	return m.handleDiffKey(msg)
}

func (m *model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.ui = state.MoveSelection(m.ui, -1, len(m.entries))
	case key.Matches(msg, m.keys.Down):
		m.ui = state.MoveSelection(m.ui, 1, len(m.entries))
	case key.Matches(msg, m.keys.Open):
		if e, ok := m.selected(); ok {
			return m, m.openCmd(e)
		}
	case key.Matches(msg, m.keys.Direction):
		m.ui = state.ToggleDirection(m.ui)
		return m, m.refreshCmd()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()
	case key.Matches(msg, m.keys.Yank):
		if e, ok := m.selected(); ok {
			if err := clipboard.WriteAll(e.Path); err != nil {
				m.ui.Notice = "clipboard unavailable"
			} else {
				m.ui.Notice = "copied " + e.Path
			}
		}
	case key.Matches(msg, m.keys.SyncOne):
		if e, ok := m.selected(); ok {
			return m, m.syncCmd([]diffdir.Entry{e})
		}
	case key.Matches(msg, m.keys.SyncAll):
		if len(m.entries) > 0 {
			return m, m.syncCmd(m.entries)
		}
	}
	return m, nil
}

func (m *model) handleDiffKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.ui = state.CloseDiff(m.ui)
	case key.Matches(msg, m.keys.Up):
		m.ui = state.Scroll(m.ui, -1, m.maxScroll())
	case key.Matches(msg, m.keys.Down):
		m.ui = state.Scroll(m.ui, 1, m.maxScroll())
	case key.Matches(msg, m.keys.View):
		m.ui = state.ToggleView(m.ui)
		m.ui = state.Scroll(m.ui, 0, m.maxScroll())
	case key.Matches(msg, m.keys.Fold):
		m.ui = state.ToggleFold(m.ui)
		m.ui = state.Scroll(m.ui, 0, m.maxScroll())
	case key.Matches(msg, m.keys.Yank):
		if err := clipboard.WriteAll(m.open.Path); err != nil {
			m.ui.Notice = "clipboard unavailable"
		} else {
			m.ui.Notice = "copied " + m.open.Path
		}
	case key.Matches(msg, m.keys.SyncOne):
		return m, m.syncCmd([]diffdir.Entry{m.open})
	}
	return m, nil
}

func (m *model) selected() (diffdir.Entry, bool) {
	if m.ui.Selected < 0 || m.ui.Selected >= len(m.entries) {
		return diffdir.Entry{}, false
	}
	return m.entries[m.ui.Selected], true
}

// layout computes the side-by-side geometry for the current terminal.
func (m *model) layout() sidebyside.Layout {
	colWidth := (m.ui.Width - 3) / 2 // separator takes 3 cells
	gutter := 4
	text := colWidth - gutter
	if text < 1 {
		text = 1
	}
	height := m.ui.Height - 4 // title, status bar, help line
	if height < 1 {
		height = 1
	}
	return sidebyside.Layout{
		TextWidth:    text,
		FoldEnabled:  m.ui.Fold,
		ContextLines: m.cfg.Engine.ContextLines,
		ScrollOffset: m.ui.ScrollV,
		Height:       height,
	}
}

// maxScroll is how far the open diff can scroll down.
func (m *model) maxScroll() int {
	lay := m.layout()
	viewH := lay.Height
	var total int
	if m.ui.View == state.Unified {
		total = len(unifiedLines(m.srcLines, m.dstLines))
	} else {
		lay.ScrollOffset = 0
		lay.Height = 1 << 30
		rows, _ := m.fmtr.Format(m.ops, m.srcLines, m.dstLines, lay)
		total = len(rows)
	}
	if total <= viewH {
		return 0
	}
	return total - viewH
}

// ===== View =====

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	selStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "205", Dark: "213"}).Bold(true)
	faintStyle  = lipgloss.NewStyle().Faint(true)
	addedTag    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "114"})
	removedTag  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"})
	modifiedTag = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "130", Dark: "215"})
)

func (m *model) View() string {
	var body string
	switch m.ui.Screen {
	case state.Diff:
		body = m.viewDiff()
	default:
		body = m.viewList()
	}
	status := m.status.View(m.ui)
	if g := gitSummary(m.git); g != "" {
		status += "  " + faintStyle.Render(g)
	}
	return body + "\n" + status + "\n" + m.help.View(m.keys)
}

// gitSummary compresses repo state into a status-bar fragment like
// "main ↑2 ↓1 *".
func gitSummary(st gitops.Status) string {
	if !st.IsRepo || st.Branch == "" {
		return ""
	}
	s := st.Branch
	if st.Ahead > 0 {
		s += fmt.Sprintf(" ↑%d", st.Ahead)
	}
	if st.Behind > 0 {
		s += fmt.Sprintf(" ↓%d", st.Behind)
	}
	if st.Uncommitted {
		s += " *"
	}
	return s
}

func statusTag(s diffdir.Status) string {
	switch s {
	case diffdir.Added:
		return addedTag.Render("A")
	case diffdir.Deleted:
		return removedTag.Render("D")
	default:
		return modifiedTag.Render("M")
	}
}

func (m *model) viewList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("syncview") + "\n")
	if m.err != nil {
		b.WriteString(removedTag.Render("error: "+m.err.Error()) + "\n")
	}
	if len(m.entries) == 0 {
		b.WriteString(faintStyle.Render("Everything in sync.") + "\n")
		return b.String()
	}
	for i, e := range m.entries {
		line := fmt.Sprintf("  %s %s", statusTag(e.Status), e.Path)
		if i == m.ui.Selected {
			line = selStyle.Render("> ") + statusTag(e.Status) + " " + selStyle.Render(e.Path)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m *model) viewDiff() string {
	var b strings.Builder
	title := m.open.Path
	if m.ui.Width > 10 {
		title = truncate.StringWithTail(title, uint(m.ui.Width-2), "…")
	}
	b.WriteString(titleStyle.Render(title) + "\n")

	if m.ui.View == state.Unified {
		lay := m.layout()
		b.WriteString(renderUnified(m.srcLines, m.dstLines, m.ui.ScrollV, lay.Height))
		return b.String()
	}

	srcRows, dstRows := m.fmtr.Format(m.ops, m.srcLines, m.dstLines, m.layout())
	b.WriteString(renderColumns(srcRows, dstRows))
	return b.String()
}
