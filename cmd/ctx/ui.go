package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	ctx "github.com/ctxtool/ctx"
	"github.com/ctxtool/ctx/session"
	"github.com/ctxtool/ctx/tree"
)

var (
	styleIncluded = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))  // green
	styleExcluded = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))  // red
	stylePartial  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))  // yellow
	styleCursor   = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("4")).Foreground(lipgloss.Color("15"))
	styleHelp     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// model is the Bubble Tea front-end over a picker session. It only
// translates key events into session operations and renders snapshots;
// all selection state lives in the session.
type model struct {
	sess     *session.Session
	rootPath string

	textInput textinput.Model
	viewport  viewport.Model
	ready     bool
	showHelp  bool

	estimator   ctx.TokenEstimator
	tokenCache  map[string]int
	totalTokens int
	logger      *slog.Logger

	exported []string
}

// runPicker runs the interactive picker over sess and returns the
// exported file list (nil when the session was cancelled).
func runPicker(sess *session.Session, rootPath string, estimator ctx.TokenEstimator, logger *slog.Logger) ([]string, error) {
	ti := textinput.New()
	ti.Placeholder = "Type to fuzzy-search..."
	ti.Prompt = "> "
	ti.CharLimit = 0
	ti.Focus()

	m := model{
		sess:       sess,
		rootPath:   rootPath,
		textInput:  ti,
		viewport:   viewport.New(0, 0),
		estimator:  estimator,
		tokenCache: make(map[string]int),
		logger:     logger,
	}
	m.recountTokens()

	p := tea.NewProgram(m, tea.WithOutput(os.Stderr))
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	finalM, ok := finalModel.(model)
	if !ok {
		return nil, fmt.Errorf("could not get final model state")
	}
	return finalM.exported, nil
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.sess.Status() != session.Browsing {
		return m, tea.Quit
	}

	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(m.textInput.View()) + 1
		footerHeight := 3
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - headerHeight - footerHeight
		m.viewport.YPosition = headerHeight
		if !m.ready {
			m.refreshContent()
			m.ready = true
		}

	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c":
			m.sess.Quit()
			return m, tea.Quit

		case "esc":
			m.sess.Escape()
			if m.sess.Status() == session.Cancelled {
				return m, tea.Quit
			}
			m.textInput.SetValue("")
			m.refreshContent()
			return m, nil

		case "enter":
			if err := m.sess.ToggleCurrent(); err != nil {
				m.logger.Warn("toggle failed", "err", err)
			}
			m.recountTokens()
			m.refreshContent()
			return m, nil

		case "ctrl+e":
			m.exported = m.sess.Export()
			return m, tea.Quit

		case "ctrl+h":
			m.showHelp = true
			return m, nil

		case "up", "ctrl+k":
			m.sess.MoveUp()
			m.refreshContent()
			m.ensureCursorVisible()
			return m, nil

		case "down", "ctrl+j":
			m.sess.MoveDown()
			m.refreshContent()
			m.ensureCursorVisible()
			return m, nil

		case "pgup":
			m.sess.PageUp(m.pageSize())
			m.refreshContent()
			m.ensureCursorVisible()
			return m, nil

		case "pgdown":
			m.sess.PageDown(m.pageSize())
			m.refreshContent()
			m.ensureCursorVisible()
			return m, nil

		case "home":
			m.sess.MoveTop()
			m.viewport.GotoTop()
			m.refreshContent()
			return m, nil

		case "end":
			m.sess.MoveBottom()
			m.viewport.GotoBottom()
			m.refreshContent()
			return m, nil

		case "ctrl+a":
			if err := m.sess.SelectAllVisible(); err != nil {
				m.logger.Warn("select all failed", "err", err)
			}
			m.recountTokens()
			m.refreshContent()
			return m, nil

		case "ctrl+q":
			if err := m.sess.DeselectAllVisible(); err != nil {
				m.logger.Warn("deselect all failed", "err", err)
			}
			m.recountTokens()
			m.refreshContent()
			return m, nil

		case "ctrl+r":
			if err := m.sess.InvertVisible(); err != nil {
				m.logger.Warn("invert failed", "err", err)
			}
			m.recountTokens()
			m.refreshContent()
			return m, nil
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	cmds = append(cmds, cmd)

	if v := m.textInput.Value(); v != m.sess.Query() {
		m.sess.SetQuery(v)
		m.refreshContent()
		m.ensureCursorVisible()
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.showHelp {
		return helpView()
	}

	snap := m.sess.Snapshot()
	statusLine := fmt.Sprintf(
		"%d shown · %d/%d files included (%s, ~%d tokens)",
		snap.Stats.VisibleCount,
		snap.Stats.IncludedFiles,
		snap.Stats.TotalFiles,
		ctx.FormatSize(snap.Stats.IncludedSize),
		m.totalTokens,
	)
	usageHint := styleHelp.Render("(↑/↓ move · Enter toggle · Ctrl+A/Q/R all/none/invert · Ctrl+E export · Esc clear/quit · Ctrl+H help)")

	return fmt.Sprintf("%s\n%s\n%s\n%s", m.textInput.View(), m.viewport.View(), statusLine, usageHint)
}

// refreshContent redraws the viewport from the current snapshot.
func (m *model) refreshContent() {
	snap := m.sess.Snapshot()
	var sb strings.Builder

	for i, e := range snap.View {
		marker, style := stateMarker(e.State)

		display := e.Path
		if e.IsDir {
			display += "/"
		}

		line := fmt.Sprintf("[%s] %s", marker, display)
		if i == snap.Cursor {
			line = styleCursor.Render("> " + line)
		} else {
			line = "  " + style.Render(line)
		}
		sb.WriteString(line + "\n")
	}

	if len(snap.View) == 0 {
		sb.WriteString(styleHelp.Render("  no matches"))
	}

	m.viewport.SetContent(sb.String())
}

func stateMarker(s tree.State) (string, lipgloss.Style) {
	switch s {
	case tree.StateIncluded:
		return "x", styleIncluded
	case tree.StatePartial:
		return "~", stylePartial
	default:
		return " ", styleExcluded
	}
}

func (m *model) ensureCursorVisible() {
	cursorLine := m.sess.Cursor()
	top := m.viewport.YOffset
	bottom := m.viewport.YOffset + m.viewport.Height - 1

	if cursorLine < top {
		m.viewport.SetYOffset(cursorLine)
	} else if cursorLine > bottom {
		m.viewport.SetYOffset(cursorLine - m.viewport.Height + 1)
	}
}

func (m *model) pageSize() int {
	if m.viewport.Height > 1 {
		return m.viewport.Height - 1
	}
	return 1
}

// recountTokens recomputes the running token total for the included
// files, caching per-path estimates so repeated toggles stay cheap.
func (m *model) recountTokens() {
	total := 0
	for _, rel := range m.sess.Included() {
		if n, ok := m.tokenCache[rel]; ok {
			total += n
			continue
		}
		n, err := m.estimator(filepath.Join(m.rootPath, filepath.FromSlash(rel)))
		if err != nil {
			m.logger.Warn("token estimate failed", "path", rel, "err", err)
			continue
		}
		m.tokenCache[rel] = n
		total += n
	}
	m.totalTokens = total
}

func helpView() string {
	return strings.Join([]string{
		"ctx — interactive file picker",
		"",
		"  type            edit the fuzzy search query",
		"  ↑/↓, Ctrl+K/J   move the cursor",
		"  PgUp/PgDn       move by a page",
		"  Home/End        jump to the first / last row",
		"  Enter           toggle the entry under the cursor",
		"  Ctrl+A          include everything visible",
		"  Ctrl+Q          exclude everything visible",
		"  Ctrl+R          invert everything visible",
		"  Ctrl+E          export the included files",
		"  Esc             clear the query, or quit when it is empty",
		"  Ctrl+C          quit without exporting",
		"",
		"press any key to return",
	}, "\n")
}
