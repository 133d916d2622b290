// Package tui is an interactive browser over stored runs.
package tui

import (
	"bytes"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/femdvr/internal/eigen"
	"github.com/san-kum/femdvr/internal/quadsel"
	"github.com/san-kum/femdvr/internal/report"
	"github.com/san-kum/femdvr/internal/storage"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// Source is what the browser reads runs from. *storage.Store implements it.
type Source interface {
	List() ([]storage.RunMetadata, error)
	LoadLevels(runID string) ([]quadsel.Level, error)
}

type view int

const (
	viewList view = iota
	viewDetail
)

type pane int

const (
	paneSpectrum pane = iota
	paneLevels
	paneQuadrature
	numPanes
)

func (p pane) String() string {
	switch p {
	case paneLevels:
		return "levels"
	case paneQuadrature:
		return "quadrature"
	default:
		return "spectrum"
	}
}

type model struct {
	src    Source
	runs   []storage.RunMetadata
	cursor int
	view   view
	pane   pane

	levels    []quadsel.Level
	levelsErr error
	err       error

	width  int
	height int
}

func newModel(src Source) model {
	m := model{src: src, width: 80, height: 24}
	m.runs, m.err = src.List()
	return m
}

// Run starts the browser on the alternate screen and blocks until quit.
func Run(src Source) error {
	_, err := tea.NewProgram(newModel(src), tea.WithAltScreen()).Run()
	return err
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	if m.view == viewList {
		return m.listKey(msg), nil
	}
	return m.detailKey(msg), nil
}

func (m model) listKey(msg tea.KeyMsg) model {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.runs)-1 {
			m.cursor++
		}
	case "r":
		m.runs, m.err = m.src.List()
		m.cursor = min(m.cursor, max(len(m.runs)-1, 0))
	case "enter", " ":
		if len(m.runs) == 0 {
			return m
		}
		m.view = viewDetail
		m.pane = paneSpectrum
		m.levels, m.levelsErr = m.src.LoadLevels(m.runs[m.cursor].ID)
	}
	return m
}

func (m model) detailKey(msg tea.KeyMsg) model {
	switch msg.String() {
	case "esc", "backspace", "h", "left":
		m.view = viewList
		m.levels, m.levelsErr = nil, nil
	case "tab", "l", "right":
		m.pane = (m.pane + 1) % numPanes
	case "shift+tab":
		m.pane = (m.pane + numPanes - 1) % numPanes
	}
	return m
}

func (m model) View() string {
	if m.err != nil {
		return "\n  " + report.Fail.Render("error: "+m.err.Error()) + "\n"
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m model) viewList() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + cyan.Render("f e m d v r") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n\n")

	if len(m.runs) == 0 {
		b.WriteString("      " + dim.Render("no runs found") + "\n")
	}
	for i, run := range m.runs {
		ground := "       -"
		if len(run.Energies) > 0 {
			ground = fmt.Sprintf("%12.8f", run.Energies[0])
		}
		desc := fmt.Sprintf("%-10s dim %-6d %s", run.Potential, run.Dim, ground)
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-32s", run.ID)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-32s", run.ID)) + dimmer.Render(desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(report.KeyHint.Render("      ↑↓ select   enter open   r reload   q quit") + "\n")
	return b.String()
}

func (m model) viewDetail() string {
	run := m.runs[m.cursor]
	var b strings.Builder
	b.WriteString(report.Summary(&run) + "\n\n")

	var tabs []string
	for p := pane(0); p < numPanes; p++ {
		if p == m.pane {
			tabs = append(tabs, report.Selected.Render(" "+p.String()+" "))
		} else {
			tabs = append(tabs, dim.Render(" "+p.String()+" "))
		}
	}
	b.WriteString(strings.Join(tabs, " ") + "\n\n")

	plotWidth := max(m.width-16, 20)
	plotHeight := max(m.height-24, 6)
	switch m.pane {
	case paneSpectrum:
		b.WriteString(report.SpectrumPlot(run.Energies, plotWidth, plotHeight))
	case paneLevels:
		var buf bytes.Buffer
		if err := report.LevelsTable(&buf, eigen.Levels(run.Energies, 1e-6), nil); err != nil {
			b.WriteString(report.Fail.Render(err.Error()))
		}
		b.WriteString(buf.String())
	case paneQuadrature:
		if m.levelsErr != nil {
			b.WriteString(report.Warn.Render("no quadrature levels: " + m.levelsErr.Error()))
			break
		}
		b.WriteString(report.OrderPlot(m.levels, plotWidth, plotHeight))
		b.WriteString("\n\n")
		var buf bytes.Buffer
		if err := report.SchemesTable(&buf, run.Schemes); err == nil {
			b.WriteString(buf.String())
		}
	}

	b.WriteString("\n\n")
	b.WriteString(report.KeyHint.Render("  tab next pane   esc back   q quit") + "\n")
	return b.String()
}
