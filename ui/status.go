package ui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

var (
	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ECFD65")).
			Background(lipgloss.Color("#5A56E0")).
			Bold(true).
			Render

	statusBarScrollPosStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Background(lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"}).
			Render

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ECFD65")).
			Background(lipgloss.Color("#FF5F87")).
			Bold(true)

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"})
)

func (m model) statusBarView() string {
	logo := logoStyle(" Lectern ")

	percent := math.Max(0, math.Min(1, m.viewport.ScrollPercent()))
	scrollPercent := statusBarScrollPosStyle(fmt.Sprintf(" %3.f%% ", percent*100))
	helpNote := statusBarHelpStyle(" ? Help ")

	note := m.noteView()
	showMessage := m.statusMessage != ""
	if showMessage {
		note = m.statusMessage
	}
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)

	padding := max(0,
		m.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := strings.Repeat(" ", padding)
	if showMessage {
		note = statusBarMessageStyle(note)
		emptySpace = statusBarMessageStyle(emptySpace)
	} else {
		note = statusBarNoteStyle(note)
		emptySpace = statusBarNoteStyle(emptySpace)
	}

	return logo + note + emptySpace + scrollPercent + helpNote
}

// noteView is the middle of the status bar: file, size, transport state.
func (m model) noteView() string {
	if m.doc == nil {
		return filepath.Base(m.cfg.Path)
	}
	name := filepath.Base(m.cfg.Path)
	size := humanize.Bytes(uint64(m.doc.Size())) //nolint:gosec

	switch m.state {
	case statePreparing:
		return fmt.Sprintf("%s · %s | %s %s", name, size, m.spinner.View(), m.state)
	case statePlaying, statePaused:
		if m.remain != "" {
			return fmt.Sprintf("%s · %s | %s %3.0f%% · %s left",
				name, size, m.state, m.percent, m.remain)
		}
		return fmt.Sprintf("%s · %s | %s", name, size, m.state)
	default:
		return fmt.Sprintf("%s · %s · %d paragraphs | space to read aloud",
			name, size, len(m.doc.Paragraphs))
	}
}

func (m model) helpView() string {
	s := "\n"
	s += "space    play/pause          k/↑      up\n"
	s += "s        stop                j/↓      down\n"
	s += "n        next paragraph      b/pgup   page up\n"
	s += "p        previous paragraph  f/pgdn   page down\n"
	s += "click    jump to word        u/d      ½ page up/down\n"
	s += "c        copy contents       g/home   go to top\n"
	s += "e        edit this document  G/end    go to bottom\n"
	s += "r        reload              q        quit"

	s = indent(s, 2)

	// Fill empty cells with spaces for background coloring.
	if m.width > 0 {
		lines := strings.Split(s, "\n")
		for i := 0; i < len(lines); i++ {
			l := runewidth.StringWidth(lines[i])
			n := max(m.width-l, 0)
			lines[i] += strings.Repeat(" ", n)
		}
		s = strings.Join(lines, "\n")
	}

	return helpViewStyle(s)
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
