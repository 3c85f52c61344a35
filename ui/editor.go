package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/editor"
)

// openEditor suspends the TUI and opens the document in EDITOR. The
// document is reloaded on return in case it changed.
func openEditor(path string) tea.Cmd {
	cmd, err := editor.Cmd("Lectern", path)
	if err != nil {
		return func() tea.Msg { return errMsg{err} }
	}
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{err: err}
	})
}
