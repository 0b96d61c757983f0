package tui

import (
	"github.com/Veraticus/recipebook/internal/tui/viewmodel"
	tea "github.com/charmbracelet/bubbletea"
)

// stateMsg carries a snapshot published by the view model.
type stateMsg struct {
	state viewmodel.UIState
}

// updatesClosedMsg is sent once the view model has been closed.
type updatesClosedMsg struct{}

// waitForState blocks on the next published snapshot.
func waitForState(updates <-chan viewmodel.UIState) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-updates
		if !ok {
			return updatesClosedMsg{}
		}
		return stateMsg{state: state}
	}
}
