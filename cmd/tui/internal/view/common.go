package view

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const apiTimeout = 30 * time.Second

// CommonModel is embedded by all views.
type CommonModel struct {
	Width  int
	Height int
}

// BackMsg asks the root model to leave the current view.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// apiCtx returns the context every backend command runs under.
func apiCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), apiTimeout)
}
