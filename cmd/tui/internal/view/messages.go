package view

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/raseedhq/raseed/internal/notify"
	"github.com/raseedhq/raseed/internal/receipt"
	"github.com/raseedhq/raseed/internal/session"
)

// Result messages land at the root model first, which owns the
// session, workflow, wallet, notification and transcript state. The
// current view receives them afterwards for presentation only.

// SignInResultMsg carries the outcome of the credential exchange.
type SignInResultMsg struct {
	Token string
	User  session.Profile
	Err   error
}

// VerifyResultMsg carries the startup check of a restored session.
type VerifyResultMsg struct {
	User session.Profile
	Err  error
}

// ExtractResultMsg carries an extraction outcome for a workflow run.
type ExtractResultMsg struct {
	Run uint64
	Raw receipt.RawExtraction
	Err error
}

// SaveResultMsg carries a save outcome for a workflow run.
type SaveResultMsg struct {
	Run uint64
	Err error
}

// ListResultMsg carries a refresh outcome for a list run.
type ListResultMsg struct {
	Run      uint64
	Receipts []receipt.Receipt
	Err      error
}

// WalletResultMsg carries a wallet-link outcome for one receipt.
type WalletResultMsg struct {
	ID      string
	SaveURL string
	Err     error
}

// AskResultMsg carries the assistant's reply for a transcript
// generation.
type AskResultMsg struct {
	Gen   uint64
	Reply string
	Err   error
}

// NoticeMsg asks the root to show a transient notification.
type NoticeMsg struct {
	Kind notify.Kind
	Text string
}

// Notice builds a command that surfaces a notification.
func Notice(kind notify.Kind, text string) tea.Cmd {
	return func() tea.Msg {
		return NoticeMsg{Kind: kind, Text: text}
	}
}
