package view

import (
	"bytes"
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/raseedhq/raseed/internal/receipt"
	"github.com/raseedhq/raseed/internal/session"
)

// Gateway is the slice of the API client the views need. Every remote
// call goes through it, so tests can swap in a fake.
type Gateway interface {
	SignIn(ctx context.Context, credential string) (string, session.Profile, error)
	CurrentUser(ctx context.Context) (session.Profile, error)
	ExtractReceipt(ctx context.Context, filename string, image io.Reader) (receipt.RawExtraction, error)
	SaveReceipt(ctx context.Context, payload receipt.SavePayload) (string, error)
	ListReceipts(ctx context.Context) ([]receipt.Receipt, error)
	SaveToWallet(ctx context.Context, id string) (string, error)
	AskAssistant(ctx context.Context, prompt string) (string, error)
}

// SignInCmd exchanges a Google credential for a session.
func SignInCmd(gw Gateway, credential string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := apiCtx()
		defer cancel()

		token, user, err := gw.SignIn(ctx, credential)
		if err != nil {
			return SignInResultMsg{Err: err}
		}
		return SignInResultMsg{Token: token, User: user}
	}
}

// VerifyCmd checks that a restored session is still accepted.
func VerifyCmd(gw Gateway) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := apiCtx()
		defer cancel()

		user, err := gw.CurrentUser(ctx)
		if err != nil {
			return VerifyResultMsg{Err: err}
		}
		return VerifyResultMsg{User: user}
	}
}

// ExtractCmd reads the chosen image and sends it for extraction. The
// file is read inside the command so a slow disk never blocks the
// update loop.
func ExtractCmd(gw Gateway, run uint64, path string) tea.Cmd {
	return func() tea.Msg {
		image, err := os.ReadFile(path)
		if err != nil {
			return ExtractResultMsg{Run: run, Err: err}
		}

		ctx, cancel := apiCtx()
		defer cancel()

		raw, err := gw.ExtractReceipt(ctx, path, bytes.NewReader(image))
		if err != nil {
			return ExtractResultMsg{Run: run, Err: err}
		}
		return ExtractResultMsg{Run: run, Raw: raw}
	}
}

// SaveCmd submits a finished draft.
func SaveCmd(gw Gateway, run uint64, payload receipt.SavePayload) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := apiCtx()
		defer cancel()

		_, err := gw.SaveReceipt(ctx, payload)

		return SaveResultMsg{Run: run, Err: err}
	}
}

// RefreshCmd fetches the saved receipts.
func RefreshCmd(gw Gateway, run uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := apiCtx()
		defer cancel()

		receipts, err := gw.ListReceipts(ctx)
		if err != nil {
			return ListResultMsg{Run: run, Err: err}
		}
		return ListResultMsg{Run: run, Receipts: receipts}
	}
}

// WalletCmd links one receipt to Google Wallet.
func WalletCmd(gw Gateway, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := apiCtx()
		defer cancel()

		saveURL, err := gw.SaveToWallet(ctx, id)
		if err != nil {
			return WalletResultMsg{ID: id, Err: err}
		}
		return WalletResultMsg{ID: id, SaveURL: saveURL}
	}
}

// AskCmd sends a prompt to the assistant.
func AskCmd(gw Gateway, gen uint64, prompt string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := apiCtx()
		defer cancel()

		reply, err := gw.AskAssistant(ctx, prompt)
		if err != nil {
			return AskResultMsg{Gen: gen, Err: err}
		}
		return AskResultMsg{Gen: gen, Reply: reply}
	}
}
