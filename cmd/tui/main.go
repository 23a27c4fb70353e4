package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/raseedhq/raseed/cmd/tui/internal/view"
	"github.com/raseedhq/raseed/internal/api"
	"github.com/raseedhq/raseed/internal/assistant"
	"github.com/raseedhq/raseed/internal/config"
	"github.com/raseedhq/raseed/internal/notify"
	"github.com/raseedhq/raseed/internal/session"
	"github.com/raseedhq/raseed/internal/wallet"
	"github.com/raseedhq/raseed/internal/workflow"
)

// model is the root of the program. Every asynchronous result lands
// here first: only the root mutates the session, the workflow, the
// link flags, the transcript and the notification. The views then get
// the message for presentation.
type model struct {
	cfg      *config.Config
	sessions *session.Store
	gateway  *api.Client

	flow    *workflow.Controller
	linker  *wallet.Linker
	notices *notify.Center
	chat    *assistant.Session

	currentView   View
	verifyOnStart bool

	signInView   view.SignInModel
	uploadView   view.UploadModel
	draftView    view.DraftModel
	receiptsView view.ReceiptsModel
	chatView     view.ChatModel
}

type View int

const (
	ViewSignIn View = iota
	ViewMenu
	ViewUpload
	ViewDraft
	ViewReceipts
	ViewChat
)

// notifyExpiredMsg fires when a notification's lifetime is up. It
// carries the token of the message it was scheduled for, so it never
// clears a newer one.
type notifyExpiredMsg struct {
	token uint64
}

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sessionPath, err := cfg.SessionDBPath()
	if err != nil {
		slog.Error("failed to resolve session store path", "error", err)
		os.Exit(1)
	}

	sessions, err := session.Open(sessionPath)
	if err != nil {
		slog.Error("failed to open session store", "error", err)
		os.Exit(1)
	}

	gateway := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, sessions)

	m := model{
		cfg:         cfg,
		sessions:    sessions,
		gateway:     gateway,
		flow:        workflow.New(),
		linker:      wallet.NewLinker(),
		notices:     notify.NewCenter(cfg.Notify.TTL),
		chat:        assistant.NewSession(),
		currentView: ViewSignIn,
		signInView:  view.NewSignInModel(gateway),
	}

	if m.sessions.Restore().Authenticated() {
		m.currentView = ViewMenu
		m.verifyOnStart = true
	}

	return m
}

func (m model) Init() tea.Cmd {
	if m.verifyOnStart {
		return view.VerifyCmd(m.gateway)
	}

	return m.signInView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			return m.updateMenu(msg)
		}

	case view.BackMsg:
		if m.sessions.Authenticated() {
			m.currentView = ViewMenu
		} else {
			m.currentView = ViewSignIn
		}

		return m, nil

	case view.NoticeMsg:
		return m, m.post(msg.Kind, msg.Text)

	case notifyExpiredMsg:
		m.notices.Expire(msg.token)
		return m, nil

	case view.SignInResultMsg:
		return m.handleSignIn(msg)

	case view.VerifyResultMsg:
		return m.handleVerify(msg)

	case view.ExtractResultMsg:
		return m.handleExtract(msg)

	case view.SaveResultMsg:
		return m.handleSave(msg)

	case view.ListResultMsg:
		return m.handleList(msg)

	case view.WalletResultMsg:
		return m.handleWallet(msg)

	case view.AskResultMsg:
		return m.handleAsk(msg)
	}

	cmd := m.forward(msg)

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "1":
		m.currentView = ViewUpload
		m.uploadView = view.NewUploadModel(m.gateway, m.flow)

		return m, m.uploadView.Init()

	case "2":
		if !m.flow.HasDraft() {
			if err := m.flow.NewManualDraft(); err != nil {
				return m, m.post(notify.KindError, err.Error())
			}
		}

		m.currentView = ViewDraft
		m.draftView = view.NewDraftModel(m.gateway, m.flow)

		return m, m.draftView.Init()

	case "3":
		m.currentView = ViewReceipts
		m.receiptsView = view.NewReceiptsModel(m.gateway, m.flow, m.linker)

		return m, m.receiptsView.Init()

	case "4":
		m.currentView = ViewChat
		m.chatView = view.NewChatModel(m.gateway, m.chat)

		return m, m.chatView.Init()

	case "s":
		return m.signOut()
	}

	return m, nil
}

func (m model) handleSignIn(msg view.SignInResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		// Sign-in failures stay on the sign-in screen, 401s included.
		cmd := m.forward(msg)
		return m, cmd
	}

	if err := m.sessions.Establish(msg.Token, msg.User); err != nil {
		cmd := m.forward(view.SignInResultMsg{Err: err})
		return m, cmd
	}

	m.currentView = ViewMenu
	run := m.flow.BeginRefresh()

	return m, tea.Batch(
		m.post(notify.KindSuccess, fmt.Sprintf("Signed in as %s", displayName(msg.User))),
		view.RefreshCmd(m.gateway, run),
	)
}

func (m model) handleVerify(msg view.VerifyResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if api.IsSessionExpired(msg.Err) {
			return m.forceSignOut()
		}

		// The backend may just be unreachable. Keep the session and
		// let the user work from the restored profile.
		return m, m.post(notify.KindError, fmt.Sprintf("Couldn't verify session: %v", msg.Err))
	}

	_ = m.sessions.Refresh(msg.User)
	run := m.flow.BeginRefresh()

	return m, view.RefreshCmd(m.gateway, run)
}

func (m model) handleExtract(msg view.ExtractResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil && api.IsSessionExpired(msg.Err) {
		return m.forceSignOut()
	}

	if !m.flow.ApplyExtract(msg.Run, msg.Raw, msg.Err) {
		return m, nil
	}

	if msg.Err != nil {
		cmd := m.forward(msg)

		return m, tea.Batch(
			m.post(notify.KindError, fmt.Sprintf("Extraction failed: %v", msg.Err)),
			cmd,
		)
	}

	m.currentView = ViewDraft
	m.draftView = view.NewDraftModel(m.gateway, m.flow)

	return m, tea.Batch(
		m.draftView.Init(),
		m.post(notify.KindSuccess, "Receipt extracted. Review the draft"),
	)
}

func (m model) handleSave(msg view.SaveResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil && api.IsSessionExpired(msg.Err) {
		return m.forceSignOut()
	}

	if !m.flow.ApplySave(msg.Run, msg.Err) {
		return m, nil
	}

	if msg.Err != nil {
		cmd := m.forward(msg)

		return m, tea.Batch(
			m.post(notify.KindError, fmt.Sprintf("Save failed: %v", msg.Err)),
			cmd,
		)
	}

	m.currentView = ViewReceipts
	m.receiptsView = view.NewReceiptsModel(m.gateway, m.flow, m.linker)

	return m, tea.Batch(
		m.receiptsView.Init(),
		m.post(notify.KindSuccess, "Receipt saved"),
	)
}

func (m model) handleList(msg view.ListResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil && api.IsSessionExpired(msg.Err) {
		return m.forceSignOut()
	}

	if !m.flow.ApplyList(msg.Run, msg.Receipts, msg.Err) {
		return m, nil
	}

	cmd := m.forward(msg)

	return m, cmd
}

func (m model) handleWallet(msg view.WalletResultMsg) (tea.Model, tea.Cmd) {
	// The flag drops no matter how the call ended.
	m.linker.Finish(msg.ID)

	if msg.Err != nil && api.IsSessionExpired(msg.Err) {
		return m.forceSignOut()
	}

	cmd := m.forward(msg)

	if msg.Err != nil {
		return m, tea.Batch(
			m.post(notify.KindError, fmt.Sprintf("Couldn't add to wallet: %v", msg.Err)),
			cmd,
		)
	}

	run := m.flow.BeginRefresh()

	return m, tea.Batch(
		m.post(notify.KindSuccess, "Added to Google Wallet"),
		view.RefreshCmd(m.gateway, run),
		cmd,
	)
}

func (m model) handleAsk(msg view.AskResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil && api.IsSessionExpired(msg.Err) {
		// Escalates before the transcript sees the failure.
		return m.forceSignOut()
	}

	m.chat.Finish(msg.Gen, msg.Reply, msg.Err)

	cmd := m.forward(msg)

	return m, cmd
}

func (m model) signOut() (tea.Model, tea.Cmd) {
	m.teardown()
	return m, m.post(notify.KindSuccess, "Signed out")
}

func (m model) forceSignOut() (tea.Model, tea.Cmd) {
	if !m.sessions.Authenticated() {
		// Already torn down by an earlier 401.
		return m, nil
	}

	m.teardown()

	return m, m.post(notify.KindError, "Session expired. Please sign in again")
}

// teardown returns the app to the signed-out baseline: session gone,
// workflow reset, link flags dropped, transcript wiped.
func (m *model) teardown() {
	_ = m.sessions.Clear()
	m.flow.Reset()
	m.linker.Reset()
	m.chat.Clear()

	m.currentView = ViewSignIn
	m.signInView = view.NewSignInModel(m.gateway)
}

// post publishes a notification and schedules its expiry.
func (m model) post(kind notify.Kind, text string) tea.Cmd {
	token := m.notices.Post(kind, text)
	ttl := m.notices.TTL()

	return tea.Tick(ttl, func(time.Time) tea.Msg {
		return notifyExpiredMsg{token: token}
	})
}

// forward hands the message to whichever view is on screen.
func (m *model) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewSignIn:
		var newModel tea.Model
		newModel, cmd = m.signInView.Update(msg)
		m.signInView = newModel.(view.SignInModel)
	case ViewUpload:
		var newModel tea.Model
		newModel, cmd = m.uploadView.Update(msg)
		m.uploadView = newModel.(view.UploadModel)
	case ViewDraft:
		var newModel tea.Model
		newModel, cmd = m.draftView.Update(msg)
		m.draftView = newModel.(view.DraftModel)
	case ViewReceipts:
		var newModel tea.Model
		newModel, cmd = m.receiptsView.Update(msg)
		m.receiptsView = newModel.(view.ReceiptsModel)
	case ViewChat:
		var newModel tea.Model
		newModel, cmd = m.chatView.Update(msg)
		m.chatView = newModel.(view.ChatModel)
	}

	return cmd
}

func (m model) View() string {
	var body string

	switch m.currentView {
	case ViewSignIn:
		body = m.signInView.View()
	case ViewMenu:
		body = m.menuView()
	case ViewUpload:
		body = m.uploadView.View()
	case ViewDraft:
		body = m.draftView.View()
	case ViewReceipts:
		body = m.receiptsView.View()
	case ViewChat:
		body = m.chatView.View()
	default:
		body = "Unknown View"
	}

	if n, ok := m.notices.Current(); ok {
		color := "46"
		if n.Kind == notify.KindError {
			color = "196"
		}

		bar := lipgloss.NewStyle().
			Foreground(lipgloss.Color(color)).
			Padding(0, 2).
			Render(n.Text)

		return lipgloss.JoinVertical(lipgloss.Left, bar, body)
	}

	return body
}

func (m model) menuView() string {
	draftLine := "2. New receipt (manual entry)"
	if m.flow.HasDraft() {
		draftLine = "2. Resume the current draft"
	}

	return lipgloss.NewStyle().Padding(2).Render(
		fmt.Sprintf("%s, signed in as %s\n\n", m.cfg.App.Name, displayName(m.sessions.Current().User)) +
			"1. Upload a receipt\n" +
			draftLine + "\n" +
			"3. My receipts\n" +
			"4. Ask the assistant\n\n" +
			"s. Sign out\n" +
			"q. Quit",
	)
}

func displayName(user session.Profile) string {
	if user.Name != "" {
		return user.Name
	}
	if user.Email != "" {
		return user.Email
	}

	return user.ID
}

func main() {
	m := initialModel()

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}

	_ = m.sessions.Close()
}
