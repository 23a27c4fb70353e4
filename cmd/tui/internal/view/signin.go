package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

type signInState int

const (
	signInStateForm signInState = iota
	signInStateAuthenticating
)

// SignInModel collects a Google credential and exchanges it for a
// session. Failures stay on this screen; an expired session elsewhere
// never routes through here.
type SignInModel struct {
	CommonModel
	gateway Gateway

	state   signInState
	err     error
	form    *huh.Form
	spinner spinner.Model
}

func NewSignInModel(gw Gateway) SignInModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return SignInModel{
		gateway: gw,
		state:   signInStateForm,
		form:    buildCredentialForm(),
		spinner: s,
	}
}

func (m SignInModel) Title() string { return "Sign In" }

func (m SignInModel) ShortHelp() string {
	if m.state == signInStateAuthenticating {
		return "Signing in..."
	}
	return "Enter: sign in | Ctrl+C: quit"
}

func (m SignInModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m SignInModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(SignInResultMsg); ok {
		if result.Err != nil {
			m.state = signInStateForm
			m.err = result.Err
			m.form = buildCredentialForm()
			return m, m.form.Init()
		}
		return m, nil
	}

	switch m.state {
	case signInStateForm:
		return m.updateForm(msg)
	case signInStateAuthenticating:
		return m.updateAuthenticating(msg)
	}

	return m, nil
}

func (m SignInModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	credential := strings.TrimSpace(m.form.GetString("credential"))
	if credential == "" {
		m.err = fmt.Errorf("credential is required")
		m.form = buildCredentialForm()
		return m, m.form.Init()
	}

	m.state = signInStateAuthenticating
	m.err = nil
	return m, tea.Batch(m.spinner.Tick, SignInCmd(m.gateway, credential))
}

func (m SignInModel) updateAuthenticating(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func buildCredentialForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("credential").
				Title("Google Credential").
				Description("Paste the ID token from Google sign-in"),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m SignInModel) View() string {
	if m.state == signInStateAuthenticating {
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Signing in...", m.spinner.View()),
		)
	}

	parts := []string{m.form.View()}
	if m.err != nil {
		parts = append(parts,
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("Sign-in failed: %v", m.err)),
		)
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}
