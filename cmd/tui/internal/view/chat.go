package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/raseedhq/raseed/internal/assistant"
	"github.com/raseedhq/raseed/internal/notify"
)

var (
	chatUserStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	chatAssistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	chatErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// ChatModel is the assistant screen: a transcript on top, one input at
// the bottom. The transcript itself lives in the assistant session at
// the root, so it survives leaving and re-entering this screen.
type ChatModel struct {
	CommonModel
	gateway Gateway
	chat    *assistant.Session

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	ready    bool
}

func NewChatModel(gw Gateway, chat *assistant.Session) ChatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask about your receipts..."
	ti.Width = 60
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ChatModel{
		gateway: gw,
		chat:    chat,
		input:   ti,
		spinner: s,
	}
}

func (m ChatModel) Title() string { return "Receipt Assistant" }

func (m ChatModel) ShortHelp() string {
	if m.chat.Pending() {
		return "Thinking... | Esc: back"
	}
	return "Enter: ask | Esc: back"
}

func (m ChatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.sizeViewport()
		return m, nil

	case AskResultMsg:
		m.refreshTranscript()

		if m.chat.Pending() {
			return m, m.spinner.Tick
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyEnter:
			return m.ask()
		}
	}

	var cmds []tea.Cmd

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	if m.chat.Pending() {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m ChatModel) ask() (tea.Model, tea.Cmd) {
	prompt := m.input.Value()

	gen, err := m.chat.Begin(prompt)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyPrompt) {
			return m, Notice(notify.KindError, "type a question first")
		}
		// Still waiting on the previous answer.
		return m, nil
	}

	m.input.SetValue("")
	m.refreshTranscript()

	return m, tea.Batch(m.spinner.Tick, AskCmd(m.gateway, gen, prompt))
}

func (m *ChatModel) sizeViewport() {
	if m.Width == 0 || m.Height == 0 {
		return
	}

	m.viewport = viewport.New(m.Width-4, max(m.Height-8, 5))
	m.ready = true
	m.refreshTranscript()
}

func (m *ChatModel) refreshTranscript() {
	if !m.ready {
		return
	}

	var b strings.Builder
	for _, msg := range m.chat.Messages() {
		switch {
		case msg.Role == assistant.RoleUser:
			b.WriteString(chatUserStyle.Render("You: "))
			b.WriteString(msg.Text)
		case strings.HasPrefix(msg.Text, "Error: "):
			b.WriteString(chatAssistantStyle.Render("Assistant: "))
			b.WriteString(chatErrorStyle.Render(msg.Text))
		default:
			b.WriteString(chatAssistantStyle.Render("Assistant: "))
			b.WriteString(msg.Text)
		}
		b.WriteString("\n\n")
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m ChatModel) View() string {
	transcript := "Ask the assistant about your saved receipts."
	if m.ready {
		transcript = m.viewport.View()
	}

	inputLine := m.input.View()
	if m.chat.Pending() {
		inputLine = fmt.Sprintf("%s Thinking...", m.spinner.View())
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			transcript,
			"",
			inputLine,
		),
	)
}
