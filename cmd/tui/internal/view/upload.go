package view

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/raseedhq/raseed/internal/notify"
	"github.com/raseedhq/raseed/internal/workflow"
)

type uploadState int

const (
	uploadStatePick uploadState = iota
	uploadStateExtracting
)

// UploadModel picks a receipt image and kicks off extraction. Leaving
// the screen does not abandon the run; the result still lands at the
// root and is matched against its token there.
type UploadModel struct {
	CommonModel
	gateway Gateway
	flow    *workflow.Controller

	state      uploadState
	filePicker filepicker.Model
	spinner    spinner.Model
	err        error
}

func NewUploadModel(gw Gateway, flow *workflow.Controller) UploadModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".jpg", ".jpeg", ".png", ".webp"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := UploadModel{
		gateway:    gw,
		flow:       flow,
		filePicker: fp,
		spinner:    s,
	}

	// Coming back while the last extraction is still running.
	if flow.Phase() == workflow.PhaseExtracting {
		m.state = uploadStateExtracting
	}

	return m
}

func (m UploadModel) Title() string { return "Upload Receipt" }

func (m UploadModel) ShortHelp() string {
	if m.state == uploadStateExtracting {
		return "Extracting... | Esc: back (keeps running)"
	}
	return "Esc: back | Enter: select image"
}

func (m UploadModel) Init() tea.Cmd {
	if m.state == uploadStateExtracting {
		return m.spinner.Tick
	}

	return m.filePicker.Init()
}

func (m UploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

	case ExtractResultMsg:
		if msg.Err != nil {
			m.state = uploadStatePick
			m.err = msg.Err
		}
		return m, nil
	}

	if m.state == uploadStateExtracting {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		return m.startExtraction(path, cmd)
	}

	if didSelect, path := m.filePicker.DidSelectDisabledFile(msg); didSelect {
		m.err = fmt.Errorf("%s is not a receipt image", path)
		return m, cmd
	}

	return m, cmd
}

func (m UploadModel) startExtraction(path string, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	run, err := m.flow.BeginExtract(path)
	if err != nil {
		return m, tea.Batch(cmd, Notice(notify.KindError, err.Error()))
	}

	m.state = uploadStateExtracting
	m.err = nil

	return m, tea.Batch(cmd, m.spinner.Tick, ExtractCmd(m.gateway, run, path))
}

func (m UploadModel) View() string {
	if m.state == uploadStateExtracting {
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Reading the receipt...", m.spinner.View()),
		)
	}

	parts := []string{"Select a receipt image:", ""}
	if m.err != nil {
		parts = []string{
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("Error: %v", m.err)),
			"",
		}
	}
	parts = append(parts, m.filePicker.View())

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}
