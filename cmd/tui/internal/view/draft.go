package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/raseedhq/raseed/internal/money"
	"github.com/raseedhq/raseed/internal/notify"
	"github.com/raseedhq/raseed/internal/receipt"
	"github.com/raseedhq/raseed/internal/workflow"
)

type draftState int

const (
	draftStateEditing draftState = iota
	draftStateSaving
)

// The three inputs before the first item row.
const draftScalarFields = 3

// DraftModel edits the receipt under construction. Every keystroke is
// written through to the workflow controller, so leaving the screen
// keeps the draft and the menu can offer to resume it.
type DraftModel struct {
	CommonModel
	gateway Gateway
	flow    *workflow.Controller

	state draftState
	focus int

	establishment textinput.Model
	date          textinput.Model
	total         textinput.Model
	items         []itemInputs

	spinner spinner.Model
	err     error
}

type itemInputs struct {
	name     textinput.Model
	price    textinput.Model
	quantity textinput.Model
}

func NewDraftModel(gw Gateway, flow *workflow.Controller) DraftModel {
	draft := flow.Draft()

	establishment := textinput.New()
	establishment.Prompt = "Establishment: "
	establishment.Width = 32
	establishment.SetValue(draft.EstablishmentName)
	establishment.Focus()

	date := textinput.New()
	date.Prompt = "Date:          "
	date.Placeholder = "YYYY-MM-DD"
	date.Width = 32
	date.SetValue(draft.Date)

	total := textinput.New()
	total.Prompt = "Total:         "
	total.Width = 32
	total.SetValue(draft.Total)

	items := make([]itemInputs, len(draft.Items))
	for i, it := range draft.Items {
		items[i] = newItemInputs(it)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := DraftModel{
		gateway:       gw,
		flow:          flow,
		establishment: establishment,
		date:          date,
		total:         total,
		items:         items,
		spinner:       s,
	}

	// Coming back while the last save is still running.
	if flow.Phase() == workflow.PhaseSaving {
		m.state = draftStateSaving
	}

	return m
}

func newItemInputs(it receipt.DraftItem) itemInputs {
	name := textinput.New()
	name.Placeholder = "Item"
	name.Width = 24
	name.SetValue(it.Name)

	price := textinput.New()
	price.Placeholder = "0"
	price.Width = 10
	price.SetValue(it.Price)

	quantity := textinput.New()
	quantity.Placeholder = "1"
	quantity.Width = 5
	quantity.SetValue(it.Quantity)

	return itemInputs{name: name, price: price, quantity: quantity}
}

func (m DraftModel) Title() string { return "Edit Receipt" }

func (m DraftModel) ShortHelp() string {
	if m.state == draftStateSaving {
		return "Saving..."
	}
	return "Tab: next | Ctrl+T: type | Ctrl+A: add item | Ctrl+D: remove item | Ctrl+S: save | Esc: back"
}

func (m DraftModel) Init() tea.Cmd {
	if m.state == draftStateSaving {
		return m.spinner.Tick
	}

	return textinput.Blink
}

func (m DraftModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SaveResultMsg:
		if msg.Err != nil {
			m.state = draftStateEditing
			m.err = msg.Err
		}
		return m, nil

	case tea.KeyMsg:
		if m.state == draftStateSaving {
			return m, nil
		}
		return m.updateKey(msg)
	}

	if m.state == draftStateSaving {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateInputs(msg)
}

func (m DraftModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, Back

	case "tab", "down", "enter":
		m.moveFocus(1)
		return m, textinput.Blink

	case "shift+tab", "up":
		m.moveFocus(-1)
		return m, textinput.Blink

	case "ctrl+t":
		if err := m.flow.CycleType(); err != nil {
			return m, Notice(notify.KindError, err.Error())
		}
		return m, nil

	case "ctrl+a":
		return m.addItem()

	case "ctrl+d":
		return m.removeItem()

	case "ctrl+s":
		return m.startSave()
	}

	return m.updateInputs(msg)
}

func (m DraftModel) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, m.inputCount())

	for i := 0; i < m.inputCount(); i++ {
		in := m.inputAt(i)

		var cmd tea.Cmd
		*in, cmd = in.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.syncDraft()

	return m, tea.Batch(cmds...)
}

// syncDraft writes every input back into the controller so the draft
// survives leaving the screen and the running total stays live.
func (m *DraftModel) syncDraft() {
	_ = m.flow.EditEstablishment(m.establishment.Value())
	_ = m.flow.EditDate(m.date.Value())
	_ = m.flow.EditTotal(m.total.Value())

	for i, it := range m.items {
		_ = m.flow.EditItemName(i, it.name.Value())
		_ = m.flow.EditItemPrice(i, it.price.Value())
		_ = m.flow.EditItemQuantity(i, it.quantity.Value())
	}
}

func (m *DraftModel) inputCount() int {
	return draftScalarFields + 3*len(m.items)
}

func (m *DraftModel) inputAt(i int) *textinput.Model {
	switch i {
	case 0:
		return &m.establishment
	case 1:
		return &m.date
	case 2:
		return &m.total
	}

	idx := i - draftScalarFields
	item := &m.items[idx/3]

	switch idx % 3 {
	case 0:
		return &item.name
	case 1:
		return &item.price
	default:
		return &item.quantity
	}
}

func (m *DraftModel) moveFocus(delta int) {
	count := m.inputCount()
	m.focus = (m.focus + delta + count) % count
	m.applyFocus()
}

func (m *DraftModel) applyFocus() {
	for i := 0; i < m.inputCount(); i++ {
		in := m.inputAt(i)
		if i == m.focus {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (m DraftModel) addItem() (tea.Model, tea.Cmd) {
	if err := m.flow.AddItem(); err != nil {
		return m, Notice(notify.KindError, err.Error())
	}

	m.items = append(m.items, newItemInputs(receipt.DraftItem{Quantity: "1"}))
	m.focus = draftScalarFields + 3*(len(m.items)-1)
	m.applyFocus()

	return m, textinput.Blink
}

func (m DraftModel) removeItem() (tea.Model, tea.Cmd) {
	if m.focus < draftScalarFields {
		return m, Notice(notify.KindError, "move to an item row to remove it")
	}

	idx := (m.focus - draftScalarFields) / 3
	if err := m.flow.RemoveItem(idx); err != nil {
		return m, Notice(notify.KindError, err.Error())
	}

	m.items = append(m.items[:idx], m.items[idx+1:]...)
	if m.focus >= m.inputCount() {
		m.focus = m.inputCount() - 1
	}
	m.applyFocus()

	return m, textinput.Blink
}

func (m DraftModel) startSave() (tea.Model, tea.Cmd) {
	m.syncDraft()

	run, payload, err := m.flow.BeginSave()
	if err != nil {
		return m, Notice(notify.KindError, err.Error())
	}

	m.state = draftStateSaving
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, SaveCmd(m.gateway, run, payload))
}

func (m DraftModel) View() string {
	if m.state == draftStateSaving {
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Saving receipt...", m.spinner.View()),
		)
	}

	draft := m.flow.Draft()

	typeLine := fmt.Sprintf("Type: %s  (Ctrl+T to change)", draft.Type)

	parts := []string{
		typeLine,
		"",
		m.establishment.View(),
		m.date.View(),
		m.total.View(),
		"",
		"Items:",
	}

	if len(m.items) == 0 {
		parts = append(parts, "  (none, Ctrl+A to add)")
	}

	for i, it := range m.items {
		parts = append(parts, fmt.Sprintf("  %d. %s  %s  x%s",
			i+1, it.name.View(), it.price.View(), it.quantity.View(),
		))
	}

	parts = append(parts,
		"",
		fmt.Sprintf("Running total: %s", money.Format(m.flow.RunningTotal())),
	)

	if m.err != nil {
		parts = append(parts,
			"",
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("Save failed: %v", m.err)),
		)
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}
