package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/raseedhq/raseed/internal/money"
	"github.com/raseedhq/raseed/internal/notify"
	"github.com/raseedhq/raseed/internal/wallet"
	"github.com/raseedhq/raseed/internal/workflow"
)

// ReceiptsModel browses the saved receipts. The rows always come from
// the workflow controller's cached list, so a failed refresh keeps the
// last known receipts on screen with the failure called out above them.
type ReceiptsModel struct {
	CommonModel
	gateway Gateway
	flow    *workflow.Controller
	linker  *wallet.Linker

	table       table.Model
	showItems   bool
	loading     bool
	lastSaveURL string
}

func NewReceiptsModel(gw Gateway, flow *workflow.Controller, linker *wallet.Linker) ReceiptsModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Establishment", Width: 24},
		{Title: "Type", Width: 12},
		{Title: "Total", Width: 12},
		{Title: "Items", Width: 5},
		{Title: "Wallet", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m := ReceiptsModel{
		gateway: gw,
		flow:    flow,
		linker:  linker,
		table:   t,
		loading: true,
	}
	m.refreshTable()

	return m
}

func (m ReceiptsModel) Title() string { return "My Receipts" }

func (m ReceiptsModel) ShortHelp() string {
	return "Esc: back | r: refresh | w: add to wallet | i: items"
}

func (m ReceiptsModel) Init() tea.Cmd {
	return m.refreshCmd()
}

func (m ReceiptsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ListResultMsg:
		m.loading = false
		m.refreshTable()
		return m, nil

	case WalletResultMsg:
		if msg.Err == nil {
			m.lastSaveURL = msg.SaveURL
		}
		m.refreshTable()
		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.refreshCmd()
		case "w":
			return m.linkToWallet()
		case "i":
			m.showItems = !m.showItems
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ReceiptsModel) refreshCmd() tea.Cmd {
	run := m.flow.BeginRefresh()

	return RefreshCmd(m.gateway, run)
}

func (m ReceiptsModel) linkToWallet() (tea.Model, tea.Cmd) {
	rec, err := m.flow.Receipt(m.table.Cursor())
	if err != nil {
		return m, nil
	}

	if !m.linker.Begin(rec.ID) {
		return m, Notice(notify.KindError, "already adding this receipt to the wallet")
	}

	m.refreshTable()

	return m, WalletCmd(m.gateway, rec.ID)
}

func (m *ReceiptsModel) refreshTable() {
	receipts := m.flow.Receipts()

	rows := make([]table.Row, 0, len(receipts))
	for _, rec := range receipts {
		walletCell := ""
		switch {
		case m.linker.InFlight(rec.ID):
			walletCell = "linking..."
		case rec.InWallet:
			walletCell = "yes"
		}

		rows = append(rows, table.Row{
			rec.Date,
			rec.EstablishmentName,
			string(rec.Type),
			money.Format(rec.Total.Decimal),
			fmt.Sprintf("%d", len(rec.Items)),
			walletCell,
		})
	}

	m.table.SetRows(rows)
}

func (m ReceiptsModel) View() string {
	var parts []string

	if err := m.flow.ListError(); err != nil {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Render(fmt.Sprintf("Couldn't refresh: %v (showing the last known list)", err)))
	}

	if m.loading {
		parts = append(parts, lipgloss.NewStyle().Faint(true).Render("Refreshing..."))
	}

	if m.flow.ListLoaded() && len(m.flow.Receipts()) == 0 {
		parts = append(parts, "No receipts yet. Upload one to get started.")
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := tableView
	if m.showItems {
		content = lipgloss.JoinHorizontal(lipgloss.Top, tableView, m.itemsPanel())
	}

	parts = append(parts, content)

	if m.lastSaveURL != "" {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Render(fmt.Sprintf("Wallet link: %s", m.lastSaveURL)))
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}

func (m ReceiptsModel) itemsPanel() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(40)

	rec, err := m.flow.Receipt(m.table.Cursor())
	if err != nil {
		return style.Render("No receipt selected.")
	}

	body := fmt.Sprintf("%s\n", rec.EstablishmentName)
	if len(rec.Items) == 0 {
		body += "\nNo line items."
	}

	for _, it := range rec.Items {
		body += fmt.Sprintf("\n%s  %s x%d", it.Name, money.Format(it.Price.Decimal), it.Quantity)
	}

	return style.Render(body)
}
