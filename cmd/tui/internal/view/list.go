package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetflow/internal/transaction"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateAdd
)

// typeFilters is the cycle behind the "t" key; nil means both types.
var typeFilters = []*transaction.Type{nil, new(transaction.TypeIncome), new(transaction.TypeExpense)}

// dateFilters is the cycle behind the "d" key.
var dateFilters = []Timeframe{TimeframeAll, TimeframeThisMonth, TimeframeLastMonth, TimeframeThisYear}

type ListModel struct {
	CommonModel
	txService *transaction.Service

	state   listState
	table   table.Model
	txs     []*transaction.Transaction
	summary transaction.Summary
	form    *huh.Form

	typeFilterIdx int
	dateFilterIdx int

	filter transaction.Filter
	page   int
	pages  int
	total  int

	loading bool
	err     error
	status  string

	// Form bindings
	formType     string
	formAmount   string
	formCategory string
	formDesc     string
}

func NewListModel(txSvc *transaction.Service, userID int64) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Type", Width: 9},
		{Title: "Amount", Width: 12},
		{Title: "Category", Width: 20},
		{Title: "Description", Width: 40},
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

	return ListModel{
		CommonModel: CommonModel{UserID: userID},
		txService:   txSvc,
		table:       t,
		page:        1,
		pages:       1,
		loading:     true,
	}
}

func (m ListModel) Title() string { return "Transactions" }
func (m ListModel) ShortHelp() string {
	if m.state == listStateAdd {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | a: add | t: type | d: date | n/p: page | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.txs = msg.result.Items
		m.summary = msg.summary
		m.total, m.pages = len(msg.result.Items), 1

		if p := msg.result.Pagination; p != nil {
			m.total, m.pages = p.Total, p.Pages
		}

		m.refreshTable()

		return m, nil

	case addSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		} else {
			m.status = "Transaction added. The summary refreshes within 30 seconds."
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-12, 5))
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateAdd:
		return m.updateAdd(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "a":
			return m.enterAddMode()
		case "t":
			m.typeFilterIdx = (m.typeFilterIdx + 1) % len(typeFilters)
			m.applyFilter()

			return m, m.loadCmd()
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % len(dateFilters)
			m.applyFilter()

			return m, m.loadCmd()
		case "n":
			if m.page < m.pages {
				m.page++
				return m, m.loadCmd()
			}

			return m, nil
		case "p":
			if m.page > 1 {
				m.page--
				return m, m.loadCmd()
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) enterAddMode() (tea.Model, tea.Cmd) {
	m.formType = string(transaction.TypeExpense)
	m.formAmount = ""
	m.formCategory = ""
	m.formDesc = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("type").
				Title("Type").
				Options(
					huh.NewOption("Expense", string(transaction.TypeExpense)),
					huh.NewOption("Income", string(transaction.TypeIncome)),
				).
				Value(&m.formType),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("0.00").
				Value(&m.formAmount).
				Validate(validateAmount),

			huh.NewInput().
				Key("category").
				Title("Category").
				CharLimit(transaction.MaxCategoryLen).
				Value(&m.formCategory).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("category cannot be empty")
					}

					return nil
				}),

			huh.NewInput().
				Key("description").
				Title("Description").
				CharLimit(transaction.MaxDescriptionLen).
				Value(&m.formDesc),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateAdd
	m.table.Blur()

	return m, m.form.Init()
}

// validateAmount accepts a non-negative amount with at most two decimals.
func validateAmount(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return errors.New("not a number")
	}

	if d.IsNegative() {
		return errors.New("must not be negative")
	}

	if !d.Equal(d.Round(2)) {
		return errors.New("at most 2 decimal places")
	}

	return nil
}

func (m ListModel) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = listStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.formType = m.form.GetString("type")
	m.formAmount = m.form.GetString("amount")
	m.formCategory = m.form.GetString("category")
	m.formDesc = m.form.GetString("description")

	return m, m.saveCmd()
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	typeLabel := "All"
	if t := typeFilters[m.typeFilterIdx]; t != nil {
		typeLabel = string(*t)
	}

	totals := fmt.Sprintf(
		"Income %s | Expense %s | Net %s",
		FormatAmount(m.summary.TotalIncome),
		FormatAmount(m.summary.TotalExpense),
		activeStyle(FormatAmount(m.summary.Net)),
	)

	header := fmt.Sprintf(
		"Filter: [t] Type: %s | [d] Date: %s | Page %d/%d (%d)",
		activeStyle(typeLabel),
		activeStyle(dateFilters[m.dateFilterIdx].String()),
		m.page, max(m.pages, 1), m.total,
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		totals,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == listStateAdd && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("New Transaction\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ListModel) applyFilter() {
	m.page = 1
	m.filter.Type = typeFilters[m.typeFilterIdx]

	m.filter.DateFrom, m.filter.DateTo = nil, nil
	if start, end, ok := dateFilters[m.dateFilterIdx].Range(time.Now()); ok {
		m.filter.DateFrom, m.filter.DateTo = &start, &end
	}
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			FormatDate(tx.CreatedAt),
			string(tx.Type),
			FormatSigned(tx.Type, tx.Amount),
			tx.Category,
			tx.Description,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadListMsg struct {
	result  transaction.PageResult
	summary transaction.Summary
	err     error
}

func (m ListModel) loadCmd() tea.Cmd {
	filter := m.filter
	page := transaction.Page{Number: m.page, Size: m.txService.PageSize()}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.txService.List(ctx, m.UserID, filter, page)
		if err != nil {
			return loadListMsg{err: err}
		}

		summary, err := m.txService.Summary(ctx, m.UserID)

		return loadListMsg{result: res, summary: summary, err: err}
	}
}

type addSavedMsg struct {
	err error
}

func (m ListModel) saveCmd() tea.Cmd {
	amount, err := decimal.NewFromString(strings.TrimSpace(m.formAmount))
	if err != nil {
		return func() tea.Msg { return addSavedMsg{err: err} }
	}

	params := transaction.CreateParams{
		UserID:      m.UserID,
		Type:        transaction.Type(m.formType),
		Amount:      amount,
		Category:    m.formCategory,
		Description: m.formDesc,
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.txService.Create(ctx, params)

		return addSavedMsg{err: err}
	}
}
