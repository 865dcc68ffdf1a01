package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budgetflow/internal/export"
	"github.com/MrJamesThe3rd/budgetflow/internal/transaction"
)

type exportState int

const (
	exportStateTimeframe exportState = iota
	exportStatePath
	exportStateExporting
	exportStateResult
)

const exportTimeout = 2 * time.Minute

type ExportModel struct {
	CommonModel
	exportService *export.Service

	state           exportState
	err             error
	timeframePicker TimeframePicker
	selection       TimeframeSelectedMsg

	form    *huh.Form
	dir     string
	spinner spinner.Model

	file    string
	count   int
	summary string
}

func NewExportModel(svc *export.Service, userID int64) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ExportModel{
		CommonModel:     CommonModel{UserID: userID},
		exportService:   svc,
		state:           exportStateTimeframe,
		timeframePicker: NewTimeframePicker(TimeframeThisMonth),
		dir:             "./exports",
		spinner:         s,
	}
}

func (m ExportModel) Title() string { return "Export Transactions" }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case exportStateResult:
		return "Esc: back to menu"
	case exportStateExporting:
		return "Exporting..."
	}

	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return nil
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if sel, ok := msg.(TimeframeSelectedMsg); ok {
		m.selection = sel
		m.form = m.buildPathForm()
		m.state = exportStatePath

		return m, m.form.Init()
	}

	switch m.state {
	case exportStateTimeframe:
		return m.updateTimeframe(msg)
	case exportStatePath:
		return m.updatePath(msg)
	case exportStateExporting:
		return m.updateExporting(msg)
	case exportStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m ExportModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m ExportModel) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = exportStateTimeframe
			m.timeframePicker.Reset()

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

	m.dir = m.form.GetString("dir")
	m.state = exportStateExporting
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.runExportCmd())
}

func (m ExportModel) updateExporting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(exportResultMsg); ok {
		m.state = exportStateResult
		m.err = result.err
		m.file = result.file
		m.count = result.count
		m.summary = result.body

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m ExportModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m *ExportModel) buildPathForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("dir").
				Title("Output Directory").
				Description("Created if it doesn't exist").
				Placeholder("./exports").
				Value(&m.dir).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("directory cannot be empty")
					}

					return nil
				}),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())

	case exportStatePath:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Range: %s\n\n%s", activeStyle(m.selection.Label), m.form.View()),
		)

	case exportStateExporting:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Exporting transactions...", m.spinner.View()),
		)

	case exportStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ExportModel) viewResult() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("46")).
		Render(fmt.Sprintf("Exported %d transactions to %s", m.count, m.file))

	summary := m.summary
	if summary == "" {
		summary = "(nothing in range)"
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			"Summary:",
			"",
			summary,
		),
	)
}

type exportResultMsg struct {
	file  string
	count int
	body  string
	err   error
}

func (m ExportModel) runExportCmd() tea.Cmd {
	var filter transaction.Filter
	m.selection.Apply(&filter)

	dir := strings.TrimSpace(m.dir)
	userID := m.UserID

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		file, txs, err := m.exportService.ExportToDir(ctx, dir, userID, filter, time.Now())
		if err != nil {
			return exportResultMsg{err: err}
		}

		return exportResultMsg{file: file, count: len(txs), body: export.GenerateSummary(txs)}
	}
}
