package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budgetflow/internal/importer"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	importService *importer.Service

	state      importState
	filePicker filepicker.Model
	rejected   list.Model

	status string
	err    error
}

func NewImportModel(impSvc *importer.Service, userID int64) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		CommonModel:   CommonModel{UserID: userID},
		importService: impSvc,
		filePicker:    fp,
	}
}

func (m ImportModel) Title() string { return "Import Transactions" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateResult {
		return "↑/↓: rejected rows | Esc: back"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case importResultMsg:
		m.state = importStateResult

		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d transactions (%s layout).",
			msg.report.Imported, msg.report.Profile)
		m.rejected = newRejectedList(msg.report.Errors)

		return m, nil
	}

	switch m.state {
	case importStateFilePick:
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.state = importStateImporting
			m.status = fmt.Sprintf("Importing from %s...", path)

			return m, m.importCmd(path)
		}

		return m, cmd

	case importStateResult:
		if m.err != nil {
			return m, nil
		}

		var cmd tea.Cmd
		m.rejected, cmd = m.rejected.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	if m.state == importStateResult {
		m.state = importStateFilePick
		m.err = nil
		m.status = ""

		return m, m.filePicker.Init()
	}

	return m, Back
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select a CSV file (type;amount;category;description or amount;category;description):\n\n" +
				m.filePicker.View(),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle(m.status) + "\n\n(Esc to go back)")
	}

	body := lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(m.status)
	if len(m.rejected.Items()) > 0 {
		body += "\n\n" + m.rejected.View()
	}

	return style.Render(body + "\n\n(Esc to go back)")
}

// Messages

type importResultMsg struct {
	report *importer.Report
	err    error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	userID := m.UserID

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		report, err := m.importService.Import(ctx, userID, f)
		if err != nil {
			return importResultMsg{err: err}
		}

		return importResultMsg{report: report}
	}
}

// Rejected row list

type rowErrorItem struct {
	err importer.RowError
}

func (i rowErrorItem) FilterValue() string { return i.err.Message }

type rowErrorDelegate struct{}

func (d rowErrorDelegate) Height() int                             { return 1 }
func (d rowErrorDelegate) Spacing() int                            { return 0 }
func (d rowErrorDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rowErrorDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(rowErrorItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	fmt.Fprintf(w, "%sline %d: %s", cursor, item.err.Line, item.err.Message)
}

func newRejectedList(errs []importer.RowError) list.Model {
	items := make([]list.Item, len(errs))
	for i, e := range errs {
		items[i] = rowErrorItem{err: e}
	}

	l := list.New(items, rowErrorDelegate{}, 80, 12)
	l.Title = fmt.Sprintf("Rejected rows (%d)", len(errs))
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}
