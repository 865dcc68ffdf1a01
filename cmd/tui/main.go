package main

import (
	"errors"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/budgetflow/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/budgetflow/internal/bank"
	bankStore "github.com/MrJamesThe3rd/budgetflow/internal/bank/store"
	"github.com/MrJamesThe3rd/budgetflow/internal/cache"
	"github.com/MrJamesThe3rd/budgetflow/internal/config"
	"github.com/MrJamesThe3rd/budgetflow/internal/database"
	"github.com/MrJamesThe3rd/budgetflow/internal/export"
	"github.com/MrJamesThe3rd/budgetflow/internal/importer"
	"github.com/MrJamesThe3rd/budgetflow/internal/memstore"
	"github.com/MrJamesThe3rd/budgetflow/internal/transaction"
	txStore "github.com/MrJamesThe3rd/budgetflow/internal/transaction/store"
)

type model struct {
	userID int64

	txService     *transaction.Service
	importService *importer.Service
	exportService *export.Service
	schedules     *bank.ScheduleManager

	currentView View

	listView     view.ListModel
	importView   view.ImportModel
	exportView   view.ExportModel
	scheduleView view.ScheduleModel
}

type View int

const (
	ViewMenu     View = 0
	ViewList     View = 1
	ViewImport   View = 2
	ViewExport   View = 3
	ViewSchedule View = 4
)

func openRepositories(cfg *config.Config) (transaction.Repository, bank.Repository, func() error, error) {
	if cfg.Store.Driver == config.DriverMemory {
		mem := memstore.New()
		return mem, mem, func() error { return nil }, nil
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return nil, nil, nil, err
	}

	return txStore.New(db), bankStore.New(db), db.Close, nil
}

func initialModel(cfg *config.Config, txRepo transaction.Repository, bankRepo bank.Repository) model {
	txSvc := transaction.NewService(
		txRepo,
		cache.NewMemory[transaction.Summary](time.Minute),
		transaction.Options{StoreTimeout: cfg.Store.Timeout, PageSize: cfg.Server.PageSize},
	)
	impSvc := importer.NewService(txSvc)
	expSvc := export.NewService(txSvc)
	schedules := bank.NewScheduleManager(bankRepo, bank.Options{StoreTimeout: cfg.Store.Timeout})

	userID := cfg.TUI.UserID

	return model{
		userID:        userID,
		txService:     txSvc,
		importService: impSvc,
		exportService: expSvc,
		schedules:     schedules,
		currentView:   ViewMenu,
		listView:      view.NewListModel(txSvc, userID),
		importView:    view.NewImportModel(impSvc, userID),
		exportView:    view.NewExportModel(expSvc, userID),
		scheduleView:  view.NewScheduleModel(schedules, userID),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.txService, m.userID)

				return m, m.listView.Init()
			case "2":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.importService, m.userID)

				return m, m.importView.Init()
			case "3":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService, m.userID)

				return m, m.exportView.Init()
			case "4":
				m.currentView = ViewSchedule
				m.scheduleView = view.NewScheduleModel(m.schedules, m.userID)

				return m, m.scheduleView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	case ViewSchedule:
		var newModel tea.Model
		newModel, cmd = m.scheduleView.Update(msg)
		m.scheduleView = newModel.(view.ScheduleModel)
	}

	return m, cmd
}

func (m model) active() view.View {
	switch m.currentView {
	case ViewList:
		return m.listView
	case ViewImport:
		return m.importView
	case ViewExport:
		return m.exportView
	case ViewSchedule:
		return m.scheduleView
	}

	return nil
}

func (m model) View() string {
	if m.currentView == ViewMenu {
		return lipgloss.NewStyle().Padding(2).Render(
			"BudgetFlow TUI\n\n" +
				"1. Transactions\n" +
				"2. Import Transactions\n" +
				"3. Export Transactions\n" +
				"4. Bank Sync Schedule\n\n" +
				"q. Quit",
		)
	}

	v := m.active()
	if v == nil {
		return "Unknown View"
	}

	title := lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(v.Title())
	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(v.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, title, v.View(), help)
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	txRepo, bankRepo, closeDB, err := openRepositories(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer closeDB()

	p := tea.NewProgram(initialModel(cfg, txRepo, bankRepo), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
