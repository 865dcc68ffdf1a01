package view

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budgetflow/internal/bank"
)

type ScheduleModel struct {
	CommonModel
	schedules *bank.ScheduleManager

	schedule *bank.Schedule
	form     *huh.Form
	err      error
	status   string

	formEnabled bool
	formHours   string
}

func NewScheduleModel(schedules *bank.ScheduleManager, userID int64) ScheduleModel {
	return ScheduleModel{
		CommonModel: CommonModel{UserID: userID},
		schedules:   schedules,
	}
}

func (m ScheduleModel) Title() string { return "Bank Sync Schedule" }

func (m ScheduleModel) ShortHelp() string {
	if m.form != nil {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | e: edit"
}

func (m ScheduleModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ScheduleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case scheduleMsg:
		m.err = msg.err
		if msg.schedule != nil {
			m.schedule = msg.schedule
		}

		if msg.saved && msg.err == nil {
			m.status = "Schedule saved."
			if m.schedule.Transient() {
				m.status = "Store unavailable: schedule not persisted."
			}
		}

		return m, nil

	case tea.KeyMsg:
		if m.form == nil {
			switch msg.String() {
			case "esc":
				return m, Back
			case "e":
				return m.enterEdit()
			}

			return m, nil
		}

		if msg.Type == tea.KeyEsc {
			m.form = nil
			return m, nil
		}
	}

	if m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.formEnabled = m.form.GetBool("enabled")
	m.formHours = m.form.GetString("interval")
	m.form = nil

	return m, m.saveCmd()
}

func (m ScheduleModel) enterEdit() (tea.Model, tea.Cmd) {
	m.formEnabled = false
	m.formHours = strconv.Itoa(bank.DefaultIntervalHours)

	if m.schedule != nil {
		m.formEnabled = m.schedule.Enabled
		m.formHours = strconv.Itoa(m.schedule.IntervalHours)
	}

	m.status = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("enabled").
				Title("Sync automatically?").
				Value(&m.formEnabled),

			huh.NewInput().
				Key("interval").
				Title("Interval (hours)").
				Value(&m.formHours).
				Validate(validateHours),
		),
	).WithWidth(40).WithShowHelp(false)

	return m, m.form.Init()
}

func validateHours(s string) error {
	h, err := bank.ParseIntervalHours(s)
	if err != nil {
		return err
	}

	if h <= 0 {
		return fmt.Errorf("must be positive")
	}

	return nil
}

func (m ScheduleModel) View() string {
	if m.form != nil {
		return lipgloss.NewStyle().Padding(1).Render("Edit Schedule\n\n" + m.form.View())
	}

	var body string

	switch {
	case m.err != nil:
		body = errorStyle(fmt.Sprintf("Error: %v", m.err))
	case m.schedule == nil:
		body = "Loading schedule..."
	default:
		state := "disabled"
		if m.schedule.Enabled {
			state = activeStyle("enabled")
		}

		next := "-"
		if m.schedule.NextRunAt != nil {
			next = m.schedule.NextRunAt.Local().Format("2006-01-02 15:04")
		}

		body = fmt.Sprintf("Automatic sync: %s\nInterval:       every %d h\nNext run:       %s",
			state, m.schedule.IntervalHours, next)
	}

	if m.status != "" {
		body += "\n\n" + lipgloss.NewStyle().Faint(true).Render(m.status)
	}

	return lipgloss.NewStyle().Padding(1).Render(body)
}

type scheduleMsg struct {
	schedule *bank.Schedule
	saved    bool
	err      error
}

func (m ScheduleModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		s, err := m.schedules.GetOrCreate(ctx, m.UserID)

		return scheduleMsg{schedule: s, err: err}
	}
}

func (m ScheduleModel) saveCmd() tea.Cmd {
	enabled := m.formEnabled

	hours, err := bank.ParseIntervalHours(m.formHours)
	if err != nil {
		return func() tea.Msg { return scheduleMsg{err: err} }
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		s, err := m.schedules.SetSchedule(ctx, m.UserID, enabled, hours)

		return scheduleMsg{schedule: s, saved: true, err: err}
	}
}
