package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/budgetflow/internal/transaction"
)

// Timeframe is a predefined or custom created_at range.
type Timeframe int

const (
	TimeframeAll Timeframe = iota
	TimeframeThisMonth
	TimeframeLastMonth
	TimeframeThisYear
	TimeframeCustom
)

var timeframeLabels = map[Timeframe]string{
	TimeframeAll:       "All Time",
	TimeframeThisMonth: "This Month",
	TimeframeLastMonth: "Last Month",
	TimeframeThisYear:  "This Year",
	TimeframeCustom:    "Custom Range",
}

func (t Timeframe) String() string {
	if s, ok := timeframeLabels[t]; ok {
		return s
	}

	return "Unknown"
}

// Range returns the inclusive UTC bounds of t relative to now. The bool is
// false for TimeframeAll and TimeframeCustom, which have no fixed bounds.
func (t Timeframe) Range(now time.Time) (time.Time, time.Time, bool) {
	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	switch t {
	case TimeframeThisMonth:
		return monthStart, endOfDay(now), true
	case TimeframeLastMonth:
		start := monthStart.AddDate(0, -1, 0)
		return start, endOfDay(monthStart.AddDate(0, 0, -1)), true
	case TimeframeThisYear:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC), endOfDay(now), true
	}

	return time.Time{}, time.Time{}, false
}

// endOfDay matches the date_to expansion of the query API: 23:59:59 of the day.
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}

// TimeframeSelectedMsg is emitted when the user has picked a range. Start and
// End are nil for all time.
type TimeframeSelectedMsg struct {
	Label string
	Start *time.Time
	End   *time.Time
}

// Apply narrows f to the selected range.
func (m TimeframeSelectedMsg) Apply(f *transaction.Filter) {
	f.DateFrom = m.Start
	f.DateTo = m.End
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

// TimeframePicker is a reusable component for selecting a date range.
type TimeframePicker struct {
	state    timeframeState
	selected Timeframe

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

func newDateInput(prompt string) textinput.Model {
	in := textinput.New()
	in.Placeholder = "YYYY-MM-DD"
	in.CharLimit = len(time.DateOnly)
	in.Width = 12
	in.Prompt = prompt

	return in
}

func NewTimeframePicker(initial Timeframe) TimeframePicker {
	return TimeframePicker{
		state:      timeframeStateSelect,
		selected:   initial,
		startInput: newDateInput("From: "),
		endInput:   newDateInput("To:   "),
	}
}

func (m TimeframePicker) Init() tea.Cmd {
	return nil
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.state == timeframeStateCustom {
			return m.updateCustom(keyMsg)
		}

		return m.updateSelect(keyMsg)
	}

	return m, nil
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > TimeframeAll {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == TimeframeCustom {
			m.state = timeframeStateCustom
			m.focusIndex = 0
			m.startInput.Focus()

			return m, textinput.Blink
		}

		sel := TimeframeSelectedMsg{Label: m.selected.String()}
		if start, end, ok := m.selected.Range(time.Now()); ok {
			sel.Start, sel.End = &start, &end
		}

		return m, func() tea.Msg { return sel }
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = 1 - m.focusIndex
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
		} else {
			m.endInput.Focus()
		}

		return m, textinput.Blink

	case "enter":
		sel, err := parseCustomRange(m.startInput.Value(), m.endInput.Value())
		if err != nil {
			m.err = err
			return m, nil
		}

		m.err = nil

		return m, func() tea.Msg { return sel }

	case "esc":
		m.state = timeframeStateSelect
		m.err = nil

		return m, nil
	}

	var cmd tea.Cmd
	if m.focusIndex == 0 {
		m.startInput, cmd = m.startInput.Update(msg)
	} else {
		m.endInput, cmd = m.endInput.Update(msg)
	}

	return m, cmd
}

// parseCustomRange reads the two inputs. Either may be left blank for an open
// bound.
func parseCustomRange(from, to string) (TimeframeSelectedMsg, error) {
	sel := TimeframeSelectedMsg{Label: TimeframeCustom.String()}

	if s := strings.TrimSpace(from); s != "" {
		start, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return sel, errors.New("invalid start date (YYYY-MM-DD)")
		}

		sel.Start = &start
	}

	if s := strings.TrimSpace(to); s != "" {
		end, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return sel, errors.New("invalid end date (YYYY-MM-DD)")
		}

		end = endOfDay(end)
		sel.End = &end
	}

	if sel.Start != nil && sel.End != nil && sel.Start.After(*sel.End) {
		return sel, errors.New("start date is after end date")
	}

	if sel.Start != nil || sel.End != nil {
		sel.Label = fmt.Sprintf("%s to %s", orOpen(sel.Start), orOpen(sel.End))
	}

	return sel, nil
}

func orOpen(t *time.Time) string {
	if t == nil {
		return "…"
	}

	return FormatDate(*t)
}

func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = "\n\n" + errorStyle(fmt.Sprintf("Error: %v", m.err))
	}

	if m.state == timeframeStateCustom {
		return fmt.Sprintf(
			"Enter Custom Range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.startInput.View(),
			m.endInput.View(),
			errStr,
		)
	}

	var sb strings.Builder

	sb.WriteString("Select Timeframe:\n\n")

	for tf := TimeframeAll; tf <= TimeframeCustom; tf++ {
		cursor := " "
		if m.selected == tf {
			cursor = ">"
		}

		fmt.Fprintf(&sb, "%s %s\n", cursor, tf)
	}

	sb.WriteString("\n(Enter to select, Esc to back)")

	return sb.String() + errStr
}

// IsSelecting reports whether the picker shows the preset list.
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}

func (m *TimeframePicker) Reset() {
	m.state = timeframeStateSelect
	m.selected = TimeframeAll
	m.err = nil
	m.startInput.SetValue("")
	m.endInput.SetValue("")
}
