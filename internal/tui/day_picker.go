package tui

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/sahilm/fuzzy"

	"github.com/wethinkt/go-daybook/internal/i18n"
	"github.com/wethinkt/go-daybook/internal/journal"
	"github.com/wethinkt/go-daybook/internal/scroll"
	"github.com/wethinkt/go-daybook/internal/tuilog"
)

// DaysPath is the path the day picker's positions are stored under.
const DaysPath = "/days"

type pickerKeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Today key.Binding
	Quit  key.Binding
}

func defaultPickerKeyMap() pickerKeyMap {
	return pickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Today: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "today"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// dayItem is one row of the picker.
type dayItem struct {
	summary journal.DaySummary
	label   string
}

// dayItems adapts the rows to fuzzy.Source. Rows match on their label and
// their date.
type dayItems []dayItem

func (d dayItems) String(i int) string { return d[i].label + " " + d[i].summary.Day }
func (d dayItems) Len() int            { return len(d) }

type daysLoadedMsg struct {
	days []journal.DaySummary
	err  error
}

// DayPicker lists the days that have entries, newest first, filtered
// fuzzily as the reader types.
type DayPicker struct {
	env     *Env
	keys    pickerKeyMap
	filter  textinput.Model
	items   dayItems
	visible []int
	cursor  int
	offset  int
	width   int
	height  int
	loading bool
	err     error
}

// NewDayPicker creates a picker; the days load on Init.
func NewDayPicker(env *Env) *DayPicker {
	ti := textinput.New()
	ti.Placeholder = i18n.T("tui.days.filter", "Type to filter...")
	ti.CharLimit = 64
	ti.Focus()
	return &DayPicker{
		env:     env,
		keys:    defaultPickerKeyMap(),
		filter:  ti,
		loading: true,
	}
}

// ViewKey implements the shell's page key lookup.
func (m *DayPicker) ViewKey() scroll.ViewKey { return scroll.PathKey(DaysPath) }

func (m *DayPicker) Init() tea.Cmd {
	return tea.Batch(m.load(), textinput.Blink)
}

func (m *DayPicker) load() tea.Cmd {
	j := m.env.Journal
	return func() tea.Msg {
		if j == nil {
			return daysLoadedMsg{}
		}
		days, err := j.Days(context.Background())
		return daysLoadedMsg{days: days, err: err}
	}
}

func (m *DayPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampOffset()
		return m, nil

	case daysLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			tuilog.Log.Error("DayPicker: listing days failed", "error", msg.err)
		}
		m.setDays(msg.days)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, func() tea.Msg { return PopPageMsg{} }
		case key.Matches(msg, m.keys.Today):
			return m, openDay(m.env.today())
		case key.Matches(msg, m.keys.Enter):
			if day, ok := m.Selected(); ok {
				return m, openDay(day)
			}
			if q := strings.TrimSpace(m.filter.Value()); journal.ValidDay(q) {
				return m, openDay(q)
			}
			return m, nil
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.move(1)
			return m, nil
		}
	}

	before := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.applyFilter()
	}
	return m, cmd
}

func openDay(day string) tea.Cmd {
	return func() tea.Msg { return OpenDayMsg{Day: day} }
}

func (m *DayPicker) setDays(days []journal.DaySummary) {
	now := m.env.now()
	today := journal.Today(now)
	m.items = make(dayItems, 0, len(days)+1)
	hasToday := false
	for _, d := range days {
		hasToday = hasToday || d.Day == today
		m.items = append(m.items, dayItem{summary: d, label: i18n.DayLabel(d.Day, now)})
	}
	if !hasToday {
		// Today is always offered so there is somewhere to write.
		m.items = append(dayItems{{
			summary: journal.DaySummary{Day: today},
			label:   i18n.DayLabel(today, now),
		}}, m.items...)
	}
	m.applyFilter()
}

func (m *DayPicker) applyFilter() {
	q := strings.TrimSpace(m.filter.Value())
	m.visible = m.visible[:0]
	if q == "" {
		for i := range m.items {
			m.visible = append(m.visible, i)
		}
	} else {
		for _, match := range fuzzy.FindFrom(q, m.items) {
			m.visible = append(m.visible, match.Index)
		}
	}
	m.cursor = 0
	m.offset = 0
}

func (m *DayPicker) move(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.visible)-1)
	m.clampOffset()
}

func (m *DayPicker) rows() int {
	// Title, filter, blank line above the list, help.
	return max(m.height-5, 1)
}

func (m *DayPicker) clampOffset() {
	rows := m.rows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

// Selected returns the day under the cursor.
func (m *DayPicker) Selected() (string, bool) {
	if m.cursor >= len(m.visible) {
		return "", false
	}
	return m.items[m.visible[m.cursor]].summary.Day, true
}

func (m *DayPicker) View() tea.View {
	v := tea.NewView(m.viewContent())
	v.AltScreen = true
	return v
}

func (m *DayPicker) viewContent() string {
	s := GetStyles()
	var b strings.Builder
	b.WriteString(s.Crumb.Render(i18n.T("tui.days.title", "Days")))
	b.WriteString("\n")
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(s.Meta.Render(i18n.T("common.loading", "Loading...")))
	case m.err != nil:
		b.WriteString(s.Error.Render(m.err.Error()))
	case len(m.visible) == 0:
		b.WriteString(s.Meta.Render(i18n.T("tui.days.empty", "No matching days")))
	default:
		end := min(m.offset+m.rows(), len(m.visible))
		for i := m.offset; i < end; i++ {
			b.WriteString(m.renderRow(m.items[m.visible[i]], i == m.cursor))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(s.Help.Render(i18n.T("tui.days.help", "enter: open  ·  ctrl+t: today  ·  esc: quit")))
	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}

func (m *DayPicker) renderRow(it dayItem, selected bool) string {
	s := GetStyles()
	count := i18n.Tn("tui.days.entries", "{{.Count}} entry", "{{.Count}} entries", it.summary.Count)
	meta := count
	if !it.summary.LastAt.IsZero() {
		meta = fmt.Sprintf("%s · %s", count, humanize.RelTime(it.summary.LastAt, m.env.now(), "ago", "from now"))
	}

	prefix := "  "
	if selected {
		prefix = "› "
	}
	line := fmt.Sprintf("%s%-18s %s", prefix, it.label, s.Meta.Render(meta))
	if m.width > 4 {
		line = ansi.Truncate(line, m.width-2, "…")
	}
	if selected {
		return s.Crumb.Render(line)
	}
	return line
}
