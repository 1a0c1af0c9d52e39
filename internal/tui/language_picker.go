package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/wethinkt/go-daybook/internal/i18n"
	"github.com/wethinkt/go-daybook/internal/tui/theme"
)

const langListWidthPercent = 35

type langKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

func defaultLangKeyMap() langKeyMap {
	return langKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k")),
		Down:   key.NewBinding(key.WithKeys("down", "j")),
		Select: key.NewBinding(key.WithKeys("enter")),
		Cancel: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c")),
	}
}

// LanguagePickerModel lists the shipped languages with a preview of the
// journal's strings in the one under the cursor.
type LanguagePickerModel struct {
	items    []i18n.LangInfo
	cursor   int
	preview  viewport.Model
	keys     langKeyMap
	width    int
	height   int
	ready    bool
	selected string // tag selected by user ("" if cancelled)
}

// NewLanguagePickerModel creates a language picker with activeTag under
// the cursor.
func NewLanguagePickerModel(activeTag string) LanguagePickerModel {
	items := i18n.AvailableLanguages(activeTag)
	cursor := 0
	for i, l := range items {
		if l.Active {
			cursor = i
		}
	}
	return LanguagePickerModel{
		items:  items,
		cursor: cursor,
		keys:   defaultLangKeyMap(),
	}
}

func (m LanguagePickerModel) Init() tea.Cmd {
	return nil
}

func (m LanguagePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.preview = viewport.New()
			m.ready = true
		}
		m.preview.SetWidth(m.previewWidth())
		m.preview.SetHeight(max(m.height-4, 1))
		m.updatePreview()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.updatePreview()
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
				m.updatePreview()
			}
		case key.Matches(msg, m.keys.Select):
			if len(m.items) > 0 {
				m.selected = m.items[m.cursor].Tag
			}
			return m, tea.Quit
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

// Selected returns the chosen tag, or "" when the picker was cancelled.
func (m LanguagePickerModel) Selected() string {
	return m.selected
}

func (m LanguagePickerModel) listWidth() int {
	return m.width * langListWidthPercent / 100
}

func (m LanguagePickerModel) previewWidth() int {
	return max(m.width-m.listWidth()-2, 1)
}

func (m *LanguagePickerModel) updatePreview() {
	if !m.ready || len(m.items) == 0 {
		return
	}

	t := theme.Current()
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.TextMuted.Fg))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.TextPrimary.Fg)).Bold(true)

	values := i18n.PreviewStrings(m.items[m.cursor].Tag)
	var b strings.Builder
	b.WriteString("\n")
	for _, kv := range i18n.PreviewKeys() {
		label := labelStyle.Render(fmt.Sprintf("  %-22s", kv[1]))
		b.WriteString(label + valueStyle.Render(values[kv[0]]) + "\n")
	}
	m.preview.SetContent(b.String())
}

func (m LanguagePickerModel) View() tea.View {
	if !m.ready {
		v := tea.NewView(i18n.T("common.loading", "Loading..."))
		v.AltScreen = true
		return v
	}

	t := theme.Current()
	listWidth := m.listWidth()
	accent := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.GetAccent()))

	listTitle := accent.Render("Languages")
	previewTitle := accent.Render("Preview")
	brand := lipgloss.NewStyle().Foreground(lipgloss.Color(t.GetBorderInactive())).Render("daybook")
	midGap := strings.Repeat(" ", max(0, listWidth-lipgloss.Width(listTitle)+3))
	rightGap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(listTitle)-lipgloss.Width(midGap)-lipgloss.Width(previewTitle)-lipgloss.Width(brand)))
	header := listTitle + midGap + previewTitle + rightGap + brand

	listPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.GetBorderActive())).
		Width(listWidth).
		Height(m.height - 2).
		Render(m.renderLanguageList())

	previewPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.GetBorderInactive())).
		Width(m.previewWidth()).
		Height(m.height - 2).
		Render(m.preview.View())

	footer := lipgloss.NewStyle().Foreground(lipgloss.Color(t.GetBorderInactive())).
		Render("↑/↓: navigate • enter: select • q/esc: cancel")

	v := tea.NewView(header + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, listPane, " ", previewPane) + "\n" + footer)
	v.AltScreen = true
	return v
}

func (m LanguagePickerModel) renderLanguageList() string {
	t := theme.Current()
	var b strings.Builder
	for i, item := range m.items {
		prefix := "  "
		nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.TextPrimary.Fg))
		if i == m.cursor {
			prefix = "▸ "
			nameStyle = nameStyle.Bold(true).Foreground(lipgloss.Color(t.GetAccent()))
		}

		name := item.Name
		if item.Active {
			name += " *"
		}
		line := prefix + nameStyle.Render(name)

		// Tag and English name under the cursor item
		if i == m.cursor {
			desc := item.Tag
			if item.EnglishName != item.Name {
				desc += " · " + item.EnglishName
			}
			line += "\n    " + lipgloss.NewStyle().Foreground(lipgloss.Color(t.TextMuted.Fg)).Render(desc)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// RunLanguagePicker runs the language picker and returns the selected tag,
// or "" if the user cancelled.
func RunLanguagePicker(activeTag string) (string, error) {
	p := tea.NewProgram(NewLanguagePickerModel(activeTag), termSizeOpts()...)
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}
	result, ok := finalModel.(LanguagePickerModel)
	if !ok {
		return "", nil
	}
	return result.Selected(), nil
}
