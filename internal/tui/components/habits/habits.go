package habits

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitual/internal/models"
)

type AddHabitMsg struct{}

type CompleteHabitMsg struct {
	Habit models.Habit
}

type UndoHabitMsg struct {
	Habit models.Habit
}

type DeleteHabitMsg struct {
	Habit models.Habit
}

type SweepMsg struct{}

type Item struct {
	Habit models.Habit
	Done  bool
}

func (i Item) Title() string {
	if i.Done {
		return "✓ " + i.Habit.HabitName
	}
	return "○ " + i.Habit.HabitName
}

func (i Item) Description() string {
	return fmt.Sprintf("%s · %s · %d done · goal %s", i.Habit.Period, i.Habit.HabitType, i.Habit.CompletedCount, i.Habit.YourGoal)
}

func (i Item) FilterValue() string { return i.Habit.HabitName }

type KeyMap struct {
	Add      key.Binding
	Complete key.Binding
	Undo     key.Binding
	Delete   key.Binding
	Sweep    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Complete: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "done today"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "undo"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Sweep: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "drop ended"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Complete, keys.Undo, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Complete, keys.Undo, keys.Delete, keys.Sweep}
	}

	return Model{list: l, keys: keys}
}

// SetHabits replaces the rows; a habit is done when it was completed on today.
func (m *Model) SetHabits(habits []models.Habit, today string) {
	items := make([]list.Item, len(habits))
	for i, h := range habits {
		items[i] = Item{Habit: h, Done: h.CompletedOn(today)}
	}
	m.list.SetItems(items)
}

// Selected returns the highlighted habit.
func (m Model) Selected() (Item, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i, ok
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Sweep):
			return m, func() tea.Msg { return SweepMsg{} }
		case key.Matches(msg, m.keys.Complete):
			if i, ok := m.Selected(); ok && !i.Done {
				return m, func() tea.Msg { return CompleteHabitMsg{Habit: i.Habit} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Undo):
			if i, ok := m.Selected(); ok && i.Habit.LastCompletedDate != "" {
				return m, func() tea.Msg { return UndoHabitMsg{Habit: i.Habit} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DeleteHabitMsg{Habit: i.Habit} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
