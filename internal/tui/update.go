package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/state"
	"github.com/julianstephens/habitual/internal/tui/components/habits"
	"github.com/julianstephens/habitual/internal/validation"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h, v := docStyle.GetFrameSize()
		m.habitsModel.SetSize(msg.Width-h, msg.Height-v-6)
		m.daily.Width = min(max(msg.Width-h-4, 10), 60)
		m.help.Width = msg.Width
		return m, nil

	case habitsMsg:
		m.list = msg
		m.habitsModel.SetHabits(m.list, m.today())
		return m, waitFor(m.snapshots, func(l []models.Habit) tea.Msg { return habitsMsg(l) })

	case profileMsg:
		if msg.Present {
			m.user = msg.User
		}
		return m, waitFor(m.profiles, func(p state.Profile) tea.Msg { return profileMsg(p) })

	case loadedMsg:
		m.loaded = true
		return m, nil

	case opDoneMsg:
		m.status = msg.status
		return m, nil
	}

	switch m.state {
	case constants.StateAddHabit:
		return m.updateAddHabit(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.close()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			if m.state == constants.StateHabits {
				m.state = constants.StateProgress
			} else {
				m.state = constants.StateHabits
			}
			return m, nil
		}
	}

	if handled, cmd := m.handleHabitMessages(msg); handled {
		return m, cmd
	}

	if m.state == constants.StateHabits {
		var cmd tea.Cmd
		m.habitsModel, cmd = m.habitsModel.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleHabitMessages(msg tea.Msg) (bool, tea.Cmd) {
	h := m.habits
	switch msg := msg.(type) {
	case habits.AddHabitMsg:
		m.habitForm = &validation.HabitInput{}
		m.form = cli.NewHabitForm(m.habitForm)
		m.previousState = m.state
		m.state = constants.StateAddHabit
		return true, m.form.Init()

	case habits.CompleteHabitMsg:
		id, today := msg.Habit.ID, m.today()
		return true, await(h.Complete(msg.Habit), func() string {
			if got, ok := h.Find(id); ok && got.CompletedOn(today) {
				return fmt.Sprintf("%s done today", got.HabitName)
			}
			return fmt.Sprintf("could not mark %s as done", msg.Habit.HabitName)
		})

	case habits.UndoHabitMsg:
		id := msg.Habit.ID
		return true, await(h.Undo(msg.Habit), func() string {
			if got, ok := h.Find(id); ok && got.LastCompletedDate == "" {
				return fmt.Sprintf("%s undone", got.HabitName)
			}
			return fmt.Sprintf("could not undo %s", msg.Habit.HabitName)
		})

	case habits.DeleteHabitMsg:
		m.habitToDelete = msg.Habit
		m.previousState = m.state
		m.state = constants.StateConfirmDelete
		return true, nil

	case habits.SweepMsg:
		n := h.SweepNow()
		m.status = fmt.Sprintf("dropped %d ended habit(s)", n)
		return true, nil
	}
	return false, nil
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = m.previousState
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		input := *m.habitForm
		period, habitType, err := input.Parse()
		if err != nil {
			m.status = err.Error()
			m.form.State = huh.StateNormal
			return m, tea.Batch(cmds...)
		}
		h := m.habits
		before := len(h.Snapshot())
		cmds = append(cmds, await(h.Create(input.Goal, input.Name, period, habitType), func() string {
			// the reload brings back ended habits
			h.SweepNow()
			if len(h.Snapshot()) > before {
				return fmt.Sprintf("added %s", input.Name)
			}
			return fmt.Sprintf("could not add %s", input.Name)
		}))
		m.state = m.previousState
	case huh.StateAborted:
		m.state = m.previousState
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "y", "Y":
		target := m.habitToDelete
		m.habitToDelete = models.Habit{}
		m.state = m.previousState
		h := m.habits
		return m, await(h.Remove(target.ID), func() string {
			h.SweepNow()
			if _, ok := h.Find(target.ID); ok {
				return fmt.Sprintf("could not delete %s", target.HabitName)
			}
			return fmt.Sprintf("deleted %s", target.HabitName)
		})
	case "n", "N", "esc", "q":
		m.habitToDelete = models.Habit{}
		m.state = m.previousState
	}
	return m, nil
}
