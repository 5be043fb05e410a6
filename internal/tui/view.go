package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/progress"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateHabits:
		content = m.viewHabits()
	case constants.StateProgress:
		content = m.viewProgress()
	case constants.StateAddHabit:
		content = m.form.View()
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	var status string
	if m.status != "" {
		status = statusStyle.Render(m.status)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		status,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	titles := []struct {
		state constants.SessionState
		title string
	}{
		{constants.StateHabits, "Habits"},
		{constants.StateProgress, "Progress"},
	}
	var tabs []string
	for _, t := range titles {
		if m.state == t.state {
			tabs = append(tabs, activeTabStyle.Render(t.title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(t.title))
		}
	}
	if m.user.Name != "" {
		tabs = append(tabs, userStyle.Render(fmt.Sprintf("%s (@%s)", m.user.Name, m.user.Username)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewHabits() string {
	if !m.loaded {
		return docStyle.Render("Loading habits...")
	}
	done, total, ratio := progress.Daily(m.list)
	header := fmt.Sprintf("Today %d/%d  %s", done, total, m.daily.ViewAs(ratio))
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", m.habitsModel.View()))
}

func (m Model) viewProgress() string {
	now := m.clock.Now()
	rows := []string{"Goals"}
	for _, h := range progress.GoalHabits(m.list) {
		rows = append(rows,
			fmt.Sprintf("%s  %d/%d", h.HabitName, h.CompletedCount, h.Period.TargetDays()),
			"  period  "+m.daily.ViewAs(progress.Elapsed(h, now)),
			"  done    "+m.daily.ViewAs(min(progress.Goal(h), 1)),
		)
	}
	if len(rows) == 1 {
		rows = append(rows, "  No month or year habits yet.")
	}

	sum := progress.Recap(m.list)
	rows = append(rows, "", fmt.Sprintf("Recap: %d of %d goals achieved (%.0f%%)", sum.Achieved, sum.Total, sum.Percent))
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, max(m.height-4, 0),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete habit %q?", m.habitToDelete.HabitName)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
