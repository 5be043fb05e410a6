package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/state"
	"github.com/julianstephens/habitual/internal/tui/components/habits"
	"github.com/julianstephens/habitual/internal/validation"
)

// habitsMsg carries a published habit snapshot.
type habitsMsg []models.Habit

// profileMsg carries a published profile.
type profileMsg state.Profile

// loadedMsg arrives when the initial load finished.
type loadedMsg struct{}

// opDoneMsg arrives when a container operation finished.
type opDoneMsg struct {
	status string
}

type Model struct {
	habits *state.Habits
	users  *state.Users
	clock  state.Clock

	snapshots     <-chan []models.Habit
	profiles      <-chan state.Profile
	unsubscribe   []func()
	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model
	habitsModel   habits.Model
	daily         progress.Model
	list          []models.Habit
	user          models.User
	form          *huh.Form
	habitForm     *validation.HabitInput
	habitToDelete models.Habit
	status        string
	loaded        bool
	quitting      bool
	width         int
	height        int
}

// NewModel renders the habits container. The container and users container
// stay owned by the caller.
func NewModel(h *state.Habits, users *state.Users, clock state.Clock) Model {
	if clock == nil {
		clock = state.SystemClock
	}
	snapshots, cancelHabits := h.Subscribe()
	profiles, cancelProfile := users.SubscribeProfile()
	return Model{
		habits:      h,
		users:       users,
		clock:       clock,
		snapshots:   snapshots,
		profiles:    profiles,
		unsubscribe: []func(){cancelHabits, cancelProfile},
		state:       constants.StateHabits,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		habitsModel: habits.New(0, 0),
		daily:       progress.New(progress.WithDefaultGradient()),
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == constants.StateHabits {
		k := habits.DefaultKeyMap()
		keys = append(keys, k.Add, k.Complete, k.Undo, k.Delete)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	if m.state == constants.StateHabits {
		k := habits.DefaultKeyMap()
		actions = []key.Binding{k.Add, k.Complete, k.Undo, k.Delete, k.Sweep}
	}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.load(),
		waitFor(m.snapshots, func(l []models.Habit) tea.Msg { return habitsMsg(l) }),
		waitFor(m.profiles, func(p state.Profile) tea.Msg { return profileMsg(p) }),
	)
}

// waitFor turns the next value of a subscription into a message. A closed
// subscription yields no message.
func waitFor[T any](ch <-chan T, wrap func(T) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return wrap(v)
	}
}

// await turns a container operation into a message once it finishes.
func await(done <-chan struct{}, status func() string) tea.Cmd {
	return func() tea.Msg {
		<-done
		return opDoneMsg{status: status()}
	}
}

func (m Model) load() tea.Cmd {
	h := m.habits
	done := h.Load()
	return func() tea.Msg {
		<-done
		// ended habits are hidden from the start
		h.SweepNow()
		return loadedMsg{}
	}
}

func (m Model) today() string {
	return m.clock.Now().Format(constants.DateFormat)
}

func (m *Model) close() {
	for _, cancel := range m.unsubscribe {
		cancel()
	}
	m.unsubscribe = nil
}
