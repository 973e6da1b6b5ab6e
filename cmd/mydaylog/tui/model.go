// Package tui is the interactive calendar.
package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"mydaylog/cmd/mydaylog/ui"
	"mydaylog/internal/client/app"
	"mydaylog/internal/client/bulkedit"
	"mydaylog/internal/client/mealcache"
	"mydaylog/internal/domain/meal"
)

type (
	tickMsg   time.Time
	toastMsg  string
	loadedMsg struct{ err error }
	themeMsg  struct{ err error }
)

// Bridge forwards App callbacks into a running program. Without one,
// notifications go to Fallback.
type Bridge struct {
	Fallback func(msg string)

	mu sync.Mutex
	p  *tea.Program
}

func (b *Bridge) attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.p = p
}

func (b *Bridge) send(msg tea.Msg) bool {
	b.mu.Lock()
	p := b.p
	b.mu.Unlock()
	if p == nil {
		return false
	}
	p.Send(msg)
	return true
}

// Tick is an app.Options.OnTick callback.
func (b *Bridge) Tick(now time.Time) { b.send(tickMsg(now)) }

// Notify is an app.Options.OnNotify callback.
func (b *Bridge) Notify(msg string) {
	if !b.send(toastMsg(msg)) && b.Fallback != nil {
		b.Fallback(msg)
	}
}

// Model is the bubbletea model of the calendar screen.
type Model struct {
	ctx    context.Context
	app    *app.App
	cursor time.Time
	keys   keyMap
	help   help.Model
	styles ui.Styles
	err    error

	// editing is the slot whose reason is being typed; "" when closed.
	editing meal.Slot
	input   textinput.Model
}

// New returns a model with the cursor on today.
func New(ctx context.Context, a *app.App) Model {
	m := Model{
		ctx:    ctx,
		app:    a,
		cursor: meal.Midnight(a.Now()),
		keys:   defaultKeys(),
		help:   help.New(),
		input:  textinput.New(),
	}
	m.input.CharLimit = meal.MaxReasonLength
	m.input.Placeholder = "why?"
	m.restyle()
	if y, mo := a.Month(); y != m.cursor.Year() || mo != m.cursor.Month() {
		m.cursor = time.Date(y, mo, 1, 0, 0, 0, 0, m.cursor.Location())
	}
	return m
}

func (m *Model) restyle() {
	m.styles = ui.NewStyles(ui.ThemeFor(m.app.Settings.Peek().Theme))
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.load(m.app.Today)
}

func (m Model) load(fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg { return loadedMsg{err: fn(ctx)} }
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tickMsg:
		return m, nil
	case toastMsg:
		// redraw once the toast has expired
		return m, tea.Tick(app.ToastTTL, func(t time.Time) tea.Msg { return tickMsg(t) })
	case loadedMsg:
		m.err = msg.err
	case themeMsg:
		m.err = msg.err
		m.restyle()
	case tea.KeyMsg:
		if m.editing != "" {
			return m.handleReason(msg)
		}
		return m.handleKey(msg)
	}
	if m.editing != "" {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, k.Left):
		return m.move(0, -1)
	case key.Matches(msg, k.Right):
		return m.move(0, 1)
	case key.Matches(msg, k.Up):
		return m.move(0, -7)
	case key.Matches(msg, k.Down):
		return m.move(0, 7)
	case key.Matches(msg, k.Prev):
		return m.move(-1, 0)
	case key.Matches(msg, k.Next):
		return m.move(1, 0)
	case key.Matches(msg, k.Today):
		m.cursor = meal.Midnight(m.app.Now())
		return m, m.load(m.app.Today)
	case key.Matches(msg, k.Theme):
		ctx, settings := m.ctx, m.app.Settings
		return m, func() tea.Msg {
			_, err := settings.ToggleTheme(ctx)
			return themeMsg{err: err}
		}
	}

	if m.app.Bulk.State() == bulkedit.Inactive {
		return m.handleSingle(msg)
	}
	return m.handleBulk(msg)
}

func (m Model) handleSingle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Lunch):
		m.err = m.cycle(meal.Lunch)
	case key.Matches(msg, k.Dinner):
		m.err = m.cycle(meal.Dinner)
	case key.Matches(msg, k.LunchWhy):
		return m.openReason(meal.Lunch)
	case key.Matches(msg, k.DinnerWhy):
		return m.openReason(meal.Dinner)
	case key.Matches(msg, k.Bulk):
		m.app.Bulk.Start()
		m.err = nil
	}
	return m, nil
}

// openReason starts editing the reason of a slot that has a status.
func (m Model) openReason(slot meal.Slot) (tea.Model, tea.Cmd) {
	entry := m.app.Meals.Get(m.key()).Get(slot)
	if entry == nil {
		m.err = mealcache.ErrNoStatus
		return m, nil
	}
	m.err = nil
	m.editing = slot
	m.input.SetValue(entry.Reason)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) handleReason(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		err := m.app.SetReason(m.ctx, m.key(), m.editing, m.input.Value())
		if errors.Is(err, app.ErrFutureDate) {
			err = nil
		}
		m.err = err
		m.closeReason()
		return m, nil
	case tea.KeyEsc:
		m.closeReason()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeReason() {
	m.editing = ""
	m.input.Blur()
	m.input.Reset()
}

func (m Model) handleBulk(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	var err error
	switch {
	case key.Matches(msg, k.Only):
		_, err = m.app.Select(m.ctx, m.key(), bulkedit.Modifiers{})
	case key.Matches(msg, k.Toggle):
		_, err = m.app.Select(m.ctx, m.key(), bulkedit.Modifiers{Ctrl: true})
	case key.Matches(msg, k.Range):
		_, err = m.app.Select(m.ctx, m.key(), bulkedit.Modifiers{Shift: true})
	case key.Matches(msg, k.PickLunch):
		err = m.app.Bulk.ChooseMeal(meal.Lunch)
	case key.Matches(msg, k.PickDinner):
		err = m.app.Bulk.ChooseMeal(meal.Dinner)
	case key.Matches(msg, k.Received):
		err = m.app.Bulk.Apply(meal.MarkReceived)
	case key.Matches(msg, k.Skipped):
		err = m.app.Bulk.Apply(meal.MarkSkipped)
	case key.Matches(msg, k.Clear):
		err = m.app.Bulk.Apply(meal.MarkClear)
	case key.Matches(msg, k.Done):
		m.app.Bulk.Done(m.ctx)
	case key.Matches(msg, k.Cancel):
		m.app.Bulk.Cancel()
	}
	if errors.Is(err, app.ErrFutureDate) {
		err = nil // already shown as a toast
	}
	m.err = err
	return m, nil
}

// cycle moves a slot through not set, received, skipped and back.
func (m Model) cycle(slot meal.Slot) error {
	date := m.key()
	next := meal.MarkReceived
	switch m.app.Meals.Get(date).StatusOf(slot) {
	case meal.StatusReceived:
		next = meal.MarkSkipped
	case meal.StatusSkipped:
		next = meal.MarkClear
	}
	err := m.app.SetStatus(m.ctx, date, slot, next)
	if errors.Is(err, app.ErrFutureDate) {
		return nil
	}
	return err
}

// move shifts the cursor by months and days, following it to a new month.
func (m Model) move(months, days int) (tea.Model, tea.Cmd) {
	next := m.cursor.AddDate(0, months, days)
	if months != 0 {
		next = time.Date(next.Year(), next.Month(), 1, 0, 0, 0, 0, next.Location())
	}
	m.cursor = next
	if y, mo := m.app.Month(); y == next.Year() && mo == next.Month() {
		return m, nil
	}
	year, month := next.Year(), next.Month()
	return m, m.load(func(ctx context.Context) error { return m.app.ViewMonth(ctx, year, month) })
}

func (m Model) key() string { return meal.DateKey(m.cursor) }

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.app.Greeting()))
	b.WriteString("\n")
	if msg, ok := m.app.Banner(); ok {
		b.WriteString(m.styles.Banner.Render(msg) + "\n\n")
	}
	b.WriteString(ui.Calendar(m.styles, m.app.Grid(), m.key()))
	b.WriteString("\n\n")
	b.WriteString(ui.Day(m.styles, m.key(), m.app.Bulk.Overlay(m.app.Meals.Snapshot())[m.key()]))
	b.WriteString("\n\n")
	if m.editing != "" {
		b.WriteString(ui.SlotLabel(m.editing) + " reason: " + m.input.View() + "\n\n")
	}

	if st := m.app.Bulk.State(); st != bulkedit.Inactive {
		line := "Bulk edit: " + st.String()
		if slot := m.app.Bulk.Slot(); slot != "" {
			line += " " + string(slot)
		}
		b.WriteString(m.styles.Muted.Render(line + "  (" + strconv.Itoa(len(m.app.Bulk.Selection())) + " selected)"))
		b.WriteString("\n")
	}
	if msg, ok := m.app.Toasts.Current(); ok {
		b.WriteString(m.styles.Toast.Render(msg) + "\n")
	}
	if m.err != nil {
		b.WriteString(m.styles.Banner.Render(m.err.Error()) + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// Run shows the calendar until the user quits. b receives the App's callbacks.
func Run(ctx context.Context, a *app.App, b *Bridge) error {
	p := tea.NewProgram(New(ctx, a), tea.WithAltScreen(), tea.WithContext(ctx))
	b.attach(p)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
