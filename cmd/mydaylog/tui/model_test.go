package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"mydaylog/internal/client/app"
	"mydaylog/internal/client/bulkedit"
	"mydaylog/internal/client/gateway"
	"mydaylog/internal/client/localstate"
	"mydaylog/internal/client/mealcache"
	"mydaylog/internal/domain/meal"
	"mydaylog/internal/domain/usersettings"
)

// stubAPI accepts every write and serves nothing.
type stubAPI struct{}

func (stubAPI) Login(ctx context.Context, email, pin string) (gateway.User, error) {
	return gateway.User{}, nil
}
func (stubAPI) Signup(ctx context.Context, fullName, email, pin, confirmPIN string) (gateway.User, error) {
	return gateway.User{}, nil
}
func (stubAPI) Guest(ctx context.Context) (gateway.User, error) { return gateway.User{}, nil }
func (stubAPI) Logout(ctx context.Context) error                { return nil }
func (stubAPI) Me(ctx context.Context) (gateway.User, error) {
	return gateway.User{ID: "u1", Email: "ana@example.com"}, nil
}
func (stubAPI) UpdateProfile(ctx context.Context, fullName, email string) (gateway.User, error) {
	return gateway.User{}, nil
}
func (stubAPI) ChangePIN(ctx context.Context, current, next, confirm string) error { return nil }
func (stubAPI) DeleteAccount(ctx context.Context) error                            { return nil }
func (stubAPI) GetSettings(ctx context.Context) (usersettings.Settings, error) {
	return usersettings.Defaults("u1"), nil
}
func (stubAPI) UpdateSettings(ctx context.Context, p usersettings.Patch) (usersettings.Settings, error) {
	return usersettings.Defaults("u1").Apply(p)
}
func (stubAPI) FetchRange(ctx context.Context, from, to string) (meal.Month, error) {
	return meal.Month{}, nil
}
func (stubAPI) PatchOne(ctx context.Context, p meal.Patch) error        { return nil }
func (stubAPI) PatchBulk(ctx context.Context, items []meal.Patch) error { return nil }

func newModel(t *testing.T) (Model, *app.App) {
	t.Helper()
	st := localstate.Memory()
	st.Update(func(s *localstate.State) { s.HadSession = true })
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	a := app.New(stubAPI{}, st, app.Options{Now: func() time.Time { return now }})
	if err := a.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return New(context.Background(), a), a
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

// TestCycleStatus tests that L walks lunch through received, skipped and clear.
func TestCycleStatus(t *testing.T) {
	m, a := newModel(t)
	want := []meal.Status{meal.StatusReceived, meal.StatusSkipped, meal.StatusUnset}
	for _, w := range want {
		m = press(m, "L")
		if got := a.Meals.Get("2024-03-10").StatusOf(meal.Lunch); got != w {
			t.Fatalf("lunch = %q, want %q", got, w)
		}
	}
	a.Meals.Wait()
}

// TestFutureDateIgnored tests that editing tomorrow changes nothing.
func TestFutureDateIgnored(t *testing.T) {
	m, a := newModel(t)
	m.cursor = m.cursor.AddDate(0, 0, 1)
	m = press(m, "D")
	if len(a.Meals.Snapshot()) != 0 {
		t.Error("future date was edited")
	}
	if m.err != nil {
		t.Errorf("err = %v, want toast only", m.err)
	}
	if !strings.Contains(m.View(), app.MsgFutureDate) {
		t.Error("toast not shown")
	}
}

// TestBulkFlow tests selecting two days and committing them as received.
func TestBulkFlow(t *testing.T) {
	m, a := newModel(t)
	m = press(m, "b", " ", "left", " ", "1", "r")
	if a.Bulk.State() != bulkedit.Drafting {
		t.Fatalf("state = %v, err = %v", a.Bulk.State(), m.err)
	}
	if !strings.Contains(m.View(), "2 selected") {
		t.Error("view does not show the selection count")
	}
	m = press(m, "enter")
	a.Meals.Wait()
	for _, d := range []string{"2024-03-09", "2024-03-10"} {
		if a.Meals.Get(d).StatusOf(meal.Lunch) != meal.StatusReceived {
			t.Errorf("%s lunch not received", d)
		}
	}
	if a.Bulk.State() != bulkedit.Inactive {
		t.Error("editor still active after done")
	}
}

// TestBulkSelectOnly tests that x replaces the selection with the cursor date.
func TestBulkSelectOnly(t *testing.T) {
	m, a := newModel(t)
	m = press(m, "b", " ", "left", " ")
	if got := len(a.Bulk.Selection()); got != 2 {
		t.Fatalf("selected %d dates, want 2", got)
	}
	m = press(m, "left", "x")
	if got := a.Bulk.Selection(); len(got) != 1 || got[0] != "2024-03-08" {
		t.Errorf("selection = %v, want [2024-03-08]", got)
	}
	if m.err != nil {
		t.Errorf("err = %v", m.err)
	}
}

// TestEditReason tests typing a reason for a marked slot.
func TestEditReason(t *testing.T) {
	m, a := newModel(t)
	m = press(m, "L", "L", "e")
	if m.editing != meal.Lunch {
		t.Fatalf("editing = %q, err = %v", m.editing, m.err)
	}
	if !strings.Contains(m.View(), "Lunch reason") {
		t.Error("view does not show the reason input")
	}
	// q is text while the input is open
	m = press(m, "queue", "enter")
	a.Meals.Wait()
	if e := a.Meals.Get("2024-03-10").Lunch; e == nil || e.Reason != "queue" {
		t.Fatalf("lunch = %+v, want reason queue", e)
	}
	if m.editing != "" {
		t.Error("input still open after enter")
	}

	m = press(m, "e", "x", "esc")
	a.Meals.Wait()
	if got := a.Meals.Get("2024-03-10").Lunch.Reason; got != "queue" {
		t.Errorf("esc saved %q", got)
	}
}

// TestEditReason_NeedsStatus tests that an unset slot cannot get a reason.
func TestEditReason_NeedsStatus(t *testing.T) {
	m, _ := newModel(t)
	m = press(m, "E")
	if m.editing != "" {
		t.Error("input opened for an unset slot")
	}
	if !errors.Is(m.err, mealcache.ErrNoStatus) {
		t.Errorf("err = %v, want ErrNoStatus", m.err)
	}
}
