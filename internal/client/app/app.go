// Package app is the client's composition root. It owns the session, the
// settings and meal caches, the bulk editor and the local state, and drives
// the reminder and clock timers.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"mydaylog/internal/client/bulkedit"
	"mydaylog/internal/client/gateway"
	"mydaylog/internal/client/localstate"
	"mydaylog/internal/client/mealcache"
	"mydaylog/internal/client/session"
	"mydaylog/internal/client/settings"
	"mydaylog/internal/domain/calendar"
	"mydaylog/internal/domain/meal"
	"mydaylog/internal/domain/reminder"
)

// Notifications
const (
	MsgFutureDate   = "Cannot edit future dates"
	MsgOffline      = "Could not reach the server, showing saved data"
	MsgLoadMeals    = "Failed to load meals"
	MsgLoadSettings = "Failed to load settings"
)

// Timer defaults
const (
	DefaultReminderEvery = 60 * time.Second
	DefaultTickEvery     = 30 * time.Second
)

// ErrFutureDate is returned for edits after today.
var ErrFutureDate = errors.New("cannot edit future dates")

// API is everything the client asks of the server.
type API interface {
	session.API
	settings.API
	mealcache.Gateway
}

// Clearer drops stored credentials on sign-out.
type Clearer interface {
	Clear() error
}

// Options tune an App. Zero values pick the defaults.
type Options struct {
	Now           func() time.Time
	ReminderEvery time.Duration
	TickEvery     time.Duration
	OnTick        func(now time.Time)
	OnNotify      func(msg string)
	Credentials   Clearer
}

// App wires the client components together.
type App struct {
	Session  *session.Store
	Settings *settings.Cache
	Meals    *mealcache.Cache
	Bulk     *bulkedit.Editor
	Toasts   *Toasts

	state *localstate.Store
	opts  Options

	mu    sync.Mutex
	year  int
	month time.Month
}

// New builds an App over api and state. Nothing is fetched until Init.
func New(api API, state *localstate.Store, opts Options) *App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ReminderEvery <= 0 {
		opts.ReminderEvery = DefaultReminderEvery
	}
	if opts.TickEvery <= 0 {
		opts.TickEvery = DefaultTickEvery
	}
	a := &App{
		Session:  session.New(api, state),
		Settings: settings.New(api, state),
		Toasts:   NewToasts(opts.Now),
		state:    state,
		opts:     opts,
	}
	a.Meals = mealcache.New(api, state.MealMirror(), state, a.Notify)
	a.Bulk = bulkedit.New(a.Meals)

	now := opts.Now()
	a.year, a.month = now.Year(), now.Month()
	if t, err := time.Parse("2006-01", state.Get().LastMonth); err == nil {
		a.year, a.month = t.Year(), t.Month()
	}
	return a
}

// Notify shows a transient message.
func (a *App) Notify(msg string) {
	a.Toasts.Push(msg)
	if a.opts.OnNotify != nil {
		a.opts.OnNotify(msg)
	}
}

// Now returns the App's clock reading.
func (a *App) Now() time.Time { return a.opts.Now() }

// Init restores the session, then loads settings and the viewed month concurrently.
// Network failures become notifications and the mirrored state stays in view.
// POST: without a session only the session is initialised
// POST: the only error is ctx's
func (a *App) Init(ctx context.Context) error {
	if err := a.Session.Init(ctx); err != nil {
		a.degrade("session", err, MsgOffline)
		return ctx.Err()
	}
	if a.Session.Status() != session.Authenticated {
		return nil
	}
	a.load(ctx)
	return ctx.Err()
}

// load fetches settings and the viewed month. One failing does not cancel
// the other.
func (a *App) load(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error {
		if _, err := a.Settings.Get(ctx); err != nil {
			a.degrade("settings", err, MsgLoadSettings)
		}
		return nil
	})
	g.Go(func() error {
		if err := a.hydrate(ctx); err != nil {
			a.degrade("meals", err, MsgLoadMeals)
		}
		return nil
	})
	g.Wait()
}

func (a *App) degrade(what string, err error, fallback string) {
	slog.Warn("load_failed", "what", what, "error", err)
	a.Notify(gateway.MessageOr(err, fallback))
}

// Login signs in and loads the account's data.
func (a *App) Login(ctx context.Context, email, pin string) error {
	if _, err := a.Session.Login(ctx, email, pin); err != nil {
		return err
	}
	return a.switchAccount(ctx)
}

// Signup creates an account and loads its data.
func (a *App) Signup(ctx context.Context, fullName, email, pin, confirmPIN string) error {
	if _, err := a.Session.Signup(ctx, fullName, email, pin, confirmPIN); err != nil {
		return err
	}
	return a.switchAccount(ctx)
}

// Guest starts a guest session.
func (a *App) Guest(ctx context.Context) error {
	if _, err := a.Session.Guest(ctx); err != nil {
		return err
	}
	return a.switchAccount(ctx)
}

func (a *App) switchAccount(ctx context.Context) error {
	a.Meals.Reset()
	a.Settings.Invalidate()
	a.load(ctx)
	return nil
}

// Logout ends the session and forgets everything cached for it.
// POST: local state is cleared even when the server call fails
func (a *App) Logout(ctx context.Context) error {
	err := a.Session.Logout(ctx)
	a.forget()
	return err
}

// DeleteAccount removes the account on the server, then forgets it locally.
func (a *App) DeleteAccount(ctx context.Context) error {
	if err := a.Session.DeleteAccount(ctx); err != nil {
		return err
	}
	a.forget()
	return nil
}

func (a *App) forget() {
	a.Meals.Wait()
	a.Bulk.Cancel()
	a.Meals.Reset()
	a.Settings.Invalidate()
	if err := a.state.Update(func(s *localstate.State) {
		s.Settings = nil
		s.ReminderFired = ""
	}); err != nil {
		slog.Warn("state_event", "event", "forget_failed", "error", err)
	}
	if a.opts.Credentials != nil {
		if err := a.opts.Credentials.Clear(); err != nil {
			slog.Warn("state_event", "event", "credentials_clear_failed", "error", err)
		}
	}
}

// Month returns the month being viewed.
func (a *App) Month() (int, time.Month) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.year, a.month
}

// ViewMonth switches the calendar, remembers it, and hydrates its dates.
func (a *App) ViewMonth(ctx context.Context, year int, month time.Month) error {
	year, month = calendar.Shift(year, month, 0)
	a.mu.Lock()
	a.year, a.month = year, month
	a.mu.Unlock()

	key := fmt.Sprintf("%04d-%02d", year, month)
	if err := a.state.Update(func(s *localstate.State) { s.LastMonth = key }); err != nil {
		slog.Warn("state_event", "event", "last_month_failed", "error", err)
	}
	if a.Session.Status() != session.Authenticated {
		return nil
	}
	return a.hydrate(ctx)
}

// Prev shows the previous month.
func (a *App) Prev(ctx context.Context) error { return a.shift(ctx, -1) }

// Next shows the following month.
func (a *App) Next(ctx context.Context) error { return a.shift(ctx, 1) }

// Today shows the current month.
func (a *App) Today(ctx context.Context) error {
	now := a.Now()
	return a.ViewMonth(ctx, now.Year(), now.Month())
}

func (a *App) shift(ctx context.Context, delta int) error {
	y, m := a.Month()
	y, m = calendar.Shift(y, m, delta)
	return a.ViewMonth(ctx, y, m)
}

func (a *App) hydrate(ctx context.Context) error {
	y, m := a.Month()
	from, to := calendar.MonthRange(y, m)
	if err := a.Meals.HydrateRange(ctx, from, to); err != nil {
		return fmt.Errorf("failed to load %04d-%02d: %w", y, m, err)
	}
	return nil
}

// Grid lays out the viewed month with the bulk draft overlaid.
func (a *App) Grid() calendar.Grid {
	y, m := a.Month()
	return calendar.Build(calendar.Input{
		Year:      y,
		Month:     m,
		WeekStart: a.Settings.Peek().WeekStart.Weekday(),
		Days:      a.Bulk.Overlay(a.Meals.Snapshot()),
		Selection: a.Bulk.SelectionSet(),
		Today:     a.Now(),
	})
}

// Select handles a click on date. Outside bulk edit it returns the date to
// open; in bulk edit the click goes to the editor and "" is returned.
// POST: a future date changes nothing and shows MsgFutureDate
func (a *App) Select(ctx context.Context, date string, mods bulkedit.Modifiers) (string, error) {
	if err := a.guard(date); err != nil {
		return "", err
	}
	if a.Bulk.State() != bulkedit.Inactive {
		return "", a.Bulk.Click(date, mods, a.Now())
	}
	return date, nil
}

// SetStatus marks one slot of date.
func (a *App) SetStatus(ctx context.Context, date string, slot meal.Slot, mark meal.Mark) error {
	if err := a.guard(date); err != nil {
		return err
	}
	return a.Meals.SetStatus(ctx, date, slot, mark)
}

// SetReason records why a slot has its status.
func (a *App) SetReason(ctx context.Context, date string, slot meal.Slot, text string) error {
	if err := a.guard(date); err != nil {
		return err
	}
	return a.Meals.SetReason(ctx, date, slot, text)
}

func (a *App) guard(date string) error {
	d, err := meal.ParseDate(date)
	if err != nil {
		return err
	}
	if calendar.IsFuture(d, a.Now()) {
		a.Notify(MsgFutureDate)
		return ErrFutureDate
	}
	return nil
}

// Greeting returns the salutation for the signed-in user.
func (a *App) Greeting() string {
	u, _ := a.Session.User()
	return reminder.Greeting(a.Now(), reminder.FriendlyName(a.Settings.Peek().DisplayName, u.Email))
}

// Banner returns the persistent reminder once today's reminder time has passed.
func (a *App) Banner() (string, bool) {
	now := a.Now()
	s := a.Settings.Peek()
	return reminder.Banner(now, s.ReminderTime(), a.Meals.Get(meal.DateKey(now)))
}

// Run drives the reminder check and the clock tick until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	remind := time.NewTicker(a.opts.ReminderEvery)
	defer remind.Stop()
	tick := time.NewTicker(a.opts.TickEvery)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-remind.C:
			a.CheckReminder()
		case <-tick.C:
			if a.opts.OnTick != nil {
				a.opts.OnTick(a.Now())
			}
		}
	}
}

// CheckReminder fires the reminder when due and records the day it fired.
// POST: fires at most once per calendar day
func (a *App) CheckReminder() bool {
	if a.Session.Status() != session.Authenticated {
		return false
	}
	now := a.Now()
	today := meal.DateKey(now)
	s := a.Settings.Peek()
	if !reminder.Due(now, s.ReminderTime(), a.Meals.Get(today), a.state.Get().ReminderFired) {
		return false
	}
	if err := a.state.Update(func(st *localstate.State) { st.ReminderFired = today }); err != nil {
		slog.Warn("reminder_event", "event", "record_failed", "error", err)
	}
	slog.Debug("reminder_event", "event", "fired", "date", today)
	a.Notify(reminder.MessageDue)
	return true
}
