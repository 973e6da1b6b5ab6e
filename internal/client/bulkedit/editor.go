// Package bulkedit is the multi-date selection and draft used to mark many
// days at once. Nothing reaches the cache or the network before Done.
package bulkedit

import (
	"context"
	"errors"
	"sort"
	"time"

	"mydaylog/internal/domain/meal"
)

// State of the editor.
type State int

// State constants
const (
	Inactive State = iota
	Selecting
	Drafting
)

func (s State) String() string {
	switch s {
	case Selecting:
		return "selecting"
	case Drafting:
		return "drafting"
	}
	return "inactive"
}

// Modifiers are the keys held during a click.
type Modifiers struct {
	Ctrl  bool // ctrl or cmd
	Shift bool
}

// Editor errors
var (
	ErrNotActive      = errors.New("bulk edit is not active")
	ErrEmptySelection = errors.New("select at least one date")
	ErrNotDrafting    = errors.New("choose lunch or dinner first")
	ErrFutureDate     = errors.New("cannot edit future dates")
)

// Committer receives the finished draft.
type Committer interface {
	Commit(ctx context.Context, draft meal.Draft)
}

// Editor holds the selection and the draft.
// INVARIANT: draft is non-empty only in Drafting
type Editor struct {
	state    State
	slot     meal.Slot
	selected map[string]bool
	anchor   string
	draft    meal.Draft
	cache    Committer
}

// New returns an inactive editor that commits through cache.
func New(cache Committer) *Editor {
	return &Editor{cache: cache, selected: map[string]bool{}, draft: meal.NewDraft()}
}

// State returns the current state.
func (e *Editor) State() State { return e.state }

// Slot returns the chosen slot; "" before ChooseMeal.
func (e *Editor) Slot() meal.Slot { return e.slot }

// Start enters Selecting with an empty selection.
func (e *Editor) Start() {
	e.reset()
	e.state = Selecting
}

// Click updates the selection.
// Plain click replaces the selection; ctrl toggles date; shift replaces the
// selection with the inclusive range from the anchor, never past today. Plain
// and ctrl clicks set the anchor; a shift click keeps it unless ctrl is also held.
// PRE: date is a valid key
// POST: no date after today is ever selected
func (e *Editor) Click(date string, mods Modifiers, today time.Time) error {
	if e.state == Inactive {
		return ErrNotActive
	}
	d, err := meal.ParseDate(date)
	if err != nil {
		return err
	}
	todayKey := meal.DateKey(today)
	if date > todayKey {
		return ErrFutureDate
	}

	switch {
	case mods.Shift && e.anchor != "":
		a, _ := meal.ParseDate(e.anchor)
		e.selected = map[string]bool{}
		e.addRange(a, d, todayKey)
		if mods.Ctrl {
			e.anchor = date
		}
	case mods.Ctrl:
		if e.selected[date] {
			delete(e.selected, date)
		} else {
			e.selected[date] = true
		}
		e.anchor = date
	default:
		e.selected = map[string]bool{date: true}
		e.anchor = date
	}
	return nil
}

// Add puts dates into the selection without toggling. A date already
// selected stays selected. The anchor moves to the last date.
// POST: on error the selection is unchanged
func (e *Editor) Add(today time.Time, dates ...string) error {
	if e.state == Inactive {
		return ErrNotActive
	}
	todayKey := meal.DateKey(today)
	for _, date := range dates {
		if _, err := meal.ParseDate(date); err != nil {
			return err
		}
		if date > todayKey {
			return ErrFutureDate
		}
	}
	for _, date := range dates {
		e.selected[date] = true
		e.anchor = date
	}
	return nil
}

// AddRange adds the inclusive range from..to (either order) without
// replacing the selection. Dates after today are skipped.
func (e *Editor) AddRange(from, to string, today time.Time) error {
	if e.state == Inactive {
		return ErrNotActive
	}
	a, err := meal.ParseDate(from)
	if err != nil {
		return err
	}
	b, err := meal.ParseDate(to)
	if err != nil {
		return err
	}
	e.addRange(a, b, meal.DateKey(today))
	e.anchor = to
	return nil
}

func (e *Editor) addRange(a, b time.Time, todayKey string) {
	if b.Before(a) {
		a, b = b, a
	}
	for cur := a; !cur.After(b); cur = cur.AddDate(0, 0, 1) {
		if k := meal.DateKey(cur); k <= todayKey {
			e.selected[k] = true
		}
	}
}

// Selection returns the selected dates in ascending order.
func (e *Editor) Selection() []string {
	out := make([]string, 0, len(e.selected))
	for k := range e.selected {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IsSelected reports whether date is selected.
func (e *Editor) IsSelected(date string) bool { return e.selected[date] }

// SelectionSet returns a copy of the selection for the calendar grid.
func (e *Editor) SelectionSet() map[string]bool {
	out := make(map[string]bool, len(e.selected))
	for k := range e.selected {
		out[k] = true
	}
	return out
}

// ChooseMeal picks the slot that marks apply to and enters Drafting.
// PRE: the selection is non-empty
func (e *Editor) ChooseMeal(slot meal.Slot) error {
	if e.state == Inactive {
		return ErrNotActive
	}
	if _, err := meal.ParseSlot(string(slot)); err != nil {
		return err
	}
	if len(e.selected) == 0 {
		return ErrEmptySelection
	}
	e.slot = slot
	e.state = Drafting
	return nil
}

// Apply writes mark for every selected date into the chosen slot's draft.
func (e *Editor) Apply(mark meal.Mark) error {
	if e.state != Drafting {
		return ErrNotDrafting
	}
	if _, err := meal.ParseMark(string(mark)); err != nil {
		return err
	}
	for date := range e.selected {
		e.draft[e.slot][date] = mark
	}
	return nil
}

// ClearSelection empties the selection and keeps the draft.
func (e *Editor) ClearSelection() {
	e.selected = map[string]bool{}
	e.anchor = ""
}

// Cancel discards everything without any network call.
func (e *Editor) Cancel() {
	e.reset()
}

// Done commits a non-empty draft and returns to Inactive.
// POST: at most one Commit call
func (e *Editor) Done(ctx context.Context) {
	if !e.draft.IsEmpty() && e.cache != nil {
		e.cache.Commit(ctx, e.draft)
	}
	e.reset()
}

// Draft returns the pending marks.
func (e *Editor) Draft() meal.Draft { return e.draft }

// Overlay returns base with the draft applied, for previewing. base is not modified.
func (e *Editor) Overlay(base meal.Month) meal.Month {
	out := base.Clone()
	e.draft.ApplyTo(out)
	return out
}

func (e *Editor) reset() {
	e.state = Inactive
	e.slot = ""
	e.selected = map[string]bool{}
	e.anchor = ""
	e.draft = meal.NewDraft()
}
