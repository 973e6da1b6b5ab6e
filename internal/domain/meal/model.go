package meal

import (
	"errors"
	"time"
)

// DateLayout is the wire and storage format of a calendar day.
const DateLayout = "2006-01-02"

// MaxReasonLength caps the free-text skip reason.
const MaxReasonLength = 500

// Slot identifies one of the two tracked meals of a day.
type Slot string

// Slot constants
const (
	Lunch  Slot = "lunch"
	Dinner Slot = "dinner"
)

// Slots lists every slot in display order.
var Slots = []Slot{Lunch, Dinner}

// Status is the recorded outcome of a meal slot. The zero value means unset.
type Status string

// Status constants
const (
	StatusUnset    Status = ""
	StatusReceived Status = "received"
	StatusSkipped  Status = "skipped"
)

// Mark is a status-setting action: a status, or Clear to remove the slot.
type Mark string

// Mark constants
const (
	MarkReceived Mark = "received"
	MarkSkipped  Mark = "skipped"
	MarkClear    Mark = "clear"
)

// Domain errors
var (
	ErrInvalidDate   = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidSlot   = errors.New("meal must be one of: lunch, dinner")
	ErrInvalidStatus = errors.New("status must be one of: received, skipped, or empty to clear")
	ErrInvalidMark   = errors.New("mark must be one of: received, skipped, clear")
	ErrReasonTooLong = errors.New("reason cannot exceed 500 characters")
	ErrEmptyPatch    = errors.New("patch must change at least one field")
)

// Entry is the record of one meal slot.
type Entry struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Day holds both slots of one calendar date. A nil slot is unset.
type Day struct {
	Lunch  *Entry `json:"lunch,omitempty"`
	Dinner *Entry `json:"dinner,omitempty"`
}

// ParseSlot converts a wire value to a Slot.
// PRE: none
// POST: returns the slot or ErrInvalidSlot
func ParseSlot(s string) (Slot, error) {
	switch Slot(s) {
	case Lunch, Dinner:
		return Slot(s), nil
	}
	return "", ErrInvalidSlot
}

// ParseStatus converts a wire value to a Status. The empty string is valid and means clear.
// PRE: none
// POST: returns the status or ErrInvalidStatus
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusUnset, StatusReceived, StatusSkipped:
		return Status(s), nil
	}
	return "", ErrInvalidStatus
}

// ParseMark converts a user-facing action to a Mark.
// PRE: none
// POST: returns the mark or ErrInvalidMark
func ParseMark(s string) (Mark, error) {
	switch Mark(s) {
	case MarkReceived, MarkSkipped, MarkClear:
		return Mark(s), nil
	}
	return "", ErrInvalidMark
}

// Status returns the status a mark writes; Clear maps to StatusUnset.
// INVARIANT: Mark is not mutated
func (m Mark) Status() Status {
	if m == MarkClear {
		return StatusUnset
	}
	return Status(m)
}

// ParseDate parses a YYYY-MM-DD key into a local-midnight time.
// PRE: none
// POST: returns the date or ErrInvalidDate
func ParseDate(key string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, key, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// DateKey formats a time as its YYYY-MM-DD key in the time's own location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// Midnight truncates t to the start of its calendar day in its own location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Get returns the entry for a slot, or nil when unset.
// INVARIANT: Day is not mutated
func (d Day) Get(slot Slot) *Entry {
	if slot == Dinner {
		return d.Dinner
	}
	return d.Lunch
}

// StatusOf returns the status of a slot, StatusUnset when absent.
// INVARIANT: Day is not mutated
func (d Day) StatusOf(slot Slot) Status {
	if e := d.Get(slot); e != nil {
		return e.Status
	}
	return StatusUnset
}

// IsEmpty reports whether both slots are absent; such a day is logically deleted.
// INVARIANT: Day is not mutated
func (d Day) IsEmpty() bool {
	return d.Lunch == nil && d.Dinner == nil
}

// BothReceived reports whether lunch and dinner are both received.
// INVARIANT: Day is not mutated
func (d Day) BothReceived() bool {
	return d.StatusOf(Lunch) == StatusReceived && d.StatusOf(Dinner) == StatusReceived
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (d Day) Clone() Day {
	var out Day
	if d.Lunch != nil {
		e := *d.Lunch
		out.Lunch = &e
	}
	if d.Dinner != nil {
		e := *d.Dinner
		out.Dinner = &e
	}
	return out
}

// Compact returns a copy of d without entries whose status is unset.
func (d Day) Compact() Day {
	out := d.Clone()
	if out.Lunch != nil && out.Lunch.Status == StatusUnset {
		out.Lunch = nil
	}
	if out.Dinner != nil && out.Dinner.Status == StatusUnset {
		out.Dinner = nil
	}
	return out
}

// WithMark returns a copy of d with the mark applied to slot.
// A status keeps any existing reason; Clear drops the slot entirely.
// PRE: mark is valid
// POST: returned Day reflects the mark; d is unchanged
func (d Day) WithMark(slot Slot, mark Mark) Day {
	out := d.Clone()
	var next *Entry
	if mark != MarkClear {
		next = &Entry{Status: mark.Status()}
		if cur := d.Get(slot); cur != nil {
			next.Reason = cur.Reason
		}
	}
	out.set(slot, next)
	return out
}

// WithReason returns a copy of d with the reason of slot replaced.
// PRE: slot has an entry
// POST: returned Day carries the reason; d is unchanged
func (d Day) WithReason(slot Slot, reason string) Day {
	out := d.Clone()
	if e := out.Get(slot); e != nil {
		e.Reason = reason
	}
	return out
}

func (d *Day) set(slot Slot, e *Entry) {
	if slot == Dinner {
		d.Dinner = e
		return
	}
	d.Lunch = e
}

// Month is a date-keyed map of days.
type Month map[string]Day

// Put stores day under key, deleting the key when the day is empty.
// POST: m never holds an empty Day
func (m Month) Put(key string, day Day) {
	if day.IsEmpty() {
		delete(m, key)
		return
	}
	m[key] = day
}

// Clone returns a deep copy of the map.
func (m Month) Clone() Month {
	out := make(Month, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}
