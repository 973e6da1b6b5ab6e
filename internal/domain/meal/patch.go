package meal

import "sort"

// Patch is a partial update of one date. Nil fields are left untouched;
// an empty status clears that slot together with its reason.
type Patch struct {
	Date         string  `json:"date"`
	LunchStatus  *Status `json:"lunch_status,omitempty"`
	LunchReason  *string `json:"lunch_reason,omitempty"`
	DinnerStatus *Status `json:"dinner_status,omitempty"`
	DinnerReason *string `json:"dinner_reason,omitempty"`
}

// StatusPatch builds a patch that applies mark to one slot.
func StatusPatch(date string, slot Slot, mark Mark) Patch {
	p := Patch{Date: date}
	p.SetStatus(slot, mark.Status())
	return p
}

// ReasonPatch builds a patch that replaces the reason of one slot.
func ReasonPatch(date string, slot Slot, reason string) Patch {
	p := Patch{Date: date}
	if slot == Dinner {
		p.DinnerReason = &reason
	} else {
		p.LunchReason = &reason
	}
	return p
}

// SetStatus records a status change for slot on the patch.
// POST: the slot's status field is non-nil
func (p *Patch) SetStatus(slot Slot, s Status) {
	if slot == Dinner {
		p.DinnerStatus = &s
		return
	}
	p.LunchStatus = &s
}

// IsEmpty reports whether the patch changes nothing.
// INVARIANT: Patch is not mutated
func (p Patch) IsEmpty() bool {
	return p.LunchStatus == nil && p.LunchReason == nil && p.DinnerStatus == nil && p.DinnerReason == nil
}

// Validate checks the date format and field values.
// PRE: none
// POST: returns nil if the patch can be applied
func (p Patch) Validate() error {
	if _, err := ParseDate(p.Date); err != nil {
		return err
	}
	if p.IsEmpty() {
		return ErrEmptyPatch
	}
	for _, s := range []*Status{p.LunchStatus, p.DinnerStatus} {
		if s == nil {
			continue
		}
		if _, err := ParseStatus(string(*s)); err != nil {
			return err
		}
	}
	for _, r := range []*string{p.LunchReason, p.DinnerReason} {
		if r != nil && len(*r) > MaxReasonLength {
			return ErrReasonTooLong
		}
	}
	return nil
}

// Apply returns day with the patch applied. Statuses are applied before reasons,
// and a reason on a slot without a status is dropped.
// PRE: p has been validated
// POST: returned Day reflects the patch; day is unchanged
func (p Patch) Apply(day Day) Day {
	out := day.Clone()
	apply := func(slot Slot, status *Status, reason *string) {
		if status != nil {
			if *status == StatusUnset {
				out = out.WithMark(slot, MarkClear)
			} else {
				out = out.WithMark(slot, Mark(*status))
			}
		}
		if reason != nil && out.Get(slot) != nil {
			out = out.WithReason(slot, *reason)
		}
	}
	apply(Lunch, p.LunchStatus, p.LunchReason)
	apply(Dinner, p.DinnerStatus, p.DinnerReason)
	return out
}

// Draft is a set of uncommitted marks per slot, keyed by date.
type Draft map[Slot]map[string]Mark

// NewDraft returns an empty draft with both slots allocated.
func NewDraft() Draft {
	return Draft{Lunch: {}, Dinner: {}}
}

// IsEmpty reports whether no mark has been recorded.
func (d Draft) IsEmpty() bool {
	return len(d[Lunch]) == 0 && len(d[Dinner]) == 0
}

// Patches folds the draft into one patch per date, sorted by date.
// POST: a date changed in both slots yields a single patch carrying both
func (d Draft) Patches() []Patch {
	byDate := make(map[string]*Patch)
	for _, slot := range Slots {
		for date, mark := range d[slot] {
			p, ok := byDate[date]
			if !ok {
				p = &Patch{Date: date}
				byDate[date] = p
			}
			p.SetStatus(slot, mark.Status())
		}
	}
	out := make([]Patch, 0, len(byDate))
	for _, p := range byDate {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// ApplyTo writes the draft's marks into m.
// POST: m never holds an empty Day
func (d Draft) ApplyTo(m Month) {
	for _, slot := range Slots {
		for date, mark := range d[slot] {
			m.Put(date, m[date].WithMark(slot, mark))
		}
	}
}
