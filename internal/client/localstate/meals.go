package localstate

import (
	"gopkg.in/yaml.v3"

	"mydaylog/internal/domain/meal"
)

// Entry is one mirrored meal slot.
type Entry struct {
	Status string `yaml:"status"`
	Reason string `yaml:"reason,omitempty"`
}

// Day is one mirrored date.
type Day struct {
	Lunch  *Entry `yaml:"lunch,omitempty"`
	Dinner *Entry `yaml:"dinner,omitempty"`
}

// UnmarshalYAML accepts the current shape and two legacy ones written by
// older clients, which tracked lunch only:
//
//	2024-03-01: received
//	2024-03-02: {status: skipped, reason: late}
//
// Both become the lunch entry.
func (d *Day) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*d = Day{}
		if n.Value != "" {
			d.Lunch = &Entry{Status: n.Value}
		}
		return nil
	}

	var probe struct {
		Status *string `yaml:"status"`
		Reason string  `yaml:"reason"`
		Lunch  *Entry  `yaml:"lunch"`
		Dinner *Entry  `yaml:"dinner"`
	}
	if err := n.Decode(&probe); err != nil {
		return err
	}
	if probe.Status != nil && probe.Lunch == nil && probe.Dinner == nil {
		*d = Day{}
		if *probe.Status != "" {
			d.Lunch = &Entry{Status: *probe.Status, Reason: probe.Reason}
		}
		return nil
	}
	*d = Day{Lunch: probe.Lunch, Dinner: probe.Dinner}
	return nil
}

// Day converts the mirror to a domain day, dropping entries with unknown statuses.
func (d Day) Day() meal.Day {
	conv := func(e *Entry) *meal.Entry {
		if e == nil {
			return nil
		}
		st, err := meal.ParseStatus(e.Status)
		if err != nil || st == meal.StatusUnset {
			return nil
		}
		return &meal.Entry{Status: st, Reason: e.Reason}
	}
	return meal.Day{Lunch: conv(d.Lunch), Dinner: conv(d.Dinner)}
}

// FromDay converts a domain day to its mirrored form.
func FromDay(d meal.Day) Day {
	conv := func(e *meal.Entry) *Entry {
		if e == nil {
			return nil
		}
		return &Entry{Status: string(e.Status), Reason: e.Reason}
	}
	return Day{Lunch: conv(d.Lunch), Dinner: conv(d.Dinner)}
}
