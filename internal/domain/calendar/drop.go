package calendar

import (
	"encoding/json"
	"time"
)

// DropPayload identifies an item dragged from one day to another.
type DropPayload struct {
	FromKey string `json:"fromKey"`
	TaskID  string `json:"taskId"`
}

// Drop decodes a drag payload released on target and hands it to relocate.
// Placeholders, malformed JSON and payloads missing either field are ignored.
// POST: relocate is called at most once; returns whether it was called
func Drop(target Cell, raw []byte, relocate func(target time.Time, p DropPayload)) bool {
	if target.Placeholder || relocate == nil {
		return false
	}
	var p DropPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return false
	}
	if p.FromKey == "" || p.TaskID == "" {
		return false
	}
	relocate(target.Date, p)
	return true
}
