package app

import (
	"sync"
	"time"
)

// ToastTTL is how long a notification stays visible.
const ToastTTL = 2 * time.Second

// Toasts keeps the most recent notification. A new message replaces the old one.
type Toasts struct {
	mu  sync.Mutex
	msg string
	at  time.Time
	now func() time.Time
}

// NewToasts returns an empty notifier reading time from now.
func NewToasts(now func() time.Time) *Toasts {
	if now == nil {
		now = time.Now
	}
	return &Toasts{now: now}
}

// Push shows msg, restarting the expiry.
func (t *Toasts) Push(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.msg = msg
	t.at = t.now()
}

// Current returns the visible message.
// POST: ok is false once ToastTTL has elapsed since the last Push
func (t *Toasts) Current() (msg string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.msg == "" || t.now().Sub(t.at) >= ToastTTL {
		return "", false
	}
	return t.msg, true
}
