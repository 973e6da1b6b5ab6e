// Package mealcache holds the client's view of meal state: optimistic writes
// applied locally first, synced in the background, never rolled back.
package mealcache

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"mydaylog/internal/client/gateway"
	"mydaylog/internal/domain/meal"
)

// Notifications
const (
	MsgStatusUpdated = "Meal status updated"
	MsgBulkUpdated   = "Meal statuses updated"
	MsgSyncMeal      = "Failed to sync meal"
	MsgSyncReason    = "Failed to sync reason"
	MsgSyncBulk      = "Failed to sync bulk meals"
)

// ErrNoStatus is returned when a reason is set on a slot without a status.
var ErrNoStatus = errors.New("set a status before adding a reason")

// Gateway is the remote side of the cache.
type Gateway interface {
	FetchRange(ctx context.Context, from, to string) (meal.Month, error)
	PatchOne(ctx context.Context, p meal.Patch) error
	PatchBulk(ctx context.Context, items []meal.Patch) error
}

// Mirror persists the cache between runs.
type Mirror interface {
	SaveMeals(m meal.Month) error
}

// Cache maps date keys to days.
// INVARIANT: days never holds an empty Day
type Cache struct {
	gw     Gateway
	mirror Mirror
	notify func(string)

	mu   sync.Mutex
	days meal.Month
	wg   sync.WaitGroup
}

// New returns a cache seeded with initial (usually the local mirror).
// mirror and notify may be nil.
func New(gw Gateway, initial meal.Month, mirror Mirror, notify func(string)) *Cache {
	days := make(meal.Month, len(initial))
	for k, d := range initial {
		days.Put(k, d.Clone())
	}
	if notify == nil {
		notify = func(string) {}
	}
	return &Cache{gw: gw, mirror: mirror, notify: notify, days: days}
}

// Get returns a copy of one day; the zero Day when nothing is recorded.
func (c *Cache) Get(date string) meal.Day {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.days[date].Clone()
}

// Snapshot returns a deep copy of the whole map.
func (c *Cache) Snapshot() meal.Month {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.days.Clone()
}

// Wait blocks until every background sync started so far has finished.
func (c *Cache) Wait() {
	c.wg.Wait()
}

// SetStatus applies mark to one slot, then syncs it. Clear removes the slot;
// a day left with no slots is deleted.
// PRE: date is a valid key no later than today (checked by the caller)
// POST: the cache reflects the mark before the request is sent
func (c *Cache) SetStatus(ctx context.Context, date string, slot meal.Slot, mark meal.Mark) error {
	if _, err := meal.ParseDate(date); err != nil {
		return err
	}
	if _, err := meal.ParseSlot(string(slot)); err != nil {
		return err
	}
	if _, err := meal.ParseMark(string(mark)); err != nil {
		return err
	}

	c.mu.Lock()
	c.days.Put(date, c.days[date].WithMark(slot, mark))
	c.persistLocked()
	c.mu.Unlock()
	c.notify(MsgStatusUpdated)

	c.sync(ctx, MsgSyncMeal, func(ctx context.Context) error {
		return c.gw.PatchOne(ctx, meal.StatusPatch(date, slot, mark))
	})
	return nil
}

// SetReason replaces the reason of a slot that has a status, then syncs it.
// POST: ErrNoStatus and no change when the slot is unset
func (c *Cache) SetReason(ctx context.Context, date string, slot meal.Slot, text string) error {
	if _, err := meal.ParseDate(date); err != nil {
		return err
	}
	if _, err := meal.ParseSlot(string(slot)); err != nil {
		return err
	}
	if len(text) > meal.MaxReasonLength {
		return meal.ErrReasonTooLong
	}

	c.mu.Lock()
	day := c.days[date]
	if day.Get(slot) == nil {
		c.mu.Unlock()
		return ErrNoStatus
	}
	c.days.Put(date, day.WithReason(slot, text))
	c.persistLocked()
	c.mu.Unlock()

	c.sync(ctx, MsgSyncReason, func(ctx context.Context) error {
		return c.gw.PatchOne(ctx, meal.ReasonPatch(date, slot, text))
	})
	return nil
}

// HydrateRange merges server truth for from..to into the cache. For each
// returned date the server's slots replace the local ones, and a slot without
// a status counts as absent; dates the server did not return, and dates
// outside the window, are left alone.
// POST: on error the cache is unchanged
func (c *Cache) HydrateRange(ctx context.Context, from, to string) error {
	fetched, err := c.gw.FetchRange(ctx, from, to)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for date, day := range fetched {
		if date < from || date > to {
			continue
		}
		c.days.Put(date, day.Compact())
	}
	c.persistLocked()
	return nil
}

// Commit merges a bulk draft and sends every changed date in one request.
// POST: an empty draft changes nothing and sends nothing
func (c *Cache) Commit(ctx context.Context, draft meal.Draft) {
	if draft.IsEmpty() {
		return
	}
	items := draft.Patches()

	c.mu.Lock()
	draft.ApplyTo(c.days)
	c.persistLocked()
	c.mu.Unlock()
	c.notify(MsgBulkUpdated)

	c.sync(ctx, MsgSyncBulk, func(ctx context.Context) error {
		return c.gw.PatchBulk(ctx, items)
	})
}

// Reset forgets every day, e.g. after signing out.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.days = meal.Month{}
	c.persistLocked()
}

// sync runs a request in the background. In-flight requests outlive the
// caller's context and are never rolled back: the last write to arrive wins.
func (c *Cache) sync(ctx context.Context, fallback string, send func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := send(ctx); err != nil {
			slog.Warn("meal_sync_failed", "error", err)
			c.notify(gateway.MessageOr(err, fallback))
		}
	}()
}

func (c *Cache) persistLocked() {
	if c.mirror == nil {
		return
	}
	if err := c.mirror.SaveMeals(c.days); err != nil {
		slog.Warn("meal_mirror_failed", "error", err)
	}
}
