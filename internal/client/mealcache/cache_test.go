package mealcache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mydaylog/internal/client/gateway"
	"mydaylog/internal/domain/meal"
)

// mockGateway records calls and returns scripted results.
type mockGateway struct {
	mu       sync.Mutex
	fetched  meal.Month
	fetchErr error
	patchErr error
	one      []meal.Patch
	bulk     [][]meal.Patch
}

func (m *mockGateway) FetchRange(ctx context.Context, from, to string) (meal.Month, error) {
	return m.fetched, m.fetchErr
}

func (m *mockGateway) PatchOne(ctx context.Context, p meal.Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.one = append(m.one, p)
	return m.patchErr
}

func (m *mockGateway) PatchBulk(ctx context.Context, items []meal.Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bulk = append(m.bulk, items)
	return m.patchErr
}

// mockMirror counts saves and keeps the last map.
type mockMirror struct {
	saves int
	last  meal.Month
}

func (m *mockMirror) SaveMeals(days meal.Month) error {
	m.saves++
	m.last = days.Clone()
	return nil
}

type notes struct {
	mu   sync.Mutex
	msgs []string
}

func (n *notes) add(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *notes) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

func entry(s meal.Status) *meal.Entry { return &meal.Entry{Status: s} }

// TestSetStatus_ClearRoundTrip tests that set then clear restores the prior state.
func TestSetStatus_ClearRoundTrip(t *testing.T) {
	ctx := context.Background()
	gw := &mockGateway{}
	c := New(gw, meal.Month{"2024-03-02": {Dinner: entry(meal.StatusSkipped)}}, nil, nil)

	for _, date := range []string{"2024-03-01", "2024-03-02"} {
		before := c.Snapshot()
		if err := c.SetStatus(ctx, date, meal.Lunch, meal.MarkReceived); err != nil {
			t.Fatalf("SetStatus: %v", err)
		}
		if got := c.Get(date).StatusOf(meal.Lunch); got != meal.StatusReceived {
			t.Fatalf("lunch = %q, want received", got)
		}
		if err := c.SetStatus(ctx, date, meal.Lunch, meal.MarkClear); err != nil {
			t.Fatalf("clear: %v", err)
		}
		if diff := cmp.Diff(before, c.Snapshot()); diff != "" {
			t.Errorf("%s after round trip (-before +after):\n%s", date, diff)
		}
	}
	if _, ok := c.Snapshot()["2024-03-01"]; ok {
		t.Error("cleared day still present")
	}
	c.Wait()
	if len(gw.one) != 4 {
		t.Errorf("patches sent = %d, want 4", len(gw.one))
	}
}

// TestSetStatus_FailureKeepsOptimisticState tests that sync failures notify without rollback.
func TestSetStatus_FailureKeepsOptimisticState(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message", &gateway.Error{Status: 500, Message: "database is locked"}, "database is locked"},
		{"network error", errors.New("dial tcp: connection refused"), MsgSyncMeal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &notes{}
			c := New(&mockGateway{patchErr: tt.err}, nil, nil, n.add)
			if err := c.SetStatus(context.Background(), "2024-03-01", meal.Dinner, meal.MarkSkipped); err != nil {
				t.Fatalf("SetStatus: %v", err)
			}
			c.Wait()
			if got := c.Get("2024-03-01").StatusOf(meal.Dinner); got != meal.StatusSkipped {
				t.Errorf("dinner = %q, optimistic state was rolled back", got)
			}
			want := []string{MsgStatusUpdated, tt.want}
			if diff := cmp.Diff(want, n.all()); diff != "" {
				t.Errorf("notifications (-want +got):\n%s", diff)
			}
		})
	}
}

// TestSetStatus_Invalid tests that bad input changes nothing.
func TestSetStatus_Invalid(t *testing.T) {
	gw := &mockGateway{}
	c := New(gw, nil, nil, nil)
	ctx := context.Background()
	if err := c.SetStatus(ctx, "2024-3-1", meal.Lunch, meal.MarkReceived); !errors.Is(err, meal.ErrInvalidDate) {
		t.Errorf("bad date err = %v", err)
	}
	if err := c.SetStatus(ctx, "2024-03-01", "brunch", meal.MarkReceived); !errors.Is(err, meal.ErrInvalidSlot) {
		t.Errorf("bad slot err = %v", err)
	}
	if err := c.SetStatus(ctx, "2024-03-01", meal.Lunch, "eaten"); !errors.Is(err, meal.ErrInvalidMark) {
		t.Errorf("bad mark err = %v", err)
	}
	c.Wait()
	if len(c.Snapshot()) != 0 || len(gw.one) != 0 {
		t.Error("invalid input reached the cache or network")
	}
}

// TestSetReason tests reason updates and the no-status guard.
func TestSetReason(t *testing.T) {
	gw := &mockGateway{}
	mirror := &mockMirror{}
	c := New(gw, meal.Month{"2024-03-01": {Lunch: entry(meal.StatusSkipped)}}, mirror, nil)
	ctx := context.Background()

	if err := c.SetReason(ctx, "2024-03-01", meal.Dinner, "late"); !errors.Is(err, ErrNoStatus) {
		t.Errorf("reason on unset slot err = %v, want ErrNoStatus", err)
	}
	if err := c.SetReason(ctx, "2024-03-01", meal.Lunch, "meeting ran over"); err != nil {
		t.Fatalf("SetReason: %v", err)
	}
	c.Wait()

	if got := c.Get("2024-03-01").Lunch; got == nil || got.Reason != "meeting ran over" || got.Status != meal.StatusSkipped {
		t.Errorf("lunch = %+v", got)
	}
	if len(gw.one) != 1 || gw.one[0].LunchReason == nil || gw.one[0].LunchStatus != nil {
		t.Errorf("reason patch = %+v, want reason only", gw.one)
	}
	if mirror.last["2024-03-01"].Lunch.Reason != "meeting ran over" {
		t.Error("mirror not updated")
	}
}

// TestHydrateRange tests the merge rules of a range fetch.
func TestHydrateRange(t *testing.T) {
	gw := &mockGateway{fetched: meal.Month{
		"2024-03-01": {Dinner: entry(meal.StatusReceived)},
		"2024-03-02": {Lunch: entry(meal.StatusSkipped), Dinner: &meal.Entry{Reason: "stale"}},
		"2024-03-03": {Lunch: &meal.Entry{}},              // no status anywhere
		"2024-04-01": {Lunch: entry(meal.StatusReceived)}, // outside the window
	}}
	c := New(gw, meal.Month{
		"2024-02-29": {Lunch: entry(meal.StatusReceived)},
		"2024-03-01": {Lunch: entry(meal.StatusReceived)},
		"2024-03-03": {Dinner: entry(meal.StatusReceived)},
		"2024-03-05": {Lunch: entry(meal.StatusSkipped)},
	}, nil, nil)

	if err := c.HydrateRange(context.Background(), "2024-03-01", "2024-03-31"); err != nil {
		t.Fatalf("HydrateRange: %v", err)
	}
	want := meal.Month{
		"2024-02-29": {Lunch: entry(meal.StatusReceived)},
		"2024-03-01": {Dinner: entry(meal.StatusReceived)},
		"2024-03-02": {Lunch: entry(meal.StatusSkipped)},
		"2024-03-05": {Lunch: entry(meal.StatusSkipped)},
	}
	if diff := cmp.Diff(want, c.Snapshot()); diff != "" {
		t.Errorf("after hydrate (-want +got):\n%s", diff)
	}

	gw.fetchErr = errors.New("offline")
	if err := c.HydrateRange(context.Background(), "2024-03-01", "2024-03-31"); err == nil {
		t.Error("expected fetch error")
	}
	if diff := cmp.Diff(want, c.Snapshot()); diff != "" {
		t.Errorf("failed hydrate changed the cache:\n%s", diff)
	}
}

// TestCommit_OneBulkCall tests that a draft is merged and sent in one request.
func TestCommit_OneBulkCall(t *testing.T) {
	gw := &mockGateway{}
	n := &notes{}
	c := New(gw, nil, nil, n.add)

	d := meal.NewDraft()
	d[meal.Dinner]["2024-03-01"] = meal.MarkSkipped
	d[meal.Dinner]["2024-03-02"] = meal.MarkSkipped
	d[meal.Lunch]["2024-03-02"] = meal.MarkReceived
	c.Commit(context.Background(), d)
	c.Wait()

	for _, date := range []string{"2024-03-01", "2024-03-02"} {
		if got := c.Get(date).StatusOf(meal.Dinner); got != meal.StatusSkipped {
			t.Errorf("%s dinner = %q", date, got)
		}
	}
	if len(gw.bulk) != 1 {
		t.Fatalf("bulk calls = %d, want 1", len(gw.bulk))
	}
	if items := gw.bulk[0]; len(items) != 2 || items[1].LunchStatus == nil || items[1].DinnerStatus == nil {
		t.Errorf("bulk items = %+v, want one item per date", items)
	}
	if diff := cmp.Diff([]string{MsgBulkUpdated}, n.all()); diff != "" {
		t.Errorf("notifications (-want +got):\n%s", diff)
	}

	c.Commit(context.Background(), meal.NewDraft())
	c.Wait()
	if len(gw.bulk) != 1 {
		t.Error("empty draft sent a request")
	}
}

// TestReset tests that Reset empties the cache and its mirror.
func TestReset(t *testing.T) {
	mirror := &mockMirror{}
	c := New(&mockGateway{}, meal.Month{"2024-03-01": meal.Day{}.WithMark(meal.Lunch, meal.MarkReceived)}, mirror, nil)
	c.Reset()
	if got := c.Snapshot(); len(got) != 0 {
		t.Errorf("Snapshot() = %v, want empty", got)
	}
	if len(mirror.last) != 0 {
		t.Errorf("mirror = %v, want empty", mirror.last)
	}
}
