package orchestrators

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"mydaylog/internal/adapters/email"
	settingsStore "mydaylog/internal/adapters/storage/usersettings"
	"mydaylog/internal/domain/meal"
)

func reminderDeps() (SendRemindersDeps, *mockSettingsStore, *mockMealStore, *email.NoopSender) {
	ss := newMockSettingsStore()
	ms := newMockMealStore()
	sender := email.NewNoopSender()
	return SendRemindersDeps{SettingsStore: ss, MealStore: ms, Sender: sender, AppURL: "https://app.test"}, ss, ms, sender
}

// TestExecuteSendReminders tests incomplete days are emailed once per date.
func TestExecuteSendReminders(t *testing.T) {
	deps, ss, ms, sender := reminderDeps()
	ss.targets = []settingsStore.ReminderTarget{
		{UserID: "u1", Email: "ana@example.com", FullName: "Ana Lopez"},
		{UserID: "u2", Email: "bo@example.com", DisplayName: "Bo"},
		{UserID: "u3", Email: "cy@example.com"},
	}
	ms.days["u2"] = meal.Month{"2024-03-10": {
		Lunch:  &meal.Entry{Status: meal.StatusReceived},
		Dinner: &meal.Entry{Status: meal.StatusSkipped},
	}}
	ms.days["u3"] = meal.Month{"2024-03-10": {Lunch: &meal.Entry{Status: meal.StatusReceived}}}

	res, err := ExecuteSendReminders(context.Background(), testNow, deps)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if res.Due != 3 || res.Complete != 1 || res.Sent != 2 {
		t.Errorf("result = %+v", res)
	}
	sent := sender.Sent()
	if len(sent) != 2 {
		t.Fatalf("sent = %d, want 2", len(sent))
	}
	if !strings.Contains(sent[0].Text, "Hi Ana,") || !strings.Contains(sent[0].Text, "- lunch") {
		t.Errorf("first email = %q", sent[0].Text)
	}
	if !strings.Contains(sent[1].Text, "Hi cy,") || strings.Contains(sent[1].Text, "- lunch") {
		t.Errorf("second email = %q", sent[1].Text)
	}

	res, _ = ExecuteSendReminders(context.Background(), testNow.Add(30*time.Second), deps)
	if res.Already != 2 || len(sender.Sent()) != 2 {
		t.Errorf("second pass = %+v, sent %d; want no new emails", res, len(sender.Sent()))
	}
}

// TestRunReminderWorker_StopsOnCancel tests the worker exits without leaking.
func TestRunReminderWorker_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)
	deps, _, _, _ := reminderDeps()
	passes := make(chan SendRemindersResult, 1)
	deps.Observe = func(_ time.Time, res SendRemindersResult, _ error) {
		select {
		case passes <- res:
		default:
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunReminderWorker(ctx, 5*time.Millisecond, deps)
		close(done)
	}()
	select {
	case <-passes:
	case <-time.After(time.Second):
		t.Fatal("worker never ran a pass")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
