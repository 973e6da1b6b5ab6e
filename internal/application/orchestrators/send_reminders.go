package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mydaylog/internal/adapters/email"
	settingsStore "mydaylog/internal/adapters/storage/usersettings"
	"mydaylog/internal/domain/account"
	"mydaylog/internal/domain/meal"
	"mydaylog/internal/domain/reminder"
)

// ReminderSettingsStore defines the store interface needed by SendReminders.
type ReminderSettingsStore interface {
	ListDueReminders(ctx context.Context, hhmm string) ([]settingsStore.ReminderTarget, error)
	MarkReminded(ctx context.Context, userID, date string) (bool, error)
}

// MealStoreForReminders defines the meal lookup needed by SendReminders.
type MealStoreForReminders interface {
	ListRange(ctx context.Context, accountID, from, to string) (meal.Month, error)
}

// SendRemindersDeps holds dependencies for SendReminders.
type SendRemindersDeps struct {
	SettingsStore ReminderSettingsStore
	MealStore     MealStoreForReminders
	Sender        email.Sender
	AppURL        string
	// Observe, when set, is told about every worker pass.
	Observe func(start time.Time, res SendRemindersResult, err error)
}

// SendRemindersResult counts what one pass did.
type SendRemindersResult struct {
	Due      int
	Complete int
	Already  int
	Sent     int
}

// ExecuteSendReminders emails every account whose reminder time is now's
// HH:MM and whose meals for today are not both set.
// PRE: now is in the server's local time
// POST: each account is emailed at most once per date
func ExecuteSendReminders(ctx context.Context, now time.Time, deps SendRemindersDeps) (SendRemindersResult, error) {
	var res SendRemindersResult
	targets, err := deps.SettingsStore.ListDueReminders(ctx, reminder.Clock(now))
	if err != nil {
		return res, fmt.Errorf("failed to list due reminders: %w", err)
	}
	res.Due = len(targets)

	today := meal.DateKey(now)
	var batch []email.Message
	for _, t := range targets {
		days, err := deps.MealStore.ListRange(ctx, t.UserID, today, today)
		if err != nil {
			slog.Error("reminder_event", "event", "lookup_failed", "user_id", t.UserID, "error", err)
			continue
		}
		missing := reminder.Missing(days[today])
		if len(missing) == 0 {
			res.Complete++
			continue
		}
		first, err := deps.SettingsStore.MarkReminded(ctx, t.UserID, today)
		if err != nil {
			slog.Error("reminder_event", "event", "mark_failed", "user_id", t.UserID, "error", err)
			continue
		}
		if !first {
			res.Already++
			continue
		}

		names := make([]string, len(missing))
		for i, s := range missing {
			names[i] = string(s)
		}
		req, err := email.ReminderEmail(t.Email, reminderName(t), today, deps.AppURL, names)
		if err != nil {
			return res, err
		}
		batch = append(batch, req)
	}

	if len(batch) == 0 {
		return res, nil
	}
	sent, err := deps.Sender.SendBatch(ctx, batch)
	res.Sent = len(sent)
	slog.Info("reminder_event", "event", "sent", "count", res.Sent, "due", res.Due)
	if err != nil {
		return res, fmt.Errorf("failed to send reminders: %w", err)
	}
	return res, nil
}

func reminderName(t settingsStore.ReminderTarget) string {
	if t.DisplayName != "" {
		return reminder.FriendlyName(t.DisplayName, t.Email)
	}
	named := account.Account{FullName: t.FullName}
	return reminder.FriendlyName(named.FirstName(), t.Email)
}

// RunReminderWorker checks for due reminders every interval until ctx is done.
// Checking more than once a minute is harmless: sends are deduplicated per date.
func RunReminderWorker(ctx context.Context, interval time.Duration, deps SendRemindersDeps) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	slog.Info("reminder_event", "event", "worker_started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("reminder_event", "event", "worker_stopped")
			return
		case now := <-ticker.C:
			res, err := ExecuteSendReminders(ctx, now, deps)
			if err != nil {
				slog.Error("reminder_event", "event", "pass_failed", "error", err)
			}
			if deps.Observe != nil {
				deps.Observe(now, res, err)
			}
		}
	}
}
