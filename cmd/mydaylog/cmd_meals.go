package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mydaylog/cmd/mydaylog/ui"
	"mydaylog/internal/client/bulkedit"
	"mydaylog/internal/domain/meal"
)

var (
	flagSlot   string
	flagMark   string
	flagServer bool
)

var monthCmd = &cobra.Command{
	Use:     "month [YYYY-MM]",
	Aliases: []string{"calendar"},
	Short:   "Show a month calendar (default: the last viewed month)",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			t, err := parseMonth(args[0])
			if err != nil {
				return err
			}
			if err := e.app.ViewMonth(cmd.Context(), t.Year(), t.Month()); err != nil {
				warnStale(err)
			}
		}
		fmt.Println(ui.Calendar(e.styles, e.app.Grid(), ""))
		if msg, ok := e.app.Banner(); ok {
			fmt.Println(e.styles.Banner.Render(msg))
		}
		return nil
	},
}

var dayCmd = &cobra.Command{
	Use:   "day [DATE]",
	Short: "Show one day (default: today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		date := "today"
		if len(args) == 1 {
			date = args[0]
		}
		key, err := parseDate(date, e.app.Now())
		if err != nil {
			return err
		}
		if err := viewDate(cmd, e, key); err != nil {
			return err
		}
		fmt.Println(ui.Day(e.styles, key, e.app.Meals.Get(key)))
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set DATE lunch|dinner received|skipped|clear",
	Short: "Mark one meal",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		key, err := parseDate(args[0], e.app.Now())
		if err != nil {
			return err
		}
		slot, err := meal.ParseSlot(args[1])
		if err != nil {
			return err
		}
		mark, err := meal.ParseMark(args[2])
		if err != nil {
			return err
		}
		if err := e.app.SetStatus(cmd.Context(), key, slot, mark); err != nil {
			return describe(err)
		}
		e.app.Meals.Wait()
		fmt.Println(ui.Day(e.styles, key, e.app.Meals.Get(key)))
		return nil
	},
}

var reasonCmd = &cobra.Command{
	Use:   "reason DATE lunch|dinner TEXT...",
	Short: "Note why a meal has its status (empty text removes it)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		key, err := parseDate(args[0], e.app.Now())
		if err != nil {
			return err
		}
		slot, err := meal.ParseSlot(args[1])
		if err != nil {
			return err
		}
		if err := viewDate(cmd, e, key); err != nil {
			return err
		}
		if err := e.app.SetReason(cmd.Context(), key, slot, strings.Join(args[2:], " ")); err != nil {
			return describe(err)
		}
		e.app.Meals.Wait()
		fmt.Println(ui.Day(e.styles, key, e.app.Meals.Get(key)))
		return nil
	},
}

var bulkCmd = &cobra.Command{
	Use:   "bulk DATE|FROM..TO...",
	Short: "Mark one meal on many dates in a single request",
	Long: `Selects every listed date and range, then applies one mark to one meal.

Example:
  mydaylog bulk --slot lunch --mark received 2024-03-01..2024-03-08 2024-03-11`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		slot, err := meal.ParseSlot(flagSlot)
		if err != nil {
			return err
		}
		mark, err := meal.ParseMark(flagMark)
		if err != nil {
			return err
		}

		now := e.app.Now()
		ed := e.app.Bulk
		ed.Start()
		if err := selectDates(ed, args, now); err != nil {
			ed.Cancel()
			return err
		}
		if err := ed.ChooseMeal(slot); err != nil {
			ed.Cancel()
			return err
		}
		if err := ed.Apply(mark); err != nil {
			ed.Cancel()
			return err
		}
		n := len(ed.Selection())
		ed.Done(cmd.Context())
		e.app.Meals.Wait()
		fmt.Printf("%s %s on %d dates\n", ui.SlotLabel(slot), mark, n)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats [YYYY-MM]",
	Short: "Show week and month tallies and the streak",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		now := e.app.Now()
		month := now
		if len(args) == 1 {
			if month, err = parseMonth(args[0]); err != nil {
				return err
			}
		}

		var s meal.Summary
		if flagServer {
			s, err = e.gw.Stats(cmd.Context(), month.Format("2006-01"), meal.DateKey(now))
			if err != nil {
				return describe(err)
			}
		} else {
			// the week and streak can reach into the previous month
			if err := e.app.Meals.HydrateRange(cmd.Context(), meal.DateKey(now.AddDate(0, 0, -62)), meal.DateKey(now)); err != nil {
				warnStale(err)
			} else if err := e.app.ViewMonth(cmd.Context(), month.Year(), month.Month()); err != nil {
				warnStale(err)
			}
			weekStart := e.app.Settings.Peek().WeekStart.Weekday()
			s = meal.Summarize(e.app.Meals.Snapshot(), now, month.Year(), month.Month(), weekStart)
		}
		fmt.Println(ui.Summary(e.styles, s))
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report [YYYY-MM]",
	Short: "Print the monthly report as markdown",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		month := e.app.Now()
		if len(args) == 1 {
			if month, err = parseMonth(args[0]); err != nil {
				return err
			}
		}
		doc, err := e.gw.Report(cmd.Context(), month.Format("2006-01"))
		if err != nil {
			return describe(err)
		}
		fmt.Print(doc)
		return nil
	},
}

// signedIn wires the client and requires a session.
func signedIn(cmd *cobra.Command) (*env, error) {
	e, err := setup(cmd.Context())
	if err != nil {
		return nil, err
	}
	if err := requireSession(e); err != nil {
		return nil, err
	}
	return e, nil
}

// viewDate hydrates the month holding key so the day shows server truth.
// When the server is unavailable the saved copy is shown instead.
func viewDate(cmd *cobra.Command, e *env, key string) error {
	d, err := meal.ParseDate(key)
	if err != nil {
		return err
	}
	if err := e.app.ViewMonth(cmd.Context(), d.Year(), d.Month()); err != nil {
		warnStale(err)
	}
	return nil
}

func warnStale(err error) {
	fmt.Fprintf(os.Stderr, "%v (showing saved data)\n", describe(err))
}

// selectDates adds every DATE and FROM..TO argument to the selection. A date
// named twice stays selected; range ends past today are cut at today.
func selectDates(ed *bulkedit.Editor, args []string, now time.Time) error {
	todayKey := meal.DateKey(now)
	for _, arg := range args {
		from, to, isRange := strings.Cut(arg, "..")
		first, err := parseDate(from, now)
		if err != nil {
			return err
		}
		if first > todayKey {
			return fmt.Errorf("%s: %w", first, bulkedit.ErrFutureDate)
		}
		if !isRange {
			if err := ed.Add(now, first); err != nil {
				return fmt.Errorf("%s: %w", first, err)
			}
			continue
		}
		last, err := parseDate(to, now)
		if err != nil {
			return err
		}
		if err := ed.AddRange(first, last, now); err != nil {
			return fmt.Errorf("%s: %w", arg, err)
		}
	}
	return nil
}

// parseDate accepts YYYY-MM-DD, "today" and "yesterday".
func parseDate(s string, now time.Time) (string, error) {
	switch strings.ToLower(s) {
	case "today":
		return meal.DateKey(now), nil
	case "yesterday":
		return meal.DateKey(now.AddDate(0, 0, -1)), nil
	}
	if _, err := meal.ParseDate(s); err != nil {
		return "", err
	}
	return s, nil
}

func parseMonth(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("month must be YYYY-MM: %q", s)
	}
	return t, nil
}

func addMealCommands(root *cobra.Command) {
	bulkCmd.Flags().StringVar(&flagSlot, "slot", "", "lunch or dinner")
	bulkCmd.Flags().StringVar(&flagMark, "mark", "", "received, skipped or clear")
	bulkCmd.MarkFlagRequired("slot")
	bulkCmd.MarkFlagRequired("mark")

	statsCmd.Flags().BoolVar(&flagServer, "server", false, "Ask the server to compute the summary")

	root.AddCommand(monthCmd, dayCmd, setCmd, reasonCmd, bulkCmd, statsCmd, reportCmd)
}
