package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mydaylog/internal/config"
	"mydaylog/internal/domain/usersettings"
)

var (
	flagTheme       string
	flagWeekStart   string
	flagDisplayName string
	flagReminder    string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change your settings",
	Long: `Without flags, prints the current settings. With flags, saves them.

Examples:
  mydaylog settings --theme dark
  mydaylog settings --reminder 12:30
  mydaylog settings --reminder off`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		var p usersettings.Patch
		if cmd.Flags().Changed("theme") {
			t := usersettings.Theme(strings.ToLower(flagTheme))
			p.Theme = &t
		}
		if cmd.Flags().Changed("week-start") {
			w := usersettings.WeekStart(flagWeekStart)
			p.WeekStart = &w
		}
		if cmd.Flags().Changed("display-name") {
			p.DisplayName = &flagDisplayName
		}
		if cmd.Flags().Changed("reminder") {
			r := usersettings.ReminderPatch(true, flagReminder)
			switch strings.ToLower(flagReminder) {
			case "off", "none", "":
				r = usersettings.ReminderPatch(false, "")
			case "on":
				r = usersettings.ReminderPatch(true, "")
			}
			p.MealReminderEnabled, p.MealReminderTime = r.MealReminderEnabled, r.MealReminderTime
		}

		s := e.app.Settings.Peek()
		if !p.IsEmpty() {
			if s, err = e.app.Settings.Update(cmd.Context(), p); err != nil {
				return fmt.Errorf("failed to save settings: %w", describe(err))
			}
			fmt.Println("Settings saved")
		}
		reminder := "off"
		if t := s.ReminderTime(); t != "" {
			reminder = t
		}
		fmt.Printf("Display name: %s\nTheme:        %s\nWeek starts:  %s\nReminder:     %s\n",
			s.DisplayName, s.Theme, s.WeekStart, reminder)
		return nil
	},
}

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Toggle between the light and dark theme",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := signedIn(cmd)
		if err != nil {
			return err
		}
		s, err := e.app.Settings.ToggleTheme(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to update theme: %w", describe(err))
		}
		fmt.Println("Theme:", s.Theme)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change where the client connects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := homeDir
		if dir == "" {
			d, err := config.Dir()
			if err != nil {
				return err
			}
			dir = d
		}
		cfg, err := config.LoadClient(dir)
		if err != nil {
			return err
		}
		if apiURL != "" {
			cfg.APIURL = strings.TrimRight(apiURL, "/")
			if err := cfg.Save(dir); err != nil {
				return err
			}
		}
		fmt.Printf("Directory: %s\nAPI URL:   %s\nTimeout:   %s\n", dir, cfg.APIURL, cfg.Timeout)
		return nil
	},
}

func addSettingsCommands(root *cobra.Command) {
	settingsCmd.Flags().StringVar(&flagTheme, "theme", "", "light or dark")
	settingsCmd.Flags().StringVar(&flagWeekStart, "week-start", "", "Mon or Sun")
	settingsCmd.Flags().StringVar(&flagDisplayName, "display-name", "", "Name used in greetings")
	settingsCmd.Flags().StringVar(&flagReminder, "reminder", "", "HH:MM, on or off")

	root.AddCommand(settingsCmd, themeCmd, configCmd)
}
