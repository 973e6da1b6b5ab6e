package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mydaylog/internal/client/gateway"
	"mydaylog/internal/client/session"
)

var (
	flagEmail    string
	flagPIN      string
	flagConfirm  string
	flagFullName string
	flagCurrent  string
	flagYes      bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and PIN",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		email, err := ask(flagEmail, "Email")
		if err != nil {
			return err
		}
		pin, err := ask(flagPIN, "PIN")
		if err != nil {
			return err
		}
		if err := e.app.Login(cmd.Context(), email, pin); err != nil {
			return describe(err)
		}
		fmt.Println(e.app.Greeting())
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		name, err := ask(flagFullName, "Full name")
		if err != nil {
			return err
		}
		email, err := ask(flagEmail, "Email")
		if err != nil {
			return err
		}
		pin, err := ask(flagPIN, "PIN")
		if err != nil {
			return err
		}
		confirm, err := ask(flagConfirm, "Confirm PIN")
		if err != nil {
			return err
		}
		if err := e.app.Signup(cmd.Context(), name, email, pin, confirm); err != nil {
			return describe(err)
		}
		fmt.Println(e.app.Greeting())
		return nil
	},
}

var guestCmd = &cobra.Command{
	Use:   "guest",
	Short: "Start a guest session without an account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		if err := e.app.Guest(cmd.Context()); err != nil {
			return describe(err)
		}
		fmt.Println(e.app.Greeting())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget local data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		if err := e.app.Logout(cmd.Context()); err != nil {
			// local data is gone either way
			fmt.Println("Signed out locally:", gateway.MessageOr(err, gateway.DefaultMessage))
			return nil
		}
		fmt.Println("Signed out")
		return nil
	},
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		if err := requireSession(e); err != nil {
			return err
		}
		u, _ := e.app.Session.User()
		fmt.Println(e.app.Greeting())
		if u.Guest {
			fmt.Println("Guest session")
			return nil
		}
		fmt.Printf("Name:    %s\nEmail:   %s\nSince:   %s\n", u.FullName, u.Email, u.CreatedAt.Format("2 Jan 2006"))
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Change your full name or email",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		u, ok := e.app.Session.User()
		if !ok {
			return requireSession(e)
		}
		name, email := u.FullName, u.Email
		if flagFullName != "" {
			name = flagFullName
		}
		if flagEmail != "" {
			email = flagEmail
		}
		if _, err := e.app.Session.UpdateProfile(cmd.Context(), name, email); err != nil {
			return describe(err)
		}
		fmt.Println("Account updated")
		return nil
	},
}

var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Change your PIN",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		if err := requireSession(e); err != nil {
			return err
		}
		current, err := ask(flagCurrent, "Current PIN")
		if err != nil {
			return err
		}
		next, err := ask(flagPIN, "New PIN")
		if err != nil {
			return err
		}
		confirm, err := ask(flagConfirm, "Confirm PIN")
		if err != nil {
			return err
		}
		if err := e.app.Session.ChangePIN(cmd.Context(), current, next, confirm); err != nil {
			return describe(err)
		}
		fmt.Println("PIN updated")
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete-account",
	Short: "Permanently delete your account and all meals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !flagYes {
			return errors.New("refusing to delete without --yes")
		}
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		if err := e.app.DeleteAccount(cmd.Context()); err != nil {
			return describe(err)
		}
		fmt.Println("Account deleted")
		return nil
	},
}

// describe turns client errors into the message shown to the user.
func describe(err error) error {
	var verr *session.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("%s: %s", verr.Field, verr.Message)
	}
	var apiErr *gateway.Error
	if errors.As(err, &apiErr) {
		return errors.New(gateway.MessageOr(err, gateway.DefaultMessage))
	}
	return err
}

func addAuthCommands(root *cobra.Command) {
	loginCmd.Flags().StringVar(&flagEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&flagPIN, "pin", "", "4-digit PIN (prompted when omitted)")

	signupCmd.Flags().StringVar(&flagFullName, "name", "", "Full name (first and last)")
	signupCmd.Flags().StringVar(&flagEmail, "email", "", "Account email")
	signupCmd.Flags().StringVar(&flagPIN, "pin", "", "4-digit PIN")
	signupCmd.Flags().StringVar(&flagConfirm, "confirm-pin", "", "Repeat the PIN")

	profileCmd.Flags().StringVar(&flagFullName, "name", "", "New full name")
	profileCmd.Flags().StringVar(&flagEmail, "email", "", "New email")

	pinCmd.Flags().StringVar(&flagCurrent, "current", "", "Current PIN")
	pinCmd.Flags().StringVar(&flagPIN, "new", "", "New PIN")
	pinCmd.Flags().StringVar(&flagConfirm, "confirm", "", "Repeat the new PIN")

	deleteCmd.Flags().BoolVar(&flagYes, "yes", false, "Confirm deletion")

	root.AddCommand(loginCmd, signupCmd, guestCmd, logoutCmd, meCmd, profileCmd, pinCmd, deleteCmd)
}
