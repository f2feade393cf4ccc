package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/harbourgate/identity-go/pkg/identity"
)

var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Sign in and cache the session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		email := ""
		if len(args) == 1 {
			email = args[0]
		}

		var password string
		fields := []huh.Field{}
		if email == "" {
			fields = append(fields, huh.NewInput().Title("Email").Value(&email))
		}
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&password))
		if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}

		user, err := client.Login(ctx, email, password)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(os.Stdout, user)
			return nil
		}
		fmt.Printf("Signed in as %s (%s)\n", user.Email, user.Role)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		var data identity.RegisterData
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Email").Value(&data.Email),
			huh.NewInput().
				Title("Password").
				Description("At least 8 characters with upper case, lower case and a digit").
				EchoMode(huh.EchoModePassword).
				Value(&data.Password),
			huh.NewInput().Title("Display name").Value(&data.DisplayName),
		))
		if err := form.Run(); err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}

		user, err := client.Register(ctx, data)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(os.Stdout, user)
			return nil
		}
		fmt.Printf("Account created for %s\n", user.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and drop cached credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		client, err := newClient()
		if err != nil {
			return err
		}

		client.Logout(ctx)
		fmt.Println("Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		client, err := newClient()
		if err != nil {
			return err
		}

		user := client.VerifyToken(ctx)
		if user == nil {
			return fmt.Errorf("not signed in")
		}

		if jsonOutput {
			printJSON(os.Stdout, user)
			return nil
		}
		fmt.Printf("%s (%s)\n", user.Email, user.Role)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
