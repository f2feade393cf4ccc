package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harbourgate/identity-go/pkg/identity"
)

var (
	profileDisplayName string
	profilePhone       string
	profilePhotoURL    string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the signed-in user's profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		client, err := newClient()
		if err != nil {
			return err
		}

		user, err := client.GetProfile(ctx)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(os.Stdout, user)
			return nil
		}
		printUser(user)
		return nil
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:     "set",
	Aliases: []string{"update"},
	Short:   "Update profile fields",
	Long:  "Update profile fields. Only flags you pass are sent; everything else is left untouched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		var update identity.ProfileUpdate
		if cmd.Flags().Changed("display-name") {
			update.DisplayName = &profileDisplayName
		}
		if cmd.Flags().Changed("phone") {
			update.Phone = &profilePhone
		}
		if cmd.Flags().Changed("photo-url") {
			update.PhotoURL = &profilePhotoURL
		}
		if update.DisplayName == nil && update.PhotoURL == nil && update.Phone == nil &&
			update.Preferences == nil && update.CustomData == nil {
			return fmt.Errorf("nothing to update, pass at least one flag")
		}

		client, err := newClient()
		if err != nil {
			return err
		}

		user, err := client.UpdateProfile(ctx, update)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(os.Stdout, user)
			return nil
		}
		fmt.Println("Profile updated")
		printUser(user)
		return nil
	},
}

func init() {
	profileUpdateCmd.Flags().StringVar(&profileDisplayName, "display-name", "", "New display name")
	profileUpdateCmd.Flags().StringVar(&profilePhone, "phone", "", "New phone number")
	profileUpdateCmd.Flags().StringVar(&profilePhotoURL, "photo-url", "", "New photo URL")

	profileCmd.AddCommand(profileUpdateCmd)
	rootCmd.AddCommand(profileCmd)
}

func printUser(user *identity.User) {
	fmt.Printf("Email:        %s\n", user.Email)
	fmt.Printf("Display name: %s\n", user.DisplayName)
	fmt.Printf("Role:         %s\n", user.Role)
	fmt.Printf("Active:       %t\n", user.IsActive)
	if user.Phone != "" {
		fmt.Printf("Phone:        %s\n", user.Phone)
	}
	if len(user.Permissions) > 0 {
		fmt.Printf("Permissions:  ")
		for i, p := range user.Permissions {
			if i > 0 {
				fmt.Print(", ")
			}
			fmt.Print(string(p))
		}
		fmt.Println()
	}
}
