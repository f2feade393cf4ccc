package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harbourgate/identity-go/pkg/identity"
)

var (
	usersPage   int
	usersLimit  int
	usersRole   string
	usersActive bool
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Administer user accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		client, err := newClient()
		if err != nil {
			return err
		}

		var filters identity.UserFilters
		if usersRole != "" {
			filters.Role = identity.Role(usersRole)
		}
		if cmd.Flags().Changed("active") {
			filters.IsActive = &usersActive
		}

		list, err := client.GetUsers(ctx, usersPage, usersLimit, &filters)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(os.Stdout, list)
			return nil
		}
		printUserTable(list.Items)
		fmt.Printf("page %d of %d (%d users)\n", list.Page, list.TotalPages, list.Total)
		return nil
	},
}

var usersSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search users by free text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		client, err := newClient()
		if err != nil {
			return err
		}

		items, err := client.SearchUsers(ctx, args[0], usersLimit)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(os.Stdout, items)
			return nil
		}
		printUserTable(items)
		return nil
	},
}

var usersSetRoleCmd = &cobra.Command{
	Use:   "set-role <user-id> <role>",
	Short: "Assign a role to a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		client, err := newClient()
		if err != nil {
			return err
		}

		user, err := client.ChangeUserRole(ctx, args[0], identity.Role(args[1]))
		if err != nil {
			return err
		}

		fmt.Printf("%s is now %s\n", user.Email, user.Role)
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <user-id>",
	Short: "Delete a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		client, err := newClient()
		if err != nil {
			return err
		}

		if err := client.DeleteUser(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("User deleted")
		return nil
	},
}

var usersGetCmd = &cobra.Command{
	Use:   "get <user-id>",
	Short: "Show a single user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		client, err := newClient()
		if err != nil {
			return err
		}

		user, err := client.GetUserByID(ctx, args[0])
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

func init() {
	usersListCmd.Flags().IntVar(&usersPage, "page", 1, "Page number")
	usersListCmd.Flags().IntVar(&usersLimit, "limit", 20, "Users per page")
	usersListCmd.Flags().StringVar(&usersRole, "role", "", "Filter by role")
	usersListCmd.Flags().BoolVar(&usersActive, "active", true, "Filter by active state")
	usersSearchCmd.Flags().IntVar(&usersLimit, "limit", 20, "Maximum results")

	usersCmd.AddCommand(usersListCmd, usersSearchCmd, usersGetCmd, usersSetRoleCmd, usersDeleteCmd)
	rootCmd.AddCommand(usersCmd)
}

func printUserTable(items []identity.User) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tACTIVE")
	for _, u := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", u.ID, u.Email, u.DisplayName, u.Role, u.IsActive)
	}
	w.Flush()
}
