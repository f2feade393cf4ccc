package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate user statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		client, err := newClient()
		if err != nil {
			return err
		}

		stats, err := client.GetUserStats(ctx)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(os.Stdout, stats)
			return nil
		}

		fmt.Printf("Total users:    %d\n", stats.TotalUsers)
		fmt.Printf("Active:         %d\n", stats.ActiveUsers)
		fmt.Printf("Inactive:       %d\n", stats.InactiveUsers)
		fmt.Printf("Verified:       %d\n", stats.VerifiedUsers)
		fmt.Printf("New today:      %d\n", stats.NewUsersToday)
		fmt.Printf("New this week:  %d\n", stats.NewUsersThisWeek)

		if len(stats.ByRole) > 0 {
			fmt.Println("By role:")
			roles := make([]string, 0, len(stats.ByRole))
			for role := range stats.ByRole {
				roles = append(roles, role)
			}
			sort.Strings(roles)
			for _, role := range roles {
				fmt.Printf("  %-12s %d\n", role, stats.ByRole[role])
			}
		}
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check service connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		client, err := newClient()
		if err != nil {
			return err
		}

		status, err := client.Health(ctx)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(os.Stdout, status)
			return nil
		}
		fmt.Printf("Status:  %s\n", status.Status)
		if status.Version != "" {
			fmt.Printf("Version: %s\n", status.Version)
		}
		if status.Uptime != "" {
			fmt.Printf("Uptime:  %s\n", status.Uptime)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd, healthCmd)
}
