package cli

import (
	"github.com/spf13/cobra"

	"github.com/harbourgate/identity-go/pkg/session"
	"github.com/harbourgate/identity-go/pkg/tui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		mgr := session.NewManager(client, nil)
		defer mgr.Close()

		return tui.Run(mgr, client)
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
