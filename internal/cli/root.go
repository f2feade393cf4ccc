// Package cli implements the idctl command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harbourgate/identity-go/pkg/credstore"
	"github.com/harbourgate/identity-go/pkg/identity"
	"github.com/harbourgate/identity-go/pkg/slogx"
)

var (
	apiURL     string
	jsonOutput bool
	verbose    bool
)

const defaultAPIURL = "http://localhost:8080"

var rootCmd = &cobra.Command{
	Use:   "idctl",
	Short: "CLI for the identity service",
	Long: `idctl manages accounts, sessions and users against an identity service.

Credentials persist in your user config directory between invocations, so a
single login carries across commands until the session expires.

Environment Variables:
  IDENTITY_API_URL  Identity service URL (default: http://localhost:8080)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	// Local .env files are a development convenience; absence is fine.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Identity service URL (overrides IDENTITY_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log requests to stderr")
}

// resolveAPIURL returns the API URL from flag, env or default, in that
// priority order.
func resolveAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	if envURL := os.Getenv("IDENTITY_API_URL"); envURL != "" {
		return envURL
	}
	return defaultAPIURL
}

// credentialsPath returns the persistent token cache location.
func credentialsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate user config dir: %w", err)
	}
	return filepath.Join(dir, "idctl", "credentials.json"), nil
}

// newClient builds an identity client backed by the file credential store.
func newClient() (*identity.Client, error) {
	path, err := credentialsPath()
	if err != nil {
		return nil, err
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	logger := slogx.New(slogx.Config{
		Service: "idctl",
		Level:   level,
		Format:  "text",
	})

	cfg := identity.LoadConfig()
	cfg.APIURL = resolveAPIURL()
	cfg.Credentials = credstore.NewFile(path)
	cfg.Logger = logger
	return identity.New(cfg)
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(data))
}
