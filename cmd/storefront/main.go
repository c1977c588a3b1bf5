// Package main はストアフロントBFFのCLI（serve / migrate）。
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront BFF: catalog browsing, cart and checkout sessions",
	Long: `storefront serves the shop UI state (catalog view, cart, login) per browser
session and forwards checkout to the shop backend.

Configuration is read from the environment (.env is loaded if present) and
optionally overlaid by a YAML file given with --config.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (overrides environment)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
