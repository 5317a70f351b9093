// Package cmd implements the CLI commands for meliproxy.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "meliproxy",
	Short: "OAuth proxy for the Mercado Livre API",
	Long:  "A thin web-facing adapter that performs OAuth2 authorization against the Mercado Livre marketplace API and proxies read-only queries (user profile, item listings, item detail, search) on behalf of the authenticated user.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.AddCommand(versionCommand())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
