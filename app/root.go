// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "go-identity-admin",
	Short: "GoIdentity-Admin is a web-based identity and access management service",
	Long: `GoIdentity-Admin is a web-based identity and access management service
that handles token-based authentication, role-based access control over a
module and feature tree, and an append-only audit trail.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
