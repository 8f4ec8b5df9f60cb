package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clinicgate/clinicgate/internal/cli/commands"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the clinicgate command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "clinicgate",
		Short: "clinicgate - session and navigation client for the appointment system",
		Long: `clinicgate logs you in to the hospital appointment API and shows which
dashboard each page resolves to for your account (admin, doctor or patient).

The session is kept in the OS keyring between runs unless SESSION_BACKEND
is set to memory or redis.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clinicgate version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewRegisterCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewRoutesCmd())
	rootCmd.AddCommand(commands.NewNavigateCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
