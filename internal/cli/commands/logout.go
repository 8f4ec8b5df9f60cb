package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd)
		},
	}
}

func runLogout(cmd *cobra.Command) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.close()

	out := cmd.OutOrStdout()

	result := e.store.Logout(cmd.Context())
	if !result.Success {
		if e.store.IsAuthenticated() {
			fmt.Fprintln(out, warnStyle.Render("! The local session was kept; run logout again once the server is reachable."))
		}
		return result.Failure
	}

	fmt.Fprintln(out, successStyle.Render("✓ Logged out"))
	return nil
}
