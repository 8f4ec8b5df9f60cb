package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clinicgate/clinicgate/internal/router"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(cmd)
		},
	}
}

func runWhoami(cmd *cobra.Command) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.close()

	out := cmd.OutOrStdout()

	user, ok := e.store.CurrentUser()
	if !ok {
		fmt.Fprintln(out, "Not logged in.")
		fmt.Fprintln(out, mutedStyle.Render("\nLog in with: clinicgate login --username <name>"))
		return nil
	}

	fmt.Fprintf(out, "User:    %s\n", displayName(user.Name))
	fmt.Fprintf(out, "Role:    %s\n", user.RawRole)
	fmt.Fprintf(out, "ID:      %s\n", user.UserID)
	fmt.Fprintf(out, "Home:    %s\n", router.HomePath(user))
	return nil
}
