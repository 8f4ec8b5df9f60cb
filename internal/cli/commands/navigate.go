package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/clinicgate/clinicgate/internal/router"
)

// NewNavigateCmd creates the navigate command
func NewNavigateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "navigate <path>",
		Short: "Show where a path lands for the current session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			guard := router.NewGuard(e.store, e.log)
			nav := router.NewNavigator(router.Default(), guard, e.log)
			return runNavigate(cmd.OutOrStdout(), nav, args[0])
		},
	}
}

func runNavigate(out io.Writer, nav *router.Navigator, path string) error {
	result, err := nav.Navigate(path)
	printHops(out, result)
	if err != nil {
		return err
	}

	final := result.Final
	fmt.Fprintf(out, "%s %s (%s)\n", successStyle.Render("→"), final.Path, final.Route.Name)
	return nil
}

func printHops(out io.Writer, nav *router.Navigation) {
	if nav == nil {
		return
	}
	for _, hop := range nav.Hops {
		if hop.Decision.Outcome != router.Redirect {
			continue
		}
		why := string(hop.Decision.Reason)
		if hop.Static {
			why = "route redirect"
		}
		fmt.Fprintf(out, "  %s %s %s\n", hop.Path, mutedStyle.Render("↪"), hop.Decision.To+mutedStyle.Render(" ("+why+")"))
	}
}
