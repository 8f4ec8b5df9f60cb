package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/clinicgate/clinicgate/internal/router"
)

// NewRoutesCmd creates the routes command
func NewRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the portal's routes and their access rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoutes(cmd, router.Default())
		},
	}
}

func runRoutes(cmd *cobra.Command, table *router.Table) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render("Routes"))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tNAME\tACCESS\tROLE")
	fmt.Fprintln(w, "────\t────\t──────\t────")

	for _, r := range table.Routes() {
		name := r.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Path, name, access(r), role(r))
	}

	return w.Flush()
}

func access(r *router.Route) string {
	switch {
	case r.Redirect != "":
		return "redirect " + r.Redirect
	case r.Meta.RequiresAuth:
		return "login required"
	case r.Meta.RequiresGuest:
		return "guests only"
	default:
		return "public"
	}
}

func role(r *router.Route) string {
	if !r.Meta.RequiresRole() {
		return "any"
	}
	return r.Meta.Role.String()
}
