package commands

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/clinicgate/clinicgate/internal/router"
)

var validate = validator.New()

type credentials struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the appointment system",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, username, password)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (or set CLINICGATE_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set CLINICGATE_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(cmd *cobra.Command, username, password string) error {
	out := cmd.OutOrStdout()

	// Check for environment variables (useful for CI/CD)
	if username == "" {
		username = os.Getenv("CLINICGATE_USERNAME")
	}
	if password == "" {
		password = os.Getenv("CLINICGATE_PASSWORD")
	}

	if username == "" {
		return fmt.Errorf("username is required (use --username flag or CLINICGATE_USERNAME env var)")
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		p, err := promptPassword(out)
		if err != nil {
			return err
		}
		password = p
	}

	if err := validate.Struct(credentials{Username: username, Password: password}); err != nil {
		return fmt.Errorf("invalid credentials: %w", err)
	}

	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.close()

	fmt.Fprintf(out, "Logging in to %s as %s...\n", e.cfg.API.BaseURL, username)

	result := e.store.Login(cmd.Context(), username, password)
	if !result.Success {
		return fmt.Errorf("login failed: %w", result.Failure)
	}

	user, _ := e.store.CurrentUser()
	fmt.Fprintln(out, successStyle.Render("✓ Login successful!"))
	fmt.Fprintf(out, "  User: %s (%s #%s)\n", displayName(user.Name), user.RawRole, user.UserID)
	fmt.Fprintf(out, "  Home: %s\n", router.HomePath(user))

	return nil
}

func promptPassword(out io.Writer) (string, error) {
	// Check if stdin is a terminal (not piped)
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("password is required in non-interactive mode (use --password flag or CLINICGATE_PASSWORD env var)")
	}

	fmt.Fprint(out, "Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(out) // New line after password input

	return string(bytePassword), nil
}

func displayName(name string) string {
	if name == "" {
		return "(no name)"
	}
	return name
}
