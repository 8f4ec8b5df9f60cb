package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// registration mirrors the patient fields the API accepts
type registration struct {
	Username string `validate:"required"`
	Password string `validate:"required,min=4"`
	FullName string
	Email    string `validate:"omitempty,email"`
	Phone    string `validate:"omitempty,max=20"`
	Age      int    `validate:"gte=0,lte=150"`
	Gender   string `validate:"omitempty,oneof=male female other"`
	Address  string
}

// payload only carries the fields that were set
func (r registration) payload() map[string]any {
	p := map[string]any{
		"username": r.Username,
		"password": r.Password,
	}
	optional := map[string]string{
		"full_name": r.FullName,
		"email":     r.Email,
		"phone":     r.Phone,
		"gender":    r.Gender,
		"address":   r.Address,
	}
	for k, v := range optional {
		if v != "" {
			p[k] = v
		}
	}
	if r.Age > 0 {
		p["age"] = r.Age
	}
	return p
}

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var reg registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new patient account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd, reg)
		},
	}

	cmd.Flags().StringVar(&reg.Username, "username", "", "Username")
	cmd.Flags().StringVar(&reg.Password, "password", "", "Password")
	cmd.Flags().StringVar(&reg.FullName, "full-name", "", "Full name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&reg.Phone, "phone", "", "Phone number")
	cmd.Flags().IntVar(&reg.Age, "age", 0, "Age")
	cmd.Flags().StringVar(&reg.Gender, "gender", "", "Gender (male, female, other)")
	cmd.Flags().StringVar(&reg.Address, "address", "", "Postal address")

	return cmd
}

func runRegister(cmd *cobra.Command, reg registration) error {
	if err := validate.Struct(reg); err != nil {
		return fmt.Errorf("invalid registration: %w", err)
	}

	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.close()

	result := e.store.Register(cmd.Context(), reg.payload())
	if !result.Success {
		return fmt.Errorf("registration failed: %w", result.Failure)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, successStyle.Render("✓ Registration successful!"))
	if id, ok := result.Data["patient_id"]; ok {
		fmt.Fprintf(out, "  Patient ID: %v\n", id)
	}
	fmt.Fprintln(out, mutedStyle.Render("\nLog in with: clinicgate login --username "+reg.Username))

	return nil
}
