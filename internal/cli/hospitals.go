package cli

import (
	"encoding/json"
	"fmt"

	"github.com/ancare/ancare/internal/api"
	"github.com/spf13/cobra"
)

var (
	signupFile string

	staffFile      string
	staffRequest   api.StaffAccessRequest
	staffHospitals []string
)

var hospitalsCmd = &cobra.Command{
	Use:     "hospitals",
	Aliases: []string{"hosp"},
	Short:   "Work with hospitals",
}

var hospitalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List hospitals",
	RunE: func(cmd *cobra.Command, args []string) error {
		hospitals, err := withRetry(cmd.Context(), retries, gateway().GetHospitals)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(hospitals)
			return nil
		}
		rows := make([][]string, 0, len(hospitals))
		for _, h := range hospitals {
			rows = append(rows, []string{h.ID.String(), h.Name, h.County, h.Ward, h.Phone})
		}
		printTable([]string{"id", "name", "county", "ward", "phone"}, rows)
		return nil
	},
}

var hospitalCmd = &cobra.Command{
	Use:   "hospital",
	Short: "Hospital account management",
}

var hospitalSignupCmd = &cobra.Command{
	Use:   "signup -f FILE",
	Short: "Register a new hospital from a YAML or JSON file",
	Long: `Register a new hospital. Example file:

  name: Ahero Sub-County Hospital
  county: Kisumu County
  sub_county: Nyando Sub County
  ward: Ahero Ward
  phone: "0711000000"
  email: admin@ahero.example.org`,
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := LoadBody(signupFile)
		if err != nil {
			return err
		}
		resp, err := gateway().HospitalSignup(cmd.Context(), body)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(resp)
			return nil
		}
		okLabel.Fprintln(out, "✓ Hospital signup submitted")
		return nil
	},
}

var staffCmd = &cobra.Command{
	Use:   "staff",
	Short: "Staff accounts",
}

var staffRequestAccessCmd = &cobra.Command{
	Use:   "request-access",
	Short: "Ask one or more hospitals for a staff account",
	Long: `Ask one or more hospitals for a staff account. Either pass the fields as
flags or give a file with name, email, phone, role and hospitals.

Example:
  ancare staff request-access --name "Jane Njeri" --email jane@example.org \
    --role nurse --hospital 3 --hospital 12`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := staffRequest
		if staffFile != "" {
			body, err := LoadBody(staffFile)
			if err != nil {
				return err
			}
			if err := json.Unmarshal(body, &req); err != nil {
				return fmt.Errorf("invalid staff request: %w", err)
			}
		}
		for _, h := range staffHospitals {
			req.Hospitals = append(req.Hospitals, api.ID(h))
		}

		resp, err := gateway().RequestStaffAccess(cmd.Context(), req)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(resp)
			return nil
		}
		okLabel.Fprintln(out, "✓ Access request submitted. You can log in once a hospital approves it.")
		return nil
	},
}

func init() {
	hospitalsListCmd.Flags().UintVar(&retries, "retries", 0, "Retry failed requests up to N times")
	hospitalsCmd.AddCommand(hospitalsListCmd)

	hospitalSignupCmd.Flags().StringVarP(&signupFile, "file", "f", "", "Hospital file (YAML or JSON)")
	hospitalSignupCmd.MarkFlagRequired("file")
	hospitalCmd.AddCommand(hospitalSignupCmd)

	f := staffRequestAccessCmd.Flags()
	f.StringVarP(&staffFile, "file", "f", "", "Request file (YAML or JSON)")
	f.StringVar(&staffRequest.Name, "name", "", "Full name")
	f.StringVar(&staffRequest.Email, "email", "", "Email address")
	f.StringVar(&staffRequest.Phone, "phone", "", "Phone number")
	f.StringVar(&staffRequest.Role, "role", "", "Requested role, e.g. nurse")
	f.StringArrayVar(&staffHospitals, "hospital", nil, "Hospital ID (repeatable)")
	staffCmd.AddCommand(staffRequestAccessCmd)

	rootCmd.AddCommand(hospitalsCmd)
	rootCmd.AddCommand(hospitalCmd)
	rootCmd.AddCommand(staffCmd)
}
