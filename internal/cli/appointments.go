package cli

import (
	"context"
	"fmt"

	"github.com/ancare/ancare/internal/analytics"
	"github.com/ancare/ancare/internal/api"
	"github.com/spf13/cobra"
)

var (
	appointmentSearch string
	appointmentFile   string
	appointmentSets   []string
)

var appointmentsCmd = &cobra.Command{
	Use:     "appointments",
	Aliases: []string{"appointment", "appt"},
	Short:   "Manage ANC appointments",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := preRunHandlePersistents(cmd, args); err != nil {
			return err
		}
		return requireLogin()
	},
}

var appointmentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List appointments",
	Long: `List appointments. --search matches the patient name, hospital name or
status, e.g. --search missed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appointments, err := withRetry(cmd.Context(), retries, gateway().GetAppointments)
		if err != nil {
			return err
		}
		appointments = analytics.FilterAppointments(appointments, appointmentSearch)

		if jsonOutput {
			printJSON(appointments)
			return nil
		}
		rows := make([][]string, 0, len(appointments))
		for _, a := range appointments {
			rows = append(rows, []string{
				a.ID.String(),
				a.Patient.Name,
				a.Hospital.Name,
				a.AppointmentDate,
				statusLabel(a.Status),
			})
		}
		printTable([]string{"id", "patient", "hospital", "date", "status"}, rows)
		return nil
	},
}

func statusLabel(status string) string {
	switch status {
	case api.StatusCompleted:
		return okLabel.Sprint(status)
	case api.StatusMissed:
		return errorLabel.Sprint(status)
	default:
		return status
	}
}

var appointmentsGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one appointment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := withRetry(cmd.Context(), retries, func(ctx context.Context) (*api.Appointment, error) {
			return gateway().GetAppointment(ctx, api.ID(args[0]))
		})
		if err != nil {
			return err
		}
		return printResult(a)
	},
}

var appointmentsCreateCmd = &cobra.Command{
	Use:   "create [-f FILE] [--set key=value]...",
	Short: "Book appointments",
	Long: `Book appointments. Each document in the file books one appointment:

  patient_id: 12
  hospital_id: 3
  appointment_date: "2025-04-01"
  status: scheduled

A single appointment can also be given with --set:
  ancare appointments create --set patient_id=12 --set hospital_id=3 --set appointment_date=2025-04-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var bodies [][]byte
		if appointmentFile != "" && len(appointmentSets) == 0 {
			docs, err := LoadBodies(appointmentFile)
			if err != nil {
				return err
			}
			for _, d := range docs {
				bodies = append(bodies, d)
			}
		} else {
			body, err := buildBody(appointmentFile, appointmentSets)
			if err != nil {
				return err
			}
			bodies = append(bodies, body)
		}

		created := make([]*api.Appointment, 0, len(bodies))
		for _, body := range bodies {
			a, err := gateway().CreateAppointment(cmd.Context(), body)
			if err != nil {
				return err
			}
			created = append(created, a)
			if !jsonOutput {
				okLabel.Fprintf(out, "✓ Booked appointment %s on %s\n", a.ID, a.AppointmentDate)
			}
		}
		if jsonOutput {
			printJSON(created)
		}
		return nil
	},
}

var appointmentsUpdateCmd = &cobra.Command{
	Use:   "update ID -f FILE",
	Short: "Replace an appointment with the contents of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := buildBody(appointmentFile, appointmentSets)
		if err != nil {
			return err
		}
		a, err := gateway().UpdateAppointment(cmd.Context(), api.ID(args[0]), body)
		if err != nil {
			return err
		}
		return printWritten("Updated appointment", a.ID, a)
	},
}

var appointmentsPatchCmd = &cobra.Command{
	Use:   "patch ID [--status S] [--set key=value]...",
	Short: "Change some fields of an appointment",
	Long: `Change some fields of an appointment, most often its status.

Example:
  ancare appointments patch 7 --status completed`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sets := appointmentSets
		if status, _ := cmd.Flags().GetString("status"); status != "" {
			switch status {
			case api.StatusScheduled, api.StatusCompleted, api.StatusMissed, api.StatusCancelled:
			default:
				return fmt.Errorf("invalid status %q", status)
			}
			sets = append(sets, "status="+status)
		}
		body, err := buildBody(appointmentFile, sets)
		if err != nil {
			return err
		}
		a, err := gateway().PartialUpdateAppointment(cmd.Context(), api.ID(args[0]), body)
		if err != nil {
			return err
		}
		return printWritten("Updated appointment", a.ID, a)
	},
}

var appointmentsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an appointment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := gateway().DeleteAppointment(cmd.Context(), api.ID(args[0]))
		if err != nil {
			return err
		}
		return printDeleted("appointment", args[0], res)
	},
}

func init() {
	appointmentsListCmd.Flags().StringVarP(&appointmentSearch, "search", "s", "", "Match patient, hospital or status")
	appointmentsListCmd.Flags().UintVar(&retries, "retries", 0, "Retry failed requests up to N times")
	appointmentsGetCmd.Flags().UintVar(&retries, "retries", 0, "Retry failed requests up to N times")

	for _, c := range []*cobra.Command{appointmentsCreateCmd, appointmentsUpdateCmd, appointmentsPatchCmd} {
		c.Flags().StringVarP(&appointmentFile, "file", "f", "", "Appointment file (YAML or JSON)")
		c.Flags().StringArrayVar(&appointmentSets, "set", nil, "Set a field, key=value (repeatable)")
	}
	appointmentsPatchCmd.Flags().String("status", "", "New status: scheduled, completed, missed or cancelled")

	appointmentsCmd.AddCommand(appointmentsListCmd, appointmentsGetCmd, appointmentsCreateCmd, appointmentsUpdateCmd, appointmentsPatchCmd, appointmentsDeleteCmd)
	rootCmd.AddCommand(appointmentsCmd)
}
