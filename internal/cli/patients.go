package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ancare/ancare/internal/analytics"
	"github.com/ancare/ancare/internal/api"
	"github.com/spf13/cobra"
)

var (
	patientSearch  string
	patientFilter  string
	patientPage    int
	patientPerPage int

	patientFile string
	patientSets []string
)

// now is the clock the date filters compare against.
var now = time.Now

var patientsCmd = &cobra.Command{
	Use:     "patients",
	Aliases: []string{"patient", "pt"},
	Short:   "Manage patients",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := preRunHandlePersistents(cmd, args); err != nil {
			return err
		}
		return requireLogin()
	},
}

var patientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List patients",
	Long: `List patients, optionally searching by name or phone and filtering by
registration date.

Examples:
  ancare patients list --search achieng
  ancare patients list --filter recent
  ancare patients list --filter this_month --page 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch patientFilter {
		case analytics.FilterAll, analytics.FilterRecent, analytics.FilterThisMonth:
		default:
			return fmt.Errorf("invalid filter %q, expected all, recent or this_month", patientFilter)
		}

		patients, err := withRetry(cmd.Context(), retries, gateway().GetPatients)
		if err != nil {
			return err
		}
		filtered := analytics.FilterPatients(patients, patientSearch, patientFilter, now())
		page := analytics.Paginate(len(filtered), patientPage, patientPerPage)
		visible := filtered[page.Start:page.End]

		if jsonOutput {
			printJSON(map[string]any{
				"patients": visible,
				"page":     page,
			})
			return nil
		}

		rows := make([][]string, 0, len(visible))
		for _, p := range visible {
			rows = append(rows, []string{
				p.ID.String(),
				p.Name,
				p.Phone,
				strconv.Itoa(p.WeeksPregnant),
				p.DateRegistered,
				hospitalNames(p.PreferredHospitals, 2),
			})
		}
		printTable([]string{"id", "name", "phone", "weeks", "registered", "preferred hospitals"}, rows)
		fmt.Fprintf(out, "\nShowing %d of %d patients (page %d of %d)\n", len(visible), page.Total, page.Number, max(page.TotalPages, 1))
		return nil
	},
}

func hospitalNames(hospitals []api.Hospital, limit int) string {
	names := make([]string, 0, limit)
	for i, h := range hospitals {
		if i == limit {
			names = append(names, fmt.Sprintf("+%d more", len(hospitals)-limit))
			break
		}
		names = append(names, h.Name)
	}
	return strings.Join(names, ", ")
}

var patientsGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one patient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := withRetry(cmd.Context(), retries, func(ctx context.Context) (*api.Patient, error) {
			return gateway().GetPatient(ctx, api.ID(args[0]))
		})
		if err != nil {
			return err
		}
		return printResult(p)
	},
}

var patientsCreateCmd = &cobra.Command{
	Use:   "create -f FILE",
	Short: "Register patients from a YAML or JSON file",
	Long: `Register patients. Each document in the file creates one patient:

  name: Achieng Odhiambo
  phone: "0711000001"
  weeks_pregnant: 12
  county: Kisumu
  ward: Kondele
  preferred_hospitals_ids: [3]
  ---
  name: Mary Wambui
  phone: "0722000002"
  weeks_pregnant: 20`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bodies, err := LoadBodies(patientFile)
		if err != nil {
			return err
		}
		created := make([]*api.Patient, 0, len(bodies))
		for _, body := range bodies {
			p, err := gateway().CreatePatient(cmd.Context(), body)
			if err != nil {
				return err
			}
			created = append(created, p)
			if !jsonOutput {
				okLabel.Fprintf(out, "✓ Created patient %s (%s)\n", p.ID, p.Name)
			}
		}
		if jsonOutput {
			printJSON(created)
		}
		return nil
	},
}

var patientsUpdateCmd = &cobra.Command{
	Use:   "update ID -f FILE",
	Short: "Replace a patient with the contents of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := buildBody(patientFile, patientSets)
		if err != nil {
			return err
		}
		p, err := gateway().UpdatePatient(cmd.Context(), api.ID(args[0]), body)
		if err != nil {
			return err
		}
		return printWritten("Updated patient", p.ID, p)
	},
}

var patientsPatchCmd = &cobra.Command{
	Use:   "patch ID [--set key=value]... [-f FILE]",
	Short: "Change some fields of a patient",
	Long: `Change some fields of a patient. Only the given fields are sent.

Examples:
  ancare patients patch 12 --set weeks_pregnant=16
  ancare patients patch 12 --set preferred_hospitals_ids=[3,7]`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := buildBody(patientFile, patientSets)
		if err != nil {
			return err
		}
		p, err := gateway().PartialUpdatePatient(cmd.Context(), api.ID(args[0]), body)
		if err != nil {
			return err
		}
		return printWritten("Updated patient", p.ID, p)
	},
}

var patientsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a patient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := gateway().DeletePatient(cmd.Context(), api.ID(args[0]))
		if err != nil {
			return err
		}
		return printDeleted("patient", args[0], res)
	},
}

// printWritten reports a created or updated object.
func printWritten(what string, id api.ID, v any) error {
	if jsonOutput {
		printJSON(v)
		return nil
	}
	okLabel.Fprintf(out, "✓ %s %s\n", what, id)
	return printResult(v)
}

// printDeleted reports a delete, with the server's reply when it sent one.
func printDeleted(kind, id string, res *api.DeleteResult) error {
	if jsonOutput {
		printJSON(map[string]any{"deleted": res.Deleted, "id": id, "response": res.Body})
		return nil
	}
	okLabel.Fprintf(out, "✓ Deleted %s %s\n", kind, id)
	if len(res.Body) > 0 {
		return printResult(res.Body)
	}
	return nil
}

func init() {
	patientsListCmd.Flags().StringVarP(&patientSearch, "search", "s", "", "Match name or phone")
	patientsListCmd.Flags().StringVar(&patientFilter, "filter", analytics.FilterAll, "all, recent (last 7 days) or this_month")
	patientsListCmd.Flags().IntVar(&patientPage, "page", 1, "Page number")
	patientsListCmd.Flags().IntVar(&patientPerPage, "per-page", analytics.DefaultPerPage, "Patients per page")
	patientsListCmd.Flags().UintVar(&retries, "retries", 0, "Retry failed requests up to N times")
	patientsGetCmd.Flags().UintVar(&retries, "retries", 0, "Retry failed requests up to N times")

	patientsCreateCmd.Flags().StringVarP(&patientFile, "file", "f", "", "Patient file (YAML or JSON, multiple documents allowed)")
	patientsCreateCmd.MarkFlagRequired("file")
	for _, c := range []*cobra.Command{patientsUpdateCmd, patientsPatchCmd} {
		c.Flags().StringVarP(&patientFile, "file", "f", "", "Patient file (YAML or JSON)")
		c.Flags().StringArrayVar(&patientSets, "set", nil, "Set a field, key=value (repeatable)")
	}

	patientsCmd.AddCommand(patientsListCmd, patientsGetCmd, patientsCreateCmd, patientsUpdateCmd, patientsPatchCmd, patientsDeleteCmd)
	rootCmd.AddCommand(patientsCmd)
}
