package cli

import (
	"context"
	"strconv"

	"github.com/ancare/ancare/internal/analytics"
	"github.com/ancare/ancare/internal/api"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Summary is the at-a-glance view of the signed-in user's workload.
type Summary struct {
	Patients             int            `json:"patients"`
	PatientsThisMonth    int            `json:"patients_this_month"`
	Appointments         int            `json:"appointments"`
	AppointmentsByStatus map[string]int `json:"appointments_by_status"`
	Hospitals            int            `json:"hospitals"`
}

// fetchSummary loads patients, appointments and hospitals concurrently. The
// first failure cancels the other requests.
func fetchSummary(ctx context.Context, gw *api.Client) (*Summary, error) {
	var (
		patients     []api.Patient
		appointments []api.Appointment
		hospitals    []api.Hospital
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		patients, err = withRetry(gctx, retries, gw.GetPatients)
		return err
	})
	g.Go(func() (err error) {
		appointments, err = withRetry(gctx, retries, gw.GetAppointments)
		return err
	})
	g.Go(func() (err error) {
		hospitals, err = withRetry(gctx, retries, gw.GetHospitals)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := &Summary{
		Patients:             len(patients),
		PatientsThisMonth:    len(analytics.FilterPatients(patients, "", analytics.FilterThisMonth, now())),
		Appointments:         len(appointments),
		AppointmentsByStatus: map[string]int{},
		Hospitals:            len(hospitals),
	}
	for _, a := range appointments {
		s.AppointmentsByStatus[a.Status]++
	}
	return s, nil
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Counts of patients, appointments and hospitals",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := preRunHandlePersistents(cmd, args); err != nil {
			return err
		}
		return requireLogin()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := fetchSummary(cmd.Context(), gateway())
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(s)
			return nil
		}
		fields := [][2]string{
			{"Patients", strconv.Itoa(s.Patients)},
			{"Registered this month", strconv.Itoa(s.PatientsThisMonth)},
			{"Appointments", strconv.Itoa(s.Appointments)},
		}
		for _, st := range []string{api.StatusScheduled, api.StatusCompleted, api.StatusMissed, api.StatusCancelled} {
			if n := s.AppointmentsByStatus[st]; n > 0 {
				fields = append(fields, [2]string{"  " + titleCaser.String(st), strconv.Itoa(n)})
			}
		}
		fields = append(fields, [2]string{"Hospitals", strconv.Itoa(s.Hospitals)})
		printFields(fields)
		return nil
	},
}

func init() {
	summaryCmd.Flags().UintVar(&retries, "retries", 0, "Retry failed requests up to N times")
	rootCmd.AddCommand(summaryCmd)
}
