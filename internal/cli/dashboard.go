package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ancare/ancare/internal/analytics"
	"github.com/ancare/ancare/internal/api"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	dashboardMetric string
	dashboardTop    int
	sampleFallback  bool
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash"},
	Short:   "ANC analytics for your hospital and county",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := preRunHandlePersistents(cmd, args); err != nil {
			return err
		}
		return requireLogin()
	},
}

var dashboardHospitalCmd = &cobra.Command{
	Use:   "hospital",
	Short: "Per-period ANC indicators of your hospital",
	Long: `Show your hospital's ANC indicators per reporting period with the change
from the previous period.

Examples:
  ancare dashboard hospital
  ancare dashboard hospital --metric completed4`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		data, err := withRetry(ctx, retries, gateway().GetHospitalDashboardData)
		data, sample, err := withSample(ctx, data, err, len(recordsOf(data)) == 0, sampleHospitalDashboard)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(map[string]any{
				"dashboard": data,
				"trends":    analytics.PeriodTrends(data.Records, dashboardMetric),
				"total":     analytics.TotalMetric(data.Records, dashboardMetric),
				"sample":    sample,
			})
			return nil
		}
		if len(data.Records) == 0 {
			fmt.Fprintln(out, "No ANC records yet.")
			return nil
		}
		printHospitalDashboard(data)
		return nil
	},
}

var dashboardCountyCmd = &cobra.Command{
	Use:   "county",
	Short: "Compare hospitals in your county",
	Long: `Rank the hospitals in your county by an ANC indicator and show where your
hospital stands.

Examples:
  ancare dashboard county
  ancare dashboard county --metric anc12 --top 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		data, err := withRetry(ctx, retries, gateway().GetCountyDashboardData)
		data, sample, err := withSample(ctx, data, err, len(hospitalsOf(data)) == 0, sampleCountyDashboard)
		if err != nil {
			return err
		}
		ranked := analytics.RankHospitals(data.Hospitals, dashboardMetric)
		average := analytics.AverageMetric(data.Hospitals, dashboardMetric)
		if jsonOutput {
			result := map[string]any{
				"metric":          dashboardMetric,
				"hospitals":       ranked,
				"average":         average,
				"top":             analytics.TopPerformers(data.Hospitals, dashboardMetric, dashboardTop),
				"sub_counties":    analytics.SubCountyBreakdown(data.Hospitals, dashboardMetric),
				"completion_rate": analytics.Rate(data.Hospitals, "completed4", "new_clients"),
				"sample":          sample,
			}
			if rank, ok := analytics.CurrentHospitalRank(data.Hospitals, dashboardMetric); ok {
				result["current_rank"] = rank
			}
			printJSON(result)
			return nil
		}
		if len(data.Hospitals) == 0 {
			fmt.Fprintln(out, "No county data yet.")
			return nil
		}
		printCountyDashboard(data, ranked, average)
		return nil
	},
}

var dashboardWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Appointments of the current week",
	RunE: func(cmd *cobra.Command, args []string) error {
		visits, err := withRetry(cmd.Context(), retries, gateway().GetWeeklyPatientVisits)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(visits)
			return nil
		}
		fields := [][2]string{
			{"Week", visits.StartWeek + " to " + visits.EndWeek},
			{"Appointments", strconv.Itoa(visits.TotalAppointments)},
		}
		if u, ok := visits.Utilization(); ok {
			fields = append(fields, [2]string{"Utilization", formatNumber(u) + "%"})
		}
		printFields(fields)

		if len(visits.Days) > 0 {
			fmt.Fprintln(out)
			rows := make([][]string, 0, len(visits.Days))
			for _, d := range visits.Days {
				rows = append(rows, []string{
					d.DayName, d.Date,
					strconv.Itoa(d.TotalAppointments),
					strconv.Itoa(d.Scheduled),
					strconv.Itoa(d.Completed),
					strconv.Itoa(d.Missed),
					strconv.Itoa(d.Cancelled),
				})
			}
			printTable([]string{"day", "date", "total", "scheduled", "completed", "missed", "cancelled"}, rows)
		}
		if len(visits.ByHospital) > 0 {
			fmt.Fprintln(out)
			rows := make([][]string, 0, len(visits.ByHospital))
			for _, h := range visits.ByHospital {
				rows = append(rows, []string{h.HospitalName, strconv.Itoa(h.Count)})
			}
			printTable([]string{"hospital", "appointments"}, rows)
		}
		return nil
	},
}

// withSample swaps in bundled sample data when --sample-fallback is set and
// the live fetch failed or came back empty. Cancellation is never masked.
func withSample[T any](ctx context.Context, live *T, err error, empty bool, sample func() (*T, error)) (*T, bool, error) {
	if !sampleFallback || ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return live, false, err
	}
	if err == nil && !empty {
		return live, false, nil
	}
	if err != nil {
		log.Warn().Err(err).Msg("dashboard request failed, using sample data")
	}
	data, sErr := sample()
	if sErr != nil {
		return nil, false, sErr
	}
	if !jsonOutput {
		fmt.Fprintln(errOut, "Showing sample data.")
	}
	return data, true, nil
}

func recordsOf(d *api.HospitalDashboard) []api.ANCRecord {
	if d == nil {
		return nil
	}
	return d.Records
}

func hospitalsOf(d *api.CountyDashboard) []api.CountyHospital {
	if d == nil {
		return nil
	}
	return d.Hospitals
}

func printHospitalDashboard(data *api.HospitalDashboard) {
	metrics := api.MetricNames(data.Records)
	headers := append([]string{"period"}, metrics...)
	rows := make([][]string, 0, len(data.Records))
	for _, r := range data.Records {
		row := []string{analytics.FormatPeriod(r.Period)}
		for _, m := range metrics {
			row = append(row, formatNumber(r.Metric(m)))
		}
		rows = append(rows, row)
	}
	printTable(headers, rows)

	fmt.Fprintf(out, "\n%s (total %s)\n", metricLabel(dashboardMetric),
		formatNumber(analytics.TotalMetric(data.Records, dashboardMetric)))
	trendRows := make([][]string, 0, len(data.Records))
	for _, t := range analytics.PeriodTrends(data.Records, dashboardMetric) {
		change := "-"
		if t.HasPrevious {
			change = fmt.Sprintf("%+g (%+g%%)", t.Change, t.PercentChange)
		}
		trendRows = append(trendRows, []string{analytics.FormatPeriod(t.Period), formatNumber(t.Value), change})
	}
	printTable([]string{"period", "value", "change"}, trendRows)
}

func printCountyDashboard(data *api.CountyDashboard, ranked []analytics.RankedHospital, average float64) {
	label := metricLabel(dashboardMetric)
	fields := [][2]string{
		{"Metric", label},
		{"Hospitals", strconv.Itoa(len(data.Hospitals))},
		{"County average", formatNumber(average)},
		{"4th visit completion", formatNumber(analytics.Rate(data.Hospitals, "completed4", "new_clients")) + "%"},
	}
	if rank, ok := analytics.CurrentHospitalRank(data.Hospitals, dashboardMetric); ok {
		fields = append(fields, [2]string{"Your rank", fmt.Sprintf("%d of %d", rank, len(data.Hospitals))})
	}
	printFields(fields)

	fmt.Fprintln(out)
	rows := make([][]string, 0, len(ranked))
	for _, h := range ranked {
		name := h.Name
		if h.IsCurrentHospital {
			name += " *"
		}
		rows = append(rows, []string{
			strconv.Itoa(h.Rank),
			name,
			h.SubCounty,
			formatNumber(h.Metric(dashboardMetric)),
			analytics.PerformanceCategory(h.Metric(dashboardMetric), average),
		})
	}
	printTable([]string{"rank", "hospital", "sub-county", label, "performance"}, rows)

	if dashboardTop > 0 {
		fmt.Fprintf(out, "\nTop %d:\n", dashboardTop)
		for _, h := range analytics.TopPerformers(data.Hospitals, dashboardMetric, dashboardTop) {
			fmt.Fprintf(out, "  %d. %s (%s)\n", h.Rank, h.Name, formatNumber(h.Metric(dashboardMetric)))
		}
	}

	fmt.Fprintln(out)
	subRows := [][]string{}
	for _, s := range analytics.SubCountyBreakdown(data.Hospitals, dashboardMetric) {
		subRows = append(subRows, []string{s.SubCounty, strconv.Itoa(s.Hospitals), formatNumber(s.Total), formatNumber(s.Average)})
	}
	printTable([]string{"sub-county", "hospitals", "total", "average"}, subRows)
}

func init() {
	for _, c := range []*cobra.Command{dashboardHospitalCmd, dashboardCountyCmd, dashboardWeeklyCmd} {
		c.Flags().UintVar(&retries, "retries", 0, "Retry failed requests up to N times")
		dashboardCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{dashboardHospitalCmd, dashboardCountyCmd} {
		c.Flags().StringVarP(&dashboardMetric, "metric", "m", "new_clients", "Indicator to chart, e.g. completed4 or anc12")
		c.Flags().BoolVar(&sampleFallback, "sample-fallback", false, "Show bundled sample data when the backend has none")
	}
	dashboardCountyCmd.Flags().IntVar(&dashboardTop, "top", 3, "Number of top performers to list")

	rootCmd.AddCommand(dashboardCmd)
}
