package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// StatusResponse is what "ancare status" reports.
type StatusResponse struct {
	Server      string `json:"server"`
	Reachable   bool   `json:"reachable"`
	Latency     string `json:"latency,omitempty"`
	Hospitals   int    `json:"hospitals"`
	Session     string `json:"session"`
	User        string `json:"user,omitempty"`
	Error       string `json:"error,omitempty"`
	SessionFile string `json:"session_file"`
}

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the backend and the local session",
	Long: `Check that the backend answers and show the local session state. The
backend is checked with the public hospital list.

Examples:
  # Get status
  ancare status

  # Get status in JSON format
  ancare status -j`,
	RunE: getStatus,
}

// getStatus checks the server and reports the cached session
func getStatus(cmd *cobra.Command, args []string) error {
	status := StatusResponse{
		Server:      current.config.GetServerURL(),
		Session:     current.store.State().String(),
		SessionFile: current.config.SessionFile,
	}
	if user, ok := current.store.CurrentUser(); ok {
		status.User = user.DisplayName()
	}

	start := time.Now()
	hospitals, err := gateway().GetHospitals(cmd.Context())
	if err != nil {
		status.Error = "Unable to connect to server: " + err.Error()
	} else {
		status.Reachable = true
		status.Latency = time.Since(start).Round(time.Millisecond).String()
		status.Hospitals = len(hospitals)
	}

	if jsonOutput {
		printJSON(map[string]any{
			"version_cli": getCLIVersion(),
			"value":       status,
		})
	} else {
		fmt.Fprintf(out, "ancare CLI %s\n", getCLIVersion())
		printStatusPretty(status)
	}
	if !status.Reachable {
		return ErrAlreadyHandled
	}
	return nil
}

// printStatusPretty prints the status information in a human-readable format
func printStatusPretty(status StatusResponse) {
	fields := [][2]string{{"Server", status.Server}}
	if status.Reachable {
		fields = append(fields,
			[2]string{"Reachable", "yes (" + status.Latency + ")"},
			[2]string{"Hospitals", strconv.Itoa(status.Hospitals)},
		)
	} else {
		fields = append(fields, [2]string{"Reachable", "no"})
	}
	fields = append(fields, [2]string{"Session", status.Session})
	if status.User != "" {
		fields = append(fields, [2]string{"User", status.User})
	}
	fields = append(fields, [2]string{"Session file", status.SessionFile})
	printFields(fields)
	if status.Error != "" {
		errorLabel.Fprintln(out, status.Error)
	}
}

// init initializes the status command and adds it to the root command
func init() {
	rootCmd.AddCommand(statusCmd)
}
