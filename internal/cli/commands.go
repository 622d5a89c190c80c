package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ancare/ancare/internal/api"
	"github.com/ancare/ancare/internal/common/apperrors"
	"github.com/ancare/ancare/internal/common/httpclient"
	"github.com/ancare/ancare/internal/common/logtrace"
	"github.com/ancare/ancare/internal/session"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	jsonOutput bool
	configFile string
	logLevel   string
)

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)

// app holds what a command needs to talk to the backend. It is built once
// per invocation by preRunHandlePersistents.
type app struct {
	config  *Config
	store   *session.Store
	jar     *session.PersistentJar
	gateway *api.Client
}

var current *app

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ancare [command] [flags]",
	Short: "ancare CLI - antenatal care records from the command line",
	Long: `ancare is a command line client for the ancare maternal health backend.
It signs in with your hospital account and lets you manage patients and
appointments and view the hospital and county ANC dashboards.

Examples:
  # Point the CLI at a backend
  ancare config --server http://localhost:8000

  # Sign in
  ancare login -u nurse1 -p secret

  # List patients registered this month
  ancare patients list --filter this_month

  # Compare hospitals in your county by 4th ANC visit
  ancare dashboard county --metric completed4`,
	PersistentPreRunE: preRunHandlePersistents,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newVersionCmd())
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true // Prevent Cobra from printing the error
	rootCmd.SilenceUsage = true  // Prevent Cobra from printing usage on error

	ctx := logtrace.WithRequestID(context.Background(), logtrace.NewRequestID())
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		if errors.Is(err, ErrAlreadyHandled) {
			os.Exit(1)
		}
		printError(err)
		os.Exit(1)
	}
}

// printError reports err on stderr, or as JSON on stdout with --json. The
// status of API and application errors is included, and so are the causes
// attached to application errors.
func printError(err error) {
	status := apperrors.StatusCode(err)
	var apiErr *httpclient.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.StatusCode
	}
	details := ""
	var appErr apperrors.Error
	if errors.As(err, &appErr) {
		if all := appErr.ErrorAll(); all != appErr.Error() {
			details = all
		}
	}

	if jsonOutput {
		kv := map[string]any{
			"error": err.Error(),
		}
		if status != 0 {
			kv["status"] = status
		}
		if details != "" {
			kv["details"] = details
		}
		printJSON(kv)
		return
	}
	if status != 0 {
		errorLabel.Fprintf(errOut, "Error (%d): %v\n", status, err)
	} else {
		errorLabel.Fprintf(errOut, "Error: %v\n", err)
	}
	if details != "" {
		fmt.Fprintf(errOut, "  %s\n", details)
	}
}

// preRunHandlePersistents loads configuration and, for commands that talk to
// the backend, restores the session before command execution
func preRunHandlePersistents(cmd *cobra.Command, args []string) error {
	if configFile == "" {
		var err error
		configFile, err = GetDefaultConfigPath()
		if err != nil {
			return err
		}
	}

	// no error if .env doesn't exist
	_ = godotenv.Load()

	if err := LoadConfig(configFile); err != nil {
		return err
	}
	cfg := GetConfig()

	level := logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	if err := logtrace.SetLevel(level); err != nil {
		return err
	}

	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" || c.Name() == "version" {
			return nil
		}
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	current = a
	return nil
}

// newApp opens the session file and builds the gateway on top of it.
func newApp(ctx context.Context, cfg *Config) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	storage := session.NewFileStorage(cfg.SessionFile)

	store := session.NewStore(storage)
	if err := store.Initialize(ctx); err != nil {
		return nil, err
	}

	jar, err := session.NewPersistentJar(storage, cfg.GetServerURL())
	if err != nil {
		return nil, err
	}

	client := httpclient.NewClient(cfg, httpclient.ClientOptions{Jar: jar})
	return &app{
		config:  cfg,
		store:   store,
		jar:     jar,
		gateway: api.New(client, store),
	}, nil
}

// gateway returns the API client of the running command.
func gateway() *api.Client {
	return current.gateway
}

// requireLogin fails fast when no user is cached locally.
func requireLogin() error {
	if !current.store.IsAuthenticated() {
		return errors.New("not logged in. Sign in with \"ancare login\" first")
	}
	return nil
}

// newVersionCmd creates and returns a new version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of the ancare CLI",
		Run: func(cmd *cobra.Command, args []string) {
			if jsonOutput {
				kv := map[string]string{
					"version":     getCLIVersion(),
					"config_file": configFile,
				}
				printJSON(kv)
			} else {
				fmt.Fprintf(out, "ancare CLI %s\n", getCLIVersion())
				fmt.Fprintf(out, "Config file: %s\n", configFile)
			}
		},
	}
}

// printJSON prints the given value as JSON to stdout
func printJSON(data any) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintln(out, string(jsonData))
}

// getCLIVersion returns the current CLI version
func getCLIVersion() string {
	return "v0.1.0"
}
