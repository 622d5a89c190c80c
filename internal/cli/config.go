package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is the default name of the config file
	DefaultConfigFile = "config.yaml"
	// DefaultSessionFile holds the cached user and cookies, next to the config
	DefaultSessionFile = "session.json"
	// DefaultServerURL is where the backend listens in development
	DefaultServerURL = "http://localhost:8000"
	// ConfigVersion is written into new config files
	ConfigVersion = "0.1.0"

	configVersionConstraint = "~0.1"
)

// Config represents the configuration of the ancare CLI. Values from the
// file can be overridden with ANCARE_* environment variables.
type Config struct {
	// Version of the configuration file format
	Version string `yaml:"version" toml:"version"`
	// ServerURL is the base URL of the ancare backend
	ServerURL string `yaml:"server_url" toml:"server_url" env:"ANCARE_SERVER_URL, overwrite"`
	// SessionFile stores the signed-in user and the session cookie
	SessionFile string `yaml:"session_file,omitempty" toml:"session_file" env:"ANCARE_SESSION_FILE, overwrite"`
	// RequestTimeout bounds every request; zero waits indefinitely
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty" toml:"request_timeout" env:"ANCARE_REQUEST_TIMEOUT, overwrite"`
	// LogLevel is a zerolog level name
	LogLevel string `yaml:"log_level,omitempty" toml:"log_level" env:"ANCARE_LOG_LEVEL, overwrite"`
}

var config *Config

// GetDefaultConfigPath returns the default path for the config file
// It uses the OS-specific config directory (e.g., ~/.config/ancare on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "ancare", DefaultConfigFile), nil
}

// LoadConfig loads the configuration from file, applies environment overrides
// and fills in defaults. A missing file is not an error.
func LoadConfig(file string) error {
	cfg, err := readConfig(file)
	if err != nil {
		return err
	}
	config = cfg
	return nil
}

func readConfig(file string) (*Config, error) {
	if file == "" {
		var err error
		file, err = GetDefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	c := &Config{}
	content, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := decodeConfig(file, content, c); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	if err := envconfig.Process(context.Background(), c); err != nil {
		return nil, fmt.Errorf("unable to read environment: %w", err)
	}

	if c.Version == "" {
		c.Version = ConfigVersion
	}
	if err := checkConfigVersion(c.Version); err != nil {
		return nil, err
	}
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	c.ServerURL = MorphServer(c.ServerURL)
	if c.SessionFile == "" {
		c.SessionFile = filepath.Join(filepath.Dir(file), DefaultSessionFile)
	}
	if c.RequestTimeout < 0 {
		return nil, errors.New("request_timeout cannot be negative")
	}
	return c, nil
}

func decodeConfig(file string, content []byte, c *Config) error {
	if strings.EqualFold(filepath.Ext(file), ".toml") {
		if _, err := toml.Decode(string(content), c); err != nil {
			return fmt.Errorf("unable to parse config file: %w", err)
		}
		return nil
	}
	if err := yaml.Unmarshal(content, c); err != nil {
		return fmt.Errorf("unable to parse config file: %w", err)
	}
	return nil
}

func checkConfigVersion(version string) error {
	constraint, err := semver.NewConstraint(configVersionConstraint)
	if err != nil {
		return err
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid config version %q: %w", version, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("unsupported config version %s, expected %s", version, configVersionConstraint)
	}
	return nil
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	return config
}

// WriteConfig writes the configuration to file in YAML, or TOML when the file
// has a .toml extension.
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}

	err := os.MkdirAll(filepath.Dir(file), 0o700)
	if err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	var data []byte
	if strings.EqualFold(filepath.Ext(file), ".toml") {
		var b strings.Builder
		if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
			return fmt.Errorf("unable to generate configuration: %w", err)
		}
		data = []byte(b.String())
	} else {
		data, err = yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("unable to generate configuration: %w", err)
		}
	}

	err = os.WriteFile(file, data, os.FileMode(0600))
	if err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}

	return nil
}

// MorphServer ensures the server URL is properly formatted
// Adds http:// prefix if missing and removes trailing slashes
func MorphServer(server string) string {
	if server == "" {
		return server
	}

	server = strings.TrimRight(strings.TrimSpace(server), "/")

	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "http://" + server
	}

	return server
}

// GetServerURL returns the properly formatted server URL
func (cfg *Config) GetServerURL() string {
	return MorphServer(cfg.ServerURL)
}

// GetRequestTimeout returns the per-request timeout, zero for none
func (cfg *Config) GetRequestTimeout() time.Duration {
	return cfg.RequestTimeout
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long:  `Manage CLI configuration settings like the backend server and request timeout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serverFlag, _ := cmd.Flags().GetString("server")
		timeoutFlag, _ := cmd.Flags().GetDuration("timeout")
		if serverFlag != "" || cmd.Flags().Changed("timeout") {
			return setServerConfig(serverFlag, timeoutFlag, cmd.Flags().Changed("timeout"))
		}

		return cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig(configFile)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(map[string]any{
				"config_file":     configFile,
				"version":         cfg.Version,
				"server_url":      cfg.ServerURL,
				"session_file":    cfg.SessionFile,
				"request_timeout": cfg.RequestTimeout.String(),
				"log_level":       cfg.LogLevel,
			})
			return nil
		}
		timeout := "none"
		if cfg.RequestTimeout > 0 {
			timeout = cfg.RequestTimeout.String()
		}
		printFields([][2]string{
			{"Config file", configFile},
			{"Server", cfg.ServerURL},
			{"Session file", cfg.SessionFile},
			{"Request timeout", timeout},
			{"Log level", cfg.LogLevel},
		})
		return nil
	},
}

// configClearCmd represents the config clear command
var configClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the cached user and session cookie",
	Long: `Forget the cached user and the session cookie without contacting the server.
This is useful when the server is unreachable or the cached session is stale.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig(configFile)
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if err := errors.Join(a.store.Logout(), a.jar.ClearCookies()); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}

		if jsonOutput {
			printJSON(map[string]int{"result": 1})
		} else {
			okLabel.Fprintln(out, "✓ Local session cleared")
		}
		return nil
	},
}

func init() {
	configCmd.Flags().String("server", "", "Set the backend URL (e.g., http://localhost:8000)")
	configCmd.Flags().Duration("timeout", 0, "Set the per-request timeout (e.g., 30s, 0 for none)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configClearCmd)
	rootCmd.AddCommand(configCmd)
}

// setServerConfig updates the config file, keeping fields not being set.
func setServerConfig(server string, timeout time.Duration, setTimeout bool) error {
	cfg := &Config{}
	if content, err := os.ReadFile(configFile); err == nil {
		if err := decodeConfig(configFile, content, cfg); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("unable to read config file: %w", err)
	}

	cfg.Version = ConfigVersion
	if server != "" {
		cfg.ServerURL = MorphServer(server)
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	if setTimeout {
		if timeout < 0 {
			return errors.New("timeout cannot be negative")
		}
		cfg.RequestTimeout = timeout
	}

	if err := cfg.WriteConfig(configFile); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]string{
			"server":      cfg.ServerURL,
			"config_file": configFile,
		})
	} else {
		fmt.Fprintf(out, "Server configured: %s\n", cfg.ServerURL)
		fmt.Fprintf(out, "Config file: %s\n", configFile)
	}

	return nil
}
