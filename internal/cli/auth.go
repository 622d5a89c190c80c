package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ancare/ancare/internal/api"
	"github.com/ancare/ancare/internal/session"
	"github.com/spf13/cobra"
)

var (
	loginUser     string
	loginPassword string
	registerFile  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the ancare backend",
	Long: `Sign in with your username and password. The session cookie and your
user profile are kept in the session file so later commands stay signed in.

Example:
  ancare login -u nurse1 -p secret
  echo secret | ancare login -u nurse1 -p -`,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	password := loginPassword
	if password == "-" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read password from stdin: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	resp, err := gateway().Login(cmd.Context(), api.Credentials{
		Username: loginUser,
		Password: password,
	})
	if err != nil {
		return err
	}

	if resp.User == nil {
		// e.g. staff accounts still waiting for approval
		if jsonOutput {
			printJSON(resp.Raw)
		} else {
			fmt.Fprintf(out, "Login accepted but no user was returned: %s\n", string(resp.Raw))
		}
		return nil
	}

	if jsonOutput {
		printJSON(map[string]any{
			"status": "success",
			"user":   resp.User,
		})
	} else {
		okLabel.Fprintln(out, "✓ Login successful")
		printUser(resp.User)
	}
	return nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := gateway().Logout(cmd.Context())
		if jarErr := current.jar.ClearCookies(); jarErr != nil {
			return errors.Join(err, fmt.Errorf("failed to clear session cookie: %w", jarErr))
		}
		if err != nil {
			// local session is already cleared
			return fmt.Errorf("signed out locally, but the server reported: %w", err)
		}
		if jsonOutput {
			printJSON(map[string]int{"result": 1})
		} else {
			okLabel.Fprintln(out, "✓ Logged out")
		}
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, ok := current.store.CurrentUser()
		if !ok {
			if jsonOutput {
				printJSON(map[string]any{"authenticated": false})
				return nil
			}
			fmt.Fprintln(out, "Not logged in")
			return nil
		}
		if jsonOutput {
			printJSON(map[string]any{"authenticated": true, "user": user})
			return nil
		}
		printUser(user)
		return nil
	},
}

func printUser(user session.User) {
	p, err := user.Profile()
	if err != nil {
		fmt.Fprintln(out, user.DisplayName())
		return
	}
	fields := [][2]string{
		{"User", user.DisplayName()},
		{"Username", p.Username},
		{"Role", p.UserType},
	}
	if p.HospitalName != "" {
		fields = append(fields, [2]string{"Hospital", p.HospitalName})
	}
	printFields(fields)
}

var registerCmd = &cobra.Command{
	Use:   "register -f FILE",
	Short: "Create a user account from a YAML or JSON file",
	Long: `Create a user account. The file holds the registration fields, for example:

  username: nurse1
  password: {{ .ENV.NURSE_PASSWORD }}
  email: nurse1@example.org
  user_type: nurse`,
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := LoadBody(registerFile)
		if err != nil {
			return err
		}
		resp, err := gateway().Register(cmd.Context(), body)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(resp)
			return nil
		}
		okLabel.Fprintln(out, "✓ Registration submitted")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUser, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password, or - to read it from stdin")
	loginCmd.MarkFlagRequired("username")

	registerCmd.Flags().StringVarP(&registerFile, "file", "f", "", "Registration file (YAML or JSON)")
	registerCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(registerCmd)
}
