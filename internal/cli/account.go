package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/moodlog/pkg/types"
)

// sessionView is the session as printed; the token stays private.
type sessionView struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	SignedIn string `json:"signed_in_at"`
}

func viewOf(s *types.Session) sessionView {
	return sessionView{
		ID:       s.ID,
		Email:    s.Email,
		Name:     s.Name,
		SignedIn: s.IssuedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (a *app) printSession(cmd *cobra.Command, s *types.Session, greeting string) error {
	if a.flags.jsonMode {
		return printJSON(cmd, viewOf(s))
	}
	return printLines(cmd, fmt.Sprintf("%s, %s! Signed in as %s.", greeting, s.Name, s.Email))
}

func newSignupCmd(a *app) *cobra.Command {
	var email, name string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Long: "Create an account on this device. The password is read from stdin.\n\n" +
			"Example:\n  moodlog signup --email ada@example.com --name Ada",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := readSecret(cmd, "Password: ")
			if err != nil {
				return err
			}
			session, err := a.accounts.Register(cmd.Context(), email, secret, name)
			if err != nil {
				return accountError(err)
			}
			return a.printSession(cmd, session, "Welcome")
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to an existing account",
		Long:  "Sign in with email and password. The password is read from stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := readSecret(cmd, "Password: ")
			if err != nil {
				return err
			}
			session, err := a.accounts.Authenticate(cmd.Context(), email, secret)
			if err != nil {
				return accountError(err)
			}
			return a.printSession(cmd, session, "Welcome back")
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.accounts.EndSession(cmd.Context()); err != nil {
				return sysError(err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd, map[string]bool{"signed_in": false})
			}
			return printLines(cmd, "Signed out.")
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd, viewOf(s))
			}
			return printLines(cmd, fmt.Sprintf("%s <%s>", s.Name, s.Email))
		},
	}
}

// accountError keeps credential problems as user errors and everything else
// as system errors.
func accountError(err error) error {
	switch {
	case errors.Is(err, types.ErrDuplicateAccount),
		errors.Is(err, types.ErrInvalidCredentials),
		errors.Is(err, types.ErrInvalidAccount):
		return userError(err)
	}
	return sysError(err)
}
