package cli

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"budgetbuddy/internal/records/remote"
)

type credentialFlags struct {
	email    string
	password string
	name     string
}

func (f *credentialFlags) bind(cmd *cobra.Command, withName bool) {
	cmd.Flags().StringVarP(&f.email, "email", "e", "", "Account e-mail")
	cmd.Flags().StringVarP(&f.password, "password", "p", "", "Account password (prompted when omitted)")
	if withName {
		cmd.Flags().StringVarP(&f.name, "name", "n", "", "Display name")
	}
	_ = cmd.MarkFlagRequired("email")
}

func (f *credentialFlags) credentials() (remote.Credentials, error) {
	pw := f.password
	if pw == "" {
		var err error
		pw, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password")
		if err != nil {
			return remote.Credentials{}, err
		}
	}
	return remote.Credentials{
		Email:    strings.TrimSpace(f.email),
		Password: pw,
		Name:     strings.TrimSpace(f.name),
	}, nil
}

func (app *App) loginCmd() *cobra.Command {
	var f credentialFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cr, err := f.credentials()
			if err != nil {
				return err
			}
			if err := app.withStatus("Signing in", func() error {
				return app.env.Session.Login(cmd.Context(), cr)
			}); err != nil {
				return err
			}
			app.console.Success("Signed in as %s", cr.Email)
			return nil
		},
	}
	f.bind(cmd, false)
	return cmd
}

func (app *App) registerCmd() *cobra.Command {
	var f credentialFlags
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cr, err := f.credentials()
			if err != nil {
				return err
			}
			if err := app.withStatus("Creating account", func() error {
				return app.env.Session.Register(cmd.Context(), cr)
			}); err != nil {
				return err
			}
			app.console.Success("Account created for %s", cr.Email)
			return nil
		},
	}
	f.bind(cmd, true)
	return cmd
}

func (app *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.env.Session.Logout(); err != nil {
				return err
			}
			app.console.Success("Signed out")
			return nil
		},
	}
}
