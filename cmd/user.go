package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/geo-analytics/internal/auth"
	"github.com/sells-group/geo-analytics/internal/config"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts and sessions",
}

// -- user signup --

var userSignupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		confirm, _ := cmd.Flags().GetString("confirm-password")
		if !cmd.Flags().Changed("confirm-password") {
			confirm = password
		}
		return runSignUp(cmd.Context(), os.Stdout, cfg, auth.SignUpRequest{
			Email:           email,
			Password:        password,
			ConfirmPassword: confirm,
		})
	},
}

func runSignUp(ctx context.Context, out io.Writer, c *config.Config, req auth.SignUpRequest) error {
	env, err := initEnv(ctx, c, config.ModeAuth, cliMetrics())
	if err != nil {
		return err
	}
	defer env.Close()

	u, err := env.Auth.SignUp(ctx, req)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Created account %s (%s)\n", u.Email, u.ID)
	return nil
}

// -- user signin --

var userSigninCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in and print a session token",
	Long:  "Prints the session token on stdout so it can be captured, e.g. export " + tokenEnv + "=$(geo-analytics user signin ...).",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		return runSignIn(cmd.Context(), os.Stdout, os.Stderr, cfg, email, password)
	},
}

func runSignIn(ctx context.Context, out, info io.Writer, c *config.Config, email, password string) error {
	env, err := initEnv(ctx, c, config.ModeAuth, cliMetrics())
	if err != nil {
		return err
	}
	defer env.Close()

	sess, err := env.Auth.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, sess.Token)
	_, _ = fmt.Fprintf(info, "Signed in as %s until %s\n", sess.User.Email, sess.ExpiresAt.Format("2006-01-02 15:04 MST"))
	return nil
}

// -- user signout --

var userSignoutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Revoke a session token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSignOut(cmd.Context(), os.Stdout, cfg, resolveToken(cmd))
	},
}

func runSignOut(ctx context.Context, out io.Writer, c *config.Config, token string) error {
	env, err := initEnv(ctx, c, config.ModeAuth, cliMetrics())
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.Auth.SignOut(ctx, token); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "Signed out.")
	return nil
}

func init() {
	for _, c := range []*cobra.Command{userSignupCmd, userSigninCmd} {
		c.Flags().String("email", "", "account email")
		c.Flags().String("password", "", "account password")
		_ = c.MarkFlagRequired("email")
		_ = c.MarkFlagRequired("password")
	}
	userSignupCmd.Flags().String("confirm-password", "", "repeat the password (default: same as --password)")
	addTokenFlag(userSignoutCmd)

	userCmd.AddCommand(userSignupCmd)
	userCmd.AddCommand(userSigninCmd)
	userCmd.AddCommand(userSignoutCmd)
	rootCmd.AddCommand(userCmd)
}
