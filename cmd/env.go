package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geo-analytics/internal/auth"
	"github.com/sells-group/geo-analytics/internal/config"
	"github.com/sells-group/geo-analytics/internal/monitoring"
	"github.com/sells-group/geo-analytics/internal/report"
	"github.com/sells-group/geo-analytics/internal/store"
)

// tokenEnv is read when --token is not given.
const tokenEnv = "GEOANALYTICS_TOKEN"

// appEnv holds the services a command needs.
type appEnv struct {
	Store   store.Store
	Auth    *auth.Service
	Reports *report.Service
	Metrics *monitoring.Metrics
}

// Close releases the store.
func (e *appEnv) Close() {
	if e.Store != nil {
		e.Store.Close() //nolint:errcheck
	}
}

// initEnv validates config for mode, opens and migrates the store and builds
// the services. The auth service is only built for auth and serve modes.
func initEnv(ctx context.Context, c *config.Config, mode string, metrics *monitoring.Metrics) (*appEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, c.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}

	env := &appEnv{
		Store:   st,
		Metrics: metrics,
		Reports: report.NewService(st, c.Analysis, nil, metrics),
	}
	if mode == config.ModeAuth || mode == config.ModeServe {
		env.Auth, err = auth.NewService(st, c.Auth, nil, metrics)
		if err != nil {
			env.Close()
			return nil, err
		}
	}
	return env, nil
}

// authenticate resolves token to an identity and attaches it to ctx.
func (e *appEnv) authenticate(ctx context.Context, token string) (context.Context, error) {
	if token == "" {
		return nil, eris.Errorf("a session token is required (--token or %s)", tokenEnv)
	}
	id, err := e.Auth.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return auth.WithIdentity(ctx, id), nil
}

// resolveToken returns --token, falling back to the environment.
func resolveToken(cmd *cobra.Command) string {
	if t, _ := cmd.Flags().GetString("token"); t != "" {
		return t
	}
	return os.Getenv(tokenEnv)
}

func addTokenFlag(cmd *cobra.Command) {
	cmd.Flags().String("token", "", "session token from `user signin` (default $"+tokenEnv+")")
}
