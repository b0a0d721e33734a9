// Package commands builds the clusterboard cobra command tree.
package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/clusterboard/internal/app"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	ConfigPath string
	PrefsPath  string
	APIBase    string
	UserID     string
	Poll       time.Duration
	LogLevel   string
}

func (o *rootOptions) appOptions() app.Options {
	return app.Options{
		ConfigPath: o.ConfigPath,
		PrefsPath:  o.PrefsPath,
		APIBase:    o.APIBase,
		UserID:     o.UserID,
		PollEvery:  o.Poll,
		LogLevel:   o.LogLevel,
	}
}

// withEnv bootstraps the shared collaborators for one command invocation.
func (o *rootOptions) withEnv(cmd *cobra.Command, fn func(ctx context.Context, env *app.Env) error) error {
	env, err := app.Bootstrap(o.appOptions())
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(commandContext(cmd), env)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// New returns the root command. Without a subcommand it starts the dashboard.
func New() *cobra.Command {
	ro := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "clusterboard",
		Short: Wrap80("Terminal dashboard for a semantic comment clustering backend."),
		Long: Wrap80("clusterboard shows live comment clusters from the backend, lets you submit " +
			"new comments and see which cluster they join, and wraps the backend's sidebar " +
			"operations as subcommands."),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return app.Run(commandContext(cmd), ro.appOptions())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&ro.ConfigPath, "config", "", "Path to config.toml (default ~/.config/clusterboard/config.toml).")
	flags.StringVar(&ro.PrefsPath, "prefs", "", "Path to prefs.toml (default ~/.config/clusterboard/prefs.toml).")
	flags.StringVar(&ro.APIBase, "api", "", "Backend base URL, overrides config and $CLUSTERBOARD_API_BASE.")
	flags.StringVar(&ro.UserID, "user", "", "User id attached to submitted comments.")
	flags.DurationVar(&ro.Poll, "poll", 0, "Refresh interval for the dashboard, e.g. 5s.")
	flags.StringVar(&ro.LogLevel, "log-level", "info", "Log level: debug, info, warn or error.")

	addCommands(cmd, ro)
	return cmd
}

// addCommands registers every subcommand on topLevel.
func addCommands(topLevel *cobra.Command, ro *rootOptions) {
	addUI(topLevel, ro)
	addSubmit(topLevel, ro)
	addClusters(topLevel, ro)
	addCluster(topLevel, ro)
	addStats(topLevel, ro)
	addRefresh(topLevel, ro)
	addUpload(topLevel, ro)
	addDownload(topLevel, ro)
	addExports(topLevel, ro)
	addSettings(topLevel, ro)
	addAbout(topLevel, ro)
	addHelpText(topLevel, ro)
	addHealth(topLevel, ro)
	addLogs(topLevel, ro)
	addVersion(topLevel)
}
