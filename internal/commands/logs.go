package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/five82/clusterboard/internal/config"
	"github.com/five82/clusterboard/internal/logtail"
)

func addLogs(topLevel *cobra.Command, ro *rootOptions) {
	var (
		lines   int
		level   string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the tail of the clusterboard log file.",
		Example: `
clusterboard logs
clusterboard logs -n 200 --level warn
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			minLevel, err := logtail.ParseLevel(level)
			if err != nil {
				return err
			}
			cfg, err := config.Load(ro.ConfigPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out, err := logtail.ReadLevel(cfg.LogFile, lines, minLevel)
			if err != nil {
				return err
			}
			if len(out) == 0 {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "no log entries in %s\n", cfg.LogFile)
				return nil
			}

			if noColor {
				color.NoColor = true
			}
			w := cmd.OutOrStdout()
			for _, line := range out {
				_, _ = fmt.Fprintln(w, logtail.Colorize(line))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show, 0 for all.")
	cmd.Flags().StringVar(&level, "level", "", "Only show entries at or above this level.")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output.")
	topLevel.AddCommand(cmd)
}
