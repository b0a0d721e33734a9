package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/five82/clusterboard/internal/app"
)

func addHealth(topLevel *cobra.Command, ro *rootOptions) {
	oo := &OutputOptions{}
	po := app.ProbeOptions{}

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is up, retrying transient failures.",
		Example: `
clusterboard health
clusterboard health --attempts 10 --delay 1s
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if err := oo.Validate(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return oo.HandleError(out, ro.withEnv(cmd, func(ctx context.Context, env *app.Env) error {
				h, err := app.Probe(ctx, env.Client, env.Logger, po)
				if err != nil {
					return fmt.Errorf("backend at %s: %w", env.Client.BaseURL(), err)
				}
				if oo.Structured() {
					return oo.Write(out, h)
				}
				tbl := uitable.New()
				tbl.Separator = "  "
				tbl.AddRow("Backend", env.Client.BaseURL())
				tbl.AddRow("Status", color.New(color.FgGreen, color.Bold).Sprint(h.Status))
				tbl.AddRow("Model", h.Model)
				tbl.AddRow("Embedding size", h.EmbeddingSize)
				tbl.AddRow("Clusters", h.TotalClusters)
				tbl.AddRow("Comments", h.TotalComments)
				_, _ = fmt.Fprintln(out, tbl)
				return nil
			}))
		},
	}

	cmd.Flags().UintVar(&po.Attempts, "attempts", 3, "Give up after this many attempts.")
	cmd.Flags().DurationVar(&po.Delay, "delay", 500*time.Millisecond, "Initial delay between attempts.")
	AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
