package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/five82/clusterboard/internal/app"
)

func addStats(topLevel *cobra.Command, ro *rootOptions) {
	oo := &OutputOptions{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show backend totals and the similarity threshold.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if err := oo.Validate(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return oo.HandleError(out, ro.withEnv(cmd, func(ctx context.Context, env *app.Env) error {
				stats, err := env.Client.FetchStats(ctx)
				if err != nil {
					return err
				}
				if oo.Structured() {
					return oo.Write(out, stats)
				}
				tbl := uitable.New()
				tbl.Separator = "  "
				tbl.AddRow("Comments", humanize.Comma(int64(stats.TotalComments)))
				tbl.AddRow("Clusters", humanize.Comma(int64(stats.TotalClusters)))
				tbl.AddRow("Avg size", strconv.FormatFloat(stats.AvgClusterSize, 'f', 1, 64))
				tbl.AddRow("Threshold", strconv.FormatFloat(stats.SimilarityThreshold, 'f', 2, 64))
				_, _ = fmt.Fprintln(out, tbl)
				return nil
			}))
		},
	}

	AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
