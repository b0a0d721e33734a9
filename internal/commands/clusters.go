package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/five82/clusterboard/internal/api"
	"github.com/five82/clusterboard/internal/app"
	"github.com/five82/clusterboard/internal/view"
)

const chartWidth = 40

type clustersOptions struct {
	Sort   string
	Search string
	Limit  int
	Chart  bool
}

func addClusters(topLevel *cobra.Command, ro *rootOptions) {
	oo := &OutputOptions{}
	co := &clustersOptions{}

	cmd := &cobra.Command{
		Use:     "clusters",
		Aliases: []string{"ls"},
		Short:   "List clusters, largest first.",
		Example: `
clusterboard clusters
clusterboard clusters --sort by-recency --search checkout
clusterboard clusters --chart
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if err := oo.Validate(); err != nil {
				return err
			}
			mode, err := view.ParseSortMode(co.Sort)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return oo.HandleError(out, ro.withEnv(cmd, func(ctx context.Context, env *app.Env) error {
				if err := env.Store.Refresh(ctx); err != nil {
					return err
				}
				st := view.State{}.WithSort(mode).WithSearch(co.Search)
				projected := view.Project(env.Store.Current().Clusters, st)
				if co.Limit > 0 && len(projected) > co.Limit {
					projected = projected[:co.Limit]
				}

				if oo.Structured() {
					return oo.Write(out, projected)
				}
				if co.Chart {
					printChart(out, view.Distribution(projected))
					return nil
				}
				printClusters(out, projected)
				return nil
			}))
		},
	}

	cmd.Flags().StringVar(&co.Sort, "sort", view.SortBySize.String(), "Sort order: by-size or by-recency.")
	cmd.Flags().StringVarP(&co.Search, "search", "s", "", "Only show clusters whose text contains this, case-insensitively.")
	cmd.Flags().IntVarP(&co.Limit, "limit", "n", 0, "Show at most this many clusters.")
	cmd.Flags().BoolVar(&co.Chart, "chart", false, "Print the size distribution as bars.")
	AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func printClusters(w io.Writer, clusters []api.Cluster) {
	if len(clusters) == 0 {
		_, _ = fmt.Fprintln(w, "No clusters.")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.AddRow("ID", "COMMENTS", "UPDATED", "TEXT")
	for _, c := range clusters {
		tbl.AddRow(c.ID, c.CommentCount, relativeTime(c.ParsedUpdatedAt()), strings.Join(strings.Fields(c.RepresentativeText), " "))
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func printChart(w io.Writer, series view.Series) {
	if series.Len() == 0 {
		_, _ = fmt.Fprintln(w, "No data.")
		return
	}
	peak := series.Max()
	bar := color.New(color.FgCyan)
	tbl := uitable.New()
	tbl.Separator = "  "
	for i, label := range series.Labels {
		n := 0
		if peak > 0 {
			n = series.Counts[i] * chartWidth / peak
		}
		if series.Counts[i] > 0 && n == 0 {
			n = 1
		}
		tbl.AddRow(label, bar.Sprint(strings.Repeat("█", n)), series.Counts[i])
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func addCluster(topLevel *cobra.Command, ro *rootOptions) {
	oo := &OutputOptions{}
	var width int

	cmd := &cobra.Command{
		Use:   "cluster <id>",
		Short: "Show one cluster with all of its comments.",
		Example: `
clusterboard cluster 3f2a
clusterboard cluster 3f2a -o yaml
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if err := oo.Validate(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return oo.HandleError(out, ro.withEnv(cmd, func(ctx context.Context, env *app.Env) error {
				c, err := env.Client.FetchCluster(ctx, args[0])
				if err != nil {
					if api.IsNotFound(err) {
						return fmt.Errorf("cluster %q not found", args[0])
					}
					return err
				}
				if oo.Structured() {
					return oo.Write(out, c)
				}
				printCluster(out, *c, width)
				return nil
			}))
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", 80, "Wrap comment text at this many columns.")
	AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func printCluster(w io.Writer, c api.Cluster, width int) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	_, _ = bold.Fprintln(w, strings.Join(strings.Fields(c.RepresentativeText), " "))
	_, _ = faint.Fprintf(w, "%s · %s · created %s · updated %s\n\n",
		c.ID, commentCount(c.CommentCount),
		relativeTime(c.ParsedCreatedAt()), relativeTime(c.ParsedUpdatedAt()))

	wrap := max(width-4, 20)
	for _, cm := range c.Comments {
		_, _ = fmt.Fprintln(w, indent.String(wordwrap.String(cm.Text, wrap), 2))
		author := cm.UserID
		if author == "" {
			author = "anonymous"
		}
		_, _ = faint.Fprintf(w, "  └ %s · %s\n", author, relativeTime(cm.ParsedTimestamp()))
	}
}

func commentCount(n int) string {
	if n == 1 {
		return "1 comment"
	}
	return humanize.Comma(int64(n)) + " comments"
}

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}
