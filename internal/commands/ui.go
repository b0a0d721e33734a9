package commands

import (
	"github.com/spf13/cobra"

	"github.com/five82/clusterboard/internal/app"
)

func addUI(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive dashboard.",
		Example: `
clusterboard ui
clusterboard ui --api http://feedback.internal:5000 --poll 10s
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return app.Run(commandContext(cmd), ro.appOptions())
		},
	}
	topLevel.AddCommand(cmd)
}
