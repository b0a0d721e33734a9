package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/five82/clusterboard/internal/app"
	"github.com/five82/clusterboard/internal/notify"
)

func addSubmit(topLevel *cobra.Command, ro *rootOptions) {
	oo := &OutputOptions{}
	var file string

	cmd := &cobra.Command{
		Use:   "submit [text...]",
		Short: "Submit a comment and report which cluster it joined.",
		Example: `
clusterboard submit "The export button is hard to find"
echo "Dark mode please" | clusterboard submit -f -
clusterboard submit -o json "Search results feel random"
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if err := oo.Validate(); err != nil {
				return err
			}
			text, err := readCommentText(cmd.InOrStdin(), file, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return oo.HandleError(out, ro.withEnv(cmd, func(ctx context.Context, env *app.Env) error {
				return runSubmit(ctx, out, env, oo, text)
			}))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the comment from a file, '-' for stdin.")
	AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func runSubmit(ctx context.Context, out io.Writer, env *app.Env, oo *OutputOptions, text string) error {
	env.Submit.SetDraft(text)
	res, err := env.Submit.Submit(ctx)

	if oo.Structured() {
		if err != nil {
			return err
		}
		return oo.Write(out, res.Response)
	}

	for _, t := range env.Queue.List() {
		printToast(out, t)
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "cluster %s  comment %s\n", res.Response.ClusterID, res.Response.CommentID)
	return nil
}

// readCommentText takes the comment from --file when set, else from args.
func readCommentText(stdin io.Reader, file string, args []string) (string, error) {
	if file == "" {
		return strings.Join(args, " "), nil
	}
	if len(args) > 0 {
		return "", errors.New("pass the comment as arguments or with --file, not both")
	}

	var (
		b   []byte
		err error
	)
	if file == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("read comment: %w", err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

var toastColors = map[notify.Severity]*color.Color{
	notify.SeveritySuccess: color.New(color.FgGreen, color.Bold),
	notify.SeverityError:   color.New(color.FgRed, color.Bold),
	notify.SeverityWarning: color.New(color.FgYellow, color.Bold),
	notify.SeverityInfo:    color.New(color.FgCyan),
}

var toastIcons = map[notify.Severity]string{
	notify.SeveritySuccess: "✓",
	notify.SeverityError:   "✗",
	notify.SeverityWarning: "!",
	notify.SeverityInfo:    "i",
}

func printToast(w io.Writer, t notify.Toast) {
	c, ok := toastColors[t.Severity]
	if !ok {
		c = color.New(color.Reset)
	}
	_, _ = c.Fprintf(w, "%s %s\n", toastIcons[t.Severity], t.Text)
}
