package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/five82/clusterboard/internal/api"
	"github.com/five82/clusterboard/internal/app"
)

func addRefresh(topLevel *cobra.Command, ro *rootOptions) {
	oo := &OutputOptions{}
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Ask the backend to reload its data.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if err := oo.Validate(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return oo.HandleError(out, ro.withEnv(cmd, func(ctx context.Context, env *app.Env) error {
				res, err := env.Client.SidebarRefresh(ctx)
				if err != nil {
					return err
				}
				if oo.Structured() {
					return oo.Write(out, res)
				}
				_, _ = color.New(color.FgGreen).Fprintf(out, "✓ %s %s\n", res.Status, res.Timestamp)
				return nil
			}))
		},
	}
	AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addUpload(topLevel *cobra.Command, ro *rootOptions) {
	oo := &OutputOptions{}
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a data file to the backend.",
		Example: `
clusterboard upload ~/exports/comments.csv
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if err := oo.Validate(); err != nil {
				return err
			}
			path, err := homedir.Expand(args[0])
			if err != nil {
				return fmt.Errorf("expand path: %w", err)
			}
			out := cmd.OutOrStdout()
			return oo.HandleError(out, ro.withEnv(cmd, func(ctx context.Context, env *app.Env) error {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open upload: %w", err)
				}
				defer func() { _ = f.Close() }()

				res, err := env.Client.UploadFile(ctx, path, f)
				if err != nil {
					return err
				}
				env.Logger.Info("uploaded file", "filename", res.Filename, "status", res.Status)
				if oo.Structured() {
					return oo.Write(out, res)
				}
				msg := res.Message
				if msg == "" {
					msg = "uploaded " + res.Filename
				}
				_, _ = color.New(color.FgGreen).Fprintf(out, "✓ %s\n", msg)
				return nil
			}))
		},
	}
	AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addDownload(topLevel *cobra.Command, ro *rootOptions) {
	oo := &OutputOptions{}
	var dest string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the clustered export and keep a copy in the local archive.",
		Example: `
clusterboard download
clusterboard download --out ~/clusters.csv
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if err := oo.Validate(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return oo.HandleError(out, ro.withEnv(cmd, func(ctx context.Context, env *app.Env) error {
				arch, err := env.Archive()
				if err != nil {
					return err
				}
				dl, err := env.Client.Download(ctx)
				if err != nil {
					return err
				}
				entry, err := arch.Save(dl.Filename, dl.ContentType, env.Client.BaseURL(), dl.Data)
				if err != nil {
					return err
				}
				env.Logger.Info("export saved", "id", entry.ID, "filename", entry.Filename, "bytes", entry.Size)

				if dest != "" {
					path, err := homedir.Expand(dest)
					if err != nil {
						return fmt.Errorf("expand path: %w", err)
					}
					if err := os.WriteFile(path, dl.Data, 0o644); err != nil {
						return fmt.Errorf("write export: %w", err)
					}
				}

				if oo.Structured() {
					return oo.Write(out, entry)
				}
				_, _ = color.New(color.FgGreen).Fprintf(out, "✓ saved %s (%s) as %s\n",
					entry.Filename, humanize.Bytes(uint64(entry.Size)), entry.ID)
				return nil
			}))
		},
	}

	cmd.Flags().StringVar(&dest, "out", "", "Also write the export to this path.")
	AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addSettings(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read or change backend settings.",
	}
	addSettingsGet(cmd, ro)
	addSettingsSet(cmd, ro)
	topLevel.AddCommand(cmd)
}

func addSettingsGet(parent *cobra.Command, ro *rootOptions) {
	oo := &OutputOptions{}
	cmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Print all settings, or one key.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if err := oo.Validate(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return oo.HandleError(out, ro.withEnv(cmd, func(ctx context.Context, env *app.Env) error {
				settings, err := env.Client.FetchSettings(ctx)
				if err != nil {
					return err
				}
				if len(args) == 1 {
					v, ok := settings[args[0]]
					if !ok {
						return fmt.Errorf("unknown setting %q", args[0])
					}
					if oo.Structured() {
						return oo.Write(out, v)
					}
					_, _ = fmt.Fprintln(out, formatSetting(v))
					return nil
				}
				if oo.Structured() {
					return oo.Write(out, settings)
				}
				printSettings(out, settings)
				return nil
			}))
		},
	}
	AddOutputArg(cmd, oo)
	parent.AddCommand(cmd)
}

func addSettingsSet(parent *cobra.Command, ro *rootOptions) {
	oo := &OutputOptions{}
	cmd := &cobra.Command{
		Use:   "set <key=value>...",
		Short: "Change one or more settings.",
		Long: Wrap80("Values are parsed as YAML scalars, so 0.8 is a number, true is a " +
			"boolean and anything else is a string. Unchanged keys are sent back as they were."),
		Example: `
clusterboard settings set similarity_threshold=0.8
clusterboard settings set model=all-MiniLM-L6-v2 auto_refresh=true
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if err := oo.Validate(); err != nil {
				return err
			}
			changes, err := parseAssignments(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return oo.HandleError(out, ro.withEnv(cmd, func(ctx context.Context, env *app.Env) error {
				settings, err := env.Client.FetchSettings(ctx)
				if err != nil {
					return err
				}
				if settings == nil {
					settings = api.Settings{}
				}
				for k, v := range changes {
					settings[k] = v
				}
				res, err := env.Client.UpdateSettings(ctx, settings)
				if err != nil {
					return err
				}
				env.Logger.Info("settings updated", "keys", len(changes), "status", res.Status)
				if oo.Structured() {
					return oo.Write(out, res)
				}
				_, _ = color.New(color.FgGreen).Fprintf(out, "✓ settings %s\n", res.Status)
				if len(res.Settings) > 0 {
					printSettings(out, res.Settings)
				}
				return nil
			}))
		},
	}
	AddOutputArg(cmd, oo)
	parent.AddCommand(cmd)
}

// parseAssignments turns key=value arguments into typed values.
func parseAssignments(args []string) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, arg := range args {
		k, raw, ok := strings.Cut(arg, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid setting %q, want key=value", arg)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
			v = raw
		}
		out[k] = v
	}
	return out, nil
}

func printSettings(w io.Writer, settings api.Settings) {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	for _, k := range keys {
		tbl.AddRow(k, formatSetting(settings[k]))
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func formatSetting(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case nil:
		return "null"
	case map[string]any, []any:
		b, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return strings.TrimSpace(string(b))
	default:
		return fmt.Sprint(v)
	}
}

func addAbout(topLevel *cobra.Command, ro *rootOptions) {
	topLevel.AddCommand(textCommand(ro, "about", "Print the backend's about text.",
		func(ctx context.Context, c *api.Client) (string, error) { return c.FetchAbout(ctx) }))
}

func addHelpText(topLevel *cobra.Command, ro *rootOptions) {
	topLevel.AddCommand(textCommand(ro, "help-text", "Print the backend's help text.",
		func(ctx context.Context, c *api.Client) (string, error) { return c.FetchHelp(ctx) }))
}

func textCommand(ro *rootOptions, use, short string, fetch func(context.Context, *api.Client) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return ro.withEnv(cmd, func(ctx context.Context, env *app.Env) error {
				text, err := fetch(ctx, env.Client)
				if err != nil {
					return err
				}
				text = strings.TrimSpace(text)
				if text == "" {
					return errors.New("backend returned no text")
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
}
