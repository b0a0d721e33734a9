package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/five82/clusterboard/internal/archive"
	"github.com/five82/clusterboard/internal/config"
)

func addExports(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "exports",
		Short: "Browse exports saved by download or the dashboard.",
	}
	addExportsList(cmd, ro)
	addExportsShow(cmd, ro)
	addExportsDelete(cmd, ro)
	topLevel.AddCommand(cmd)
}

// openArchive loads only the config; archive commands never touch the backend.
func openArchive(ro *rootOptions) (*archive.Archive, error) {
	cfg, err := config.Load(ro.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return archive.Open(cfg.ExportDir)
}

func addExportsList(parent *cobra.Command, ro *rootOptions) {
	oo := &OutputOptions{}
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List archived exports, newest first.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if err := oo.Validate(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			arch, err := openArchive(ro)
			if err != nil {
				return oo.HandleError(out, err)
			}
			entries, err := arch.List(commandContext(cmd))
			if err != nil {
				return oo.HandleError(out, err)
			}
			if oo.Structured() {
				return oo.Write(out, entries)
			}
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(out, "No exports.")
				return nil
			}
			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow("ID", "FILE", "SIZE", "SAVED", "SOURCE")
			for _, e := range entries {
				tbl.AddRow(e.ID, e.Filename, humanize.Bytes(uint64(e.Size)), humanize.Time(e.SavedAt), e.Source)
			}
			_, _ = fmt.Fprintln(out, tbl)
			return nil
		},
	}
	AddOutputArg(cmd, oo)
	parent.AddCommand(cmd)
}

func addExportsShow(parent *cobra.Command, ro *rootOptions) {
	var dest string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Write an archived export to stdout or a file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			arch, err := openArchive(ro)
			if err != nil {
				return err
			}
			entry, data, err := arch.Get(args[0])
			if err != nil {
				return notFound(err, args[0])
			}
			if dest == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			path, err := homedir.Expand(dest)
			if err != nil {
				return fmt.Errorf("expand path: %w", err)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s to %s\n", entry.Filename, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dest, "out", "", "Write to this path instead of stdout.")
	parent.AddCommand(cmd)
}

func addExportsDelete(parent *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Remove archived exports.",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			arch, err := openArchive(ro)
			if err != nil {
				return err
			}
			var errs []error
			for _, id := range args {
				if err := arch.Delete(id); err != nil {
					errs = append(errs, notFound(err, id))
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			}
			return errors.Join(errs...)
		},
	}
	parent.AddCommand(cmd)
}

func notFound(err error, id string) error {
	if errors.Is(err, archive.ErrNotFound) {
		return fmt.Errorf("export %q not found", id)
	}
	return err
}
