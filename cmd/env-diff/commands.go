package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alchemmist/env-diff/internal/app"
	"github.com/alchemmist/env-diff/internal/config"
	"github.com/alchemmist/env-diff/internal/version"
)

const snapshotArgs = "INITIAL FINAL"

func newGencodeCmd(g *globals) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "gencode " + snapshotArgs,
		Short: "Print bash code that turns the INITIAL environment into the FINAL one",
		Long: `Print bash code that turns the INITIAL environment into the FINAL one.

INITIAL and FINAL are snapshot directories, names of snapshots in the store,
or "` + app.LatestAlias + `" for the newest stored snapshot.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.app()
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := a.Generate(cmd.Context(), args[0], args[1], &buf); err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the script to FILE instead of stdout")
	return cmd
}

func newCompareCmd(g *globals) *cobra.Command {
	var opts app.CompareOptions
	cmd := &cobra.Command{
		Use:   "compare " + snapshotArgs,
		Short: "Print a human readable report of the differences",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.app()
			if err != nil {
				return err
			}
			return a.Compare(cmd.Context(), args[0], args[1], cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.ListDiff, "list-diff", false, "show list variables as a line diff instead of a set comparison")
	cmd.Flags().BoolVar(&opts.NoIgnore, "no-ignore", false, "report names matched by the ignore patterns")
	return cmd
}

func newBrowseCmd(g *globals) *cobra.Command {
	var useFZF bool
	cmd := &cobra.Command{
		Use:   "browse " + snapshotArgs,
		Short: "Pick one change interactively and print its values",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.app()
			if err != nil {
				return err
			}
			return a.Browse(cmd.Context(), args[0], args[1], useFZF, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&useFZF, "fzf", false, "use fzf instead of the built-in picker")
	return cmd
}

func newListCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.app()
			if err != nil {
				return err
			}
			recs, err := a.ListSnapshots()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, rec := range recs {
				fmt.Fprintf(tw, "%s\t%s\t%dv/%df\n", rec.Name, rec.CapturedAt.Format(time.RFC3339), rec.Vars, rec.Functions)
			}
			return tw.Flush()
		},
	}
}

func newImportCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "import NAME DIR",
		Short: "Copy the snapshot in DIR into the store as NAME",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.app()
			if err != nil {
				return err
			}
			path, err := a.Import(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newConfigCmd(g *globals) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if write {
				path := g.configPath
				if path == "" {
					var err error
					if path, err = config.DefaultConfigPath(); err != nil {
						return err
					}
				}
				if err := config.WriteDefault(path); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), filepath.Clean(path))
				return nil
			}
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			raw, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(raw)
			return err
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "write the default configuration to the config path")
	return cmd
}

func newVersionCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the env-diff version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			current := version.Current()
			fmt.Fprintf(out, "%s %s\n", version.Module(), current)
			if !check {
				return nil
			}
			rel, err := version.CheckLatest(current)
			if err != nil {
				return err
			}
			if rel.Outdated {
				fmt.Fprintf(out, "a newer release is available: %s\n", rel.Latest)
			} else {
				fmt.Fprintln(out, "up to date")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "check GitHub for a newer release")
	return cmd
}
