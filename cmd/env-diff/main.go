package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"pkt.systems/psi"
	"pkt.systems/pslog"

	"github.com/alchemmist/env-diff/internal/app"
	"github.com/alchemmist/env-diff/internal/config"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	dataDir    string
	debug      bool
	stderr     io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	g := &globals{stderr: stderr}
	root := newRootCmd(g)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if len(args) < 1 {
		fmt.Fprint(stdout, root.UsageString())
		return 2
	}
	root.SetArgs(args)

	ctx = pslog.ContextWithLogger(ctx, newLogger(stderr, false))
	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", formatError(err)).Error("env-diff command failed")
		return 1
	}
	return 0
}

func newLogger(w io.Writer, debug bool) pslog.Logger {
	level := pslog.InfoLevel
	if debug {
		level = pslog.DebugLevel
	}
	return pslog.NewWithOptions(w, pslog.Options{
		Mode:     pslog.ModeConsole,
		NoColor:  !isTerminal(w),
		MinLevel: level,
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func newRootCmd(g *globals) *cobra.Command {
	root := &cobra.Command{
		Use:           "env-diff",
		Short:         "Diff bash environment snapshots and generate code replaying the changes",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(g.stderr, g.debug)
			log.SetOutput(pslog.LogLogger(logger).Writer())
			log.SetFlags(0)
			cmd.SetContext(pslog.ContextWithLogger(cmd.Context(), logger))
			return nil
		},
	}
	addGlobalFlags(root.PersistentFlags(), g)

	root.AddCommand(newGencodeCmd(g))
	root.AddCommand(newCompareCmd(g))
	root.AddCommand(newBrowseCmd(g))
	root.AddCommand(newListCmd(g))
	root.AddCommand(newImportCmd(g))
	root.AddCommand(newConfigCmd(g))
	root.AddCommand(newVersionCmd())
	return root
}

func addGlobalFlags(fs *pflag.FlagSet, g *globals) {
	fs.StringVarP(&g.configPath, "config", "c", "", "path to config file (default ~/.config/env-diff.yml)")
	fs.StringVar(&g.dataDir, "data-dir", "", "snapshot store directory (overrides data_dir)")
	fs.BoolVar(&g.debug, "debug", false, "enable debug logging")
}

// loadConfig reads the config file and applies flag overrides.
func (g *globals) loadConfig() (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if g.dataDir != "" {
		cfg.DataDir = g.dataDir
	}
	return cfg, nil
}

func (g *globals) app() (*app.App, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cfg), nil
}

func formatError(err error) string {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Sprintf("not found: %v", err)
	}
	return err.Error()
}
