// Package cli wires the toolkit's subcommands. Every command consumes
// the core packages (primitives, matcher, path, query, stream) and
// preserves their semantics; the CLI layer itself only parses flags,
// opens inputs and outputs and drives the single-threaded record loop.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/config"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Config  string

	cfg *config.Config
}

// LoadConfig resolves the configuration file once per invocation.
func (o *RootOptions) LoadConfig() (*config.Config, error) {
	if o.cfg != nil {
		return o.cfg, nil
	}

	var err error
	if o.Config != "" {
		o.cfg, err = config.Load(o.Config)
	} else {
		o.cfg, err = config.Discover()
	}
	if err != nil {
		return nil, WrapExitError(ExitUserError, "cannot load config", err)
	}
	return o.cfg, nil
}

// NewRootCommand creates the root command of the pica CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "pica",
		Short:         "Tools to work with bibliographic records encoded in PICA+",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
			slog.SetDefault(slog.New(handler))
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to the config file")

	cmd.AddCommand(NewCatCommand(opts))
	cmd.AddCommand(NewConvertCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewFilterCommand(opts))
	cmd.AddCommand(NewFrequencyCommand(opts))
	cmd.AddCommand(NewHashCommand(opts))
	cmd.AddCommand(NewInvalidCommand(opts))
	cmd.AddCommand(NewPartitionCommand(opts))
	cmd.AddCommand(NewPrintCommand(opts))
	cmd.AddCommand(NewSampleCommand(opts))
	cmd.AddCommand(NewSelectCommand(opts))
	cmd.AddCommand(NewSliceCommand(opts))
	cmd.AddCommand(NewSplitCommand(opts))

	return cmd
}
