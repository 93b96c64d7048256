package cli

import (
	"github.com/spf13/cobra"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/convert"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	predicateOptions

	SkipInvalid bool
	From        string
	To          string
	Gzip        bool
	Output      string
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert [filenames...]",
		Short: "Convert PICA+ into other formats",
		Long: `Convert records into another serialization. Normalized PICA+
(plus) is the only input format; the output formats are plus, plain,
json, xml, binary and import.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.SkipInvalid, "skip-invalid", "s", false, "skip invalid records")
	cmd.Flags().StringVarP(&opts.From, "from", "f", "plus", "input format")
	cmd.Flags().StringVarP(&opts.To, "to", "t", "plus", "output format")
	cmd.Flags().BoolVarP(&opts.Gzip, "gzip", "g", false, "compress output in gzip format (plus only)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write output to <filename> instead of stdout")
	opts.predicateOptions.registerWhere(cmd)

	return cmd
}

func runConvert(cmd *cobra.Command, opts *ConvertOptions, args []string) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}
	skipInvalid := cfg.SkipInvalid(opts.SkipInvalid, cfg.Convert)
	gzipped := cfg.Gzip(opts.Gzip, cfg.Convert)

	if opts.From != string(convert.FormatPlus) {
		return NewExitError(ExitUserError, "only plus is supported as input format")
	}
	format, err := convert.ParseFormat(opts.To)
	if err != nil {
		return WrapExitError(ExitUserError, "invalid output format", err)
	}

	nf, err := opts.form()
	if err != nil {
		return err
	}

	where, err := opts.buildWhere()
	if err != nil {
		return err
	}
	options, err := opts.matcherOptions()
	if err != nil {
		return err
	}

	writer, err := convert.NewWriter(format, opts.Output, gzipped, nf, cmd.OutOrStdout())
	if err != nil {
		return WrapExitError(ExitUserError, "cannot create output", err)
	}

	err = forEachRecord(cmd, inputFilenames(args), skipInvalid, func(rec *primitives.RecordRef) error {
		if where != nil && !where.IsMatch(rec, &options) {
			return nil
		}
		if err := writer.WriteRecord(rec); err != nil {
			return WrapExitError(ExitUserError, "cannot write record", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := writer.Finish(); err != nil {
		return WrapExitError(ExitUserError, "cannot finish output", err)
	}
	return nil
}
