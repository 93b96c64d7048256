package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/stream"
)

// FilterOptions holds flags for the filter command.
type FilterOptions struct {
	*RootOptions
	predicateOptions
	filterListOptions

	SkipInvalid bool
	InvertMatch bool
	Keep        string
	Discard     string
	ExprFile    string
	Limit       int
	Gzip        bool
	Append      bool
	Tee         string
	Output      string
}

// NewFilterCommand creates the filter command.
func NewFilterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FilterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "filter <expression> [filenames...]",
		Short: "Filter records by whether the given expression matches",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.SkipInvalid, "skip-invalid", "s", false, "skip invalid records")
	cmd.Flags().BoolVarP(&opts.InvertMatch, "invert-match", "V", false, "keep only records that did not match")
	cmd.Flags().StringVarP(&opts.Keep, "keep", "k", "", "keep only fields matching the predicate list")
	cmd.Flags().StringVarP(&opts.Discard, "discard", "d", "", "discard fields matching the predicate list")
	cmd.Flags().StringVarP(&opts.ExprFile, "file", "F", "", "read the filter expression from a file")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", 0, "stop after the first <n> matching records")
	cmd.Flags().BoolVarP(&opts.Gzip, "gzip", "g", false, "compress output in gzip format")
	cmd.Flags().BoolVar(&opts.Append, "append", false, "append to the output file instead of overwriting")
	cmd.Flags().StringVar(&opts.Tee, "tee", "", "write simultaneously to <filename> and stdout")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write output to <filename> instead of stdout")
	cmd.MarkFlagsMutuallyExclusive("gzip", "append")
	opts.predicateOptions.register(cmd)
	opts.filterListOptions.register(cmd)

	return cmd
}

func runFilter(cmd *cobra.Command, opts *FilterOptions, args []string) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}
	skipInvalid := cfg.SkipInvalid(opts.SkipInvalid, cfg.Filter)
	gzipped := cfg.Gzip(opts.Gzip, cfg.Filter)

	// With --file every positional argument is an input filename;
	// otherwise the first argument is the expression.
	var expr string
	var filenames []string
	if opts.ExprFile != "" {
		data, err := os.ReadFile(opts.ExprFile)
		if err != nil {
			return WrapExitError(ExitUserError, "cannot read expression file", err)
		}
		expr = strings.TrimSpace(string(data))
		filenames = args
	} else {
		if len(args) == 0 {
			return NewExitError(ExitUserError, "missing filter expression")
		}
		expr = args[0]
		filenames = args[1:]
	}

	filter, err := opts.buildMatcher(expr)
	if err != nil {
		return err
	}
	if filter == nil {
		return NewExitError(ExitUserError, "empty filter expression")
	}

	options, err := opts.matcherOptions()
	if err != nil {
		return err
	}

	keep, err := parseReducer(opts.Keep)
	if err != nil {
		return err
	}
	discard, err := parseReducer(opts.Discard)
	if err != nil {
		return err
	}

	lists, err := opts.filterListOptions.build()
	if err != nil {
		return err
	}

	writer, err := openRecordOutput(cmd, opts.Output, gzipped, opts.Append)
	if err != nil {
		return err
	}

	var tee *stream.Writer
	if opts.Tee != "" {
		tee, err = stream.Create(opts.Tee, stream.WriterOptions{Gzip: gzipped, Append: opts.Append})
		if err != nil {
			return WrapExitError(ExitUserError, "cannot create tee output", err)
		}
	}

	count := 0
	err = forEachRecord(cmd, inputFilenames(filenames), skipInvalid, func(rec *primitives.RecordRef) error {
		if !lists.Check(rec.PPN()) {
			return nil
		}

		isMatch := filter.IsMatch(rec, &options)
		if opts.InvertMatch {
			isMatch = !isMatch
		}
		if !isMatch {
			return nil
		}

		if !reduceRecord(rec, keep, discard) {
			return nil
		}

		if err := writer.WriteRecord(rec); err != nil {
			return WrapExitError(ExitUserError, "cannot write record", err)
		}
		if tee != nil {
			if err := tee.WriteRecord(rec); err != nil {
				return WrapExitError(ExitUserError, "cannot write record", err)
			}
		}

		count++
		if opts.Limit > 0 && count >= opts.Limit {
			return errStop
		}
		return nil
	})
	if err != nil {
		return err
	}

	if tee != nil {
		if err := tee.Finish(); err != nil {
			return WrapExitError(ExitUserError, "cannot finish tee output", err)
		}
	}
	if err := writer.Finish(); err != nil {
		return WrapExitError(ExitUserError, "cannot finish output", err)
	}
	return nil
}
