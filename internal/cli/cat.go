package cli

import (
	"encoding/hex"

	"github.com/spf13/cobra"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/stream"
)

// CatOptions holds flags for the cat command.
type CatOptions struct {
	*RootOptions
	predicateOptions

	SkipInvalid    bool
	Unique         bool
	UniqueStrategy string
	Gzip           bool
	Append         bool
	Tee            string
	Output         string
}

// NewCatCommand creates the cat command.
func NewCatCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cat [filenames...]",
		Short: "Concatenate records from multiple inputs",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCat(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.SkipInvalid, "skip-invalid", "s", false, "skip invalid records")
	cmd.Flags().BoolVarP(&opts.Unique, "unique", "u", false, "skip duplicate records")
	cmd.Flags().StringVar(&opts.UniqueStrategy, "unique-strategy", "ppn", "how to detect duplicates (ppn or hash)")
	cmd.Flags().BoolVarP(&opts.Gzip, "gzip", "g", false, "compress output in gzip format")
	cmd.Flags().BoolVar(&opts.Append, "append", false, "append to the output file instead of overwriting")
	cmd.Flags().StringVar(&opts.Tee, "tee", "", "write simultaneously to <filename> and stdout")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write output to <filename> instead of stdout")
	opts.predicateOptions.registerWhere(cmd)

	return cmd
}

func runCat(cmd *cobra.Command, opts *CatOptions, args []string) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}
	skipInvalid := cfg.SkipInvalid(opts.SkipInvalid, cfg.Cat)
	gzipped := cfg.Gzip(opts.Gzip, cfg.Cat)

	if opts.UniqueStrategy != "ppn" && opts.UniqueStrategy != "hash" {
		return NewExitError(ExitUserError, "invalid --unique-strategy, expected ppn or hash")
	}

	where, err := opts.buildWhere()
	if err != nil {
		return err
	}
	options, err := opts.matcherOptions()
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

	seen := make(map[string]struct{})
	err = forEachRecord(cmd, inputFilenames(args), skipInvalid, func(rec *primitives.RecordRef) error {
		if where != nil && !where.IsMatch(rec, &options) {
			return nil
		}

		if opts.Unique {
			var key string
			if opts.UniqueStrategy == "hash" {
				sum := rec.SHA256()
				key = hex.EncodeToString(sum[:])
			} else {
				key = string(rec.PPN())
			}
			if _, ok := seen[key]; key == "" || ok {
				return nil
			}
			seen[key] = struct{}{}
		}

		if err := writer.WriteRecord(rec); err != nil {
			return WrapExitError(ExitUserError, "cannot write record", err)
		}
		if tee != nil {
			if err := tee.WriteRecord(rec); err != nil {
				return WrapExitError(ExitUserError, "cannot write record", err)
			}
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
