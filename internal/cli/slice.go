package cli

import (
	"github.com/spf13/cobra"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
)

// SliceOptions holds flags for the slice command.
type SliceOptions struct {
	*RootOptions

	SkipInvalid bool
	Start       int
	End         int
	Length      int
	Gzip        bool
	Append      bool
	Output      string
}

// NewSliceCommand creates the slice command.
func NewSliceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SliceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "slice [filenames...]",
		Short: "Return records within a range",
		Long: `Return the records within a range. The range starts at --start and
ends before --end; the end position is not included. --length reads a
fixed number of records from the start position instead.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSlice(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.SkipInvalid, "skip-invalid", "s", false, "skip invalid records")
	cmd.Flags().IntVar(&opts.Start, "start", 0, "start position of the slice")
	cmd.Flags().IntVar(&opts.End, "end", 0, "end position of the slice (not included)")
	cmd.Flags().IntVar(&opts.Length, "length", 0, "number of records to read from the start position")
	cmd.Flags().BoolVarP(&opts.Gzip, "gzip", "g", false, "compress output in gzip format")
	cmd.Flags().BoolVar(&opts.Append, "append", false, "append to the output file instead of overwriting")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write output to <filename> instead of stdout")
	cmd.MarkFlagsMutuallyExclusive("end", "length")

	return cmd
}

func runSlice(cmd *cobra.Command, opts *SliceOptions, args []string) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}
	skipInvalid := cfg.SkipInvalid(opts.SkipInvalid, cfg.Slice)
	gzipped := cfg.Gzip(opts.Gzip, cfg.Slice)

	end := opts.End
	if opts.Length > 0 {
		end = opts.Start + opts.Length
	}

	writer, err := openRecordOutput(cmd, opts.Output, gzipped, opts.Append)
	if err != nil {
		return err
	}

	pos := 0
	err = forEachRecord(cmd, inputFilenames(args), skipInvalid, func(rec *primitives.RecordRef) error {
		defer func() { pos++ }()

		if pos < opts.Start {
			return nil
		}
		if end > 0 && pos >= end {
			return errStop
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
