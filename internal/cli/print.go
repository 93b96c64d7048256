package cli

import (
	"bufio"

	"github.com/spf13/cobra"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/translit"
)

// PrintOptions holds flags for the print command.
type PrintOptions struct {
	*RootOptions
	predicateOptions

	SkipInvalid bool
	Limit       int
	Output      string
}

// NewPrintCommand creates the print command.
func NewPrintCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PrintOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "print [filenames...]",
		Short: "Print records in a human-readable format",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrint(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.SkipInvalid, "skip-invalid", "s", false, "skip invalid records")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", 0, "stop after the first <n> records")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write output to <filename> instead of stdout")
	opts.predicateOptions.registerWhere(cmd)

	return cmd
}

func runPrint(cmd *cobra.Command, opts *PrintOptions, args []string) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}
	skipInvalid := cfg.SkipInvalid(opts.SkipInvalid, cfg.Print)

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

	out, closeOut, err := openCSVOutput(cmd, opts.Output)
	if err != nil {
		return err
	}
	writer := bufio.NewWriter(out)

	count := 0
	err = forEachRecord(cmd, inputFilenames(args), skipInvalid, func(rec *primitives.RecordRef) error {
		if where != nil && !where.IsMatch(rec, &options) {
			return nil
		}

		if err := printRecord(writer, rec, nf); err != nil {
			return WrapExitError(ExitUserError, "cannot write output", err)
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

	if err := writer.Flush(); err != nil {
		return WrapExitError(ExitUserError, "cannot write output", err)
	}
	if err := closeOut(); err != nil {
		return WrapExitError(ExitUserError, "cannot close output", err)
	}
	return nil
}

// printRecord writes one field per line as "TAG[/OCC] $CODE VALUE ...",
// followed by a blank line.
func printRecord(w *bufio.Writer, rec *primitives.RecordRef, nf translit.Form) error {
	for _, field := range rec.Fields() {
		if _, err := w.Write(field.Tag[:]); err != nil {
			return err
		}
		if len(field.Occurrence) > 0 {
			if err := w.WriteByte('/'); err != nil {
				return err
			}
			if _, err := w.Write(field.Occurrence); err != nil {
				return err
			}
		}

		for _, sub := range field.Subfields {
			if _, err := w.WriteString(" $" + sub.Code.String() + " "); err != nil {
				return err
			}
			value := sub.Value
			if nf != translit.None {
				value = []byte(nf.Normalize(string(value)))
			}
			if _, err := w.Write(value); err != nil {
				return err
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}
