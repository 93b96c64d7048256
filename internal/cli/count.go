package cli

import (
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
)

// CountOptions holds flags for the count command.
type CountOptions struct {
	*RootOptions
	predicateOptions

	SkipInvalid bool
	Records     bool
	Fields      bool
	Subfields   bool
	CSV         bool
	TSV         bool
	NoHeader    bool
	Output      string
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CountOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "count [filenames...]",
		Short: "Count records, fields and subfields",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.SkipInvalid, "skip-invalid", "s", false, "skip invalid records")
	cmd.Flags().BoolVar(&opts.Records, "records", false, "print only the number of records")
	cmd.Flags().BoolVar(&opts.Fields, "fields", false, "print only the number of fields")
	cmd.Flags().BoolVar(&opts.Subfields, "subfields", false, "print only the number of subfields")
	cmd.Flags().BoolVar(&opts.CSV, "csv", false, "write output comma-separated")
	cmd.Flags().BoolVar(&opts.TSV, "tsv", false, "write output tab-separated")
	cmd.Flags().BoolVar(&opts.NoHeader, "no-header", false, "skip the header row")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write output to <filename> instead of stdout")
	cmd.MarkFlagsMutuallyExclusive("records", "fields", "subfields")
	cmd.MarkFlagsMutuallyExclusive("csv", "tsv")
	opts.predicateOptions.registerWhere(cmd)

	return cmd
}

func runCount(cmd *cobra.Command, opts *CountOptions, args []string) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}
	skipInvalid := cfg.SkipInvalid(opts.SkipInvalid, cfg.Count)

	where, err := opts.buildWhere()
	if err != nil {
		return err
	}
	options, err := opts.matcherOptions()
	if err != nil {
		return err
	}

	var records, fields, subfields int
	err = forEachRecord(cmd, inputFilenames(args), skipInvalid, func(rec *primitives.RecordRef) error {
		if where != nil && !where.IsMatch(rec, &options) {
			return nil
		}

		records++
		fields += len(rec.Fields())
		for i := range rec.Fields() {
			subfields += len(rec.Fields()[i].Subfields)
		}
		return nil
	})
	if err != nil {
		return err
	}

	out, closeOut, err := openCSVOutput(cmd, opts.Output)
	if err != nil {
		return err
	}

	switch {
	case opts.Records:
		fmt.Fprintln(out, records)
	case opts.Fields:
		fmt.Fprintln(out, fields)
	case opts.Subfields:
		fmt.Fprintln(out, subfields)
	case opts.CSV, opts.TSV:
		writer := csv.NewWriter(out)
		if opts.TSV {
			writer.Comma = '\t'
		}
		if !opts.NoHeader {
			if err := writer.Write([]string{"records", "fields", "subfields"}); err != nil {
				return WrapExitError(ExitUserError, "cannot write output", err)
			}
		}
		row := []string{strconv.Itoa(records), strconv.Itoa(fields), strconv.Itoa(subfields)}
		if err := writer.Write(row); err != nil {
			return WrapExitError(ExitUserError, "cannot write output", err)
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return WrapExitError(ExitUserError, "cannot write output", err)
		}
	default:
		fmt.Fprintf(out, "records: %d\n", records)
		fmt.Fprintf(out, "fields: %d\n", fields)
		fmt.Fprintf(out, "subfields: %d\n", subfields)
	}

	if err := closeOut(); err != nil {
		return WrapExitError(ExitUserError, "cannot close output", err)
	}
	return nil
}
