package cli

import (
	"encoding/csv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/query"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/translit"
)

// SelectOptions holds flags for the select command.
type SelectOptions struct {
	*RootOptions
	predicateOptions
	filterListOptions

	SkipInvalid    bool
	NoEmptyColumns bool
	Unique         bool
	Squash         bool
	Merge          bool
	Separator      string
	Header         string
	TSV            bool
	Output         string
}

// NewSelectCommand creates the select command.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SelectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "select <query> [filenames...]",
		Short: "Select subfield values from records into rows",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.SkipInvalid, "skip-invalid", "s", false, "skip invalid records")
	cmd.Flags().BoolVar(&opts.NoEmptyColumns, "no-empty-columns", false, "skip rows with empty columns")
	cmd.Flags().BoolVarP(&opts.Unique, "unique", "u", false, "skip duplicate rows")
	cmd.Flags().BoolVar(&opts.Squash, "squash", false, "join repeated values of one field into one cell")
	cmd.Flags().BoolVar(&opts.Merge, "merge", false, "join all rows of one record into one row")
	cmd.Flags().StringVar(&opts.Separator, "separator", "|", "separator for --squash and --merge")
	cmd.Flags().StringVarP(&opts.Header, "header", "H", "", "comma-separated list of column names")
	cmd.Flags().BoolVarP(&opts.TSV, "tsv", "t", false, "write output tab-separated")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write output to <filename> instead of stdout")
	opts.predicateOptions.registerWhere(cmd)
	opts.filterListOptions.register(cmd)

	return cmd
}

func runSelect(cmd *cobra.Command, opts *SelectOptions, args []string) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}
	skipInvalid := cfg.SkipInvalid(opts.SkipInvalid, cfg.Select)

	nf, err := opts.form()
	if err != nil {
		return err
	}

	q, err := query.New(nf.Normalize(args[0]))
	if err != nil {
		return WrapExitError(ExitUserError, "invalid query", err)
	}

	where, err := opts.buildWhere()
	if err != nil {
		return err
	}

	options := query.NewOptions()
	options.Matcher, err = opts.matcherOptions()
	if err != nil {
		return err
	}
	options.Squash = opts.Squash
	options.Merge = opts.Merge
	options.Separator = opts.Separator

	lists, err := opts.filterListOptions.build()
	if err != nil {
		return err
	}

	out, closeOut, err := openCSVOutput(cmd, opts.Output)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(out)
	if opts.TSV {
		writer.Comma = '\t'
	}

	if opts.Header != "" {
		header := strings.Split(opts.Header, ",")
		for i := range header {
			header[i] = strings.TrimSpace(header[i])
		}
		if err := writer.Write(header); err != nil {
			return WrapExitError(ExitUserError, "cannot write output", err)
		}
	}

	var seen map[string]struct{}
	if opts.Unique {
		seen = make(map[string]struct{})
	}

	err = forEachRecord(cmd, inputFilenames(args[1:]), skipInvalid, func(rec *primitives.RecordRef) error {
		if !lists.Check(rec.PPN()) {
			return nil
		}
		if where != nil && !where.IsMatch(rec, &options.Matcher) {
			return nil
		}

		for _, row := range q.Eval(rec, &options) {
			if opts.NoEmptyColumns {
				empty := false
				for _, cell := range row {
					if cell == "" {
						empty = true
						break
					}
				}
				if empty {
					continue
				}
			}

			allEmpty := true
			for _, cell := range row {
				if cell != "" {
					allEmpty = false
					break
				}
			}
			if allEmpty {
				continue
			}

			if nf != translit.None {
				for i := range row {
					row[i] = nf.Normalize(row[i])
				}
			}

			if seen != nil {
				key := strings.Join(row, "\x1f")
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
			}

			if err := writer.Write(row); err != nil {
				return WrapExitError(ExitUserError, "cannot write output", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return WrapExitError(ExitUserError, "cannot write output", err)
	}
	if err := closeOut(); err != nil {
		return WrapExitError(ExitUserError, "cannot close output", err)
	}
	return nil
}
