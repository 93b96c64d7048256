package cli

import (
	"encoding/csv"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/query"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/translit"
)

// FrequencyOptions holds flags for the frequency command.
type FrequencyOptions struct {
	*RootOptions
	predicateOptions
	filterListOptions

	SkipInvalid bool
	Unique      bool
	Reverse     bool
	Limit       int
	Threshold   uint64
	Header      string
	TSV         bool
	Output      string
}

// NewFrequencyCommand creates the frequency command.
func NewFrequencyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FrequencyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "frequency <query> [filenames...]",
		Short: "Compute a frequency table over subfield values",
		Long: `Compute a frequency table over all value tuples produced by the
given query. The table is sorted by count in descending order; ties
are broken by sorting the values lexicographically in ascending
order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFrequency(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.SkipInvalid, "skip-invalid", "s", false, "skip invalid records")
	cmd.Flags().BoolVarP(&opts.Unique, "unique", "u", false, "count duplicate tuples of one record only once")
	cmd.Flags().BoolVarP(&opts.Reverse, "reverse", "r", false, "sort by ascending count")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", 0, "limit the result to the <n> most frequent tuples")
	cmd.Flags().Uint64Var(&opts.Threshold, "threshold", 0, "drop tuples with a count below <value>")
	cmd.Flags().StringVarP(&opts.Header, "header", "H", "", "comma-separated list of column names")
	cmd.Flags().BoolVarP(&opts.TSV, "tsv", "t", false, "write output tab-separated")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write output to <filename> instead of stdout")
	opts.predicateOptions.registerWhere(cmd)
	opts.filterListOptions.register(cmd)

	return cmd
}

func runFrequency(cmd *cobra.Command, opts *FrequencyOptions, args []string) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}
	skipInvalid := cfg.SkipInvalid(opts.SkipInvalid, cfg.Frequency)

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

	lists, err := opts.filterListOptions.build()
	if err != nil {
		return err
	}

	table := make(map[string]uint64)
	err = forEachRecord(cmd, inputFilenames(args[1:]), skipInvalid, func(rec *primitives.RecordRef) error {
		if !lists.Check(rec.PPN()) {
			return nil
		}
		if where != nil && !where.IsMatch(rec, &options.Matcher) {
			return nil
		}

		var seen map[string]struct{}
		if opts.Unique {
			seen = make(map[string]struct{})
		}

		for _, row := range q.Eval(rec, &options) {
			empty := true
			for _, cell := range row {
				if cell != "" {
					empty = false
					break
				}
			}
			if empty {
				continue
			}

			key := strings.Join(row, "\x1f")
			if seen != nil {
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
			}
			table[key]++
		}
		return nil
	})
	if err != nil {
		return err
	}

	type entry struct {
		key   string
		count uint64
	}
	sorted := make([]entry, 0, len(table))
	for key, count := range table {
		sorted = append(sorted, entry{key, count})
	}
	if opts.Reverse {
		sort.Slice(sorted, func(i, j int) bool {
			if sorted[i].count != sorted[j].count {
				return sorted[i].count < sorted[j].count
			}
			return sorted[i].key < sorted[j].key
		})
	} else {
		sort.Slice(sorted, func(i, j int) bool {
			if sorted[i].count != sorted[j].count {
				return sorted[i].count > sorted[j].count
			}
			return sorted[i].key < sorted[j].key
		})
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

	written := 0
	for _, e := range sorted {
		if e.count < opts.Threshold {
			continue
		}
		if opts.Limit > 0 && written >= opts.Limit {
			break
		}
		written++

		row := strings.Split(e.key, "\x1f")
		for j := range row {
			row[j] = translitMaybe(row[j], nf)
		}
		row = append(row, strconv.FormatUint(e.count, 10))
		if err := writer.Write(row); err != nil {
			return WrapExitError(ExitUserError, "cannot write output", err)
		}
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

// translitMaybe normalizes output cells when a form is configured.
func translitMaybe(s string, nf translit.Form) string {
	return nf.Normalize(s)
}
