package cli

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/filterlist"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/matcher"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/stream"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/translit"
)

// errStop terminates the record loop early without an error, e.g. when
// a --limit is reached.
var errStop = errors.New("stop")

// inputFilenames applies the stdin convention to positional arguments.
func inputFilenames(args []string) []string {
	if len(args) == 0 {
		return []string{"-"}
	}
	return args
}

// forEachRecord drives the single-threaded cooperative record loop over
// the given inputs. Invalid lines are skipped or surfaced according to
// skipInvalid; a cancelled command context finishes the current record
// and stops.
func forEachRecord(cmd *cobra.Command, filenames []string, skipInvalid bool, fn func(*primitives.RecordRef) error) error {
	invalid := 0
	for _, filename := range filenames {
		reader, err := stream.Open(filename)
		if err != nil {
			return WrapExitError(ExitUserError, "cannot read input", err)
		}

		for {
			if ctx := cmd.Context(); ctx != nil && ctx.Err() != nil {
				reader.Close()
				return nil
			}

			rec, err := reader.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				if stream.IsInvalidLine(err) {
					if skipInvalid {
						invalid++
						continue
					}
					reader.Close()
					return WrapExitError(ExitDecodeError, "cannot decode record", err)
				}
				reader.Close()
				return WrapExitError(ExitUserError, "cannot read input", err)
			}

			if err := fn(rec); err != nil {
				reader.Close()
				if errors.Is(err, errStop) {
					return nil
				}
				return err
			}
		}

		if err := reader.Close(); err != nil {
			return WrapExitError(ExitUserError, "cannot close input", err)
		}
	}

	if invalid > 0 {
		slog.Debug("skipped invalid records", "count", invalid)
	}
	return nil
}

// predicateOptions groups the matcher-related flags shared by the
// commands accepting --where/--and/--or/--not.
type predicateOptions struct {
	Where           string
	And             []string
	Or              []string
	Not             []string
	IgnoreCase      bool
	StrsimThreshold uint8
	Translit        string
}

// registerWhere registers the full predicate flag set including the
// --where expression.
func (o *predicateOptions) registerWhere(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Where, "where", "", "filter expression used for searching")
	o.register(cmd)
}

// register registers the composition and comparison flags; commands
// whose predicate is a positional argument skip --where.
func (o *predicateOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&o.And, "and", nil, "additional expressions connected with AND")
	cmd.Flags().StringArrayVar(&o.Or, "or", nil, "additional expressions connected with OR")
	cmd.Flags().StringArrayVar(&o.Not, "not", nil, "additional expressions connected with NOT")
	cmd.MarkFlagsMutuallyExclusive("and", "or")
	cmd.MarkFlagsMutuallyExclusive("and", "not")
	cmd.MarkFlagsMutuallyExclusive("or", "not")
	o.registerComparison(cmd)
}

// registerComparison registers only the comparison tuning flags; used
// by commands whose predicate is a positional argument.
func (o *predicateOptions) registerComparison(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&o.IgnoreCase, "ignore-case", "i", false, "compare case insensitive")
	cmd.Flags().Uint8Var(&o.StrsimThreshold, "strsim-threshold", 75, "minimum score for similarity comparisons (0-100)")
	cmd.Flags().StringVar(&o.Translit, "translit", "", "normalization form for comparisons (nfc, nfd, nfkc, nfkd)")
}

// form parses the --translit flag.
func (o *predicateOptions) form() (translit.Form, error) {
	nf, err := translit.ParseForm(o.Translit)
	if err != nil {
		return translit.None, WrapExitError(ExitUserError, "invalid --translit value", err)
	}
	return nf, nil
}

// matcherOptions builds the evaluation options from the flags.
func (o *predicateOptions) matcherOptions() (matcher.Options, error) {
	nf, err := o.form()
	if err != nil {
		return matcher.Options{}, err
	}

	options := matcher.NewOptions()
	options.CaseIgnore = o.IgnoreCase
	options.StrSimThreshold = float64(o.StrsimThreshold) / 100
	options.Normalization = nf
	return options, nil
}

// buildMatcher parses expr composed with the --and/--or/--not flags.
// An empty expr without additions yields nil (match everything).
func (o *predicateOptions) buildMatcher(expr string) (*matcher.RecordMatcher, error) {
	if expr == "" {
		return nil, nil
	}

	nf, err := o.form()
	if err != nil {
		return nil, err
	}
	transform := func(s string) string { return nf.Normalize(s) }

	builder, err := matcher.NewBuilder(expr, transform)
	if err == nil {
		builder, err = builder.And(o.And)
	}
	if err == nil {
		builder, err = builder.Or(o.Or)
	}
	if err == nil {
		builder, err = builder.Not(o.Not)
	}
	if err != nil {
		return nil, WrapExitError(ExitUserError, "invalid filter expression", err)
	}
	return builder.Build(), nil
}

// buildWhere builds the matcher from the --where flag.
func (o *predicateOptions) buildWhere() (*matcher.RecordMatcher, error) {
	return o.buildMatcher(o.Where)
}

// filterListOptions groups the allow/deny list flags.
type filterListOptions struct {
	AllowLists []string
	DenyLists  []string
	Column     string
}

func (o *filterListOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&o.AllowLists, "allow-lists", "A", nil, "allow-list files (CSV, optionally gzipped)")
	cmd.Flags().StringArrayVarP(&o.DenyLists, "deny-lists", "D", nil, "deny-list files (CSV, optionally gzipped)")
	cmd.Flags().StringVar(&o.Column, "filter-set-column", "", "identifier column (default ppn, then idn)")
}

func (o *filterListOptions) build() (*filterlist.List, error) {
	list := filterlist.New()
	if err := list.Allow(o.AllowLists, o.Column); err != nil {
		return nil, WrapExitError(ExitUserError, "cannot load allow-list", err)
	}
	if err := list.Deny(o.DenyLists, o.Column); err != nil {
		return nil, WrapExitError(ExitUserError, "cannot load deny-list", err)
	}
	return list, nil
}

// parseReducer parses a --keep/--discard list of TAG[/OCC] matcher
// pairs.
type reducerPredicate struct {
	tag *matcher.TagMatcher
	occ matcher.OccurrenceMatcher
}

func parseReducer(s string) ([]reducerPredicate, error) {
	var predicates []reducerPredicate
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		expr := item
		occExpr := ""
		if pos := strings.LastIndexByte(item, '/'); pos >= 0 {
			expr, occExpr = item[:pos], item[pos:]
		}

		tag, err := matcher.NewTagMatcher(expr)
		if err != nil {
			return nil, WrapExitError(ExitUserError, "invalid field predicate", err)
		}
		occ, err := matcher.NewOccurrenceMatcher(occExpr)
		if err != nil {
			return nil, WrapExitError(ExitUserError, "invalid field predicate", err)
		}
		predicates = append(predicates, reducerPredicate{tag: tag, occ: occ})
	}
	return predicates, nil
}

func (p *reducerPredicate) match(f *primitives.FieldRef) bool {
	return p.tag.IsMatch(f.Tag) && p.occ.IsMatch(f.Occurrence)
}

// reduceRecord applies keep and discard predicates to a record. It
// reports whether the record still has fields afterwards.
func reduceRecord(rec *primitives.RecordRef, keep, discard []reducerPredicate) bool {
	ok := true
	if len(keep) > 0 {
		ok = rec.Retain(func(f *primitives.FieldRef) bool {
			for i := range keep {
				if keep[i].match(f) {
					return true
				}
			}
			return false
		})
	}
	if ok && len(discard) > 0 {
		ok = rec.Retain(func(f *primitives.FieldRef) bool {
			for i := range discard {
				if discard[i].match(f) {
					return false
				}
			}
			return true
		})
	}
	return ok
}

// openRecordOutput opens a record writer on the named file, or on the
// command's stdout writer for "-" and "".
func openRecordOutput(cmd *cobra.Command, output string, gzipped, appendMode bool) (*stream.Writer, error) {
	if output == "" || output == "-" {
		return stream.NewWriter(cmd.OutOrStdout(), gzipped), nil
	}
	writer, err := stream.Create(output, stream.WriterOptions{Gzip: gzipped, Append: appendMode})
	if err != nil {
		return nil, WrapExitError(ExitUserError, "cannot create output", err)
	}
	return writer, nil
}

// openCSVOutput opens the tabular output used by select, frequency and
// hash: the named file or the command's stdout writer.
func openCSVOutput(cmd *cobra.Command, output string) (io.Writer, func() error, error) {
	if output == "" || output == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	file, err := os.Create(output)
	if err != nil {
		return nil, nil, WrapExitError(ExitUserError, "cannot create output", err)
	}
	return file, file.Close, nil
}
