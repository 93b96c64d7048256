package cli

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/matcher"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/path"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/stream"
)

// PartitionOptions holds flags for the partition command.
type PartitionOptions struct {
	*RootOptions
	predicateOptions

	SkipInvalid bool
	Gzip        bool
	Outdir      string
	Template    string
}

// NewPartitionCommand creates the partition command.
func NewPartitionCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PartitionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "partition <path> [filenames...]",
		Short: "Partition records by subfield value",
		Long: `Partition a stream of records into one output file per distinct
value of the given path expression. A record with multiple distinct
values is written to every corresponding partition; duplicate values
within one record count once.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPartition(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.SkipInvalid, "skip-invalid", "s", false, "skip invalid records")
	cmd.Flags().BoolVarP(&opts.Gzip, "gzip", "g", false, "compress partitions in gzip format")
	cmd.Flags().StringVarP(&opts.Outdir, "outdir", "o", ".", "write partitions into <outdir>")
	cmd.Flags().StringVarP(&opts.Template, "template", "t", "", "filename template ({} is the value)")
	opts.predicateOptions.registerWhere(cmd)

	return cmd
}

func runPartition(cmd *cobra.Command, opts *PartitionOptions, args []string) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}
	skipInvalid := cfg.SkipInvalid(opts.SkipInvalid, cfg.Partition)
	gzipped := cfg.Gzip(opts.Gzip, cfg.Partition)

	fallback := "{}.dat"
	if gzipped {
		fallback = "{}.dat.gz"
	}
	template := cfg.Template(opts.Template, cfg.Partition, fallback)

	p, err := path.New(args[0])
	if err != nil {
		return WrapExitError(ExitUserError, "invalid path expression", err)
	}

	where, err := opts.buildWhere()
	if err != nil {
		return err
	}
	options, err := opts.matcherOptions()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.Outdir, 0o755); err != nil {
		return WrapExitError(ExitUserError, "cannot create output directory", err)
	}

	writers := make(map[string]*stream.Writer)
	err = forEachRecord(cmd, inputFilenames(args[1:]), skipInvalid, func(rec *primitives.RecordRef) error {
		if where != nil && !where.IsMatch(rec, &options) {
			return nil
		}

		values := uniqueValues(p, rec, &options)
		for _, value := range values {
			writer, ok := writers[value]
			if !ok {
				name := strings.ReplaceAll(template, "{}", value)
				writer, err = stream.Create(filepath.Join(opts.Outdir, name), stream.WriterOptions{Gzip: gzipped})
				if err != nil {
					return WrapExitError(ExitUserError, "cannot create partition", err)
				}
				writers[value] = writer
			}
			if err := writer.WriteRecord(rec); err != nil {
				return WrapExitError(ExitUserError, "cannot write record", err)
			}
		}
		return nil
	})
	if err != nil {
		for _, writer := range writers {
			writer.Finish()
		}
		return err
	}

	for _, writer := range writers {
		if err := writer.Finish(); err != nil {
			return WrapExitError(ExitUserError, "cannot finish partition", err)
		}
	}
	return nil
}

// uniqueValues returns the path values of a record, deduplicated and
// sorted.
func uniqueValues(p *path.Path, rec *primitives.RecordRef, o *matcher.Options) []string {
	var values []string
	for _, value := range p.Values(rec, o) {
		values = append(values, string(value))
	}
	sort.Strings(values)

	unique := values[:0]
	var prev string
	for i, value := range values {
		if i == 0 || value != prev {
			unique = append(unique, value)
		}
		prev = value
	}
	return unique
}
