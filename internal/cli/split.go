package cli

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/stream"
)

// SplitOptions holds flags for the split command.
type SplitOptions struct {
	*RootOptions
	predicateOptions

	SkipInvalid bool
	Gzip        bool
	Outdir      string
	Template    string
}

// NewSplitCommand creates the split command.
func NewSplitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SplitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "split <chunk-size> [filenames...]",
		Short: "Split a stream of records into chunks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.SkipInvalid, "skip-invalid", "s", false, "skip invalid records")
	cmd.Flags().BoolVarP(&opts.Gzip, "gzip", "g", false, "compress chunks in gzip format")
	cmd.Flags().StringVarP(&opts.Outdir, "outdir", "o", ".", "write chunks into <outdir>")
	cmd.Flags().StringVarP(&opts.Template, "template", "t", "", "filename template ({} is the chunk number)")
	opts.predicateOptions.registerWhere(cmd)

	return cmd
}

func runSplit(cmd *cobra.Command, opts *SplitOptions, args []string) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}
	skipInvalid := cfg.SkipInvalid(opts.SkipInvalid, cfg.Split)
	gzipped := cfg.Gzip(opts.Gzip, cfg.Split)

	fallback := "{}.dat"
	if gzipped {
		fallback = "{}.dat.gz"
	}
	template := cfg.Template(opts.Template, cfg.Split, fallback)

	chunkSize, err := strconv.Atoi(args[0])
	if err != nil || chunkSize < 1 {
		return NewExitError(ExitUserError, "chunk size must be a positive number")
	}

	where, err := opts.buildWhere()
	if err != nil {
		return err
	}
	options, err := opts.matcherOptions()
	if err != nil {
		return err
	}

	var writer *stream.Writer
	chunks := 0
	count := 0

	newChunk := func() error {
		name := strings.ReplaceAll(template, "{}", strconv.Itoa(chunks))
		writer, err = stream.Create(filepath.Join(opts.Outdir, name), stream.WriterOptions{Gzip: gzipped})
		if err != nil {
			return WrapExitError(ExitUserError, "cannot create chunk", err)
		}
		chunks++
		return nil
	}

	err = forEachRecord(cmd, inputFilenames(args[1:]), skipInvalid, func(rec *primitives.RecordRef) error {
		if where != nil && !where.IsMatch(rec, &options) {
			return nil
		}

		if count%chunkSize == 0 {
			if writer != nil {
				if err := writer.Finish(); err != nil {
					return WrapExitError(ExitUserError, "cannot finish chunk", err)
				}
			}
			if err := newChunk(); err != nil {
				return err
			}
		}

		if err := writer.WriteRecord(rec); err != nil {
			return WrapExitError(ExitUserError, "cannot write record", err)
		}
		count++
		return nil
	})
	if err != nil {
		if writer != nil {
			writer.Finish()
		}
		return err
	}

	if writer != nil {
		if err := writer.Finish(); err != nil {
			return WrapExitError(ExitUserError, "cannot finish chunk", err)
		}
	}
	return nil
}
