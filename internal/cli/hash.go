package cli

import (
	"encoding/csv"
	"encoding/hex"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
)

// HashOptions holds flags for the hash command.
type HashOptions struct {
	*RootOptions
	predicateOptions

	SkipInvalid bool
	Header      string
	TSV         bool
	Output      string
}

// NewHashCommand creates the hash command.
func NewHashCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HashOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "hash [filenames...]",
		Short: "Compute the SHA-256 checksum of records",
		Long: `Compute the SHA-256 checksum over each record's serialized bytes
including the terminating newline, so the digest matches sha256sum of
the original input line.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHash(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.SkipInvalid, "skip-invalid", "s", false, "skip invalid records")
	cmd.Flags().StringVarP(&opts.Header, "header", "H", "ppn,hash", "comma-separated list of column names")
	cmd.Flags().BoolVarP(&opts.TSV, "tsv", "t", false, "write output tab-separated")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write output to <filename> instead of stdout")
	opts.predicateOptions.registerWhere(cmd)

	return cmd
}

func runHash(cmd *cobra.Command, opts *HashOptions, args []string) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}
	skipInvalid := cfg.SkipInvalid(opts.SkipInvalid, cfg.Hash)

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

	writer := csv.NewWriter(out)
	if opts.TSV {
		writer.Comma = '\t'
	}

	header := strings.Split(opts.Header, ",")
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if err := writer.Write(header); err != nil {
		return WrapExitError(ExitUserError, "cannot write output", err)
	}

	err = forEachRecord(cmd, inputFilenames(args), skipInvalid, func(rec *primitives.RecordRef) error {
		if where != nil && !where.IsMatch(rec, &options) {
			return nil
		}

		sum := rec.SHA256()
		row := []string{string(rec.PPN()), hex.EncodeToString(sum[:])}
		if err := writer.Write(row); err != nil {
			return WrapExitError(ExitUserError, "cannot write output", err)
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
