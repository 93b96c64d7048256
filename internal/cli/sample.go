package cli

import (
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
)

// SampleOptions holds flags for the sample command.
type SampleOptions struct {
	*RootOptions
	predicateOptions

	SkipInvalid bool
	Gzip        bool
	Seed        int64
	Output      string
}

// NewSampleCommand creates the sample command.
func NewSampleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SampleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sample <sample-size> [filenames...]",
		Short: "Select a random sample of records",
		Long: `Select a random permutation of records of the given sample size
using reservoir sampling. The sample is deterministic for a fixed
--seed value.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSample(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.SkipInvalid, "skip-invalid", "s", false, "skip invalid records")
	cmd.Flags().BoolVarP(&opts.Gzip, "gzip", "g", false, "compress output in gzip format")
	cmd.Flags().Int64Var(&opts.Seed, "seed", -1, "initialize the RNG for deterministic samples")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write output to <filename> instead of stdout")
	opts.predicateOptions.registerWhere(cmd)

	return cmd
}

func runSample(cmd *cobra.Command, opts *SampleOptions, args []string) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}
	skipInvalid := cfg.SkipInvalid(opts.SkipInvalid, cfg.Sample)
	gzipped := cfg.Gzip(opts.Gzip, cfg.Sample)

	size := 0
	for _, d := range args[0] {
		if d < '0' || d > '9' {
			size = 0
			break
		}
		size = size*10 + int(d-'0')
	}
	if size < 1 {
		return NewExitError(ExitUserError, "sample size must be a positive number")
	}

	where, err := opts.buildWhere()
	if err != nil {
		return err
	}
	options, err := opts.matcherOptions()
	if err != nil {
		return err
	}

	var rng *rand.Rand
	if opts.Seed >= 0 {
		rng = rand.New(rand.NewSource(opts.Seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	reservoir := make([]*primitives.Record, 0, size)
	i := 0
	err = forEachRecord(cmd, inputFilenames(args[1:]), skipInvalid, func(rec *primitives.RecordRef) error {
		if where != nil && !where.IsMatch(rec, &options) {
			return nil
		}

		if len(reservoir) < size {
			reservoir = append(reservoir, rec.ToOwned())
		} else {
			j := rng.Intn(i + 1)
			if j < size {
				reservoir[j] = rec.ToOwned()
			}
		}
		i++
		return nil
	})
	if err != nil {
		return err
	}

	writer, err := openRecordOutput(cmd, opts.Output, gzipped, false)
	if err != nil {
		return err
	}
	for _, rec := range reservoir {
		if err := writer.WriteRecord(&rec.RecordRef); err != nil {
			return WrapExitError(ExitUserError, "cannot write record", err)
		}
	}
	if err := writer.Finish(); err != nil {
		return WrapExitError(ExitUserError, "cannot finish output", err)
	}
	return nil
}
