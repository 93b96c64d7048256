package cli

import (
	"bufio"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/deutsche-nationalbibliothek/pica-go/internal/primitives"
	"github.com/deutsche-nationalbibliothek/pica-go/internal/stream"
)

// InvalidOptions holds flags for the invalid command.
type InvalidOptions struct {
	*RootOptions

	Output string
}

// NewInvalidCommand creates the invalid command.
func NewInvalidCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvalidOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invalid [filenames...]",
		Short: "Write input lines that cannot be decoded as normalized PICA+",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvalid(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write output to <filename> instead of stdout")

	return cmd
}

func runInvalid(cmd *cobra.Command, opts *InvalidOptions, args []string) error {
	writer, err := openRecordOutput(cmd, opts.Output, false, false)
	if err != nil {
		return err
	}

	for _, filename := range inputFilenames(args) {
		raw, err := stream.OpenRaw(filename)
		if err != nil {
			return WrapExitError(ExitUserError, "cannot read input", err)
		}

		br := bufio.NewReader(raw)
		for {
			line, err := br.ReadBytes('\n')
			if len(line) > 0 {
				if _, decodeErr := primitives.Decode(line); decodeErr != nil {
					var e *primitives.DecodeError
					if !errors.As(decodeErr, &e) || e.Kind != primitives.ErrEmptyLine {
						if writeErr := writer.WriteBytes(line); writeErr != nil {
							return WrapExitError(ExitUserError, "cannot write output", writeErr)
						}
					}
				}
			}
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return WrapExitError(ExitUserError, "cannot read input", err)
			}
		}

		if closer, ok := raw.(io.Closer); ok {
			closer.Close()
		}
	}

	if err := writer.Finish(); err != nil {
		return WrapExitError(ExitUserError, "cannot finish output", err)
	}
	return nil
}
