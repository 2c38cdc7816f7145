package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	mealyerr "github.com/matzehuels/mealyetf/pkg/errors"
	mio "github.com/matzehuels/mealyetf/pkg/io"
	"github.com/matzehuels/mealyetf/pkg/pipeline"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	output   string // output file; stdout when empty
	bodyOnly bool   // omit the state and edge declarations
	noCache  bool
	refresh  bool   // ignore cached artifacts but store new ones
	from     string // document format when reading stdin
}

// stdinName is the machine argument that reads the document from stdin.
const stdinName = "-"

func (c *CLI) convertCommand() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert <machine>",
		Short: "Convert a Mealy machine to ETF with alternating edges",
		Long: `Convert a Mealy machine document (.json, .yaml, .yml or .toml) to ETF.

Every transition s --i/o--> t is split into s --i--> (o,t) and (o,t) --o--> t.
The document goes to stdout unless -o is given. When <machine> is a directory
the machine is picked from the files it contains. When it is "-" the document
is read from stdin in the format named by --from.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.bodyOnly, "body-only", false, "write only the init, trans and sort sections")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "regenerate even if cached")
	cmd.Flags().StringVar(&opts.from, "from", "", "stdin document format: json, yaml or toml (default json)")

	return cmd
}

func (c *CLI) runConvert(ctx context.Context, stdin io.Reader, stdout io.Writer, input string, opts convertOpts) error {
	logger := loggerFromContext(ctx)

	if opts.output != "" {
		if err := mealyerr.ValidatePath(opts.output); err != nil {
			return err
		}
	}

	popts, err := convertSource(stdin, input, opts.from)
	if err != nil {
		return err
	}
	name := "stdin"
	if popts.Path != "" {
		name = filepath.Base(popts.Path)
	}

	format := pipeline.FormatETF
	if opts.bodyOnly {
		format = pipeline.FormatETFBody
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	step := startTimer(logger, "converted")
	popts.Formats = []string{format}
	popts.Refresh = opts.refresh
	popts.Logger = logger
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		return err
	}
	data := result.Artifacts[format]

	if !result.Stats.Complete {
		printWarning("%s is partial: missing transitions are left out", name)
	}

	if opts.output == "" {
		_, err := stdout.Write(data)
		return err
	}

	if err := writeFile(opts.output, data); err != nil {
		return err
	}
	step.done("machine", name, "format", format, "bytes", len(data))
	printSuccess("Wrote ETF")
	printFile(opts.output)
	printStats(result.Stats.States, result.Stats.Transitions, result.CacheInfo.AllHit())
	if popts.Path != "" {
		printNextStep("Draw the alternating system", fmt.Sprintf("%s render --type alternating %s", appName, popts.Path))
	}
	return nil
}

// convertSource selects the machine document to convert: stdin when input is
// "-", otherwise a file or a machine picked from a directory.
func convertSource(stdin io.Reader, input, from string) (pipeline.Options, error) {
	if input != stdinName {
		if from != "" {
			return pipeline.Options{}, mealyerr.New(mealyerr.ErrCodeInvalidInput, "--from only applies when reading stdin")
		}
		path, err := resolveInput(input)
		if err != nil {
			return pipeline.Options{}, err
		}
		return pipeline.Options{Path: path}, nil
	}

	format := mio.FormatJSON
	if from != "" {
		f, err := mio.ParseFormat(from)
		if err != nil {
			return pipeline.Options{}, err
		}
		format = f
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return pipeline.Options{}, mealyerr.Wrap(mealyerr.ErrCodeInvalidInput, err, "read stdin")
	}
	return pipeline.Options{Source: data, SourceFormat: format}, nil
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// basePath strips the extension from input.
func basePath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input))
}
