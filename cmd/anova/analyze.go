package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"anovalab/adapters/excel"
	"anovalab/adapters/report"
	"anovalab/app"
	"anovalab/domain/core"
	"anovalab/domain/experiment"
	"anovalab/internal"
	"anovalab/internal/config"
	"anovalab/internal/errors"
	"anovalab/internal/testkit"
	"anovalab/ports"

	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	builtin         bool
	format          string
	measures        []string
	alpha           float64
	exact           bool
	requireBalanced bool
	skipMalformed   bool
	sheet           string
	xlsxOut         string
	store           bool
}

func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze [data-file]",
		Short: "Run the two-way ANOVA for each task measure",
		Long: `Run a 2x2 two-way ANOVA (filters x tutorial) on each of the four task
durations: create game, find game, RSVP and update profile.

The data file is CSV or XLSX with a header row and the columns
subject, createGameTime, findGameTime, rsvpTime, updateProfileTime, filtersOn, tutorialGiven.
Without a file argument ANOVA_DATA_FILE is used, and failing that the file
name is read from standard input.

Example: anova analyze study.csv --format markdown --measure rsvpTime`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if err := opts.apply(cmd, cfg); err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cmd, cfg, opts, args, logger)
		},
	}

	cmd.Flags().BoolVar(&opts.builtin, "builtin", false, "Analyse the built-in 20-subject study instead of a file")
	cmd.Flags().StringVar(&opts.format, "format", config.FormatText, "Report format: text|markdown|html|json")
	cmd.Flags().StringSliceVar(&opts.measures, "measure", nil, "Measures to analyse by key or task number (default all)")
	cmd.Flags().Float64Var(&opts.alpha, "alpha", 0.05, "Significance threshold")
	cmd.Flags().BoolVar(&opts.exact, "exact", false, "Also report exact F-distribution p-values")
	cmd.Flags().BoolVar(&opts.requireBalanced, "require-balanced", false, "Fail a measure whose cells have unequal sizes")
	cmd.Flags().BoolVar(&opts.skipMalformed, "skip-malformed", false, "Skip rows that fail to parse instead of aborting")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "Worksheet to read from an .xlsx file (default first)")
	cmd.Flags().StringVar(&opts.xlsxOut, "xlsx-out", "", "Also write the results to this .xlsx file")
	cmd.Flags().BoolVar(&opts.store, "store", false, "Save the run to the database at DATABASE_URL")

	return cmd
}

// apply lets explicitly set flags override the environment configuration
func (o *analyzeOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format = strings.ToLower(o.format)
	}
	if flags.Changed("alpha") {
		cfg.Analysis.Alpha = o.alpha
	}
	if flags.Changed("exact") {
		cfg.Analysis.ExactP = o.exact
	}
	if flags.Changed("require-balanced") {
		cfg.Analysis.RequireBalanced = o.requireBalanced
	}
	if flags.Changed("skip-malformed") {
		cfg.Input.SkipMalformed = o.skipMalformed
	}
	if flags.Changed("xlsx-out") {
		cfg.Output.XLSXOut = o.xlsxOut
	}
	return cfg.Validate()
}

func runAnalyze(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts analyzeOptions, args []string, logger *internal.Logger) error {
	out := cmd.OutOrStdout()
	text := cfg.Output.Format == config.FormatText

	renderer, err := report.New(cfg.Output.Format, report.Options{Alpha: cfg.Analysis.Alpha})
	if err != nil {
		return errors.InvalidInput(err.Error())
	}

	measures := make([]experiment.Measure, 0, len(opts.measures))
	for _, key := range opts.measures {
		m, err := experiment.ParseMeasure(key)
		if err != nil {
			return errors.Wrap(err, "invalid --measure")
		}
		measures = append(measures, m)
	}

	if text {
		fmt.Fprint(out, report.Banner())
	}

	source, err := selectSource(cmd, cfg, opts, args, logger)
	if err != nil {
		return err
	}

	var repo ports.ResultRepository
	if opts.store {
		if cfg.Database.URL == "" {
			return errors.ConfigInvalid("--store requires DATABASE_URL")
		}
		db, r, err := openStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		repo = r
	}
	service := app.NewAnalysisService(newAnalyzer(cfg, logger), repo, logger)

	observations, err := source.Observations(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", source.Name())
	}
	if len(observations) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No data was read from the file. Exiting program.")
		return errors.Wrap(core.ErrEmptyDataset, source.Name())
	}
	if text {
		fmt.Fprintf(out, "Successfully read %d data points from the file.\n\n", len(observations))
	}

	run, err := service.Analyze(ctx, source.Name(), observations, measures...)
	if run == nil {
		return err
	}
	if err != nil {
		logger.Warn("%v", err)
	} else if repo != nil {
		logger.Info("stored run %s", run.ID)
	}

	if err := renderer.RenderRun(out, run); err != nil {
		return errors.Wrap(err, "failed to render report")
	}

	if cfg.Output.XLSXOut != "" {
		if err := excel.SaveRun(run, cfg.Output.XLSXOut); err != nil {
			return errors.Wrap(err, "failed to export results")
		}
		logger.Info("results written to %s", cfg.Output.XLSXOut)
	}

	if text {
		fmt.Fprintln(out, "Analysis complete.")
	}
	if len(run.Failed()) == len(run.Outcomes) {
		return errors.New(errors.CodeInvalidInput, "no measure could be analysed")
	}
	return nil
}

func selectSource(cmd *cobra.Command, cfg *config.Config, opts analyzeOptions, args []string, logger *internal.Logger) (ports.ObservationSource, error) {
	if opts.builtin {
		return testkit.NewStudySource(), nil
	}

	path := cfg.Input.DataFile
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		// machine-readable output keeps stdout clean
		prompt := cmd.OutOrStdout()
		if cfg.Output.Format != config.FormatText {
			prompt = cmd.ErrOrStderr()
		}
		p, err := promptFileName(cmd.InOrStdin(), prompt)
		if err != nil {
			return nil, err
		}
		path = p
	}

	return excel.NewDataReader(path, excel.ReadOptions{
		SkipMalformed: cfg.Input.SkipMalformed,
		Sheet:         opts.sheet,
	}, logger), nil
}

func promptFileName(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter the name of the CSV file containing the data: ")
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", errors.Wrap(err, "failed to read file name")
		}
		return "", errors.InvalidInput("no data file given")
	}
	name := strings.TrimSpace(scanner.Text())
	if name == "" {
		return "", errors.InvalidInput("no data file given")
	}
	return name, nil
}
