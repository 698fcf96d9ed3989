package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dshills/scorebias/internal/config"
	"github.com/dshills/scorebias/internal/dataset"
	"github.com/dshills/scorebias/internal/patch"
	"github.com/dshills/scorebias/internal/randsrc"
	"github.com/dshills/scorebias/internal/render"
	"github.com/dshills/scorebias/internal/schema"
	"github.com/dshills/scorebias/internal/sink"
	"github.com/dshills/scorebias/internal/stats"
	"github.com/dshills/scorebias/internal/synth"
	"github.com/dshills/scorebias/internal/variant"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

// codeError returns an exitErr for the given code.
func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// transformFlags holds the parsed flags for the transform command.
type transformFlags struct {
	variantName  string
	variantsFile string
	seed         uint64
	out          string
	report       string
	format       string
	diffOut      string
	dbDriver     string
	dbDSN        string
	workers      int
	columns      dataset.Columns
	verbose      bool
}

// describeFlags holds the parsed flags for the describe command.
type describeFlags struct {
	format  string
	out     string
	columns dataset.Columns
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "WARN: %s\n", err)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(3)
	}

	root := newRootCmd(cfg)
	if err := root.Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		// cobra already printed the error
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:     "scorebias",
		Short:   "Inject group-conditional bias into employee survey scores",
		Long:    "scorebias re-samples satisfaction (and optionally performance) scores from seeded, per-group clamped normal distributions and reports before/after statistics.",
		Version: version,
	}

	var tf transformFlags
	transformCmd := &cobra.Command{
		Use:   "transform <input.csv>",
		Short: "Rewrite scores using a bias variant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd.Context(), args[0], tf)
		},
	}
	f := transformCmd.Flags()
	f.StringVar(&tf.variantName, "variant", cfg.Variant, "Bias variant: baseline, amplified-bias, or a name from --variants-file")
	f.StringVar(&tf.variantsFile, "variants-file", cfg.VariantsFile, "YAML file defining extra variants")
	f.Uint64Var(&tf.seed, "seed", cfg.Seed, "Random seed")
	f.StringVar(&tf.out, "out", "", "Write transformed CSV to file instead of stdout")
	f.StringVar(&tf.report, "report", "", "Write a before/after statistics report to this file")
	f.StringVar(&tf.format, "format", "json", "Report format: json or md")
	f.StringVar(&tf.diffOut, "diff-out", "", "Write an audit diff (diff-match-patch format) of changed rows to this file")
	f.StringVar(&tf.dbDriver, "db-driver", cfg.DBDriver, "Database driver for --db-dsn: sqlite or postgres")
	f.StringVar(&tf.dbDSN, "db-dsn", cfg.DBDSN, "Store the run and its records in this database")
	f.IntVar(&tf.workers, "workers", 1, "Workers; more than 1 draws each record from its own seeded stream")
	addColumnFlags(f, &tf.columns, cfg.Columns)
	f.BoolVar(&tf.verbose, "verbose", false, "Print processing steps to stderr")

	var dflags describeFlags
	describeCmd := &cobra.Command{
		Use:   "describe <input.csv>",
		Short: "Report score statistics without transforming",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(args[0], dflags, cmd.OutOrStdout())
		},
	}
	f = describeCmd.Flags()
	f.StringVar(&dflags.format, "format", "md", "Report format: json or md")
	f.StringVar(&dflags.out, "out", "", "Write report to file instead of stdout")
	addColumnFlags(f, &dflags.columns, cfg.Columns)

	var variantsFile string
	variantsCmd := &cobra.Command{
		Use:   "variants",
		Short: "List available bias variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVariants(variantsFile, cmd.OutOrStdout())
		},
	}
	variantsCmd.Flags().StringVar(&variantsFile, "variants-file", cfg.VariantsFile, "YAML file defining extra variants")

	root.AddCommand(transformCmd, describeCmd, variantsCmd)
	return root
}

type flagSet interface {
	StringVar(p *string, name, value, usage string)
}

func addColumnFlags(f flagSet, cols *dataset.Columns, defaults dataset.Columns) {
	f.StringVar(&cols.Supporter, "supporter-column", defaults.Supporter, "Boolean supporter column")
	f.StringVar(&cols.Performance, "performance-column", defaults.Performance, "Integer performance column")
	f.StringVar(&cols.Satisfaction, "satisfaction-column", defaults.Satisfaction, "Satisfaction score column")
}

func runTransform(ctx context.Context, inputPath string, flags transformFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// --- Step 1: Validate flags ---
	if err := validateFlags(flags); err != nil {
		return codeError(3, "invalid flags: %s", err)
	}

	// --- Step 2: Resolve variant (fatal before any record is read) ---
	registry := variant.NewRegistry()
	if flags.variantsFile != "" {
		logVerbose(flags.verbose, "Loading variants: %s", flags.variantsFile)
		if err := registry.LoadFile(flags.variantsFile); err != nil {
			return codeError(3, "%s", err)
		}
	}
	v, err := registry.Get(flags.variantName)
	if err != nil {
		return codeError(3, "%s", err)
	}

	// --- Step 3: Load dataset ---
	logVerbose(flags.verbose, "Loading dataset: %s", inputPath)
	ds, err := dataset.Load(inputPath, flags.columns)
	if err != nil {
		return codeError(3, "loading dataset: %s", err)
	}
	supporters, nonSupporters := ds.Supporters()
	logVerbose(flags.verbose, "Loaded %d records (%d supporters, %d non-supporters)", len(ds.Records), supporters, nonSupporters)

	// --- Step 4: Transform ---
	mode := schema.ModeSequential
	var out []dataset.Record
	if flags.workers > 1 {
		mode = schema.ModeSharded
		logVerbose(flags.verbose, "Transforming with variant %s, seed %d, %d workers", v.Name, flags.seed, flags.workers)
		out, err = synth.TransformSharded(ctx, ds.Records, v, flags.seed, flags.workers)
	} else {
		logVerbose(flags.verbose, "Transforming with variant %s, seed %d", v.Name, flags.seed)
		out, err = synth.Transform(ds.Records, v, randsrc.NewLegacy(flags.seed))
	}
	if err != nil {
		return codeError(3, "transforming: %s", err)
	}

	// --- Step 5: Write transformed CSV ---
	csvBytes, err := ds.Encode(out)
	if err != nil {
		return codeError(4, "encoding output: %s", err)
	}
	if err := writeOutput(flags.out, csvBytes); err != nil {
		return codeError(4, "%s", err)
	}

	// --- Step 6: Audit diff ---
	if flags.diffOut != "" {
		original := string(ds.Raw)
		diffText := patch.GenerateDiff(inputPath, original, string(csvBytes))
		logVerbose(flags.verbose, "Writing audit diff (%d changed rows) → %s", patch.ChangedLines(original, string(csvBytes)), flags.diffOut)
		if err := os.WriteFile(flags.diffOut, []byte(diffText), 0o644); err != nil {
			return codeError(4, "writing diff: %s", err)
		}
	}

	runID := uuid.NewString()
	report := buildReport(runID, ds, out, flags.seed, mode)
	report.Input.Variant = v.Name
	if mode == schema.ModeSharded {
		report.Input.Workers = flags.workers
	}

	// --- Step 7: Report ---
	if flags.report != "" {
		logVerbose(flags.verbose, "Rendering report (format: %s) → %s", flags.format, flags.report)
		renderer, err := render.NewRenderer(flags.format)
		if err != nil {
			return codeError(3, "invalid format: %s", err)
		}
		reportBytes, err := renderer.Render(report)
		if err != nil {
			return codeError(4, "rendering report: %s", err)
		}
		if err := os.WriteFile(flags.report, reportBytes, 0o644); err != nil {
			return codeError(4, "writing report: %s", err)
		}
	}

	// --- Step 8: Store run ---
	if flags.dbDSN != "" {
		logVerbose(flags.verbose, "Storing run %s (%s)", runID, flags.dbDriver)
		store, err := sink.Open(ctx, sink.Driver(flags.dbDriver), flags.dbDSN)
		if err != nil {
			return codeError(4, "opening database: %s", err)
		}
		defer store.Close()
		run := sink.Run{
			ID:      runID,
			Variant: v.Name,
			Seed:    flags.seed,
			Mode:    string(mode),
			Source:  inputPath,
			Hash:    ds.Hash,
		}
		if err := store.SaveRun(ctx, run, ds.Header, out); err != nil {
			return codeError(4, "storing run: %s", err)
		}
	}

	logVerbose(flags.verbose, "Changed %d satisfaction and %d performance scores", report.Meta.ChangedSatisfaction, report.Meta.ChangedPerformance)
	return nil
}

func runDescribe(inputPath string, flags describeFlags, stdout io.Writer) error {
	renderer, err := render.NewRenderer(flags.format)
	if err != nil {
		return codeError(3, "invalid format: %s", err)
	}
	ds, err := dataset.Load(inputPath, flags.columns)
	if err != nil {
		return codeError(3, "loading dataset: %s", err)
	}

	report := buildReport(uuid.NewString(), ds, nil, 0, schema.ModeDescribe)
	reportBytes, err := renderer.Render(report)
	if err != nil {
		return codeError(4, "rendering report: %s", err)
	}
	if flags.out != "" {
		if err := os.WriteFile(flags.out, reportBytes, 0o644); err != nil {
			return codeError(4, "writing report: %s", err)
		}
		return nil
	}
	if _, err := stdout.Write(reportBytes); err != nil {
		return codeError(4, "writing report: %s", err)
	}
	if len(reportBytes) > 0 && reportBytes[len(reportBytes)-1] != '\n' {
		fmt.Fprintln(stdout)
	}
	return nil
}

func runVariants(variantsFile string, stdout io.Writer) error {
	registry := variant.NewRegistry()
	if variantsFile != "" {
		if err := registry.LoadFile(variantsFile); err != nil {
			return codeError(3, "%s", err)
		}
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSUPPORTERS\tNON-SUPPORTERS\tPERFORMANCE")
	for _, name := range registry.Names() {
		v, _ := registry.Get(name)
		perf := "-"
		if v.BiasesPerformance() {
			perf = fmt.Sprintf("+1 p=%g / -1 p=%g", v.Performance.PromoteProb, v.Performance.DemoteProb)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, describeDist(v.Supporters), describeDist(v.NonSupporters), perf)
	}
	return tw.Flush()
}

func describeDist(d *variant.Distribution) string {
	lo, hi := d.Bounds()
	return fmt.Sprintf("N(%g, %g) [%g, %g]", *d.Mean, d.StdDev, lo, hi)
}

// buildReport assembles the report; after is nil for describe-only runs.
func buildReport(runID string, ds *dataset.Dataset, after []dataset.Record, seed uint64, mode schema.Mode) *schema.Report {
	supporters, nonSupporters := ds.Supporters()
	report := &schema.Report{
		Tool:    "scorebias",
		Version: version,
		RunID:   runID,
		Input: schema.Input{
			File: ds.Path,
			Hash: ds.Hash,
			Seed: seed,
			Mode: mode,
		},
		Before: stats.Summarize(ds.Records),
		Meta: schema.Meta{
			Records:       len(ds.Records),
			Supporters:    supporters,
			NonSupporters: nonSupporters,
		},
	}
	if after != nil {
		summary := stats.Summarize(after)
		report.After = &summary
		report.Meta.ChangedPerformance, report.Meta.ChangedSatisfaction = stats.Changed(ds.Records, after)
	}
	return report
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		return nil
	}
	if _, err := os.Stdout.Write(data); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// validateFlags returns an error if any flag value is invalid.
func validateFlags(flags transformFlags) error {
	switch flags.format {
	case "json", "md":
	default:
		return fmt.Errorf("--format must be json or md, got %q", flags.format)
	}

	if flags.dbDSN != "" {
		switch sink.Driver(flags.dbDriver) {
		case sink.DriverSQLite, sink.DriverPostgres:
		default:
			return fmt.Errorf("--db-driver must be sqlite or postgres, got %q", flags.dbDriver)
		}
	}

	if flags.workers < 1 {
		return fmt.Errorf("--workers must be >= 1, got %d", flags.workers)
	}

	if flags.columns.Supporter == "" || flags.columns.Performance == "" || flags.columns.Satisfaction == "" {
		return fmt.Errorf("column names must not be empty")
	}

	return nil
}

// logVerbose writes an INFO line to stderr when verbose mode is enabled.
func logVerbose(verbose bool, format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "INFO: "+format+"\n", args...)
	}
}
