package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tern-db/tern/internal/catalog"
	"github.com/tern-db/tern/internal/optimizer"
)

// ExplainResult holds the optimizer output for JSON rendering.
type ExplainResult struct {
	PlanCount int      `json:"plan_count"`
	Plans     []string `json:"plans"`
}

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	CatalogDir string // CUE catalog directory
	DBPath     string // SQLite catalog database
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{}

	cmd := &cobra.Command{
		Use:   "explain <plan.yaml>",
		Short: "Run the optimizer over a plan fixture and print every candidate",
		Long: `Run the optimizer over a plan fixture and print every candidate plan.

The fixture describes a linear plan: a collection scan, filter conditions,
and a return. Index metadata comes from a CUE catalog directory (--catalog)
or a SQLite catalog database (--db); without either, no index rewrites are
attempted.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.CatalogDir, "catalog", "", "CUE catalog directory")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "SQLite catalog database")

	return cmd
}

func runExplain(rootOpts *RootOptions, opts *ExplainOptions, planPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   rootOpts.Verbose,
	}

	cat, err := openCatalog(opts, formatter)
	if err != nil {
		return outputExplainError(formatter, err)
	}

	fixture, err := LoadPlanFixture(planPath)
	if err != nil {
		return outputExplainError(formatter, err)
	}
	if errs := fixture.Validate(); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	p, err := fixture.Build()
	if err != nil {
		return outputExplainError(formatter, err)
	}
	formatter.VerboseLog("Built plan with %d node(s) over collection %q", p.Size(), fixture.Collection)

	opt := optimizer.New(
		optimizer.DefaultRules(cat),
		optimizer.WithLogger(rootOpts.Logger(formatter.ErrWriter)),
	)
	plans, err := opt.Optimize(p)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	result := ExplainResult{PlanCount: len(plans)}
	for _, candidate := range plans {
		result.Plans = append(result.Plans, candidate.Explain())
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	var sb strings.Builder
	for i, explained := range result.Plans {
		fmt.Fprintf(&sb, "-- plan %d --\n%s", i, explained)
	}
	fmt.Fprint(formatter.Writer, sb.String())
	return nil
}

// openCatalog resolves the catalog source from the command flags. With no
// source configured the optimizer still runs, it just never finds an index.
func openCatalog(opts *ExplainOptions, formatter *OutputFormatter) (catalog.Catalog, error) {
	switch {
	case opts.CatalogDir != "" && opts.DBPath != "":
		return nil, &LoadError{Code: ErrCodeGeneric, Message: "--catalog and --db are mutually exclusive"}

	case opts.CatalogDir != "":
		cat, errs := LoadCatalog(opts.CatalogDir, LoadModeFailFast)
		if len(errs) > 0 {
			return nil, errs[0]
		}
		formatter.VerboseLog("Loaded catalog from %s", opts.CatalogDir)
		return cat, nil

	case opts.DBPath != "":
		store, err := catalog.OpenStore(opts.DBPath)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("opening catalog database: %v", err)}
		}
		formatter.VerboseLog("Opened catalog database %s", opts.DBPath)
		return store, nil

	default:
		return catalog.NewMemoryCatalog(), nil
	}
}

// outputExplainError reports a load or build failure.
func outputExplainError(formatter *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	msg := err.Error()
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		code = loadErr.Code
		msg = loadErr.Message
	}
	_ = formatter.Error(code, msg, nil)
	return NewExitError(ExitCommandError, msg)
}
