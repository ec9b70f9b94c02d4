// Package cli wires the triage workflow behind a Cobra command tree. All
// collaborators arrive as interfaces so the commands stay testable without a
// network or database.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bkyoung/sectriage/internal/domain"
	"github.com/bkyoung/sectriage/internal/usecase/analyze"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// FindingAnalyzer defines the dependency required to run the analyze command.
type FindingAnalyzer interface {
	AnalyzeAll(ctx context.Context, findings []domain.Finding, prContext domain.PRContext, customInstructions string, workers int) ([]analyze.Outcome, error)
}

// AccessValidator confirms credentials and connectivity with a minimal live call.
type AccessValidator interface {
	ValidateAccess(ctx context.Context) error
}

// ContextFetcher builds PR context from a repository and PR number.
type ContextFetcher interface {
	PRContext(ctx context.Context, repository string, number int) (domain.PRContext, error)
}

// RunSummary aggregates one triage run for recording and reporting.
type RunSummary struct {
	Repository string
	PRNumber   int
	Total      int
	Kept       int
	Excluded   int
	Failed     int
}

// RunRecorder persists a completed run. Optional.
type RunRecorder interface {
	Record(ctx context.Context, summary RunSummary, outcomes []analyze.Outcome) error
}

// ReportWriter renders the triage outcome for the caller.
type ReportWriter interface {
	Write(out io.Writer, summary RunSummary, outcomes []analyze.Outcome) error
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Analyzer  FindingAnalyzer
	Validator AccessValidator
	Fetcher   ContextFetcher          // nil disables PR context fetching
	Recorder  RunRecorder             // nil disables run recording
	Reporter  ReportWriter            // default (json) report writer
	Reporters map[string]ReportWriter // alternate formats, keyed by --format value
	Args      Arguments
	Provider  string
	Model     string
	Version   string
}

// reporter resolves the --format flag against the configured writers.
func (d Dependencies) reporter(format string) (ReportWriter, error) {
	if format == "" || format == "json" {
		return d.Reporter, nil
	}
	if r, ok := d.Reporters[format]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("unknown output format %q (supported: json, markdown, sarif)", format)
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "sectriage",
		Short: "LLM-backed false-positive triage for security-scanner findings",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(analyzeCommand(deps))
	root.AddCommand(validateCommand(deps))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func analyzeCommand(deps Dependencies) *cobra.Command {
	var (
		findingsPath     string
		repository       string
		prNumber         int
		instructionsPath string
		outputPath       string
		format           string
		workers          int
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Judge scanner findings as true or false positives",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			reporter, err := deps.reporter(format)
			if err != nil {
				return err
			}

			findings, err := loadFindings(findingsPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if len(findings) == 0 {
				return fmt.Errorf("no findings to analyze in %s", findingsPath)
			}

			instructions, err := loadInstructions(instructionsPath)
			if err != nil {
				return err
			}

			var prContext domain.PRContext
			if repository != "" && prNumber > 0 && deps.Fetcher != nil {
				prContext, err = deps.Fetcher.PRContext(ctx, repository, prNumber)
				if err != nil {
					// PR context is additive; triage proceeds without it.
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
				}
			}

			outcomes, err := deps.Analyzer.AnalyzeAll(ctx, findings, prContext, instructions, workers)
			if err != nil {
				return err
			}

			summary := summarize(repository, prNumber, outcomes)

			if deps.Recorder != nil {
				if err := deps.Recorder.Record(ctx, summary, outcomes); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to record run: %v\n", err)
				}
			}

			out := cmd.OutOrStdout()
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer f.Close()
				out = f
			}
			return reporter.Write(out, summary, outcomes)
		},
	}

	cmd.Flags().StringVar(&findingsPath, "findings", "", "Path to scanner findings JSON (\"-\" for stdin)")
	cmd.Flags().StringVar(&repository, "repo", "", "Repository in owner/name form (for PR context)")
	cmd.Flags().IntVar(&prNumber, "pr", 0, "Pull request number (for PR context)")
	cmd.Flags().StringVar(&instructionsPath, "instructions", "", "Path to custom filtering instructions")
	cmd.Flags().StringVar(&outputPath, "output", "", "Write the report to this path instead of stdout")
	cmd.Flags().StringVar(&format, "format", "json", "Report format: json, markdown or sarif")
	cmd.Flags().IntVar(&workers, "workers", 0, "Max parallel analyses (0 = default)")
	_ = cmd.MarkFlagRequired("findings")

	return cmd
}

func validateCommand(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check provider credentials and connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.Validator.ValidateAccess(cmd.Context()); err != nil {
				return fmt.Errorf("access validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s access OK (model %s)\n", deps.Provider, deps.Model)
			return nil
		},
	}
}

// loadFindings reads scanner output: either a bare JSON array of findings or
// an object with a top-level "findings" array.
func loadFindings(path string, stdin io.Reader) ([]domain.Finding, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read findings: %w", err)
	}

	var findings []domain.Finding
	if err := json.Unmarshal(data, &findings); err == nil {
		return findings, nil
	}

	var wrapped struct {
		Findings []domain.Finding `json:"findings"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse findings: %w", err)
	}
	return wrapped.Findings, nil
}

func loadInstructions(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read instructions: %w", err)
	}
	return string(data), nil
}

func summarize(repository string, prNumber int, outcomes []analyze.Outcome) RunSummary {
	summary := RunSummary{
		Repository: repository,
		PRNumber:   prNumber,
		Total:      len(outcomes),
	}
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			summary.Failed++
		case o.Result.KeepFinding:
			summary.Kept++
		default:
			summary.Excluded++
		}
	}
	return summary
}
