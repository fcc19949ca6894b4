package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/commtrace/commtrace/internal/model"
	"github.com/commtrace/commtrace/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	outJSON        string
	outReport      string
	outTimelineCSV string
	outContactsCSV string
	rulesPath      string
	seed           int64
	analyzeTimeout time.Duration
	noCache        bool
	llmEnabled     bool
	llmProvider    string
	llmModel       string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <case-dir>",
	Short: "Analyze one case directory and generate a forensic report",
	Long: `Analyze reads the SMS, call detail, and email exports of one case
directory to:
- Normalize rows with heterogeneous columns into canonical records
- Fuse all sources into a single chronological timeline
- Classify each event with transparent keyword heuristics
- Detect anomalies and compute risk scores

Example:
  commtrace analyze ./case-001
  commtrace analyze ./case-001 --report report.txt --json summary.json
  commtrace analyze ./case-001 --timeline-csv timeline.csv --seed 42
  commtrace analyze ./case-001 --llm openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON summary path")
	analyzeCmd.Flags().StringVar(&outReport, "report", "", "output text report path")
	analyzeCmd.Flags().StringVar(&outTimelineCSV, "timeline-csv", "", "output timeline CSV path")
	analyzeCmd.Flags().StringVar(&outContactsCSV, "contacts-csv", "", "output contacts CSV path")

	// Analysis flags
	analyzeCmd.Flags().StringVar(&rulesPath, "rules", "", "classification rules YAML path (default: built-in tables)")
	analyzeCmd.Flags().Int64Var(&seed, "seed", 0, "seed for synthesized values (0 = time-derived)")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 2*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable result cache (force fresh analysis)")

	// LLM flags
	analyzeCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM narrative summary")
	analyzeCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	caseDir := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", caseDir)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", !noCache)
		fmt.Fprintln(os.Stderr)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	report, err := p.AnalyzeDir(ctx, caseDir)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Normalized %d records\n", report.Counts.Total())
		fmt.Fprintf(os.Stderr, "Fused %d timeline events\n", len(report.Timeline))
		if report.LLM != nil && report.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "Generated LLM narrative using %s/%s\n", report.LLM.Provider, report.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	out := pipeline.OutputPaths{
		ReportPath:      outReport,
		JSONPath:        outJSON,
		TimelineCSVPath: outTimelineCSV,
		ContactsCSVPath: outContactsCSV,
	}
	if err := p.RenderReport(report, out); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// buildConfig assembles the runtime configuration from defaults and the
// shared analysis flags.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Rules = rulesPath
	cfg.Seed = seed
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel

		// Get API key from environment
		switch llmProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "ollama":
			// Ollama doesn't need an API key
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}

	return cfg, nil
}
