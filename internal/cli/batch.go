package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/commtrace/commtrace/internal/pipeline"
	"github.com/commtrace/commtrace/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple case directories from a file in parallel",
	Long: `Batch processes multiple case directories concurrently:
- Read case directory paths from input file (one per line, # comments)
- Analyze cases in parallel with configurable worker count
- Generate individual report and summary files for each case

Example:
  commtrace batch cases.txt
  commtrace batch cases.txt --concurrency 10 --output-dir ./reports
  commtrace batch cases.txt --concurrency 5 --timeout 5m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./commtrace-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Shared analysis flags
	batchCmd.Flags().StringVar(&rulesPath, "rules", "", "classification rules YAML path (default: built-in tables)")
	batchCmd.Flags().Int64Var(&seed, "seed", 0, "seed for synthesized values (0 = time-derived)")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable result cache (force fresh analysis)")

	// LLM flags
	batchCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM narrative summary")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "Commtrace batch processing\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Concurrency.Workers = concurrency
	if llmEnabled {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", llmProvider, llmModel)
	}
	fmt.Fprintln(os.Stderr)

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, concurrency)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", result.Dir, result.Error)
			continue
		}

		successCount++

		slug := sanitizeFilename(result.Dir)
		out := pipeline.OutputPaths{
			ReportPath: filepath.Join(outputDir, slug+".txt"),
			JSONPath:   filepath.Join(outputDir, slug+".json"),
		}
		if err := p.RenderReport(result.Report, out); err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: render: %v\n", result.Dir, err)
			continue
		}

		fmt.Fprintf(os.Stderr, "OK   %s (risk: %d/100)\n", result.Dir, result.Report.Assessment.SimpleScore)
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Batch complete: %d cases, %d succeeded, %d failed\n",
		len(results), successCount, failureCount)
	fmt.Fprintf(os.Stderr, "Output: %s\n", outputDir)

	return nil
}

// sanitizeFilename turns a case directory path into a safe file stem
func sanitizeFilename(s string) string {
	s = filepath.Base(filepath.Clean(s))

	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(s)

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" || s == "." {
		s = "case"
	}

	return s
}
