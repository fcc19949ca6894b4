package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/commtrace/commtrace/internal/model"
)

// Analyzer defines the interface for analyzing one case directory
type Analyzer interface {
	AnalyzeDir(ctx context.Context, dir string) (*model.CaseReport, error)
}

// CaseJob represents one case-directory analysis job
type CaseJob struct {
	Dir      string
	Analyzer Analyzer
}

// Execute executes the analysis job
func (j *CaseJob) Execute(ctx context.Context) Result {
	report, err := j.Analyzer.AnalyzeDir(ctx, j.Dir)
	return &CaseResult{
		Dir:    j.Dir,
		Report: report,
		Error:  err,
	}
}

// CaseResult represents the result of a case analysis job
type CaseResult struct {
	Dir    string
	Report *model.CaseReport
	Error  error
}

// GetError returns the error from the case result
func (r *CaseResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes multiple case directories concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessDirs analyzes multiple case directories concurrently. Results
// are drained while jobs are still being submitted so a case list
// larger than the pool's channel buffers cannot stall submission.
func (b *BatchProcessor) ProcessDirs(ctx context.Context, dirs []string) []*CaseResult {
	if len(dirs) == 0 {
		return []*CaseResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()
	defer pool.Shutdown()

	go func() {
		for _, dir := range dirs {
			pool.Submit(&CaseJob{
				Dir:      dir,
				Analyzer: b.analyzer,
			})
		}
	}()

	caseResults := make([]*CaseResult, 0, len(dirs))
	for result := range pool.Results() {
		caseResults = append(caseResults, result.(*CaseResult))
		if len(caseResults) == len(dirs) {
			break
		}
	}

	return caseResults
}

// ProcessFile reads case directories from a file and analyzes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*CaseResult, error) {
	dirs, err := ReadDirsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read case list: %w", err)
	}

	return b.ProcessDirs(ctx, dirs), nil
}

// ReadDirsFromFile reads case directory paths from a file (one per line)
func ReadDirsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var dirs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			dirs = append(dirs, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return dirs, nil
}
