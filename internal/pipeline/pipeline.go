// Package pipeline orchestrates one case analysis end to end: ingest,
// normalize, aggregate, fuse, classify, score, and optionally narrate.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/commtrace/commtrace/internal/cache"
	"github.com/commtrace/commtrace/internal/classify"
	"github.com/commtrace/commtrace/internal/contacts"
	"github.com/commtrace/commtrace/internal/ingest"
	"github.com/commtrace/commtrace/internal/llm"
	"github.com/commtrace/commtrace/internal/model"
	"github.com/commtrace/commtrace/internal/normalize"
	"github.com/commtrace/commtrace/internal/risk"
	"github.com/commtrace/commtrace/internal/timeline"
)

// Pipeline runs the complete analysis for case directories. One
// Pipeline may serve many cases; each case gets a fresh normalizer so
// synthetic IDs and values never leak across cases.
type Pipeline struct {
	classifier *classify.Classifier
	renderer   *Renderer
	summarizer *llm.Summarizer // Optional LLM summarizer (nil if disabled)
	cache      cache.Cache     // nil when caching is disabled
	config     *model.Config
	seed       int64

	// now is the reference time for synthetic timestamps and report
	// metadata. Overridable for deterministic tests.
	now func() time.Time
}

// NewPipeline creates a new pipeline with the given configuration.
// The only hard failure is an unreadable rules file; LLM setup problems
// degrade to a warning.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	rules := classify.DefaultRules()
	if cfg.Rules != "" {
		var err error
		rules, err = classify.LoadRules(cfg.Rules)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
	}

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
		} else {
			summarizer = s
		}
	}

	var resultCache cache.Cache
	if cfg.Cache.Enabled {
		resultCache = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.TTL*2)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Pipeline{
		classifier: classify.New(rules),
		renderer:   NewRenderer(cfg.Output.TopContacts),
		summarizer: summarizer,
		cache:      resultCache,
		config:     cfg,
		seed:       seed,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// AnalyzeDir analyzes one case directory. Results are cached against a
// fingerprint of the input files; a cache hit skips the whole pipeline.
func (p *Pipeline) AnalyzeDir(ctx context.Context, dir string) (*model.CaseReport, error) {
	rows, err := ingest.ReadCase(dir, p.ingestOptions())
	if err != nil {
		return nil, err
	}

	key := p.cacheKey(rows)
	if p.cache != nil && key != "" {
		if data, ok := p.cache.Get(key); ok {
			var report model.CaseReport
			if err := json.Unmarshal(data, &report); err == nil {
				return &report, nil
			}
			// Corrupt entry; fall through and recompute.
			_ = p.cache.Delete(key)
		}
	}

	report, err := p.Analyze(ctx, rows, dir)
	if err != nil {
		return nil, err
	}

	if p.cache != nil && key != "" {
		if data, err := json.Marshal(report); err == nil {
			_ = p.cache.Set(key, data, p.config.Cache.TTL)
		}
	}

	return report, nil
}

// Analyze runs the core pipeline over already-ingested rows.
func (p *Pipeline) Analyze(ctx context.Context, rows *ingest.CaseRows, caseDir string) (*model.CaseReport, error) {
	norm := normalize.New(p.seed, p.now())

	sms := norm.SMSRows(rows.SMS)
	calls := norm.CallRows(rows.Calls)
	emails := norm.EmailRows(rows.Emails)

	contactMap := contacts.Aggregate(sms, calls, emails)
	subject, _ := contacts.InferSubject(sms, calls)

	events := timeline.Fuse(sms, calls, emails, p.classifier)
	assessment := risk.Score(events, subject)

	report := &model.CaseReport{
		CaseDir:     caseDir,
		GeneratedAt: p.now(),
		Counts: model.SourceCounts{
			SMS:    len(sms),
			Calls:  len(calls),
			Emails: len(emails),
		},
		Contacts:       contactMap,
		TopContacts:    rankContacts(contactMap, p.config.Output.TopContacts),
		SubjectAddress: subject,
		Timeline:       events,
		Assessment:     assessment,
	}

	// LLM narrative runs after scoring and never affects it.
	if p.summarizer.Enabled() {
		report.LLM = p.summarizer.Summarize(ctx, report)
	}

	return report, nil
}

// RenderReport writes the requested outputs and prints the console
// summary. Paths left empty are skipped.
func (p *Pipeline) RenderReport(report *model.CaseReport, out OutputPaths) error {
	if out.ReportPath != "" {
		if err := writeFile(out.ReportPath, p.renderer.RenderText(report)); err != nil {
			return fmt.Errorf("render report: %w", err)
		}
		p.logWrote("report", out.ReportPath)
	}

	if out.JSONPath != "" {
		data, err := p.renderer.RenderJSON(report)
		if err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if err := writeFile(out.JSONPath, data); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		p.logWrote("JSON summary", out.JSONPath)
	}

	if out.TimelineCSVPath != "" {
		if err := writeFile(out.TimelineCSVPath, p.renderer.RenderTimelineCSV(report)); err != nil {
			return fmt.Errorf("render timeline CSV: %w", err)
		}
		p.logWrote("timeline CSV", out.TimelineCSVPath)
	}

	if out.ContactsCSVPath != "" {
		if err := writeFile(out.ContactsCSVPath, p.renderer.RenderContactsCSV(report)); err != nil {
			return fmt.Errorf("render contacts CSV: %w", err)
		}
		p.logWrote("contacts CSV", out.ContactsCSVPath)
	}

	p.renderer.RenderSummary(os.Stdout, report)
	return nil
}

// OutputPaths names the optional artifact files of one analysis run.
type OutputPaths struct {
	ReportPath      string
	JSONPath        string
	TimelineCSVPath string
	ContactsCSVPath string
}

func (p *Pipeline) ingestOptions() ingest.Options {
	opts := ingest.DefaultOptions()
	if p.config.Ingest.SMSFile != "" {
		opts.SMSFile = p.config.Ingest.SMSFile
	}
	if p.config.Ingest.CDRFile != "" {
		opts.CallFile = p.config.Ingest.CDRFile
	}
	if len(p.config.Ingest.EmailFiles) > 0 {
		opts.EmailCandidates = p.config.Ingest.EmailFiles
	}
	return opts
}

// cacheKey fingerprints the case's input files. Empty when no file was
// found; such cases are cheap enough to recompute.
func (p *Pipeline) cacheKey(rows *ingest.CaseRows) string {
	if len(rows.Files) == 0 {
		return ""
	}
	files := make(map[string]os.FileInfo, len(rows.Files))
	for _, path := range rows.Files {
		info, err := os.Stat(path)
		if err != nil {
			return ""
		}
		files[path] = info
	}
	return cache.Key(cache.Fingerprint(files))
}

func (p *Pipeline) logWrote(what, path string) {
	if p.config.Output.Verbose {
		fmt.Fprintf(os.Stderr, "wrote %s: %s\n", what, path)
	}
}

// rankContacts orders contacts by total interactions descending, ties
// broken by address so output is stable across runs.
func rankContacts(contactMap map[string]*model.Contact, limit int) []*model.Contact {
	ranked := make([]*model.Contact, 0, len(contactMap))
	for _, c := range contactMap {
		ranked = append(ranked, c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalInteractions() != ranked[j].TotalInteractions() {
			return ranked[i].TotalInteractions() > ranked[j].TotalInteractions()
		}
		return ranked[i].Address < ranked[j].Address
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
