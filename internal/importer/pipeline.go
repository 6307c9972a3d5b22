package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/alexanderramin/parada/internal/domain"
	"go.uber.org/zap"
)

// Cache memoises pipeline output by content hash.
type Cache interface {
	Get(ctx context.Context, key string) (*domain.Schedule, bool)
	Set(ctx context.Context, key string, s *domain.Schedule)
}

// Result is the outcome of one ingestion pass.
type Result struct {
	Schedule *domain.Schedule
	Report   *Report
	Cached   bool
}

// Pipeline turns the text of one export format into a schedule hierarchy.
type Pipeline struct {
	schema           Schema
	rules            RuleSet
	classifier       Classifier
	builder          HierarchyBuilder
	tolerance        float64
	criticalDuration float64
	now              func() time.Time
	cache            Cache
	logger           *zap.Logger
}

type Option func(*Pipeline)

func WithRules(rs RuleSet) Option {
	return func(p *Pipeline) { p.rules = rs }
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func WithCache(c Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithColumnTolerance sets the share of rows allowed a mismatched column count.
func WithColumnTolerance(f float64) Option {
	return func(p *Pipeline) { p.tolerance = f }
}

// WithCriticalDuration sets the duration magnitude above which tasks are critical.
func WithCriticalDuration(d float64) Option {
	return func(p *Pipeline) { p.criticalDuration = d }
}

// NewPipeline builds the pipeline for format.
func NewPipeline(format domain.SourceFormat, opts ...Option) (*Pipeline, error) {
	schema, err := SchemaFor(format)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		schema:           schema,
		rules:            DefaultRules(),
		tolerance:        DefaultColumnTolerance,
		criticalDuration: DefaultCriticalDuration,
		now:              time.Now,
		logger:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if errs := p.rules.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid rules: %w", errs[0])
	}
	p.builder = BuilderFor(schema.Hierarchy)
	if schema.Hierarchy == HierarchyByIndent {
		p.classifier = FixedClassifier{Phase: domain.PhasePreparation}
	} else {
		p.classifier = NewRuleClassifier(p.rules)
	}
	return p, nil
}

// Format returns the export format this pipeline reads.
func (p *Pipeline) Format() domain.SourceFormat {
	return p.schema.Format
}

// ContentHash is the cache key for text read as format.
func ContentHash(format domain.SourceFormat, text string) string {
	sum := sha256.Sum256([]byte(string(format) + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// Process decodes raw, consults the cache, and runs the pipeline on a miss.
// Successful results are stored back in the cache.
func (p *Pipeline) Process(ctx context.Context, raw []byte) (*Result, error) {
	text := DecodeText(raw)
	key := ContentHash(p.schema.Format, text)

	if p.cache != nil {
		if s, ok := p.cache.Get(ctx, key); ok {
			p.logger.Debug("schedule cache hit", zap.String("format", string(p.schema.Format)), zap.String("hash", key[:12]))
			return &Result{Schedule: s, Report: &Report{Valid: true, Errors: []string{}, Warnings: s.Warnings, Stats: s.Stats}, Cached: true}, nil
		}
	}

	sched, rep, err := p.Run(text)
	if err != nil {
		return &Result{Report: rep}, err
	}
	sched.ContentHash = key
	if p.cache != nil {
		p.cache.Set(ctx, key, sched)
	}
	return &Result{Schedule: sched, Report: rep}, nil
}

// Run is the uncached transformation from decoded text to schedule. It has
// no side effects apart from debug logging.
func (p *Pipeline) Run(text string) (*domain.Schedule, *Report, error) {
	table, err := Parse(text, p.schema.Delimiter, p.tolerance)
	if err != nil {
		return nil, nil, err
	}
	p.logger.Debug("parsed rows", zap.Int("rows", len(table.Rows)), zap.Int("ragged", table.Ragged))

	records, rep := Validate(table, p.schema)
	if !rep.Valid {
		return nil, rep, &ValidationError{Report: rep}
	}
	p.logger.Debug("validated rows",
		zap.Int("valid", rep.Stats.ValidRows),
		zap.Int("warnings", len(rep.Warnings)))

	now := p.now()
	meta, body := p.splitSummary(records)

	sched := &domain.Schedule{
		Format:      p.schema.Format,
		GeneratedAt: now,
		Metadata:    meta,
		Records:     body,
	}

	groups := make(map[domain.PhaseID][]domain.ScheduleRecord, len(domain.PhaseOrder))
	phaseOf := make(map[string]domain.PhaseID, len(body))
	for _, rec := range body {
		c := p.classifier.Classify(rec)
		if !c.Matched {
			sched.Unclassified = append(sched.Unclassified, rec.ID)
			rep.warnf("row %d: %q matched no phase rule, assigned to %s", rec.Row, rec.DisplayName(), c.Phase)
		}
		groups[c.Phase] = append(groups[c.Phase], rec)
		phaseOf[rec.ID] = c.Phase
	}

	eval := NewEvaluator(p.rules, now, p.criticalDuration)
	for _, id := range domain.PhaseOrder {
		assets, unattached := p.builder.Build(groups[id], eval)
		sched.Unattached += unattached
		sched.Phases = append(sched.Phases, eval.Phase(id, groups[id], assets))
	}
	if sched.Unattached > 0 {
		rep.warnf("%d level-4+ row(s) could not be attached to an asset", sched.Unattached)
	}

	for _, rec := range body {
		if m, ok := eval.milestoneFor(rec, phaseOf[rec.ID]); ok {
			sched.Milestones = append(sched.Milestones, m)
		}
	}
	sched.Areas = eval.Areas(body)
	sched.Warnings = rep.Warnings
	sched.Stats = rep.Stats

	p.logger.Debug("built hierarchy",
		zap.String("format", string(p.schema.Format)),
		zap.Int("records", len(body)),
		zap.Int("unclassified", len(sched.Unclassified)),
		zap.Int("unattached", sched.Unattached))
	return sched, rep, nil
}

// splitSummary separates summary rows from task rows and reads the schedule
// metadata from them. Code-structured exports treat levels 0 and 1 as
// summary rows; indentation exports use the row with ID 0.
func (p *Pipeline) splitSummary(records []domain.ScheduleRecord) (domain.Metadata, []domain.ScheduleRecord) {
	var summary, body []domain.ScheduleRecord
	for _, rec := range records {
		isSummary := rec.Level < 2
		if p.schema.Hierarchy == HierarchyByIndent {
			isSummary = rec.ID == "0"
		}
		if isSummary {
			summary = append(summary, rec)
		} else {
			body = append(body, rec)
		}
	}

	meta := domain.Metadata{Title: p.schema.DefaultTitle}
	if len(summary) == 0 {
		return meta, body
	}
	pick := summary[0]
	keywords := foldAll(p.rules.MetadataKeywords)
	for _, rec := range summary {
		if containsAny(Fold(rec.DisplayName()), keywords) {
			pick = rec
			break
		}
	}
	pct := pick.Percent
	meta.Title = domain.CoalesceStr(pick.DisplayName(), p.schema.DefaultTitle)
	meta.Start = pick.Start
	meta.Finish = pick.Finish
	meta.Duration = pick.Duration
	meta.Progress = &pct
	return meta, body
}
