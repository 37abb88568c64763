package app

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"aetherlens/domain/evidence"
	"aetherlens/internal"
	"aetherlens/internal/errors"
	"aetherlens/internal/normalize"
	"aetherlens/ports"
)

// NormalizedInsight pairs an insight with its render-ready sections.
type NormalizedInsight struct {
	InsightID string             `json:"insight_id"`
	Sections  []evidence.Section `json:"sections"`
}

// RunReport summarizes one batch normalization run.
type RunReport struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	Envelopes     int                          `json:"envelopes"`
	SectionCounts map[evidence.SectionKind]int `json:"section_counts"`
	// DroppedElements counts malformed array elements per detector across
	// the whole run; a climbing count means the producer's schema drifted.
	DroppedElements map[evidence.SectionKind]int `json:"dropped_elements,omitempty"`

	MeanSectionsPerInsight float64 `json:"mean_sections_per_insight"`
	MaxEstimatedSavingsEUR float64 `json:"max_estimated_savings_eur"`
}

// BatchNormalizer reads captured evidence payloads from a source and
// normalizes them concurrently. Each envelope is independent, so the only
// coordination needed is the worker limit.
type BatchNormalizer struct {
	source      ports.EvidenceSource
	log         *internal.Logger
	concurrency int
	pretty      bool
}

// NewBatchNormalizer creates a batch normalizer
func NewBatchNormalizer(source ports.EvidenceSource, log *internal.Logger, concurrency int, pretty bool) *BatchNormalizer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchNormalizer{
		source:      source,
		log:         log.With("batch"),
		concurrency: concurrency,
		pretty:      pretty,
	}
}

// Run normalizes every envelope from the source and streams the results as
// JSON lines to out, preserving source order regardless of worker
// scheduling. The returned report aggregates counts for the whole run.
func (b *BatchNormalizer) Run(ctx context.Context, out io.Writer) (*RunReport, error) {
	startedAt := time.Now()

	envelopes, err := b.source.Read(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "reading evidence source")
	}
	b.log.Info("normalizing %d evidence payloads with %d workers", len(envelopes), b.concurrency)

	type outcome struct {
		insight NormalizedInsight
		report  normalize.Report
	}
	outcomes := make([]outcome, len(envelopes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, env := range envelopes {
		i, env := i, env
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sections, report := normalize.NormalizeWithReport(env.Payload)
			outcomes[i] = outcome{
				insight: NormalizedInsight{InsightID: env.InsightID, Sections: sections},
				report:  report,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &RunReport{
		RunID:           uuid.NewString(),
		StartedAt:       startedAt,
		Envelopes:       len(envelopes),
		SectionCounts:   make(map[evidence.SectionKind]int),
		DroppedElements: make(map[evidence.SectionKind]int),
	}

	encoder := json.NewEncoder(out)
	if b.pretty {
		encoder.SetIndent("", "  ")
	}

	sectionsPerInsight := make([]float64, 0, len(outcomes))
	var savingsAmounts []float64
	for _, o := range outcomes {
		if err := encoder.Encode(o.insight); err != nil {
			return nil, errors.EncodeError(err)
		}
		sectionsPerInsight = append(sectionsPerInsight, float64(len(o.insight.Sections)))
		for _, section := range o.insight.Sections {
			report.SectionCounts[section.Kind]++
			if section.Kind == evidence.KindSavings {
				savingsAmounts = append(savingsAmounts, section.Savings.EstimatedSavingsEUR)
			}
		}
		for kind, dropped := range o.report.Dropped {
			report.DroppedElements[kind] += dropped
		}
	}

	if mean, err := stats.Mean(sectionsPerInsight); err == nil {
		report.MeanSectionsPerInsight = mean
	}
	if max, err := stats.Max(savingsAmounts); err == nil {
		report.MaxEstimatedSavingsEUR = max
	}

	report.Duration = time.Since(startedAt)
	for kind, dropped := range report.DroppedElements {
		b.log.Warn("dropped %d malformed %s elements", dropped, kind)
	}
	b.log.Info("run %s finished: %d envelopes in %s", report.RunID, report.Envelopes, report.Duration)
	return report, nil
}
