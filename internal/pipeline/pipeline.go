// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates the document analysis run: extraction and
// segmentation fan out across a bounded worker pool, then persona
// inference, ranking, aggregation, and refinement run over the merged
// results.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/insight-engine/internal/extract"
	"github.com/pdiddy/insight-engine/internal/monitor"
	"github.com/pdiddy/insight-engine/internal/persona"
	"github.com/pdiddy/insight-engine/internal/rank"
	"github.com/pdiddy/insight-engine/internal/refine"
	"github.com/pdiddy/insight-engine/internal/segment"
	"github.com/pdiddy/insight-engine/internal/textstat"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// ErrAllDocumentsFailed is the terminal error when no document in the
// request survived extraction and segmentation.
var ErrAllDocumentsFailed = errors.New("all documents failed")

// ErrProcessingTimeout marks a document that exceeded the per-document
// wall-clock ceiling. The document is excluded from aggregation; the
// request itself proceeds.
var ErrProcessingTimeout = errors.New("document processing timed out")

// ErrNoDocuments is returned for a request with an empty document list.
var ErrNoDocuments = errors.New("request contains no documents")

// Document is one named PDF byte stream in a request.
type Document struct {
	Name string
	Data []byte
}

// Request carries the inputs for one analysis run.
type Request struct {
	Documents   []Document
	PersonaHint string
	JobToBeDone string
}

// DocumentFailure attributes a contained per-document error to the stage
// that produced it.
type DocumentFailure struct {
	Document string
	Stage    string
	Err      error
}

func (f DocumentFailure) Error() string {
	return fmt.Sprintf("%s: %s stage: %v", f.Document, f.Stage, f.Err)
}

// Report is the full outcome of a run: the output-contract result plus
// operational detail used for persistence and logging.
type Report struct {
	Result types.AnalysisResult

	// Persona is the resolved persona identifier, which may differ from
	// the bound profile's type when a hint did not match a known profile.
	Persona string

	// Failures lists documents excluded from the result, with the stage
	// that failed them.
	Failures []DocumentFailure

	// DegradedDocuments lists documents that fell back to page-boundary
	// segmentation.
	DegradedDocuments []string

	// Timings holds per-stage durations recorded during the run.
	Timings []monitor.StageTiming

	// ContentStats summarizes the text of the ranked sections.
	ContentStats textstat.Stats
}

// Extractor is the extraction stage seam; *extract.Engine implements it.
type Extractor interface {
	Extract(ctx context.Context, data []byte) ([]types.RawBlock, error)
}

// Pipeline runs analysis requests. A Pipeline is safe for concurrent use;
// its components are read-only after construction.
type Pipeline struct {
	cfg       types.Config
	extractor Extractor
	segmenter *segment.Segmenter
	registry  *persona.Registry
	refiner   *refine.Refiner
	logger    *slog.Logger
}

// New builds a Pipeline from cfg with the default extraction engine.
func New(cfg types.Config, logger *slog.Logger) (*Pipeline, error) {
	return NewWithExtractor(cfg, extract.NewEngine(cfg.Extraction), logger)
}

// NewWithExtractor builds a Pipeline over an explicit extraction stage.
// Used by tests to substitute extraction.
func NewWithExtractor(cfg types.Config, extractor Extractor, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	registry, err := persona.LoadRegistry(cfg.Persona.ProfilePath)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:       cfg,
		extractor: extractor,
		segmenter: segment.NewSegmenter(cfg.Segmentation),
		registry:  registry,
		refiner:   refine.NewRefiner(cfg.Refiner),
		logger:    logger,
	}, nil
}

// docOutcome is the per-worker result, indexed so aggregation order never
// depends on scheduling.
type docOutcome struct {
	sections []types.Section
	degraded bool
	failure  *DocumentFailure
}

// Run executes one analysis request. Per-document failures are contained
// and reported in the Report; Run returns an error only when the request
// is invalid, cancelled, or every document failed.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Report, error) {
	if len(req.Documents) == 0 {
		return nil, ErrNoDocuments
	}

	mon := monitor.New()
	outcomes := make([]docOutcome, len(req.Documents))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxWorkers())
	for i, doc := range req.Documents {
		i, doc := i, doc
		g.Go(func() error {
			outcome, err := p.processDocument(gctx, doc, mon)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Cancellation: release everything, emit no partial result.
		return nil, err
	}

	report := &Report{}
	var succeeded []types.Section
	// Indexed, not keyed by name: two request documents may share a
	// base name and each still contributes its own sections.
	kept := make([]int, 0, len(outcomes))
	for i, out := range outcomes {
		name := req.Documents[i].Name
		if out.failure != nil {
			report.Failures = append(report.Failures, *out.failure)
			p.logger.Warn("document excluded",
				"document", out.failure.Document,
				"stage", out.failure.Stage,
				"error", out.failure.Err)
			continue
		}
		if out.degraded {
			report.DegradedDocuments = append(report.DegradedDocuments, name)
		}
		kept = append(kept, i)
		succeeded = append(succeeded, out.sections...)
	}

	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: %d of %d", ErrAllDocumentsFailed,
			len(report.Failures), len(req.Documents))
	}

	stopInfer := mon.Track("persona", "")
	inferencer := persona.NewInferencer(p.registry, p.cfg.Persona)
	personaName, profile := inferencer.Infer(succeeded, req.PersonaHint)
	stopInfer()
	report.Persona = personaName
	p.logger.Info("persona resolved", "persona", personaName, "profile", profile.PersonaType)

	docNames := make([]string, len(req.Documents))
	for i, d := range req.Documents {
		docNames[i] = d.Name
	}

	stopRank := mon.Track("rank", "")
	ranker := rank.NewRanker(p.cfg.Ranking, docNames)
	var perDoc [][]types.ScoredSection
	for _, i := range kept {
		perDoc = append(perDoc, ranker.RankAll(outcomes[i].sections, profile, req.JobToBeDone))
	}
	ranked := ranker.Aggregate(perDoc)
	stopRank()

	stopRefine := mon.Track("refine", "")
	refined := make([]types.RefinedSubsection, 0, len(ranked))
	for _, s := range ranked {
		refined = append(refined, p.refiner.Refine(s, profile))
	}
	stopRefine()

	report.ContentStats = contentStats(ranked)
	report.Timings = mon.Timings()
	report.Result = types.NewAnalysisResult(types.ResultMetadata{
		InputDocuments:      docNames,
		Persona:             personaName,
		JobToBeDone:         req.JobToBeDone,
		ProcessingTimestamp: time.Now().UTC().Format(time.RFC3339),
	}, ranked, refined)

	p.logger.Info("analysis complete",
		"documents", len(docNames),
		"failed", len(report.Failures),
		"sections", len(ranked),
		"duration", mon.TotalDuration())
	return report, nil
}

// processDocument runs extraction and segmentation for one document under
// the per-document wall-clock ceiling. Per-document failures come back in
// the outcome; only request-level cancellation is returned as an error.
func (p *Pipeline) processDocument(ctx context.Context, doc Document, mon *monitor.Monitor) (docOutcome, error) {
	docCtx := ctx
	cancel := context.CancelFunc(func() {})
	if p.cfg.DocumentTimeout > 0 {
		docCtx, cancel = context.WithTimeout(ctx, p.cfg.DocumentTimeout)
	}
	defer cancel()

	stopExtract := mon.Track("extract", doc.Name)
	blocks, err := p.extractor.Extract(docCtx, doc.Data)
	stopExtract()
	if err != nil {
		if ctx.Err() != nil {
			return docOutcome{}, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) || docCtx.Err() != nil {
			err = fmt.Errorf("%w: %v", ErrProcessingTimeout, err)
		}
		return docOutcome{failure: &DocumentFailure{
			Document: doc.Name,
			Stage:    "extract",
			Err:      err,
		}}, nil
	}
	p.logger.Debug("document extracted", "document", doc.Name, "blocks", len(blocks))

	stopSegment := mon.Track("segment", doc.Name)
	res := p.segmenter.Segment(blocks, doc.Name)
	stopSegment()
	if len(res.Sections) == 0 {
		return docOutcome{failure: &DocumentFailure{
			Document: doc.Name,
			Stage:    "segment",
			Err:      errors.New("no sections produced"),
		}}, nil
	}
	if res.Degraded {
		p.logger.Info("segmentation degraded to page boundaries", "document", doc.Name)
	}

	return docOutcome{sections: res.Sections, degraded: res.Degraded}, nil
}

func (p *Pipeline) maxWorkers() int {
	if p.cfg.MaxWorkers > 0 {
		return p.cfg.MaxWorkers
	}
	return 4
}

// contentStats summarizes the ranked sections' body text, sorted by rank
// so the statistics are deterministic.
func contentStats(ranked []types.ScoredSection) textstat.Stats {
	sorted := make([]types.ScoredSection, len(ranked))
	copy(sorted, ranked)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ImportanceRank < sorted[j].ImportanceRank
	})

	var sb []byte
	for _, s := range sorted {
		sb = append(sb, s.BodyText...)
		sb = append(sb, ' ')
	}
	return textstat.Analyze(string(sb))
}
