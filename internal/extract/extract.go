// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract converts a PDF byte stream into an ordered sequence of
// typed text blocks with page, position, and font metadata. Backends are
// tried in a fixed order with fallback on failure, timeout, or degenerate
// output; the first acceptable result short-circuits the rest.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// ErrExtractionFailed is returned only when every backend in the chain
// failed for a document.
var ErrExtractionFailed = errors.New("all extraction backends failed")

// ErrDocumentTooLarge is returned when the input exceeds the configured
// per-document size cap before any backend runs.
var ErrDocumentTooLarge = errors.New("document exceeds size limit")

// Backend extracts blocks from one PDF. Implementations must honor
// context cancellation and return an error rather than partial garbage.
type Backend interface {
	// Name identifies the backend in logs and errors.
	Name() string

	// Source is the ExtractionSource stamped on every block produced.
	Source() types.ExtractionSource

	// Extract parses the PDF bytes into ordered blocks.
	Extract(ctx context.Context, data []byte) ([]types.RawBlock, error)
}

// Engine runs the extraction fallback chain. Backend attempts within a
// single document are sequential to bound peak memory.
type Engine struct {
	backends []Backend
	cfg      types.ExtractionConfig
}

// NewEngine builds the default chain: layout-aware extraction, then
// content-stream extraction, then OCR. The OCR backend is a stub unless
// the binary is built with the ocr tag.
func NewEngine(cfg types.ExtractionConfig) *Engine {
	return &Engine{
		backends: []Backend{
			newLayoutBackend(),
			newStreamBackend(),
			newOCRBackend(cfg.OCRLanguage),
		},
		cfg: cfg,
	}
}

// NewEngineWithBackends builds an engine over an explicit chain, in order
// of preference. Used by tests to force backend failures.
func NewEngineWithBackends(cfg types.ExtractionConfig, backends ...Backend) *Engine {
	return &Engine{backends: backends, cfg: cfg}
}

// attempt is the outcome of one backend try, kept for the terminal error.
type attempt struct {
	backend string
	err     error
}

// Extract runs the fallback chain over one document. It never returns an
// error if at least one backend produces acceptable output, however
// degraded. Each attempt is time-boxed by cfg.BackendTimeout.
func (e *Engine) Extract(ctx context.Context, data []byte) ([]types.RawBlock, error) {
	if e.cfg.MaxDocumentBytes > 0 && int64(len(data)) > e.cfg.MaxDocumentBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrDocumentTooLarge, len(data), e.cfg.MaxDocumentBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrExtractionFailed)
	}

	var attempts []attempt

	for _, b := range e.backends {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		blocks, err := e.tryBackend(ctx, b, data)
		if err != nil {
			attempts = append(attempts, attempt{backend: b.Name(), err: err})
			continue
		}

		if reason := e.degenerate(b, blocks); reason != "" {
			attempts = append(attempts, attempt{backend: b.Name(), err: errors.New(reason)})
			continue
		}

		return blocks, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrExtractionFailed, summarize(attempts))
}

// tryBackend runs one backend under the per-attempt time box. A timeout
// counts as failure and triggers fallback.
func (e *Engine) tryBackend(ctx context.Context, b Backend, data []byte) ([]types.RawBlock, error) {
	timeout := e.cfg.BackendTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		blocks []types.RawBlock
		err    error
	}
	ch := make(chan outcome, 1)

	go func() {
		blocks, err := b.Extract(attemptCtx, data)
		ch <- outcome{blocks: blocks, err: err}
	}()

	select {
	case <-attemptCtx.Done():
		return nil, fmt.Errorf("backend %s: %w", b.Name(), attemptCtx.Err())
	case out := <-ch:
		if out.err != nil {
			return nil, fmt.Errorf("backend %s: %w", b.Name(), out.err)
		}
		return out.blocks, nil
	}
}

// degenerate reports why a backend's output is unusable, or "" when the
// output is acceptable. The layout backend must additionally yield font
// metadata; without it the content-stream backend is no worse and the
// chain moves on.
func (e *Engine) degenerate(b Backend, blocks []types.RawBlock) string {
	if len(blocks) == 0 {
		return "degenerate output: no blocks"
	}

	// OCR is the last resort: any non-empty recognition is accepted, so a
	// one-page scan that yields a single block still gets a result.
	if b.Source() == types.SourceOCR {
		return ""
	}

	minBlocks := e.cfg.MinBlocks
	if minBlocks <= 0 {
		minBlocks = 3
	}
	if len(blocks) < minBlocks {
		return fmt.Sprintf("degenerate output: %d blocks (minimum %d)", len(blocks), minBlocks)
	}

	if b.Source() == types.SourcePrimary {
		any := false
		for _, bl := range blocks {
			if bl.HasFontMetadata() {
				any = true
				break
			}
		}
		if !any {
			return "degenerate output: no font metadata"
		}
	}

	// Corrupt text layers read fine but decode to garbage; the ratio
	// checks push those documents down the chain toward OCR.
	q := measureQuality(blocks)
	if q.PrintableRatio < 0.6 {
		return fmt.Sprintf("degenerate output: printable ratio %.2f", q.PrintableRatio)
	}
	if q.WordlikeRatio < 0.3 {
		return fmt.Sprintf("degenerate output: wordlike ratio %.2f", q.WordlikeRatio)
	}

	return ""
}

func summarize(attempts []attempt) string {
	parts := make([]string, 0, len(attempts))
	for _, a := range attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.backend, a.err))
	}
	return strings.Join(parts, "; ")
}
