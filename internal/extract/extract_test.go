package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// fakeBackend is a scriptable backend for chain tests.
type fakeBackend struct {
	name   string
	source types.ExtractionSource
	blocks []types.RawBlock
	err    error
	delay  time.Duration
	calls  int
}

func (f *fakeBackend) Name() string                   { return f.name }
func (f *fakeBackend) Source() types.ExtractionSource { return f.source }

func (f *fakeBackend) Extract(ctx context.Context, _ []byte) ([]types.RawBlock, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.blocks, nil
}

func goodBlocks(source types.ExtractionSource, n int) []types.RawBlock {
	blocks := make([]types.RawBlock, n)
	for i := range blocks {
		size := 12.0
		if source != types.SourcePrimary {
			size = types.FontSizeUnknown
		}
		blocks[i] = types.RawBlock{
			Text:     fmt.Sprintf("This is readable paragraph number %d with ordinary words.", i+1),
			Page:     i + 1,
			FontSize: size,
			Source:   source,
		}
	}
	return blocks
}

func testCfg() types.ExtractionConfig {
	return types.ExtractionConfig{
		MaxDocumentBytes: 1 << 20,
		BackendTimeout:   200 * time.Millisecond,
		MinBlocks:        3,
	}
}

func TestExtractFirstBackendWins(t *testing.T) {
	a := &fakeBackend{name: "a", source: types.SourcePrimary, blocks: goodBlocks(types.SourcePrimary, 4)}
	b := &fakeBackend{name: "b", source: types.SourceSecondary, blocks: goodBlocks(types.SourceSecondary, 4)}

	engine := NewEngineWithBackends(testCfg(), a, b)
	blocks, err := engine.Extract(context.Background(), []byte("%PDF-fake"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if blocks[0].Source != types.SourcePrimary {
		t.Errorf("source = %s, want primary", blocks[0].Source)
	}
	if b.calls != 0 {
		t.Errorf("second backend called %d times, want 0", b.calls)
	}
}

func TestExtractFallbackOnFailure(t *testing.T) {
	tests := []struct {
		name string
		a    *fakeBackend
	}{
		{
			name: "backend error",
			a:    &fakeBackend{name: "a", source: types.SourcePrimary, err: errors.New("boom")},
		},
		{
			name: "too few blocks",
			a:    &fakeBackend{name: "a", source: types.SourcePrimary, blocks: goodBlocks(types.SourcePrimary, 1)},
		},
		{
			name: "no font metadata from layout backend",
			a: &fakeBackend{name: "a", source: types.SourcePrimary, blocks: []types.RawBlock{
				{Text: "first readable paragraph of ordinary words here"},
				{Text: "second readable paragraph of ordinary words here"},
				{Text: "third readable paragraph of ordinary words here"},
			}},
		},
		{
			name: "timeout",
			a:    &fakeBackend{name: "a", source: types.SourcePrimary, delay: time.Second},
		},
		{
			name: "garbage text",
			a: &fakeBackend{name: "a", source: types.SourcePrimary, blocks: []types.RawBlock{
				{Text: strings.Repeat("�", 40), FontSize: 12},
				{Text: strings.Repeat("�", 40), FontSize: 12},
				{Text: strings.Repeat("�", 40), FontSize: 12},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{name: "b", source: types.SourceSecondary, blocks: goodBlocks(types.SourceSecondary, 4)}
			engine := NewEngineWithBackends(testCfg(), tt.a, b)

			blocks, err := engine.Extract(context.Background(), []byte("%PDF-fake"))
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if len(blocks) == 0 {
				t.Fatal("no blocks returned")
			}
			if blocks[0].Source != types.SourceSecondary {
				t.Errorf("source = %s, want secondary", blocks[0].Source)
			}
		})
	}
}

func TestExtractAllBackendsFail(t *testing.T) {
	a := &fakeBackend{name: "a", source: types.SourcePrimary, err: errors.New("a broke")}
	b := &fakeBackend{name: "b", source: types.SourceSecondary, err: errors.New("b broke")}
	c := &fakeBackend{name: "c", source: types.SourceOCR, err: errors.New("c broke")}

	engine := NewEngineWithBackends(testCfg(), a, b, c)
	_, err := engine.Extract(context.Background(), []byte("%PDF-fake"))
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
	for _, msg := range []string{"a broke", "b broke", "c broke"} {
		if !strings.Contains(err.Error(), msg) {
			t.Errorf("error %q missing attempt detail %q", err, msg)
		}
	}
}

func TestExtractOCRAcceptedAsLastResort(t *testing.T) {
	a := &fakeBackend{name: "a", source: types.SourcePrimary, err: errors.New("no text layer")}
	b := &fakeBackend{name: "b", source: types.SourceSecondary, err: errors.New("no text layer")}
	c := &fakeBackend{name: "c", source: types.SourceOCR, blocks: []types.RawBlock{
		{Text: "n0isy 0CR t3xt", Page: 1, Source: types.SourceOCR},
		{Text: "m0re n0ise", Page: 2, Source: types.SourceOCR},
		{Text: "still s0mething", Page: 3, Source: types.SourceOCR},
	}}

	engine := NewEngineWithBackends(testCfg(), a, b, c)
	blocks, err := engine.Extract(context.Background(), []byte("%PDF-fake"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if blocks[0].Source != types.SourceOCR {
		t.Errorf("source = %s, want ocr", blocks[0].Source)
	}
}

func TestExtractOCRBelowBlockFloorStillAccepted(t *testing.T) {
	a := &fakeBackend{name: "a", source: types.SourcePrimary, err: errors.New("no text layer")}
	b := &fakeBackend{name: "b", source: types.SourceSecondary, err: errors.New("no text layer")}
	c := &fakeBackend{name: "c", source: types.SourceOCR, blocks: []types.RawBlock{
		{Text: "Single recognized page of a short scan.", Page: 1, Source: types.SourceOCR},
		{Text: "Second recognized page.", Page: 2, Source: types.SourceOCR},
	}}

	engine := NewEngineWithBackends(testCfg(), a, b, c)
	blocks, err := engine.Extract(context.Background(), []byte("%PDF-fake"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if blocks[0].Source != types.SourceOCR {
		t.Errorf("source = %s, want ocr", blocks[0].Source)
	}
}

func TestExtractOCREmptyOutputFails(t *testing.T) {
	a := &fakeBackend{name: "a", source: types.SourcePrimary, err: errors.New("no text layer")}
	b := &fakeBackend{name: "b", source: types.SourceOCR, blocks: nil}

	engine := NewEngineWithBackends(testCfg(), a, b)
	_, err := engine.Extract(context.Background(), []byte("%PDF-fake"))
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
}

func TestExtractSizeCap(t *testing.T) {
	cfg := testCfg()
	cfg.MaxDocumentBytes = 8

	engine := NewEngineWithBackends(cfg, &fakeBackend{name: "a", source: types.SourcePrimary})
	_, err := engine.Extract(context.Background(), []byte("way past the cap"))
	if !errors.Is(err, ErrDocumentTooLarge) {
		t.Fatalf("err = %v, want ErrDocumentTooLarge", err)
	}
}

func TestExtractContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngineWithBackends(testCfg(), &fakeBackend{name: "a", source: types.SourcePrimary, blocks: goodBlocks(types.SourcePrimary, 4)})
	_, err := engine.Extract(ctx, []byte("%PDF-fake"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
