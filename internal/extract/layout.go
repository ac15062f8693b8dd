// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/insight-engine/pkg/types"
)

const (
	// lineYTolerance groups fragments whose baselines differ by at most
	// this many points into one line.
	lineYTolerance = 2.5

	// wordSpaceMultiplier of the font size is the horizontal gap that
	// separates two fragments into distinct words.
	wordSpaceMultiplier = 0.3

	// blockGapMultiplier of the font size is the vertical gap that ends
	// a block; larger gaps start a new block.
	blockGapMultiplier = 1.8
)

// layoutBackend extracts text with font and position metadata using the
// ledongthuc/pdf reader. It is the only backend that can feed font-based
// heading detection downstream.
type layoutBackend struct{}

func newLayoutBackend() *layoutBackend { return &layoutBackend{} }

func (b *layoutBackend) Name() string                   { return "layout" }
func (b *layoutBackend) Source() types.ExtractionSource { return types.SourcePrimary }

// Extract parses the document page by page, grouping positioned text
// fragments into lines and lines into blocks.
func (b *layoutBackend) Extract(ctx context.Context, data []byte) (blocks []types.RawBlock, err error) {
	// The reader panics on some malformed xref tables; convert that to
	// a backend failure so the chain can fall through.
	defer func() {
		if r := recover(); r != nil {
			blocks, err = nil, fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		fragments := nonEmptyFragments(page.Content().Text)
		if len(fragments) == 0 {
			continue
		}

		lines := groupIntoLines(fragments)
		blocks = append(blocks, mergeIntoBlocks(lines, pageNum)...)
	}

	return blocks, nil
}

func nonEmptyFragments(texts []pdf.Text) []pdf.Text {
	out := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t.S) != "" {
			out = append(out, t)
		}
	}
	return out
}

// line is a row of fragments sharing a baseline.
type line struct {
	y     float64
	frags []pdf.Text
}

// groupIntoLines sorts fragments top-to-bottom (PDF Y grows upward) and
// gathers those within the baseline tolerance into lines, each ordered
// left to right.
func groupIntoLines(fragments []pdf.Text) []line {
	sorted := make([]pdf.Text, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].Y-sorted[j].Y) > lineYTolerance {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []line
	for _, t := range sorted {
		if n := len(lines); n > 0 && math.Abs(lines[n-1].y-t.Y) <= lineYTolerance {
			lines[n-1].frags = append(lines[n-1].frags, t)
			continue
		}
		lines = append(lines, line{y: t.Y, frags: []pdf.Text{t}})
	}
	return lines
}

// text joins a line's fragments, inserting a space wherever the
// horizontal gap exceeds the word-space threshold.
func (l line) text() string {
	var sb strings.Builder
	for i, f := range l.frags {
		if i > 0 {
			prev := l.frags[i-1]
			gap := f.X - (prev.X + prev.W)
			if gap > wordSpaceMultiplier*fontSizeOf(prev) && !strings.HasSuffix(sb.String(), " ") {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(f.S)
	}
	return strings.TrimSpace(sb.String())
}

// fontSize returns the dominant (largest) fragment font size on the line.
func (l line) fontSize() float64 {
	var size float64
	for _, f := range l.frags {
		if f.FontSize > size {
			size = f.FontSize
		}
	}
	return size
}

// bold reports whether the line's font names indicate a bold face.
func (l line) bold() bool {
	for _, f := range l.frags {
		name := strings.ToLower(f.Font)
		if strings.Contains(name, "bold") ||
			strings.Contains(name, "black") ||
			strings.Contains(name, "heavy") ||
			strings.Contains(name, "semibold") ||
			strings.Contains(name, "demibold") {
			return true
		}
	}
	return false
}

func (l line) bounds() (x0, x1 float64) {
	x0 = l.frags[0].X
	x1 = l.frags[0].X + l.frags[0].W
	for _, f := range l.frags[1:] {
		if f.X < x0 {
			x0 = f.X
		}
		if f.X+f.W > x1 {
			x1 = f.X + f.W
		}
	}
	return x0, x1
}

func fontSizeOf(t pdf.Text) float64 {
	if t.FontSize > 0 {
		return t.FontSize
	}
	return 12
}

// mergeIntoBlocks joins consecutive lines of matching style into blocks.
// A block ends when the font size changes, boldness flips, or the
// vertical gap to the next line exceeds the block-gap threshold.
func mergeIntoBlocks(lines []line, pageNum int) []types.RawBlock {
	var blocks []types.RawBlock

	var cur *types.RawBlock
	var curLines []string
	var prevY float64

	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = strings.Join(curLines, " ")
		if strings.TrimSpace(cur.Text) != "" {
			blocks = append(blocks, *cur)
		}
		cur, curLines = nil, nil
	}

	for _, l := range lines {
		text := l.text()
		if text == "" {
			continue
		}
		size := l.fontSize()
		bold := l.bold()
		x0, x1 := l.bounds()

		sameStyle := cur != nil &&
			math.Abs(cur.FontSize-size) < 0.3 &&
			(cur.FontWeight == types.WeightBold) == bold
		closeEnough := cur != nil && (prevY-l.y) < blockGapMultiplier*math.Max(size, 1)

		if sameStyle && closeEnough {
			curLines = append(curLines, text)
			if x0 < cur.BBox.X0 {
				cur.BBox.X0 = x0
			}
			if x1 > cur.BBox.X1 {
				cur.BBox.X1 = x1
			}
			cur.BBox.Y0 = l.y
		} else {
			flush()
			weight := types.WeightNormal
			if bold {
				weight = types.WeightBold
			}
			cur = &types.RawBlock{
				Page:       pageNum,
				BBox:       types.BBox{X0: x0, Y0: l.y, X1: x1, Y1: l.y + size},
				FontSize:   size,
				FontWeight: weight,
				Source:     types.SourcePrimary,
			}
			curLines = []string{text}
		}
		prevY = l.y
	}
	flush()

	return blocks
}
