// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// streamBackend extracts text by parsing PDF content-stream operators via
// pdfcpu. It carries no font metadata: every block gets the unknown font
// size sentinel and normal weight.
type streamBackend struct{}

func newStreamBackend() *streamBackend { return &streamBackend{} }

func (b *streamBackend) Name() string                   { return "stream" }
func (b *streamBackend) Source() types.ExtractionSource { return types.SourceSecondary }

// Extract reads and optimizes the document, then parses each page's
// content stream for text-showing operators. Paragraph boundaries within
// a page become block boundaries.
func (b *streamBackend) Extract(ctx context.Context, data []byte) ([]types.RawBlock, error) {
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	var blocks []types.RawBlock
	for pageNum := 1; pageNum <= pdfCtx.PageCount; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageText := extractPageText(pdfCtx, pageNum)
		if pageText == "" {
			continue
		}

		for _, para := range splitParagraphs(pageText) {
			blocks = append(blocks, types.RawBlock{
				Text:       para,
				Page:       pageNum,
				FontSize:   types.FontSizeUnknown,
				FontWeight: types.WeightNormal,
				Source:     types.SourceSecondary,
			})
		}
	}

	if len(blocks) == 0 {
		return nil, fmt.Errorf("no text content found")
	}
	return blocks, nil
}

// extractPageText pulls one page's raw content stream and decodes its
// text operators. Failures yield an empty page rather than an error so a
// single broken page does not sink the document.
func extractPageText(pdfCtx *model.Context, pageNum int) string {
	r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNum)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return parseContentStream(data)
}

// pdfStringRe matches PDF string literals in parentheses: (text here)
var pdfStringRe = regexp.MustCompile(`\(([^)]*)\)`)

// parseContentStream walks the stream line by line, collecting text from
// Tj, TJ, and ' operators and inserting whitespace on positioning
// operators (Td, TD, T*).
func parseContentStream(data []byte) string {
	var sb strings.Builder

	for _, rawLine := range bytes.Split(data, []byte{'\n'}) {
		rawLine = bytes.TrimSpace(rawLine)
		if len(rawLine) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(rawLine, []byte("Tj")), bytes.HasSuffix(rawLine, []byte("TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(rawLine, -1) {
				sb.WriteString(decodePDFString(m[1]))
			}

		case bytes.HasSuffix(rawLine, []byte("'")) && bytes.Contains(rawLine, []byte("(")):
			for _, m := range pdfStringRe.FindAllSubmatch(rawLine, -1) {
				sb.WriteByte('\n')
				sb.WriteString(decodePDFString(m[1]))
			}

		case bytes.HasSuffix(rawLine, []byte("Td")), bytes.HasSuffix(rawLine, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}

		case bytes.Equal(rawLine, []byte("T*")):
			sb.WriteByte('\n')
		}
	}

	return normalizeText(sb.String())
}

// decodePDFString handles basic PDF escape sequences including octal
// escapes like \040.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

// normalizeText collapses runs of whitespace to single spaces, preserving
// newlines so paragraph splitting still works.
func normalizeText(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		switch {
		case r == '\n':
			sb.WriteByte('\n')
			prevSpace = true
		case unicode.IsSpace(r):
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		case unicode.IsPrint(r):
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}

// splitParagraphs breaks page text on blank lines; a page without blank
// lines becomes a single block.
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var result []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(strings.ReplaceAll(p, "\n", " "))
		if p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 && strings.TrimSpace(text) != "" {
		result = []string{strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))}
	}
	return result
}
