//go:build ocr

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// OCR backend wrapping the Tesseract engine via gosseract. Requires
// Tesseract installed on the system and the "ocr" build tag; without the
// tag the stub in ocr_stub.go is compiled instead.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// ocrBackend recognizes text from page images when no usable text layer
// exists. Images are staged to a temp directory via pdfcpu, recognized
// page by page, and the staging directory removed afterwards.
type ocrBackend struct {
	language string
}

func newOCRBackend(language string) *ocrBackend {
	if language == "" {
		language = "eng"
	}
	return &ocrBackend{language: language}
}

func (b *ocrBackend) Name() string                   { return "ocr" }
func (b *ocrBackend) Source() types.ExtractionSource { return types.SourceOCR }

// Extract stages the PDF and its page images on disk, then runs Tesseract
// over each page's images. Every non-empty page becomes one block.
func (b *ocrBackend) Extract(ctx context.Context, data []byte) ([]types.RawBlock, error) {
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	workDir, err := os.MkdirTemp("", "insight-ocr-")
	if err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	pdfPath := filepath.Join(workDir, "input.pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("staging pdf: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(b.language); err != nil {
		return nil, fmt.Errorf("setting OCR language: %w", err)
	}

	var blocks []types.RawBlock
	for pageNum := 1; pageNum <= pdfCtx.PageCount; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := b.recognizePage(client, pdfPath, workDir, pageNum)
		if err != nil {
			// A page without recognizable images is skipped, not fatal.
			continue
		}
		if text == "" {
			continue
		}

		blocks = append(blocks, types.RawBlock{
			Text:       text,
			Page:       pageNum,
			FontSize:   types.FontSizeUnknown,
			FontWeight: types.WeightNormal,
			Source:     types.SourceOCR,
		})
	}

	if len(blocks) == 0 {
		return nil, fmt.Errorf("no recognizable text on any page")
	}
	return blocks, nil
}

// recognizePage extracts one page's images into a per-page directory and
// concatenates the Tesseract output for each.
func (b *ocrBackend) recognizePage(client *gosseract.Client, pdfPath, workDir string, pageNum int) (string, error) {
	pageDir := filepath.Join(workDir, fmt.Sprintf("page-%d", pageNum))
	if err := os.MkdirAll(pageDir, 0o755); err != nil {
		return "", err
	}

	if err := api.ExtractImagesFile(pdfPath, pageDir, []string{strconv.Itoa(pageNum)}, nil); err != nil {
		return "", fmt.Errorf("extracting page %d images: %w", pageNum, err)
	}

	entries, err := os.ReadDir(pageDir)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := client.SetImage(filepath.Join(pageDir, entry.Name())); err != nil {
			continue
		}
		text, err := client.Text()
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, "\n"), nil
}
