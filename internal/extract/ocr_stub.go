//go:build !ocr

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Stub OCR backend compiled when the "ocr" build tag is not set. The
// fallback chain still includes the backend so engine behavior is
// identical either way; it just always fails, which surfaces as an
// ExtractionFailure when the earlier backends also produced nothing.
//
// To enable OCR, install Tesseract and rebuild with:
//
//	go build -tags ocr
package extract

import (
	"context"
	"errors"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// ErrOCRNotEnabled is returned when OCR is invoked but support was not
// compiled in.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

type ocrBackend struct {
	language string
}

func newOCRBackend(language string) *ocrBackend {
	return &ocrBackend{language: language}
}

func (b *ocrBackend) Name() string                   { return "ocr" }
func (b *ocrBackend) Source() types.ExtractionSource { return types.SourceOCR }

func (b *ocrBackend) Extract(ctx context.Context, data []byte) ([]types.RawBlock, error) {
	return nil, ErrOCRNotEnabled
}
