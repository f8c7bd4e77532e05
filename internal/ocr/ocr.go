// Package ocr recovers text from PDF brochures. Direct extraction via
// pdftotext is tried first; image-based PDFs fall back to rasterizing pages
// and running tesseract. All of it happens before text reaches the
// extraction engine, which never does I/O of its own.
package ocr

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cardsift/cardsift/internal/config"
	"github.com/cardsift/cardsift/internal/model"
)

// Extractor extracts text content from PDF files.
type Extractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// minDirectText is the threshold below which a direct extraction is treated
// as an image-based PDF and OCR kicks in.
const minDirectText = 100

// Auto tries direct text extraction first and falls back to OCR when the
// result is too short to be a real text layer.
type Auto struct {
	direct Extractor
	ocr    Extractor
}

// NewAuto wires the direct extractor with an OCR fallback.
func NewAuto(direct, fallback Extractor) *Auto {
	return &Auto{direct: direct, ocr: fallback}
}

// ExtractText returns the PDF's text, via OCR when the text layer is absent.
func (a *Auto) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	text, err := a.direct.ExtractText(ctx, pdfPath)
	if err == nil && len(strings.TrimSpace(text)) >= minDirectText {
		return text, nil
	}
	if a.ocr == nil {
		if err != nil {
			return "", err
		}
		return text, nil
	}

	zap.L().Info("ocr: pdf appears image-based, running ocr",
		zap.String("path", pdfPath),
		zap.Int("direct_bytes", len(strings.TrimSpace(text))),
	)
	return a.ocr.ExtractText(ctx, pdfPath)
}

// NewExtractor creates an Extractor based on config.
func NewExtractor(cfg config.OCRConfig) (Extractor, error) {
	direct := NewPdfToText(cfg.PdfToTextPath)
	switch cfg.Provider {
	case "", "auto":
		return NewAuto(direct, NewTesseract(cfg.TesseractPath, cfg.PdfToPPMPath)), nil
	case "pdftotext":
		return direct, nil
	case "tesseract":
		return NewTesseract(cfg.TesseractPath, cfg.PdfToPPMPath), nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}

// Document reads the PDF at path into a pdf-kind RawDocument for the engine.
func Document(ctx context.Context, ex Extractor, path string) (model.RawDocument, error) {
	text, err := ex.ExtractText(ctx, path)
	if err != nil {
		return model.RawDocument{}, err
	}
	return model.RawDocument{Text: text, Kind: model.SourcePDF}, nil
}
