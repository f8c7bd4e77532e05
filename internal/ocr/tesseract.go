package ocr

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Tesseract OCRs image-based PDFs: pdftoppm rasterizes each page to PNG,
// then tesseract reads them. Pages are joined with blank lines so each page
// stays a paragraph boundary for segmentation.
type Tesseract struct {
	tessPath string
	ppmPath  string
}

// NewTesseract creates a Tesseract extractor. Empty paths fall back to the
// binaries on PATH.
func NewTesseract(tessPath, ppmPath string) *Tesseract {
	if tessPath == "" {
		tessPath = "tesseract"
	}
	if ppmPath == "" {
		ppmPath = "pdftoppm"
	}
	return &Tesseract{tessPath: tessPath, ppmPath: ppmPath}
}

// ExtractText rasterizes the PDF and OCRs every page in order.
func (t *Tesseract) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	dir, err := os.MkdirTemp("", "cardsift-ocr-*")
	if err != nil {
		return "", eris.Wrap(err, "ocr: create temp dir")
	}
	defer func() { _ = os.RemoveAll(dir) }()

	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, t.ppmPath, "-r", "300", "-png", pdfPath, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "ocr: pdftoppm failed for %s: %s", pdfPath, stderr.String())
	}

	pages, err := filepath.Glob(prefix + "*.png")
	if err != nil {
		return "", eris.Wrap(err, "ocr: glob pages")
	}
	if len(pages) == 0 {
		return "", eris.Errorf("ocr: pdftoppm produced no pages for %s", pdfPath)
	}
	sort.Strings(pages)

	var out strings.Builder
	for i, page := range pages {
		zap.L().Debug("ocr: processing page",
			zap.Int("page", i+1),
			zap.Int("total", len(pages)),
		)
		text, err := t.ocrImage(ctx, page)
		if err != nil {
			return "", err
		}
		out.WriteString(text)
		out.WriteString("\n\n")
	}
	return out.String(), nil
}

// ocrImage runs tesseract on one page image, text to stdout.
func (t *Tesseract) ocrImage(ctx context.Context, imagePath string) (string, error) {
	cmd := exec.CommandContext(ctx, t.tessPath, imagePath, "stdout")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "ocr: tesseract failed for %s: %s", imagePath, stderr.String())
	}
	return stdout.String(), nil
}
