// Package pdfconvert renders extracted text back into a searchable PDF.
//
// Image-only PDFs survive OCR as plain text. Rendering that text through a
// headless browser produces a selectable, searchable PDF that can be archived
// next to the original scan.
package pdfconvert

import (
	"context"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 11pt; line-height: 1.4; margin: 0; }
pre { white-space: pre-wrap; word-wrap: break-word; font: inherit; margin: 0; }
</style>
</head>
<body><pre>%TEXT%</pre></body>
</html>
`

// Converter turns plain text into a PDF via a headless Chrome instance.
// The browser is started lazily on first use and reused across conversions.
type Converter struct {
	chromePath string
	timeout    time.Duration

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewConverter returns a Converter. chromePath may be empty, in which case
// chromedp locates the browser on PATH.
func NewConverter(chromePath string, timeout time.Duration) *Converter {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Converter{chromePath: chromePath, timeout: timeout}
}

// Close shuts the browser down. Safe to call when the browser never started.
func (c *Converter) Close() {
	if c.browserCancel != nil {
		c.browserCancel()
	}
	if c.allocCancel != nil {
		c.allocCancel()
	}
}

func (c *Converter) start() error {
	if c.browserCtx != nil {
		return nil
	}

	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-sandbox", true),
	)
	if c.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(c.chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return eris.Wrap(err, "pdfconvert: starting browser")
	}

	c.allocCancel = allocCancel
	c.browserCtx = browserCtx
	c.browserCancel = browserCancel
	return nil
}

// TextToPDF renders text as a Letter-sized PDF and writes it to outPath.
func (c *Converter) TextToPDF(ctx context.Context, text, outPath string) error {
	if err := c.start(); err != nil {
		return err
	}

	f, err := os.CreateTemp("", "cardsift-*.html")
	if err != nil {
		return eris.Wrap(err, "pdfconvert: creating temp file")
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := f.WriteString(BuildHTML(text)); err != nil {
		f.Close()
		return eris.Wrap(err, "pdfconvert: writing temp file")
	}
	if err := f.Close(); err != nil {
		return eris.Wrap(err, "pdfconvert: closing temp file")
	}

	abs, err := filepath.Abs(name)
	if err != nil {
		return eris.Wrap(err, "pdfconvert: resolving path")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	tabCtx, tabCancel := chromedp.NewContext(c.browserCtx)
	defer tabCancel()

	var buf []byte
	err = chromedp.Run(tabCtx,
		chromedp.Navigate("file://"+abs),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPaperWidth(8.5).
				WithPaperHeight(11).
				WithMarginTop(0.75).
				WithMarginRight(0.75).
				WithMarginBottom(0.75).
				WithMarginLeft(0.75).
				WithPrintBackground(false).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return eris.Wrap(err, "pdfconvert: rendering pdf")
	}

	if err := os.WriteFile(outPath, buf, 0o644); err != nil {
		return eris.Wrap(err, "pdfconvert: writing output")
	}

	zap.L().Info("wrote searchable pdf",
		zap.String("path", outPath),
		zap.Int("bytes", len(buf)))
	return nil
}

// BuildHTML wraps text in the printable page template, escaping it for HTML.
func BuildHTML(text string) string {
	return strings.Replace(pageTemplate, "%TEXT%", html.EscapeString(text), 1)
}
