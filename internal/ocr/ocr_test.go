package ocr

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardsift/cardsift/internal/config"
	"github.com/cardsift/cardsift/internal/model"
)

// fakeExtractor returns canned text or an error.
type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractText(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

func TestAuto_UsesDirectWhenTextPresent(t *testing.T) {
	direct := &fakeExtractor{text: strings.Repeat("Platinum Rewards Card Annual Fee $95 ", 10)}
	fallback := &fakeExtractor{text: "ocr text"}

	a := NewAuto(direct, fallback)
	text, err := a.ExtractText(context.Background(), "brochure.pdf")
	require.NoError(t, err)
	assert.Contains(t, text, "Platinum Rewards Card")
}

func TestAuto_FallsBackOnShortText(t *testing.T) {
	direct := &fakeExtractor{text: "   \n "}
	fallback := &fakeExtractor{text: "Gold Travel Card\nAnnual Fee: $250"}

	a := NewAuto(direct, fallback)
	text, err := a.ExtractText(context.Background(), "scan.pdf")
	require.NoError(t, err)
	assert.Contains(t, text, "Gold Travel Card")
}

func TestAuto_FallsBackOnDirectError(t *testing.T) {
	direct := &fakeExtractor{err: assert.AnError}
	fallback := &fakeExtractor{text: "recovered by ocr"}

	a := NewAuto(direct, fallback)
	text, err := a.ExtractText(context.Background(), "scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, "recovered by ocr", text)
}

func TestAuto_NoFallbackPropagatesError(t *testing.T) {
	direct := &fakeExtractor{err: assert.AnError}

	a := NewAuto(direct, nil)
	_, err := a.ExtractText(context.Background(), "scan.pdf")
	require.Error(t, err)
}

func TestNewExtractor_Providers(t *testing.T) {
	ex, err := NewExtractor(config.OCRConfig{Provider: "pdftotext"})
	require.NoError(t, err)
	assert.IsType(t, &PdfToText{}, ex)

	ex, err = NewExtractor(config.OCRConfig{Provider: "tesseract"})
	require.NoError(t, err)
	assert.IsType(t, &Tesseract{}, ex)

	ex, err = NewExtractor(config.OCRConfig{})
	require.NoError(t, err)
	assert.IsType(t, &Auto{}, ex)

	_, err = NewExtractor(config.OCRConfig{Provider: "carrier-pigeon"})
	require.Error(t, err)
}

func TestDocument_TagsPDFKind(t *testing.T) {
	ex := &fakeExtractor{text: "Everyday Cashback Card\nAnnual Fee: $0"}
	doc, err := Document(context.Background(), ex, "cards.pdf")
	require.NoError(t, err)
	assert.Equal(t, model.SourcePDF, doc.Kind)
	assert.Contains(t, doc.Text, "Everyday Cashback Card")
}
