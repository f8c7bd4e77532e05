package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardsift/cardsift/internal/model"
)

const cardPage = `<html><head><title>Our Cards</title></head><body>
<h2>Platinum Rewards Card</h2>
<p>Annual Fee: $95</p>
<p>2x points on dining and travel</p>
<h2>Everyday Cashback Card</h2>
<p>Annual Fee: $0</p>
<p>Cashback: 1.5% on everything</p>
<script>console.log("noise")</script>
</body></html>`

func testFetcher() *Fetcher {
	opts := DefaultOptions()
	opts.RequestsPerSec = 1000
	opts.InitialBackoff = time.Millisecond
	return New(opts)
}

func TestFetch_ReturnsWebDocument(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, cardPage)
	}))
	defer ts.Close()

	doc, err := testFetcher().Fetch(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, model.SourceWeb, doc.Kind)
	assert.Contains(t, doc.Text, "Platinum Rewards Card")
	assert.Contains(t, doc.Text, "Annual Fee: $95")
	assert.NotContains(t, doc.Text, "console.log")
	assert.NotContains(t, doc.Text, "<p>")
}

func TestFetch_RetriesOn500(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = fmt.Fprint(w, cardPage)
	}))
	defer ts.Close()

	doc, err := testFetcher().Fetch(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load())
	assert.Contains(t, doc.Text, "Everyday Cashback Card")
}

func TestFetch_NoRetryOn404(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer ts.Close()

	_, err := testFetcher().Fetch(context.Background(), ts.URL)
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestFetch_BlockedIsTerminal(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = fmt.Fprint(w, `<html><body>Please complete the CAPTCHA to continue</body></html>`)
	}))
	defer ts.Close()

	_, err := testFetcher().Fetch(context.Background(), ts.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")
	assert.EqualValues(t, 1, calls.Load())
}

func TestFetch_ContextCancellation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := testFetcher().Fetch(ctx, ts.URL)
	require.Error(t, err)
}

func TestDetectBlock(t *testing.T) {
	resp := &http.Response{StatusCode: 403, Header: http.Header{"Cf-Ray": []string{"abc"}}}
	blocked, kind := DetectBlock(resp, nil)
	assert.True(t, blocked)
	assert.Equal(t, BlockCloudflare, kind)

	resp = &http.Response{StatusCode: 200, Header: http.Header{}}
	blocked, kind = DetectBlock(resp, []byte("please solve this recaptcha"))
	assert.True(t, blocked)
	assert.Equal(t, BlockCaptcha, kind)

	blocked, kind = DetectBlock(resp, []byte("<html><body>Annual Fee: $95 and plenty of other text here to stay over the shell threshold</body></html>"))
	assert.False(t, blocked)
	assert.Equal(t, BlockNone, kind)
}

func TestHTMLToText_PreservesBlockBoundaries(t *testing.T) {
	text := HTMLToText(cardPage)

	assert.Contains(t, text, "Platinum Rewards Card\n")
	assert.Contains(t, text, "Annual Fee: $95\n")
	assert.NotContains(t, text, "Our Cards\nconsole")
}

func TestHTMLToText_Entities(t *testing.T) {
	text := HTMLToText(`<p>Fees &amp; Charges: &nbsp;$95</p>`)
	assert.Equal(t, "Fees & Charges: $95", text)
}

func TestPageTitle(t *testing.T) {
	assert.Equal(t, "Our Cards", PageTitle(cardPage))
	assert.Equal(t, "", PageTitle("<html><body>no title</body></html>"))
}
