package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cardsift/cardsift/internal/extract"
	"github.com/cardsift/cardsift/internal/fetch"
	"github.com/cardsift/cardsift/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an HTTP extraction server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		engine, err := buildEngine("", 0)
		if err != nil {
			return err
		}
		fetcher := fetch.New(fetch.Options{
			UserAgent:      cfg.Fetch.UserAgent,
			Timeout:        time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries:     cfg.Fetch.MaxRetries,
			RequestsPerSec: cfg.Fetch.RequestsPerSec,
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(engine, fetcher),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newRouter builds the extraction API routes.
func newRouter(engine *extract.Engine, fetcher *fetch.Fetcher) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/extract", func(w http.ResponseWriter, req *http.Request) {
		var body extractRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		doc, status, err := body.document(req.Context(), fetcher)
		if err != nil {
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}

		records := engine.Extract(doc)
		zap.L().Info("api extraction complete",
			zap.String("kind", string(doc.Kind)),
			zap.Int("records", len(records)))

		if records == nil {
			records = []model.CardRecord{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count":   len(records),
			"records": records,
		})
	})

	return r
}

// extractRequest accepts either inline text or a URL to fetch.
type extractRequest struct {
	Text string `json:"text"`
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

func (er extractRequest) document(ctx context.Context, fetcher *fetch.Fetcher) (model.RawDocument, int, error) {
	switch {
	case er.URL != "":
		doc, err := fetcher.Fetch(ctx, er.URL)
		if err != nil {
			return model.RawDocument{}, http.StatusBadGateway, err
		}
		return doc, http.StatusOK, nil
	case er.Text != "":
		kind := model.SourceKind(er.Kind)
		if kind == "" {
			kind = model.SourcePDF
		}
		if kind != model.SourceWeb && kind != model.SourcePDF {
			return model.RawDocument{}, http.StatusBadRequest, eris.Errorf("serve: unknown kind %q", er.Kind)
		}
		return model.RawDocument{Text: er.Text, Kind: kind}, http.StatusOK, nil
	default:
		return model.RawDocument{}, http.StatusBadRequest, eris.New("serve: text or url is required")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
