package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cardsift/cardsift/internal/export"
	"github.com/cardsift/cardsift/internal/extract"
	"github.com/cardsift/cardsift/internal/fetch"
	"github.com/cardsift/cardsift/internal/model"
	"github.com/cardsift/cardsift/internal/ocr"
	"github.com/cardsift/cardsift/internal/pdfconvert"
	"github.com/cardsift/cardsift/internal/store"
)

var extractCmd = &cobra.Command{
	Use:   "extract <url-or-pdf>",
	Short: "Extract card records from a web page or PDF brochure",
	Long:  "Fetches a product page or reads a PDF brochure, runs the extraction engine, and writes the resulting records in the requested formats.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		source := args[0]
		output, _ := cmd.Flags().GetString("output")
		formatStr, _ := cmd.Flags().GetString("format")
		rulesPath, _ := cmd.Flags().GetString("rules")
		workers, _ := cmd.Flags().GetInt("workers")
		convertPDF, _ := cmd.Flags().GetBool("convert-pdf")
		outputPDF, _ := cmd.Flags().GetString("output-pdf")
		save, _ := cmd.Flags().GetBool("save")

		format, err := export.ParseFormat(formatStr)
		if err != nil {
			return err
		}

		engine, err := buildEngine(rulesPath, workers)
		if err != nil {
			return err
		}

		started := time.Now()
		doc, err := loadDocument(ctx, source)
		if err != nil {
			return err
		}

		records := engine.Extract(doc)
		zap.L().Info("extraction complete",
			zap.String("source", source),
			zap.Int("records", len(records)))

		if len(records) == 0 {
			fmt.Fprintln(os.Stderr, "No card records found.")
		}

		paths, err := export.WriteAll(records, output, format)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Println(p)
		}

		if convertPDF && doc.Kind == model.SourcePDF {
			if err := writeSearchablePDF(ctx, doc.Text, outputPDF, source); err != nil {
				return err
			}
		}

		if save {
			if err := saveRun(ctx, source, doc.Kind, records, started); err != nil {
				return err
			}
		}

		return nil
	},
}

func init() {
	extractCmd.Flags().String("output", "cards", "output file basename (extension added per format)")
	extractCmd.Flags().String("format", "json", "output format: json, csv, excel, or all")
	extractCmd.Flags().String("rules", "", "extra extraction rules YAML (default from config)")
	extractCmd.Flags().Int("workers", 0, "segment extraction workers (default from config)")
	extractCmd.Flags().Bool("convert-pdf", false, "also write a searchable PDF of the extracted text")
	extractCmd.Flags().String("output-pdf", "", "searchable PDF path (default <source>.searchable.pdf)")
	extractCmd.Flags().Bool("save", false, "record this run in the history database")
	rootCmd.AddCommand(extractCmd)
}

// buildEngine wires the extraction engine from flags and config.
func buildEngine(rulesPath string, workers int) (*extract.Engine, error) {
	if rulesPath == "" {
		rulesPath = cfg.Extract.RulesPath
	}
	if workers <= 0 {
		workers = cfg.Extract.Workers
	}

	opts := []extract.Option{extract.WithWorkers(workers)}
	if rulesPath != "" {
		rs, err := extract.LoadRuleSet(rulesPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, extract.WithRules(rs))
	}
	return extract.NewEngine(opts...), nil
}

// loadDocument turns a source argument into a normalizable raw document.
// URLs go through the fetcher, anything else is treated as a PDF path.
func loadDocument(ctx context.Context, source string) (model.RawDocument, error) {
	if isURL(source) {
		f := fetch.New(fetch.Options{
			UserAgent:      cfg.Fetch.UserAgent,
			Timeout:        time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries:     cfg.Fetch.MaxRetries,
			RequestsPerSec: cfg.Fetch.RequestsPerSec,
		})
		return f.Fetch(ctx, source)
	}

	if _, err := os.Stat(source); err != nil {
		return model.RawDocument{}, eris.Wrapf(err, "extract: source %q", source)
	}
	ex, err := ocr.NewExtractor(cfg.OCR)
	if err != nil {
		return model.RawDocument{}, err
	}
	return ocr.Document(ctx, ex, source)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func writeSearchablePDF(ctx context.Context, text, outPath, source string) error {
	if outPath == "" {
		outPath = strings.TrimSuffix(source, ".pdf") + ".searchable.pdf"
	}
	conv := pdfconvert.NewConverter(
		cfg.Convert.ChromePath,
		time.Duration(cfg.Convert.TimeoutSecs)*time.Second,
	)
	defer conv.Close()

	if err := conv.TextToPDF(ctx, text, outPath); err != nil {
		return err
	}
	fmt.Println(outPath)
	return nil
}

func saveRun(ctx context.Context, source string, kind model.SourceKind, records []model.CardRecord, started time.Time) error {
	st, err := initStore()
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	id, err := st.SaveRun(ctx, model.Run{
		Source:      source,
		Kind:        kind,
		RecordCount: len(records),
		Records:     records,
		StartedAt:   started,
		FinishedAt:  time.Now(),
	})
	if err != nil {
		return err
	}
	zap.L().Info("run saved", zap.String("run_id", id))
	return nil
}

func initStore() (*store.SQLiteStore, error) {
	return store.NewSQLite(cfg.Store.Path)
}
