// Package config loads application configuration from config.yaml and
// CARDSIFT_* environment variables and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	OCR     OCRConfig     `yaml:"ocr" mapstructure:"ocr"`
	Convert ConvertConfig `yaml:"convert" mapstructure:"convert"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// FetchConfig configures web page retrieval.
type FetchConfig struct {
	UserAgent      string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries     int     `yaml:"max_retries" mapstructure:"max_retries"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// OCRConfig configures PDF text extraction.
type OCRConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	TesseractPath string `yaml:"tesseract_path" mapstructure:"tesseract_path"`
	PdfToPPMPath  string `yaml:"pdftoppm_path" mapstructure:"pdftoppm_path"`
}

// ConvertConfig configures image-PDF to text-PDF conversion.
type ConvertConfig struct {
	ChromePath  string `yaml:"chrome_path" mapstructure:"chrome_path"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ExtractConfig configures the extraction engine wiring.
type ExtractConfig struct {
	RulesPath string `yaml:"rules_path" mapstructure:"rules_path"`
	Workers   int    `yaml:"workers" mapstructure:"workers"`
}

// StoreConfig configures the run-history database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the extraction HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CARDSIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.requests_per_sec", 2.0)
	v.SetDefault("ocr.provider", "auto")
	v.SetDefault("ocr.pdftotext_path", "pdftotext")
	v.SetDefault("ocr.tesseract_path", "tesseract")
	v.SetDefault("ocr.pdftoppm_path", "pdftoppm")
	v.SetDefault("convert.timeout_secs", 60)
	v.SetDefault("extract.workers", 4)
	v.SetDefault("store.path", "cardsift.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
