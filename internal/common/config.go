package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/joseph-ayodele/scanocr/constants"
)

// EnvPrefix is prepended to every environment override (SCANOCR_OCR_LANGUAGE, ...).
const EnvPrefix = "SCANOCR"

// Config holds all application configuration
type Config struct {
	PathToFiles      string        `mapstructure:"pathtofiles"`
	AddPreProcessing bool          `mapstructure:"addpreprocessing"`
	OutputDir        string        `mapstructure:"output_dir"`
	Workers          int           `mapstructure:"workers"`
	Recursive        bool          `mapstructure:"recursive"`
	DocumentTimeout  time.Duration `mapstructure:"document_timeout"`
	OCR              OCRConfig     `mapstructure:"ocr"`
	Report           ReportConfig  `mapstructure:"report"`
	Metrics          MetricsConfig `mapstructure:"metrics"`
	Log              LogConfig     `mapstructure:"log"`
}

// OCRConfig holds rasterizer and engine configuration
type OCRConfig struct {
	Backend       string        `mapstructure:"backend"`
	Language      string        `mapstructure:"language"`
	EngineMode    string        `mapstructure:"engine_mode"`
	PageSegMode   int           `mapstructure:"page_seg_mode"`
	TessdataDir   string        `mapstructure:"tessdata_dir"`
	Tesseract     string        `mapstructure:"tesseract"`
	Pdftoppm      string        `mapstructure:"pdftoppm"`
	DPI           int           `mapstructure:"dpi"`
	MaxPages      int           `mapstructure:"max_pages"`
	PageTimeout   time.Duration `mapstructure:"page_timeout"`
	NormalizeText bool          `mapstructure:"normalize_text"`
}

// ReportConfig controls the optional XLSX run report
type ReportConfig struct {
	XLSXPath string `mapstructure:"xlsx_path"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Backends accepted by ocr.backend.
const (
	BackendCLI       = "cli"
	BackendGosseract = "gosseract"
)

// NewViper prepares a viper instance with defaults, environment binding and
// the optional config file. path may be empty, in which case scanocr.{json,yaml}
// is looked up in "." and "./config".
func NewViper(path string) (*viper.Viper, error) {
	// .env is optional; real environment variables still win over it
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("ocr.tessdata_dir", EnvPrefix+"_OCR_TESSDATA_DIR", "TESSDATA_PREFIX")

	if path != "" {
		if err := validateConfigFile(path); err != nil {
			return nil, err
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName("scanocr")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		return v, nil
	}
	if err := validateConfigFile(v.ConfigFileUsed()); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeConfig unmarshals and validates the merged configuration.
func DecodeConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyFallbacks()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads configuration from file, .env and environment variables
func LoadConfig(path string) (*Config, error) {
	v, err := NewViper(path)
	if err != nil {
		return nil, err
	}
	return DecodeConfig(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pathtofiles", "")
	v.SetDefault("addpreprocessing", false)
	v.SetDefault("output_dir", "")
	v.SetDefault("workers", 1)
	v.SetDefault("recursive", false)
	v.SetDefault("document_timeout", "30m")

	v.SetDefault("ocr.backend", BackendCLI)
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.engine_mode", string(constants.EngineModeDefault))
	v.SetDefault("ocr.page_seg_mode", 3)
	v.SetDefault("ocr.tessdata_dir", "")
	v.SetDefault("ocr.tesseract", "tesseract")
	v.SetDefault("ocr.pdftoppm", "pdftoppm")
	v.SetDefault("ocr.dpi", 300)
	v.SetDefault("ocr.max_pages", 0)
	v.SetDefault("ocr.page_timeout", "2m")
	v.SetDefault("ocr.normalize_text", false)

	v.SetDefault("report.xlsx_path", "")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func (c *Config) applyFallbacks() {
	if c.OutputDir == "" {
		c.OutputDir = c.PathToFiles
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	c.OCR.Backend = strings.ToLower(strings.TrimSpace(c.OCR.Backend))
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("PathToFiles", c.PathToFiles, Required).
		Field("workers", c.Workers, IntBetween(1, 64)).
		Field("ocr.backend", c.OCR.Backend, OneOf(BackendCLI, BackendGosseract)).
		Field("ocr.language", c.OCR.Language, Required).
		Field("ocr.page_seg_mode", c.OCR.PageSegMode, IntBetween(0, 13)).
		Field("ocr.dpi", c.OCR.DPI, IntBetween(50, 1200)).
		Field("ocr.max_pages", c.OCR.MaxPages, IntBetween(0, 100000)).
		Field("ocr.page_timeout", c.OCR.PageTimeout, NonNegativeDuration).
		Field("document_timeout", c.DocumentTimeout, NonNegativeDuration)
	if _, ok := constants.ParseEngineMode(c.OCR.EngineMode); !ok {
		v.Add(ValidationError{Field: "ocr.engine_mode", Value: c.OCR.EngineMode, Message: "is not a known engine mode"})
	}
	if v.HasErrors() {
		return NewAppError(CodeConfig, v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}

// Mode returns the parsed engine mode; Validate has already rejected unknown values.
func (c OCRConfig) Mode() constants.EngineMode {
	m, _ := constants.ParseEngineMode(c.EngineMode)
	return m
}

func validateConfigFile(path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := ValidateJSONAgainstSchema(configSchema, data); err != nil {
		return NewAppError(CodeConfig, path, err)
	}
	return nil
}
