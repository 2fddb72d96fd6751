package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"classd/internal/common/fsutil"
)

// Config holds the immutable runtime parameters of the gateway. It is
// constructed once at startup and passed explicitly to all components.
type Config struct {
	// HTTP listen address, e.g. ":8080".
	Addr string `json:"addr" yaml:"addr" toml:"addr"`
	// Base URL of the inference server hosting the BERT text model.
	BertServerURL string `json:"bert_server_url" yaml:"bert_server_url" toml:"bert_server_url"`
	// Base URL of the inference server hosting the page-image model.
	ImageServerURL string `json:"image_server_url" yaml:"image_server_url" toml:"image_server_url"`
	// Path to the BERT vocabulary file (vocab.txt).
	BertVocabPath string `json:"bert_vocab_path" yaml:"bert_vocab_path" toml:"bert_vocab_path"`
	// Path to the local linear model applied to document text.
	LinearModelPath string `json:"linear_model_path" yaml:"linear_model_path" toml:"linear_model_path"`
	// Path to the local linear model applied to URLs.
	URLModelPath string `json:"url_model_path" yaml:"url_model_path" toml:"url_model_path"`
	// Version annotations surfaced in responses; informational only.
	LinearModelVersion string `json:"linear_model_version" yaml:"linear_model_version" toml:"linear_model_version"`
	ModelsDate         string `json:"models_date" yaml:"models_date" toml:"models_date"`
	// Per-request budget covering extraction and all backend calls.
	RequestTimeout time.Duration `json:"-" yaml:"-" toml:"-"`
	// Maximum accepted upload size in bytes (0 = package default).
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	// Log level: debug|info|warn|error.
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// Environment variable names. The TF_*/FT_* names are the wire contract
// with the deployment descriptor and are kept verbatim.
const (
	EnvAddr           = "CLASSD_ADDR"
	EnvBertServerURL  = "TF_BERT_SERVER_URL"
	EnvImageServerURL = "TF_IMAGE_SERVER_URL"
	EnvBertVocabPath  = "TF_BERT_VOCAB_PATH"
	EnvLinearModel    = "FT_MODEL"
	EnvURLModel       = "FT_URL_MODEL"
	EnvLinearVersion  = "FT_MODEL_VERSION"
	EnvModelsDate     = "PDFTRIO_MODELS_DATE"
	EnvLogLevel       = "CLASSD_LOG_LEVEL"
	EnvRequestTimeout = "CLASSD_REQUEST_TIMEOUT_SECONDS"
)

const defaultRequestTimeout = 30 * time.Second

// LoadFile reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func LoadFile(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// FromEnv assembles the gateway configuration. Values from the optional
// config file act as defaults; environment variables override them.
// The result is validated: a missing required value or a missing local
// model file is an error the caller should treat as fatal.
func FromEnv(filePath string) (Config, error) {
	var cfg Config
	if filePath != "" {
		var err error
		cfg, err = LoadFile(filePath)
		if err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", filePath, err)
		}
	}

	overlay := func(dst *string, env string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	overlay(&cfg.Addr, EnvAddr)
	overlay(&cfg.BertServerURL, EnvBertServerURL)
	overlay(&cfg.ImageServerURL, EnvImageServerURL)
	overlay(&cfg.BertVocabPath, EnvBertVocabPath)
	overlay(&cfg.LinearModelPath, EnvLinearModel)
	overlay(&cfg.URLModelPath, EnvURLModel)
	overlay(&cfg.LinearModelVersion, EnvLinearVersion)
	overlay(&cfg.ModelsDate, EnvModelsDate)
	overlay(&cfg.LogLevel, EnvLogLevel)

	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	cfg.RequestTimeout = defaultRequestTimeout
	if v := os.Getenv(EnvRequestTimeout); v != "" {
		sec, err := strconv.Atoi(v)
		if err != nil || sec <= 0 {
			return Config{}, fmt.Errorf("%s must be a positive integer, got %q", EnvRequestTimeout, v)
		}
		cfg.RequestTimeout = time.Duration(sec) * time.Second
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate enforces the startup contract: all endpoints must be named and
// local files must exist. Remote reachability is a request-time concern
// and is deliberately not checked here.
func (c *Config) validate() error {
	if c.BertServerURL == "" {
		return fmt.Errorf("missing text classifier URL, define env var %s", EnvBertServerURL)
	}
	if c.ImageServerURL == "" {
		return fmt.Errorf("missing image classifier URL, define env var %s", EnvImageServerURL)
	}
	for _, p := range []struct {
		path *string
		env  string
		what string
	}{
		{&c.BertVocabPath, EnvBertVocabPath, "vocabulary file"},
		{&c.LinearModelPath, EnvLinearModel, "linear document model"},
		{&c.URLModelPath, EnvURLModel, "linear URL model"},
	} {
		if *p.path == "" {
			return fmt.Errorf("missing %s, define env var %s", p.what, p.env)
		}
		expanded, err := fsutil.ExpandHome(*p.path)
		if err != nil {
			return fmt.Errorf("%s: %w", p.env, err)
		}
		*p.path = expanded
		if !fsutil.FileExists(expanded) {
			return fmt.Errorf("%s target does not exist: %s", p.env, expanded)
		}
	}
	return nil
}
