package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"gopkg.in/yaml.v3"
)

const (
	StorageS3    = "s3"
	StorageLocal = "local"

	SummaryBedrock = "bedrock"
	SummaryGemini  = "gemini"

	RecordsDynamoDB = "dynamodb"
	RecordsPostgres = "postgres"
	RecordsNone     = "none"

	DispatchLambda = "lambda"
	DispatchLocal  = "local"
)

// LegacyBucketEnv names the bucket when neither the file nor BUCKET_NAME does.
// Older result-fetch deployments only set this variable.
const LegacyBucketEnv = "AWS_BUCKET_NAME"

// DefaultTemperature applies when summary.temperature is not set.
const DefaultTemperature = 0.7

// MaxContentSize is the transcription API request ceiling.
const MaxContentSize = 25 * 1024 * 1024

type Config struct {
	Storage       StorageConfig       `yaml:"storage"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Summary       SummaryConfig       `yaml:"summary"`
	Audio         AudioConfig         `yaml:"audio"`
	FFmpeg        FFmpegConfig        `yaml:"ffmpeg"`
	Records       RecordsConfig       `yaml:"records"`
	Dispatch      DispatchConfig      `yaml:"dispatch"`
	Pipeline      PipelineConfig      `yaml:"pipeline"`
	Performance   PerformanceConfig   `yaml:"performance"`
	Logging       LoggingConfig       `yaml:"logging"`
	Server        ServerConfig        `yaml:"server"`
	Watcher       WatcherConfig       `yaml:"watcher"`
	AWS           AWSConfig           `yaml:"aws"`
	Paths         PathsConfig         `yaml:"paths"`
}

type StorageConfig struct {
	Driver               string        `yaml:"driver" env:"STORAGE_DRIVER"`
	Bucket               string        `yaml:"bucket" env:"BUCKET_NAME"`
	LocalRoot            string        `yaml:"local_root" env:"STORAGE_LOCAL_ROOT"`
	UploadURLTTL         time.Duration `yaml:"upload_url_ttl" env:"UPLOAD_URL_TTL"`
	UploadsPrefix        string        `yaml:"uploads_prefix"`
	TranscriptionsPrefix string        `yaml:"transcriptions_prefix" env:"TRANSCRIPTION_OUTPUT_PREFIX"`
	ResultsPrefix        string        `yaml:"results_prefix"`
}

type TranscriptionConfig struct {
	APIKey   string `yaml:"api_key" env:"OPENAI_API_KEY"`
	BaseURL  string `yaml:"base_url" env:"OPENAI_BASE_URL"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
	Prompt   string `yaml:"prompt"`
}

type SummaryConfig struct {
	Provider     string   `yaml:"provider" env:"SUMMARY_PROVIDER"`
	ModelID      string   `yaml:"model_id" env:"BEDROCK_MODEL_ID"`
	MaxTokens    int      `yaml:"max_tokens"`
	Temperature  *float64 `yaml:"temperature"`
	GeminiAPIKey string   `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	GeminiModel  string   `yaml:"gemini_model"`
	ExportDocx   bool     `yaml:"export_docx" env:"EXPORT_DOCX"`
}

type AudioConfig struct {
	Extension      string `yaml:"extension"`
	MaxContentSize int64  `yaml:"max_content_size"`
	SegmentSeconds int    `yaml:"segment_seconds"`
	SampleRate     int    `yaml:"sample_rate"`
	Channels       int    `yaml:"channels"`
}

type FFmpegConfig struct {
	BinaryPath  string   `yaml:"binary_path" env:"FFMPEG_PATH"`
	SearchPaths []string `yaml:"search_paths"`
}

type RecordsConfig struct {
	Driver      string `yaml:"driver" env:"RECORDS_DRIVER"`
	Table       string `yaml:"table" env:"DYNAMODB_TABLE_NAME"`
	PostgresDSN string `yaml:"postgres_dsn" env:"DATABASE_URL"`
}

type DispatchConfig struct {
	Driver         string `yaml:"driver" env:"DISPATCH_DRIVER"`
	TargetFunction string `yaml:"target_function" env:"TARGET_LAMBDA_FUNCTION_NAME"`
}

type PipelineConfig struct {
	SaveTranscripts bool `yaml:"save_transcripts" env:"SAVE_TRANSCRIPTS"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" env:"MAX_CONCURRENT"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

type ServerConfig struct {
	Port           int      `yaml:"port" env:"PORT"`
	PublicURL      string   `yaml:"public_url" env:"PUBLIC_URL"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type WatcherConfig struct {
	Enabled bool          `yaml:"enabled" env:"WATCHER_ENABLED"`
	Settle  time.Duration `yaml:"settle"`
}

type AWSConfig struct {
	Region string `yaml:"region" env:"AWS_REGION"`
}

type PathsConfig struct {
	Temp string `yaml:"temp" env:"SCRATCH_DIR"`
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = os.Getenv(LegacyBucketEnv)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageS3
	}
	if c.Storage.Driver != StorageS3 && c.Storage.Driver != StorageLocal {
		return fmt.Errorf("storage.driver must be %q or %q", StorageS3, StorageLocal)
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	if c.Storage.Driver == StorageLocal && c.Storage.LocalRoot == "" {
		return fmt.Errorf("storage.local_root is required for the local driver")
	}
	if c.Storage.UploadURLTTL == 0 {
		c.Storage.UploadURLTTL = 5 * time.Minute
	}
	if c.Storage.UploadsPrefix == "" {
		c.Storage.UploadsPrefix = "uploads/"
	}
	if c.Storage.TranscriptionsPrefix == "" {
		c.Storage.TranscriptionsPrefix = "transcriptions/"
	}
	if c.Storage.ResultsPrefix == "" {
		c.Storage.ResultsPrefix = "results/"
	}
	c.Storage.UploadsPrefix = withSlash(c.Storage.UploadsPrefix)
	c.Storage.TranscriptionsPrefix = withSlash(c.Storage.TranscriptionsPrefix)
	c.Storage.ResultsPrefix = withSlash(c.Storage.ResultsPrefix)

	if c.Transcription.Model == "" {
		c.Transcription.Model = "whisper-1"
	}

	if c.Summary.Provider == "" {
		c.Summary.Provider = SummaryBedrock
	}
	switch c.Summary.Provider {
	case SummaryBedrock:
		if c.Summary.ModelID == "" {
			c.Summary.ModelID = "anthropic.claude-3-5-sonnet-20240620-v1:0"
		}
	case SummaryGemini:
		if c.Summary.GeminiModel == "" {
			c.Summary.GeminiModel = "gemini-2.5-flash"
		}
	default:
		return fmt.Errorf("summary.provider must be %q or %q", SummaryBedrock, SummaryGemini)
	}
	if c.Summary.MaxTokens == 0 {
		c.Summary.MaxTokens = 4096
	}
	if c.Summary.Temperature == nil {
		t := DefaultTemperature
		c.Summary.Temperature = &t
	}
	if *c.Summary.Temperature < 0 {
		return fmt.Errorf("summary.temperature must not be negative")
	}

	if c.Audio.Extension == "" {
		c.Audio.Extension = ".mp3"
	}
	if c.Audio.MaxContentSize == 0 {
		c.Audio.MaxContentSize = MaxContentSize
	}
	if c.Audio.SegmentSeconds == 0 {
		c.Audio.SegmentSeconds = 600
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.Channels == 0 {
		c.Audio.Channels = 1
	}
	if c.Audio.MaxContentSize < 0 || c.Audio.SegmentSeconds < 0 {
		return fmt.Errorf("audio.max_content_size and audio.segment_seconds must be positive")
	}

	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.SearchPaths == nil {
		c.FFmpeg.SearchPaths = []string{"/opt/bin"}
	}

	if c.Records.Driver == "" {
		c.Records.Driver = RecordsDynamoDB
	}
	switch c.Records.Driver {
	case RecordsDynamoDB:
		if c.Records.Table == "" {
			return fmt.Errorf("records.table is required for the dynamodb driver")
		}
	case RecordsPostgres:
		if c.Records.PostgresDSN == "" {
			return fmt.Errorf("records.postgres_dsn is required for the postgres driver")
		}
	case RecordsNone:
	default:
		return fmt.Errorf("records.driver must be one of dynamodb, postgres, none")
	}

	if c.Dispatch.Driver == "" {
		c.Dispatch.Driver = DispatchLambda
	}
	if c.Dispatch.Driver != DispatchLambda && c.Dispatch.Driver != DispatchLocal {
		return fmt.Errorf("dispatch.driver must be %q or %q", DispatchLambda, DispatchLocal)
	}

	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 1
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.PublicURL == "" {
		c.Server.PublicURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}
	c.Server.PublicURL = strings.TrimSuffix(c.Server.PublicURL, "/")
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Watcher.Settle == 0 {
		c.Watcher.Settle = 500 * time.Millisecond
	}
	if c.AWS.Region == "" {
		c.AWS.Region = "us-east-1"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = os.TempDir()
	}

	return nil
}

func withSlash(prefix string) string {
	if strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}

// TemperatureValue returns the configured temperature, including an explicit 0,
// or DefaultTemperature when none is set.
func (c SummaryConfig) TemperatureValue() float64 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}
