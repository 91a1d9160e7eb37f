package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Storage: StorageConfig{Bucket: "documentos-to-summary"},
		Records: RecordsConfig{Table: "summaries"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing bucket",
			mutate:  func(c *Config) { c.Storage.Bucket = "" },
			wantErr: true,
		},
		{
			name:    "unknown storage driver",
			mutate:  func(c *Config) { c.Storage.Driver = "gcs" },
			wantErr: true,
		},
		{
			name:    "local storage without root",
			mutate:  func(c *Config) { c.Storage.Driver = StorageLocal },
			wantErr: true,
		},
		{
			name:    "unknown summary provider",
			mutate:  func(c *Config) { c.Summary.Provider = "openai" },
			wantErr: true,
		},
		{
			name:    "dynamodb without table",
			mutate:  func(c *Config) { c.Records.Table = "" },
			wantErr: true,
		},
		{
			name: "postgres without dsn",
			mutate: func(c *Config) {
				c.Records.Driver = RecordsPostgres
			},
			wantErr: true,
		},
		{
			name: "records disabled",
			mutate: func(c *Config) {
				c.Records.Driver = RecordsNone
				c.Records.Table = ""
			},
			wantErr: false,
		},
		{
			name:    "unknown dispatch driver",
			mutate:  func(c *Config) { c.Dispatch.Driver = "sqs" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Audio.MaxContentSize != 25*1024*1024 {
		t.Errorf("MaxContentSize = %d, want 25 MiB", cfg.Audio.MaxContentSize)
	}
	if cfg.Audio.SegmentSeconds != 600 {
		t.Errorf("SegmentSeconds = %d, want 600", cfg.Audio.SegmentSeconds)
	}
	if cfg.Audio.Extension != ".mp3" {
		t.Errorf("Extension = %q, want .mp3", cfg.Audio.Extension)
	}
	if cfg.Storage.UploadURLTTL != 5*time.Minute {
		t.Errorf("UploadURLTTL = %v, want 5m", cfg.Storage.UploadURLTTL)
	}
	if cfg.Storage.ResultsPrefix != "results/" {
		t.Errorf("ResultsPrefix = %q, want results/", cfg.Storage.ResultsPrefix)
	}
	if cfg.Summary.ModelID != "anthropic.claude-3-5-sonnet-20240620-v1:0" {
		t.Errorf("ModelID = %q", cfg.Summary.ModelID)
	}
	if cfg.Summary.MaxTokens != 4096 || cfg.Summary.TemperatureValue() != 0.7 {
		t.Errorf("MaxTokens/Temperature = %d/%v, want 4096/0.7", cfg.Summary.MaxTokens, cfg.Summary.TemperatureValue())
	}
	if cfg.Performance.MaxConcurrent != 1 {
		t.Errorf("MaxConcurrent = %d, want 1", cfg.Performance.MaxConcurrent)
	}
	if cfg.FFmpeg.BinaryPath != "ffmpeg" {
		t.Errorf("BinaryPath = %q, want ffmpeg", cfg.FFmpeg.BinaryPath)
	}
	if cfg.Server.PublicURL != "http://localhost:8080" {
		t.Errorf("PublicURL = %q, want http://localhost:8080", cfg.Server.PublicURL)
	}
}

func TestValidatePublicURLTrimsSlash(t *testing.T) {
	cfg := validConfig()
	cfg.Server.PublicURL = "https://recap.example.com/"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Server.PublicURL != "https://recap.example.com" {
		t.Errorf("PublicURL = %q, want no trailing slash", cfg.Server.PublicURL)
	}
}

func TestValidateAddsTrailingSlash(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.TranscriptionsPrefix = "transcripts"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Storage.TranscriptionsPrefix != "transcripts/" {
		t.Errorf("TranscriptionsPrefix = %q, want transcripts/", cfg.Storage.TranscriptionsPrefix)
	}
}

func TestLoad(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	content := `
storage:
  bucket: "lectures"
  upload_url_ttl: "10m"

summary:
  provider: "gemini"

audio:
  segment_seconds: 300

records:
  driver: "none"

logging:
  level: "debug"
  format: "json"
`

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	t.Setenv("BUCKET_NAME", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.Bucket != "lectures" {
		t.Errorf("Bucket = %v, want %v", cfg.Storage.Bucket, "lectures")
	}
	if cfg.Storage.UploadURLTTL != 10*time.Minute {
		t.Errorf("UploadURLTTL = %v, want 10m", cfg.Storage.UploadURLTTL)
	}
	if cfg.Audio.SegmentSeconds != 300 {
		t.Errorf("SegmentSeconds = %v, want 300", cfg.Audio.SegmentSeconds)
	}
	if cfg.Summary.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("GeminiModel = %v, want gemini-2.5-flash", cfg.Summary.GeminiModel)
	}
	if cfg.Transcription.APIKey != "sk-test" {
		t.Errorf("APIKey = %v, want value from env", cfg.Transcription.APIKey)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.WriteString("storage:\n  bucket: from-file\nrecords:\n  table: t\n"); err != nil {
		t.Fatal(err)
	}
	tmpfile.Close()

	t.Setenv("BUCKET_NAME", "from-env")

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Bucket != "from-env" {
		t.Errorf("Bucket = %v, want from-env", cfg.Storage.Bucket)
	}
}

func TestLoadFromEnvOnly(t *testing.T) {
	t.Setenv("BUCKET_NAME", "documentos-to-summary")
	t.Setenv("DYNAMODB_TABLE_NAME", "summaries")
	t.Setenv("TARGET_LAMBDA_FUNCTION_NAME", "power-summary")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Dispatch.TargetFunction != "power-summary" {
		t.Errorf("TargetFunction = %v", cfg.Dispatch.TargetFunction)
	}
	if cfg.Records.Table != "summaries" {
		t.Errorf("Table = %v", cfg.Records.Table)
	}
}

func TestLoadBucketFallback(t *testing.T) {
	tests := []struct {
		name   string
		bucket string
		legacy string
		want   string
	}{
		{"legacy only", "", "legacy-bucket", "legacy-bucket"},
		{"BUCKET_NAME wins", "primary-bucket", "legacy-bucket", "primary-bucket"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BUCKET_NAME", tt.bucket)
			t.Setenv(LegacyBucketEnv, tt.legacy)
			t.Setenv("DYNAMODB_TABLE_NAME", "summaries")

			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Storage.Bucket != tt.want {
				t.Errorf("Bucket = %v, want %v", cfg.Storage.Bucket, tt.want)
			}
		})
	}
}

func TestLoadFileBucketBeatsLegacyEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  bucket: from-file\nrecords:\n  table: t\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BUCKET_NAME", "")
	t.Setenv(LegacyBucketEnv, "legacy-bucket")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Bucket != "from-file" {
		t.Errorf("Bucket = %v, want from-file", cfg.Storage.Bucket)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestSummaryTemperature(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    float64
		wantErr bool
	}{
		{"absent uses default", "", 0.7, false},
		{"explicit zero is kept", "summary:\n  temperature: 0\n", 0, false},
		{"explicit value", "summary:\n  temperature: 0.2\n", 0.2, false},
		{"negative rejected", "summary:\n  temperature: -1\n", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BUCKET_NAME", "documentos-to-summary")
			t.Setenv("DYNAMODB_TABLE_NAME", "summaries")

			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatal(err)
			}

			cfg, err := Load(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := cfg.Summary.TemperatureValue(); got != tt.want {
				t.Errorf("TemperatureValue() = %v, want %v", got, tt.want)
			}
		})
	}
}
