package transcriber

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/nguyentantai21042004/lecture-recap/internal/apperr"
	"github.com/nguyentantai21042004/lecture-recap/internal/config"
	"github.com/nguyentantai21042004/lecture-recap/internal/logger"
)

// Transcriber converts one audio file (a whole normalized object or a single segment) to text.
type Transcriber interface {
	// Transcribe returns the trimmed transcript of path. ordinal is the 1-based
	// segment number, used only for logging.
	Transcribe(ctx context.Context, path string, ordinal int) (string, error)
}

type audioAPI interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

type implTranscriber struct {
	api    audioAPI
	cfg    config.TranscriptionConfig
	logger logger.Logger
}

// New creates a Whisper Transcriber backed by the OpenAI audio API
func New(cfg config.TranscriptionConfig, log logger.Logger) Transcriber {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &implTranscriber{
		api:    openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		logger: log,
	}
}

func (t *implTranscriber) Transcribe(ctx context.Context, path string, ordinal int) (string, error) {
	t.logger.Info(ctx, "Sending segment %d to Whisper: %s", ordinal, path)

	req := openai.AudioRequest{
		Model:    t.cfg.Model,
		FilePath: path,
		Format:   openai.AudioResponseFormatText,
		Language: t.cfg.Language,
		Prompt:   t.cfg.Prompt,
	}

	resp, err := t.api.CreateTranscription(ctx, req)
	if err != nil {
		return "", apperr.New(apperr.KindTranscriptionAPI, "transcribe "+path, err)
	}

	t.logger.Debug(ctx, "Transcription completed for %s (%d chars)", path, len(resp.Text))
	return strings.TrimSpace(resp.Text), nil
}
