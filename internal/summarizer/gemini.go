package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/lecture-recap/internal/apperr"
	"github.com/nguyentantai21042004/lecture-recap/internal/config"
	"github.com/nguyentantai21042004/lecture-recap/internal/logger"
)

type generateFunc func(ctx context.Context, apiKey, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

type implGemini struct {
	mu         sync.Mutex
	apiKeys    []string
	currentKey int
	model      string
	cfg        config.SummaryConfig
	logger     logger.Logger
	generate   generateFunc
}

// NewGemini creates a Summarizer that rotates through the comma-separated
// Gemini API keys in cfg.GeminiAPIKey.
func NewGemini(cfg config.SummaryConfig, log logger.Logger) Summarizer {
	var keys []string
	for _, k := range strings.Split(cfg.GeminiAPIKey, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}

	return &implGemini{
		apiKeys:  keys,
		model:    cfg.GeminiModel,
		cfg:      cfg,
		logger:   log,
		generate: generateContent,
	}
}

func generateContent(ctx context.Context, apiKey, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client.Models.GenerateContent(ctx, model, contents, cfg)
}

// Summarize sends transcript and prompt as one user turn. Rotates API keys on 429 / quota errors.
func (s *implGemini) Summarize(ctx context.Context, transcript string) (Summary, error) {
	if len(s.apiKeys) == 0 {
		return Summary{}, apperr.New(apperr.KindSummaryAPI, "gemini", fmt.Errorf("no API key configured"))
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: transcript},
			{Text: recapPrompt},
		},
	}}
	temperature := float32(s.cfg.TemperatureValue())
	genCfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(s.cfg.MaxTokens),
	}

	var lastErr error
	for range len(s.apiKeys) {
		key, idx := s.key()

		result, err := s.generate(ctx, key, s.model, contents, genCfg)
		if err != nil {
			errMsg := err.Error()
			if strings.Contains(errMsg, "429") || strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "RESOURCE_EXHAUSTED") {
				s.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
				s.rotateKey(idx)
				lastErr = err
				continue
			}
			return Summary{}, apperr.New(apperr.KindSummaryAPI, "gemini generate", err)
		}

		return candidateText(result), nil
	}

	return Summary{}, apperr.New(apperr.KindSummaryAPI, "gemini generate", fmt.Errorf("all API keys exhausted: %w", lastErr))
}

func (s *implGemini) key() (string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKeys[s.currentKey], s.currentKey
}

// rotateKey advances past idx unless another run already rotated away from it.
func (s *implGemini) rotateKey(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentKey == idx {
		s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	}
}

// candidateText joins the text parts of the first candidate, falling back to
// the JSON-encoded response when there are none.
func candidateText(result *genai.GenerateContentResponse) Summary {
	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text strings.Builder
		found := false
		for _, part := range result.Candidates[0].Content.Parts {
			if part != nil && part.Text != "" {
				text.WriteString(part.Text)
				found = true
			}
		}
		if found {
			return Summary{Text: text.String(), Source: SourceStructured}
		}
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return Summary{Text: fmt.Sprintf("%+v", result), Source: SourceRawFallback}
	}
	return Summary{Text: string(raw), Source: SourceRawFallback}
}
