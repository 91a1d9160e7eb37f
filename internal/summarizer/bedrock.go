package summarizer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/nguyentantai21042004/lecture-recap/internal/apperr"
	"github.com/nguyentantai21042004/lecture-recap/internal/config"
	"github.com/nguyentantai21042004/lecture-recap/internal/logger"
)

const anthropicVersion = "bedrock-2023-05-31"

type modelInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type implBedrock struct {
	api    modelInvoker
	cfg    config.SummaryConfig
	logger logger.Logger
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	Temperature      float64   `json:"temperature"`
	Messages         []message `json:"messages"`
}

// messagesResponse keeps only the fields read back. Text is a pointer so a
// missing field can be told apart from an empty one.
type messagesResponse struct {
	Content []struct {
		Text *string `json:"text"`
	} `json:"content"`
}

// NewBedrock creates a Summarizer that calls an Anthropic model on Amazon Bedrock
func NewBedrock(client *bedrockruntime.Client, cfg config.SummaryConfig, log logger.Logger) Summarizer {
	return &implBedrock{api: client, cfg: cfg, logger: log}
}

func (s *implBedrock) Summarize(ctx context.Context, transcript string) (Summary, error) {
	body, err := json.Marshal(messagesRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        s.cfg.MaxTokens,
		Temperature:      s.cfg.TemperatureValue(),
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{Type: "text", Text: transcript},
				{Type: "text", Text: recapPrompt},
			},
		}},
	})
	if err != nil {
		return Summary{}, fmt.Errorf("marshal bedrock request: %w", err)
	}

	s.logger.Info(ctx, "Invoking Bedrock model %s (%d transcript chars)", s.cfg.ModelID, len(transcript))

	out, err := s.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(s.cfg.ModelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return Summary{}, apperr.New(apperr.KindSummaryAPI, "invoke "+s.cfg.ModelID, err)
	}

	summary := extractText(out.Body)
	if summary.Source == SourceRawFallback {
		s.logger.Warn(ctx, "Unexpected Bedrock response shape, keeping raw body (%d bytes)", len(out.Body))
	}
	return summary, nil
}

// extractText returns content[0].text, or the raw body when it cannot be read.
func extractText(raw []byte) Summary {
	var resp messagesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Summary{Text: string(raw), Source: SourceRawFallback}
	}
	if len(resp.Content) == 0 || resp.Content[0].Text == nil {
		return Summary{Text: string(raw), Source: SourceRawFallback}
	}
	return Summary{Text: *resp.Content[0].Text, Source: SourceStructured}
}
