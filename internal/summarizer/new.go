package summarizer

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/nguyentantai21042004/lecture-recap/internal/config"
	"github.com/nguyentantai21042004/lecture-recap/internal/logger"
)

// New creates the Summarizer selected by cfg.Provider. bedrock may be nil
// unless the provider is bedrock.
func New(cfg config.SummaryConfig, bedrock *bedrockruntime.Client, log logger.Logger) (Summarizer, error) {
	switch cfg.Provider {
	case config.SummaryBedrock:
		if bedrock == nil {
			return nil, fmt.Errorf("bedrock client is required for provider %q", cfg.Provider)
		}
		return NewBedrock(bedrock, cfg, log), nil
	case config.SummaryGemini:
		return NewGemini(cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown summary provider %q", cfg.Provider)
	}
}
