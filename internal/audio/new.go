package audio

import (
	"sync"

	"github.com/nguyentantai21042004/lecture-recap/internal/config"
	"github.com/nguyentantai21042004/lecture-recap/internal/logger"
	"github.com/nguyentantai21042004/lecture-recap/pkg/executor"
)

type implTranscoder struct {
	cfg      *config.Config
	executor executor.Executor
	logger   logger.Logger

	resolveOnce sync.Once
	ffmpeg      string
}

// New creates a new ffmpeg-backed Transcoder
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) Transcoder {
	return &implTranscoder{
		cfg:      cfg,
		executor: exec,
		logger:   log,
	}
}
