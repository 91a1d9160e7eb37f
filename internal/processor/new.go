package processor

import (
	"github.com/nguyentantai21042004/lecture-recap/internal/audio"
	"github.com/nguyentantai21042004/lecture-recap/internal/config"
	"github.com/nguyentantai21042004/lecture-recap/internal/logger"
	"github.com/nguyentantai21042004/lecture-recap/internal/storage"
	"github.com/nguyentantai21042004/lecture-recap/internal/transcriber"
)

type implProcessor struct {
	cfg         *config.Config
	store       storage.ObjectStore
	transcoder  audio.Transcoder
	transcriber transcriber.Transcriber
	logger      logger.Logger
}

// New creates a new Processor instance
func New(cfg *config.Config, store storage.ObjectStore, transcoder audio.Transcoder, tr transcriber.Transcriber, log logger.Logger) Processor {
	return &implProcessor{
		cfg:         cfg,
		store:       store,
		transcoder:  transcoder,
		transcriber: tr,
		logger:      log,
	}
}
