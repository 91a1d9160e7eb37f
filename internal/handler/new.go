package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/lecture-recap/internal/config"
	"github.com/nguyentantai21042004/lecture-recap/internal/dispatcher"
	"github.com/nguyentantai21042004/lecture-recap/internal/logger"
	"github.com/nguyentantai21042004/lecture-recap/internal/processor"
	"github.com/nguyentantai21042004/lecture-recap/internal/records"
	"github.com/nguyentantai21042004/lecture-recap/internal/storage"
	"github.com/nguyentantai21042004/lecture-recap/internal/summarizer"
)

// Deps are the collaborators the entry points use. Entry points whose
// collaborator is nil answer 500.
type Deps struct {
	Store      storage.ObjectStore
	Records    records.Store
	Dispatcher dispatcher.Dispatcher
	Processor  processor.Processor
	Summarizer summarizer.Summarizer
}

type implHandler struct {
	cfg    *config.Config
	deps   Deps
	logger logger.Logger
	newID  func() string
	now    func() time.Time
}

// New creates a new Handler instance
func New(cfg *config.Config, deps Deps, log logger.Logger) Handler {
	return &implHandler{
		cfg:    cfg,
		deps:   deps,
		logger: log,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}
