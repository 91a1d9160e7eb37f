package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/nguyentantai21042004/lecture-recap/internal/app"
	"github.com/nguyentantai21042004/lecture-recap/internal/config"
	"github.com/nguyentantai21042004/lecture-recap/internal/handler"
	"github.com/nguyentantai21042004/lecture-recap/internal/logger"
)

// One binary backs all four functions; LAMBDA_HANDLER picks the entry point.
const (
	handlerUploadURL = "upload-url"
	handlerSummary   = "summary"
	handlerStart     = "start"
	handlerRun       = "run"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)

	a, err := app.Build(ctx, ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "Failed to initialize: %v", err)
		os.Exit(1)
	}
	defer a.Close()

	name := os.Getenv("LAMBDA_HANDLER")
	fn, err := selectHandler(a.Handler, name)
	if err != nil {
		log.Error(ctx, "%v", err)
		os.Exit(1)
	}

	log.Info(ctx, "Starting %s handler (storage=%s, records=%s, summary=%s)",
		name, cfg.Storage.Driver, cfg.Records.Driver, cfg.Summary.Provider)
	lambda.Start(fn)
}

// selectHandler returns the Lambda handler for name. The HTTP-facing entry
// points take API Gateway proxy events; start and run also accept direct
// invocation payloads.
func selectHandler(h handler.Handler, name string) (any, error) {
	switch name {
	case handlerUploadURL:
		return handler.APIGateway(h.IssueUploadTarget), nil
	case handlerSummary:
		return handler.APIGateway(h.FetchResult), nil
	case handlerStart:
		return handler.Invoke(h.StartProcessing), nil
	case handlerRun:
		return handler.Invoke(h.RunPipeline), nil
	default:
		return nil, fmt.Errorf("LAMBDA_HANDLER must be one of %s, %s, %s, %s (got %q)",
			handlerUploadURL, handlerSummary, handlerStart, handlerRun, name)
	}
}
