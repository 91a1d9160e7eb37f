package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hashicorp/go-multierror"

	"github.com/nguyentantai21042004/lecture-recap/internal/audio"
	"github.com/nguyentantai21042004/lecture-recap/internal/config"
	"github.com/nguyentantai21042004/lecture-recap/internal/dispatcher"
	"github.com/nguyentantai21042004/lecture-recap/internal/handler"
	"github.com/nguyentantai21042004/lecture-recap/internal/logger"
	"github.com/nguyentantai21042004/lecture-recap/internal/processor"
	"github.com/nguyentantai21042004/lecture-recap/internal/records"
	"github.com/nguyentantai21042004/lecture-recap/internal/storage"
	"github.com/nguyentantai21042004/lecture-recap/internal/summarizer"
	"github.com/nguyentantai21042004/lecture-recap/internal/transcriber"
	"github.com/nguyentantai21042004/lecture-recap/pkg/executor"
)

// App holds the wired collaborators shared by the Lambda and local binaries.
type App struct {
	Config  *config.Config
	Store   storage.ObjectStore
	Handler handler.Handler
	// Local is set when runs are dispatched in-process.
	Local *dispatcher.Local

	db *sql.DB
}

// Build wires every collaborator selected by cfg. AWS configuration is only
// loaded when some driver needs it. Runs dispatched in-process use base as
// their parent context.
func Build(ctx, base context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	a := &App{Config: cfg}

	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		c, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return aws.Config{}, fmt.Errorf("load aws config: %w", err)
		}
		awsCfg = &c
		return c, nil
	}

	switch cfg.Storage.Driver {
	case config.StorageLocal:
		a.Store = storage.NewLocal(cfg.Storage.LocalRoot, cfg.Server.PublicURL)
	default:
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		a.Store = storage.NewS3(s3.NewFromConfig(c))
	}

	var rec records.Store
	switch cfg.Records.Driver {
	case config.RecordsDynamoDB:
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		rec = records.NewDynamoDB(dynamodb.NewFromConfig(c), cfg.Records.Table)
	case config.RecordsPostgres:
		db, err := records.OpenPostgres(cfg.Records.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open records db: %w", err)
		}
		a.db = db
		rec = records.NewPostgres(db)
	default:
		rec = records.NewNoop()
	}

	var bedrock *bedrockruntime.Client
	if cfg.Summary.Provider == config.SummaryBedrock {
		c, err := loadAWS()
		if err != nil {
			return nil, a.closeWith(err)
		}
		bedrock = bedrockruntime.NewFromConfig(c)
	}
	sum, err := summarizer.New(cfg.Summary, bedrock, log)
	if err != nil {
		return nil, a.closeWith(fmt.Errorf("create summarizer: %w", err))
	}

	transcoder := audio.New(cfg, executor.New(), log)
	proc := processor.New(cfg, a.Store, transcoder, transcriber.New(cfg.Transcription, log), log)

	deps := handler.Deps{
		Store:      a.Store,
		Records:    rec,
		Processor:  proc,
		Summarizer: sum,
	}

	switch cfg.Dispatch.Driver {
	case config.DispatchLocal:
		// The local dispatcher calls back into the handler it is wired into.
		var h handler.Handler
		a.Local = dispatcher.NewLocal(base, func(ctx context.Context, payload []byte) error {
			return checkResponse(h.RunPipeline(ctx, payload))
		}, log)
		deps.Dispatcher = a.Local
		h = handler.New(cfg, deps, log)
		a.Handler = h
		return a, nil
	default:
		c, err := loadAWS()
		if err != nil {
			return nil, a.closeWith(err)
		}
		deps.Dispatcher = dispatcher.NewLambda(lambda.NewFromConfig(c), cfg.Dispatch.TargetFunction)
	}

	a.Handler = handler.New(cfg, deps, log)
	return a, nil
}

// Close waits for in-process runs and releases the records database.
func (a *App) Close() error {
	var result error
	if a.Local != nil {
		a.Local.Wait()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close records db: %w", err))
		}
	}
	return result
}

func (a *App) closeWith(err error) error {
	if cerr := a.Close(); cerr != nil {
		return multierror.Append(err, cerr)
	}
	return err
}

func checkResponse(r handler.Response) error {
	if r.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("run pipeline: status %d: %s", r.StatusCode, r.Body)
	}
	return nil
}
