// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mediora-ai/mediora/internal/config"
	db "github.com/mediora-ai/mediora/internal/core/database"
	mediadoc "github.com/mediora-ai/mediora/internal/core/docconv"
	"github.com/mediora-ai/mediora/internal/core/llm"
	objectclient "github.com/mediora-ai/mediora/internal/core/object-client"
	"github.com/mediora-ai/mediora/internal/media"
	"github.com/mediora-ai/mediora/internal/pipeline"
	"github.com/mediora-ai/mediora/internal/tokens"
)

type App struct {
	DBClient     *db.DatabaseClient
	ObjectClient *objectclient.S3Client
	Embedder     *llm.GeminiEmbedder
	Transcriber  *llm.GeminiTranscriber
	Orchestrator *pipeline.Orchestrator
	Server       *Server

	log *slog.Logger
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("database initialized and ready")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("object client initialized and ready")

	embedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel, cfg.MultimodalEmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
	}

	transcriber, err := llm.NewGeminiTranscriber(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the transcriber, %w", err)
	}

	counter := tokens.DefaultCounter(logger)
	converter := mediadoc.NewConverter(cfg.MaxTextTokens, false, counter)

	tool := media.NewTool(cfg.FFmpegPath, cfg.FFprobePath, logger)
	segmenter := media.NewSegmenter(tool, cfg.SegmentSeconds, cfg.MinSegmentSeconds, cfg.VideoByteCeiling, logger)

	orchestrator, err := pipeline.NewOrchestrator(
		dbClient,
		objClient,
		embedder,
		transcriber,
		converter,
		segmenter,
		counter,
		pipeline.Config{
			MaxTextTokens:    cfg.MaxTextTokens,
			BatchSize:        cfg.BatchSize,
			FailureTolerance: cfg.FailureTolerance,
			SegmentTimeout:   cfg.SegmentTimeout,
			LanguageHint:     cfg.LanguageHint,
			TempDir:          cfg.TempDir,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the orchestrator, %w", err)
	}

	server := NewServer(cfg, orchestrator, logger)

	return &App{
		DBClient:     dbClient,
		ObjectClient: objClient,
		Embedder:     embedder,
		Transcriber:  transcriber,
		Orchestrator: orchestrator,
		Server:       server,
		log:          logger,
	}, nil
}

func (a *App) Close() {
	if a.Orchestrator != nil {
		a.Orchestrator.Release()
	}
	if a.Embedder != nil {
		_ = a.Embedder.Close()
	}
	if a.Transcriber != nil {
		_ = a.Transcriber.Close()
	}
	if a.DBClient != nil {
		a.DBClient.Close()
	}
}
