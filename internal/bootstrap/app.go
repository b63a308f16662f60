package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"sof-backend/internal/analyses"
	"sof-backend/internal/documents"
	"sof-backend/internal/export"
	"sof-backend/internal/extract"
	"sof-backend/internal/llm"
	"sof-backend/internal/llm/gemini"
	"sof-backend/internal/llm/openai"
	"sof-backend/internal/parse"
	"sof-backend/internal/shared/config"
	"sof-backend/internal/shared/server"
	"sof-backend/internal/shared/storage/db"
	"sof-backend/internal/shared/storage/object"
	localstore "sof-backend/internal/shared/storage/object/local"
	s3store "sof-backend/internal/shared/storage/object/s3"
	"sof-backend/internal/sof"
)

// App holds shared dependencies.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	DocumentsRepo    documents.DocumentsRepo
	AnalysesRepo     analyses.Repo
	DocumentsService *documents.Service
	AnalysesService  *analyses.Service
	DocumentsHandler *documents.Handler
	AnalysesHandler  *analyses.Handler
	ExportHandler    *export.Handler
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		DocumentsHandler: app.DocumentsHandler,
		AnalysesHandler:  app.AnalysesHandler,
		ExportHandler:    app.ExportHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildExtractor(cfg config.Config) (analyses.Extractor, error) {
	if cfg.Extractor == "remote" {
		client, err := parse.NewClient(cfg.ParserBaseURL, os.Getenv("PARSER_API_KEY"))
		if err != nil {
			return nil, err
		}
		return parse.StoreExtractor{Client: client}, nil
	}
	return extract.Extractor{}, nil
}

func buildLLM(cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		return openai.NewClient(os.Getenv("OPENAI_API_KEY"), cfg.LLMModel)
	default:
		if strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")) == "" {
			if cfg.Env == "dev" || cfg.Env == "local" {
				log.Printf("bootstrap: GOOGLE_API_KEY empty; structuring requests will fail until configured")
				return llm.PlaceholderClient{}, nil
			}
			return nil, fmt.Errorf("GOOGLE_API_KEY is required")
		}
		return gemini.NewClient(os.Getenv("GOOGLE_API_KEY"), cfg.LLMModel)
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var docRepo documents.DocumentsRepo
	var analysisRepo analyses.Repo

	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		analysisRepo = &analyses.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		analysisRepo = analyses.NewMemoryRepo()
	}

	docSvc := &documents.Service{
		Store: app.Store,
		Repo:  docRepo,
	}

	extractor, err := buildExtractor(app.Config)
	if err != nil {
		return err
	}

	llmClient, err := buildLLM(app.Config)
	if err != nil {
		return err
	}

	analysisSvc := &analyses.Service{
		Repo:            analysisRepo,
		DocRepo:         docRepo,
		Store:           app.Store,
		Extractor:       extractor,
		Structurer:      sof.NewAdjudicator(llmClient, app.Config.PromptVersion),
		Provider:        app.Config.LLMProvider,
		Model:           app.Config.LLMModel,
		PromptVersion:   app.Config.PromptVersion,
		PipelineVersion: app.Config.PipelineVersion,
	}

	app.DocumentsRepo = docRepo
	app.AnalysesRepo = analysisRepo
	app.DocumentsService = docSvc
	app.AnalysesService = analysisSvc
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.AnalysesHandler = analyses.NewHandler(analysisSvc, docRepo)
	app.ExportHandler = export.NewHandler(analysisSvc, docRepo)

	return nil
}
