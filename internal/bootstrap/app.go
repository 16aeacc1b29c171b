package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	authapi "docqa-backend/internal/auth"
	"docqa-backend/internal/documents"
	"docqa-backend/internal/extract"
	"docqa-backend/internal/interactions"
	"docqa-backend/internal/llm"
	"docqa-backend/internal/llm/gemini"
	"docqa-backend/internal/query"
	"docqa-backend/internal/queue"
	"docqa-backend/internal/shared/auth"
	"docqa-backend/internal/shared/config"
	"docqa-backend/internal/shared/server"
	"docqa-backend/internal/shared/storage/db"
	"docqa-backend/internal/users"
)

const localQueueWorkers = 2

// App holds shared dependencies for the API and worker binaries.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Queue  queue.Client
	Tokens *auth.TokenManager

	UsersRepo        users.Repo
	DocumentsRepo    documents.Repo
	InteractionsRepo interactions.Repo

	UsersService     *users.Service
	AuthService      *authapi.Service
	DocumentsService *documents.Service
	QueryService     *query.Service

	// ExtractWorker runs extraction jobs. ExtractProcessor is the seam the
	// queue and worker binary dispatch through; tests may swap it out.
	ExtractWorker    *extract.Worker
	ExtractProcessor queue.Processor

	AuthHandler      *authapi.Handler
	UsersHandler     *users.Handler
	DocumentsHandler *documents.Handler
	QueryHandler     *query.Handler
}

// Build prepares shared dependencies and the HTTP router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
	}

	if err := buildServices(ctx, app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		Tokens:           app.Tokens,
		AuthHandler:      app.AuthHandler,
		UsersHandler:     app.UsersHandler,
		DocumentsHandler: app.DocumentsHandler,
		QueryHandler:     app.QueryHandler,
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
	return sqlDB, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(ctx context.Context, app *App) error {
	var (
		userRepo        users.Repo
		docRepo         documents.Repo
		interactionRepo interactions.Repo
	)
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		docRepo = &documents.PGRepo{DB: app.DB}
		interactionRepo = &interactions.PGRepo{DB: app.DB}
	} else {
		userRepo = users.NewMemoryRepo()
		docRepo = documents.NewMemoryRepo()
		interactionRepo = interactions.NewMemoryRepo()
	}

	tokens := auth.NewTokenManager(app.Config.JWTSecret, app.Config.TokenTTL)

	engine := extract.NewEngine(app.Config.OCRLanguages)
	worker := extract.NewWorker(docRepo, engine)
	app.ExtractWorker = worker
	app.ExtractProcessor = worker

	queueClient, err := buildQueue(ctx, app.Config, app)
	if err != nil {
		return err
	}
	app.Queue = queueClient

	llmClient := llm.Client(llm.PlaceholderClient{})
	if strings.TrimSpace(app.Config.GeminiAPIKey) != "" {
		geminiClient, err := gemini.NewClient(app.Config.GeminiAPIKey, app.Config.GeminiModel)
		if err != nil {
			return err
		}
		llmClient = geminiClient
	}

	docSvc := &documents.Service{
		Repo:         docRepo,
		Interactions: interactionRepo,
		Queue:        queueClient,
	}
	userSvc := users.NewService(userRepo)
	authSvc := authapi.NewService(userRepo, tokens)
	querySvc := query.NewService(docSvc, interactionRepo, llmClient)

	app.UsersRepo = userRepo
	app.DocumentsRepo = docRepo
	app.InteractionsRepo = interactionRepo
	app.Tokens = tokens
	app.UsersService = userSvc
	app.AuthService = authSvc
	app.DocumentsService = docSvc
	app.QueryService = querySvc
	app.AuthHandler = authapi.NewHandler(authSvc)
	app.UsersHandler = users.NewHandler(userSvc)
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.QueryHandler = query.NewHandler(querySvc)

	return nil
}

// buildQueue returns an SQS client when a queue URL is configured, otherwise
// an in-process client dispatching to the extraction worker.
func buildQueue(ctx context.Context, cfg config.Config, app *App) (queue.Client, error) {
	if strings.TrimSpace(cfg.QueueURL) != "" {
		return queue.NewSQSClient(ctx, cfg.QueueURL)
	}
	return queue.NewLocalClient(processorFunc(func(ctx context.Context, documentID string) error {
		return app.ExtractProcessor.Process(ctx, documentID)
	}), localQueueWorkers), nil
}

type processorFunc func(ctx context.Context, documentID string) error

func (f processorFunc) Process(ctx context.Context, documentID string) error {
	return f(ctx, documentID)
}
