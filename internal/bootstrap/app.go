package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"governance-backend/internal/assessments"
	"governance-backend/internal/catalog"
	"governance-backend/internal/events"
	"governance-backend/internal/governance"
	"governance-backend/internal/llm"
	openai "governance-backend/internal/llm/openai"
	"governance-backend/internal/llm/vertex"
	"governance-backend/internal/policy"
	"governance-backend/internal/questionnaire"
	"governance-backend/internal/riskmatrix"
	"governance-backend/internal/services/health"
	"governance-backend/internal/sessions"
	"governance-backend/internal/shared/config"
	"governance-backend/internal/shared/server"
	"governance-backend/internal/shared/storage/db"
	"governance-backend/internal/shared/storage/object"
	localstore "governance-backend/internal/shared/storage/object/local"
	s3store "governance-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Events events.Publisher

	Catalog       *catalog.Catalog
	RatingSource  governance.RatingSource
	Policy        *policy.StoreProvider
	Assessor      *governance.Assessor
	Sessions      sessions.Store
	ScoresRepo    assessments.Repo
	Assessments   *assessments.Service
	Matrix        *riskmatrix.Service
	Questionnaire *questionnaire.Service

	cancel context.CancelFunc
}

// Build prepares every dependency and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{Config: cfg, cancel: cancel}

	if err := app.build(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (app *App) build(ctx context.Context) error {
	cfg := app.Config

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return err
	}
	app.DB = sqlDB

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	app.Store = store

	cat, err := catalog.Load(cfg.CatalogDir)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	app.Catalog = cat

	citations, err := buildCitations(cfg.CitationsFile)
	if err != nil {
		return err
	}
	labels, err := questionnaire.LoadLabels(cfg.QuestionLabelsFile)
	if err != nil {
		return err
	}

	source, err := BuildRatingSource(ctx, cfg)
	if err != nil {
		return err
	}
	app.RatingSource = source

	app.Policy = policy.NewStoreProvider(store, cfg.PolicyPrefix)
	if local, ok := store.(*localstore.Store); ok && cfg.PolicyWatch {
		w, err := policy.NewWatcher(local.Dir(cfg.PolicyPrefix), app.Policy)
		if err != nil {
			log.Printf("bootstrap: policy watcher disabled: %v", err)
		} else {
			go w.Run(ctx)
		}
	}

	app.Events = buildEvents(cfg)
	app.Sessions = buildSessions(sqlDB, cfg.SessionTTL)
	if sqlDB != nil {
		app.ScoresRepo = &assessments.PGRepo{DB: sqlDB}
	} else {
		app.ScoresRepo = assessments.NewMemoryRepo()
	}

	app.Assessor = governance.NewAssessor(governance.NewScorer(source, cfg.RatingTimeout), app.Policy, citations)
	app.Assessments = &assessments.Service{
		Assessor: app.Assessor,
		Repo:     app.ScoresRepo,
		Events:   app.Events,
	}
	app.Matrix = riskmatrix.NewService(cat)
	app.Questionnaire = &questionnaire.Service{
		Matrix:      app.Matrix,
		Assessments: app.Assessments,
		Sessions:    app.Sessions,
		Events:      app.Events,
		Labels:      labels,
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:        cfg,
		Health:        health.NewService(sqlDB),
		Assessments:   assessments.NewHandler(app.Assessments),
		Questionnaire: questionnaire.NewHandler(app.Questionnaire),
		Matrix:        riskmatrix.NewHandler(app.Matrix),
		Policies:      policy.NewHandler(app.Policy),
	})
	return nil
}

// Close stops background work and releases connections.
func (app *App) Close() {
	if app.cancel != nil {
		app.cancel()
	}
	if app.Events != nil {
		app.Events.Close()
	}
	if app.DB != nil && !db.IsLambdaRuntime() {
		_ = app.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	profile := db.ProfileFor()
	connect := db.Connect
	if profile == db.ProfileLambda {
		connect = db.Shared
	}
	sqlDB, err := connect(ctx, cfg.DatabaseURL, db.OptionsFor(profile))
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
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildCitations(path string) (governance.Citations, error) {
	citations := governance.DefaultCitations()
	if strings.TrimSpace(path) == "" {
		return citations, nil
	}
	overlay, err := governance.LoadCitations(path)
	if err != nil {
		return governance.Citations{}, fmt.Errorf("load citations: %w", err)
	}
	return citations.Merge(overlay), nil
}

// BuildRatingSource selects the rating source named by RATING_PROVIDER.
func BuildRatingSource(ctx context.Context, cfg config.Config) (governance.RatingSource, error) {
	provider, err := llm.NormalizeProvider(cfg.RatingProvider)
	if err != nil {
		return nil, err
	}
	switch provider {
	case llm.ProviderOpenAI:
		return openai.NewRater(cfg.OpenAIAPIKey, cfg.LLMModel)
	case llm.ProviderVertex:
		return vertex.NewRater(ctx, vertex.Options{
			Project:         cfg.VertexProject,
			Location:        cfg.VertexLocation,
			Model:           cfg.LLMModel,
			CredentialsFile: cfg.VertexCredentialsFile,
			Timeout:         cfg.RatingTimeout,
		})
	default:
		log.Printf("bootstrap: rating provider disabled; every answer falls back to maturity 0")
		return llm.Placeholder{}, nil
	}
}

func buildEvents(cfg config.Config) events.Publisher {
	if strings.TrimSpace(cfg.NATSURL) == "" {
		return events.Noop{}
	}
	pub, err := events.NewNATSPublisher(cfg.NATSURL)
	if err != nil {
		log.Printf("bootstrap: events disabled: %v", err)
		return events.Noop{}
	}
	return pub
}

func buildSessions(sqlDB *sql.DB, ttl time.Duration) sessions.Store {
	if sqlDB != nil {
		return &sessions.PGStore{DB: sqlDB, TTL: ttl}
	}
	return sessions.NewMemoryStore(ttl, nil)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
