package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mona5211005/certificate-system/internal/certificates"
	"github.com/mona5211005/certificate-system/internal/files"
	"github.com/mona5211005/certificate-system/internal/raster"
	"github.com/mona5211005/certificate-system/internal/shared/config"
	"github.com/mona5211005/certificate-system/internal/shared/server"
	"github.com/mona5211005/certificate-system/internal/shared/server/middleware"
	"github.com/mona5211005/certificate-system/internal/shared/storage/db"
	"github.com/mona5211005/certificate-system/internal/shared/storage/object"
	localstore "github.com/mona5211005/certificate-system/internal/shared/storage/object/local"
	miniostore "github.com/mona5211005/certificate-system/internal/shared/storage/object/minio"
	"github.com/mona5211005/certificate-system/internal/shared/telemetry"
	"github.com/mona5211005/certificate-system/internal/sysconfig"
	"github.com/mona5211005/certificate-system/internal/uploads"
	"github.com/mona5211005/certificate-system/internal/users"
	"github.com/mona5211005/certificate-system/internal/vision"
	"github.com/mona5211005/certificate-system/internal/vision/glm"
)

// extractRateRule throttles the extraction route per caller. The upstream
// model call can take over a minute, so a small burst is plenty.
var extractRateRule = middleware.RateLimitRule{Rate: 1, Burst: 3}

// App holds the wired dependencies shared by the HTTP server and the CLI.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	UsersRepo  users.Repo
	FilesRepo  files.Repo
	CertsRepo  certificates.Repo
	ConfigRepo sysconfig.Repo

	UsersService  *users.Service
	FilesService  *files.Service
	CertsService  *certificates.Service
	ConfigService *sysconfig.Service

	UploadsHandler *uploads.Handler
	FilesHandler   *files.Handler
	CertsHandler   *certificates.Handler
	AdminHandler   *sysconfig.Handler
}

// Build prepares all dependencies and the router. A missing database is
// tolerated outside production, falling back to in-memory repositories.
func Build(cfg config.Config) (*App, error) {
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
	buildServices(app)

	app.Router = server.NewRouter(server.Deps{
		Config:       cfg,
		Users:        app.UsersService,
		Uploads:      app.UploadsHandler,
		Files:        app.FilesHandler,
		Certificates: app.CertsHandler,
		Admin:        app.AdminHandler,
	})
	return app, nil
}

// Close releases held resources.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// DatabaseTarget resolves the connection target: a Postgres URL wins, then
// a SQLite path, then nothing.
func DatabaseTarget(cfg config.Config) string {
	if target := strings.TrimSpace(cfg.DatabaseURL); target != "" {
		return target
	}
	return strings.TrimSpace(cfg.SQLitePath)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	target := DatabaseTarget(cfg)
	if target == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("DATABASE_URL or SQLITE_PATH is required in production")
		}
		telemetry.Warn("bootstrap.memory_repos", map[string]any{
			"reason": "no database configured",
		})
		return nil, nil
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, target, opts)
	if err != nil {
		if cfg.Env == "production" {
			return nil, err
		}
		telemetry.Warn("bootstrap.memory_repos", map[string]any{
			"reason": "database connect failed",
			"error":  err.Error(),
		})
		return nil, nil
	}

	if err := db.RunMigrations(ctx, sqlDB, db.Dialect(target)); err != nil {
		sqlDB.Close()
		if cfg.Env == "production" {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		telemetry.Warn("bootstrap.memory_repos", map[string]any{
			"reason": "migrations failed",
			"error":  err.Error(),
		})
		return nil, nil
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	if cfg.ObjectStoreType == "s3" {
		return miniostore.New(ctx, miniostore.Options{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		})
	}
	return localstore.New(cfg.LocalStoreDir), nil
}

func buildServices(app *App) {
	cfg := app.Config

	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.FilesRepo = &files.PGRepo{DB: app.DB}
		app.CertsRepo = &certificates.PGRepo{DB: app.DB}
		app.ConfigRepo = &sysconfig.PGRepo{DB: app.DB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.FilesRepo = files.NewMemoryRepo()
		app.CertsRepo = certificates.NewMemoryRepo()
		app.ConfigRepo = sysconfig.NewMemoryRepo()
	}

	usersSvc := users.NewService(app.UsersRepo)
	usersSvc.StudentAccountLen = cfg.StudentIDLength

	configSvc := sysconfig.NewService(app.ConfigRepo)

	// The certificates repo doubles as the file layer's view of record
	// state; both repo implementations carry the two methods it needs.
	filesSvc := &files.Service{
		Repo:    app.FilesRepo,
		Blobs:   app.Store,
		Records: app.CertsRepo,
	}

	certsSvc := &certificates.Service{
		Repo:      app.CertsRepo,
		Files:     filesSvc,
		Users:     usersSvc,
		Config:    configSvc,
		Validator: certificates.NewValidator(cfg.StudentIDLength),
		Renderer:  raster.NewRenderer(cfg.PdftoppmPath, cfg.RasterDPI),
		Extractor: &vision.Extractor{
			Client: glm.New(cfg.VisionBaseURL, cfg.VisionModel, time.Duration(cfg.VisionTimeout)*time.Second),
		},
		MaxUploadBytes: cfg.MaxUploadBytes,
	}

	certsHandler := certificates.NewHandler(certsSvc, filesSvc)
	certsHandler.ExtractLimit = middleware.RateLimit(extractRateRule, middleware.NewRateLimiter(nil))

	app.UsersService = usersSvc
	app.FilesService = filesSvc
	app.CertsService = certsSvc
	app.ConfigService = configSvc
	app.UploadsHandler = uploads.NewHandler(cfg.MaxUploadBytes)
	app.FilesHandler = files.NewHandler(filesSvc)
	app.CertsHandler = certsHandler
	app.AdminHandler = sysconfig.NewHandler(configSvc)
}
