package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/deptportal/internal/app/controllers"
	appMigrations "github.com/yigit/deptportal/internal/app/migrations"
	appRepos "github.com/yigit/deptportal/internal/app/repositories"
	"github.com/yigit/deptportal/internal/app/repositories/memory"
	appRoutes "github.com/yigit/deptportal/internal/app/routes"
	appServices "github.com/yigit/deptportal/internal/app/services"
	"github.com/yigit/deptportal/internal/config"
	"github.com/yigit/deptportal/internal/db"
	appMiddleware "github.com/yigit/deptportal/internal/middleware"
	pkgAuth "github.com/yigit/deptportal/internal/pkg/auth"
	"github.com/yigit/deptportal/internal/pkg/filestorage"
	"github.com/yigit/deptportal/internal/pkg/genai"
	"github.com/yigit/deptportal/internal/pkg/logger"
	"github.com/yigit/deptportal/internal/pkg/session"
	"github.com/yigit/deptportal/internal/pkg/websocket"
	"github.com/yigit/deptportal/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Config         *config.Config
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	LoginLimiter   *appMiddleware.RateLimiter
	JWTService     *pkgAuth.JWTService
	Revoker        session.Revoker
	Hub            *websocket.Hub
	Logger         zerolog.Logger

	// Database is nil when the memory driver is selected
	Database *db.PostgresDB

	closers []func()
}

// Close releases the connections opened by BuildDependencies
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.ConfigFromSettings(cfg.Logging.Level, cfg.Logging.Format))

	lgr := logger.Get()
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to PostgreSQL and applies pending migrations when auto_migrate is set.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	lgr.Info().Msg("Database connection successfully established.")

	if cfg.Database.AutoMigrate {
		lgr.Info().Msg("Running database migrations...")
		if err := appMigrations.NewMigrator(cfg.GetPostgresConnectionString()).Up(); err != nil {
			database.Close()
			return nil, fmt.Errorf("database migrations failed: %w", err)
		}
	}

	return database, nil
}

// SetupRepositories selects the storage backend named by database.driver
func SetupRepositories(cfg *config.Config, lgr zerolog.Logger) (*appRepos.Repositories, *db.PostgresDB, error) {
	if cfg.Database.Driver == config.DriverMemory {
		lgr.Warn().Msg("Using in-memory storage; data is lost on restart")
		return memory.NewRepositories(), nil, nil
	}

	database, err := SetupDatabase(cfg, lgr)
	if err != nil {
		return nil, nil, err
	}
	return appRepos.NewRepositories(database), database, nil
}

// setupRevoker uses Redis when configured and reachable, otherwise an in-process denylist
func setupRevoker(cfg *config.Config, lgr zerolog.Logger) (session.Revoker, func()) {
	if cfg.Redis.Addr == "" {
		return session.NewMemoryRevoker(), func() {}
	}

	r := session.NewRedisRevoker(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if !r.Healthy(ctx) {
		lgr.Warn().Str("addr", cfg.Redis.Addr).Msg("Redis unreachable, revoked sessions are kept in memory")
		_ = r.Close()
		return session.NewMemoryRevoker(), func() {}
	}

	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Session revocation backed by Redis")
	return r, func() { _ = r.Close() }
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Config: cfg, Logger: lgr}

	repos, database, err := SetupRepositories(cfg, lgr)
	if err != nil {
		return nil, err
	}
	deps.Repos = repos
	deps.Database = database
	if database != nil {
		deps.closers = append(deps.closers, database.Close)
	}

	storage, err := filestorage.NewLocalStorage(cfg.Server.StoragePath)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		SessionExp:  cfg.SessionTTL(),
		TokenIssuer: cfg.JWT.Issuer,
	})

	var closeRevoker func()
	deps.Revoker, closeRevoker = setupRevoker(cfg, lgr)
	deps.closers = append(deps.closers, closeRevoker)

	hubCtx, stopHub := context.WithCancel(ctx)
	deps.Hub = websocket.NewHub(lgr.With().Str("component", "ws-hub").Logger())
	go deps.Hub.Run(hubCtx)
	deps.closers = append(deps.closers, stopHub)

	deps.Services = appServices.NewServices(appServices.Deps{
		Repos:     repos,
		JWT:       deps.JWTService,
		Revoker:   deps.Revoker,
		Storage:   storage,
		Model:     genai.New(cfg.GenAI.Endpoint, cfg.GenAI.APIKey, cfg.GenAI.Model, cfg.GenAITimeout()),
		Publisher: deps.Hub,
		Policy: appServices.RegistrationPolicy{
			EnforceCapacity: cfg.Registration.EnforceCapacity,
			ValidateFields:  cfg.Registration.ValidateFields,
		},
		MaxUpload: cfg.Server.MaxUploadBytes,
		Logger:    lgr,
	})

	if _, err := seed.EnsureAdmin(ctx, repos.Users, seed.AdminAccount{
		Name:     cfg.Admin.Name,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default admin, proceeding anyway...")
	}

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Revoker, repos.Users, cfg.JWT.CookieName, lgr)
	deps.LoginLimiter = appMiddleware.NewRateLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst)

	component := func(name string) zerolog.Logger {
		return lgr.With().Str("component", name).Logger()
	}
	svc := deps.Services
	deps.Controllers = appRoutes.Controllers{
		Auth: appControllers.NewAuthController(svc.Auth, appControllers.CookieSettings{
			Name:   cfg.JWT.CookieName,
			Secure: cfg.Server.CookieSecure,
		}, component("auth-http")),
		Resources:     appControllers.NewResourceController(svc.Resources, svc.Registrations, component("resources-http")),
		Notifications: appControllers.NewNotificationController(svc.Notifications, websocket.NewUpgrader(deps.Hub, cfg.Server.AllowedOrigins), component("notifications-http")),
		QuizResults:   appControllers.NewQuizResultController(svc.QuizResults),
		Files:         appControllers.NewFileController(svc.Files, cfg.Server.MaxUploadBytes, component("files-http")),
		Users:         appControllers.NewUserController(svc.Users),
		Generation:    appControllers.NewGenerationController(svc.Generation, cfg.Server.MaxUploadBytes, component("generation-http")),
		Health:        appControllers.NewHealthController(healthChecks(deps)),
	}

	return deps, nil
}

func healthChecks(deps *Dependencies) map[string]appControllers.HealthCheck {
	checks := map[string]appControllers.HealthCheck{}
	if deps.Database != nil {
		checks["database"] = func(ctx context.Context) error { return deps.Database.Ping(ctx) }
	}
	if r, ok := deps.Revoker.(*session.RedisRevoker); ok {
		checks["redis"] = func(ctx context.Context) error {
			if !r.Healthy(ctx) {
				return fmt.Errorf("redis unreachable")
			}
			return nil
		}
	}
	return checks
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(appMiddleware.RequestLogger(lgr.With().Str("component", "http").Logger()))
	if cfg.Metrics.Enabled {
		router.Use(appMiddleware.Metrics())
	}

	opts := appRoutes.Options{}
	if cfg.Metrics.Enabled {
		opts.MetricsPath = cfg.Metrics.Path
	}
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.LoginLimiter, opts)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
