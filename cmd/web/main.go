package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/myrjola/chartnote/internal/ai"
	"github.com/myrjola/chartnote/internal/envstruct"
	"github.com/myrjola/chartnote/internal/errors"
	"github.com/myrjola/chartnote/internal/logging"
	"github.com/myrjola/chartnote/internal/narrative"
	"github.com/myrjola/chartnote/internal/pprofserver"
	"github.com/myrjola/chartnote/internal/preferences"
	"github.com/myrjola/chartnote/internal/repositories"
	"github.com/myrjola/chartnote/internal/session"
	"github.com/myrjola/chartnote/internal/sqlite"
	"golang.org/x/sync/singleflight"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	store          *session.Store
	prefs          *preferences.Service
	narrator       *narrative.Narrator
	metrics        *metrics
	validate       *validator.Validate
	generations    singleflight.Group
	cfg            config
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"CHARTNOTE_ADDR" envDefault:"localhost:4000"`
	// SqliteURL is the path to the database file or :memory: for a throwaway database.
	SqliteURL string `env:"CHARTNOTE_SQLITE_URL" envDefault:"./chartnote.sqlite"`
	// PprofAddr enables the pprof listener. Keep it on loopback.
	PprofAddr string `env:"CHARTNOTE_PPROF_ADDR" envDefault:""`
	// InsecureCookies drops the Secure flag from cookies for plain HTTP development.
	InsecureCookies   bool   `env:"CHARTNOTE_INSECURE_COOKIES" envDefault:"false"`
	DefaultAccessCode string `env:"CHARTNOTE_DEFAULT_ACCESS_CODE" envDefault:"19960213"`
	OpenAIAPIKey      string `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIBaseURL     string `env:"OPENAI_BASE_URL" envDefault:""`
	NoteModel         string `env:"CHARTNOTE_NOTE_MODEL" envDefault:"gpt-4o-mini"`
	ReportModel       string `env:"CHARTNOTE_REPORT_MODEL" envDefault:"gpt-4o"`
	// AIRatePerMinute limits the model-backed requests per client IP.
	AIRatePerMinute int `env:"CHARTNOTE_AI_RATE_PER_MINUTE" envDefault:"20"`
	// RequestTimeout bounds a whole request including the model round trip.
	RequestTimeout time.Duration `env:"CHARTNOTE_REQUEST_TIMEOUT" envDefault:"90s"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		err error
		cfg config
		db  *sqlite.Database
	)

	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	pprofserver.Launch(ctx, cfg.PprofAddr, logger)

	if db, err = sqlite.NewDatabase(ctx, cfg.SqliteURL, logger); err != nil {
		return errors.Wrap(err, "open database", slog.String("sqlite_url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close database", errors.SlogError(closeErr))
		}
	}()
	db.StartDatabaseOptimizer(ctx, time.Hour)
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	kv := repositories.NewKeyValueRepository(db, logger)
	store := session.NewStore(kv, logger)
	if err = store.Load(ctx); err != nil {
		return errors.Wrap(err, "load patients")
	}

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(db.ReadWrite, 24*time.Hour) //nolint:mnd // daily
	sessionManager.Lifetime = 12 * time.Hour                                              //nolint:mnd // one shift
	sessionManager.Cookie.Secure = !cfg.InsecureCookies
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode

	aiClient := ai.NewClient(ai.Config{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL}, logger)
	if cfg.OpenAIAPIKey == "" {
		logger.LogAttrs(ctx, slog.LevelWarn, "OPENAI_API_KEY not set, note generation is disabled")
	}

	app := application{
		logger:         logger,
		sessionManager: sessionManager,
		store:          store,
		prefs:          preferences.NewService(kv, cfg.DefaultAccessCode, logger),
		narrator: narrative.NewNarrator(aiClient, narrative.Config{
			NoteModel:   cfg.NoteModel,
			ReportModel: cfg.ReportModel,
		}, logger),
		metrics:     newMetrics(),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		generations: singleflight.Group{},
		cfg:         cfg,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)

	// The .env file is optional, real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelError, "failure loading .env", errors.SlogError(err))
		os.Exit(1)
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
