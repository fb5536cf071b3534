// Package server wires the account service together and runs its HTTP and
// gRPC health endpoints until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/beppofit-auth/internal/dbx"
	"github.com/dmitrijs2005/beppofit-auth/internal/logging"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/auth"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/config"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/db"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/httpapi"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/mailer"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/oauth"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/password"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/beppofit-auth/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	redis    *redis.Client
	accounts *services.AccountService
	handler  *httpapi.Handler
}

// seams for tests
var (
	connectDB          = db.Connect
	newGoogleProvider  = oauth.NewGoogleProvider
	newRedisClient     = oauth.NewRedisClient
	newPostgresManager = func() repomanager.RepositoryManager { return repomanager.NewPostgresRepositoryManager() }
)

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)
	app := &App{config: c, logger: logger}

	var (
		runner dbx.Runner
		rm     repomanager.RepositoryManager
	)

	if c.DatabaseDSN == config.MemoryDSN {
		logger.Warn(ctx, "Using in-memory account store")
		runner = dbx.NopRunner{}
		rm = repomanager.NewMemoryRepositoryManager()
	} else {
		conn, err := connectDB(ctx, c.DatabaseDSN, db.Options{
			Retries:  c.DBConnectRetries,
			Interval: c.DBConnectInterval,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = conn

		rm = newPostgresManager()
		if err := rm.RunMigrations(ctx, conn); err != nil {
			app.Close()
			return nil, fmt.Errorf("migrations error: %w", err)
		}
		runner = dbx.NewSQLRunner(conn, nil)
	}

	sender, err := mailer.NewSender(ctx, c, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("mailer init error: %w", err)
	}

	hasher := password.NewHasher(password.Params{
		Memory:      c.Argon2Memory,
		Time:        c.Argon2Time,
		Parallelism: c.Argon2Parallelism,
	})
	issuer := auth.NewTokenIssuer([]byte(c.SecretKey), c.SessionTokenTTL, c.TokenIssuer)
	notifier := mailer.New(sender, mailer.Links{PublicURL: c.PublicURL, FrontendURL: c.FrontendURL})

	app.accounts = services.NewAccountService(runner, rm, hasher, issuer, notifier, logger, c)

	opts := httpapi.Options{FrontendURL: c.FrontendURL}
	if c.GoogleEnabled() {
		rc, err := newRedisClient(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		app.redis = rc

		provider, err := newGoogleProvider(ctx, oauth.GoogleConfig{
			ClientID:     c.GoogleClientID,
			ClientSecret: c.GoogleClientSecret,
			RedirectURL:  c.GoogleRedirectURL,
			Issuer:       c.GoogleIssuer,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("google oauth init error: %w", err)
		}

		opts.Provider = provider
		opts.States = oauth.NewStateStore(rc, "", c.OAuthStateTTL)
	} else {
		logger.Info(ctx, "Google login disabled")
	}

	app.handler = httpapi.NewHandler(app.accounts, logger, opts)

	return app, nil
}

// Close releases the store and cache connections.
func (app *App) Close() {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if app.db != nil {
		_ = app.db.Close()
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.handler.Router(), app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	var pinger gs.Pinger
	if app.db != nil {
		pinger = app.db
	}

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, pinger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a signal arrives or a server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.Close()

	app.logger.Info(ctx, "App stopped")
}
