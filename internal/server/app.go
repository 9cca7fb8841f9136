// Package server initializes and runs the task manager: it opens the
// database, applies migrations, seeds default data, loads key material and
// serves the REST and gRPC endpoints until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/cryptox"
	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/auth"
	"github.com/dmitrijs2005/taskmanager/internal/server/config"
	"github.com/dmitrijs2005/taskmanager/internal/server/httpapi"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskmanager/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/taskmanager/internal/server/grpc"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *httpapi.Server
	grpcServer *gs.GRPCServer
	purger     refreshTokenPurger
	closers    []func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogFormat, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	app := &App{config: c, logger: logger}
	if err := app.init(ctx); err != nil {
		app.close()
		return nil, err
	}
	return app, nil
}

func (app *App) init(ctx context.Context) error {
	c := app.config

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	app.db = db
	app.closers = append(app.closers, db.Close)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	applied, err := rm.RunMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}
	app.logger.Info(ctx, "schema migrated", "applied", applied)

	hasher, err := cryptox.NewHasher(c.PasswordHashAlgorithm, c.BcryptCost)
	if err != nil {
		return err
	}

	if c.SeedData {
		if err := services.NewSeeder(db, rm, hasher, app.logger).Seed(ctx); err != nil {
			return fmt.Errorf("seed error: %w", err)
		}
	}

	key, err := loadSigningKey(ctx, c, app.logger)
	if err != nil {
		return err
	}

	revoker := app.newRevoker()
	tokens := auth.NewTokenManager(auth.NewKeyring(key),
		auth.WithIssuer(c.TokenIssuer),
		auth.WithRevoker(revoker),
	)
	gate := auth.NewGate(tokens)
	policy := auth.NewRBACPolicy(auth.DefaultRBACConfig())

	us := services.NewUserService(db, rm, hasher, tokens,
		c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration, app.logger)
	app.purger = us

	gin.SetMode(ginMode(c.LogLevel))
	router := httpapi.NewRouter(httpapi.Deps{
		Auth:     us,
		Users:    us,
		Statuses: services.NewTaskStatusService(db, rm),
		Labels:   services.NewLabelService(db, rm),
		Tasks:    services.NewTaskService(db, rm),
		DB:       db,
		Gate:     gate,
		Policy:   policy,
		Logger:   app.logger,
	})
	app.httpServer = httpapi.NewServer(c.EndpointAddrHTTP, router, app.logger)

	if c.EndpointAddrGRPC != "" {
		app.grpcServer = gs.NewGRPCServer(c.EndpointAddrGRPC, app.logger, gate, policy, db)
	}
	return nil
}

// newRevoker shares revocations through Redis when configured.
func (app *App) newRevoker() auth.Revoker {
	if strings.TrimSpace(app.config.RedisAddr) == "" {
		return auth.NewMemoryRevoker()
	}
	client := redis.NewClient(&redis.Options{Addr: app.config.RedisAddr})
	app.closers = append(app.closers, client.Close)
	return auth.NewRedisRevoker(client, "")
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

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		sweepRefreshTokens(ctx, app.purger, refreshSweepInterval, app.logger)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	if app.grpcServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := app.grpcServer.Run(ctx); err != nil {
				app.logger.Error(ctx, err.Error())
				cancelFunc()
			}
		}()
	}

	wg.Wait()
	app.close()
	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Warn(context.Background(), "close", "error", err)
		}
	}
	app.closers = nil
}

// ginMode keeps gin's route dump and debug warnings for debug logging only.
func ginMode(logLevel string) string {
	if strings.EqualFold(logLevel, "debug") {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}
