package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/boltdb/bolt"
	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type AppProvider interface {
	Run() error
	Serve() func() error
	Stop(context.Context, context.Context) func() error
}

type App struct {
	logger         *zap.Logger
	config         *Config
	server         *http.Server
	db             *gorm.DB
	redisClient    *redis.Client
	boltDBClient   *bolt.DB
	cleanups       []func()
	queueConsumers []func(context.Context) error
}

// NewApp provides an instance of App.
func NewApp() (AppProvider, error) {
	config, err := LoadAndInitConfigs(GitCommit, GitTag, BuildTime)
	if err != nil {
		return nil, fmt.Errorf("failed to setup app configuration: %s", err)
	}

	// ensure the logs folder exists and setup the logging module.
	err = os.MkdirAll(config.LogFolder, 0o700)
	if err != nil {
		return nil, fmt.Errorf("failed to create logging folder: %s", err)
	}
	clock := NewClock(config.IsProduction)
	rsw := NewRSyncWriter(config, clock)
	logger, flusher := SetupLogging(config, rsw, NewTickClock(clock))

	cleanups := []func(){
		func() {
			if err := flusher(); err != nil {
				fmt.Println("error during flushing of logs: ", err)
			}
		},
		func() {
			if err := rsw.Close(); err != nil {
				fmt.Println("error during closing of log file: ", err)
			}
		},
	}

	// Setup the connections to the database, redis and boltDB servers.
	db, err := GetDatabaseClient(&config.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %s", config.Database.Driver, err)
	}

	pCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	redisClient, err := GetRedisClient(pCtx, &config.Redis)
	if err != nil {
		_ = CloseDatabaseClient(db)
		return nil, fmt.Errorf("failed to connect to redis server: %s", err)
	}

	boltDBClient, err := GetBoltDBClient(&config.BoltDB)
	if err != nil {
		_ = CloseDatabaseClient(db)
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to connect to boltDB server: %s", err)
	}

	// Setup the repositories, the change feed and the api services.
	bookStorage := NewGormBookStorage(logger, db)
	userStorage := NewGormUserStorage(logger, db)
	mirror := NewBoltCatalogMirror(logger, &config.BoltDB, boltDBClient)
	redisQueue := NewRedisQueue(redisClient)
	mirrorConsumer := NewMirrorConsumer(logger, redisQueue, mirror)

	hasher := NewBcryptHasher(config.Auth.BcryptCost)
	catalog := NewOpenLibraryClient(logger, &config.OpenLibrary)

	apiService := NewAPIHandler(
		logger,
		config,
		&Statistics{
			version:   config.GitTag,
			container: IsAppRunningInDocker(),
			started:   clock.Now(),
			runtime:   runtime.Version(),
			platform:  runtime.GOOS + "/" + runtime.GOARCH,
		},
		clock,
		NewIDsHandler(),
		&Services{
			Books:  NewBookService(logger, bookStorage, userStorage, catalog, redisQueue),
			Users:  NewUserService(logger, userStorage, bookStorage, hasher),
			Auth:   NewUserAuthenticator(userStorage, hasher),
			Mirror: mirror,
		},
	)

	// Use git commit in case the tag is not set.
	if config.GitTag == "" {
		apiService.stats.version = config.GitCommit
	}

	// Build the map of middlewares stacks.
	middlewaresPublic, middlewaresSecured, middlewaresOps := apiService.MiddlewaresStacks()

	// Configure the endpoints with their handlers and middlewares.
	router := apiService.SetupRoutes(httprouter.New(),
		&MiddlewareMap{
			public:  middlewaresPublic.Chain,
			secured: middlewaresSecured.Chain,
			ops:     middlewaresOps.Chain,
		},
	)
	// Wrap the router with the default http timeout handler.
	routerWithTimeout := http.TimeoutHandler(
		router,
		config.Server.RequestTimeout,
		"Timeout. Processing taking too long. Please reach out to support.")

	// Build the api server definition.
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
		Handler:        routerWithTimeout,
		ReadTimeout:    config.Server.ReadTimeout,
		WriteTimeout:   config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // Max headers size : 1MB
	}

	mirrorConsume := func(ctx context.Context) error {
		return mirrorConsumer.Consume(ctx, BookCreatedQueue, BookUpdatedQueue, BookDeletedQueue)
	}

	return &App{
		logger:         logger,
		config:         config,
		server:         srv,
		db:             db,
		redisClient:    redisClient,
		boltDBClient:   boltDBClient,
		cleanups:       cleanups,
		queueConsumers: []func(ctx context.Context) error{mirrorConsume},
	}, nil
}

// Run starts the api web server, the queue consumers and a goroutine which is responsible to stop them.
func (app *App) Run() error {
	defer app.Clean()
	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(nCtx)

	g.Go(app.ConsumeQueues(gCtx, g))
	g.Go(app.Serve())
	g.Go(app.Stop(nCtx, gCtx))

	err := g.Wait()
	app.logger.Info("api server stopped",
		zap.String("app.host", app.config.Server.Host),
		zap.String("app.port", app.config.Server.Port),
		zap.Error(err),
	)
	return err
}

// Clean calls all registered cleanups functions in reverse order
// so the log file is closed last.
func (app *App) Clean() {
	for i := len(app.cleanups) - 1; i >= 0; i-- {
		app.cleanups[i]()
	}
}

// Serve starts the api web server. It returned error
// will be caught by the errorgroup.
func (app *App) Serve() func() error {
	return func() error {
		app.logger.Info("api server starting",
			zap.String("app.host", app.config.Server.Host),
			zap.String("app.port", app.config.Server.Port),
			zap.String("db.driver", app.config.Database.Driver),
		)
		err := app.server.ListenAndServe()
		if err == http.ErrServerClosed {
			err = nil
		}
		return err
	}
}

// Stop listens for the group context and triggers the server graceful shutdown.
// It states the reason of its call. We proceed with a brutal shutdown if the
// the graceful did not complete successfully. Once the server is down, the
// stores are closed. We explicitly return `nil` to allow the errorgroup
// catches only the `Serve` method result.
func (app *App) Stop(nCtx, gCtx context.Context) func() error {
	return func() error {
		<-gCtx.Done()

		if nCtx.Err() != nil {
			app.logger.Info("api server stopping. reason: requested to stop")
		} else {
			app.logger.Info("api server stopping. reason: errored at running")
		}

		sCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()
		err := app.server.Shutdown(sCtx)
		switch err {
		case nil, http.ErrServerClosed:
			app.logger.Info("api server graceful shutdown succeeded")
		case context.DeadlineExceeded:
			app.logger.Info("api server graceful shutdown timed out")
		default:
			app.logger.Info("api server graceful shutdown failed", zap.Error(err))
		}

		if err != nil && err != http.ErrServerClosed {
			app.logger.Info("api server going to force shutdown", zap.Error(app.server.Close()))
		}

		app.logger.Info("closing redis client", zap.Error(app.redisClient.Close()))
		app.logger.Info("closing boltdb client", zap.Error(app.boltDBClient.Close()))
		app.logger.Info("closing database client", zap.Error(CloseDatabaseClient(app.db)))
		return nil
	}
}

// ConsumeQueues runs all queue consumers into separate controlled goroutines.
func (app *App) ConsumeQueues(gCtx context.Context, g *errgroup.Group) func() error {
	return func() error {
		for _, consume := range app.queueConsumers {
			consume := consume
			g.Go(func() error {
				return consume(gCtx)
			})
		}
		return nil
	}
}
