package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/database"
	"github.com/vancomm/minesweeper/internal/handlers"
	"github.com/vancomm/minesweeper/internal/middleware"
	"github.com/vancomm/minesweeper/internal/repository"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	logger  *slog.Logger
	router  *mux.Router
	db      *pgxpool.Pool
	cookies *config.Cookies
	ws      *config.WebSocket
	game    *handlers.GameHandler
}

func New(logger *slog.Logger) *App {
	app := &App{
		logger: logger,
		router: mux.NewRouter(),
	}

	return app
}

// Configure reads cookie, jwt and websocket settings from the environment.
func (a *App) Configure() error {
	jwt, err := config.NewJWT()
	if err != nil {
		return fmt.Errorf("failed to read jwt config: %w", err)
	}

	cookies, err := config.NewCookies(jwt)
	if err != nil {
		return fmt.Errorf("failed to read cookies config: %w", err)
	}
	a.cookies = cookies

	ws, err := config.NewWebSocket()
	if err != nil {
		return fmt.Errorf("failed to read ws config: %w", err)
	}
	a.ws = ws

	return nil
}

func (a *App) Handler() http.Handler {
	return middleware.Wrap(
		a.router,
		middleware.Recover(a.logger),
		middleware.Logging(a.logger),
		middleware.Cors(config.CorsOrigins()),
		middleware.Auth(a.logger, a.cookies),
	)
}

// Start migrates the database, serves until ctx is done and then shuts the
// server down gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.Configure(); err != nil {
		return err
	}

	db, migrator, err := database.ConnectAndMigrate(ctx)
	if err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	defer db.Close()
	if version, dirty, err := migrator.Version(); err == nil {
		a.logger.Info("database ready", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	}
	a.db = db

	a.loadRoutes(repository.New(db))

	port := config.Port()
	server := &http.Server{
		Addr:         port,
		Handler:      a.Handler(),
		ReadTimeout:  time.Second * 15,
		WriteTimeout: time.Second * 15,
		IdleTimeout:  time.Second * 60,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	server.RegisterOnShutdown(a.game.Shutdown)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(sCtx)
	})

	a.logger.Info(
		"minesweeper server listening",
		slog.String("port", port),
		slog.String("base path", config.BasePath()),
	)

	return g.Wait()
}
