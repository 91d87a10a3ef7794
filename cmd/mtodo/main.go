package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/mtodo/internal/config"
	"github.com/xxxsen/mtodo/internal/db"
	"github.com/xxxsen/mtodo/internal/handler"
	"github.com/xxxsen/mtodo/internal/job"
	"github.com/xxxsen/mtodo/internal/middleware"
	"github.com/xxxsen/mtodo/internal/pkg/password"
	"github.com/xxxsen/mtodo/internal/repo"
	"github.com/xxxsen/mtodo/internal/schedule"
	"github.com/xxxsen/mtodo/internal/service"
	"github.com/xxxsen/mtodo/internal/session"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "mtodo",
		Short: "mtodo backend server",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json (MTODO_* env only when empty)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run mtodo server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			return runServer(cfg, conn)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			logutil.GetLogger(context.Background()).Info("migrations applied")
			return nil
		},
	}

	var opts service.PopulateOptions
	populateCmd := &cobra.Command{
		Use:   "populate",
		Short: "seed demo users and todos",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			populator := service.NewPopulator(repo.NewUserRepo(conn), repo.NewTodoRepo(conn))
			res, err := populator.Populate(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("populate: %w", err)
			}
			for _, u := range res.Users {
				fmt.Fprintf(cmd.OutOrStdout(), "user %d %s password %s\n", u.ID, u.Email, service.DemoPassword)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d todos created\n", res.Todos)
			return nil
		},
	}
	populateCmd.Flags().IntVar(&opts.Users, "users", service.DefaultDemoUsers, "number of demo users")
	populateCmd.Flags().IntVar(&opts.Todos, "todos", service.DefaultDemoTodos, "number of demo todos")
	populateCmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed, 0 picks one")

	rootCmd.AddCommand(runCmd, migrateCmd, populateCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

// bootstrap loads config, sets up logging and returns a migrated database.
func bootstrap(configPath string) (*config.Config, *sqlx.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
	password.SetCost(cfg.PasswordCost)

	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return cfg, conn, nil
}

func runServer(cfg *config.Config, conn *sqlx.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("session_store", cfg.Session.Store),
		zap.String("list_scope", cfg.Todo.ListScope),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	userRepo := repo.NewUserRepo(conn)
	todoRepo := repo.NewTodoRepo(conn)

	store, err := session.New(cfg.Session, conn)
	if err != nil {
		return fmt.Errorf("init session store: %w", err)
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	if cfg.Session.Store == config.SessionStoreDB {
		scheduler := schedule.NewCronScheduler()
		if err := scheduler.AddJob(job.NewSessionCleanupJob(repo.NewSessionRepo(conn)), cfg.Session.CleanupSpec); err != nil {
			return err
		}
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	authService := service.NewAuthService(userRepo, store, cfg.UserCache.Size, cfg.UserCache.TTL())
	todoService := service.NewTodoService(todoRepo, cfg.Todo.ListScope)

	deps := handler.RouterDeps{
		Auth: handler.NewAuthHandler(authService, handler.CookieOptions{
			Name:   cfg.Session.CookieName,
			MaxAge: int(cfg.Session.TTL() / time.Second),
			Secure: cfg.Session.Secure,
		}),
		Todos:         handler.NewTodoHandler(todoService, cfg.Todo.MaxPageSize),
		AuthRateLimit: time.Duration(cfg.AuthRateLimit) * time.Millisecond,
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/api",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
			middleware.LoadUser(authService, cfg.Session.CookieName),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logutil.GetLogger(context.Background()).Info("server stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
