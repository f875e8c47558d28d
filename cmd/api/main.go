package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-blog-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/content"
	contentrepo "github.com/ovaphlow/pitchfork/service-blog-go/internal/content/repo"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/session"
	sessionrepo "github.com/ovaphlow/pitchfork/service-blog-go/internal/session/repo"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-blog-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-blog-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-blog-go/pkg/utilities"
)

func main() {
	// best-effort: without a .env the real environment and defaults apply
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	lg, err := utilities.InitLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()
	sugar := lg.Sugar()

	if err := run(cfg, sugar); err != nil {
		sugar.Errorw("service stopped", "error", err)
		lg.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, sugar *zap.SugaredLogger) error {
	sugar.Infow("starting service-blog-go", "env", cfg.Env, "store", cfg.StoreDriver, "sessions", cfg.SessionStore())
	if cfg.Session.Secret == config.DefaultSessionSecret {
		sugar.Warn("SESSION_SECRET is not set; using the development default")
	}

	newID, err := utilities.NewIDGenerator(cfg.IDs.Strategy, cfg.IDs.SnowflakeNode)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		db       *sqlx.DB
		store    contentrepo.Store
		users    userrepo.Repo
		sessions sessionrepo.Repo
	)
	if cfg.UsesDatabase() {
		db, err = database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer db.Close()

		sqlStore := contentrepo.NewSQLStore(db, newID)
		userRepo := userrepo.NewUserRepo(db)
		if err := sqlStore.EnsureTables(ctx); err != nil {
			return err
		}
		if err := userRepo.EnsureTable(ctx); err != nil {
			return err
		}
		store, users = sqlStore, userRepo
	} else {
		sugar.Warn("STORE_DRIVER=memory: content and users are lost on restart")
		store, users = contentrepo.NewMemoryStore(newID), userrepo.NewMemoryRepo()
	}

	switch cfg.SessionStore() {
	case "sql":
		r := sessionrepo.NewSQLRepo(db)
		if err := r.EnsureTable(ctx); err != nil {
			return err
		}
		sessions = r
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Session.RedisAddr, DB: cfg.Session.RedisDB})
		defer client.Close()
		r := sessionrepo.NewRedisRepo(client)
		if err := r.Ping(ctx); err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		sessions = r
	default:
		sessions = sessionrepo.NewMemoryRepo()
	}

	manager := session.NewManager(sessions, session.NewTokenCodec(cfg.Session.Secret), session.Options{
		CookieName: cfg.Session.CookieName,
		MaxAge:     cfg.Session.MaxAge,
		Secure:     cfg.Production(),
	}, sugar)
	if n, err := manager.PurgeExpired(ctx); err != nil {
		sugar.Warnw("purge expired sessions", "error", err)
	} else if n > 0 {
		sugar.Infow("purged expired sessions", "count", n)
	}

	contentSvc := content.NewService(store, sugar)
	userSvc := user.NewUserService(users, user.BcryptHasher{Cost: cfg.Auth.BcryptCost}, newID, user.Policy{
		MinUsernameLen: cfg.Auth.MinUsernameLen,
		MinPasswordLen: cfg.Auth.MinPasswordLen,
	}, sugar)
	authSvc := auth.NewService(userSvc, manager, sugar)

	handler := router.RegisterRoutes(router.Deps{
		Logger:         sugar,
		Content:        content.NewHandler(contentSvc, sugar, cfg.Server.MaxBodyBytes),
		Auth:           auth.NewHandler(authSvc, sugar, cfg.Server.MaxBodyBytes),
		Metrics:        metrics.New(),
		Health:         contentSvc.Ping,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		TrustProxy:     cfg.Server.TrustProxy,
		RequestTimeout: cfg.Database.Timeout,
	})
	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	}

	sugar.Info("shutting down")
	doneCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnw("http server shutdown failed", "error", err)
	}
	sugar.Info("goodbye")
	return nil
}
