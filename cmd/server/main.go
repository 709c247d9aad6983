package main // entry point of the recipe favorites API server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/recipe-favorites/internal/config"
	"github.com/iliyamo/recipe-favorites/internal/database"
	"github.com/iliyamo/recipe-favorites/internal/handler"
	"github.com/iliyamo/recipe-favorites/internal/logger"
	"github.com/iliyamo/recipe-favorites/internal/middleware"
	"github.com/iliyamo/recipe-favorites/internal/queue"
	"github.com/iliyamo/recipe-favorites/internal/recipeapi"
	"github.com/iliyamo/recipe-favorites/internal/repository"
	"github.com/iliyamo/recipe-favorites/internal/router"
	"github.com/iliyamo/recipe-favorites/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// the logger level is itself configuration, so use a default one here
		logger.New("info", "").Fatal().Err(err).Msg("invalid configuration")
	}
	log := *logger.New(cfg.LogLevel, cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proxy, err := recipeapi.New(cfg.RecipeAPIBaseURL, cfg.APIKey, &http.Client{Timeout: cfg.RecipeAPITimeout})
	if err != nil {
		log.Fatal().Err(err).Msg("recipe api client")
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("migrate database")
		}
	}

	rateLimit := middleware.NewTokenBucket(cfg.RateLimit, nil, log)
	if cfg.RateLimit.Enabled {
		rdb, err := config.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, rate limiting disabled")
		} else {
			defer rdb.Close()
			rateLimit = middleware.NewTokenBucket(cfg.RateLimit, rdb, log)
		}
	}

	publisher := queue.NewPublisher(cfg.RabbitMQURL, log)
	if cfg.RabbitMQURL == "" {
		log.Info().Msg("RABBITMQ_URL not set, favorite events disabled")
	}

	users := repository.NewUserRepo(db)
	favorites := repository.NewFavoriteRepo(db)
	authSvc := service.NewAuthService(users, cfg.JWTSecret, cfg.TokenTTL, cfg.BcryptCost)
	favSvc := service.NewFavoriteService(favorites, publisher, log)

	e := router.New(router.Deps{
		Auth:        handler.NewAuthHandler(authSvc, log),
		Recipes:     handler.NewRecipeHandler(proxy, log),
		Favorites:   handler.NewFavoriteHandler(favSvc, proxy, log),
		Reports:     handler.NewReportHandler(favSvc, log),
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   rateLimit,
		Log:         log,
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

