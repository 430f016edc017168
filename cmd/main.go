package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/loopfz/gadgeto/tonic"

	api "github.com/developer-overheid-nl/don-image-register/pkg/api_client"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/database"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/handler"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/middleware"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/repositories"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/services"
	"github.com/developer-overheid-nl/don-image-register/pkg/config"
	"github.com/developer-overheid-nl/don-image-register/pkg/jobs"
	"github.com/developer-overheid-nl/don-image-register/pkg/logging"
)

func init() {
	tonic.SetErrorHook(handler.ErrorHook)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Log.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logging.New(cfg.Environment, cfg.LogLevel)

	db, err := database.FromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("database connection failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	imageRepo := repositories.NewImageRepository(db)
	imageService := services.NewImageService(imageRepo, nil, cfg.HashAttempts)
	badgeService := services.NewBadgeService(repositories.NewBadgeRepository(db), imageRepo)

	if _, err := jobs.ScheduleAuditReport(ctx, imageService, cfg.ReportSchedule); err != nil {
		log.Fatal().Err(err).Msg("scheduling audit report failed")
	}

	router := api.NewRouter(cfg.APIVersion, api.Controllers{
		Images: handler.NewImagesAPIController(imageService),
		Badges: handler.NewBadgesAPIController(badgeService),
		Auth:   middleware.NewAuthenticator(cfg.JWTSecret, repositories.NewActorRepository(db)),
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("audit_policy", string(cfg.AuditPolicy)).
		Msg("Server is running")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
