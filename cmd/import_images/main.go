package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/database"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/repositories"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/services"
	"github.com/developer-overheid-nl/don-image-register/pkg/config"
	"github.com/developer-overheid-nl/don-image-register/pkg/imageimport"
	"github.com/developer-overheid-nl/don-image-register/pkg/logging"
)

func main() {
	dir := flag.String("dir", "images", "directory with image files to register")
	dryRun := flag.Bool("dry-run", false, "detect and validate without writing to the database")
	concurrency := flag.Int("concurrency", imageimport.DefaultConcurrency, "number of files processed in parallel")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		logging.Log.Debug().Err(err).Msg(".env not loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Log.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logging.New(cfg.Environment, cfg.LogLevel)
	ctx := context.Background()

	opts := imageimport.Options{
		Dir:         *dir,
		DryRun:      *dryRun,
		Concurrency: *concurrency,
	}

	var creator imageimport.Creator
	if !*dryRun {
		db, err := database.FromConfig(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}
		system, err := repositories.NewActorRepository(db).System(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("system actor unavailable")
		}
		opts.Actor = system
		creator = services.NewImageService(repositories.NewImageRepository(db), nil, cfg.HashAttempts)
	}

	result, err := imageimport.ImportDir(ctx, creator, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}
	if result.Failed > 0 {
		os.Exit(1)
	}
}
