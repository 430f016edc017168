// Package imageimport bulk-registers image files from a directory as the
// system actor.
package imageimport

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/h2non/filetype"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/models"
	"github.com/developer-overheid-nl/don-image-register/pkg/logging"
)

const DefaultConcurrency = 4

// Creator is satisfied by services.ImageService.
type Creator interface {
	CreateImage(ctx context.Context, actor *models.Actor, in *models.ImageInput) (*models.Image, error)
}

type Options struct {
	Dir         string
	DryRun      bool
	Concurrency int
	// Actor is stamped as creator, normally the system actor.
	Actor *models.Actor
}

type Result struct {
	Imported int
	Skipped  int
	Failed   int
}

// ImportDir registers every image file below opts.Dir. Files that are not
// images are skipped; files the register rejects count as failed and do not
// stop the import.
func ImportDir(ctx context.Context, creator Creator, opts Options) (Result, error) {
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		return Result{}, errors.New("import dir is empty")
	}
	if creator == nil && !opts.DryRun {
		return Result{}, errors.New("creator is nil")
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	var (
		mu     sync.Mutex
		result Result
	)
	count := func(field *int) {
		mu.Lock()
		*field++
		mu.Unlock()
	}

	sem := semaphore.NewWeighted(int64(concurrency))
	g, ctx := errgroup.WithContext(ctx)
	var acquireErr error
	for _, path := range paths {
		path := path
		if acquireErr = sem.Acquire(ctx, 1); acquireErr != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)

			in, ok, err := readImage(path)
			if err != nil {
				logging.Log.Warn().Err(err).Str("file", path).Msg("import: read failed")
				count(&result.Failed)
				return nil
			}
			if !ok {
				logging.Log.Debug().Str("file", path).Msg("import: not an image, skipped")
				count(&result.Skipped)
				return nil
			}

			if opts.DryRun {
				_, err = models.NewImage(in.Filename, in.Mime, in.Data)
			} else {
				var img *models.Image
				img, err = creator.CreateImage(ctx, opts.Actor, in)
				if err == nil {
					logging.Log.Info().Str("file", path).Str("hash", img.Hash).Msg("import: registered")
				}
			}
			if err != nil {
				logging.Log.Warn().Err(err).Str("file", path).Msg("import: rejected")
				count(&result.Failed)
				return nil
			}
			count(&result.Imported)
			return nil
		})
	}
	// workers still running write to result
	if err := g.Wait(); err != nil {
		return result, err
	}
	if acquireErr != nil {
		return result, acquireErr
	}

	logging.Log.Info().
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Bool("dry_run", opts.DryRun).
		Msg("import finished")
	return result, nil
}

// readImage sniffs the file content; the extension is not trusted.
func readImage(path string) (*models.ImageInput, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown || kind.MIME.Type != "image" {
		return nil, false, nil
	}
	return &models.ImageInput{
		Filename: filepath.Base(path),
		Mime:     kind.MIME.Value,
		Data:     data,
	}, true, nil
}
