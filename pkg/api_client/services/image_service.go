package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	util "github.com/developer-overheid-nl/don-image-register/pkg/api_client/helpers/util"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/identity"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/models"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/repositories"
	"github.com/developer-overheid-nl/don-image-register/pkg/logging"
)

const DefaultHashAttempts = 3

// ImageService implements the image use cases on top of an ImageRepository.
type ImageService struct {
	repo        repositories.ImageRepository
	hashes      identity.Generator
	maxAttempts int
}

// NewImageService builds the service. A nil generator uses UUID v4 and
// maxAttempts < 1 falls back to DefaultHashAttempts.
func NewImageService(repo repositories.ImageRepository, hashes identity.Generator, maxAttempts int) *ImageService {
	if hashes == nil {
		hashes = identity.UUIDv4{}
	}
	if maxAttempts < 1 {
		maxAttempts = DefaultHashAttempts
	}
	return &ImageService{repo: repo, hashes: hashes, maxAttempts: maxAttempts}
}

// CreateImage validates the input, assigns a fresh hash and inserts the
// image. A hash collision is retried with a new hash up to maxAttempts.
func (s *ImageService) CreateImage(ctx context.Context, actor *models.Actor, in *models.ImageInput) (*models.Image, error) {
	img, err := models.NewImage(in.Filename, in.Mime, in.Data)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		hash, err := s.hashes.NewHash()
		if err != nil {
			return nil, fmt.Errorf("generate hash: %w", err)
		}
		if err := img.SetHash(hash); err != nil {
			return nil, err
		}

		err = s.repo.Insert(ctx, actor, img)
		if err == nil {
			break
		}
		if !errors.Is(err, models.ErrDuplicateIdentity) {
			return nil, err
		}
		if attempt >= s.maxAttempts {
			logging.Log.Error().Err(err).Int("attempts", attempt).Msg("giving up on hash generation")
			return nil, err
		}
		logging.Log.Warn().Str("hash", hash).Int("attempt", attempt).Msg("hash collision, retrying with a new hash")
	}

	logging.Log.Info().Str("hash", img.Hash).Str("actor", actorName(actor)).Int("size", len(img.Data)).Msg("image created")
	return s.repo.FindByHash(ctx, img.Hash, false)
}

// RetrieveImage looks an image up by its public hash.
func (s *ImageService) RetrieveImage(ctx context.Context, hash string, withDeleted bool) (*models.Image, error) {
	if !identity.Valid(hash) {
		return nil, fmt.Errorf("%w: image %s", models.ErrNotFound, hash)
	}
	return s.repo.FindByHash(ctx, hash, withDeleted)
}

// ImageBadges returns the ids of the live badges linked to the image.
func (s *ImageService) ImageBadges(ctx context.Context, hash string) ([]uint, error) {
	img, err := s.RetrieveImage(ctx, hash, false)
	if err != nil {
		return nil, err
	}
	return img.LoadBadges(ctx, s.repo)
}

// UpdateImage applies field corrections. The hash can not be changed.
func (s *ImageService) UpdateImage(ctx context.Context, actor *models.Actor, hash string, in *models.ImageUpdateInput) (*models.Image, error) {
	img, err := s.RetrieveImage(ctx, hash, false)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if in.Filename != nil {
		if err := img.SetFilename(*in.Filename); err != nil {
			return nil, err
		}
		changes["filename"] = img.Filename
	}
	if in.Mime != nil {
		if err := img.SetMime(*in.Mime); err != nil {
			return nil, err
		}
		changes["mime"] = img.Mime
	}
	if in.Data != nil {
		if err := img.SetData(in.Data); err != nil {
			return nil, err
		}
		changes["data"] = img.Data
	}
	if len(changes) == 0 {
		return nil, &models.ValidationError{Field: "body", Constraint: "at least one of filename, mime or data is required"}
	}

	if err := s.repo.Update(ctx, actor, img, changes); err != nil {
		return nil, err
	}
	logging.Log.Info().Str("hash", hash).Str("actor", actorName(actor)).Msg("image updated")
	return s.repo.FindByHash(ctx, hash, false)
}

// DeleteImage soft deletes the image; it stays retrievable with withDeleted.
func (s *ImageService) DeleteImage(ctx context.Context, actor *models.Actor, hash string) error {
	img, err := s.RetrieveImage(ctx, hash, false)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, actor, img); err != nil {
		return err
	}
	logging.Log.Info().Str("hash", hash).Str("actor", actorName(actor)).Msg("image deleted")
	return nil
}

func (s *ImageService) ListImages(ctx context.Context, p *models.ListImagesParams) ([]models.ImageDetail, models.Pagination, error) {
	p.Normalize()
	images, total, err := s.repo.List(ctx, p.Page, p.PerPage)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	dtos := make([]models.ImageDetail, len(images))
	for i := range images {
		dtos[i] = *util.ToImageDetail(&images[i])
	}
	return dtos, util.NewPagination(p.Page, p.PerPage, total), nil
}

// ActivitySummary reports per actor how many images were created, updated
// and deleted since the given time.
func (s *ImageService) ActivitySummary(ctx context.Context, since time.Time) ([]models.ActorActivity, error) {
	return s.repo.ActivitySummary(ctx, since)
}

func actorName(actor *models.Actor) string {
	if actor == nil {
		return ""
	}
	return actor.Username
}
