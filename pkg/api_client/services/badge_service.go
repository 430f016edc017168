package services

import (
	"context"

	util "github.com/developer-overheid-nl/don-image-register/pkg/api_client/helpers/util"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/identity"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/models"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/repositories"
)

// BadgeService owns the badge side of the badge-image link.
type BadgeService struct {
	badges repositories.BadgeRepository
	images repositories.ImageRepository
}

func NewBadgeService(badges repositories.BadgeRepository, images repositories.ImageRepository) *BadgeService {
	return &BadgeService{badges: badges, images: images}
}

func (s *BadgeService) CreateBadge(ctx context.Context, actor *models.Actor, in *models.BadgeInput) (*models.BadgeSummary, error) {
	badge := &models.Badge{}
	if err := badge.SetName(in.Name); err != nil {
		return nil, err
	}
	if !identity.Valid(in.ImageHash) {
		return nil, &models.ValidationError{Field: "imageHash", Constraint: "must reference an existing image"}
	}
	img, err := s.images.FindByHash(ctx, in.ImageHash, false)
	if err != nil {
		return nil, err
	}
	badge.ImageID = &img.ID

	if err := s.badges.Create(ctx, actor, badge); err != nil {
		return nil, err
	}
	stored, err := s.badges.FindByID(ctx, badge.ID)
	if err != nil {
		return nil, err
	}
	return util.ToBadgeSummary(stored, img.Hash), nil
}
