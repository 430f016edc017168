package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/audit"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeRepository interface {
	Create(ctx context.Context, actor *models.Actor, badge *models.Badge) error
	FindByID(ctx context.Context, id uint) (*models.Badge, error)
}

type badgeRepository struct {
	db *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

func (r *badgeRepository) Create(ctx context.Context, actor *models.Actor, badge *models.Badge) error {
	return r.db.WithContext(audit.WithActor(ctx, actor)).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(badge).Error; err != nil {
			return fmt.Errorf("insert badge: %w", err)
		}
		return nil
	})
}

func (r *badgeRepository) FindByID(ctx context.Context, id uint) (*models.Badge, error) {
	var badge models.Badge
	err := r.db.WithContext(ctx).Preload("CreatedBy").First(&badge, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: badge %d", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find badge: %w", err)
	}
	return &badge, nil
}
