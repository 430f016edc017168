package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/audit"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/models"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ImageRepository is the access layer for images. Mutations take the acting
// actor so the audit callbacks can stamp it.
type ImageRepository interface {
	Insert(ctx context.Context, actor *models.Actor, img *models.Image) error
	FindByHash(ctx context.Context, hash string, withDeleted bool) (*models.Image, error)
	List(ctx context.Context, page, perPage int) ([]models.Image, int, error)
	Update(ctx context.Context, actor *models.Actor, img *models.Image, changes map[string]interface{}) error
	SoftDelete(ctx context.Context, actor *models.Actor, img *models.Image) error
	BadgeIDs(ctx context.Context, imageID uint) ([]uint, error)
	ActivitySummary(ctx context.Context, since time.Time) ([]models.ActorActivity, error)
}

type imageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Insert(ctx context.Context, actor *models.Actor, img *models.Image) error {
	err := r.db.WithContext(audit.WithActor(ctx, actor)).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(img).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", models.ErrDuplicateIdentity, img.Hash)
		}
		return fmt.Errorf("insert image: %w", err)
	}
	return nil
}

func (r *imageRepository) FindByHash(ctx context.Context, hash string, withDeleted bool) (*models.Image, error) {
	q := r.db.WithContext(ctx).
		Preload("CreatedBy").
		Preload("UpdatedBy").
		Preload("DeletedBy")
	if withDeleted {
		q = q.Unscoped()
	}

	var img models.Image
	err := q.Where("hash = ?", hash).First(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: image %s", models.ErrNotFound, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("find image: %w", err)
	}
	return &img, nil
}

func (r *imageRepository) List(ctx context.Context, page, perPage int) ([]models.Image, int, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Image{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count images: %w", err)
	}

	var images []models.Image
	err := r.db.WithContext(ctx).
		Preload("CreatedBy").
		Preload("UpdatedBy").
		Order("created_at DESC").Order("id DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&images).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list images: %w", err)
	}
	return images, int(total), nil
}

// Update writes changes for a live image. Keys are column names; the audit
// callback rejects id and hash.
func (r *imageRepository) Update(ctx context.Context, actor *models.Actor, img *models.Image, changes map[string]interface{}) error {
	return r.db.WithContext(audit.WithActor(ctx, actor)).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(img).Omit(clause.Associations).Updates(changes)
		if res.Error != nil {
			return fmt.Errorf("update image: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: image %s", models.ErrNotFound, img.Hash)
		}
		return nil
	})
}

func (r *imageRepository) SoftDelete(ctx context.Context, actor *models.Actor, img *models.Image) error {
	return r.db.WithContext(audit.WithActor(ctx, actor)).Transaction(func(tx *gorm.DB) error {
		res := audit.SoftDelete(tx, img)
		if res.Error != nil {
			return fmt.Errorf("delete image: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: image %s", models.ErrNotFound, img.Hash)
		}
		return nil
	})
}

// BadgeIDs lists the live badges pointing at imageID.
func (r *imageRepository) BadgeIDs(ctx context.Context, imageID uint) ([]uint, error) {
	ids := []uint{}
	err := r.db.WithContext(ctx).
		Model(&models.Badge{}).
		Where("image_id = ?", imageID).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("badge ids: %w", err)
	}
	return ids, nil
}

// ActivitySummary counts, per actor, the images created, last updated and
// deleted since the given time. Soft deletes also stamp updated_*, so deleted
// rows only count as deletions.
func (r *imageRepository) ActivitySummary(ctx context.Context, since time.Time) ([]models.ActorActivity, error) {
	query := `
SELECT
    a.username AS username,
    (SELECT COUNT(*) FROM image i WHERE i.created_by_id = a.id AND i.created_at >= ?) AS created,
    (SELECT COUNT(*) FROM image i WHERE i.updated_by_id = a.id AND i.updated_at >= ? AND i.deleted_at IS NULL) AS updated,
    (SELECT COUNT(*) FROM image i WHERE i.deleted_by_id = a.id AND i.deleted_at >= ?) AS deleted
FROM actor a
ORDER BY a.username`

	var rows []models.ActorActivity
	since = since.UTC()
	if err := r.db.WithContext(ctx).Raw(query, since, since, since).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("activity summary query failed: %w", err)
	}

	out := make([]models.ActorActivity, 0, len(rows))
	for _, row := range rows {
		if row.Created+row.Updated+row.Deleted > 0 {
			out = append(out, row)
		}
	}
	return out, nil
}

// isUniqueViolation recognises unique index errors from both drivers. gorm
// only translates pgx errors, lib/pq reports SQLSTATE 23505 itself.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
