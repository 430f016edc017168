package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ActorRepository interface {
	FindOrCreate(ctx context.Context, username string) (*models.Actor, error)
	System(ctx context.Context) (*models.Actor, error)
}

type actorRepository struct {
	db *gorm.DB
}

func NewActorRepository(db *gorm.DB) ActorRepository {
	return &actorRepository{db: db}
}

// FindOrCreate returns the actor for username, registering it on first sight.
func (r *actorRepository) FindOrCreate(ctx context.Context, username string) (*models.Actor, error) {
	actor := models.Actor{Username: username}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "username"}}, DoNothing: true}).
		Create(&actor).Error
	if err != nil {
		return nil, fmt.Errorf("register actor: %w", err)
	}
	return r.byUsername(ctx, username)
}

func (r *actorRepository) System(ctx context.Context) (*models.Actor, error) {
	return r.byUsername(ctx, models.SystemActorName)
}

func (r *actorRepository) byUsername(ctx context.Context, username string) (*models.Actor, error) {
	var actor models.Actor
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&actor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: actor %s", models.ErrNotFound, username)
	}
	if err != nil {
		return nil, fmt.Errorf("find actor: %w", err)
	}
	return &actor, nil
}
