package repositories_test

import (
	"context"
	"testing"

	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/audit"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/models"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/repositories"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorRepository_FindOrCreate(t *testing.T) {
	db := testutil.NewDB(t, audit.PolicyRequire, nil)
	repo := repositories.NewActorRepository(db)
	ctx := context.Background()

	first, err := repo.FindOrCreate(ctx, "editor")
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.False(t, first.System)

	second, err := repo.FindOrCreate(ctx, "editor")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var n int64
	require.NoError(t, db.Model(&models.Actor{}).Where("username = ?", "editor").Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestActorRepository_System(t *testing.T) {
	db := testutil.NewDB(t, audit.PolicyRequire, nil)
	repo := repositories.NewActorRepository(db)

	system, err := repo.System(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SystemActorName, system.Username)
	assert.True(t, system.System)
}

func TestBadgeRepository_CreateAndFind(t *testing.T) {
	clock := testutil.NewClock()
	db := testutil.NewDB(t, audit.PolicyRequire, clock)
	admin := testutil.CreateActor(t, db, "admin")
	repo := repositories.NewBadgeRepository(db)
	ctx := context.Background()

	badge := &models.Badge{Name: "gold"}
	require.NoError(t, repo.Create(ctx, admin, badge))

	got, err := repo.FindByID(ctx, badge.ID)
	require.NoError(t, err)
	assert.Equal(t, "gold", got.Name)
	assert.Nil(t, got.ImageID)
	assert.True(t, got.CreatedAt.Equal(clock.Peek()))
	require.NotNil(t, got.CreatedBy)
	assert.Equal(t, "admin", got.CreatedBy.Username)

	_, err = repo.FindByID(ctx, badge.ID+1)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
