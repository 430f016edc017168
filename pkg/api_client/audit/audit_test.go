package audit_test

import (
	"context"
	"testing"

	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/audit"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/models"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    audit.Policy
		wantErr bool
	}{
		{"", audit.PolicyRequire, false},
		{"require", audit.PolicyRequire, false},
		{" System ", audit.PolicySystem, false},
		{"ANONYMOUS", audit.PolicyAnonymous, false},
		{"nobody", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := audit.ParsePolicy(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWithActor(t *testing.T) {
	ctx := context.Background()
	_, ok := audit.ActorFrom(ctx)
	assert.False(t, ok)

	assert.Equal(t, ctx, audit.WithActor(ctx, nil))

	admin := &models.Actor{ID: 7, Username: "admin"}
	got, ok := audit.ActorFrom(audit.WithActor(ctx, admin))
	require.True(t, ok)
	assert.Same(t, admin, got)
}

func TestRegister_SystemPolicyNeedsActor(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	err = audit.Register(db, audit.Config{Policy: audit.PolicySystem})
	assert.Error(t, err)
}

func TestStamping_AppliesToEveryAuditedEntity(t *testing.T) {
	clock := testutil.NewClock()
	db := testutil.NewDB(t, audit.PolicyRequire, clock)
	admin := testutil.CreateActor(t, db, "admin")
	editor := testutil.CreateActor(t, db, "editor")
	ctx := context.Background()

	badge := &models.Badge{Name: "gold"}
	require.NoError(t, db.WithContext(audit.WithActor(ctx, admin)).Create(badge).Error)
	assert.True(t, badge.CreatedAt.Equal(clock.Peek()))
	require.NotNil(t, badge.CreatedByID)
	assert.Equal(t, admin.ID, *badge.CreatedByID)
	assert.Nil(t, badge.UpdatedAt)

	require.NoError(t, db.WithContext(audit.WithActor(ctx, editor)).Model(badge).Updates(map[string]interface{}{"name": "platinum"}).Error)
	require.NotNil(t, badge.UpdatedAt)
	assert.True(t, badge.UpdatedAt.Equal(clock.Peek()))
	require.NotNil(t, badge.UpdatedByID)
	assert.Equal(t, editor.ID, *badge.UpdatedByID)

	var stored models.Badge
	require.NoError(t, db.First(&stored, badge.ID).Error)
	assert.Equal(t, "platinum", stored.Name)
	assert.Equal(t, admin.ID, *stored.CreatedByID)
	assert.Equal(t, editor.ID, *stored.UpdatedByID)
}

func TestStamping_CreatedFieldsCannotBeOverwritten(t *testing.T) {
	clock := testutil.NewClock()
	db := testutil.NewDB(t, audit.PolicyRequire, clock)
	admin := testutil.CreateActor(t, db, "admin")
	editor := testutil.CreateActor(t, db, "editor")
	ctx := context.Background()

	badge := &models.Badge{Name: "gold"}
	require.NoError(t, db.WithContext(audit.WithActor(ctx, admin)).Create(badge).Error)
	createdAt := badge.CreatedAt

	err := db.WithContext(audit.WithActor(ctx, editor)).Model(badge).Updates(map[string]interface{}{
		"name":          "silver",
		"created_by_id": editor.ID,
		"created_at":    createdAt.AddDate(1, 0, 0),
	}).Error
	require.NoError(t, err)

	var stored models.Badge
	require.NoError(t, db.First(&stored, badge.ID).Error)
	assert.Equal(t, "silver", stored.Name)
	assert.True(t, stored.CreatedAt.Equal(createdAt))
	assert.Equal(t, admin.ID, *stored.CreatedByID)
}

func TestSoftDelete_StampsDeletionWithUpdate(t *testing.T) {
	clock := testutil.NewClock()
	db := testutil.NewDB(t, audit.PolicyRequire, clock)
	admin := testutil.CreateActor(t, db, "admin")
	ctx := context.Background()

	badge := &models.Badge{Name: "gold"}
	require.NoError(t, db.WithContext(audit.WithActor(ctx, admin)).Create(badge).Error)
	require.NoError(t, audit.SoftDelete(db.WithContext(audit.WithActor(ctx, admin)), badge).Error)

	var stored models.Badge
	require.NoError(t, db.Unscoped().First(&stored, badge.ID).Error)
	assert.True(t, stored.IsDeleted())
	require.NotNil(t, stored.UpdatedAt)
	assert.True(t, stored.DeletedAt.Time.Equal(*stored.UpdatedAt))
	assert.Equal(t, admin.ID, *stored.DeletedByID)

	err := db.First(&models.Badge{}, badge.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
