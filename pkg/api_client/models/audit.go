package models

import (
	"time"

	"gorm.io/gorm"
)

// Audit column names, shared by every audited table.
const (
	ColCreatedAt   = "created_at"
	ColCreatedByID = "created_by_id"
	ColUpdatedAt   = "updated_at"
	ColUpdatedByID = "updated_by_id"
	ColDeletedAt   = "deleted_at"
	ColDeletedByID = "deleted_by_id"
)

// Audit is the who/when trail of an entity. Embed it to make an entity
// Auditable; the fields are filled by the audit callbacks, never by hand.
type Audit struct {
	CreatedAt   time.Time      `gorm:"column:created_at;not null;autoCreateTime:false" json:"createdAt"`
	CreatedByID *uint          `gorm:"column:created_by_id;index" json:"-"`
	CreatedBy   *Actor         `gorm:"foreignKey:CreatedByID" json:"createdBy"`
	UpdatedAt   *time.Time     `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt"`
	UpdatedByID *uint          `gorm:"column:updated_by_id;index" json:"-"`
	UpdatedBy   *Actor         `gorm:"foreignKey:UpdatedByID" json:"updatedBy"`
	DeletedAt   gorm.DeletedAt `gorm:"column:deleted_at;index" json:"deletedAt,omitempty"`
	DeletedByID *uint          `gorm:"column:deleted_by_id;index" json:"-"`
	DeletedBy   *Actor         `gorm:"foreignKey:DeletedByID" json:"deletedBy,omitempty"`
}

// Auditable is implemented by every entity embedding Audit.
type Auditable interface {
	AuditTrail() *Audit
}

func (a *Audit) AuditTrail() *Audit { return a }

// StampCreated sets the creation pair and clears everything that only a
// later mutation may set.
func (a *Audit) StampCreated(actorID *uint, at time.Time) {
	a.CreatedAt = at
	a.CreatedByID = actorID
	a.CreatedBy = nil
	a.UpdatedAt = nil
	a.UpdatedByID = nil
	a.UpdatedBy = nil
	a.DeletedAt = gorm.DeletedAt{}
	a.DeletedByID = nil
	a.DeletedBy = nil
}

// IsDeleted reports whether the entity was soft deleted.
func (a *Audit) IsDeleted() bool { return a.DeletedAt.Valid }

// ImmutableColumns is implemented by entities with columns that may only be
// written on insert.
type ImmutableColumns interface {
	ImmutableColumns() []string
}
