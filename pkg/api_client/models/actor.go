package models

import "time"

// SystemActorName is the actor used for records created without a request,
// e.g. by the importer.
const SystemActorName = "system"

// Actor is the authenticated user or system process a mutation is attributed to.
type Actor struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	Username  string    `gorm:"column:username;type:varchar(255);not null;uniqueIndex:uq_actor_username" json:"username"`
	System    bool      `gorm:"column:system;not null;default:false" json:"system"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}
