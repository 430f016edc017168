package models

import (
	"fmt"
	"unicode/utf8"
)

const MaxBadgeNameLength = 255

// Badge owns its link to an Image. Only the fields needed for that link are
// modelled here.
type Badge struct {
	ID      uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name    string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	ImageID *uint  `gorm:"column:image_id;index" json:"-"`
	Image   *Image `gorm:"foreignKey:ImageID" json:"-"`
	Audit
}

func (b *Badge) SetName(name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Constraint: "required"}
	}
	if utf8.RuneCountInString(name) > MaxBadgeNameLength {
		return &ValidationError{Field: "name", Constraint: fmt.Sprintf("must be at most %d characters", MaxBadgeNameLength)}
	}
	b.Name = name
	return nil
}
