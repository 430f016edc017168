package models

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/identity"
)

const (
	MaxFilenameLength = 255
	MaxMimeLength     = 255
	MaxDataSize       = 65535
)

// Image is binary artwork attached to badges. It is looked up externally by
// Hash only; ID never leaves the service.
type Image struct {
	ID       uint    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	Hash     string  `gorm:"column:hash;type:varchar(255);not null;uniqueIndex:uq_hash" json:"hash"`
	Filename string  `gorm:"column:filename;type:varchar(255);not null" json:"filename"`
	Mime     string  `gorm:"column:mime;type:varchar(255);not null" json:"mime"`
	Data     []byte  `gorm:"column:data;not null" json:"-"`
	Badges   []Badge `gorm:"foreignKey:ImageID;constraint:OnDelete:SET NULL" json:"-"`
	Audit

	badgeIDs     []uint
	badgesLoaded bool
}

// BadgeLoader resolves the badges that point at an image.
type BadgeLoader interface {
	BadgeIDs(ctx context.Context, imageID uint) ([]uint, error)
}

// NewImage validates the creation request. The hash is assigned later, when
// the image is inserted.
func NewImage(filename, mime string, data []byte) (*Image, error) {
	img := &Image{}
	if err := img.SetFilename(filename); err != nil {
		return nil, err
	}
	if err := img.SetMime(mime); err != nil {
		return nil, err
	}
	if err := img.SetData(data); err != nil {
		return nil, err
	}
	return img, nil
}

func (i *Image) ImmutableColumns() []string { return []string{"id", "hash"} }

func (i *Image) SetFilename(filename string) error {
	if err := validateString("filename", filename, MaxFilenameLength); err != nil {
		return err
	}
	i.Filename = filename
	return nil
}

func (i *Image) SetMime(mime string) error {
	if err := validateString("mime", mime, MaxMimeLength); err != nil {
		return err
	}
	i.Mime = mime
	return nil
}

func (i *Image) SetData(data []byte) error {
	if len(data) == 0 {
		return &ValidationError{Field: "data", Constraint: "required"}
	}
	if len(data) > MaxDataSize {
		return &PayloadTooLargeError{Size: len(data), Max: MaxDataSize}
	}
	i.Data = data
	return nil
}

// SetHash assigns the public identity. It is only allowed before the image
// is persisted; the insert may call it again after a collision.
func (i *Image) SetHash(hash string) error {
	if i.ID != 0 {
		return &ImmutableFieldError{Field: "hash"}
	}
	if !identity.Valid(hash) {
		return &ValidationError{Field: "hash", Constraint: "must be a canonical UUID v4"}
	}
	i.Hash = hash
	return nil
}

// LoadBadges returns the ids of the badges linked to this image. The result
// is cached on the instance.
func (i *Image) LoadBadges(ctx context.Context, loader BadgeLoader) ([]uint, error) {
	if i.badgesLoaded {
		return i.badgeIDs, nil
	}
	ids, err := loader.BadgeIDs(ctx, i.ID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint{}
	}
	i.badgeIDs = ids
	i.badgesLoaded = true
	return ids, nil
}

func validateString(field, value string, max int) error {
	if value == "" {
		return &ValidationError{Field: field, Constraint: "required"}
	}
	if utf8.RuneCountInString(value) > max {
		return &ValidationError{Field: field, Constraint: fmt.Sprintf("must be at most %d characters", max)}
	}
	return nil
}
