package models

import "time"

type ImageInput struct {
	Filename string `json:"filename" binding:"required"`
	Mime     string `json:"mime" binding:"required"`
	Data     []byte `json:"data" binding:"required"`
}

type ImageUpdateInput struct {
	Hash     string  `path:"hash" json:"-"`
	Filename *string `json:"filename,omitempty"`
	Mime     *string `json:"mime,omitempty"`
	Data     []byte  `json:"data,omitempty"`
}

type ImageParams struct {
	Hash        string `path:"hash"`
	WithDeleted bool   `query:"withDeleted"`
}

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

type ListImagesParams struct {
	Page    int    `query:"page"`
	PerPage int    `query:"perPage"`
	BaseURL string // not from query, set in handler
}

// Normalize clamps paging to page >= 1 and 1..MaxPerPage items.
func (p *ListImagesParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
}

type BadgeInput struct {
	Name      string `json:"name" binding:"required"`
	ImageHash string `json:"imageHash" binding:"required"`
}

type ActivityParams struct {
	Since string `query:"since"`
}

type Pagination struct {
	Next           *int `json:"next,omitempty"`
	Previous       *int `json:"previous,omitempty"`
	CurrentPage    int  `json:"currentPage"`
	RecordsPerPage int  `json:"recordsPerPage"`
	TotalPages     int  `json:"totalPages"`
	TotalRecords   int  `json:"totalRecords"`
}

// Link representeert een hypermedia-link
type Link struct {
	Href string `json:"href"`
}

type Links struct {
	Self   *Link `json:"self,omitempty"`
	Data   *Link `json:"data,omitempty"`
	Badges *Link `json:"badges,omitempty"`
}

type ActorSummary struct {
	Username string `json:"username"`
	System   bool   `json:"system,omitempty"`
}

// ImageDetail is de externe view van een image; data is served separately.
type ImageDetail struct {
	Hash      string        `json:"hash"`
	Filename  string        `json:"filename"`
	Mime      string        `json:"mime"`
	Size      int           `json:"size"`
	CreatedAt time.Time     `json:"createdAt"`
	CreatedBy *ActorSummary `json:"createdBy"`
	UpdatedAt *time.Time    `json:"updatedAt"`
	UpdatedBy *ActorSummary `json:"updatedBy"`
	DeletedAt *time.Time    `json:"deletedAt,omitempty"`
	DeletedBy *ActorSummary `json:"deletedBy,omitempty"`
	Links     *Links        `json:"_links,omitempty"`
}

type ImageBadges struct {
	Hash   string `json:"hash"`
	Badges []uint `json:"badges"`
}

type BadgeSummary struct {
	ID        uint          `json:"id"`
	Name      string        `json:"name"`
	ImageHash string        `json:"imageHash"`
	CreatedAt time.Time     `json:"createdAt"`
	CreatedBy *ActorSummary `json:"createdBy"`
}

// ActorActivity counts the audited image mutations of one actor.
type ActorActivity struct {
	Username string `json:"username"`
	Created  int    `json:"created"`
	Updated  int    `json:"updated"`
	Deleted  int    `json:"deleted"`
}
