package util

import (
	"fmt"
	"time"

	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/models"
)

func ToActorSummary(actor *models.Actor) *models.ActorSummary {
	if actor == nil {
		return nil
	}
	return &models.ActorSummary{Username: actor.Username, System: actor.System}
}

func ToImageDetail(img *models.Image) *models.ImageDetail {
	detail := &models.ImageDetail{
		Hash:      img.Hash,
		Filename:  img.Filename,
		Mime:      img.Mime,
		Size:      len(img.Data),
		CreatedAt: img.CreatedAt,
		CreatedBy: ToActorSummary(img.CreatedBy),
		UpdatedAt: img.UpdatedAt,
		UpdatedBy: ToActorSummary(img.UpdatedBy),
		Links: &models.Links{
			Self:   &models.Link{Href: fmt.Sprintf("/v1/images/%s", img.Hash)},
			Data:   &models.Link{Href: fmt.Sprintf("/v1/images/%s/data", img.Hash)},
			Badges: &models.Link{Href: fmt.Sprintf("/v1/images/%s/badges", img.Hash)},
		},
	}
	if img.DeletedAt.Valid {
		deletedAt := img.DeletedAt.Time
		detail.DeletedAt = &deletedAt
		detail.DeletedBy = ToActorSummary(img.DeletedBy)
	}
	return detail
}

func ToBadgeSummary(badge *models.Badge, imageHash string) *models.BadgeSummary {
	return &models.BadgeSummary{
		ID:        badge.ID,
		Name:      badge.Name,
		ImageHash: imageHash,
		CreatedAt: badge.CreatedAt,
		CreatedBy: ToActorSummary(badge.CreatedBy),
	}
}

// ParseSince accepts an RFC 3339 timestamp; empty means the last 24 hours.
func ParseSince(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return now.Add(-24 * time.Hour), nil
	}
	return time.Parse(time.RFC3339, raw)
}
