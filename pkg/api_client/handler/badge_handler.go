package handler

import (
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/middleware"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/models"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/services"
	"github.com/gin-gonic/gin"
)

// BadgesAPIController binds HTTP requests to the BadgeService
type BadgesAPIController struct {
	Service *services.BadgeService
}

func NewBadgesAPIController(s *services.BadgeService) *BadgesAPIController {
	return &BadgesAPIController{Service: s}
}

// CreateBadge handles POST /badges
func (c *BadgesAPIController) CreateBadge(ctx *gin.Context, body *models.BadgeInput) (*models.BadgeSummary, error) {
	return c.Service.CreateBadge(ctx.Request.Context(), middleware.CurrentActor(ctx), body)
}
