package handler

import (
	"mime"
	"net/http"
	"time"

	problem "github.com/developer-overheid-nl/don-image-register/pkg/api_client/helpers/problem"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/helpers/util"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/middleware"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/models"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/services"
	"github.com/gin-gonic/gin"
)

// ImagesAPIController binds HTTP requests to the ImageService
type ImagesAPIController struct {
	Service *services.ImageService
}

// NewImagesAPIController creates a new controller
func NewImagesAPIController(s *services.ImageService) *ImagesAPIController {
	return &ImagesAPIController{Service: s}
}

// ListImages handles GET /images
func (c *ImagesAPIController) ListImages(ctx *gin.Context, p *models.ListImagesParams) ([]models.ImageDetail, error) {
	p.BaseURL = ctx.FullPath()
	images, pagination, err := c.Service.ListImages(ctx.Request.Context(), p)
	if err != nil {
		return nil, err
	}
	util.SetPaginationHeaders(ctx.Request, ctx.Header, pagination)

	return images, nil
}

// CreateImage handles POST /images
func (c *ImagesAPIController) CreateImage(ctx *gin.Context, body *models.ImageInput) (*models.ImageDetail, error) {
	img, err := c.Service.CreateImage(ctx.Request.Context(), middleware.CurrentActor(ctx), body)
	if err != nil {
		return nil, err
	}
	ctx.Header("Location", "/v1/images/"+img.Hash)
	return util.ToImageDetail(img), nil
}

// RetrieveImage handles GET /images/:hash
func (c *ImagesAPIController) RetrieveImage(ctx *gin.Context, params *models.ImageParams) (*models.ImageDetail, error) {
	img, err := c.Service.RetrieveImage(ctx.Request.Context(), params.Hash, params.WithDeleted)
	if err != nil {
		return nil, err
	}
	return util.ToImageDetail(img), nil
}

// RetrieveImageData handles GET /images/:hash/data and streams the stored
// bytes with the declared mime type.
func (c *ImagesAPIController) RetrieveImageData(ctx *gin.Context) {
	img, err := c.Service.RetrieveImage(ctx.Request.Context(), ctx.Param("hash"), false)
	if err != nil {
		status, body := ErrorHook(ctx, err)
		ctx.AbortWithStatusJSON(status, body)
		return
	}
	ctx.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": img.Filename}))
	ctx.Data(http.StatusOK, img.Mime, img.Data)
}

// UpdateImage handles PATCH /images/:hash
func (c *ImagesAPIController) UpdateImage(ctx *gin.Context, body *models.ImageUpdateInput) (*models.ImageDetail, error) {
	img, err := c.Service.UpdateImage(ctx.Request.Context(), middleware.CurrentActor(ctx), body.Hash, body)
	if err != nil {
		return nil, err
	}
	return util.ToImageDetail(img), nil
}

// DeleteImage handles DELETE /images/:hash
func (c *ImagesAPIController) DeleteImage(ctx *gin.Context, params *models.ImageParams) error {
	return c.Service.DeleteImage(ctx.Request.Context(), middleware.CurrentActor(ctx), params.Hash)
}

// ListImageBadges handles GET /images/:hash/badges
func (c *ImagesAPIController) ListImageBadges(ctx *gin.Context, params *models.ImageParams) (*models.ImageBadges, error) {
	ids, err := c.Service.ImageBadges(ctx.Request.Context(), params.Hash)
	if err != nil {
		return nil, err
	}
	return &models.ImageBadges{Hash: params.Hash, Badges: ids}, nil
}

// ActivitySummary handles GET /audit/images
func (c *ImagesAPIController) ActivitySummary(ctx *gin.Context, params *models.ActivityParams) ([]models.ActorActivity, error) {
	since, err := util.ParseSince(params.Since, time.Now().UTC())
	if err != nil {
		return nil, problem.NewBadRequest("Invalid query", problem.InvalidParam{
			Name:   "since",
			Reason: "moet een RFC 3339 tijdstip zijn",
		})
	}
	return c.Service.ActivitySummary(ctx.Request.Context(), since)
}
