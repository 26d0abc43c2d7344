package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reclaimhq/reclaim/internal/application/service"
	identityUC "github.com/reclaimhq/reclaim/internal/application/usecase/identity"
	"github.com/reclaimhq/reclaim/internal/domain/identity"
	"github.com/reclaimhq/reclaim/pkg/apperror"
	"github.com/reclaimhq/reclaim/pkg/logger"
)

type ProfileHandler struct {
	manager  *identityUC.Manager
	uploader service.Uploader
	logger   logger.Logger
}

func NewProfileHandler(mgr *identityUC.Manager, uploader service.Uploader, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{manager: mgr, uploader: uploader, logger: log}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	p := h.manager.Profile()
	if p == nil {
		c.Error(apperror.NewNotAuthenticated("no resolved identity"))
		return
	}
	c.JSON(http.StatusOK, ToProfileDTO(p))
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for profile update", err))
		return
	}

	patch, err := req.ToPatch()
	if err != nil {
		c.Error(err)
		return
	}

	p, err := h.manager.CompleteProfile(c.Request.Context(), patch)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProfileDTO(p))
}

// UploadPicture stores the image and records its reference through the
// normal profile update path.
func (h *ProfileHandler) UploadPicture(c *gin.Context) {
	p := h.manager.Profile()
	if p == nil {
		c.Error(apperror.NewNotAuthenticated("no resolved identity"))
		return
	}

	file, _, err := c.Request.FormFile("picture")
	if err != nil {
		c.Error(apperror.NewInvalidInput("picture file is required", err))
		return
	}
	defer file.Close()

	url, err := h.uploader.Upload(c.Request.Context(), file, "profile_pictures", p.ID.String())
	if err != nil {
		c.Error(apperror.NewTransient("could not upload picture", err))
		return
	}

	updated, err := h.manager.CompleteProfile(c.Request.Context(), identity.Patch{PictureRef: &url})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProfileDTO(updated))
}
