package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	identityUC "github.com/reclaimhq/reclaim/internal/application/usecase/identity"
	itemUC "github.com/reclaimhq/reclaim/internal/application/usecase/item"
	"github.com/reclaimhq/reclaim/internal/domain/identity"
	"github.com/reclaimhq/reclaim/internal/domain/item"
	"github.com/reclaimhq/reclaim/pkg/apperror"
	"github.com/reclaimhq/reclaim/pkg/logger"
)

type ItemHandler struct {
	items   *itemUC.ItemUseCase
	manager *identityUC.Manager
	logger  logger.Logger
}

func NewItemHandler(items *itemUC.ItemUseCase, mgr *identityUC.Manager, log logger.Logger) *ItemHandler {
	return &ItemHandler{items: items, manager: mgr, logger: log}
}

// organizationScope derives the listing scope from the caller's occupation.
// An incomplete profile has no organization and sees nothing.
func organizationScope(p *identity.UserProfile) (string, item.OrganizationType) {
	switch p.Occupation.(type) {
	case identity.SchoolStudent:
		return identity.Organization(p.Occupation), item.OrgSchool
	case identity.CollegeStudent:
		return identity.Organization(p.Occupation), item.OrgCollege
	case identity.Professional:
		return identity.Organization(p.Occupation), item.OrgCompany
	default:
		return "", ""
	}
}

func (h *ItemHandler) caller(c *gin.Context) (*identity.UserProfile, bool) {
	p := h.manager.Profile()
	if p == nil {
		c.Error(apperror.NewNotAuthenticated("no resolved identity"))
		return nil, false
	}
	return p, true
}

func (h *ItemHandler) imageFile(c *gin.Context) io.Reader {
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		return nil
	}
	return file
}

func (h *ItemHandler) ReportLost(c *gin.Context) {
	p, ok := h.caller(c)
	if !ok {
		return
	}
	org, orgType := organizationScope(p)
	if org == "" {
		c.Error(apperror.NewInvalidInput("complete your profile before reporting items", nil))
		return
	}

	in := itemUC.ReportLostInput{
		CreatedBy:        p.ID,
		Image:            h.imageFile(c),
		Category:         c.PostForm("category"),
		LostDate:         c.PostForm("lost_date"),
		Description:      c.PostForm("description"),
		PhoneNumber:      c.PostForm("phone_number"),
		Organization:     org,
		OrganizationType: orgType,
	}

	it, err := h.items.ReportLost(c.Request.Context(), in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToLostItemDTO(*it))
}

func (h *ItemHandler) ReportFound(c *gin.Context) {
	p, ok := h.caller(c)
	if !ok {
		return
	}
	org, orgType := organizationScope(p)
	if org == "" {
		c.Error(apperror.NewInvalidInput("complete your profile before reporting items", nil))
		return
	}

	in := itemUC.ReportFoundInput{
		CreatedBy:        p.ID,
		Image:            h.imageFile(c),
		Location:         c.PostForm("location"),
		Description:      c.PostForm("description"),
		Organization:     org,
		OrganizationType: orgType,
	}

	it, err := h.items.ReportFound(c.Request.Context(), in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToFoundItemDTO(*it))
}

func (h *ItemHandler) ListLost(c *gin.Context) {
	p, ok := h.caller(c)
	if !ok {
		return
	}
	f := item.Filter{}
	if c.Query("mine") == "true" {
		id := p.ID
		f.CreatedBy = &id
	} else {
		org, _ := organizationScope(p)
		f.Organization = org
	}

	items, err := h.items.ListLost(c.Request.Context(), f)
	if err != nil {
		c.Error(err)
		return
	}
	out := make([]LostItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, ToLostItemDTO(it))
	}
	c.JSON(http.StatusOK, out)
}

func (h *ItemHandler) ListFound(c *gin.Context) {
	p, ok := h.caller(c)
	if !ok {
		return
	}
	f := item.Filter{}
	if c.Query("mine") == "true" {
		id := p.ID
		f.CreatedBy = &id
	} else {
		org, _ := organizationScope(p)
		f.Organization = org
	}

	items, err := h.items.ListFound(c.Request.Context(), f)
	if err != nil {
		c.Error(err)
		return
	}
	out := make([]FoundItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, ToFoundItemDTO(it))
	}
	c.JSON(http.StatusOK, out)
}

func (h *ItemHandler) DeleteLost(c *gin.Context) {
	p, ok := h.caller(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid item id", err))
		return
	}
	if err := h.items.DeleteLost(c.Request.Context(), id, p.ID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ItemHandler) DeleteFound(c *gin.Context) {
	p, ok := h.caller(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid item id", err))
		return
	}
	if err := h.items.DeleteFound(c.Request.Context(), id, p.ID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
