package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	settingsUC "github.com/reclaimhq/reclaim/internal/application/usecase/settings"
	"github.com/reclaimhq/reclaim/pkg/apperror"
	"github.com/reclaimhq/reclaim/pkg/i18n"
	"github.com/reclaimhq/reclaim/pkg/logger"
)

type SettingsHandler struct {
	sync       *settingsUC.Synchronizer
	projector  *settingsUC.Projector
	translator *i18n.Translator
	logger     logger.Logger
}

func NewSettingsHandler(sync *settingsUC.Synchronizer, projector *settingsUC.Projector, translator *i18n.Translator, log logger.Logger) *SettingsHandler {
	return &SettingsHandler{sync: sync, projector: projector, translator: translator, logger: log}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"settings": h.sync.Settings(),
		"loading":  h.sync.Loading(),
	})
}

// Update applies the patch locally and pushes it to the directory.
// A transient push failure is reported as saved=false while the local
// value stays in effect, so the client keeps what it sees.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for settings update", err))
		return
	}

	err := h.sync.Update(c.Request.Context(), req.ToPatch())
	if err != nil {
		if errors.Is(err, apperror.ErrTransient) {
			lang := h.sync.Settings().Language
			c.JSON(http.StatusOK, gin.H{
				"saved":    false,
				"settings": h.sync.Settings(),
				"message":  h.translator.T(lang, "settings.save_failed"),
			})
			return
		}
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"saved":    true,
		"settings": h.sync.Settings(),
	})
}

func (h *SettingsHandler) ToggleTheme(c *gin.Context) {
	err := h.projector.ToggleTheme(c.Request.Context())
	if err != nil && !errors.Is(err, apperror.ErrTransient) {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"theme":    h.projector.Theme(),
		"settings": h.sync.Settings(),
	})
}
