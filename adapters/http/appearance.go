package http

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	settingsUC "github.com/reclaimhq/reclaim/internal/application/usecase/settings"
)

// DocumentState is the presentation root the projector mutates: one theme
// flag plus independent named attributes, served back to the UI.
type DocumentState struct {
	mu    sync.Mutex
	theme settingsUC.Theme
	attrs map[string]string
}

func NewDocumentState() *DocumentState {
	return &DocumentState{
		theme: settingsUC.ThemeLight,
		attrs: map[string]string{},
	}
}

func (d *DocumentState) SetTheme(t settingsUC.Theme) {
	d.mu.Lock()
	d.theme = t
	d.mu.Unlock()
}

func (d *DocumentState) SetAttr(name, value string) {
	d.mu.Lock()
	d.attrs[name] = value
	d.mu.Unlock()
}

func (d *DocumentState) Snapshot() (settingsUC.Theme, map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	attrs := make(map[string]string, len(d.attrs))
	for k, v := range d.attrs {
		attrs[k] = v
	}
	return d.theme, attrs
}

// ColorSchemeRelay carries the OS color-scheme signal reported by the
// client device into the projector.
type ColorSchemeRelay struct {
	mu      sync.Mutex
	current settingsUC.Theme
	subs    map[int]func(settingsUC.Theme)
	nextSub int
}

func NewColorSchemeRelay(initial settingsUC.Theme) *ColorSchemeRelay {
	return &ColorSchemeRelay{
		current: initial,
		subs:    map[int]func(settingsUC.Theme){},
	}
}

func (r *ColorSchemeRelay) Current() settingsUC.Theme {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *ColorSchemeRelay) Subscribe(fn func(settingsUC.Theme)) func() {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

func (r *ColorSchemeRelay) Report(t settingsUC.Theme) {
	r.mu.Lock()
	r.current = t
	fns := make([]func(settingsUC.Theme), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.mu.Unlock()
	for _, fn := range fns {
		fn(t)
	}
}

type AppearanceHandler struct {
	doc   *DocumentState
	relay *ColorSchemeRelay
}

func NewAppearanceHandler(doc *DocumentState, relay *ColorSchemeRelay) *AppearanceHandler {
	return &AppearanceHandler{doc: doc, relay: relay}
}

func (h *AppearanceHandler) Get(c *gin.Context) {
	theme, attrs := h.doc.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"theme":      string(theme),
		"attributes": attrs,
	})
}

type reportSchemeRequest struct {
	Scheme string `json:"scheme" binding:"required,oneof=light dark"`
}

func (h *AppearanceHandler) ReportColorScheme(c *gin.Context) {
	var req reportSchemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	h.relay.Report(settingsUC.Theme(req.Scheme))
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}
