package settings

import (
	"context"
	"sync"

	"github.com/reclaimhq/reclaim/internal/domain/settings"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ColorSchemeSource is the OS-level color-scheme signal.
type ColorSchemeSource interface {
	Current() Theme
	Subscribe(fn func(Theme)) (unsubscribe func())
}

// Root is the presentation root the projector mutates. Theme and the
// named attributes are independent side effects.
type Root interface {
	SetTheme(Theme)
	SetAttr(name, value string)
}

// EffectiveTheme derives the concrete rendering theme from the tri-state
// mode and the OS signal.
func EffectiveTheme(mode settings.ThemeMode, osTheme Theme) Theme {
	if mode == settings.ThemeModeSystem {
		return osTheme
	}
	if mode == settings.ThemeModeDark {
		return ThemeDark
	}
	return ThemeLight
}

// Projector applies resolved settings to the presentation root. It holds
// an OS color-scheme subscription only while the mode is "system", so a
// stale callback can never mutate state after the mode has moved on.
type Projector struct {
	sync   *Synchronizer
	scheme ColorSchemeSource
	root   Root

	mu           sync.Mutex
	mode         settings.ThemeMode
	unsubScheme  func()
	unsubChanges func()
}

func NewProjector(s *Synchronizer, scheme ColorSchemeSource, root Root) *Projector {
	return &Projector{
		sync:   s,
		scheme: scheme,
		root:   root,
		mode:   settings.ThemeModeSystem,
	}
}

func (p *Projector) Start() {
	p.unsubChanges = p.sync.OnChange(p.apply)
	p.apply(p.sync.Settings())
}

func (p *Projector) Close() {
	if p.unsubChanges != nil {
		p.unsubChanges()
	}
	p.mu.Lock()
	if p.unsubScheme != nil {
		p.unsubScheme()
		p.unsubScheme = nil
	}
	p.mu.Unlock()
}

func (p *Projector) apply(s settings.Settings) {
	p.mu.Lock()
	p.mode = s.ThemeMode
	if s.ThemeMode == settings.ThemeModeSystem {
		if p.unsubScheme == nil {
			p.unsubScheme = p.scheme.Subscribe(p.onSchemeChange)
		}
	} else if p.unsubScheme != nil {
		p.unsubScheme()
		p.unsubScheme = nil
	}
	p.mu.Unlock()

	p.root.SetTheme(EffectiveTheme(s.ThemeMode, p.scheme.Current()))
	p.root.SetAttr("lang", s.Language)
	p.root.SetAttr("data-language", s.Language)
	p.root.SetAttr("data-font-size", string(s.FontSize))
	p.root.SetAttr("data-density", string(s.Density))
	p.root.SetAttr("data-radius", string(s.BorderRadius))
}

func (p *Projector) onSchemeChange(osTheme Theme) {
	p.mu.Lock()
	mode := p.mode
	p.mu.Unlock()
	if mode != settings.ThemeModeSystem {
		return
	}
	p.root.SetTheme(EffectiveTheme(mode, osTheme))
}

// Theme reports the current effective theme.
func (p *Projector) Theme() Theme {
	p.mu.Lock()
	mode := p.mode
	p.mu.Unlock()
	return EffectiveTheme(mode, p.scheme.Current())
}

// ToggleTheme flips the effective theme and pins the concrete result as
// the stored mode, even when the mode was "system". Goes through the
// normal update path so the change is cached and persisted.
func (p *Projector) ToggleTheme(ctx context.Context) error {
	next := settings.ThemeModeDark
	if p.Theme() == ThemeDark {
		next = settings.ThemeModeLight
	}
	return p.sync.Update(ctx, settings.Patch{ThemeMode: &next})
}
