package settings

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reclaimhq/reclaim/internal/domain/settings"
	"github.com/reclaimhq/reclaim/pkg/logger"
)

type fakeScheme struct {
	mu      sync.Mutex
	current Theme
	subs    map[int]func(Theme)
	nextSub int
}

func newFakeScheme(initial Theme) *fakeScheme {
	return &fakeScheme{current: initial, subs: map[int]func(Theme){}}
}

func (f *fakeScheme) Current() Theme {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeScheme) Subscribe(fn func(Theme)) func() {
	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

func (f *fakeScheme) change(t Theme) {
	f.mu.Lock()
	f.current = t
	fns := make([]func(Theme), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(t)
	}
}

func (f *fakeScheme) subscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

type fakeRoot struct {
	mu    sync.Mutex
	theme Theme
	attrs map[string]string
}

func newFakeRoot() *fakeRoot {
	return &fakeRoot{attrs: map[string]string{}}
}

func (f *fakeRoot) SetTheme(t Theme) {
	f.mu.Lock()
	f.theme = t
	f.mu.Unlock()
}

func (f *fakeRoot) SetAttr(name, value string) {
	f.mu.Lock()
	f.attrs[name] = value
	f.mu.Unlock()
}

func (f *fakeRoot) currentTheme() Theme {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.theme
}

func (f *fakeRoot) attr(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attrs[name]
}

func newTestProjector(t *testing.T, osTheme Theme) (*Projector, *Synchronizer, *fakeScheme, *fakeRoot) {
	t.Helper()
	s := NewSynchronizer(newFakeSettingsRepo(), &fakeCache{}, logger.NewNop())
	s.SetIdentity(context.Background(), nil)
	scheme := newFakeScheme(osTheme)
	root := newFakeRoot()
	p := NewProjector(s, scheme, root)
	p.Start()
	t.Cleanup(p.Close)
	return p, s, scheme, root
}

func TestEffectiveTheme(t *testing.T) {
	cases := []struct {
		mode settings.ThemeMode
		os   Theme
		want Theme
	}{
		{settings.ThemeModeLight, ThemeDark, ThemeLight},
		{settings.ThemeModeDark, ThemeLight, ThemeDark},
		{settings.ThemeModeSystem, ThemeLight, ThemeLight},
		{settings.ThemeModeSystem, ThemeDark, ThemeDark},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EffectiveTheme(tc.mode, tc.os),
			"mode=%s os=%s", tc.mode, tc.os)
	}
}

func TestStart_ProjectsCurrentSettings(t *testing.T) {
	_, _, _, root := newTestProjector(t, ThemeDark)

	// defaults: system mode follows the OS signal
	assert.Equal(t, ThemeDark, root.currentTheme())
	assert.Equal(t, "en", root.attr("lang"))
	assert.Equal(t, "en", root.attr("data-language"))
	assert.Equal(t, "medium", root.attr("data-font-size"))
	assert.Equal(t, "comfortable", root.attr("data-density"))
	assert.Equal(t, "medium", root.attr("data-radius"))
}

func TestSettingsChangesReproject(t *testing.T) {
	_, s, _, root := newTestProjector(t, ThemeLight)

	lang := "hi"
	size := settings.FontLarge
	assert.NoError(t, s.Update(context.Background(), settings.Patch{Language: &lang, FontSize: &size}))

	assert.Equal(t, "hi", root.attr("lang"))
	assert.Equal(t, "hi", root.attr("data-language"))
	assert.Equal(t, "large", root.attr("data-font-size"))
}

func TestSystemMode_FollowsLiveSchemeChanges(t *testing.T) {
	_, _, scheme, root := newTestProjector(t, ThemeLight)

	assert.Equal(t, ThemeLight, root.currentTheme())
	assert.Equal(t, 1, scheme.subscriberCount())

	scheme.change(ThemeDark)
	assert.Equal(t, ThemeDark, root.currentTheme())

	scheme.change(ThemeLight)
	assert.Equal(t, ThemeLight, root.currentTheme())
}

func TestExplicitMode_DropsSchemeSubscription(t *testing.T) {
	_, s, scheme, root := newTestProjector(t, ThemeLight)
	assert.Equal(t, 1, scheme.subscriberCount())

	dark := settings.ThemeModeDark
	assert.NoError(t, s.Update(context.Background(), settings.Patch{ThemeMode: &dark}))

	assert.Equal(t, ThemeDark, root.currentTheme())
	assert.Zero(t, scheme.subscriberCount())

	// a late OS signal cannot touch an explicit mode
	scheme.change(ThemeLight)
	assert.Equal(t, ThemeDark, root.currentTheme())

	// returning to system mode resubscribes
	system := settings.ThemeModeSystem
	assert.NoError(t, s.Update(context.Background(), settings.Patch{ThemeMode: &system}))
	assert.Equal(t, 1, scheme.subscriberCount())
	assert.Equal(t, ThemeLight, root.currentTheme())
}

func TestToggleTheme_PinsConcreteMode(t *testing.T) {
	p, s, _, root := newTestProjector(t, ThemeDark)

	// system mode rendering dark; toggling pins light, not "system"
	assert.NoError(t, p.ToggleTheme(context.Background()))
	assert.Equal(t, settings.ThemeModeLight, s.Settings().ThemeMode)
	assert.Equal(t, ThemeLight, root.currentTheme())

	assert.NoError(t, p.ToggleTheme(context.Background()))
	assert.Equal(t, settings.ThemeModeDark, s.Settings().ThemeMode)
	assert.Equal(t, ThemeDark, root.currentTheme())
}

func TestClose_StopsProjection(t *testing.T) {
	p, s, scheme, root := newTestProjector(t, ThemeLight)

	p.Close()
	assert.Zero(t, scheme.subscriberCount())

	dark := settings.ThemeModeDark
	assert.NoError(t, s.Update(context.Background(), settings.Patch{ThemeMode: &dark}))
	assert.Equal(t, ThemeLight, root.currentTheme())
}
