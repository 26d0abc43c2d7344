package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	d := Defaults()

	assert.Equal(t, "en", d.Language)
	assert.Equal(t, ThemeModeSystem, d.ThemeMode)
	assert.Equal(t, FontMedium, d.FontSize)
	assert.Equal(t, DensityComfortable, d.Density)
	assert.Equal(t, RadiusMedium, d.BorderRadius)
	assert.Nil(t, d.AutoLogoutMinutes)
	assert.True(t, d.AllowCookies)
	assert.False(t, d.AllowAnalytics)
	assert.False(t, d.AllowMarketing)
}

func TestApply_PartialMerge(t *testing.T) {
	base := Defaults()
	lang := "hi"
	mode := ThemeModeDark

	next := base.Apply(Patch{Language: &lang, ThemeMode: &mode})

	assert.Equal(t, "hi", next.Language)
	assert.Equal(t, ThemeModeDark, next.ThemeMode)
	// untouched fields keep their value
	assert.Equal(t, FontMedium, next.FontSize)
	assert.Equal(t, DensityComfortable, next.Density)

	// the receiver is never mutated
	assert.Equal(t, "en", base.Language)
	assert.Equal(t, ThemeModeSystem, base.ThemeMode)
}

func TestApply_EmptyPatchIsIdentity(t *testing.T) {
	base := Defaults()
	assert.Equal(t, base, base.Apply(Patch{}))
}

func TestApply_CookieOptOutClearsDependentConsents(t *testing.T) {
	on := true
	off := false

	base := Defaults().Apply(Patch{AllowAnalytics: &on, AllowMarketing: &on})
	assert.True(t, base.AllowAnalytics)
	assert.True(t, base.AllowMarketing)

	next := base.Apply(Patch{AllowCookies: &off})
	assert.False(t, next.AllowCookies)
	assert.False(t, next.AllowAnalytics)
	assert.False(t, next.AllowMarketing)
}

func TestApply_AnalyticsCannotBeGrantedWithoutCookies(t *testing.T) {
	on := true
	off := false

	next := Defaults().Apply(Patch{AllowCookies: &off, AllowAnalytics: &on, AllowMarketing: &on})

	assert.False(t, next.AllowAnalytics)
	assert.False(t, next.AllowMarketing)
}

func TestApply_AutoLogoutTriState(t *testing.T) {
	thirty := 30

	base := Defaults().Apply(Patch{AutoLogout: &AutoLogout{Minutes: &thirty}})
	assert.NotNil(t, base.AutoLogoutMinutes)
	assert.Equal(t, 30, *base.AutoLogoutMinutes)

	// nil patch field leaves the timeout alone
	unchanged := base.Apply(Patch{})
	assert.NotNil(t, unchanged.AutoLogoutMinutes)

	// explicit wrapper with nil minutes disables
	disabled := base.Apply(Patch{AutoLogout: &AutoLogout{Minutes: nil}})
	assert.Nil(t, disabled.AutoLogoutMinutes)
}
