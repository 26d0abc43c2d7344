package settings

import (
	"context"

	"github.com/google/uuid"
)

type ThemeMode string

const (
	ThemeModeLight  ThemeMode = "light"
	ThemeModeDark   ThemeMode = "dark"
	ThemeModeSystem ThemeMode = "system"
)

type FontSize string

const (
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"
)

type Density string

const (
	DensityComfortable Density = "comfortable"
	DensityCompact     Density = "compact"
)

type BorderRadius string

const (
	RadiusNone   BorderRadius = "none"
	RadiusSmall  BorderRadius = "small"
	RadiusMedium BorderRadius = "medium"
	RadiusLarge  BorderRadius = "large"
)

// Settings is the fixed-shape preference record for one identity. Every
// field is always present; partial updates go through Patch.
type Settings struct {
	Language          string       `json:"language"`
	ThemeMode         ThemeMode    `json:"theme_mode"`
	FontSize          FontSize     `json:"font_size"`
	Density           Density      `json:"density"`
	BorderRadius      BorderRadius `json:"border_radius"`
	AutoLogoutMinutes *int         `json:"auto_logout_minutes"`
	AllowCookies      bool         `json:"allow_cookies"`
	AllowAnalytics    bool         `json:"allow_analytics"`
	AllowMarketing    bool         `json:"allow_marketing"`
}

func Defaults() Settings {
	return Settings{
		Language:          "en",
		ThemeMode:         ThemeModeSystem,
		FontSize:          FontMedium,
		Density:           DensityComfortable,
		BorderRadius:      RadiusMedium,
		AutoLogoutMinutes: nil,
		AllowCookies:      true,
		AllowAnalytics:    false,
		AllowMarketing:    false,
	}
}

// AutoLogout distinguishes "leave unchanged" (nil patch field) from
// "disable" (nil Minutes) in a Patch.
type AutoLogout struct {
	Minutes *int
}

// Patch is the explicit sum of settable fields. Nil means unchanged.
type Patch struct {
	Language       *string
	ThemeMode      *ThemeMode
	FontSize       *FontSize
	Density        *Density
	BorderRadius   *BorderRadius
	AutoLogout     *AutoLogout
	AllowCookies   *bool
	AllowAnalytics *bool
	AllowMarketing *bool
}

// Apply merges the patch into a copy of s. The cookie-consent dependency
// is enforced inside the merge so callers never observe a state where
// analytics or marketing consent survives a cookie opt-out.
func (s Settings) Apply(p Patch) Settings {
	next := s
	if p.Language != nil {
		next.Language = *p.Language
	}
	if p.ThemeMode != nil {
		next.ThemeMode = *p.ThemeMode
	}
	if p.FontSize != nil {
		next.FontSize = *p.FontSize
	}
	if p.Density != nil {
		next.Density = *p.Density
	}
	if p.BorderRadius != nil {
		next.BorderRadius = *p.BorderRadius
	}
	if p.AutoLogout != nil {
		next.AutoLogoutMinutes = p.AutoLogout.Minutes
	}
	if p.AllowCookies != nil {
		next.AllowCookies = *p.AllowCookies
	}
	if p.AllowAnalytics != nil {
		next.AllowAnalytics = *p.AllowAnalytics
	}
	if p.AllowMarketing != nil {
		next.AllowMarketing = *p.AllowMarketing
	}
	if !next.AllowCookies {
		next.AllowAnalytics = false
		next.AllowMarketing = false
	}
	return next
}

// Repository is the durable per-identity store. It wins over the local
// cache once an identity is resolved.
type Repository interface {
	Get(ctx context.Context, userID uuid.UUID) (Settings, error)
	Insert(ctx context.Context, userID uuid.UUID, s Settings) error
	Upsert(ctx context.Context, userID uuid.UUID, s Settings) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// Cache is the device-local fallback store. It is id-free: it reflects
// whatever was last applied on this device.
type Cache interface {
	Load(ctx context.Context) (Settings, bool, error)
	Store(ctx context.Context, s Settings) error
}
