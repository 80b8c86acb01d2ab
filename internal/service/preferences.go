package service

import (
	"context"
	"strings"

	"bloodlink/internal/domain"
	"bloodlink/internal/store"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"

	themeKey = "theme"
)

// Preferences holds UI settings kept in local storage.
type Preferences struct {
	local *store.Local
}

func NewPreferences(local *store.Local) *Preferences {
	return &Preferences{local: local}
}

// Theme returns the saved theme, light when none or an unreadable value is
// stored.
func (p *Preferences) Theme(ctx context.Context) string {
	var theme string
	ok, err := p.local.LoadValue(ctx, themeKey, &theme)
	if err != nil || !ok || (theme != ThemeLight && theme != ThemeDark) {
		return ThemeLight
	}
	return theme
}

func (p *Preferences) SetTheme(ctx context.Context, theme string) (string, error) {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if theme != ThemeLight && theme != ThemeDark {
		return "", domain.Invalid("theme", "must be light or dark")
	}
	if err := p.local.SaveValue(ctx, themeKey, theme); err != nil {
		return "", err
	}
	return theme, nil
}
