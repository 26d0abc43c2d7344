package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Translator wraps a go-i18n bundle. User-facing messages (settings save
// failures, auth errors) are localized against the identity's language
// preference.
type Translator struct {
	bundle *goi18n.Bundle
}

func NewTranslator(localesDir string) (*Translator, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := os.ReadDir(localesDir)
	if err != nil {
		return nil, fmt.Errorf("cannot read locales dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if _, err := bundle.LoadMessageFile(filepath.Join(localesDir, entry.Name())); err != nil {
			return nil, fmt.Errorf("cannot load locale %s: %w", entry.Name(), err)
		}
	}

	return &Translator{bundle: bundle}, nil
}

func (t *Translator) Localizer(lang string) *goi18n.Localizer {
	if lang == "" {
		lang = language.English.String()
	}
	return goi18n.NewLocalizer(t.bundle, lang, language.English.String())
}

func (t *Translator) T(lang, messageID string) string {
	msg, err := t.Localizer(lang).Localize(&goi18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		return messageID
	}
	return msg
}
