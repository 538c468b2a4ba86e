// Package i18n serves the chat client's interface strings from embedded
// YAML locale files.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

const DefaultLang = "en"

type Translator struct {
	lang         string
	translations map[string]string
}

// NewTranslator loads locales/<lang>.yaml from fsys. Keys missing from lang
// fall back to the English file when fsys has one.
func NewTranslator(fsys fs.FS, lang string) (*Translator, error) {
	if lang == "" {
		lang = DefaultLang
	}
	translations, err := readLocale(fsys, lang)
	if err != nil {
		return nil, err
	}
	if lang != DefaultLang {
		if base, err := readLocale(fsys, DefaultLang); err == nil {
			for k, v := range base {
				if _, ok := translations[k]; !ok {
					translations[k] = v
				}
			}
		}
	}
	return &Translator{lang: lang, translations: translations}, nil
}

// Default returns the embedded English translator.
func Default() *Translator {
	t, err := NewTranslator(LocalesFS, DefaultLang)
	if err != nil {
		panic(fmt.Sprintf("i18n: embedded %s locale: %v", DefaultLang, err))
	}
	return t
}

func readLocale(fsys fs.FS, lang string) (map[string]string, error) {
	p := path.Join("locales", lang+".yaml")
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", p, err)
	}
	return newTranslations(data)
}

func newTranslations(data []byte) (map[string]string, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}
	if translations == nil {
		translations = map[string]string{}
	}
	return translations, nil
}

func (t *Translator) Lang() string { return t.lang }

// T returns the translation for key, formatted with args. Unknown keys are
// returned as-is.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}
