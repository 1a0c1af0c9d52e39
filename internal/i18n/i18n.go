// Package i18n translates daybook's user-facing strings.
//
// Usage:
//
//	i18n.Init("en")                                            // at startup
//	i18n.T("tui.day.loading", "Loading...")                    // simple string
//	i18n.Tf("tui.day.title", "Day %s", day)                    // with fmt args
//	i18n.Tn("tui.days.entries", "{{.Count}} entry", "{{.Count}} entries", n) // plural
package i18n

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

//go:embed locales/*.toml
var localeFS embed.FS

// EnvLang overrides the configured language.
const EnvLang = "DAYBOOK_LANG"

var (
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	active    string
	mu        sync.RWMutex
)

// Init initializes the i18n system with the given language tag.
// Falls back to English if the language is not available.
// Safe to call multiple times (e.g., after config reload).
func Init(lang string) {
	mu.Lock()
	defer mu.Unlock()

	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	// Load all available locale files from embedded FS.
	entries, _ := localeFS.ReadDir("locales")
	for _, e := range entries {
		_, _ = bundle.LoadMessageFileFS(localeFS, "locales/"+e.Name())
	}

	localizer = i18n.NewLocalizer(bundle, lang, "en")
	active = lang
}

// Locale returns the language passed to the last Init.
func Locale() string {
	mu.RLock()
	defer mu.RUnlock()
	return active
}

// Available lists the languages that ship a locale file.
func Available() []string {
	entries, _ := localeFS.ReadDir("locales")
	langs := make([]string, 0, len(entries))
	for _, e := range entries {
		langs = append(langs, strings.TrimSuffix(e.Name(), ".toml"))
	}
	return langs
}

// LangInfo describes one shipped language.
type LangInfo struct {
	Tag         string // BCP 47 tag, e.g. "de"
	Name        string // name in the language itself
	EnglishName string
	Active      bool
}

// AvailableLanguages describes the shipped languages, marking the one
// matching activeTag. A regional tag like "de-DE" marks "de".
func AvailableLanguages(activeTag string) []LangInfo {
	base, _, _ := strings.Cut(activeTag, "-")
	var out []LangInfo
	for _, tag := range Available() {
		t := language.Make(tag)
		out = append(out, LangInfo{
			Tag:         tag,
			Name:        display.Self.Name(t),
			EnglishName: display.English.Tags().Name(t),
			Active:      tag == activeTag || tag == base,
		})
	}
	return out
}

// PreviewKeys lists the message IDs shown when previewing a language,
// with their English defaults.
func PreviewKeys() [][2]string {
	return [][2]string{
		{"tui.days.title", "Days"},
		{"common.day.today", "Today"},
		{"common.day.yesterday", "Yesterday"},
		{"tui.follow.label", "Jump to latest"},
		{"tui.header.following", "following"},
		{"tui.header.paused", "paused"},
		{"common.loading", "Loading..."},
		{"common.time.justNow", "just now"},
		{"common.time.oneHourAgo", "1 hour ago"},
		{"tui.help.write", "i: write"},
		{"tui.help.latest", "G: latest"},
		{"tui.help.back", "esc: back"},
	}
}

// PreviewStrings localizes PreviewKeys in lang without changing the
// active language.
func PreviewStrings(lang string) map[string]string {
	mu.RLock()
	b := bundle
	mu.RUnlock()

	out := make(map[string]string)
	var l *i18n.Localizer
	if b != nil {
		l = i18n.NewLocalizer(b, lang, "en")
	}
	for _, kv := range PreviewKeys() {
		out[kv[0]] = kv[1]
		if l == nil {
			continue
		}
		s, err := l.Localize(&i18n.LocalizeConfig{
			DefaultMessage: &i18n.Message{ID: kv[0], Other: kv[1]},
		})
		if err == nil {
			out[kv[0]] = s
		}
	}
	return out
}

// T returns the localized string for the given message ID.
// The defaultMsg is used as the English fallback and is what
// goi18n extract picks up from source code.
func T(id string, defaultMsg string) string {
	mu.RLock()
	l := localizer
	mu.RUnlock()

	if l == nil {
		return defaultMsg
	}

	s, err := l.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{
			ID:    id,
			Other: defaultMsg,
		},
	})
	if err != nil {
		return defaultMsg
	}
	return s
}

// Tf returns the localized string with fmt.Sprintf-style formatting.
// Use for strings with %d, %s, etc. placeholders.
func Tf(id string, defaultMsg string, args ...any) string {
	return fmt.Sprintf(T(id, defaultMsg), args...)
}

// Tn returns the localized string with pluralization.
// one/other use go template syntax with {{.Count}}.
func Tn(id string, one string, other string, count int) string {
	mu.RLock()
	l := localizer
	mu.RUnlock()

	if l == nil {
		msg := other
		if count == 1 {
			msg = one
		}
		return strings.ReplaceAll(msg, "{{.Count}}", fmt.Sprint(count))
	}

	s, err := l.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{
			ID:    id,
			One:   one,
			Other: other,
		},
		PluralCount:  count,
		TemplateData: map[string]int{"Count": count},
	})
	if err != nil {
		return strings.ReplaceAll(other, "{{.Count}}", fmt.Sprint(count))
	}
	return s
}

// ResolveLocale determines the active locale from env/config.
// Priority: DAYBOOK_LANG > configLang > LC_ALL/LANG > "en"
func ResolveLocale(configLang string) string {
	if v := os.Getenv(EnvLang); v != "" {
		return v
	}
	if configLang != "" {
		return configLang
	}
	if v := os.Getenv("LC_ALL"); v != "" {
		return normalizeLocale(v)
	}
	if v := os.Getenv("LANG"); v != "" {
		return normalizeLocale(v)
	}
	return "en"
}

// normalizeLocale converts POSIX locale format to BCP 47,
// e.g. "de_DE.UTF-8" -> "de-DE". "C" and "POSIX" map to "en".
func normalizeLocale(posix string) string {
	posix, _, _ = strings.Cut(posix, ".")
	posix, _, _ = strings.Cut(posix, "@")
	if posix == "C" || posix == "POSIX" || posix == "" {
		return "en"
	}
	return strings.ReplaceAll(posix, "_", "-")
}
