package i18n

import (
	"slices"
	"testing"
)

func TestGermanLocale(t *testing.T) {
	Init("de")
	t.Cleanup(func() { Init("en") })

	tests := []struct {
		id     string
		def    string
		wantDe string
	}{
		{"tui.day.loading", "Loading...", "Wird geladen..."},
		{"tui.follow.label", "Jump to latest", "Zum Neuesten"},
		{"tui.days.title", "Days", "Tage"},
		{"common.day.yesterday", "Yesterday", "Gestern"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := T(tt.id, tt.def)
			if got != tt.wantDe {
				t.Errorf("T(%q) = %q, want %q", tt.id, got, tt.wantDe)
			}
		})
	}
}

func TestLocaleSwitch(t *testing.T) {
	Init("en")
	if got := T("tui.days.title", "Days"); got != "Days" {
		t.Errorf("English = %q", got)
	}

	Init("de")
	if got := T("tui.days.title", "Days"); got != "Tage" {
		t.Errorf("German = %q", got)
	}
	if Locale() != "de" {
		t.Errorf("Locale() = %q", Locale())
	}

	Init("en")
	if got := T("tui.days.title", "Days"); got != "Days" {
		t.Errorf("English after switch = %q", got)
	}
}

func TestUntranslatedKeyFallsBack(t *testing.T) {
	Init("de")
	t.Cleanup(func() { Init("en") })

	got := T("some.untranslated.key", "English fallback")
	if got != "English fallback" {
		t.Errorf("untranslated key = %q, want %q", got, "English fallback")
	}
}

func TestAvailable(t *testing.T) {
	langs := Available()
	for _, want := range []string{"de", "en"} {
		if !slices.Contains(langs, want) {
			t.Errorf("Available() = %v, missing %q", langs, want)
		}
	}
}

func TestResolveLocale(t *testing.T) {
	t.Setenv(EnvLang, "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LANG", "de_DE.UTF-8")

	if got := ResolveLocale("en"); got != "en" {
		t.Errorf("config should beat LANG, got %q", got)
	}
	if got := ResolveLocale(""); got != "de-DE" {
		t.Errorf("LANG fallback = %q", got)
	}

	t.Setenv("LANG", "C")
	if got := ResolveLocale(""); got != "en" {
		t.Errorf("C locale = %q", got)
	}

	t.Setenv(EnvLang, "de")
	if got := ResolveLocale("en"); got != "de" {
		t.Errorf("%s override = %q", EnvLang, got)
	}
}
