package i18n

import (
	"testing"
)

func TestT_ReturnsDefaultMessage(t *testing.T) {
	Init("en")
	got := T("common.loading", "Loading...")
	if got != "Loading..." {
		t.Errorf("T() = %q, want %q", got, "Loading...")
	}
}

func TestTn_Pluralization(t *testing.T) {
	Init("en")

	one := Tn("test.sessions", "{{.Count}} session", "{{.Count}} sessions", 1)
	if one != "1 session" {
		t.Errorf("Tn(1) = %q, want %q", one, "1 session")
	}

	many := Tn("test.sessions", "{{.Count}} session", "{{.Count}} sessions", 5)
	if many != "5 sessions" {
		t.Errorf("Tn(5) = %q, want %q", many, "5 sessions")
	}
}

func TestInit_FallbackToEnglish(t *testing.T) {
	Init("xx-nonexistent")
	got := T("common.loading", "Loading...")
	if got != "Loading..." {
		t.Errorf("expected English fallback, got %q", got)
	}
}

func TestAvailableLanguages(t *testing.T) {
	langs := AvailableLanguages("de-DE")
	var de *LangInfo
	for i := range langs {
		if langs[i].Tag == "de" {
			de = &langs[i]
		}
	}
	if de == nil {
		t.Fatalf("de missing from %+v", langs)
	}
	if !de.Active {
		t.Error("de-DE should mark de active")
	}
	if de.Name != "Deutsch" || de.EnglishName != "German" {
		t.Errorf("names = %q / %q", de.Name, de.EnglishName)
	}
}

func TestPreviewStringsKeepsActiveLanguage(t *testing.T) {
	Init("en")
	got := PreviewStrings("de")
	if got["tui.days.title"] != "Tage" {
		t.Errorf("preview title = %q, want Tage", got["tui.days.title"])
	}
	if T("tui.days.title", "Days") != "Days" {
		t.Error("preview changed the active language")
	}
}
