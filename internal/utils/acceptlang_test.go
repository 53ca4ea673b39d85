package utils

import "testing"

func TestDetermineLocale_QueryParamWins(t *testing.T) {
	got := DetermineLocale("hi-IN", "en-US,en;q=0.9,hi;q=0.8", SupportedLocales, "en")
	if got != "hi" {
		t.Fatalf("want hi, got %s", got)
	}
}

func TestDetermineLocale_AcceptLanguageOrder(t *testing.T) {
	got := DetermineLocale("", "en-US,en;q=0.9,hi;q=0.8", SupportedLocales, "en")
	if got != "en" {
		t.Fatalf("want en, got %s", got)
	}
}

func TestDetermineLocale_AcceptLanguagePrefersHigherQ(t *testing.T) {
	got := DetermineLocale("", "hi;q=0.9,en;q=0.8", SupportedLocales, "en")
	if got != "hi" {
		t.Fatalf("want hi, got %s", got)
	}
}

func TestDetermineLocale_ZeroQExcludes(t *testing.T) {
	got := DetermineLocale("", "hi;q=0,en;q=0.1", SupportedLocales, "en")
	if got != "en" {
		t.Fatalf("want en, got %s", got)
	}
}

func TestDetermineLocale_DefaultFallback(t *testing.T) {
	got := DetermineLocale("", "fr-FR,es;q=0.9", SupportedLocales, "en")
	if got != "en" {
		t.Fatalf("want en fallback, got %s", got)
	}
}

func TestDetermineLocale_UnsupportedDefault(t *testing.T) {
	got := DetermineLocale("", "", SupportedLocales, "de")
	if got != "en" {
		t.Fatalf("want first supported, got %s", got)
	}
}
