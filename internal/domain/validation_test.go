package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	t.Parallel()

	if err := ValidateName("Jane Rivera"); err != nil {
		t.Fatalf("expected valid name, got %v", err)
	}
	if err := ValidateName("   "); err == nil {
		t.Fatalf("expected blank name error")
	}
	if err := ValidateName(strings.Repeat("x", 101)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for long name, got %v", err)
	}
	// 100 multibyte characters are within the limit even at 300 bytes.
	if err := ValidateName(strings.Repeat("ã", 100)); err != nil {
		t.Fatalf("expected 100-rune multibyte name to pass, got %v", err)
	}
	if err := ValidateName(strings.Repeat("ã", 101)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for 101-rune name, got %v", err)
	}
}

func TestValidateCityAndPhone(t *testing.T) {
	t.Parallel()

	if err := ValidateCity("Lisbon"); err != nil {
		t.Fatalf("expected valid city, got %v", err)
	}
	if err := ValidateCity(""); err == nil {
		t.Fatalf("expected empty city error")
	}
	if err := ValidateCity(strings.Repeat("ü", 100)); err != nil {
		t.Fatalf("expected 100-rune multibyte city to pass, got %v", err)
	}
	if err := ValidatePhone("+351 912 345 678"); err != nil {
		t.Fatalf("expected valid phone, got %v", err)
	}
	if err := ValidatePhone(strings.Repeat("9", 21)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for long phone, got %v", err)
	}
}

func TestValidateBio(t *testing.T) {
	t.Parallel()

	if err := ValidateBio(strings.Repeat("a", 500)); err != nil {
		t.Fatalf("expected 500-char bio to pass, got %v", err)
	}
	if err := ValidateBio(strings.Repeat("a", 501)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for long bio, got %v", err)
	}
}

func TestParseGender(t *testing.T) {
	t.Parallel()

	got, err := ParseGender("  Female ")
	if err != nil || got != GenderFemale {
		t.Fatalf("expected female, got %q err=%v", got, err)
	}
	got, err = ParseGender("")
	if err != nil || got != GenderPreferNotToSay {
		t.Fatalf("expected default gender for empty input, got %q err=%v", got, err)
	}
	if _, err := ParseGender("robot"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown gender, got %v", err)
	}
}

func TestParseTheme(t *testing.T) {
	t.Parallel()

	got, err := ParseTheme("DARK")
	if err != nil || got != ThemeDark {
		t.Fatalf("expected dark theme, got %q err=%v", got, err)
	}
	if _, err := ParseTheme("sepia"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown theme, got %v", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	if got := NormalizeEmail("  Jane@Example.COM "); got != "jane@example.com" {
		t.Fatalf("unexpected normalized email %q", got)
	}
}
