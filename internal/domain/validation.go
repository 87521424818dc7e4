package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Length limits count characters, not bytes, so multibyte names are not
// penalized.
const (
	maxNameLen  = 100
	maxCityLen  = 100
	maxPhoneLen = 20
	maxBioLen   = 500
)

func NormalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func ValidateName(v string) error {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" || utf8.RuneCountInString(trimmed) > maxNameLen {
		return fmt.Errorf("%w: name must be 1-%d chars", ErrInvalidInput, maxNameLen)
	}
	return nil
}

func ValidateCity(v string) error {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" || utf8.RuneCountInString(trimmed) > maxCityLen {
		return fmt.Errorf("%w: city must be 1-%d chars", ErrInvalidInput, maxCityLen)
	}
	return nil
}

func ValidatePhone(v string) error {
	if utf8.RuneCountInString(strings.TrimSpace(v)) > maxPhoneLen {
		return fmt.Errorf("%w: phone must be <= %d chars", ErrInvalidInput, maxPhoneLen)
	}
	return nil
}

func ValidateBio(v string) error {
	if utf8.RuneCountInString(v) > maxBioLen {
		return fmt.Errorf("%w: bio must be <= %d chars", ErrInvalidInput, maxBioLen)
	}
	return nil
}

func ParseGender(v string) (Gender, error) {
	switch Gender(strings.ToLower(strings.TrimSpace(v))) {
	case GenderMale:
		return GenderMale, nil
	case GenderFemale:
		return GenderFemale, nil
	case GenderOther:
		return GenderOther, nil
	case GenderPreferNotToSay, "":
		return GenderPreferNotToSay, nil
	default:
		return "", fmt.Errorf("%w: gender must be one of male, female, other, prefer-not-to-say", ErrInvalidInput)
	}
}

func ParseTheme(v string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(v))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	default:
		return "", fmt.Errorf("%w: theme must be light or dark", ErrInvalidInput)
	}
}
