package domain

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale           Gender = "male"
	GenderFemale         Gender = "female"
	GenderOther          Gender = "other"
	GenderPreferNotToSay Gender = "prefer-not-to-say"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Identity is the request-scoped projection of a verified token. It is built
// once per request from verified claims and never persisted.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Username      string
	TokenUse      string
}

type Preferences struct {
	Theme       Theme
	NotifyEmail bool
	NotifyPush  bool
}

type Profile struct {
	ProfileID      uuid.UUID
	SubjectID      string
	Name           string
	Gender         Gender
	City           string
	Email          string
	Phone          string
	DateOfBirth    *time.Time
	ProfilePicture string
	Bio            string
	IsActive       bool
	LastLogin      *time.Time
	Preferences    Preferences
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
