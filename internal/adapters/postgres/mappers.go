package postgres

import "github.com/nimbuslabs/profile-gateway/internal/domain"

func toDomainProfile(m profileModel) domain.Profile {
	return domain.Profile{
		ProfileID: m.ProfileID, SubjectID: m.SubjectID, Name: m.Name,
		Gender: domain.Gender(m.Gender), City: m.City, Email: m.Email, Phone: m.Phone,
		DateOfBirth: m.DateOfBirth, ProfilePicture: m.ProfilePicture, Bio: m.Bio,
		IsActive: m.IsActive, LastLogin: m.LastLogin,
		Preferences: domain.Preferences{
			Theme:       domain.Theme(m.Theme),
			NotifyEmail: m.NotifyEmail,
			NotifyPush:  m.NotifyPush,
		},
		CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}
