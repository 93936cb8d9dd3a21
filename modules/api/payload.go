package api

import (
	"time"

	"github.com/sonatahq/sonata-api/pkg/profilestore"
	"github.com/sonatahq/sonata-api/pkg/reconcile"
)

// userPayload is the client-facing user shape. ProfileImage carries the
// resolved URL; raw storage keys never leave the service.
type userPayload struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	AccountType      string    `json:"account_type"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	ProfileImage     string    `json:"profile_image,omitempty"`
	ProfileCompleted bool      `json:"profile_completed"`
	Location         string    `json:"location,omitempty"`
	Bio              string    `json:"bio,omitempty"`
	Instruments      []string  `json:"instruments,omitempty"`
	ChildFirstName   string    `json:"child_first_name,omitempty"`
	ChildLastName    string    `json:"child_last_name,omitempty"`
	CreatedAt        time.Time `json:"created_at,omitzero"`
}

func toUserPayload(u reconcile.User) userPayload {
	return userPayload{
		ID:               u.ID,
		Email:            u.Email,
		AccountType:      string(u.AccountType),
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		ProfileImage:     u.ProfileImageURL,
		ProfileCompleted: u.ProfileCompleted,
		Location:         u.Location,
		Bio:              u.Bio,
		Instruments:      u.Instruments,
		ChildFirstName:   u.ChildFirstName,
		ChildLastName:    u.ChildLastName,
		CreatedAt:        u.CreatedAt,
	}
}

// teacherPayload is a directory entry.
type teacherPayload struct {
	ID           string   `json:"id"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Location     string   `json:"location,omitempty"`
	ProfileImage string   `json:"profile_image,omitempty"`
	Bio          string   `json:"bio,omitempty"`
	Instruments  []string `json:"instruments,omitempty"`
}

func toTeacherPayloads(teachers []profilestore.TeacherSummary) []teacherPayload {
	out := make([]teacherPayload, 0, len(teachers))
	for _, t := range teachers {
		out = append(out, teacherPayload{
			ID:           t.UserID,
			FirstName:    t.FirstName,
			LastName:     t.LastName,
			Location:     t.Location,
			ProfileImage: t.ProfileImage,
			Bio:          t.Bio,
			Instruments:  t.Instruments,
		})
	}
	return out
}
