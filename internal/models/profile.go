package models

import (
	"time"
)

// Allowed values for HealthProfile.Gender.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// ValidGender reports whether g is one of the accepted gender values.
func ValidGender(g string) bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// HealthProfile is the per-account document used to personalise replies.
// Height is in centimetres and weight in kilograms.
type HealthProfile struct {
	AccountID          uint      `bson:"userId" json:"userId"`
	Age                *int      `bson:"age,omitempty" json:"age,omitempty"`
	Gender             *string   `bson:"gender,omitempty" json:"gender,omitempty"`
	HeightCm           *float64  `bson:"height,omitempty" json:"height,omitempty"`
	WeightKg           *float64  `bson:"weight,omitempty" json:"weight,omitempty"`
	DietaryPreferences string    `bson:"dietaryPreferences,omitempty" json:"dietaryPreferences,omitempty"`
	Allergies          []string  `bson:"allergies" json:"allergies"`
	Goals              string    `bson:"goals,omitempty" json:"goals,omitempty"`
	CreatedAt          time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HealthProfileUpdate carries the fields of a profile save. Nil fields are
// left untouched in storage.
type HealthProfileUpdate struct {
	Age                *int
	Gender             *string
	HeightCm           *float64
	WeightKg           *float64
	DietaryPreferences *string
	Allergies          []string
	SetAllergies       bool
	Goals              *string
}
