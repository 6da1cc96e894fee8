package domain

import (
	"context"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type Education struct {
	Degree      string `json:"degree" validate:"required,max=100"`
	Institution string `json:"institution" validate:"required,max=200"`
	Year        int    `json:"year" validate:"omitempty,min=1950,max_current_year"`
	Grade       string `json:"grade,omitempty" validate:"max=20"`
}

type Experience struct {
	Company     string `json:"company" validate:"required,max=200"`
	Title       string `json:"title" validate:"required,max=100"`
	StartDate   string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01"`
	EndDate     string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}

type Certification struct {
	Name   string `json:"name" validate:"required,max=200"`
	Issuer string `json:"issuer,omitempty" validate:"max=200"`
	Year   int    `json:"year,omitempty" validate:"omitempty,min=1950,max_current_year"`
}

type Profile struct {
	ID             string          `json:"id"`
	CandidateID    CandidateID     `json:"candidate_id"`
	Email          string          `json:"email"`
	FullName       string          `json:"full_name"`
	DateOfBirth    time.Time       `json:"date_of_birth"`
	Gender         Gender          `json:"gender"`
	NationalID     string          `json:"national_id"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	ResumeURL      string          `json:"resume_url"`
	PhotoURL       *string         `json:"photo_url,omitempty"`
	Education      []Education     `json:"education"`
	Experience     []Experience    `json:"experience"`
	Skills         []string        `json:"skills"`
	Certifications []Certification `json:"certifications"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ProfileInput is the candidate-supplied profile payload.
type ProfileInput struct {
	FullName       string          `json:"full_name" validate:"required,min=2,max=150,valid_name,no_emoji"`
	DateOfBirth    string          `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Gender         Gender          `json:"gender" validate:"required,oneof=male female other"`
	NationalID     string          `json:"national_id" validate:"required,national_id"`
	Phone          string          `json:"phone" validate:"required,valid_phone"`
	Address        string          `json:"address" validate:"required,max=500"`
	ResumeURL      string          `json:"resume_url" validate:"required,url"`
	PhotoURL       string          `json:"photo_url,omitempty" validate:"omitempty,url"`
	Education      []Education     `json:"education" validate:"max=10,dive"`
	Experience     []Experience    `json:"experience" validate:"max=20,dive"`
	Skills         []string        `json:"skills" validate:"max=50,dive,required,max=60"`
	Certifications []Certification `json:"certifications" validate:"max=20,dive"`
}

// ProfileView is what profile reads return. IsLocked is derived on every read.
type ProfileView struct {
	Profile  *Profile `json:"profile"`
	IsLocked bool     `json:"isLocked"`
}

type ProfileRepository interface {
	GetByCandidateID(ctx context.Context, candidateID CandidateID) (*Profile, error)
	// NationalIDTakenByOther reports whether another candidate holds nationalID.
	NationalIDTakenByOther(ctx context.Context, nationalID string, candidateID CandidateID) (bool, error)
	// Upsert inserts or updates the profile keyed by candidate. Returns
	// ErrDuplicateNationalID on a national id collision.
	Upsert(ctx context.Context, profile *Profile) error
}

// LockEvaluator derives whether a candidate's profile is read-only.
type LockEvaluator interface {
	IsLocked(ctx context.Context, candidateID CandidateID) (bool, error)
}

type ProfileUsecase interface {
	GetProfile(ctx context.Context, candidateID CandidateID) (*ProfileView, error)
	UpsertProfile(ctx context.Context, candidateID CandidateID, email string, input ProfileInput) (*ProfileView, error)
}
