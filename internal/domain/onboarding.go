package domain

import (
	"encoding/json"
	"time"
)

// OnboardingStep names a page of the signup wizard.
type OnboardingStep string

const (
	StepAccount   OnboardingStep = "account"
	StepProfile   OnboardingStep = "profile"
	StepDocuments OnboardingStep = "documents"
	StepReview    OnboardingStep = "review"
	StepDone      OnboardingStep = "done"
)

// OnboardingSession persists signup wizard progress between requests.
type OnboardingSession struct {
	ID           string
	Email        string
	PasswordHash string
	Role         UserRole
	Step         OnboardingStep
	Profile      Profile
	Documents    map[DocumentKind]StoredFile
	UserID       string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StoredFile points at an uploaded object.
type StoredFile struct {
	Key   string `json:"key"`
	MIME  string `json:"mime"`
	Bytes int64  `json:"bytes"`
}

// NextStep returns the step after the current one for the session role.
// Donors skip the documents step.
func (s OnboardingSession) NextStep() OnboardingStep {
	switch s.Step {
	case StepAccount:
		return StepProfile
	case StepProfile:
		if len(RequiredDocuments(s.Role)) == 0 {
			return StepReview
		}
		return StepDocuments
	case StepDocuments:
		return StepReview
	case StepReview:
		return StepDone
	}
	return StepDone
}

// PrevStep returns the step Back moves to, or "" when there is none.
func (s OnboardingSession) PrevStep() OnboardingStep {
	switch s.Step {
	case StepProfile:
		return StepAccount
	case StepDocuments:
		return StepProfile
	case StepReview:
		if len(RequiredDocuments(s.Role)) == 0 {
			return StepProfile
		}
		return StepDocuments
	}
	return ""
}

// MissingDocuments lists required kinds not yet uploaded.
func (s OnboardingSession) MissingDocuments() []DocumentKind {
	var missing []DocumentKind
	for _, kind := range RequiredDocuments(s.Role) {
		if f, ok := s.Documents[kind]; !ok || f.Key == "" {
			missing = append(missing, kind)
		}
	}
	return missing
}

// Expired reports whether the session can no longer be resumed.
func (s OnboardingSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// DocumentsJSON encodes the document map for storage.
func (s OnboardingSession) DocumentsJSON() []byte {
	if len(s.Documents) == 0 {
		return []byte(`{}`)
	}
	b, err := json.Marshal(s.Documents)
	if err != nil {
		return []byte(`{}`)
	}
	return b
}
