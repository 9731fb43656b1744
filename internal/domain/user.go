package domain

import "time"

// UserRole enumerates supported roles.
type UserRole string

const (
	UserRoleDonor      UserRole = "donor"
	UserRoleNGO        UserRole = "ngo"
	UserRoleIndividual UserRole = "individual"
	UserRoleAdmin      UserRole = "admin"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleDonor, UserRoleNGO, UserRoleIndividual, UserRoleAdmin:
		return true
	}
	return false
}

// RaisesFunds reports whether the role may own campaigns.
func (r UserRole) RaisesFunds() bool {
	return r == UserRoleNGO || r == UserRoleIndividual
}

// VerificationStatus tracks the document review state of an account.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationPending    VerificationStatus = "pending"
	VerificationApproved   VerificationStatus = "approved"
	VerificationRejected   VerificationStatus = "rejected"
)

// User represents an authenticated account within the platform.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	GoogleSub    string
	Role         UserRole
	Verification VerificationStatus
	ReviewNote   string
	Locale       string
	Profile      Profile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the role specific fields gathered by the signup wizard.
// Fields that do not apply to a role stay empty.
type Profile struct {
	FullName           string `json:"full_name,omitempty"`
	Phone              string `json:"phone,omitempty"`
	City               string `json:"city,omitempty"`
	OrganizationName   string `json:"organization_name,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	Address            string `json:"address,omitempty"`
	Website            string `json:"website,omitempty"`
	GovernmentID       string `json:"government_id,omitempty"`
}

// DisplayName picks the most human friendly name available.
func (u User) DisplayName() string {
	if u.Profile.OrganizationName != "" {
		return u.Profile.OrganizationName
	}
	if u.Profile.FullName != "" {
		return u.Profile.FullName
	}
	return u.Email
}

// CanRaiseFunds reports whether the user may create campaigns.
func (u User) CanRaiseFunds() bool {
	return u.Role.RaisesFunds() && u.Verification == VerificationApproved
}

// IsAdmin reports whether the user is an administrator.
func (u User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// Actor identifies the caller of a service operation. The zero value is an
// anonymous visitor.
type Actor struct {
	UserID string
	Role   UserRole
}

// Owns reports whether the actor is the given owner.
func (a Actor) Owns(ownerID string) bool {
	return a.UserID != "" && a.UserID == ownerID
}

func (a Actor) IsAdmin() bool {
	return a.Role == UserRoleAdmin
}
