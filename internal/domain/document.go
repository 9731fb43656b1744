package domain

import "time"

// DocumentKind enumerates verification documents.
type DocumentKind string

const (
	DocRegistrationCertificate DocumentKind = "registration_certificate"
	DocTaxExemption            DocumentKind = "tax_exemption"
	DocIdentityProof           DocumentKind = "identity_proof"
	DocExpenseReceipt          DocumentKind = "expense_receipt"
)

// RequiredDocuments lists the verification documents each fundraising role
// must provide. Donors need none.
func RequiredDocuments(role UserRole) []DocumentKind {
	switch role {
	case UserRoleNGO:
		return []DocumentKind{DocRegistrationCertificate, DocTaxExemption}
	case UserRoleIndividual:
		return []DocumentKind{DocIdentityProof}
	}
	return nil
}

// VerificationDocument is a stored file attached to a user.
type VerificationDocument struct {
	ID         string
	UserID     string
	Kind       DocumentKind
	StorageKey string
	MIME       string
	Bytes      int64
	CreatedAt  time.Time
}
