package domain

import "time"

// VerificationStatus tracks a user's progress through identity verification.
type VerificationStatus string

const (
	// VerificationUnverified is the initial state for new accounts.
	VerificationUnverified VerificationStatus = "unverified"
	// VerificationPending means a document was submitted and awaits review.
	VerificationPending VerificationStatus = "pending"
	// VerificationVerified unlocks posting and voting.
	VerificationVerified VerificationStatus = "verified"
	// VerificationRejected means review failed; the user may resubmit.
	VerificationRejected VerificationStatus = "rejected"
)

// Valid checks if the status is recognized.
func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationUnverified, VerificationPending, VerificationVerified, VerificationRejected:
		return true
	default:
		return false
	}
}

// Profile holds a user's board-facing state: verification progress and
// accumulated crush points. Exactly one exists per user.
type Profile struct {
	Record
	UserID      string             `json:"user_id"`
	Status      VerificationStatus `json:"status"`
	CrushPoints int                `json:"crush_points"`

	// DocumentRef is an opaque reference to the submitted verification
	// document, assigned at submission time.
	DocumentRef string     `json:"document_ref,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy  string     `json:"reviewed_by,omitempty"`
	ReviewNote  string     `json:"review_note,omitempty"`
}

// IsVerified returns true if the user has passed identity verification.
func (p *Profile) IsVerified() bool {
	return p.Status == VerificationVerified
}

// CanSubmitVerification returns true if a new document submission is allowed.
// Pending and already-verified profiles cannot resubmit.
func (p *Profile) CanSubmitVerification() bool {
	return p.Status == VerificationUnverified || p.Status == VerificationRejected
}
