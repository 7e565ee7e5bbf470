package gateway

import "time"

// ProjectStatus represents the review status of a carbon project
type ProjectStatus string

const (
	ProjectStatusApproved ProjectStatus = "approved"
	ProjectStatusPending  ProjectStatus = "pending"
	ProjectStatusRejected ProjectStatus = "rejected"
)

// VerificationStatus represents the status of a verification request
type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusApproved VerificationStatus = "approved"
	VerificationStatusRejected VerificationStatus = "rejected"
)

// VerificationType is the kind of review a verifier performs
type VerificationType string

const (
	VerificationTypeCommunity VerificationType = "Community"
	VerificationTypeTechnical VerificationType = "Technical"
)

// Project represents a carbon-offset project as served by the MRV backend.
// Projects are read-only from the console's perspective.
type Project struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Status         ProjectStatus `json:"status"`
	VerifierName   string        `json:"verifier"`
	Location       string        `json:"location"`
	CO2Sequestered float64       `json:"co2Sequestered"` // tonnes
}

// Verification represents a verification request awaiting admin review
type Verification struct {
	ID           string             `json:"id"`
	VerifierName string             `json:"verifierName"`
	Type         VerificationType   `json:"type"`
	Status       VerificationStatus `json:"status"`
	ProjectTitle string             `json:"projectTitle"`
	SubmittedAt  time.Time          `json:"submittedAt"`
}

// VerificationUpdate is the acknowledgement for a status change
type VerificationUpdate struct {
	ID        string             `json:"id"`
	Status    VerificationStatus `json:"status"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// User is the authenticated admin identity
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// LoginResult carries the bearer token and user record returned by a
// successful credential exchange
type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}
