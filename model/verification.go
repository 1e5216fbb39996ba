// Package model - organization verification records and audit trail
package model

import "time"

// OrganizationVerification is the registration/contact record an organization
// submits for review. 1:1 with Organization. Freely editable in draft; read
// only to the submitter once submitted.
type OrganizationVerification struct {
	Key                   string     `json:"_key,omitempty"`
	OrganizationID        string     `json:"organization_id"`
	RegisteredName        string     `json:"registered_name"`
	RegistrationType      string     `json:"registration_type"`
	RegistrationNumber    string     `json:"registration_number"`
	RegistrationDate      string     `json:"registration_date,omitempty"`
	RegistrationAuthority string     `json:"registration_authority,omitempty"`
	Province              string     `json:"province"`
	District              string     `json:"district"`
	Municipality          string     `json:"municipality"`
	Ward                  string     `json:"ward,omitempty"`
	Street                string     `json:"street,omitempty"`
	PostalCode            string     `json:"postal_code,omitempty"`
	OfficialEmail         string     `json:"official_email"`
	OfficialPhone         string     `json:"official_phone"`
	SecondaryPhone        string     `json:"secondary_phone,omitempty"`
	Website               string     `json:"website,omitempty"`
	DocumentURLs          []string   `json:"document_urls,omitempty"`
	TrustedDomain         bool       `json:"trusted_domain"`
	SubmittedAt           *time.Time `json:"submitted_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// VerificationAudit records one status transition of an organization's
// verification. One audit row is written per transition; it is the durable
// record of who approved or rejected what.
type VerificationAudit struct {
	Key            string             `json:"_key,omitempty"`
	OrganizationID string             `json:"organization_id"`
	ActorID        string             `json:"actor_id"`
	FromStatus     VerificationStatus `json:"from_status"`
	ToStatus       VerificationStatus `json:"to_status"`
	Reason         string             `json:"reason,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// VerificationCall logs a phone-verification call made by a reviewer
type VerificationCall struct {
	Key            string    `json:"_key,omitempty"`
	OrganizationID string    `json:"organization_id"`
	ReviewerID     string    `json:"reviewer_id"`
	PhoneNumber    string    `json:"phone_number"`
	Outcome        string    `json:"outcome"` // answered, no_answer, wrong_number
	Notes          string    `json:"notes,omitempty"`
	CalledAt       time.Time `json:"called_at"`
	CreatedAt      time.Time `json:"created_at"`
}
