// Package referral serves the specialist-facing referral screens: lists of
// incoming referrals and the fully assembled referral detail view, plus the
// accept/decline/complete status transitions.
package referral

import (
	"strings"

	"github.com/carelink/carelink/internal/domain/history"
)

// Collection is the document collection holding referral records.
const Collection = "referrals"

// Referral lifecycle statuses. Compared case-insensitively; documents in
// the wild carry both "Pending" and "pending".
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// CanTransition reports whether a status change is legal:
// pending -> confirmed -> completed, with cancellation possible from
// pending or confirmed. Completed and cancelled are terminal.
func CanTransition(from, to string) bool {
	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))
	switch to {
	case StatusConfirmed:
		return from == StatusPending
	case StatusCompleted:
		return from == StatusConfirmed
	case StatusCancelled:
		return from == StatusPending || from == StatusConfirmed
	default:
		return false
	}
}

// IsCompleted reports whether clinical detail fields are valid for this
// status. Clinical data attached to a non-completed referral is ignored.
func IsCompleted(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), StatusCompleted)
}

// View is the assembled referral detail consumed by the specialist screen.
// Every field is display-ready; status-gated sections hold sentinel copy
// until the referral is completed.
type View struct {
	ID              string                     `json:"id"`
	Status          string                     `json:"status"`
	PatientName     string                     `json:"patient_name"`
	ReferringDoctor string                     `json:"referring_doctor"`
	Specialist      string                     `json:"specialist"`
	ClinicName      string                     `json:"clinic_name"`
	Location        string                     `json:"location"`
	Schedule        string                     `json:"schedule"`
	Reason          string                     `json:"reason"`
	Summary         history.ClinicalSummary    `json:"summary"`
	Prescriptions   []history.PrescriptionView `json:"prescriptions"`
	Certificates    []history.CertificateView  `json:"certificates"`
}

// ListItem is the compact row rendered on the referral list screen.
type ListItem struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	PatientName string `json:"patient_name"`
	Schedule    string `json:"schedule"`
	Reason      string `json:"reason"`
}
