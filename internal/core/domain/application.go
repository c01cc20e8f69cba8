package domain

import (
	"errors"
	"time"
)

// ApplicationStatus represents the lifecycle state of a membership application.
type ApplicationStatus string

const (
	ApplicationPending        ApplicationStatus = "pending"
	ApplicationPaymentPending ApplicationStatus = "payment_pending"
	ApplicationRejected       ApplicationStatus = "rejected"
	ApplicationPaid           ApplicationStatus = "paid"
)

// validApplicationTransitions defines the allowed state machine transitions.
// Paid and rejected are terminal.
var validApplicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationPending:        {ApplicationPaymentPending, ApplicationRejected},
	ApplicationPaymentPending: {ApplicationPaid},
}

var ErrApplicationNotFound = errors.New("application not found")
var ErrApplicationResolved = errors.New("application already resolved")
var ErrApplicationNotPaymentPending = errors.New("application is not awaiting payment")

// CanTransitionTo reports whether moving from the current status to next is valid.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range validApplicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Attachment is a document reference attached to an application. The core
// stores only the reference string returned by the blob store.
type Attachment struct {
	ID        string    `json:"id"`
	FileRef   string    `json:"file_ref"`
	CreatedAt time.Time `json:"created_at"`
}

// Application is a prospective member's request to join the association.
// Created on submission and mutated only through workflow transitions.
type Application struct {
	ID string `json:"id"`

	// Personal
	Name     string `json:"name"`
	Email    string `json:"email"`
	Website  string `json:"website,omitempty"`
	City     string `json:"city,omitempty"`
	Country  string `json:"country,omitempty"`
	Whatsapp string `json:"whatsapp,omitempty"`
	Phone    string `json:"phone,omitempty"`

	// Professional background
	Specialization  string `json:"specialization,omitempty"`
	University      string `json:"university,omitempty"`
	CurrentHospital string `json:"current_hospital,omitempty"`
	CurrentPosition string `json:"current_position,omitempty"`
	TeachingDegree  string `json:"teaching_degree,omitempty"`
	Motivation      string `json:"motivation,omitempty"`
	ExperienceYears int    `json:"experience_years,omitempty"`

	// Workflow
	MembershipType MembershipType    `json:"membership_type"`
	Status         ApplicationStatus `json:"status"`
	ResolutionNote string            `json:"resolution_note,omitempty"`
	DecidedAt      *time.Time        `json:"decided_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`

	Attachments []Attachment `json:"attachments,omitempty"`
}
