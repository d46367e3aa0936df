package models

import (
	"fmt"
	"time"
)

type TemplateStatus string

const (
	StatusDraft           TemplateStatus = "DRAFT"
	StatusPendingApproval TemplateStatus = "PENDING_APPROVAL"
	StatusActive          TemplateStatus = "ACTIVE"
	StatusRejected        TemplateStatus = "REJECTED"
	StatusDeprecated      TemplateStatus = "DEPRECATED"
)

// LiveStatuses block submission of another template with the same pattern text.
var LiveStatuses = []TemplateStatus{StatusPendingApproval, StatusActive}

// ReviewedStatuses are the statuses a checker has already acted on.
var ReviewedStatuses = []TemplateStatus{StatusActive, StatusRejected, StatusDeprecated}

func (s TemplateStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingApproval, StatusActive, StatusRejected, StatusDeprecated:
		return true
	}
	return false
}

func (s TemplateStatus) IsLive() bool {
	return s == StatusPendingApproval || s == StatusActive
}

// CanTransitionTo reports whether next is reachable from s. DRAFT → DRAFT is the edit.
// REJECTED and DEPRECATED are terminal.
func (s TemplateStatus) CanTransitionTo(next TemplateStatus) bool {
	switch s {
	case StatusDraft:
		return next == StatusDraft || next == StatusPendingApproval
	case StatusPendingApproval:
		return next == StatusActive || next == StatusRejected
	case StatusActive:
		return next == StatusDeprecated
	default:
		return false
	}
}

type SmsType string

const (
	SmsDebit  SmsType = "DEBIT"
	SmsCredit SmsType = "CREDIT"
	SmsBill   SmsType = "BILL"
)

func (t SmsType) Valid() bool {
	return t == SmsDebit || t == SmsCredit || t == SmsBill
}

// Template is an extraction rule bound to a bank and SMS category.
type Template struct {
	ID              string         `firestore:"id" json:"id"`
	CreatedBy       string         `firestore:"createdBy" json:"createdBy"`
	BankName        string         `firestore:"bankName" json:"bankName"`
	SmsType         SmsType        `firestore:"smsType" json:"smsType"`
	Pattern         string         `firestore:"pattern" json:"regexPattern"`
	SampleSms       string         `firestore:"sampleSms,omitempty" json:"sampleSms,omitempty"`
	Description     string         `firestore:"description,omitempty" json:"description,omitempty"`
	Status          TemplateStatus `firestore:"status" json:"status"`
	RejectionReason string         `firestore:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	ApprovedBy      string         `firestore:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ReviewedBy      string         `firestore:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	ReviewComments  string         `firestore:"reviewComments,omitempty" json:"reviewComments,omitempty"`
	CreatedAt       time.Time      `firestore:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time      `firestore:"updatedAt" json:"updatedAt"`
	SubmittedAt     *time.Time     `firestore:"submittedAt,omitempty" json:"submittedAt,omitempty"`
	ApprovedAt      *time.Time     `firestore:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	ReviewedAt      *time.Time     `firestore:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	DeprecatedAt    *time.Time     `firestore:"deprecatedAt,omitempty" json:"deprecatedAt,omitempty"`
}

// CheckInvariants verifies the status-dependent fields agree with the status.
func (t *Template) CheckInvariants() error {
	if !t.Status.Valid() {
		return fmt.Errorf("unknown status %q", t.Status)
	}
	if (t.RejectionReason != "") != (t.Status == StatusRejected) {
		return fmt.Errorf("rejection reason must be set only for %s templates", StatusRejected)
	}
	approved := t.Status == StatusActive || t.Status == StatusDeprecated
	if (t.ApprovedBy != "") != approved || (t.ApprovedAt != nil) != approved {
		return fmt.Errorf("approver must be set only for %s or %s templates", StatusActive, StatusDeprecated)
	}
	if (t.DeprecatedAt != nil) != (t.Status == StatusDeprecated) {
		return fmt.Errorf("deprecation time must be set only for %s templates", StatusDeprecated)
	}
	return nil
}
