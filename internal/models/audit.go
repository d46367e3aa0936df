package models

import "time"

type AuditEntry struct {
	ID             string         `firestore:"id" json:"id"`
	TemplateID     string         `firestore:"templateId" json:"templateId"`
	PreviousStatus TemplateStatus `firestore:"previousStatus,omitempty" json:"previousStatus,omitempty"`
	NewStatus      TemplateStatus `firestore:"newStatus" json:"newStatus"`
	Action         string         `firestore:"action" json:"action"`
	Comments       string         `firestore:"comments,omitempty" json:"comments,omitempty"`
	PerformedBy    string         `firestore:"performedBy" json:"performedBy"`
	CreatedAt      time.Time      `firestore:"createdAt" json:"createdAt"`
}

// ActionName is the human-readable audit label for arriving in status.
func ActionName(to TemplateStatus) string {
	switch to {
	case StatusDraft:
		return "Created"
	case StatusPendingApproval:
		return "Submitted for Approval"
	case StatusActive:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	case StatusDeprecated:
		return "Deprecated"
	default:
		return string(to)
	}
}
