package dto

import "github.com/GregMSThompson/regexflow/internal/models"

// TemplateRequest carries the maker-editable fields for create and update.
type TemplateRequest struct {
	BankName    string         `json:"bankName"`
	SmsType     models.SmsType `json:"smsType"`
	Pattern     string         `json:"regexPattern"`
	SampleSms   string         `json:"sampleSms,omitempty"`
	Description string         `json:"description,omitempty"`
}

type ApprovalRequest struct {
	Comments string `json:"comments,omitempty"`
}

type RejectionRequest struct {
	Reason string `json:"reason"`
}

type DuplicateCheckResponse struct {
	Exists     bool                  `json:"exists"`
	ExistingID string                `json:"existingId,omitempty"`
	Status     models.TemplateStatus `json:"status,omitempty"`
	Message    string                `json:"message,omitempty"`
}
