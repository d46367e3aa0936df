package dto

import "github.com/GregMSThompson/regexflow/internal/models"

type GenerateTemplateRequest struct {
	SmsText      string `json:"smsText"`
	SenderHeader string `json:"senderHeader,omitempty"`
}

// GeneratedTemplate holds draft-shaped template fields, or the reason generation failed.
type GeneratedTemplate struct {
	Success      bool           `json:"success"`
	BankName     string         `json:"bankName,omitempty"`
	SmsType      models.SmsType `json:"smsType,omitempty"`
	Pattern      string         `json:"regexPattern,omitempty"`
	Description  string         `json:"description,omitempty"`
	SampleSms    string         `json:"sampleSms"`
	Source       string         `json:"source,omitempty"` // "heuristic" or "vertex"
	ErrorMessage string         `json:"errorMessage,omitempty"`
}
