package dto

import "github.com/GregMSThompson/regexflow/internal/models"

type SmsParseRequest struct {
	SmsText      string `json:"smsText"`
	SenderHeader string `json:"senderHeader,omitempty"`
}

type SmsParseResponse struct {
	ParseStatus  models.ParseStatus  `json:"parseStatus"`
	Transaction  *models.Transaction `json:"transaction,omitempty"`
	RawSmsText   string              `json:"rawSmsText"`
	ErrorMessage string              `json:"errorMessage,omitempty"`
}
