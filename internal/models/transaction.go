package models

import (
	"time"
)

type TransactionType string

const (
	TxCredit TransactionType = "CREDIT"
	TxDebit  TransactionType = "DEBIT"
)

type ParseStatus string

const (
	ParseSuccess ParseStatus = "SUCCESS"
	ParsePartial ParseStatus = "PARTIAL"
	ParseNoMatch ParseStatus = "NO_MATCH"
	ParseError   ParseStatus = "ERROR"
)

// Transaction is a ledger entry produced by applying an active template to an SMS.
type Transaction struct {
	TransactionID   string            `firestore:"transactionId" json:"id"`
	Type            TransactionType   `firestore:"type" json:"transactionType"`
	Amount          float64           `firestore:"amount" json:"amount"`
	Balance         *float64          `firestore:"balance,omitempty" json:"balance,omitempty"`
	BankName        string            `firestore:"bankName" json:"bankName"`
	AccountID       string            `firestore:"accountId,omitempty" json:"accountId,omitempty"` // KMS ciphertext at rest
	MerchantOrPayee string            `firestore:"merchantOrPayee,omitempty" json:"merchantOrPayee,omitempty"`
	Mode            string            `firestore:"mode,omitempty" json:"mode,omitempty"`
	ReferenceNumber string            `firestore:"referenceNumber,omitempty" json:"referenceNumber,omitempty"`
	Date            string            `firestore:"transactionDate" json:"transactionDate"` // YYYY-MM-DD
	TemplateID      string            `firestore:"templateId" json:"templateId"`
	MessageID       string            `firestore:"messageId" json:"messageId"`
	ParseStatus     ParseStatus       `firestore:"parseStatus" json:"parseStatus"`
	ExtractedFields map[string]string `firestore:"extractedFields,omitempty" json:"extractedFields,omitempty"`
	CreatedAt       time.Time         `firestore:"createdAt" json:"createdAt"`
}

// SmsLog records every SMS a user uploaded, matched or not.
type SmsLog struct {
	ID            string      `firestore:"id" json:"id"`
	TextHash      string      `firestore:"textHash" json:"-"`
	RawText       string      `firestore:"rawText" json:"rawSmsText"`
	SenderHeader  string      `firestore:"senderHeader" json:"senderHeader"`
	ParseStatus   ParseStatus `firestore:"parseStatus" json:"parseStatus"`
	TemplateID    string      `firestore:"templateId,omitempty" json:"templateId,omitempty"`
	TransactionID string      `firestore:"transactionId,omitempty" json:"transactionId,omitempty"`
	ErrorMessage  string      `firestore:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	CreatedAt     time.Time   `firestore:"createdAt" json:"createdAt"`
}
