package models

import "time"

// UnparsedMessage is a bank SMS that no active template matched.
type UnparsedMessage struct {
	ID           string    `firestore:"id" json:"id"`
	SenderHeader string    `firestore:"senderHeader" json:"senderHeader"`
	RawText      string    `firestore:"rawText" json:"rawSmsText"`
	UploadedBy   string    `firestore:"uploadedBy" json:"uploadedBy"`
	LastError    string    `firestore:"lastError,omitempty" json:"errorMessage,omitempty"`
	CreatedAt    time.Time `firestore:"createdAt" json:"createdAt"`
}
