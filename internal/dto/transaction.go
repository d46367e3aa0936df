package dto

import "github.com/GregMSThompson/regexflow/internal/models"

const DefaultPageSize = 20

// TransactionQuery is the server-side advanced filter. Nil fields do not filter.
type TransactionQuery struct {
	BankName  *string
	Type      *models.TransactionType
	MinAmount *float64
	MaxAmount *float64
	DateFrom  *string // YYYY-MM-DD inclusive
	DateTo    *string // YYYY-MM-DD inclusive
	Page      int
	Size      int
}

type TransactionPage struct {
	Content       []*models.Transaction `json:"content"`
	Page          int                   `json:"page"`
	Size          int                   `json:"size"`
	TotalElements int                   `json:"totalElements"`
	TotalPages    int                   `json:"totalPages"`
}
