package dto

import "github.com/GregMSThompson/regexflow/internal/models"

type RegisterRequest struct {
	FirstName string      `json:"firstname"`
	LastName  string      `json:"lastname"`
	Role      models.Role `json:"role"`
}
