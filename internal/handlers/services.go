package handlers

import (
	"context"

	"github.com/GregMSThompson/regexflow/internal/dto"
	"github.com/GregMSThompson/regexflow/internal/models"
)

type TemplateService interface {
	Create(ctx context.Context, uid string, req dto.TemplateRequest) (*models.Template, error)
	Update(ctx context.Context, uid, id string, req dto.TemplateRequest) (*models.Template, error)
	Delete(ctx context.Context, uid, id string) error
	Submit(ctx context.Context, uid, id string) (*models.Template, error)
	Approve(ctx context.Context, uid, id, comments string) (*models.Template, error)
	Reject(ctx context.Context, uid, id, reason string) (*models.Template, error)
	Deprecate(ctx context.Context, uid, id string) (*models.Template, error)
	Get(ctx context.Context, id string) (*models.Template, error)
	ListMine(ctx context.Context, uid string) ([]*models.Template, error)
	ListPending(ctx context.Context) ([]*models.Template, error)
	ListActive(ctx context.Context) ([]*models.Template, error)
	ListReviewed(ctx context.Context, uid string, all bool) ([]*models.Template, error)
	History(ctx context.Context, id string) ([]*models.AuditEntry, error)
	CheckDuplicate(ctx context.Context, pattern, excludeID string) (dto.DuplicateCheckResponse, error)
}

type PatternService interface {
	Test(ctx context.Context, req dto.PatternTestRequest) (dto.PatternTestResult, error)
}

type InboxService interface {
	List(ctx context.Context) ([]*models.UnparsedMessage, error)
	Delete(ctx context.Context, id string) error
	Generate(ctx context.Context, req dto.GenerateTemplateRequest) dto.GeneratedTemplate
}

type SmsService interface {
	Parse(ctx context.Context, uid string, req dto.SmsParseRequest) (dto.SmsParseResponse, error)
}

type TransactionService interface {
	List(ctx context.Context, uid string, page, size int) (dto.TransactionPage, error)
	Filter(ctx context.Context, uid string, q dto.TransactionQuery) (dto.TransactionPage, error)
	Get(ctx context.Context, uid, id string) (*models.Transaction, error)
}
