package services

import (
	"context"

	"github.com/GregMSThompson/regexflow/internal/dto"
	"github.com/GregMSThompson/regexflow/internal/models"
	"github.com/GregMSThompson/regexflow/pkg/logger"
)

type unparsedStore interface {
	Create(ctx context.Context, m *models.UnparsedMessage) error
	Get(ctx context.Context, id string) (*models.UnparsedMessage, error)
	List(ctx context.Context) ([]*models.UnparsedMessage, error)
	Delete(ctx context.Context, id string) error
}

type templateGenerator interface {
	Generate(ctx context.Context, smsText, senderHeader string) dto.GeneratedTemplate
}

type inboxService struct {
	store     unparsedStore
	generator templateGenerator
}

func NewInboxService(store unparsedStore, generator templateGenerator) *inboxService {
	return &inboxService{store: store, generator: generator}
}

// List returns every unparsed message regardless of uploader, newest first.
func (s *inboxService) List(ctx context.Context) ([]*models.UnparsedMessage, error) {
	return s.store.List(ctx)
}

func (s *inboxService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("unparsed sms deleted", "sms_id", id)
	return nil
}

func (s *inboxService) Generate(ctx context.Context, req dto.GenerateTemplateRequest) dto.GeneratedTemplate {
	return s.generator.Generate(ctx, req.SmsText, req.SenderHeader)
}
