package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/regexflow/internal/errs"
	"github.com/GregMSThompson/regexflow/internal/models"
)

type auditStore struct {
	client *firestore.Client
}

func NewAuditStore(client *firestore.Client) *auditStore {
	return &auditStore{client: client}
}

func (s *auditStore) collection(templateID string) *firestore.CollectionRef {
	return s.client.Collection("templates").Doc(templateID).Collection("audit")
}

func (s *auditStore) Append(ctx context.Context, e *models.AuditEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if _, err := s.collection(e.TemplateID).Doc(e.ID).Set(ctx, e); err != nil {
		return errs.NewDatabaseError("create", "failed to write audit entry", err)
	}
	return nil
}

func (s *auditStore) List(ctx context.Context, templateID string) ([]*models.AuditEntry, error) {
	docs, err := s.collection(templateID).OrderBy("createdAt", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list audit entries", err)
	}
	entries := make([]*models.AuditEntry, 0, len(docs))
	for _, d := range docs {
		var e models.AuditEntry
		if err := d.DataTo(&e); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse audit entry", err)
		}
		entries = append(entries, &e)
	}
	return entries, nil
}
