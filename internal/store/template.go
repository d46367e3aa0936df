package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/regexflow/internal/errs"
	"github.com/GregMSThompson/regexflow/internal/models"
)

type templateStore struct {
	client *firestore.Client
}

func NewTemplateStore(client *firestore.Client) *templateStore {
	return &templateStore{client: client}
}

func (s *templateStore) collection() *firestore.CollectionRef {
	return s.client.Collection("templates")
}

func (s *templateStore) Create(ctx context.Context, t *models.Template) error {
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if _, err := s.collection().Doc(t.ID).Create(ctx, t); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errs.NewAlreadyExistsError("template already exists")
		}
		return errs.NewDatabaseError("create", "failed to create template", err)
	}
	return nil
}

func (s *templateStore) Get(ctx context.Context, id string) (*models.Template, error) {
	doc, err := s.collection().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("Template not found with ID: " + id)
		}
		return nil, errs.NewDatabaseError("read", "failed to get template", err)
	}
	var t models.Template
	if err := doc.DataTo(&t); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse template data", err)
	}
	return &t, nil
}

func (s *templateStore) Update(ctx context.Context, t *models.Template) error {
	t.UpdatedAt = time.Now()
	if _, err := s.collection().Doc(t.ID).Set(ctx, t); err != nil {
		return errs.NewDatabaseError("update", "failed to update template", err)
	}
	return nil
}

func (s *templateStore) Delete(ctx context.Context, id string) error {
	if _, err := s.collection().Doc(id).Delete(ctx); err != nil {
		return errs.NewDatabaseError("delete", "failed to delete template", err)
	}
	return nil
}

func (s *templateStore) ListByOwner(ctx context.Context, uid string) ([]*models.Template, error) {
	q := s.collection().Where("createdBy", "==", uid).OrderBy("createdAt", firestore.Desc)
	return s.list(ctx, q)
}

// ListByStatus returns templates in any of statuses, most recently updated first.
func (s *templateStore) ListByStatus(ctx context.Context, statuses ...models.TemplateStatus) ([]*models.Template, error) {
	q := s.collection().Where("status", "in", statusValues(statuses)).OrderBy("updatedAt", firestore.Desc)
	return s.list(ctx, q)
}

// ListReviewedBy returns the reviewed templates a checker approved or rejected.
func (s *templateStore) ListReviewedBy(ctx context.Context, checker string) ([]*models.Template, error) {
	q := s.collection().
		Where("reviewedBy", "==", checker).
		Where("status", "in", statusValues(models.ReviewedStatuses)).
		OrderBy("updatedAt", firestore.Desc)
	return s.list(ctx, q)
}

// FindLiveDuplicates returns templates in a live status whose pattern text equals pattern,
// skipping excludeID.
func (s *templateStore) FindLiveDuplicates(ctx context.Context, pattern, excludeID string) ([]*models.Template, error) {
	q := s.collection().
		Where("pattern", "==", pattern).
		Where("status", "in", statusValues(models.LiveStatuses)).
		OrderBy("updatedAt", firestore.Desc)
	all, err := s.list(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Template, 0, len(all))
	for _, t := range all {
		if excludeID != "" && t.ID == excludeID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *templateStore) list(ctx context.Context, q firestore.Query) ([]*models.Template, error) {
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list templates", err)
	}
	templates := make([]*models.Template, 0, len(docs))
	for _, d := range docs {
		var t models.Template
		if err := d.DataTo(&t); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse template data", err)
		}
		templates = append(templates, &t)
	}
	return templates, nil
}

func statusValues(statuses []models.TemplateStatus) []string {
	out := make([]string, len(statuses))
	for i, st := range statuses {
		out[i] = string(st)
	}
	return out
}
