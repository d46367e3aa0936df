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

type unparsedStore struct {
	client *firestore.Client
}

func NewUnparsedStore(client *firestore.Client) *unparsedStore {
	return &unparsedStore{client: client}
}

func (s *unparsedStore) collection() *firestore.CollectionRef {
	return s.client.Collection("unparsed_messages")
}

func (s *unparsedStore) Create(ctx context.Context, m *models.UnparsedMessage) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if _, err := s.collection().Doc(m.ID).Set(ctx, m); err != nil {
		return errs.NewDatabaseError("create", "failed to queue unparsed message", err)
	}
	return nil
}

func (s *unparsedStore) Get(ctx context.Context, id string) (*models.UnparsedMessage, error) {
	doc, err := s.collection().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("SMS not found with ID: " + id)
		}
		return nil, errs.NewDatabaseError("read", "failed to get unparsed message", err)
	}
	var m models.UnparsedMessage
	if err := doc.DataTo(&m); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse unparsed message", err)
	}
	return &m, nil
}

func (s *unparsedStore) List(ctx context.Context) ([]*models.UnparsedMessage, error) {
	docs, err := s.collection().OrderBy("createdAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list unparsed messages", err)
	}
	out := make([]*models.UnparsedMessage, 0, len(docs))
	for _, d := range docs {
		var m models.UnparsedMessage
		if err := d.DataTo(&m); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse unparsed message", err)
		}
		out = append(out, &m)
	}
	return out, nil
}

func (s *unparsedStore) Delete(ctx context.Context, id string) error {
	if _, err := s.collection().Doc(id).Delete(ctx); err != nil {
		return errs.NewDatabaseError("delete", "failed to delete unparsed message", err)
	}
	return nil
}
