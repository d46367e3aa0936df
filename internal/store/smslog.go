package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/regexflow/internal/errs"
	"github.com/GregMSThompson/regexflow/internal/models"
)

type smsLogStore struct {
	client *firestore.Client
}

func NewSmsLogStore(client *firestore.Client) *smsLogStore {
	return &smsLogStore{client: client}
}

func (s *smsLogStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("sms_logs")
}

// FindByHash returns the log for a previously uploaded identical text, or nil.
func (s *smsLogStore) FindByHash(ctx context.Context, uid, hash string) (*models.SmsLog, error) {
	docs, err := s.collection(uid).Where("textHash", "==", hash).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to look up sms log", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	var l models.SmsLog
	if err := docs[0].DataTo(&l); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse sms log", err)
	}
	return &l, nil
}

func (s *smsLogStore) Create(ctx context.Context, uid string, l *models.SmsLog) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	if _, err := s.collection(uid).Doc(l.ID).Set(ctx, l); err != nil {
		return errs.NewDatabaseError("create", "failed to save sms log", err)
	}
	return nil
}
