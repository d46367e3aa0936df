package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/regexflow/internal/dto"
	"github.com/GregMSThompson/regexflow/internal/errs"
	"github.com/GregMSThompson/regexflow/internal/models"
)

// fieldCipher encrypts sensitive transaction fields before they reach Firestore.
type fieldCipher interface {
	KmsEncrypt(ctx context.Context, plaintext string) (string, error)
	KmsDecrypt(ctx context.Context, ciphertext string) (string, error)
}

type transactionStore struct {
	client *firestore.Client
	cipher fieldCipher
}

func NewTransactionStore(client *firestore.Client, cipher fieldCipher) *transactionStore {
	return &transactionStore{client: client, cipher: cipher}
}

func (s *transactionStore) txCollection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("transactions")
}

func (s *transactionStore) Create(ctx context.Context, uid string, tx *models.Transaction) error {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	stored := *tx
	if stored.AccountID != "" {
		enc, err := s.cipher.KmsEncrypt(ctx, stored.AccountID)
		if err != nil {
			return errs.NewEncryptionError("failed to encrypt account identifier", err)
		}
		stored.AccountID = enc
	}
	if _, err := s.txCollection(uid).Doc(tx.TransactionID).Set(ctx, stored); err != nil {
		return errs.NewDatabaseError("create", "failed to save transaction", err)
	}
	return nil
}

func (s *transactionStore) Get(ctx context.Context, uid, txID string) (*models.Transaction, error) {
	doc, err := s.txCollection(uid).Doc(txID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("Transaction not found with ID: " + txID)
		}
		return nil, errs.NewDatabaseError("read", "failed to get transaction", err)
	}
	return s.decode(ctx, doc)
}

// Query applies the equality and date filters in Firestore and the amount range in memory,
// then cuts the requested page. Results are newest transaction date first.
func (s *transactionStore) Query(ctx context.Context, uid string, q dto.TransactionQuery) (dto.TransactionPage, error) {
	fq := s.txCollection(uid).Query
	if q.BankName != nil {
		fq = fq.Where("bankName", "==", *q.BankName)
	}
	if q.Type != nil {
		fq = fq.Where("type", "==", string(*q.Type))
	}
	if q.DateFrom != nil {
		fq = fq.Where("transactionDate", ">=", *q.DateFrom)
	}
	if q.DateTo != nil {
		fq = fq.Where("transactionDate", "<=", *q.DateTo)
	}
	fq = fq.OrderBy("transactionDate", firestore.Desc).OrderBy("createdAt", firestore.Desc)

	docs, err := fq.Documents(ctx).GetAll()
	if err != nil {
		return dto.TransactionPage{}, errs.NewDatabaseError("read", "failed to query transactions", err)
	}

	matched := make([]*firestore.DocumentSnapshot, 0, len(docs))
	for _, d := range docs {
		amount, _ := d.Data()["amount"].(float64)
		if q.MinAmount != nil && amount < *q.MinAmount {
			continue
		}
		if q.MaxAmount != nil && amount > *q.MaxAmount {
			continue
		}
		matched = append(matched, d)
	}

	page := paginate(len(matched), q.Page, q.Size)
	content := make([]*models.Transaction, 0, page.end-page.start)
	for _, d := range matched[page.start:page.end] {
		tx, err := s.decode(ctx, d)
		if err != nil {
			return dto.TransactionPage{}, err
		}
		content = append(content, tx)
	}
	return dto.TransactionPage{
		Content:       content,
		Page:          page.number,
		Size:          page.size,
		TotalElements: len(matched),
		TotalPages:    page.total,
	}, nil
}

func (s *transactionStore) decode(ctx context.Context, doc *firestore.DocumentSnapshot) (*models.Transaction, error) {
	var tx models.Transaction
	if err := doc.DataTo(&tx); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse transaction data", err)
	}
	if tx.AccountID != "" {
		plain, err := s.cipher.KmsDecrypt(ctx, tx.AccountID)
		if err != nil {
			return nil, errs.NewEncryptionError("failed to decrypt account identifier", err)
		}
		tx.AccountID = plain
	}
	return &tx, nil
}

type pageBounds struct {
	number, size, total, start, end int
}

func paginate(count, page, size int) pageBounds {
	if size <= 0 {
		size = dto.DefaultPageSize
	}
	if page < 0 {
		page = 0
	}
	total := (count + size - 1) / size
	start := min(page*size, count)
	end := min(start+size, count)
	return pageBounds{number: page, size: size, total: total, start: start, end: end}
}
