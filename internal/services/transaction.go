package services

import (
	"context"
	"time"

	"github.com/GregMSThompson/regexflow/internal/dto"
	"github.com/GregMSThompson/regexflow/internal/errs"
	"github.com/GregMSThompson/regexflow/internal/models"
)

type transactionQueryStore interface {
	Query(ctx context.Context, uid string, q dto.TransactionQuery) (dto.TransactionPage, error)
	parsedTxStore
}

type transactionService struct {
	store transactionQueryStore
}

func NewTransactionService(store transactionQueryStore) *transactionService {
	return &transactionService{store: store}
}

// List returns the user's transactions newest first, one page at a time.
func (s *transactionService) List(ctx context.Context, uid string, page, size int) (dto.TransactionPage, error) {
	return s.store.Query(ctx, uid, dto.TransactionQuery{Page: page, Size: size})
}

// Filter runs the advanced server-side filter. Bounds are validated before querying.
func (s *transactionService) Filter(ctx context.Context, uid string, q dto.TransactionQuery) (dto.TransactionPage, error) {
	if q.Type != nil && *q.Type != models.TxCredit && *q.Type != models.TxDebit {
		return dto.TransactionPage{}, errs.NewValidationError("transaction type must be CREDIT or DEBIT")
	}
	for _, d := range []*string{q.DateFrom, q.DateTo} {
		if d == nil {
			continue
		}
		if _, err := time.Parse(txDateLayout, *d); err != nil {
			return dto.TransactionPage{}, errs.NewValidationError("dates must use YYYY-MM-DD")
		}
	}
	if q.DateFrom != nil && q.DateTo != nil && *q.DateFrom > *q.DateTo {
		return dto.TransactionPage{}, errs.NewValidationError("startDate must not be after endDate")
	}
	if q.MinAmount != nil && q.MaxAmount != nil && *q.MinAmount > *q.MaxAmount {
		return dto.TransactionPage{}, errs.NewValidationError("minAmount must not exceed maxAmount")
	}
	return s.store.Query(ctx, uid, q)
}

func (s *transactionService) Get(ctx context.Context, uid, id string) (*models.Transaction, error) {
	return s.store.Get(ctx, uid, id)
}
