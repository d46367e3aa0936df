package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/GregMSThompson/regexflow/internal/dto"
	"github.com/GregMSThompson/regexflow/internal/errs"
	"github.com/GregMSThompson/regexflow/internal/models"
)

type stubTransactionService struct {
	lastUID    string
	lastPage   int
	lastSize   int
	lastFilter dto.TransactionQuery
	lastID     string
	err        error
}

func (s *stubTransactionService) List(_ context.Context, uid string, page, size int) (dto.TransactionPage, error) {
	s.lastUID, s.lastPage, s.lastSize = uid, page, size
	return dto.TransactionPage{Page: page, Size: size}, s.err
}

func (s *stubTransactionService) Filter(_ context.Context, uid string, q dto.TransactionQuery) (dto.TransactionPage, error) {
	s.lastUID, s.lastFilter = uid, q
	return dto.TransactionPage{}, s.err
}

func (s *stubTransactionService) Get(_ context.Context, uid, id string) (*models.Transaction, error) {
	s.lastUID, s.lastID = uid, id
	return &models.Transaction{TransactionID: id}, s.err
}

type stubSmsService struct {
	uid string
	req dto.SmsParseRequest
}

func (s *stubSmsService) Parse(_ context.Context, uid string, req dto.SmsParseRequest) (dto.SmsParseResponse, error) {
	s.uid, s.req = uid, req
	return dto.SmsParseResponse{ParseStatus: models.ParseNoMatch, RawSmsText: req.SmsText}, nil
}

func TestTransactionListDefaults(t *testing.T) {
	svc := &stubTransactionService{}
	routes := NewTransactionHandlers(&Deps{ResponseHandler: &stubResponseHandler{}, TransactionSvc: svc}).TransactionRoutes()

	serve(routes, http.MethodGet, "/transactions", "", "user-1")

	if svc.lastUID != "user-1" || svc.lastPage != 0 || svc.lastSize != dto.DefaultPageSize {
		t.Fatalf("unexpected list args uid=%s page=%d size=%d", svc.lastUID, svc.lastPage, svc.lastSize)
	}
}

func TestTransactionListBadPage(t *testing.T) {
	svc := &stubTransactionService{}
	resp := &stubResponseHandler{}
	routes := NewTransactionHandlers(&Deps{ResponseHandler: resp, TransactionSvc: svc}).TransactionRoutes()

	serve(routes, http.MethodGet, "/transactions?page=-1", "", "user-1")

	var ve *errs.ValidationError
	if !errors.As(resp.handleError, &ve) || svc.lastUID != "" {
		t.Fatalf("expected validation error before service call, got %v", resp.handleError)
	}
}

func TestTransactionFilterParams(t *testing.T) {
	svc := &stubTransactionService{}
	routes := NewTransactionHandlers(&Deps{ResponseHandler: &stubResponseHandler{}, TransactionSvc: svc}).TransactionRoutes()

	q := url.Values{}
	q.Set("bankName", "HDFC")
	q.Set("type", "debit")
	q.Set("minAmount", "100.50")
	q.Set("startDate", "2024-01-01")
	q.Set("size", "5")
	serve(routes, http.MethodGet, "/transactions/filter?"+q.Encode(), "", "user-1")

	f := svc.lastFilter
	if f.BankName == nil || *f.BankName != "HDFC" || f.Type == nil || *f.Type != models.TxDebit {
		t.Fatalf("unexpected filter %+v", f)
	}
	if f.MinAmount == nil || *f.MinAmount != 100.5 || f.MaxAmount != nil {
		t.Fatalf("unexpected amount bounds %+v", f)
	}
	if f.DateFrom == nil || *f.DateFrom != "2024-01-01" || f.DateTo != nil || f.Page != 0 || f.Size != 5 {
		t.Fatalf("unexpected date/page params %+v", f)
	}
}

func TestTransactionFilterBadAmount(t *testing.T) {
	svc := &stubTransactionService{}
	resp := &stubResponseHandler{}
	routes := NewTransactionHandlers(&Deps{ResponseHandler: resp, TransactionSvc: svc}).TransactionRoutes()

	serve(routes, http.MethodGet, "/transactions/filter?maxAmount=lots", "", "user-1")

	var ve *errs.ValidationError
	if !errors.As(resp.handleError, &ve) {
		t.Fatalf("expected validation error, got %v", resp.handleError)
	}
}

func TestTransactionGetAndParse(t *testing.T) {
	txSvc := &stubTransactionService{}
	smsSvc := &stubSmsService{}
	resp := &stubResponseHandler{}
	routes := NewTransactionHandlers(&Deps{ResponseHandler: resp, TransactionSvc: txSvc, SmsSvc: smsSvc}).TransactionRoutes()

	serve(routes, http.MethodGet, "/transactions/tx-9", "", "user-1")
	if txSvc.lastID != "tx-9" || txSvc.lastUID != "user-1" {
		t.Fatalf("unexpected get args %s/%s", txSvc.lastUID, txSvc.lastID)
	}

	serve(routes, http.MethodPost, "/sms/parse", `{"smsText":"Rs.500 debited","senderHeader":"HDFCBK"}`, "user-1")
	if smsSvc.uid != "user-1" || smsSvc.req.SmsText != "Rs.500 debited" {
		t.Fatalf("parse not forwarded: %+v", smsSvc)
	}
}
