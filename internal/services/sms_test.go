package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/GregMSThompson/regexflow/internal/dto"
	"github.com/GregMSThompson/regexflow/internal/errs"
	"github.com/GregMSThompson/regexflow/internal/extract"
	"github.com/GregMSThompson/regexflow/internal/metrics"
	"github.com/GregMSThompson/regexflow/internal/models"
	"github.com/GregMSThompson/regexflow/pkg/helpers"
)

type stubActiveTemplates struct {
	templates []*models.Template
}

func (s *stubActiveTemplates) ListActive(context.Context) ([]*models.Template, error) {
	return s.templates, nil
}

type memSmsLogStore struct {
	logs map[string]*models.SmsLog
}

func (s *memSmsLogStore) FindByHash(_ context.Context, uid, hash string) (*models.SmsLog, error) {
	return s.logs[uid+"/"+hash], nil
}

func (s *memSmsLogStore) Create(_ context.Context, uid string, l *models.SmsLog) error {
	s.logs[uid+"/"+l.TextHash] = l
	return nil
}

type memTxStore struct {
	txs map[string]*models.Transaction
}

func (s *memTxStore) Create(_ context.Context, uid string, tx *models.Transaction) error {
	s.txs[uid+"/"+tx.TransactionID] = tx
	return nil
}

func (s *memTxStore) Get(_ context.Context, uid, id string) (*models.Transaction, error) {
	tx, ok := s.txs[uid+"/"+id]
	if !ok {
		return nil, errs.NewNotFoundError("Transaction not found with ID: " + id)
	}
	return tx, nil
}

type memInbox struct {
	messages []*models.UnparsedMessage
}

func (s *memInbox) Create(_ context.Context, m *models.UnparsedMessage) error {
	s.messages = append(s.messages, m)
	return nil
}

type smsFixture struct {
	svc   *smsService
	logs  *memSmsLogStore
	txs   *memTxStore
	inbox *memInbox
}

func newSmsFixture(templates ...*models.Template) smsFixture {
	f := smsFixture{
		logs:  &memSmsLogStore{logs: map[string]*models.SmsLog{}},
		txs:   &memTxStore{txs: map[string]*models.Transaction{}},
		inbox: &memInbox{},
	}
	f.svc = NewSmsService(&stubActiveTemplates{templates: templates}, f.logs, f.txs, f.inbox, extract.New(0), metrics.New())
	f.svc.clockNow = func() time.Time { return time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC) }
	n := 0
	f.svc.newID = func() string {
		n++
		return "id-" + string(rune('a'+n))
	}
	return f
}

func activeTemplate(id, bank string, smsType models.SmsType, pattern string) *models.Template {
	return &models.Template{ID: id, BankName: bank, SmsType: smsType, Pattern: pattern, Status: models.StatusActive}
}

func TestSmsServiceParseSuccess(t *testing.T) {
	tpl := activeTemplate("t1", "HDFC", models.SmsDebit,
		`Rs\.(?<amount>[\d,]+(?:\.\d+)?) debited on (?<date>\d{2}-\d{2}-\d{4}) at (?<merchant>\w+)`)
	f := newSmsFixture(tpl)

	resp, err := f.svc.Parse(helpers.TestCtx(), "user-1", dto.SmsParseRequest{SmsText: "Rs.1,250.50 debited on 05-01-2024 at Amazon"})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if resp.ParseStatus != models.ParseSuccess || resp.Transaction == nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	tx := resp.Transaction
	if tx.Amount != 1250.5 || tx.Date != "2024-01-05" || tx.Type != models.TxDebit || tx.BankName != "HDFC" || tx.MerchantOrPayee != "Amazon" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
	if tx.TemplateID != "t1" || tx.MessageID == "" {
		t.Fatalf("transaction not linked: %+v", tx)
	}
	if len(f.inbox.messages) != 0 {
		t.Fatalf("matched sms must not reach the inbox")
	}
}

func TestSmsServiceParseBestMatch(t *testing.T) {
	loose := activeTemplate("loose", "HDFC", models.SmsDebit, `debited`)
	rich := activeTemplate("rich", "HDFC", models.SmsDebit, `Rs\.(?<amount>\d+) debited.*Bal Rs\.(?<balance>\d+)`)
	f := newSmsFixture(loose, rich)

	resp, err := f.svc.Parse(helpers.TestCtx(), "user-1", dto.SmsParseRequest{SmsText: "Rs.500 debited. Bal Rs.900"})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if resp.Transaction == nil || resp.Transaction.TemplateID != "rich" {
		t.Fatalf("expected richest template to win, got %+v", resp.Transaction)
	}
	if resp.Transaction.Balance == nil || *resp.Transaction.Balance != 900 {
		t.Fatalf("balance not extracted: %+v", resp.Transaction)
	}
}

func TestSmsServiceParseNoMatchQueuesInbox(t *testing.T) {
	f := newSmsFixture()

	resp, err := f.svc.Parse(helpers.TestCtx(), "user-1", dto.SmsParseRequest{SmsText: "Rs.500 debited", SenderHeader: "HDFCBK"})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if resp.ParseStatus != models.ParseNoMatch || resp.ErrorMessage != "No active templates available" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(f.inbox.messages) != 1 || f.inbox.messages[0].UploadedBy != "user-1" || f.inbox.messages[0].SenderHeader != "HDFCBK" {
		t.Fatalf("expected message queued in inbox, got %+v", f.inbox.messages)
	}
}

func TestSmsServiceParseDuplicateUpload(t *testing.T) {
	f := newSmsFixture()
	ctx := helpers.TestCtx()
	req := dto.SmsParseRequest{SmsText: "Rs.500 debited"}

	if _, err := f.svc.Parse(ctx, "user-1", req); err != nil {
		t.Fatalf("first Parse returned error: %v", err)
	}
	resp, err := f.svc.Parse(ctx, "user-1", req)
	if err != nil {
		t.Fatalf("second Parse returned error: %v", err)
	}
	if !strings.HasPrefix(resp.ErrorMessage, "SMS already exists. ") || resp.ParseStatus != models.ParseNoMatch {
		t.Fatalf("unexpected duplicate response: %+v", resp)
	}
	if len(f.inbox.messages) != 1 {
		t.Fatalf("duplicate upload must not queue again, got %d", len(f.inbox.messages))
	}

	// A different user uploading the same text is parsed independently.
	if _, err := f.svc.Parse(ctx, "user-2", req); err != nil {
		t.Fatalf("Parse for user-2 returned error: %v", err)
	}
	if len(f.inbox.messages) != 2 {
		t.Fatalf("expected second inbox entry for another user")
	}
}

func TestSmsServiceParseDuplicateReturnsTransaction(t *testing.T) {
	f := newSmsFixture(activeTemplate("t1", "SBI", models.SmsCredit, `credited (?<amount>\d+)`))
	ctx := helpers.TestCtx()
	req := dto.SmsParseRequest{SmsText: "credited 700"}

	first, err := f.svc.Parse(ctx, "user-1", req)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	second, err := f.svc.Parse(ctx, "user-1", req)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if second.Transaction == nil || second.Transaction.TransactionID != first.Transaction.TransactionID {
		t.Fatalf("expected the stored transaction, got %+v", second)
	}
	if len(f.txs.txs) != 1 {
		t.Fatalf("duplicate upload must not create another transaction")
	}
}

func TestSmsServiceParsePartial(t *testing.T) {
	f := newSmsFixture(activeTemplate("t1", "AXIS", models.SmsBill, `paid to (?<payee>\w+)`))

	resp, err := f.svc.Parse(helpers.TestCtx(), "user-1", dto.SmsParseRequest{SmsText: "paid to Tata"})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if resp.ParseStatus != models.ParsePartial || resp.Transaction == nil {
		t.Fatalf("expected partial transaction, got %+v", resp)
	}
	if resp.Transaction.Type != models.TxDebit || resp.Transaction.Date != "2025-02-10" {
		t.Fatalf("unexpected partial transaction: %+v", resp.Transaction)
	}
}

func TestParseHelpers(t *testing.T) {
	if d, ok := parseAmount("Rs.12,000.50"); !ok || d.String() != "12000.5" {
		t.Fatalf("parseAmount = %v %v", d, ok)
	}
	if _, ok := parseAmount("n/a"); ok {
		t.Fatalf("expected no amount")
	}

	for _, raw := range []string{"05-01-2024", "05/01/2024", "2024-01-05", "05-Jan-2024", "05 Jan 2024", "05.01.2024"} {
		d, ok := parseDate(raw)
		if !ok || d.Format(txDateLayout) != "2024-01-05" {
			t.Fatalf("parseDate(%q) = %v %v", raw, d, ok)
		}
	}

	if got := transactionType("Cr", models.SmsDebit); got != models.TxCredit {
		t.Fatalf("captured CR should win, got %s", got)
	}
	if got := transactionType("", models.SmsBill); got != models.TxDebit {
		t.Fatalf("bill should map to debit, got %s", got)
	}

	if got := lookup(map[string]string{"RefNo": "X1"}, aliasRef...); got != "X1" {
		t.Fatalf("lookup should be case-insensitive, got %q", got)
	}
}
