package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/regexflow/internal/dto"
	"github.com/GregMSThompson/regexflow/internal/errs"
	"github.com/GregMSThompson/regexflow/internal/extract"
	"github.com/GregMSThompson/regexflow/internal/metrics"
	"github.com/GregMSThompson/regexflow/internal/models"
	"github.com/GregMSThompson/regexflow/pkg/logger"
)

const txDateLayout = "2006-01-02"

var dateLayouts = []string{
	"02-01-2006",
	"02/01/2006",
	"2006-01-02",
	"02-Jan-2006",
	"02 Jan 2006",
	"02.01.2006",
}

var (
	aliasAmount   = []string{"amount", "amt", "value", "rupees", "rs"}
	aliasBalance  = []string{"balance", "bal", "availBal", "availableBalance"}
	aliasBank     = []string{"bank", "bankName"}
	aliasAccount  = []string{"account", "accountId", "accountNumber", "accNo"}
	aliasMerchant = []string{"merchant", "payee", "merchantName", "beneficiary", "to", "merchantOrPayee"}
	aliasMode     = []string{"mode", "transactionMode", "channel"}
	aliasRef      = []string{"ref", "refNo", "referenceNumber", "refNum", "txnRef"}
	aliasDate     = []string{"date", "transactionDate", "txnDate", "dt"}
	aliasType     = []string{"type", "transactionType", "txnType"}
)

var nonAmountChars = regexp.MustCompile(`[^0-9.]`)

type activeTemplateSource interface {
	ListActive(ctx context.Context) ([]*models.Template, error)
}

type smsLogStore interface {
	FindByHash(ctx context.Context, uid, hash string) (*models.SmsLog, error)
	Create(ctx context.Context, uid string, l *models.SmsLog) error
}

type parsedTxStore interface {
	Create(ctx context.Context, uid string, tx *models.Transaction) error
	Get(ctx context.Context, uid, txID string) (*models.Transaction, error)
}

type inboxWriter interface {
	Create(ctx context.Context, m *models.UnparsedMessage) error
}

type smsEngine interface {
	Test(pattern, text string) (extract.Result, error)
	Score(pattern, text string) float64
}

type smsService struct {
	templates activeTemplateSource
	logs      smsLogStore
	txs       parsedTxStore
	inbox     inboxWriter
	engine    smsEngine
	metrics   *metrics.Metrics
	clockNow  func() time.Time
	newID     func() string
}

func NewSmsService(templates activeTemplateSource, logs smsLogStore, txs parsedTxStore, inbox inboxWriter, engine smsEngine, m *metrics.Metrics) *smsService {
	return &smsService{
		templates: templates,
		logs:      logs,
		txs:       txs,
		inbox:     inbox,
		engine:    engine,
		metrics:   m,
		clockNow:  time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// parseOutcome is the result of applying the best active template to one message.
type parseOutcome struct {
	status   models.ParseStatus
	template *models.Template
	fields   map[string]string
	errMsg   string
}

// Parse applies the best-scoring ACTIVE template to an uploaded SMS. Messages no template
// matches are queued in the maker inbox. Re-uploading identical text returns the earlier result.
func (s *smsService) Parse(ctx context.Context, uid string, req dto.SmsParseRequest) (dto.SmsParseResponse, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(req.SmsText) == "" {
		return dto.SmsParseResponse{}, errs.NewValidationError("SMS text is required")
	}

	hash := textHash(req.SmsText)
	existing, err := s.logs.FindByHash(ctx, uid, hash)
	if err != nil {
		return dto.SmsParseResponse{}, err
	}
	if existing != nil {
		log.Info("duplicate sms upload", "sms_id", existing.ID)
		return s.existingResponse(ctx, uid, existing)
	}

	templates, err := s.templates.ListActive(ctx)
	if err != nil {
		return dto.SmsParseResponse{}, err
	}
	outcome := s.bestMatch(ctx, req.SmsText, templates)

	smsLog := &models.SmsLog{
		ID:           s.newID(),
		TextHash:     hash,
		RawText:      req.SmsText,
		SenderHeader: req.SenderHeader,
		ParseStatus:  outcome.status,
		ErrorMessage: outcome.errMsg,
		CreatedAt:    s.clockNow(),
	}
	if outcome.template != nil {
		smsLog.TemplateID = outcome.template.ID
	}

	resp := dto.SmsParseResponse{
		ParseStatus:  outcome.status,
		RawSmsText:   req.SmsText,
		ErrorMessage: outcome.errMsg,
	}

	switch outcome.status {
	case models.ParseSuccess, models.ParsePartial:
		tx := s.buildTransaction(ctx, outcome)
		tx.MessageID = smsLog.ID
		if err := s.txs.Create(ctx, uid, tx); err != nil {
			return dto.SmsParseResponse{}, err
		}
		smsLog.TransactionID = tx.TransactionID
		resp.Transaction = tx
	default:
		msg := &models.UnparsedMessage{
			ID:           smsLog.ID,
			SenderHeader: req.SenderHeader,
			RawText:      req.SmsText,
			UploadedBy:   uid,
			LastError:    outcome.errMsg,
			CreatedAt:    smsLog.CreatedAt,
		}
		if err := s.inbox.Create(ctx, msg); err != nil {
			return dto.SmsParseResponse{}, err
		}
	}

	if err := s.logs.Create(ctx, uid, smsLog); err != nil {
		return dto.SmsParseResponse{}, err
	}

	s.metrics.SmsParsed.WithLabelValues(string(outcome.status)).Inc()
	log.Info("sms parsed", "sms_id", smsLog.ID, "status", outcome.status, "template_id", smsLog.TemplateID)
	return resp, nil
}

func (s *smsService) existingResponse(ctx context.Context, uid string, l *models.SmsLog) (dto.SmsParseResponse, error) {
	if l.TransactionID != "" {
		tx, err := s.txs.Get(ctx, uid, l.TransactionID)
		if err != nil {
			return dto.SmsParseResponse{}, err
		}
		return dto.SmsParseResponse{ParseStatus: tx.ParseStatus, Transaction: tx, RawSmsText: l.RawText}, nil
	}
	return dto.SmsParseResponse{
		ParseStatus:  l.ParseStatus,
		RawSmsText:   l.RawText,
		ErrorMessage: "SMS already exists. " + l.ErrorMessage,
	}, nil
}

func (s *smsService) bestMatch(ctx context.Context, text string, templates []*models.Template) parseOutcome {
	if len(templates) == 0 {
		return parseOutcome{status: models.ParseNoMatch, errMsg: "No active templates available"}
	}

	var best *models.Template
	bestScore := 0.0
	for _, t := range templates {
		score := s.engine.Score(t.Pattern, text)
		if score > bestScore {
			best, bestScore = t, score
		}
	}
	if best == nil {
		return parseOutcome{status: models.ParseNoMatch, errMsg: "No matching template found for this SMS"}
	}

	res, err := s.engine.Test(best.Pattern, text)
	if err != nil {
		logger.FromContext(ctx).Warn("template failed during parse", "template_id", best.ID, "error", err)
		return parseOutcome{status: models.ParseError, template: best, errMsg: "Error parsing SMS: " + err.Error()}
	}
	if !res.Matched {
		return parseOutcome{status: models.ParseNoMatch, errMsg: "SMS did not match the template pattern"}
	}

	out := parseOutcome{status: models.ParseSuccess, template: best, fields: res.Fields}
	if lookup(res.Fields, aliasAmount...) == "" && lookup(res.Fields, aliasBalance...) == "" {
		out.status = models.ParsePartial
		out.errMsg = "Unable to extract financial amounts"
	}
	return out
}

func (s *smsService) buildTransaction(ctx context.Context, o parseOutcome) *models.Transaction {
	log := logger.FromContext(ctx)
	f := o.fields

	tx := &models.Transaction{
		TransactionID:   s.newID(),
		Type:            transactionType(lookup(f, aliasType...), o.template.SmsType),
		BankName:        o.template.BankName,
		AccountID:       lookup(f, aliasAccount...),
		MerchantOrPayee: lookup(f, aliasMerchant...),
		Mode:            lookup(f, aliasMode...),
		ReferenceNumber: lookup(f, aliasRef...),
		TemplateID:      o.template.ID,
		ParseStatus:     o.status,
		ExtractedFields: f,
		CreatedAt:       s.clockNow(),
	}
	if bank := lookup(f, aliasBank...); bank != "" {
		tx.BankName = bank
	}
	if amount, ok := parseAmount(lookup(f, aliasAmount...)); ok {
		tx.Amount = amount.InexactFloat64()
	}
	if balance, ok := parseAmount(lookup(f, aliasBalance...)); ok {
		v := balance.InexactFloat64()
		tx.Balance = &v
	}

	raw := lookup(f, aliasDate...)
	date, ok := parseDate(raw)
	if !ok {
		if raw != "" {
			log.Warn("unparseable transaction date", "value", raw)
		}
		date = s.clockNow()
	}
	tx.Date = date.Format(txDateLayout)
	return tx
}

// lookup returns the first non-empty field whose name matches one of keys, case-insensitively.
func lookup(fields map[string]string, keys ...string) string {
	for _, k := range keys {
		for name, v := range fields {
			if strings.EqualFold(name, k) && v != "" {
				return v
			}
		}
	}
	return ""
}

func parseAmount(raw string) (decimal.Decimal, bool) {
	cleaned := nonAmountChars.ReplaceAllString(raw, "")
	cleaned = strings.Trim(cleaned, ".")
	if cleaned == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// transactionType prefers a captured type marker and falls back to the template's SMS type.
// Bill payments are money out.
func transactionType(captured string, smsType models.SmsType) models.TransactionType {
	upper := strings.ToUpper(captured)
	switch {
	case strings.Contains(upper, "DEBIT"), strings.Contains(upper, "DR"):
		return models.TxDebit
	case strings.Contains(upper, "CREDIT"), strings.Contains(upper, "CR"):
		return models.TxCredit
	}
	if smsType == models.SmsCredit {
		return models.TxCredit
	}
	return models.TxDebit
}

func textHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
