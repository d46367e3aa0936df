package workflow

import (
	"strings"

	"github.com/GregMSThompson/regexflow/internal/dto"
	"github.com/GregMSThompson/regexflow/internal/errs"
	"github.com/GregMSThompson/regexflow/internal/models"
)

// Draft is the maker's in-memory copy of a template. ID is empty until the first save.
// SourceMessageID names the inbox message the draft was seeded from, if any.
type Draft struct {
	ID              string
	BankName        string
	SmsType         models.SmsType
	Pattern         string
	SampleSms       string
	Description     string
	SourceMessageID string
}

// NewDraftFromMessage seeds a draft with an unparsed message's text.
func NewDraftFromMessage(m *models.UnparsedMessage) *Draft {
	return &Draft{
		SmsType:         models.SmsDebit,
		SampleSms:       m.RawText,
		SourceMessageID: m.ID,
	}
}

func (d *Draft) Validate() error {
	if strings.TrimSpace(d.BankName) == "" {
		return errs.NewValidationError("Bank name is required")
	}
	if strings.TrimSpace(d.Pattern) == "" {
		return errs.NewValidationError("Regex pattern is required")
	}
	if d.SmsType != "" && !d.SmsType.Valid() {
		return errs.NewValidationError("SMS type must be DEBIT, CREDIT or BILL")
	}
	return nil
}

func (d *Draft) request() dto.TemplateRequest {
	smsType := d.SmsType
	if smsType == "" {
		smsType = models.SmsDebit
	}
	return dto.TemplateRequest{
		BankName:    strings.TrimSpace(d.BankName),
		SmsType:     smsType,
		Pattern:     d.Pattern,
		SampleSms:   d.SampleSms,
		Description: d.Description,
	}
}

func (d *Draft) apply(g dto.GeneratedTemplate) {
	d.BankName = g.BankName
	if g.SmsType != "" {
		d.SmsType = g.SmsType
	}
	d.Pattern = g.Pattern
	d.Description = g.Description
	if g.SampleSms != "" {
		d.SampleSms = g.SampleSms
	}
}
