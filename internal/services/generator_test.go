package services

import (
	"context"
	"errors"
	"testing"

	"github.com/GregMSThompson/regexflow/internal/dto"
	"github.com/GregMSThompson/regexflow/internal/extract"
	"github.com/GregMSThompson/regexflow/internal/models"
	"github.com/GregMSThompson/regexflow/pkg/helpers"
)

type stubVertex struct {
	text  string
	err   error
	calls int
}

func (s *stubVertex) GenerateContent(_ context.Context, _ dto.VertexGenerateRequest) (dto.VertexGenerateResponse, error) {
	s.calls++
	return dto.VertexGenerateResponse{Text: s.text}, s.err
}

func TestGeneratorHeuristicDebit(t *testing.T) {
	engine := extract.New(0)
	svc := NewGeneratorService(engine, nil)
	sms := "Rs.500 debited from A/c XX1234 on 05-01-2024. Avl Bal Rs.12,000.50"

	got := svc.Generate(helpers.TestCtx(), sms, "VM-HDFCBK")
	if !got.Success {
		t.Fatalf("generation failed: %s", got.ErrorMessage)
	}
	if got.BankName != "Vmhdfcbk" || got.SmsType != models.SmsDebit || got.Source != "heuristic" {
		t.Fatalf("unexpected generated fields: %+v", got)
	}
	if got.Description != "Auto-generated template for Vmhdfcbk debit transactions" {
		t.Fatalf("unexpected description %q", got.Description)
	}

	res, err := engine.Test(got.Pattern, sms)
	if err != nil || !res.Matched {
		t.Fatalf("generated pattern %q does not match sample: %v", got.Pattern, err)
	}
	want := map[string]string{"amount": "500", "balance": "12,000.50", "accountId": "XX1234", "date": "05-01-2024"}
	for k, v := range want {
		if res.Fields[k] != v {
			t.Fatalf("field %s = %q, want %q (pattern %q)", k, res.Fields[k], v, got.Pattern)
		}
	}
}

func TestGeneratorHeuristicMerchant(t *testing.T) {
	engine := extract.New(0)
	svc := NewGeneratorService(engine, nil)
	sms := "Rs.250 paid to Swiggy Foods on 03/02/2024 Ref 4567891234567"

	got := svc.Generate(helpers.TestCtx(), sms, "")
	res, err := engine.Test(got.Pattern, sms)
	if err != nil || !res.Matched {
		t.Fatalf("generated pattern %q does not match sample: %v", got.Pattern, err)
	}
	if res.Fields["merchantOrPayee"] != "Swiggy Foods" || res.Fields["referenceNumber"] != "4567891234567" {
		t.Fatalf("unexpected fields %+v", res.Fields)
	}
	if got.BankName != "UnknownBank" {
		t.Fatalf("expected UnknownBank, got %q", got.BankName)
	}
}

func TestDetectSmsTypePrecedence(t *testing.T) {
	cases := map[string]models.SmsType{
		"Rs.100 credited to your account":     models.SmsCredit,
		"credit card bill payment debited":    models.SmsCredit,
		"Rs.100 withdrawn at ATM":             models.SmsDebit,
		"Your electricity bill is due":        models.SmsBill,
		"Your OTP for login is 123456":        models.SmsDebit,
	}
	for text, want := range cases {
		if got := detectSmsType(text); got != want {
			t.Fatalf("detectSmsType(%q) = %s, want %s", text, got, want)
		}
	}
}

func TestDetectBankName(t *testing.T) {
	if got := detectBankName("Dear customer", "AX-ICICIB"); got != "Axicicib" {
		t.Fatalf("header bank = %q", got)
	}
	if got := detectBankName("Your SBI account was debited", "1"); got != "SBI" {
		t.Fatalf("keyword bank = %q", got)
	}
	if got := detectBankName("debited", "9"); got != "UnknownBank" {
		t.Fatalf("fallback bank = %q", got)
	}
}

func TestGeneratorVertexSuggestion(t *testing.T) {
	engine := extract.New(0)
	sms := "Rs.500 debited"

	vertex := &stubVertex{text: "```regex\nRs\\.(?<amount>\\d+) debited\n```"}
	got := NewGeneratorService(engine, vertex).Generate(helpers.TestCtx(), sms, "HDFC")
	if got.Source != "vertex" || got.Pattern != `Rs\.(?<amount>\d+) debited` {
		t.Fatalf("expected vertex pattern, got %+v", got)
	}

	vertex = &stubVertex{text: `credited (?<amount>\d+)`}
	got = NewGeneratorService(engine, vertex).Generate(helpers.TestCtx(), sms, "HDFC")
	if got.Source != "heuristic" {
		t.Fatalf("non-matching suggestion must fall back to heuristic, got %+v", got)
	}

	vertex = &stubVertex{err: errors.New("quota")}
	got = NewGeneratorService(engine, vertex).Generate(helpers.TestCtx(), sms, "HDFC")
	if !got.Success || got.Source != "heuristic" || vertex.calls != 1 {
		t.Fatalf("vertex failure must fall back to heuristic, got %+v", got)
	}
}

func TestGeneratorEmptyText(t *testing.T) {
	got := NewGeneratorService(extract.New(0), nil).Generate(helpers.TestCtx(), "  ", "HDFC")
	if got.Success || got.ErrorMessage == "" {
		t.Fatalf("expected failure for empty text, got %+v", got)
	}
}
