// Package txview narrows and labels a page of transactions for display.
package txview

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/regexflow/internal/models"
)

const dayLayout = "2006-01-02"

type Tab string

const (
	TabAll      Tab = "All"
	TabIncome   Tab = "Income"
	TabExpenses Tab = "Expenses"
)

func ParseTab(s string) (Tab, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return TabAll, nil
	case "income":
		return TabIncome, nil
	case "expenses", "expense":
		return TabExpenses, nil
	}
	return "", fmt.Errorf("unknown tab %q (want all, income or expenses)", s)
}

// Filter is applied tab first, then date range, then search. Nil bounds are open.
type Filter struct {
	Tab    Tab
	From   *time.Time
	To     *time.Time
	Search string
}

// ParseDay reads a YYYY-MM-DD bound. Blank input yields nil.
func ParseDay(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(dayLayout, s)
	if err != nil {
		return nil, fmt.Errorf("date %q must be YYYY-MM-DD", s)
	}
	return &d, nil
}

// Apply returns the transactions that pass f, in their original order.
func Apply(txs []*models.Transaction, f Filter) []*models.Transaction {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	var end time.Time
	if f.To != nil {
		// the end day is inclusive up to its last instant
		end = f.To.Add(24*time.Hour - time.Nanosecond)
	}

	out := make([]*models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !matchesTab(tx, f.Tab) {
			continue
		}
		if f.From != nil || f.To != nil {
			day, err := time.Parse(dayLayout, tx.Date)
			if err != nil {
				continue
			}
			if f.From != nil && day.Before(*f.From) {
				continue
			}
			if f.To != nil && day.After(end) {
				continue
			}
		}
		if term != "" && !matchesSearch(tx, term) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func matchesTab(tx *models.Transaction, tab Tab) bool {
	switch tab {
	case TabIncome:
		return tx.Type == models.TxCredit
	case TabExpenses:
		return tx.Type == models.TxDebit
	default:
		return true
	}
}

func matchesSearch(tx *models.Transaction, term string) bool {
	for _, field := range []string{tx.MerchantOrPayee, string(tx.Type), tx.BankName} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Category labels a transaction by mode, then merchant, then reference number.
// The first rule that matches wins.
func Category(tx *models.Transaction) string {
	if mode := strings.ToUpper(tx.Mode); mode != "" {
		switch {
		case strings.Contains(mode, "UPI"):
			return "UPI"
		case containsAny(mode, "NEFT", "RTGS", "IMPS"):
			return "Transfer"
		case strings.Contains(mode, "ATM"):
			return "ATM"
		case containsAny(mode, "CARD", "DEBIT"):
			return "Card"
		}
	}
	if merchant := strings.ToLower(tx.MerchantOrPayee); merchant != "" {
		switch {
		case strings.Contains(merchant, "salary"):
			return "Salary"
		case containsAny(merchant, "amazon", "flipkart", "shop"):
			return "Shopping"
		case containsAny(merchant, "electric", "bill"):
			return "Bill Payment"
		case strings.Contains(merchant, "credit"):
			return "Credit"
		}
	}
	if ref := strings.ToUpper(tx.ReferenceNumber); ref != "" {
		switch {
		case strings.Contains(ref, "UPI"):
			return "UPI"
		case strings.Contains(ref, "NEFT"):
			return "Transfer"
		}
	}
	if tx.Type == models.TxCredit {
		return "Received"
	}
	return "Transfer"
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

type Summary struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Saving  decimal.Decimal
}

// Summarize totals credits and debits in decimal to avoid float drift across many rows.
func Summarize(txs []*models.Transaction) Summary {
	var s Summary
	for _, tx := range txs {
		amt := decimal.NewFromFloat(tx.Amount)
		switch tx.Type {
		case models.TxCredit:
			s.Income = s.Income.Add(amt)
		case models.TxDebit:
			s.Expense = s.Expense.Add(amt)
		}
	}
	s.Saving = s.Income.Sub(s.Expense)
	return s
}
