package regexflowclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/regexflow/internal/dto"
	"github.com/GregMSThompson/regexflow/internal/models"
)

// TransactionFilter is the server-side advanced filter. Zero values do not filter.
type TransactionFilter struct {
	BankName  string
	Type      models.TransactionType
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
	Page      int
	Size      int
}

func (f TransactionFilter) values() url.Values {
	q := pageValues(f.Page, f.Size)
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("bankName", f.BankName)
	set("type", string(f.Type))
	set("startDate", f.StartDate)
	set("endDate", f.EndDate)
	if f.MinAmount != nil {
		q.Set("minAmount", f.MinAmount.String())
	}
	if f.MaxAmount != nil {
		q.Set("maxAmount", f.MaxAmount.String())
	}
	return q
}

func pageValues(page, size int) url.Values {
	q := url.Values{"page": {strconv.Itoa(page)}}
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	return q
}

func (c *Client) ParseSms(ctx context.Context, req dto.SmsParseRequest) (dto.SmsParseResponse, error) {
	var out dto.SmsParseResponse
	err := c.do(ctx, http.MethodPost, "/user/sms/parse", nil, req, &out)
	return out, err
}

func (c *Client) ListTransactions(ctx context.Context, page, size int) (dto.TransactionPage, error) {
	var out dto.TransactionPage
	err := c.do(ctx, http.MethodGet, "/user/transactions", pageValues(page, size), nil, &out)
	return out, err
}

func (c *Client) FilterTransactions(ctx context.Context, f TransactionFilter) (dto.TransactionPage, error) {
	var out dto.TransactionPage
	err := c.do(ctx, http.MethodGet, "/user/transactions/filter", f.values(), nil, &out)
	return out, err
}

func (c *Client) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	out := new(models.Transaction)
	if err := c.do(ctx, http.MethodGet, "/user/transactions/"+url.PathEscape(id), nil, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Account endpoints.

func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/users", nil, req, nil)
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	out := new(models.User)
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}
