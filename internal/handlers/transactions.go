package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/regexflow/internal/dto"
	"github.com/GregMSThompson/regexflow/internal/errs"
	"github.com/GregMSThompson/regexflow/internal/middleware"
	"github.com/GregMSThompson/regexflow/internal/models"
	"github.com/GregMSThompson/regexflow/internal/response"
	"github.com/GregMSThompson/regexflow/pkg/helpers"
)

type transactionHandlers struct {
	ResponseHandler response.ResponseHandler
	SmsSvc          SmsService
	TransactionSvc  TransactionService
}

func NewTransactionHandlers(deps *Deps) *transactionHandlers {
	return &transactionHandlers{
		ResponseHandler: deps.ResponseHandler,
		SmsSvc:          deps.SmsSvc,
		TransactionSvc:  deps.TransactionSvc,
	}
}

func (h *transactionHandlers) TransactionRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/sms/parse", h.ParseSms)
	r.Get("/transactions", h.List)
	r.Get("/transactions/filter", h.Filter) // must be before /{id}
	r.Get("/transactions/{id}", h.Get)
	return r
}

func (h *transactionHandlers) ParseSms(w http.ResponseWriter, r *http.Request) {
	var req dto.SmsParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	res, err := h.SmsSvc.Parse(r.Context(), middleware.UID(r.Context()), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, res)
}

func (h *transactionHandlers) List(w http.ResponseWriter, r *http.Request) {
	page, size, err := pageParams(r.URL.Query())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	res, err := h.TransactionSvc.List(r.Context(), middleware.UID(r.Context()), page, size)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, res)
}

func (h *transactionHandlers) Filter(w http.ResponseWriter, r *http.Request) {
	q, err := filterQuery(r.URL.Query())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	res, err := h.TransactionSvc.Filter(r.Context(), middleware.UID(r.Context()), q)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, res)
}

func (h *transactionHandlers) Get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.TransactionSvc.Get(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, tx)
}

func pageParams(v url.Values) (int, int, error) {
	page, size := 0, dto.DefaultPageSize
	if s := v.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, 0, errs.NewValidationError("page must be a non-negative integer")
		}
		page = n
	}
	if s := v.Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return 0, 0, errs.NewValidationError("size must be a positive integer")
		}
		size = n
	}
	return page, size, nil
}

// filterQuery reads the advanced filter. Absent or blank parameters do not filter.
func filterQuery(v url.Values) (dto.TransactionQuery, error) {
	page, size, err := pageParams(v)
	if err != nil {
		return dto.TransactionQuery{}, err
	}
	q := dto.TransactionQuery{
		BankName: helpers.NonEmpty(strings.TrimSpace(v.Get("bankName"))),
		DateFrom: helpers.NonEmpty(v.Get("startDate")),
		DateTo:   helpers.NonEmpty(v.Get("endDate")),
		Page:     page,
		Size:     size,
	}
	if t := strings.ToUpper(v.Get("type")); t != "" {
		tt := models.TransactionType(t)
		q.Type = &tt
	}
	if q.MinAmount, err = amountParam(v, "minAmount"); err != nil {
		return dto.TransactionQuery{}, err
	}
	if q.MaxAmount, err = amountParam(v, "maxAmount"); err != nil {
		return dto.TransactionQuery{}, err
	}
	return q, nil
}

func amountParam(v url.Values, name string) (*float64, error) {
	s := strings.TrimSpace(v.Get(name))
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errs.NewValidationError(name + " must be a number")
	}
	f := d.InexactFloat64()
	return &f, nil
}
