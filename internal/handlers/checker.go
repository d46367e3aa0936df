package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/regexflow/internal/dto"
	"github.com/GregMSThompson/regexflow/internal/middleware"
	"github.com/GregMSThompson/regexflow/internal/response"
)

type checkerHandlers struct {
	ResponseHandler response.ResponseHandler
	TemplateSvc     TemplateService
	PatternSvc      PatternService
}

func NewCheckerHandlers(deps *Deps) *checkerHandlers {
	return &checkerHandlers{
		ResponseHandler: deps.ResponseHandler,
		TemplateSvc:     deps.TemplateSvc,
		PatternSvc:      deps.PatternSvc,
	}
}

func (h *checkerHandlers) CheckerRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/templates/pending", h.ListPending) // fixed paths before /{id}
	r.Get("/templates/reviewed", h.ListReviewed)
	r.Get("/templates/active", h.ListActive)
	r.Post("/templates/test", h.TestPattern)
	r.Get("/templates/{id}", h.Get)
	r.Get("/templates/{id}/history", h.History)
	r.Post("/templates/{id}/approve", h.Approve)
	r.Post("/templates/{id}/reject", h.Reject)
	r.Post("/templates/{id}/deprecate", h.Deprecate)
	return r
}

func (h *checkerHandlers) ListPending(w http.ResponseWriter, r *http.Request) {
	templates, err := h.TemplateSvc.ListPending(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, templates)
}

// ListReviewed returns the caller's reviews, or every checker's with ?all=true.
func (h *checkerHandlers) ListReviewed(w http.ResponseWriter, r *http.Request) {
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	templates, err := h.TemplateSvc.ListReviewed(r.Context(), middleware.UID(r.Context()), all)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, templates)
}

func (h *checkerHandlers) ListActive(w http.ResponseWriter, r *http.Request) {
	templates, err := h.TemplateSvc.ListActive(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, templates)
}

func (h *checkerHandlers) Get(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.TemplateSvc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, tpl)
}

func (h *checkerHandlers) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.TemplateSvc.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, entries)
}

func (h *checkerHandlers) Approve(w http.ResponseWriter, r *http.Request) {
	var req dto.ApprovalRequest
	// Comments are optional, so an empty body is accepted.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	tpl, err := h.TemplateSvc.Approve(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "id"), req.Comments)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, tpl)
}

func (h *checkerHandlers) Reject(w http.ResponseWriter, r *http.Request) {
	var req dto.RejectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	tpl, err := h.TemplateSvc.Reject(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, tpl)
}

func (h *checkerHandlers) Deprecate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.TemplateSvc.Deprecate(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, tpl)
}

func (h *checkerHandlers) TestPattern(w http.ResponseWriter, r *http.Request) {
	testPattern(h.ResponseHandler, h.PatternSvc, w, r)
}
