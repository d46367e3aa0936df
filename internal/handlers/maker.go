package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/regexflow/internal/dto"
	"github.com/GregMSThompson/regexflow/internal/middleware"
	"github.com/GregMSThompson/regexflow/internal/response"
)

type makerHandlers struct {
	ResponseHandler response.ResponseHandler
	TemplateSvc     TemplateService
	PatternSvc      PatternService
	InboxSvc        InboxService
}

func NewMakerHandlers(deps *Deps) *makerHandlers {
	return &makerHandlers{
		ResponseHandler: deps.ResponseHandler,
		TemplateSvc:     deps.TemplateSvc,
		PatternSvc:      deps.PatternSvc,
		InboxSvc:        deps.InboxSvc,
	}
}

func (h *makerHandlers) MakerRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/templates", h.ListMine)
	r.Post("/templates", h.Create)
	r.Get("/templates/check-duplicate", h.CheckDuplicate) // must be before /{id}
	r.Post("/templates/test", h.TestPattern)
	r.Get("/templates/{id}", h.Get)
	r.Put("/templates/{id}", h.Update)
	r.Delete("/templates/{id}", h.Delete)
	r.Post("/templates/{id}/submit", h.Submit)
	r.Get("/templates/{id}/history", h.History)

	r.Get("/unparsed-sms", h.ListUnparsed)
	r.Delete("/unparsed-sms/{id}", h.DeleteUnparsed)
	r.Post("/generate-template", h.Generate)
	return r
}

func (h *makerHandlers) ListMine(w http.ResponseWriter, r *http.Request) {
	templates, err := h.TemplateSvc.ListMine(r.Context(), middleware.UID(r.Context()))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, templates)
}

func (h *makerHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	tpl, err := h.TemplateSvc.Create(r.Context(), middleware.UID(r.Context()), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, tpl)
}

func (h *makerHandlers) Get(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.TemplateSvc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, tpl)
}

func (h *makerHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	tpl, err := h.TemplateSvc.Update(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, tpl)
}

func (h *makerHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.TemplateSvc.Delete(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *makerHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.TemplateSvc.Submit(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, tpl)
}

func (h *makerHandlers) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.TemplateSvc.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, entries)
}

func (h *makerHandlers) CheckDuplicate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.TemplateSvc.CheckDuplicate(r.Context(), q.Get("pattern"), q.Get("excludeId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, res)
}

func (h *makerHandlers) TestPattern(w http.ResponseWriter, r *http.Request) {
	testPattern(h.ResponseHandler, h.PatternSvc, w, r)
}

func (h *makerHandlers) ListUnparsed(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.InboxSvc.List(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, msgs)
}

func (h *makerHandlers) DeleteUnparsed(w http.ResponseWriter, r *http.Request) {
	if err := h.InboxSvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *makerHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.InboxSvc.Generate(r.Context(), req))
}

// testPattern is shared by the maker and checker routes; both run the same contract.
func testPattern(resp response.ResponseHandler, svc PatternService, w http.ResponseWriter, r *http.Request) {
	var req dto.PatternTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.HandleError(w, r, err)
		return
	}
	res, err := svc.Test(r.Context(), req)
	if err != nil {
		resp.HandleError(w, r, err)
		return
	}
	resp.WriteSuccess(w, r, http.StatusOK, res)
}
