package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/GregMSThompson/regexflow/internal/dto"
	"github.com/GregMSThompson/regexflow/internal/errs"
	"github.com/GregMSThompson/regexflow/internal/events"
	"github.com/GregMSThompson/regexflow/internal/extract"
	"github.com/GregMSThompson/regexflow/internal/metrics"
	"github.com/GregMSThompson/regexflow/internal/models"
	"github.com/GregMSThompson/regexflow/pkg/helpers"
)

type memTemplateStore struct {
	items       map[string]models.Template
	updateCalls int
	updateErr   error
}

func newMemTemplateStore(seed ...models.Template) *memTemplateStore {
	s := &memTemplateStore{items: map[string]models.Template{}}
	for _, t := range seed {
		s.items[t.ID] = t
	}
	return s
}

func (s *memTemplateStore) Create(_ context.Context, t *models.Template) error {
	s.items[t.ID] = *t
	return nil
}

func (s *memTemplateStore) Get(_ context.Context, id string) (*models.Template, error) {
	t, ok := s.items[id]
	if !ok {
		return nil, errs.NewNotFoundError("Template not found with ID: " + id)
	}
	return &t, nil
}

func (s *memTemplateStore) Update(_ context.Context, t *models.Template) error {
	s.updateCalls++
	if s.updateErr != nil {
		return s.updateErr
	}
	s.items[t.ID] = *t
	return nil
}

func (s *memTemplateStore) Delete(_ context.Context, id string) error {
	delete(s.items, id)
	return nil
}

func (s *memTemplateStore) filter(keep func(models.Template) bool) []*models.Template {
	var out []*models.Template
	for _, t := range s.items {
		if keep(t) {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memTemplateStore) ListByOwner(_ context.Context, uid string) ([]*models.Template, error) {
	return s.filter(func(t models.Template) bool { return t.CreatedBy == uid }), nil
}

func (s *memTemplateStore) ListByStatus(_ context.Context, statuses ...models.TemplateStatus) ([]*models.Template, error) {
	return s.filter(func(t models.Template) bool {
		for _, st := range statuses {
			if t.Status == st {
				return true
			}
		}
		return false
	}), nil
}

func (s *memTemplateStore) ListReviewedBy(_ context.Context, checker string) ([]*models.Template, error) {
	return s.filter(func(t models.Template) bool { return t.ReviewedBy == checker }), nil
}

func (s *memTemplateStore) FindLiveDuplicates(_ context.Context, pattern, excludeID string) ([]*models.Template, error) {
	return s.filter(func(t models.Template) bool {
		return t.Pattern == pattern && t.Status.IsLive() && t.ID != excludeID
	}), nil
}

type memAuditStore struct {
	entries []*models.AuditEntry
}

func (s *memAuditStore) Append(_ context.Context, e *models.AuditEntry) error {
	s.entries = append(s.entries, e)
	return nil
}

func (s *memAuditStore) List(_ context.Context, templateID string) ([]*models.AuditEntry, error) {
	var out []*models.AuditEntry
	for _, e := range s.entries {
		if e.TemplateID == templateID {
			out = append(out, e)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	events []events.TemplateEvent
}

func (p *recordingPublisher) PublishTemplateEvent(_ context.Context, ev events.TemplateEvent) error {
	p.events = append(p.events, ev)
	return nil
}

type templateFixture struct {
	svc    *templateService
	store  *memTemplateStore
	audit  *memAuditStore
	events *recordingPublisher
}

func newTemplateFixture(seed ...models.Template) templateFixture {
	f := templateFixture{
		store:  newMemTemplateStore(seed...),
		audit:  &memAuditStore{},
		events: &recordingPublisher{},
	}
	f.svc = NewTemplateService(f.store, f.audit, extract.New(0), f.events, metrics.New())
	f.svc.clockNow = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	f.svc.newID = func() string { return "tpl-new" }
	return f
}

const debitPattern = `Rs\.(?<amount>\d+) debited`

func draft(id, owner string) models.Template {
	return models.Template{ID: id, CreatedBy: owner, BankName: "HDFC", SmsType: models.SmsDebit, Pattern: debitPattern, Status: models.StatusDraft}
}

func TestTemplateServiceCreate(t *testing.T) {
	f := newTemplateFixture()

	tpl, err := f.svc.Create(helpers.TestCtx(), "maker-1", dto.TemplateRequest{
		BankName: " HDFC ",
		SmsType:  models.SmsDebit,
		Pattern:  debitPattern,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if tpl.ID != "tpl-new" || tpl.Status != models.StatusDraft || tpl.CreatedBy != "maker-1" || tpl.BankName != "HDFC" {
		t.Fatalf("unexpected template: %+v", tpl)
	}
	if len(f.audit.entries) != 1 || f.audit.entries[0].Action != "Created" {
		t.Fatalf("expected Created audit entry, got %+v", f.audit.entries)
	}
	if len(f.events.events) != 1 || f.events.events[0].Status != models.StatusDraft {
		t.Fatalf("expected one DRAFT event, got %+v", f.events.events)
	}
}

func TestTemplateServiceCreateValidation(t *testing.T) {
	cases := []struct {
		name string
		req  dto.TemplateRequest
	}{
		{"missing bank", dto.TemplateRequest{SmsType: models.SmsDebit, Pattern: debitPattern}},
		{"bad type", dto.TemplateRequest{BankName: "HDFC", SmsType: "LOAN", Pattern: debitPattern}},
		{"empty pattern", dto.TemplateRequest{BankName: "HDFC", SmsType: models.SmsDebit}},
		{"malformed pattern", dto.TemplateRequest{BankName: "HDFC", SmsType: models.SmsDebit, Pattern: "(?<amount>"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newTemplateFixture()
			_, err := f.svc.Create(helpers.TestCtx(), "maker-1", tc.req)
			var ve *errs.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(f.store.items) != 0 {
				t.Fatalf("nothing should be stored")
			}
		})
	}
}

func TestTemplateServiceSubmit(t *testing.T) {
	f := newTemplateFixture(draft("t1", "maker-1"))

	got, err := f.svc.Submit(helpers.TestCtx(), "maker-1", "t1")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if got.Status != models.StatusPendingApproval || got.SubmittedAt == nil {
		t.Fatalf("unexpected submitted template: %+v", got)
	}
	if f.store.items["t1"].Status != models.StatusPendingApproval {
		t.Fatalf("store not updated")
	}
	last := f.audit.entries[len(f.audit.entries)-1]
	if last.PreviousStatus != models.StatusDraft || last.Action != "Submitted for Approval" {
		t.Fatalf("unexpected audit entry: %+v", last)
	}
}

func TestTemplateServiceSubmitDuplicate(t *testing.T) {
	live := draft("t0", "maker-2")
	live.Status = models.StatusPendingApproval
	f := newTemplateFixture(live, draft("t1", "maker-1"))

	_, err := f.svc.Submit(helpers.TestCtx(), "maker-1", "t1")
	var dup *errs.DuplicatePatternError
	if !errors.As(err, &dup) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if dup.ExistingStatus != string(models.StatusPendingApproval) || dup.ExistingID != "t0" {
		t.Fatalf("unexpected duplicate details: %+v", dup)
	}
	if want := "This regex pattern already exists for HDFC (DEBIT) with status: PENDING_APPROVAL"; dup.Message != want {
		t.Fatalf("message = %q, want %q", dup.Message, want)
	}
	if f.store.items["t1"].Status != models.StatusDraft || f.store.updateCalls != 0 {
		t.Fatalf("template should be unchanged")
	}
}

func TestTemplateServiceSubmitIgnoresNonLiveDuplicates(t *testing.T) {
	rejected := draft("t0", "maker-2")
	rejected.Status = models.StatusRejected
	rejected.RejectionReason = "bad"
	other := draft("t2", "maker-2")
	f := newTemplateFixture(rejected, other, draft("t1", "maker-1"))

	if _, err := f.svc.Submit(helpers.TestCtx(), "maker-1", "t1"); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
}

func TestTemplateServiceSubmitGuards(t *testing.T) {
	pending := draft("t2", "maker-1")
	pending.Status = models.StatusPendingApproval
	f := newTemplateFixture(draft("t1", "maker-1"), pending)

	_, err := f.svc.Submit(helpers.TestCtx(), "maker-2", "t1")
	var fe *errs.ForbiddenError
	if !errors.As(err, &fe) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}

	_, err = f.svc.Submit(helpers.TestCtx(), "maker-1", "t2")
	var ie *errs.InvalidStateTransitionError
	if !errors.As(err, &ie) || ie.From != string(models.StatusPendingApproval) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	_, err = f.svc.Submit(helpers.TestCtx(), "maker-1", "missing")
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func pendingTemplate() models.Template {
	t := draft("t1", "maker-1")
	t.Status = models.StatusPendingApproval
	return t
}

func TestTemplateServiceApprove(t *testing.T) {
	f := newTemplateFixture(pendingTemplate())

	got, err := f.svc.Approve(helpers.TestCtx(), "checker-1", "t1", "looks good")
	if err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}
	if got.Status != models.StatusActive || got.ApprovedBy != "checker-1" || got.ApprovedAt == nil || got.ReviewComments != "looks good" {
		t.Fatalf("unexpected approved template: %+v", got)
	}
	if err := got.CheckInvariants(); err != nil {
		t.Fatalf("invariants broken: %v", err)
	}
	if ev := f.events.events[len(f.events.events)-1]; ev.Status != models.StatusActive || ev.PreviousStatus != models.StatusPendingApproval {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestTemplateServiceApproveOwnTemplate(t *testing.T) {
	f := newTemplateFixture(pendingTemplate())

	_, err := f.svc.Approve(helpers.TestCtx(), "maker-1", "t1", "")
	var ie *errs.InvalidStateTransitionError
	if !errors.As(err, &ie) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if f.store.updateCalls != 0 {
		t.Fatalf("store must not be written")
	}
}

func TestTemplateServiceApproveFromDraft(t *testing.T) {
	f := newTemplateFixture(draft("t1", "maker-1"))

	_, err := f.svc.Approve(helpers.TestCtx(), "checker-1", "t1", "")
	var ie *errs.InvalidStateTransitionError
	if !errors.As(err, &ie) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if ie.Message != "cannot transition from DRAFT to ACTIVE" {
		t.Fatalf("unexpected message %q", ie.Message)
	}
	if f.store.items["t1"].Status != models.StatusDraft {
		t.Fatalf("template should remain DRAFT")
	}
}

func TestTemplateServiceReject(t *testing.T) {
	f := newTemplateFixture(pendingTemplate())

	_, err := f.svc.Reject(helpers.TestCtx(), "checker-1", "t1", "   ")
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error for blank reason, got %v", err)
	}
	if f.store.items["t1"].Status != models.StatusPendingApproval {
		t.Fatalf("blank reason must not change state")
	}

	reason := "  amount group misses decimals "
	got, err := f.svc.Reject(helpers.TestCtx(), "checker-1", "t1", reason)
	if err != nil {
		t.Fatalf("Reject returned error: %v", err)
	}
	if got.Status != models.StatusRejected || got.RejectionReason != reason {
		t.Fatalf("reason not stored verbatim: %+v", got)
	}
	if got.ApprovedBy != "" || got.ReviewedBy != "checker-1" {
		t.Fatalf("unexpected reviewer fields: %+v", got)
	}

	// REJECTED is terminal.
	_, err = f.svc.Submit(helpers.TestCtx(), "maker-1", "t1")
	var ie *errs.InvalidStateTransitionError
	if !errors.As(err, &ie) {
		t.Fatalf("expected invalid transition from REJECTED, got %v", err)
	}
}

func TestTemplateServiceDeprecate(t *testing.T) {
	f := newTemplateFixture(pendingTemplate())
	ctx := helpers.TestCtx()

	if _, err := f.svc.Deprecate(ctx, "checker-1", "t1"); err == nil {
		t.Fatalf("expected error deprecating a pending template")
	}
	if _, err := f.svc.Approve(ctx, "checker-1", "t1", ""); err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}
	got, err := f.svc.Deprecate(ctx, "checker-2", "t1")
	if err != nil {
		t.Fatalf("Deprecate returned error: %v", err)
	}
	if got.Status != models.StatusDeprecated || got.DeprecatedAt == nil || got.ApprovedBy != "checker-1" {
		t.Fatalf("unexpected deprecated template: %+v", got)
	}

	history, err := f.svc.History(ctx, "t1")
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(history) != 2 || history[1].Action != "Deprecated" {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestTemplateServiceUpdateAndDelete(t *testing.T) {
	active := draft("t2", "maker-1")
	active.Status = models.StatusActive
	active.ApprovedBy = "checker-1"
	now := time.Now()
	active.ApprovedAt = &now
	f := newTemplateFixture(draft("t1", "maker-1"), active)
	ctx := helpers.TestCtx()

	got, err := f.svc.Update(ctx, "maker-1", "t1", dto.TemplateRequest{BankName: "SBI", SmsType: models.SmsCredit, Pattern: `credited (?<amount>\d+)`})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if got.BankName != "SBI" || got.Status != models.StatusDraft {
		t.Fatalf("unexpected updated template: %+v", got)
	}

	_, err = f.svc.Update(ctx, "maker-1", "t2", dto.TemplateRequest{BankName: "SBI", SmsType: models.SmsCredit, Pattern: debitPattern})
	var ie *errs.InvalidStateTransitionError
	if !errors.As(err, &ie) {
		t.Fatalf("expected invalid transition editing ACTIVE, got %v", err)
	}

	if err := f.svc.Delete(ctx, "maker-1", "t2"); !errors.As(err, &ie) {
		t.Fatalf("expected invalid transition deleting ACTIVE, got %v", err)
	}
	if err := f.svc.Delete(ctx, "maker-2", "t1"); err == nil {
		t.Fatalf("expected forbidden deleting another maker's draft")
	}
	if err := f.svc.Delete(ctx, "maker-1", "t1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok := f.store.items["t1"]; ok {
		t.Fatalf("draft was not deleted")
	}
}

func TestTemplateServiceCheckDuplicate(t *testing.T) {
	active := draft("t1", "maker-1")
	active.Status = models.StatusActive
	f := newTemplateFixture(active)
	ctx := helpers.TestCtx()

	res, err := f.svc.CheckDuplicate(ctx, debitPattern, "")
	if err != nil {
		t.Fatalf("CheckDuplicate returned error: %v", err)
	}
	if !res.Exists || res.Status != models.StatusActive {
		t.Fatalf("expected active duplicate, got %+v", res)
	}

	res, err = f.svc.CheckDuplicate(ctx, debitPattern, "t1")
	if err != nil || res.Exists {
		t.Fatalf("excluded template must not count: %+v %v", res, err)
	}

	if _, err := f.svc.CheckDuplicate(ctx, "", ""); err == nil {
		t.Fatalf("expected validation error for empty pattern")
	}
}

func TestTemplateServicePersistFailureLeavesStateUnchanged(t *testing.T) {
	f := newTemplateFixture(pendingTemplate())
	f.store.updateErr = errs.NewDatabaseError("update", "failed to update template", errors.New("unavailable"))

	if _, err := f.svc.Approve(helpers.TestCtx(), "checker-1", "t1", ""); err == nil {
		t.Fatalf("expected error")
	}
	if f.store.items["t1"].Status != models.StatusPendingApproval || len(f.audit.entries) != 0 {
		t.Fatalf("failed transition must not be recorded")
	}
}
