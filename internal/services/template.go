package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GregMSThompson/regexflow/internal/dto"
	"github.com/GregMSThompson/regexflow/internal/errs"
	"github.com/GregMSThompson/regexflow/internal/events"
	"github.com/GregMSThompson/regexflow/internal/extract"
	"github.com/GregMSThompson/regexflow/internal/metrics"
	"github.com/GregMSThompson/regexflow/internal/models"
	"github.com/GregMSThompson/regexflow/pkg/logger"
)

type templateStore interface {
	Create(ctx context.Context, t *models.Template) error
	Get(ctx context.Context, id string) (*models.Template, error)
	Update(ctx context.Context, t *models.Template) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, uid string) ([]*models.Template, error)
	ListByStatus(ctx context.Context, statuses ...models.TemplateStatus) ([]*models.Template, error)
	ListReviewedBy(ctx context.Context, checker string) ([]*models.Template, error)
	FindLiveDuplicates(ctx context.Context, pattern, excludeID string) ([]*models.Template, error)
}

type auditStore interface {
	Append(ctx context.Context, e *models.AuditEntry) error
	List(ctx context.Context, templateID string) ([]*models.AuditEntry, error)
}

type patternValidator interface {
	Validate(pattern string) error
}

type templateService struct {
	store     templateStore
	audit     auditStore
	validator patternValidator
	events    events.Publisher
	metrics   *metrics.Metrics
	clockNow  func() time.Time
	newID     func() string
}

func NewTemplateService(store templateStore, audit auditStore, validator patternValidator, publisher events.Publisher, m *metrics.Metrics) *templateService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &templateService{
		store:     store,
		audit:     audit,
		validator: validator,
		events:    publisher,
		metrics:   m,
		clockNow:  time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// --- Maker operations ---

func (s *templateService) Create(ctx context.Context, uid string, req dto.TemplateRequest) (*models.Template, error) {
	log := logger.FromContext(ctx)

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	t := &models.Template{
		ID:          s.newID(),
		CreatedBy:   uid,
		BankName:    strings.TrimSpace(req.BankName),
		SmsType:     req.SmsType,
		Pattern:     req.Pattern,
		SampleSms:   req.SampleSms,
		Description: req.Description,
		Status:      models.StatusDraft,
	}
	if err := s.store.Create(ctx, t); err != nil {
		log.Error("failed to create template", "error", err)
		return nil, err
	}

	s.record(ctx, "", t, uid, "")
	log.Info("template created", "template_id", t.ID, "bank", t.BankName)
	return t, nil
}

// Update overwrites the editable fields of a DRAFT owned by uid.
func (s *templateService) Update(ctx context.Context, uid, id string, req dto.TemplateRequest) (*models.Template, error) {
	current, err := s.owned(ctx, uid, id, "You can only edit your own templates")
	if err != nil {
		return nil, err
	}
	if current.Status != models.StatusDraft {
		return nil, errs.NewInvalidActionError(string(current.Status), "Only DRAFT templates can be edited")
	}
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	next := *current
	next.BankName = strings.TrimSpace(req.BankName)
	next.SmsType = req.SmsType
	next.Pattern = req.Pattern
	next.SampleSms = req.SampleSms
	next.Description = req.Description
	if err := s.store.Update(ctx, &next); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("template updated", "template_id", id)
	return &next, nil
}

func (s *templateService) Delete(ctx context.Context, uid, id string) error {
	current, err := s.owned(ctx, uid, id, "You can only delete your own templates")
	if err != nil {
		return err
	}
	if current.Status != models.StatusDraft {
		return errs.NewInvalidActionError(string(current.Status), "Only DRAFT templates can be deleted")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("template deleted", "template_id", id)
	return nil
}

// Submit moves a DRAFT to PENDING_APPROVAL after re-checking for a live duplicate.
// The check and the write are not atomic.
func (s *templateService) Submit(ctx context.Context, uid, id string) (*models.Template, error) {
	current, err := s.owned(ctx, uid, id, "Only the creator can submit this template")
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(models.StatusPendingApproval) {
		return nil, errs.NewInvalidStateTransitionError(string(current.Status), string(models.StatusPendingApproval))
	}

	dup, err := s.CheckDuplicate(ctx, current.Pattern, current.ID)
	if err != nil {
		return nil, err
	}
	if dup.Exists {
		return nil, errs.NewDuplicatePatternError(dup.Message, dup.ExistingID, string(dup.Status))
	}

	return s.transition(ctx, uid, current, models.StatusPendingApproval, "", func(t *models.Template, now time.Time) {
		t.SubmittedAt = &now
	})
}

// --- Checker operations ---

func (s *templateService) Approve(ctx context.Context, uid, id, comments string) (*models.Template, error) {
	current, err := s.reviewable(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, uid, current, models.StatusActive, comments, func(t *models.Template, now time.Time) {
		t.ApprovedBy = uid
		t.ApprovedAt = &now
		t.ReviewedBy = uid
		t.ReviewedAt = &now
		t.ReviewComments = comments
	})
}

// Reject stores reason verbatim. A blank reason is refused before any state is read.
func (s *templateService) Reject(ctx context.Context, uid, id, reason string) (*models.Template, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, errs.NewValidationError("Rejection reason is required")
	}
	current, err := s.reviewable(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, uid, current, models.StatusRejected, reason, func(t *models.Template, now time.Time) {
		t.RejectionReason = reason
		t.ReviewedBy = uid
		t.ReviewedAt = &now
	})
}

func (s *templateService) Deprecate(ctx context.Context, uid, id string) (*models.Template, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, uid, current, models.StatusDeprecated, "", func(t *models.Template, now time.Time) {
		t.DeprecatedAt = &now
	})
}

// --- Queries ---

func (s *templateService) Get(ctx context.Context, id string) (*models.Template, error) {
	return s.store.Get(ctx, id)
}

func (s *templateService) ListMine(ctx context.Context, uid string) ([]*models.Template, error) {
	return s.store.ListByOwner(ctx, uid)
}

func (s *templateService) ListPending(ctx context.Context) ([]*models.Template, error) {
	return s.store.ListByStatus(ctx, models.StatusPendingApproval)
}

func (s *templateService) ListActive(ctx context.Context) ([]*models.Template, error) {
	return s.store.ListByStatus(ctx, models.StatusActive)
}

// ListReviewed returns templates reviewed by uid, or by any checker when all is set.
func (s *templateService) ListReviewed(ctx context.Context, uid string, all bool) ([]*models.Template, error) {
	if all {
		return s.store.ListByStatus(ctx, models.ReviewedStatuses...)
	}
	return s.store.ListReviewedBy(ctx, uid)
}

func (s *templateService) History(ctx context.Context, id string) ([]*models.AuditEntry, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.audit.List(ctx, id)
}

// CheckDuplicate reports whether a PENDING_APPROVAL or ACTIVE template other than excludeID
// already uses pattern. Drafts, rejected and deprecated templates never count.
func (s *templateService) CheckDuplicate(ctx context.Context, pattern, excludeID string) (dto.DuplicateCheckResponse, error) {
	if strings.TrimSpace(pattern) == "" {
		return dto.DuplicateCheckResponse{}, errs.NewValidationError("Regex pattern cannot be empty")
	}

	dups, err := s.store.FindLiveDuplicates(ctx, pattern, excludeID)
	if err != nil {
		return dto.DuplicateCheckResponse{}, err
	}
	if len(dups) == 0 {
		s.metrics.DuplicateChecks.WithLabelValues("unique").Inc()
		return dto.DuplicateCheckResponse{Exists: false}, nil
	}

	s.metrics.DuplicateChecks.WithLabelValues("duplicate").Inc()
	existing := dups[0]
	return dto.DuplicateCheckResponse{
		Exists:     true,
		ExistingID: existing.ID,
		Status:     existing.Status,
		Message: fmt.Sprintf("This regex pattern already exists for %s (%s) with status: %s",
			existing.BankName, existing.SmsType, existing.Status),
	}, nil
}

// --- Helpers ---

func (s *templateService) validateRequest(req dto.TemplateRequest) error {
	if strings.TrimSpace(req.BankName) == "" {
		return errs.NewValidationError("Bank name is required")
	}
	if !req.SmsType.Valid() {
		return errs.NewValidationError("SMS type must be one of DEBIT, CREDIT, BILL")
	}
	if err := s.validator.Validate(req.Pattern); err != nil {
		var pe *extract.PatternError
		if errors.As(err, &pe) {
			return errs.NewValidationError(pe.Message)
		}
		return errs.NewValidationError(err.Error())
	}
	return nil
}

func (s *templateService) owned(ctx context.Context, uid, id, msg string) (*models.Template, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.CreatedBy != uid {
		return nil, errs.NewForbiddenError(msg)
	}
	return t, nil
}

func (s *templateService) reviewable(ctx context.Context, uid, id string) (*models.Template, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.CreatedBy == uid {
		return nil, errs.NewInvalidActionError(string(t.Status), "checker cannot be the maker of the template")
	}
	return t, nil
}

// transition applies mutate to a copy of current and persists it only when the move is legal
// and the result is consistent. current is never modified.
func (s *templateService) transition(ctx context.Context, uid string, current *models.Template, to models.TemplateStatus,
	comments string, mutate func(t *models.Template, now time.Time)) (*models.Template, error) {
	log := logger.FromContext(ctx)

	if !current.Status.CanTransitionTo(to) {
		return nil, errs.NewInvalidStateTransitionError(string(current.Status), string(to))
	}

	next := *current
	next.Status = to
	mutate(&next, s.clockNow())
	if err := next.CheckInvariants(); err != nil {
		log.Error("template invariant violated", "template_id", next.ID, "error", err)
		return nil, err
	}
	if err := s.store.Update(ctx, &next); err != nil {
		log.Error("failed to persist transition", "template_id", next.ID, "to", to, "error", err)
		return nil, err
	}

	s.record(ctx, current.Status, &next, uid, comments)
	log.Info("template transitioned", "template_id", next.ID, "from", current.Status, "to", to)
	return &next, nil
}

// record writes the audit entry, metric and event for a completed transition.
// Failures here are logged; the transition itself has already been persisted.
func (s *templateService) record(ctx context.Context, from models.TemplateStatus, t *models.Template, uid, comments string) {
	log := logger.FromContext(ctx)
	now := s.clockNow()

	entry := &models.AuditEntry{
		ID:             s.newID(),
		TemplateID:     t.ID,
		PreviousStatus: from,
		NewStatus:      t.Status,
		Action:         models.ActionName(t.Status),
		Comments:       comments,
		PerformedBy:    uid,
		CreatedAt:      now,
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		log.Error("failed to write audit entry", "template_id", t.ID, "error", err)
	}

	fromLabel := string(from)
	if fromLabel == "" {
		fromLabel = "NONE"
	}
	s.metrics.TemplateTransitions.WithLabelValues(fromLabel, string(t.Status)).Inc()

	_ = s.events.PublishTemplateEvent(ctx, events.TemplateEvent{
		TemplateID:     t.ID,
		BankName:       t.BankName,
		PreviousStatus: from,
		Status:         t.Status,
		PerformedBy:    uid,
		OccurredAt:     now,
	})
}
