// Package workflow drives the template lifecycle from the maker's and checker's side of the API.
package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/GregMSThompson/regexflow/internal/dto"
	"github.com/GregMSThompson/regexflow/internal/errs"
	"github.com/GregMSThompson/regexflow/internal/models"
	"github.com/GregMSThompson/regexflow/pkg/logger"
)

// API is the subset of the regexflow client the engine drives.
type API interface {
	CreateTemplate(ctx context.Context, req dto.TemplateRequest) (*models.Template, error)
	UpdateTemplate(ctx context.Context, id string, req dto.TemplateRequest) (*models.Template, error)
	DeleteTemplate(ctx context.Context, id string) error
	SubmitTemplate(ctx context.Context, id string) (*models.Template, error)
	ListMyTemplates(ctx context.Context) ([]*models.Template, error)
	CheckDuplicate(ctx context.Context, pattern, excludeID string) (dto.DuplicateCheckResponse, error)
	TestPattern(ctx context.Context, req dto.PatternTestRequest) (dto.PatternTestResult, error)
	TestPatternAsChecker(ctx context.Context, req dto.PatternTestRequest) (dto.PatternTestResult, error)
	Approve(ctx context.Context, id, comments string) (*models.Template, error)
	Reject(ctx context.Context, id, reason string) (*models.Template, error)
	Deprecate(ctx context.Context, id string) (*models.Template, error)
	DeleteUnparsed(ctx context.Context, id string) error
	GenerateTemplate(ctx context.Context, req dto.GenerateTemplateRequest) (dto.GeneratedTemplate, error)
}

// PartialSubmitError means a new template was created but the submit step failed.
// Template is the persisted DRAFT; submitting the same draft again retries only the submit half.
type PartialSubmitError struct {
	Template *models.Template
	Err      error
}

func (e *PartialSubmitError) Error() string {
	return fmt.Sprintf("template saved as draft %s but submission failed: %v", e.Template.ID, e.Err)
}

func (e *PartialSubmitError) Unwrap() error { return e.Err }

type Engine struct {
	api    API
	role   models.Role
	states *tracker
}

type Option func(*Engine)

// WithStateListener is called on every request state change.
func WithStateListener(fn func(Op, RequestState)) Option {
	return func(e *Engine) { e.states.notify = fn }
}

// NewEngine acts as role; role picks the pattern-test endpoint.
func NewEngine(api API, role models.Role, opts ...Option) *Engine {
	e := &Engine{
		api:    api,
		role:   role,
		states: &tracker{states: make(map[Op]RequestState)},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) State(op Op) RequestState {
	return e.states.get(op)
}

// run wraps one operation in its request state.
func (e *Engine) run(op Op, fn func() error) error {
	if err := e.states.begin(op); err != nil {
		return err
	}
	err := fn()
	e.states.finish(op, err)
	return err
}

// Edit returns an editable draft of t. Only DRAFT templates can be edited.
func (e *Engine) Edit(t *models.Template) (*Draft, error) {
	if t.Status != models.StatusDraft {
		return nil, errs.NewInvalidStateTransitionError(string(t.Status), string(models.StatusDraft))
	}
	return &Draft{
		ID:          t.ID,
		BankName:    t.BankName,
		SmsType:     t.SmsType,
		Pattern:     t.Pattern,
		SampleSms:   t.SampleSms,
		Description: t.Description,
	}, nil
}

// Generate fills d from the server's template generator using d's sample text.
func (e *Engine) Generate(ctx context.Context, d *Draft, senderHeader string) error {
	return e.run(OpGenerate, func() error {
		if strings.TrimSpace(d.SampleSms) == "" {
			return errs.NewValidationError("SMS text is required")
		}
		g, err := e.api.GenerateTemplate(ctx, dto.GenerateTemplateRequest{SmsText: d.SampleSms, SenderHeader: senderHeader})
		if err != nil {
			return err
		}
		if !g.Success {
			msg := g.ErrorMessage
			if msg == "" {
				msg = "Template generation failed"
			}
			return errs.NewValidationError(msg)
		}
		d.apply(g)
		return nil
	})
}

// TestPattern runs pattern against sample without persisting anything.
func (e *Engine) TestPattern(ctx context.Context, pattern, sample string) (dto.PatternTestResult, error) {
	var res dto.PatternTestResult
	err := e.run(OpTest, func() error {
		if strings.TrimSpace(pattern) == "" {
			return errs.NewValidationError("Regex pattern is required")
		}
		if strings.TrimSpace(sample) == "" {
			return errs.NewValidationError("Sample SMS is required")
		}
		req := dto.PatternTestRequest{Pattern: pattern, SampleSms: sample}
		var err error
		if e.role == models.RoleChecker {
			res, err = e.api.TestPatternAsChecker(ctx, req)
		} else {
			res, err = e.api.TestPattern(ctx, req)
		}
		return err
	})
	return res, err
}

// SaveDraft creates or updates d. When d was seeded from an inbox message, that message is
// removed after the first successful save; a failed removal is logged only.
func (e *Engine) SaveDraft(ctx context.Context, d *Draft) (*models.Template, error) {
	var saved *models.Template
	err := e.run(OpSave, func() error {
		if err := d.Validate(); err != nil {
			return err
		}
		var err error
		saved, err = e.persist(ctx, d)
		return err
	})
	return saved, err
}

// Submit validates d, refuses live duplicates, persists it and submits it for approval.
func (e *Engine) Submit(ctx context.Context, d *Draft) (*models.Template, error) {
	var submitted *models.Template
	err := e.run(OpSubmit, func() error {
		if err := d.Validate(); err != nil {
			return err
		}
		check, err := e.checkDuplicate(ctx, d.Pattern, d.ID)
		if err != nil {
			return err
		}
		if err := check.Err(); err != nil {
			return err
		}

		created := d.ID == ""
		saved, err := e.persist(ctx, d)
		if err != nil {
			return err
		}
		submitted, err = e.api.SubmitTemplate(ctx, saved.ID)
		if err != nil {
			if created {
				return &PartialSubmitError{Template: saved, Err: err}
			}
			return err
		}
		return nil
	})
	return submitted, err
}

func (e *Engine) persist(ctx context.Context, d *Draft) (*models.Template, error) {
	var (
		saved *models.Template
		err   error
	)
	if d.ID == "" {
		saved, err = e.api.CreateTemplate(ctx, d.request())
	} else {
		saved, err = e.api.UpdateTemplate(ctx, d.ID, d.request())
	}
	if err != nil {
		return nil, err
	}
	d.ID = saved.ID

	if d.SourceMessageID != "" {
		msgID := d.SourceMessageID
		d.SourceMessageID = ""
		if err := e.api.DeleteUnparsed(ctx, msgID); err != nil {
			logger.FromContext(ctx).Warn("inbox message not removed after save",
				"message_id", msgID, "template_id", saved.ID, "error", err)
		}
	}
	return saved, nil
}

// Delete removes a DRAFT template.
func (e *Engine) Delete(ctx context.Context, t *models.Template) error {
	return e.run(OpDelete, func() error {
		if t.Status != models.StatusDraft {
			return errs.NewInvalidActionError(string(t.Status), "Only DRAFT templates can be deleted")
		}
		return e.api.DeleteTemplate(ctx, t.ID)
	})
}

func (e *Engine) Approve(ctx context.Context, t *models.Template, comments string) (*models.Template, error) {
	return e.review(ctx, OpApprove, t, models.StatusActive, func() (*models.Template, error) {
		return e.api.Approve(ctx, t.ID, strings.TrimSpace(comments))
	})
}

// Reject requires a non-blank reason, which is sent as typed.
func (e *Engine) Reject(ctx context.Context, t *models.Template, reason string) (*models.Template, error) {
	return e.review(ctx, OpReject, t, models.StatusRejected, func() (*models.Template, error) {
		if strings.TrimSpace(reason) == "" {
			return nil, errs.NewValidationError("Rejection reason is required")
		}
		return e.api.Reject(ctx, t.ID, reason)
	})
}

func (e *Engine) Deprecate(ctx context.Context, t *models.Template) (*models.Template, error) {
	return e.review(ctx, OpDeprecate, t, models.StatusDeprecated, func() (*models.Template, error) {
		return e.api.Deprecate(ctx, t.ID)
	})
}

func (e *Engine) review(ctx context.Context, op Op, t *models.Template, to models.TemplateStatus, call func() (*models.Template, error)) (*models.Template, error) {
	var out *models.Template
	err := e.run(op, func() error {
		if !t.Status.CanTransitionTo(to) {
			return errs.NewInvalidStateTransitionError(string(t.Status), string(to))
		}
		var err error
		out, err = call()
		if err == nil {
			logger.FromContext(ctx).Info("template reviewed", "template_id", t.ID, "from", t.Status, "to", out.Status)
		}
		return err
	})
	return out, err
}
