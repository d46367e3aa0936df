package workflow

import (
	"context"
	"fmt"

	"github.com/GregMSThompson/regexflow/internal/errs"
	"github.com/GregMSThompson/regexflow/internal/models"
	"github.com/GregMSThompson/regexflow/pkg/logger"
)

type CheckMode int

const (
	// AuthoritativeCheck means the server's live-duplicate lookup answered.
	AuthoritativeCheck CheckMode = iota
	// BestEffortCheck means the lookup failed and only the maker's own templates were scanned.
	// A negative result cannot see other makers' live templates.
	BestEffortCheck
)

func (m CheckMode) String() string {
	if m == BestEffortCheck {
		return "best-effort"
	}
	return "authoritative"
}

type DuplicateCheck struct {
	Mode       CheckMode
	Exists     bool
	ExistingID string
	Status     models.TemplateStatus
	Message    string
}

// Err returns the submission refusal for a positive check, or nil.
func (c DuplicateCheck) Err() error {
	if !c.Exists {
		return nil
	}
	return errs.NewDuplicatePatternError(c.Message, c.ExistingID, string(c.Status))
}

// CheckDuplicate reports whether another live template already uses pattern.
func (e *Engine) CheckDuplicate(ctx context.Context, pattern, excludeID string) (DuplicateCheck, error) {
	if err := e.states.begin(OpDuplicateCheck); err != nil {
		return DuplicateCheck{}, err
	}
	check, err := e.checkDuplicate(ctx, pattern, excludeID)
	e.states.finish(OpDuplicateCheck, err)
	return check, err
}

func (e *Engine) checkDuplicate(ctx context.Context, pattern, excludeID string) (DuplicateCheck, error) {
	if pattern == "" {
		return DuplicateCheck{}, errs.NewValidationError("Regex pattern is required")
	}

	res, err := e.api.CheckDuplicate(ctx, pattern, excludeID)
	if err == nil {
		return DuplicateCheck{
			Mode:       AuthoritativeCheck,
			Exists:     res.Exists,
			ExistingID: res.ExistingID,
			Status:     res.Status,
			Message:    res.Message,
		}, nil
	}

	log := logger.FromContext(ctx)
	log.Warn("duplicate lookup unavailable, scanning own templates", "error", err)

	mine, listErr := e.api.ListMyTemplates(ctx)
	if listErr != nil {
		return DuplicateCheck{}, listErr
	}
	check := DuplicateCheck{Mode: BestEffortCheck}
	for _, t := range mine {
		if t.ID == excludeID || t.Pattern != pattern || !t.Status.IsLive() {
			continue
		}
		check.Exists = true
		check.ExistingID = t.ID
		check.Status = t.Status
		check.Message = fmt.Sprintf("This regex pattern already exists for %s (%s) with status: %s", t.BankName, t.SmsType, t.Status)
		break
	}
	return check, nil
}
