package regexflowclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/GregMSThompson/regexflow/internal/dto"
	"github.com/GregMSThompson/regexflow/internal/models"
)

func templatePath(scope, id string) string {
	return "/" + scope + "/templates/" + url.PathEscape(id)
}

// Maker endpoints.

func (c *Client) ListMyTemplates(ctx context.Context) ([]*models.Template, error) {
	var out []*models.Template
	err := c.do(ctx, http.MethodGet, "/maker/templates", nil, nil, &out)
	return out, err
}

func (c *Client) CreateTemplate(ctx context.Context, req dto.TemplateRequest) (*models.Template, error) {
	out := new(models.Template)
	if err := c.do(ctx, http.MethodPost, "/maker/templates", nil, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	out := new(models.Template)
	if err := c.do(ctx, http.MethodGet, templatePath("maker", id), nil, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateTemplate(ctx context.Context, id string, req dto.TemplateRequest) (*models.Template, error) {
	out := new(models.Template)
	if err := c.do(ctx, http.MethodPut, templatePath("maker", id), nil, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteTemplate(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, templatePath("maker", id), nil, nil, nil)
}

func (c *Client) SubmitTemplate(ctx context.Context, id string) (*models.Template, error) {
	out := new(models.Template)
	if err := c.do(ctx, http.MethodPost, templatePath("maker", id)+"/submit", nil, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) TemplateHistory(ctx context.Context, id string) ([]*models.AuditEntry, error) {
	var out []*models.AuditEntry
	err := c.do(ctx, http.MethodGet, templatePath("maker", id)+"/history", nil, nil, &out)
	return out, err
}

// CheckDuplicate asks the server whether pattern is already live, ignoring excludeID.
func (c *Client) CheckDuplicate(ctx context.Context, pattern, excludeID string) (dto.DuplicateCheckResponse, error) {
	q := url.Values{"pattern": {pattern}}
	if excludeID != "" {
		q.Set("excludeId", excludeID)
	}
	var out dto.DuplicateCheckResponse
	err := c.do(ctx, http.MethodGet, "/maker/templates/check-duplicate", q, nil, &out)
	return out, err
}

// TestPattern runs a pattern test through the maker endpoint.
func (c *Client) TestPattern(ctx context.Context, req dto.PatternTestRequest) (dto.PatternTestResult, error) {
	return c.testPattern(ctx, "maker", req)
}

// TestPatternAsChecker runs the same test through the checker endpoint.
func (c *Client) TestPatternAsChecker(ctx context.Context, req dto.PatternTestRequest) (dto.PatternTestResult, error) {
	return c.testPattern(ctx, "checker", req)
}

func (c *Client) testPattern(ctx context.Context, scope string, req dto.PatternTestRequest) (dto.PatternTestResult, error) {
	var out dto.PatternTestResult
	err := c.do(ctx, http.MethodPost, "/"+scope+"/templates/test", nil, req, &out)
	return out, err
}

// Checker endpoints.

func (c *Client) ListPending(ctx context.Context) ([]*models.Template, error) {
	var out []*models.Template
	err := c.do(ctx, http.MethodGet, "/checker/templates/pending", nil, nil, &out)
	return out, err
}

func (c *Client) ListReviewed(ctx context.Context, all bool) ([]*models.Template, error) {
	var q url.Values
	if all {
		q = url.Values{"all": {strconv.FormatBool(all)}}
	}
	var out []*models.Template
	err := c.do(ctx, http.MethodGet, "/checker/templates/reviewed", q, nil, &out)
	return out, err
}

func (c *Client) ListActive(ctx context.Context) ([]*models.Template, error) {
	var out []*models.Template
	err := c.do(ctx, http.MethodGet, "/checker/templates/active", nil, nil, &out)
	return out, err
}

func (c *Client) GetForReview(ctx context.Context, id string) (*models.Template, error) {
	out := new(models.Template)
	if err := c.do(ctx, http.MethodGet, templatePath("checker", id), nil, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ReviewHistory(ctx context.Context, id string) ([]*models.AuditEntry, error) {
	var out []*models.AuditEntry
	err := c.do(ctx, http.MethodGet, templatePath("checker", id)+"/history", nil, nil, &out)
	return out, err
}

func (c *Client) Approve(ctx context.Context, id, comments string) (*models.Template, error) {
	out := new(models.Template)
	err := c.do(ctx, http.MethodPost, templatePath("checker", id)+"/approve", nil, dto.ApprovalRequest{Comments: comments}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Reject(ctx context.Context, id, reason string) (*models.Template, error) {
	out := new(models.Template)
	err := c.do(ctx, http.MethodPost, templatePath("checker", id)+"/reject", nil, dto.RejectionRequest{Reason: reason}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Deprecate(ctx context.Context, id string) (*models.Template, error) {
	out := new(models.Template)
	if err := c.do(ctx, http.MethodPost, templatePath("checker", id)+"/deprecate", nil, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}
