package regexflowclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/GregMSThompson/regexflow/internal/dto"
	"github.com/GregMSThompson/regexflow/internal/models"
)

func (c *Client) ListUnparsed(ctx context.Context) ([]*models.UnparsedMessage, error) {
	var out []*models.UnparsedMessage
	err := c.do(ctx, http.MethodGet, "/maker/unparsed-sms", nil, nil, &out)
	return out, err
}

func (c *Client) DeleteUnparsed(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/maker/unparsed-sms/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) GenerateTemplate(ctx context.Context, req dto.GenerateTemplateRequest) (dto.GeneratedTemplate, error) {
	var out dto.GeneratedTemplate
	err := c.do(ctx, http.MethodPost, "/maker/generate-template", nil, req, &out)
	return out, err
}
