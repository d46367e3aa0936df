package handlers

import (
	"log/slog"

	"github.com/GregMSThompson/regexflow/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	UserSvc         UserService
	TemplateSvc     TemplateService
	PatternSvc      PatternService
	InboxSvc        InboxService
	SmsSvc          SmsService
	TransactionSvc  TransactionService
}
