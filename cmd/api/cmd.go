package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/GregMSThompson/regexflow/internal/bootstrap"
	"github.com/GregMSThompson/regexflow/internal/config"
	"github.com/GregMSThompson/regexflow/internal/crypto"
	"github.com/GregMSThompson/regexflow/internal/events"
	"github.com/GregMSThompson/regexflow/internal/extract"
	"github.com/GregMSThompson/regexflow/internal/handlers"
	"github.com/GregMSThompson/regexflow/internal/metrics"
	"github.com/GregMSThompson/regexflow/internal/middleware"
	"github.com/GregMSThompson/regexflow/internal/response"
	"github.com/GregMSThompson/regexflow/internal/router"
	"github.com/GregMSThompson/regexflow/internal/services"
	"github.com/GregMSThompson/regexflow/internal/store"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// helpers
	cipher := crypto.NewCipher(bs.KMS, cfg.KMSKeyName)
	var publisher events.Publisher = events.Nop{}
	if bs.NATS != nil {
		publisher = events.NewNATSPublisher(bs.NATS, cfg.NATSSubject)
	}
	engine := extract.New(cfg.PatternTimeout)
	m := metrics.New()

	// stores
	ustore := store.NewUserStore(bs.Firestore)
	tplstore := store.NewTemplateStore(bs.Firestore)
	astore := store.NewAuditStore(bs.Firestore)
	inbstore := store.NewUnparsedStore(bs.Firestore)
	logstore := store.NewSmsLogStore(bs.Firestore)
	txstore := store.NewTransactionStore(bs.Firestore, cipher)

	// services
	userv := services.NewUserService(ustore, middleware.NewRoleClaims(bs.Firebase))
	tserv := services.NewTemplateService(tplstore, astore, engine, publisher, m)
	pserv := services.NewPatternService(engine, m)
	gserv := services.NewGeneratorService(engine, nil)
	if bs.VertexAdapter != nil {
		gserv = services.NewGeneratorService(engine, bs.VertexAdapter)
	}
	iserv := services.NewInboxService(inbstore, gserv)
	sserv := services.NewSmsService(tserv, logstore, txstore, inbstore, engine, m)
	txserv := services.NewTransactionService(txstore)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.UserSvc = userv
	deps.TemplateSvc = tserv
	deps.PatternSvc = pserv
	deps.InboxSvc = iserv
	deps.SmsSvc = sserv
	deps.TransactionSvc = txserv

	// router
	mw := middleware.NewMiddleware(bs.Firebase, rh)
	r := router.NewRouter(deps, mw, bs.Log)
	bs.Log.Info("listening", "port", cfg.Port)
	err = http.ListenAndServe(":"+cfg.Port, r)
	exitOnError("server start failed", err, bs.Log)
}
