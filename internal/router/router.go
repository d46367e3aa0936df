package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GregMSThompson/regexflow/internal/handlers"
	"github.com/GregMSThompson/regexflow/internal/middleware"
	"github.com/GregMSThompson/regexflow/internal/models"
)

func NewRouter(deps *handlers.Deps, mw *middleware.Middleware, log *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewLoggerMiddleware(log).LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	ush := handlers.NewUserHandlers(deps)
	mkh := handlers.NewMakerHandlers(deps)
	chh := handlers.NewCheckerHandlers(deps)
	txh := handlers.NewTransactionHandlers(deps)

	r.Group(func(r chi.Router) {
		r.Use(mw.FirebaseAuth)

		r.Mount("/users", ush.UserRoutes())
		r.With(mw.RequireRole(models.RoleMaker)).Mount("/maker", mkh.MakerRoutes())
		r.With(mw.RequireRole(models.RoleChecker)).Mount("/checker", chh.CheckerRoutes())
		// every role can upload its own SMS and browse its own transactions
		r.With(mw.RequireRole(models.RoleUser, models.RoleMaker, models.RoleChecker)).Mount("/user", txh.TransactionRoutes())
	})
	return r
}
