package router

import (
	"net/http"
	"time"

	"pet-clinic-ops/internal/app"
	_ "pet-clinic-ops/internal/docs"
	"pet-clinic-ops/internal/domain/appointments"
	"pet-clinic-ops/internal/domain/billing"
	"pet-clinic-ops/internal/domain/catalog"
	"pet-clinic-ops/internal/domain/inventory"
	"pet-clinic-ops/internal/domain/invoices"
	"pet-clinic-ops/internal/domain/pets"
	"pet-clinic-ops/internal/domain/records"
	"pet-clinic-ops/internal/domain/staff"
	"pet-clinic-ops/internal/middleware"
	"pet-clinic-ops/internal/platform/logger"
	"pet-clinic-ops/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	Logger       logger.Logger

	// Opcional: si no viene, se arma todo sobre el store en memoria.
	Services *app.Services
	Storage  string

	// Zona horaria de la clínica para "hoy" en la cola. Default UTC.
	Location *time.Location
}

func NewRouter(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	svc := opts.Services
	if svc == nil {
		svc = app.NewServices(app.MemoryRepos(), app.Options{Logger: opts.Logger})
		opts.Storage = "memory"
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(opts.Logger))
	r.Use(middleware.Recover)
	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", live)
	r.Get("/ready", ready(svc.Ping, opts.Storage))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Todo lo demás exige usuario autenticado; cada módulo agrega sus roles.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole())

		pets.RegisterRoutes(r, svc.Pets)
		staff.RegisterRoutes(r, svc.Staff)
		catalog.RegisterRoutes(r, svc.Catalog)
		inventory.RegisterRoutes(r, svc.Inventory)
		appointments.RegisterRoutes(r, svc.Appointments, opts.Location)
		records.RegisterRoutes(r, svc.Records)
		billing.RegisterRoutes(r, svc.Billing)
		invoices.RegisterRoutes(r, svc.Invoices)
	})

	return r
}
