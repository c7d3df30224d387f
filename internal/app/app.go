// Package app arma repositorios y servicios para cualquiera de los dos backends de storage.
package app

import (
	"context"

	"pet-clinic-ops/internal/adapters/storage/memory"
	"pet-clinic-ops/internal/adapters/storage/postgres"
	"pet-clinic-ops/internal/domain"
	"pet-clinic-ops/internal/domain/appointments"
	"pet-clinic-ops/internal/domain/billing"
	"pet-clinic-ops/internal/domain/catalog"
	"pet-clinic-ops/internal/domain/inventory"
	"pet-clinic-ops/internal/domain/invoices"
	"pet-clinic-ops/internal/domain/pets"
	"pet-clinic-ops/internal/domain/records"
	"pet-clinic-ops/internal/domain/staff"
	"pet-clinic-ops/internal/platform/logger"
)

// Repos agrupa los repositorios y el TxManager del mismo backend.
type Repos struct {
	Tx           domain.TxManager
	Pets         pets.Repository
	Staff        staff.Repository
	Catalog      catalog.Repository
	Inventory    inventory.Repository
	Appointments appointments.Repository
	Records      records.Repository
	Invoices     invoices.Repository

	// Ping lo usa /ready.
	Ping func(ctx context.Context) error
}

func MemoryRepos() Repos {
	st := memory.NewStore()
	return Repos{
		Tx:           st,
		Pets:         memory.NewPetRepo(st),
		Staff:        memory.NewStaffRepo(st),
		Catalog:      memory.NewCatalogRepo(st),
		Inventory:    memory.NewInventoryRepo(st),
		Appointments: memory.NewAppointmentRepo(st),
		Records:      memory.NewRecordRepo(st),
		Invoices:     memory.NewInvoiceRepo(st),
		Ping:         st.Ping,
	}
}

// PostgresRepos recibe el pool (o cualquier postgres.DB con Ping).
func PostgresRepos(db interface {
	postgres.DB
	Ping(ctx context.Context) error
}) Repos {
	return Repos{
		Tx:           postgres.NewTxManager(db),
		Pets:         postgres.NewPetsRepo(db),
		Staff:        postgres.NewStaffRepo(db),
		Catalog:      postgres.NewCatalogRepo(db),
		Inventory:    postgres.NewInventoryRepo(db),
		Appointments: postgres.NewAppointmentsRepo(db),
		Records:      postgres.NewRecordsRepo(db),
		Invoices:     postgres.NewInvoicesRepo(db),
		Ping:         db.Ping,
	}
}

type Options struct {
	Logger               logger.Logger
	LowStockThreshold    int
	DefaultServiceName   string
	DefaultPaymentMethod string
	ClinicName           string
	Currency             string
}

type Services struct {
	Pets         *pets.Service
	Staff        *staff.Service
	Catalog      *catalog.Service
	Inventory    *inventory.Service
	Appointments *appointments.Service
	Records      *records.Service
	Invoices     *invoices.Service
	Billing      *billing.Service

	Ping func(ctx context.Context) error
}

func NewServices(r Repos, opts Options) *Services {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	petsSvc := pets.NewService(r.Pets)
	stock := inventory.NewService(r.Inventory, r.Tx, inventory.Options{
		LowStockThreshold: opts.LowStockThreshold,
		Logger:            opts.Logger,
	})

	return &Services{
		Pets:         petsSvc,
		Staff:        staff.NewService(r.Staff),
		Catalog:      catalog.NewService(r.Catalog),
		Inventory:    stock,
		Appointments: appointments.NewService(r.Appointments, r.Tx, opts.Logger),
		Records:      records.NewService(r.Records, r.Appointments, stock, r.Tx, opts.Logger),
		Invoices: invoices.NewService(r.Invoices, petsSvc, invoices.Options{
			ClinicName: opts.ClinicName,
			Currency:   opts.Currency,
			Logger:     opts.Logger,
		}),
		Billing: billing.NewService(billing.Deps{
			Tx:           r.Tx,
			Appointments: r.Appointments,
			Records:      r.Records,
			Items:        r.Inventory,
			Catalog:      r.Catalog,
			Invoices:     r.Invoices,
			Staff:        r.Staff,
			Pets:         petsSvc,
		}, billing.Options{
			DefaultServiceName:   opts.DefaultServiceName,
			DefaultPaymentMethod: opts.DefaultPaymentMethod,
			Logger:               opts.Logger,
		}),
		Ping: r.Ping,
	}
}
