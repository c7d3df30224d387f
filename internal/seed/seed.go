// Package seed carga un catálogo, inventario y cola de demo para dev.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pet-clinic-ops/internal/app"
	"pet-clinic-ops/internal/domain/appointments"
	"pet-clinic-ops/internal/domain/catalog"
	"pet-clinic-ops/internal/domain/inventory"
	"pet-clinic-ops/internal/domain/pets"
	"pet-clinic-ops/internal/domain/staff"
)

type service struct {
	name  string
	desc  string
	price int64
}

var services = []service{
	{"General Consultation", "Examen clínico general", 150000},
	{"Vaccination", "Vacuna anual", 200000},
	{"Grooming", "Baño y corte", 100000},
}

type item struct {
	name     string
	category string
	unit     string
	price    int64
	qty      int
}

var items = []item{
	{"Amoxicillin 500mg", "medicine", "tab", 15000, 50},
	{"Vitamin B Complex", "medicine", "tab", 25000, 30},
	{"Dewormer", "medicine", "tab", 35000, 3},
	{"Flea Drops", "medicine", "pipette", 120000, 2},
	{"Dry Food 2kg", "food", "bag", 250000, 10},
}

// Result son los ids creados, útiles para tests y para el log de arranque.
type Result struct {
	Skipped bool

	ServiceIDs map[string]string
	ItemIDs    map[string]string

	OwnerID        string
	PetID          string
	DoctorID       string
	GroomerID      string
	AppointmentIDs []string
}

// Demo carga los datos si el catálogo está vacío; si no, no toca nada.
// now define el "hoy" de las citas (en la zona de la clínica).
func Demo(ctx context.Context, svc *app.Services, now time.Time) (Result, error) {
	existing, err := svc.Catalog.List(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(existing) > 0 {
		return Result{Skipped: true}, nil
	}

	res := Result{
		ServiceIDs: make(map[string]string, len(services)),
		ItemIDs:    make(map[string]string, len(items)),
	}

	for _, s := range services {
		cs, err := svc.Catalog.Create(ctx, catalog.CreateInput{
			Name:        s.name,
			Description: s.desc,
			BasePrice:   decimal.NewFromInt(s.price),
		})
		if err != nil {
			return Result{}, fmt.Errorf("seed service %s: %w", s.name, err)
		}
		res.ServiceIDs[cs.Name] = cs.ID
	}

	for _, it := range items {
		si, err := svc.Inventory.Create(ctx, inventory.CreateInput{
			Name:      it.name,
			Category:  it.category,
			Unit:      it.unit,
			UnitPrice: decimal.NewFromInt(it.price),
			Quantity:  it.qty,
		})
		if err != nil {
			return Result{}, fmt.Errorf("seed item %s: %w", it.name, err)
		}
		res.ItemIDs[si.Name] = si.ID
	}

	owner, err := svc.Pets.CreateOwner(ctx, pets.CreateOwnerInput{
		Name:  "Budi Santoso",
		Phone: "+62 812 0000 0001",
		Email: "budi@example.com",
	})
	if err != nil {
		return Result{}, fmt.Errorf("seed owner: %w", err)
	}
	res.OwnerID = owner.ID

	pet, err := svc.Pets.Create(ctx, pets.CreateInput{
		OwnerID: owner.ID,
		Name:    "Milo",
		Species: string(pets.SpeciesCat),
		Breed:   "Persian",
		Sex:     string(pets.SexMale),
	})
	if err != nil {
		return Result{}, fmt.Errorf("seed pet: %w", err)
	}
	res.PetID = pet.ID

	doctor, err := svc.Staff.Create(ctx, staff.CreateInput{
		Name:           "Dr. Sari",
		Position:       string(staff.PositionDoctor),
		Specialization: "Small animals",
	})
	if err != nil {
		return Result{}, fmt.Errorf("seed doctor: %w", err)
	}
	res.DoctorID = doctor.ID

	groomer, err := svc.Staff.Create(ctx, staff.CreateInput{
		Name:     "Rina",
		Position: string(staff.PositionGroomer),
	})
	if err != nil {
		return Result{}, fmt.Errorf("seed groomer: %w", err)
	}
	res.GroomerID = groomer.ID

	day := time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, now.Location())
	bookings := []appointments.BookInput{
		{PetID: pet.ID, StaffID: doctor.ID, VisitAt: day, Complaint: "Coughing and lethargic for two days"},
		{PetID: pet.ID, StaffID: groomer.ID, VisitAt: day.Add(2 * time.Hour), Complaint: "[Grooming] Bath and nail trim"},
	}
	for _, b := range bookings {
		a, err := svc.Appointments.Book(ctx, b)
		if err != nil {
			return Result{}, fmt.Errorf("seed appointment: %w", err)
		}
		res.AppointmentIDs = append(res.AppointmentIDs, a.ID)
	}

	return res, nil
}
