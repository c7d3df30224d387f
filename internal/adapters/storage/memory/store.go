package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"pet-clinic-ops/internal/domain"
	"pet-clinic-ops/internal/domain/appointments"
	"pet-clinic-ops/internal/domain/catalog"
	"pet-clinic-ops/internal/domain/inventory"
	"pet-clinic-ops/internal/domain/invoices"
	"pet-clinic-ops/internal/domain/pets"
	"pet-clinic-ops/internal/domain/records"
	"pet-clinic-ops/internal/domain/staff"
)

// Store guarda todas las tablas en memoria detrás de un único mutex.
// Sirve para dev y tests; las transacciones serializan todo el store.
type Store struct {
	mu sync.Mutex

	owners   map[string]pets.Owner
	pets     map[string]pets.Pet
	staff    map[string]staff.Member
	services map[string]catalog.ClinicService
	items    map[string]inventory.StockItem
	appts    map[string]appointments.Appointment
	records  map[string]records.ClinicalRecord
	invoices map[string]invoices.Invoice
}

func NewStore() *Store {
	return &Store{
		owners:   make(map[string]pets.Owner),
		pets:     make(map[string]pets.Pet),
		staff:    make(map[string]staff.Member),
		services: make(map[string]catalog.ClinicService),
		items:    make(map[string]inventory.StockItem),
		appts:    make(map[string]appointments.Appointment),
		records:  make(map[string]records.ClinicalRecord),
		invoices: make(map[string]invoices.Invoice),
	}
}

type txKey struct{}

// lock toma el mutex salvo que el contexto ya esté dentro de una transacción de este store.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) inTx(ctx context.Context) bool {
	st, ok := ctx.Value(txKey{}).(*Store)
	return ok && st == s
}

// RunInTx ejecuta fn con el store bloqueado. Si fn devuelve error o entra en pánico
// se restaura la foto tomada al inicio. No soporta anidamiento: una llamada anidada
// reutiliza la transacción externa.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()

	defer func() {
		if r := recover(); r != nil {
			s.restore(snap)
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	owners   map[string]pets.Owner
	pets     map[string]pets.Pet
	staff    map[string]staff.Member
	services map[string]catalog.ClinicService
	items    map[string]inventory.StockItem
	appts    map[string]appointments.Appointment
	records  map[string]records.ClinicalRecord
	invoices map[string]invoices.Invoice
}

// Los slices guardados (recetas, líneas) nunca se modifican en su lugar,
// así que copiar los mapas alcanza.
func (s *Store) snapshot() snapshot {
	return snapshot{
		owners:   maps.Clone(s.owners),
		pets:     maps.Clone(s.pets),
		staff:    maps.Clone(s.staff),
		services: maps.Clone(s.services),
		items:    maps.Clone(s.items),
		appts:    maps.Clone(s.appts),
		records:  maps.Clone(s.records),
		invoices: maps.Clone(s.invoices),
	}
}

func (s *Store) restore(snap snapshot) {
	s.owners = snap.owners
	s.pets = snap.pets
	s.staff = snap.staff
	s.services = snap.services
	s.items = snap.items
	s.appts = snap.appts
	s.records = snap.records
	s.invoices = snap.invoices
}

// Ping existe para que /ready trate igual ambos backends.
func (s *Store) Ping(context.Context) error { return nil }

func notFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
}

func alreadyExists(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, domain.ErrAlreadyExists)
}

var _ domain.TxManager = (*Store)(nil)
