package pets

import (
	"context"
	"fmt"
)

// ContactOf devuelve la mascota junto con su dueño.
// Billing e invoices lo consumen por interfaz para no depender del repositorio de pets.
func (s *Service) ContactOf(ctx context.Context, petID string) (Pet, Owner, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, Owner{}, err
	}
	o, err := s.GetOwner(ctx, p.OwnerID)
	if err != nil {
		return Pet{}, Owner{}, fmt.Errorf("owner of pet %s: %w", petID, err)
	}
	return p, o, nil
}
