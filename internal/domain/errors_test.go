package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-clinic-ops/internal/domain"
)

func TestStateConflictError_MatchesKindAndFamily(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("generate bill: %w", domain.NewStateConflict(domain.ErrAlreadyBilled, "appointment", "a-1", "completed"))

	assert.True(t, errors.Is(err, domain.ErrAlreadyBilled))
	assert.True(t, errors.Is(err, domain.ErrStateConflict))
	assert.False(t, errors.Is(err, domain.ErrAppointmentNotEligible))

	var sc *domain.StateConflictError
	require.True(t, errors.As(err, &sc))
	assert.Equal(t, domain.CodeAlreadyBilled, sc.Code())
}

func TestInsufficientStockError_CarriesAvailable(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("commit: %w", &domain.InsufficientStockError{ItemID: "i-1", ItemName: "Amoxicillin", Requested: 5, Available: 2})

	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, 2, ise.Available)
	assert.Contains(t, err.Error(), "Amoxicillin")
}

func TestPersistence_KeepsClassifiedErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		in          error
		wantWrapped bool
	}{
		{name: "not found passes", in: fmt.Errorf("pet x: %w", domain.ErrNotFound)},
		{name: "validation passes", in: domain.NewValidationError("diagnosis", "required")},
		{name: "stock passes", in: &domain.InsufficientStockError{ItemID: "i"}},
		{name: "raw error is wrapped", in: errors.New("connection reset"), wantWrapped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.Persistence("op", tt.in)
			var pe *domain.PersistenceError
			assert.Equal(t, tt.wantWrapped, errors.As(got, &pe))
			assert.True(t, errors.Is(got, tt.in))
			if tt.wantWrapped {
				assert.True(t, errors.Is(got, domain.ErrPersistence))
			}
		})
	}

	assert.Nil(t, domain.Persistence("op", nil))
}

func TestValidationError_Message(t *testing.T) {
	t.Parallel()

	one := domain.NewValidationError("quantity", "must be greater than 0")
	assert.Equal(t, "validation: quantity: must be greater than 0", one.Error())

	many := domain.NewValidationErrors([]domain.FieldError{{Field: "a", Message: "x"}, {Field: "b", Message: "y"}})
	assert.Equal(t, "validation: 2 errors (a, b)", many.Error())
	assert.True(t, errors.Is(many, domain.ErrValidation))
}
