package validation

import (
	"errors"
	"testing"

	"pet-clinic-ops/internal/domain"
)

type lineInput struct {
	ItemID   string `field:"item_id" validate:"required"`
	Quantity int    `field:"quantity" validate:"gt=0"`
}

type commitInput struct {
	AppointmentID string      `field:"appointment_id" validate:"required"`
	Lines         []lineInput `field:"prescriptions" validate:"dive"`
}

func TestStruct_OK(t *testing.T) {
	err := Struct(commitInput{AppointmentID: "a", Lines: []lineInput{{ItemID: "i", Quantity: 1}}})
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestStruct_MapsFieldPaths(t *testing.T) {
	err := Struct(commitInput{Lines: []lineInput{{ItemID: "i", Quantity: 1}, {Quantity: 0}}})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}

	got := map[string]string{}
	for _, fe := range ve.Errors {
		got[fe.Field] = fe.Message
	}
	want := map[string]string{
		"appointment_id":            "is required",
		"prescriptions[1].item_id":  "is required",
		"prescriptions[1].quantity": "must be greater than 0",
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("field %s: expected %q, got %q (all=%v)", k, v, got[k], got)
		}
	}
}
