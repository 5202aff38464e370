package validator

import (
	"testing"

	"leadcapture_backend/platform/apperr"

	"github.com/go-playground/validator/v10"
)

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Slot  string `json:"timeSlot" validate:"omitempty,even"`
}

func TestCheckReportsJSONFieldNames(t *testing.T) {
	v := New()
	if err := v.RegisterValidation("even", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String())%2 == 0
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	err := v.Check(sample{Email: "nope", Slot: "odd"})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation kind, got %v", err)
	}
	fields := apperr.FieldErrors(err)
	if got := fields["email"]; len(got) != 1 || got[0] != "email" {
		t.Fatalf("unexpected email errors %v", got)
	}
	if got := fields["timeSlot"]; len(got) != 1 || got[0] != "even" {
		t.Fatalf("unexpected timeSlot errors %v", got)
	}
}

func TestCheckPassesValidStruct(t *testing.T) {
	if err := New().Check(sample{Email: "a@b.co"}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
