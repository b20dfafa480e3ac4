package validate_test

import (
	"testing"

	"github.com/bazaarhq/bazaar/pkg/validate"
)

type registerInput struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(registerInput{
		Name:     "john doe",
		Email:    "john@example.com",
		Password: "secret123",
	})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(registerInput{})
	if !validate.HasErrors(errs) {
		t.Fatal("expected required errors")
	}
	if _, ok := errs["name"]; !ok {
		t.Error("expected name to be required")
	}
	if _, ok := errs["email"]; !ok {
		t.Error("expected email to be required")
	}
}

func TestEmailRule(t *testing.T) {
	type in struct {
		Email string `json:"email" validate:"required,email"`
	}
	errs := validate.Struct(in{Email: "not-an-email"})
	if _, ok := errs["email"]; !ok {
		t.Error("expected email validation error")
	}
	errs = validate.Struct(in{Email: "valid@example.com"})
	if validate.HasErrors(errs) {
		t.Errorf("expected valid email to pass, got: %v", errs)
	}
}

func TestMinOnString(t *testing.T) {
	errs := validate.Struct(registerInput{Name: "a", Email: "a@b.co", Password: "short"})
	if _, ok := errs["password"]; !ok {
		t.Error("expected password min length error")
	}
}

func TestGteOnNumber(t *testing.T) {
	type in struct {
		Quantity int `json:"quantity" validate:"gte=0"`
	}
	if errs := validate.Struct(in{Quantity: -1}); !validate.HasErrors(errs) {
		t.Error("expected negative quantity to fail")
	}
	if errs := validate.Struct(in{Quantity: 3}); validate.HasErrors(errs) {
		t.Errorf("expected quantity 3 to pass, got: %v", errs)
	}
}

func TestNullableSkipsEmpty(t *testing.T) {
	type in struct {
		Site string `json:"site" validate:"nullable,url"`
	}
	if errs := validate.Struct(in{}); validate.HasErrors(errs) {
		t.Errorf("expected empty nullable to pass, got: %v", errs)
	}
	if errs := validate.Struct(in{Site: "not a url"}); !validate.HasErrors(errs) {
		t.Error("expected invalid url to fail")
	}
}

func TestInRule(t *testing.T) {
	type in struct {
		Role string `json:"role" validate:"required,in=customer,admin"`
	}
	if errs := validate.Struct(in{Role: "owner"}); !validate.HasErrors(errs) {
		t.Error("expected unknown role to fail")
	}
	if errs := validate.Struct(in{Role: "admin"}); validate.HasErrors(errs) {
		t.Errorf("expected admin to pass, got: %v", errs)
	}
}
