package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/secureguard-backend/pkg/errors"
	"github.com/go-chi/chi/v5"
)

type sampleRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	DateOfBirth string  `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Reason      *string `json:"reason,omitempty"`
}

func TestDecodeJSONBodyValidation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","dateOfBirth":"01/02/1990"}`))
	var dest sampleRequest
	err := DecodeJSONBody(req, &dest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if typed.Message() != "dateOfBirth must be a date in YYYY-MM-DD format" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["email"] != "must be a valid email" {
		t.Fatalf("unexpected details %#v", typed.Details())
	}
}

func TestDecodeJSONBodyIgnoresUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@example.com","role":"admin"}`))
	var dest sampleRequest
	if err := DecodeJSONBody(req, &dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest.Email != "a@example.com" {
		t.Fatalf("unexpected email %q", dest.Email)
	}
}

func TestDecodeJSONBodyMalformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
	var dest sampleRequest
	if err := DecodeJSONBody(req, &dest); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyEmptyOptionalBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/", http.NoBody)
	var dest struct {
		Reason *string `json:"reason,omitempty"`
	}
	if err := DecodeJSONBody(req, &dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest.Reason != nil {
		t.Fatal("expected nil reason")
	}
}

func TestPathID(t *testing.T) {
	for raw, valid := range map[string]bool{"12": true, "0": false, "abc": false, "-3": false} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", raw)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		_, err := PathID(req, "id")
		if valid && err != nil {
			t.Fatalf("%q: unexpected error %v", raw, err)
		}
		if !valid && !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%q: expected validation error", raw)
		}
	}
}
