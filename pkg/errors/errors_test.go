package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		msgPublic bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", msgPublic: true, detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required", msgPublic: true},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied", msgPublic: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found", msgPublic: true},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", msgPublic: true},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", msgPublic: true, detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.MessagePublic != tt.msgPublic {
			t.Fatalf("code %s expected message public %v got %v", tt.code, tt.msgPublic, meta.MessagePublic)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "status is required")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "status is required" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "status"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "email already in use")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}

	formatted := Newf(CodeForbidden, "user role %s is not authorized to access this route", "guard")
	if formatted.Message() != "user role guard is not authorized to access this route" {
		t.Fatalf("unexpected formatted message %q", formatted.Message())
	}
}

func TestAsAndIsCodeSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeNotFound, "supervisor not found"))
	if got := As(err); got == nil || got.Code() != CodeNotFound {
		t.Fatalf("As failed to return typed error")
	}
	if !IsCode(err, CodeNotFound) {
		t.Fatalf("expected IsCode to match wrapped not found")
	}
	if IsCode(err, CodeConflict) {
		t.Fatalf("expected IsCode to reject other codes")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeInternal, stdErrors.New("connection refused"), "load supervisor")
	d := Dump(err)
	if d.Code != CodeInternal {
		t.Fatalf("expected internal code in dump, got %s", d.Code)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %d", len(d.Chain))
	}
	if d.DB != nil {
		t.Fatalf("expected no database failure, got %+v", d.DB)
	}
	if _, ok := d.Fields()["db_store"]; ok {
		t.Fatal("expected no db fields without a database error")
	}
}

func TestDumpExtractsPostgresFailure(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "account_emails_pkey", TableName: "account_emails", Message: "duplicate key value"}
	d := Dump(Wrap(CodeConflict, fmt.Errorf("claim email: %w", pgErr), "email already in use"))

	if d.Store != StorePostgres || d.DB == nil {
		t.Fatalf("expected postgres failure, got %+v", d)
	}
	if d.DB.Code != "23505" || d.DB.Constraint != "account_emails_pkey" {
		t.Fatalf("unexpected db failure %+v", d.DB)
	}
	fields := d.Fields()
	if fields["db_table"] != "account_emails" {
		t.Fatalf("expected table field, got %v", fields["db_table"])
	}
}

func TestDumpRecognisesSQLiteConstraintText(t *testing.T) {
	d := Dump(fmt.Errorf("insert guard: %w", stdErrors.New("UNIQUE constraint failed: account_emails.email")))
	if d.Store != StoreSQLite {
		t.Fatalf("expected sqlite store, got %q", d.Store)
	}
	if d.DB.Message != "UNIQUE constraint failed: account_emails.email" {
		t.Fatalf("unexpected message %q", d.DB.Message)
	}
}
