package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeDuplicateKey, status: http.StatusConflict, publicMsg: "identifier already in use", detailsOK: true},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodePersistence, status: http.StatusInternalServerError, publicMsg: "storage failure", retryable: true},
		{code: CodeDataIntegrity, status: http.StatusUnprocessableEntity, publicMsg: "stored data is inconsistent", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
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
	base := New(CodeValidation, "missing quantite")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing quantite" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	cause := stdErrors.New("disk full")
	wrapped := Wrap(CodePersistence, cause, "saving cart")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("wrapped error should unwrap to cause")
	}
	if wrapped.Code() != CodePersistence {
		t.Fatalf("expected persistence code, got %s", wrapped.Code())
	}

	if got := Wrap(CodeInternal, nil, "no cause"); got.Unwrap() != nil {
		t.Fatalf("wrapping nil should produce no cause")
	}
}

func TestAsAndIsCode(t *testing.T) {
	err := Wrap(CodeConflict, New(CodeNotFound, "inner"), "outer")

	typed := As(err)
	if typed == nil || typed.Code() != CodeConflict {
		t.Fatalf("expected outermost typed error, got %v", typed)
	}

	if !IsCode(err, CodeConflict) {
		t.Fatalf("expected IsCode to match outer code")
	}
	if IsCode(stdErrors.New("plain"), CodeConflict) {
		t.Fatalf("plain error should not match any code")
	}
}

func TestDumpBuildsChain(t *testing.T) {
	cause := stdErrors.New("boom")
	err := Wrap(CodePersistence, cause, "saving cart")

	d := Dump(err)
	if d.Code != CodePersistence {
		t.Fatalf("expected code in dump, got %s", d.Code)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %d", len(d.Chain))
	}

	if got := Dump(nil); got.TopMessage != "" || got.Chain != nil {
		t.Fatalf("dump of nil should be empty")
	}
}
