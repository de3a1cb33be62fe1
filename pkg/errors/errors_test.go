package errors

import (
	stdErrors "errors"
	"fmt"
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
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeRejected, status: http.StatusUnprocessableEntity, publicMsg: "request rejected", detailsOK: true},
		{code: CodePrecondition, status: http.StatusPreconditionFailed, publicMsg: "precondition not met"},
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
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestHasCodeAndUserFacing(t *testing.T) {
	err := fmt.Errorf("checkout: %w", New(CodePrecondition, "Please select a delivery address."))
	if !HasCode(err, CodePrecondition) {
		t.Fatalf("expected wrapped precondition code to be detected")
	}
	if HasCode(stdErrors.New("plain"), CodePrecondition) {
		t.Fatalf("plain errors carry no code")
	}
	if !UserFacing(CodeRejected) || UserFacing(CodeInternal) || UserFacing(CodeDependency) {
		t.Fatalf("unexpected user facing classification")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	cause := stdErrors.New("dial tcp: refused")
	err := fmt.Errorf("get cart: %w", Wrap(CodeDependency, cause, "backend unavailable").WithDetails(map[string]any{"endpoint": "cart.get"}))

	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", dump.Code)
	}
	if len(dump.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d: %v", len(dump.Chain), dump.Chain)
	}
	if dump.Details == nil {
		t.Fatalf("expected details to be captured")
	}
}

func TestShopperMessage(t *testing.T) {
	if got := New(CodeDependency, "dial tcp 10.0.0.1: refused").ShopperMessage(); got != "dependency unavailable" {
		t.Fatalf("dependency messages should be hidden, got %q", got)
	}
	if got := New(CodeDependency, "We couldn't reach the store right now.").Public().ShopperMessage(); got != "We couldn't reach the store right now." {
		t.Fatalf("public message should be shown, got %q", got)
	}
	if got := New(CodeRejected, "Coupon expired").ShopperMessage(); got != "Coupon expired" {
		t.Fatalf("rejections are shown verbatim, got %q", got)
	}
	var nilErr *Error
	if got := nilErr.ShopperMessage(); got != "internal server error" {
		t.Fatalf("nil error should fall back to internal message, got %q", got)
	}
}
