package core

import (
	stderrors "errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestEnvErrorMapper_AssignsStableCodes(t *testing.T) {
	mapped := envErrorMapper(stderrors.New("sqlstore: connection refused"))
	if mapped.TextCode != ErrorStoreFailure {
		t.Fatalf("expected store failure text code, got %q", mapped.TextCode)
	}
	if mapped.Code == 0 {
		t.Fatalf("expected http status code on mapped error")
	}

	mapped = envErrorMapper(stderrors.New("core: key_namespace is required"))
	if mapped.TextCode != ErrorBadInput {
		t.Fatalf("expected bad input code, got %q", mapped.TextCode)
	}
	if mapped.Category != goerrors.CategoryBadInput {
		t.Fatalf("expected bad input category, got %q", mapped.Category)
	}
}

func TestEnvErrorMapper_KeepsRichErrors(t *testing.T) {
	original := validationError("url", "missing")
	mapped := envErrorMapper(original)
	if mapped != original {
		t.Fatalf("expected rich error to pass through")
	}
	if mapped.Code == 0 || mapped.TextCode != ErrorBadInput {
		t.Fatalf("expected envelope fields, got %#v", mapped)
	}
}

func TestStoreError_WrapsWithStoreFailure(t *testing.T) {
	if storeError(nil, "get", "k") != nil {
		t.Fatalf("expected nil for nil error")
	}
	err := storeError(errStoreDown, "set", "appenv.backend_variant")
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected go-errors type, got %T", err)
	}
	if richErr.TextCode != ErrorStoreFailure || richErr.Category != goerrors.CategoryExternal {
		t.Fatalf("unexpected store error envelope %#v", richErr)
	}
}
