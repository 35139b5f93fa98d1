package errors

import (
	stderrors "errors"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	t.Parallel()

	sentinel := New(CodeEmailTaken, "email is taken")
	wrapped := Wrap(CodeEmailTaken, "insert user", stderrors.New("unique constraint"))
	if !stderrors.Is(wrapped, sentinel) {
		t.Fatal("expected errors with the same code to match")
	}

	other := New(CodeNotFound, "record not found")
	if stderrors.Is(wrapped, other) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestUnwrapReturnsCause(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("boom")
	wrapped := Wrap(CodeUnknown, "operation failed", cause)
	if !stderrors.Is(wrapped, cause) {
		t.Fatal("expected wrapped cause to be found in chain")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeEmailTaken, http.StatusConflict},
		{CodeDuplicateEmail, http.StatusConflict},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeMissingEmail, http.StatusBadRequest},
		{CodeFederationFailed, http.StatusBadRequest},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Fatalf("HTTPStatus(%s) = %d, want %d", tc.code, got, tc.want)
		}
	}
}
