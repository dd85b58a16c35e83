package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without wrapped error",
			err:  New("UNKNOWN_PROVIDER", "provider not configured", http.StatusBadRequest),
			want: "UNKNOWN_PROVIDER: provider not configured",
		},
		{
			name: "with wrapped error",
			err:  Wrap(fmt.Errorf("db error"), "DB_ERROR", "database failure", http.StatusInternalServerError),
			want: "DB_ERROR: database failure: db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap(inner, "CODE", "msg", 500)

	if !errors.Is(appErr, inner) {
		t.Error("errors.Is should match inner error")
	}
}

func TestIsAppError(t *testing.T) {
	appErr := ErrUserNotFoundf("admins", "alice")
	wrapped := fmt.Errorf("wrapped: %w", appErr)

	got, ok := IsAppError(wrapped)
	if !ok {
		t.Fatal("IsAppError should return true for wrapped AppError")
	}
	if got.Code != CodeUserNotFound {
		t.Errorf("Code = %q, want %s", got.Code, CodeUserNotFound)
	}
	if got.Params["provider"] != "admins" {
		t.Errorf("Params[provider] = %v, want admins", got.Params["provider"])
	}
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantStatus int
	}{
		{"NotFound", NotFound("NF", "not found"), http.StatusNotFound},
		{"BadRequest", BadRequest("BR", "bad request"), http.StatusBadRequest},
		{"Internal", Internal("IE", "internal"), http.StatusInternalServerError},
		{"UnknownProvider", ErrUnknownProviderf("x"), http.StatusBadRequest},
		{"UserNotFound", ErrUserNotFoundf("admins", "bob"), http.StatusNotFound},
		{"UnknownDriver", ErrUnknownDriverf(nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("HTTPStatus = %d, want %d", tt.err.HTTPStatus, tt.wantStatus)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	vErr := NewValidationError()
	if !vErr.Empty() {
		t.Fatal("new ValidationError should be empty")
	}

	vErr.Add("username", "The username field is required.")
	vErr.Add("provider", "The provider field is required.")
	if vErr.Empty() {
		t.Fatal("ValidationError with messages should not be empty")
	}

	want := "validation failed: The provider field is required.; The username field is required."
	if got := vErr.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	got, ok := IsValidationError(fmt.Errorf("select provider: %w", vErr))
	if !ok {
		t.Fatal("IsValidationError should unwrap")
	}
	if len(got.MessageBag()["username"]) != 1 {
		t.Errorf("MessageBag()[username] = %v", got.MessageBag()["username"])
	}
}

func TestErrUnknownDriverf_WrapsCause(t *testing.T) {
	cause := errors.New("ldap not registered")
	err := ErrUnknownDriverf(cause)
	if err.Code != CodeUnknownDriver {
		t.Errorf("Code = %q, want %q", err.Code, CodeUnknownDriver)
	}
	if !errors.Is(err, cause) {
		t.Error("cause is not unwrapped")
	}
}

func TestErrUserNotFoundf_Params(t *testing.T) {
	err := ErrUserNotFoundf("admins", "bob")
	if err.Params["provider"] != "admins" || err.Params["username"] != "bob" {
		t.Errorf("Params = %v", err.Params)
	}
}
