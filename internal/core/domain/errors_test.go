package domain

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestServerError_Unwrap(t *testing.T) {
	notFound := &ServerError{Op: "delete post", StatusCode: http.StatusNotFound}
	if !errors.Is(notFound, ErrPostNotFound) {
		t.Error("404 should unwrap to ErrPostNotFound")
	}

	bad := &ServerError{Op: "create post", StatusCode: http.StatusBadRequest, Message: "body must not be empty"}
	if !errors.Is(bad, ErrInvalidPost) {
		t.Error("400 should unwrap to ErrInvalidPost")
	}

	internal := &ServerError{Op: "list posts", StatusCode: http.StatusInternalServerError}
	if errors.Is(internal, ErrPostNotFound) || errors.Is(internal, ErrInvalidPost) {
		t.Error("500 should not unwrap to a domain sentinel")
	}
	if !strings.Contains(internal.Error(), "Internal Server Error") {
		t.Errorf("Error() = %q, want status text", internal.Error())
	}
}

func TestUserMessage(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"network", &NetworkError{Op: "list posts", Err: cause}, "Network error"},
		{"not found", &ServerError{Op: "delete post", StatusCode: 404}, "no longer exists"},
		{"server with message", &ServerError{Op: "create post", StatusCode: 400, Message: "too long"}, "Server error (400): too long"},
		{"server bare", &ServerError{Op: "list posts", StatusCode: 502}, "Server error (502)"},
		{"other", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UserMessage(tt.err)
			if tt.want == "" && got != "" {
				t.Fatalf("UserMessage = %q, want empty", got)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("UserMessage = %q, want it to contain %q", got, tt.want)
			}
		})
	}

	if !errors.Is(&NetworkError{Op: "x", Err: cause}, cause) {
		t.Error("NetworkError should unwrap to its cause")
	}
}
