package chat

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"twinchat/pkg/api"
)

func TestLoginFailureText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found with detail", &api.Error{StatusCode: http.StatusNotFound, Detail: "User not found"}, "User not found"},
		{"not found without detail", &api.Error{StatusCode: http.StatusNotFound}, MsgCredentials},
		{"validation", &api.Error{StatusCode: http.StatusUnprocessableEntity, Detail: "email: field required"}, MsgCredentials},
		{"server error", &api.Error{StatusCode: http.StatusInternalServerError, Detail: "boom"}, MsgLoginFailed},
		{"wrapped", fmt.Errorf("login: %w", &api.Error{StatusCode: http.StatusNotFound, Detail: "nope"}), "nope"},
		{"network", errors.New("connection refused"), MsgLoginFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LoginFailureText(tt.err); got != tt.want {
				t.Errorf("LoginFailureText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegisterFailureText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"duplicate email", &api.Error{StatusCode: http.StatusNotFound, Detail: "Email already in use. Try another one."}, "Email already in use. Try another one."},
		{"validation", &api.Error{StatusCode: http.StatusUnprocessableEntity, Detail: "password: too short"}, MsgRegisterFailed},
		{"network", errors.New("timeout"), MsgRegisterFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RegisterFailureText(tt.err); got != tt.want {
				t.Errorf("RegisterFailureText() = %q, want %q", got, tt.want)
			}
		})
	}
}
