package chat

import (
	"net/http"

	"twinchat/pkg/api"
)

// User-facing outcomes of the auth flows.
const (
	MsgLoginOK        = "Login successfully!"
	MsgRegisterOK     = "Account created successfully!"
	MsgCredentials    = "Credentials invalid. Try again."
	MsgLoginFailed    = "Error trying to login."
	MsgRegisterFailed = "Error trying to register."
)

// LoginFailureText maps a Login error to the message shown to the user.
// A 404 carries the backend's own wording.
func LoginFailureText(err error) string {
	switch api.StatusCode(err) {
	case http.StatusNotFound:
		if d := api.Detail(err); d != "" {
			return d
		}
		return MsgCredentials
	case http.StatusUnprocessableEntity:
		return MsgCredentials
	}
	return MsgLoginFailed
}

// RegisterFailureText maps a Register error to the message shown to the user.
func RegisterFailureText(err error) string {
	if api.StatusCode(err) == http.StatusNotFound {
		if d := api.Detail(err); d != "" {
			return d
		}
	}
	return MsgRegisterFailed
}
