package httpserver

import (
	"errors"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
)

const (
	msgInvalidBody   = "Invalid request body"
	msgRegistered    = "Registered Successfully"
	msgLoginSuccess  = "Login Success"
	msgLoggedOut     = "Logged out"
	msgRecordAdded   = "Record added Successfully"
	msgDBInitialized = "Database Initialized Successfully"

	msgRegisterConflict = "Username or email already exists!"
	msgRecoveryConflict = "New username already exists!"
	msgInternal         = "Internal server error"
)

var messages = []struct {
	err error
	msg string
}{
	{common.ErrMissingField, "All fields are required!"},
	{common.ErrInvalidUsername, "Username must be 3-100 characters!"},
	{common.ErrWeakPassword, "Password must include letters, numbers, and a special character (6-20 chars)!"},
	{common.ErrInvalidEmail, "Invalid email format!"},
	{common.ErrInvalidRole, "Role must be student or faculty!"},
	{common.ErrInvalidCredentials, "Invalid Credentials"},
	{common.ErrCaptchaMismatch, "Captcha mismatch!"},
	{common.ErrValueMismatch, "New value and confirm value do not match!"},
	{common.ErrorNotFound, "User not found!"},
	{common.ErrInvalidType, "Invalid type!"},
	{common.ErrorUnauthorized, "Unauthorized"},
}

// messageFor maps a service error to the text shown to the client. The
// conflict text depends on the operation, so callers pass it in.
func messageFor(err error, conflict string) string {
	if errors.Is(err, common.ErrConflict) {
		return conflict
	}
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return msgInternal
}
