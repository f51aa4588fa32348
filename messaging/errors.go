// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"errors"
	"fmt"
)

// ServerError is a non-2xx HTTP response. Callers extract it with
// errors.As:
//
//	var serverErr *ServerError
//	if errors.As(err, &serverErr) && serverErr.StatusCode == http.StatusNotFound { ... }
type ServerError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Method and Path identify the request.
	Method string
	Path   string

	// Message is the server's "error" field when the body was JSON,
	// otherwise the raw body.
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("messaging: %s %s: %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// IsServerError reports whether err is a *ServerError with the given
// status code.
func IsServerError(err error, statusCode int) bool {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr.StatusCode == statusCode
	}
	return false
}
