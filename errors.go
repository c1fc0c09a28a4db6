/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package webd

import "fmt"

// StatusError is a handler error that carries an explicit HTTP status,
// per spec §4.5 "Dispatch": "if the exception type carries an HTTP
// status, that status is used".
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("webd: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("webd: status %d", e.Status)
}

// NewStatusError builds a StatusError, for handlers that want to fail
// a request with a specific status.
func NewStatusError(status int, message string) error {
	return &StatusError{Status: status, Message: message}
}

var (
	// ErrBodyNotAllowed describes a body written for a status that
	// spec §3 forbids one for (1xx, 204, 304). No function in this
	// package returns it; Response setters report that case with their
	// own unexported error.
	ErrBodyNotAllowed = fmt.Errorf("webd: request method or response status code does not allow body")

	// ErrHijacked describes a hijacked connection. Connections cannot
	// be hijacked in this package, and nothing returns it.
	ErrHijacked = fmt.Errorf("webd: connection has been hijacked")

	// ErrHandlerReturnedNil is spec §4.5's "returning null/undefined is
	// a bug": a Handler must always return a *Response.
	ErrHandlerReturnedNil = fmt.Errorf("webd: handler returned a nil response")
)
