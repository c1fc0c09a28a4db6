/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package webd implements the connection-lifecycle engine and
// supporting models of an HTTP/1.1 server library: the per-connection
// state machine (conn.go), the request and response models
// (request.go, response.go), the listener (listener.go), and
// statistics (stats.go). It is grounded on the teacher repo's
// decomposition into types_server.go/conn.go/response_server.go, but
// the server-only Request/Response shapes, the gzip/range response
// framing, and the hook-table dispatch are rewritten against the
// spec this module implements rather than ported from net/http.
package webd

import "time"

// connState names a phase of the per-connection state machine spec
// §4.5 "States" defines.
type connState int

const (
	stateReadingHeaders connState = iota
	statePARSED
	stateReadingBody
	stateDispatch
	stateWritingResponse
	stateKeepAlive
	stateClosed
)

func (s connState) String() string {
	switch s {
	case stateReadingHeaders:
		return "READING_HEADERS"
	case statePARSED:
		return "PARSED"
	case stateReadingBody:
		return "READING_BODY"
	case stateDispatch:
		return "DISPATCH"
	case stateWritingResponse:
		return "WRITING_RESPONSE"
	case stateKeepAlive:
		return "KEEP_ALIVE"
	case stateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Defaults for the numeric knobs spec §4.5/§4.3/§6 name inline.
const (
	DefaultMaxHeaderBytes    = 256 * 1024
	DefaultStoreThreshold    = 16 * 1024 * 1024
	DefaultGzipMemoryLimit   = 1024 * 1024
	DefaultGzipAutoThreshold = 4 * 1024
	DefaultIdleTimeout       = 0 * time.Second
	maxPostBoundaryLen       = 1024
)

// Method is one of the three request methods spec §3 recognises.
type Method string

const (
	MethodGet  Method = "GET"
	MethodHead Method = "HEAD"
	MethodPost Method = "POST"
)

// Protocol is the request/response HTTP version.
type Protocol struct {
	Major int
	Minor int
}

func (p Protocol) String() string {
	if p.Major == 1 && p.Minor == 0 {
		return "HTTP/1.0"
	}
	return "HTTP/1.1"
}

// atLeast11 reports whether p is HTTP/1.1 or newer, the gate spec §4.5
// uses throughout the framing decision tree.
func (p Protocol) atLeast11() bool { return p.Major > 1 || (p.Major == 1 && p.Minor >= 1) }
