/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package webd

import (
	"errors"
	"io"
	"sync"

	"github.com/hookserver/webd/cookie"
	"github.com/hookserver/webd/hdr"
	"github.com/hookserver/webd/internal/gzipolicy"
)

// bodyKind distinguishes the four body-provider shapes spec §3
// "Response" lists: "exactly one of: empty; byte buffer; restartable
// byte stream; lazy chunk producer".
type bodyKind int

const (
	bodyEmpty bodyKind = iota
	bodyBuffer
	bodyStream
	bodyProducer
)

// ChunkProducer is a lazy chunk producer body: each call returns the
// next chunk, or (nil, io.EOF) when exhausted.
type ChunkProducer func() ([]byte, error)

// Response is the typed model a Handler returns, per spec §3
// "Response". Exactly one body-provider field is populated at a time;
// SetBuffer/SetStream/SetProducer enforce that by construction.
type Response struct {
	Status int
	Header hdr.Header
	Cookies []*cookie.Cookie

	GzipPolicy gzipolicy.Policy

	kind   bodyKind
	buffer []byte
	stream io.ReadSeeker
	prod   ChunkProducer

	invoked bool
	mu      sync.Mutex

	cleanup func()
}

// NewResponse builds an empty response with the given status and no
// body provider.
func NewResponse(status int) *Response {
	return &Response{Status: status, Header: make(hdr.Header)}
}

var errBodyAlreadySet = errors.New("webd: response body provider already set")

// errBodyForbidden is returned by SetBuffer/SetStream/SetProducer
// when the response's status forbids a body at all (1xx, 204, 304),
// per spec §3 "Construction fails when the status forbids a body but
// one is provided."
var errBodyForbidden = errors.New("webd: status forbids a response body")

// SetBuffer installs an in-memory body, per spec §3 "byte buffer".
func (r *Response) SetBuffer(b []byte) error {
	if mustNotHaveBody(r.Status) {
		return errBodyForbidden
	}
	if r.kind != bodyEmpty {
		return errBodyAlreadySet
	}
	r.kind = bodyBuffer
	r.buffer = b
	return nil
}

// SetStream installs a restartable (seekable) byte stream body, per
// spec §3 "restartable byte stream" — required for range serving
// (spec §4.5 step 4 needs a seekable body).
func (r *Response) SetStream(s io.ReadSeeker) error {
	if mustNotHaveBody(r.Status) {
		return errBodyForbidden
	}
	if r.kind != bodyEmpty {
		return errBodyAlreadySet
	}
	r.kind = bodyStream
	r.stream = s
	return nil
}

// SetProducer installs a lazy chunk producer body, per spec §3 "lazy
// chunk producer" — used for handler-driven streaming where length is
// unknown up front.
func (r *Response) SetProducer(p ChunkProducer) error {
	if mustNotHaveBody(r.Status) {
		return errBodyForbidden
	}
	if r.kind != bodyEmpty {
		return errBodyAlreadySet
	}
	r.kind = bodyProducer
	r.prod = p
	return nil
}

// OnCleanup registers a callback run after the body is fully sent,
// per spec §3 "optional connection cleanup callback".
func (r *Response) OnCleanup(f func()) { r.cleanup = f }

// mustNotHaveBody reports whether status forbids a body, per spec §3
// "A response with a status that MUST-NOT have a body (1xx, 204, 304)
// must have no body provider and no Content-Type".
func mustNotHaveBody(status int) bool {
	return (status >= 100 && status < 200) || status == 204 || status == 304
}

// knownLength reports the body's length if known without consuming
// it, and whether that length is known, per spec §4.5 step 1 and
// step 4.
func (r *Response) knownLength() (int64, bool) {
	switch r.kind {
	case bodyEmpty:
		return 0, true
	case bodyBuffer:
		return int64(len(r.buffer)), true
	case bodyStream:
		if n, err := r.stream.Seek(0, io.SeekEnd); err == nil {
			r.stream.Seek(0, io.SeekStart)
			return n, true
		}
		return 0, false
	default:
		return 0, false
	}
}

func (r *Response) seekable() bool { return r.kind == bodyStream }

// takeInvocation enforces spec §3 "A response body provider is called
// at most once per request; re-invocation fails."
func (r *Response) takeInvocation() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.invoked {
		return errors.New("webd: response body provider invoked more than once")
	}
	r.invoked = true
	return nil
}

// runCleanup invokes the cleanup callback, if any, exactly once.
func (r *Response) runCleanup() {
	if r.cleanup != nil {
		cb := r.cleanup
		r.cleanup = nil
		cb()
	}
}
