/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package webd

import (
	"strings"
	"sync"

	"github.com/hookserver/webd/cookie"
	"github.com/hookserver/webd/hdr"
	urlpkg "github.com/hookserver/webd/url"
)

// FileUpload is the record kept for a multipart part that carried a
// filename, per spec §3 "File upload".
type FileUpload struct {
	FieldName        string
	Filename         string
	ContentType      string
	TempFilePath     string
	ContentInMemory  []byte
	moved            bool
}

// Moved marks this upload's temp file as owned by the handler: the
// engine will not delete it after the response completes.
func (f *FileUpload) Moved() { f.moved = true }

// Request is the typed, server-only view over a parsed request body,
// per spec §3 "Request". It is built by the connection engine once
// the header block has been parsed and mutated only while the body is
// read; after the response is flushed it is never touched again.
type Request struct {
	Method   Method
	Proto    Protocol
	URL      *urlpkg.URL
	Header   hdr.Header
	RestURL  string // residual path after hook-table prefix stripping

	RemoteAddr string // raw socket peer address
	TLS        bool

	ContentLength int64

	// bodyBytes and bodyTmpFile hold the decoded request body: both
	// empty if there is none, bodyBytes if memory-buffered, or
	// bodyTmpFile (a temp file path) if streamed to disk per the
	// store-threshold rule in spec §4.5 "Body read".
	bodyBytes   []byte
	bodyTmpFile string

	cookies     []*cookie.Cookie
	cookiesOnce sync.Once

	query     urlpkg.Values
	queryOnce sync.Once

	form     urlpkg.Values
	formOnce sync.Once

	files     map[string][]*FileUpload
	filesOnce sync.Once
}

// EffectiveRemoteAddr implements spec §3's "effective client IP
// (X-Forwarded-For overrides source)".
func (r *Request) EffectiveRemoteAddr() string {
	if xff := r.Header.Get(hdr.XForwardedFor); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	return r.RemoteAddr
}

// Cookies parses the Cookie request header on first access, per spec
// §3 "Cookie (parsed into a mapping name->{value, path?, domain?,
// expires?})".
func (r *Request) Cookies() []*cookie.Cookie {
	r.cookiesOnce.Do(func() {
		r.cookies = cookie.Parse(r.Header.Get(hdr.Cookie))
	})
	return r.cookies
}

// Cookie returns the first cookie with the given name, or nil.
func (r *Request) Cookie(name string) *cookie.Cookie {
	for _, c := range r.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Query lazily parses the URL's raw query string, per spec §4.2
// "query_all" semantics.
func (r *Request) Query() urlpkg.Values {
	r.queryOnce.Do(func() {
		r.query, _ = urlpkg.ParseQuery(r.URL.RawQuery)
	})
	return r.query
}

// BodyBytes returns the in-memory body, if the body was small enough
// to be buffered (spec §4.5 "store-threshold").
func (r *Request) BodyBytes() ([]byte, bool) {
	if r.bodyTmpFile != "" {
		return nil, false
	}
	return r.bodyBytes, true
}

// BodyTempFile returns the path of the streamed body, if the body
// exceeded the store-threshold.
func (r *Request) BodyTempFile() (string, bool) {
	return r.bodyTmpFile, r.bodyTmpFile != ""
}

// QueryValue implements spec §4.2's C2 operation "query(name) ->
// string? — last value wins on duplicates".
func (r *Request) QueryValue(name string) (string, bool) {
	vs := r.Query()[name]
	if len(vs) == 0 {
		return "", false
	}
	return vs[len(vs)-1], true
}

// QueryAll implements spec §4.2's C2 operation "query_all(name) ->
// ordered sequence".
func (r *Request) QueryAll(name string) []string {
	return r.Query()[name]
}

// FormValue implements spec §4.2's C2 operation "form(name)", with the
// same last-value-wins semantics as QueryValue.
func (r *Request) FormValue(name string) (string, bool) {
	vs := r.Form()[name]
	if len(vs) == 0 {
		return "", false
	}
	return vs[len(vs)-1], true
}

// FormAll implements spec §4.2's C2 operation "form_all(name)".
func (r *Request) FormAll(name string) []string {
	return r.Form()[name]
}

// File implements spec §4.2's C2 operation "file(name) -> FileUpload?",
// returning the first upload for the given field name.
func (r *Request) File(name string) (*FileUpload, bool) {
	ups := r.Files()[name]
	if len(ups) == 0 {
		return nil, false
	}
	return ups[0], true
}

// Files returns the multipart file uploads parsed for this request,
// keyed by field name.
func (r *Request) Files() map[string][]*FileUpload {
	r.filesOnce.Do(func() {
		if r.files == nil {
			r.files = map[string][]*FileUpload{}
		}
	})
	return r.files
}

// Form lazily parses the POST body as application/x-www-form-urlencoded
// or multipart/form-data, per spec §4.5 "URL-encoded parsing" and
// "Multipart parsing". For GET/HEAD it is always empty.
func (r *Request) Form() urlpkg.Values {
	r.formOnce.Do(func() {
		if r.Method != MethodPost {
			r.form = urlpkg.Values{}
			return
		}
		ct := r.Header.Get(hdr.ContentType)
		if strings.HasPrefix(ct, "multipart/form-data") {
			// Multipart bodies already populated r.form via
			// readMultipartBody during READING_BODY.
			if r.form == nil {
				r.form = urlpkg.Values{}
			}
			return
		}
		body, ok := r.BodyBytes()
		if !ok {
			r.form = urlpkg.Values{}
			return
		}
		parsed, _ := urlpkg.ParseQuery(string(body))
		r.form = parsed
	})
	return r.form
}
